package domain

import (
	"maps"
	"time"
)

// FlowID names a multi-step conversation.
type FlowID string

const (
	FlowLogin        FlowID = "login"
	FlowSendEmail    FlowID = "send_email"
	FlowSendWallet   FlowID = "send_wallet"
	FlowWithdrawBank FlowID = "withdraw_bank"
)

// State is the in-flight progress of one flow for one identity.
type State struct {
	Flow      FlowID
	Step      int // index into the flow's steps; len(steps) means completing
	Data      map[string]string
	StartedAt time.Time
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Data = maps.Clone(s.Data)
	if c.Data == nil {
		c.Data = make(map[string]string)
	}
	return &c
}
