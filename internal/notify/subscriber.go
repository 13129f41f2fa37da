package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/copperx"
	"copperx-bot/internal/log"
)

// defaultActivityTimeout is used when the server does not announce one.
const defaultActivityTimeout = 120 * time.Second

// ErrHandshake is returned when the server does not open the connection as expected.
var ErrHandshake = errors.New("notify: pusher handshake failed")

// Authorizer signs private-channel subscriptions.
type Authorizer interface {
	AuthorizeNotifications(ctx context.Context, token, socketID, channel string) (*copperx.ChannelAuth, error)
}

// Sender delivers a reply to a chat outside the request/response cycle.
type Sender interface {
	Send(ctx context.Context, chatID int64, reply chat.Reply) error
}

// subscription relays one identity's deposit events until its context is cancelled.
type subscription struct {
	identity int64
	token    string
	orgID    string
	url      string
	dialer   *websocket.Dialer
	auth     Authorizer
	sender   Sender
}

// run connects and reconnects with exponential backoff. The backoff resets after each
// successful subscription. It returns when ctx is done.
func (s *subscription) run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0

	err := backoff.RetryNotify(func() error {
		err := s.connect(ctx, b.Reset)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Warn(ctx).Err(err).Dur("retry_in", next).Msg("notify: connection lost")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn(ctx).Err(err).Msg("notify: subscription stopped")
	}
}

// connect runs one websocket session: handshake, subscribe, then relay events.
func (s *subscription) connect(ctx context.Context, onSubscribed func()) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("notify: dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	established, err := s.handshake(conn)
	if err != nil {
		return err
	}
	timeout := defaultActivityTimeout
	if established.ActivityTimeout > 0 {
		timeout = time.Duration(established.ActivityTimeout) * time.Second
	}

	channel := ChannelName(s.orgID)
	ca, err := s.auth.AuthorizeNotifications(ctx, s.token, established.SocketID, channel)
	if err != nil {
		return fmt.Errorf("notify: authorize %s: %w", channel, err)
	}
	if err := writeFrame(conn, eventSubscribe, "", subscribeData{Channel: channel, Auth: ca.Auth}); err != nil {
		return err
	}

	for {
		// Pusher pings an idle connection well within the activity timeout.
		_ = conn.SetReadDeadline(time.Now().Add(timeout + 30*time.Second))
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("notify: read: %w", err)
		}
		switch f.Event {
		case eventPing:
			if err := writeFrame(conn, eventPong, "", struct{}{}); err != nil {
				return err
			}
		case eventSubscriptionSucceeded:
			log.Info(ctx).Str("channel", channel).Msg("notify: subscribed")
			onSubscribed()
		case eventSubscriptionError, eventError:
			return fmt.Errorf("notify: %s: %s", f.Event, string(f.Data))
		case eventDeposit:
			s.relayDeposit(ctx, f.Data)
		}
	}
}

func (s *subscription) handshake(conn *websocket.Conn) (*connectionEstablished, error) {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if f.Event != eventConnectionEstablished {
		return nil, fmt.Errorf("%w: unexpected event %q", ErrHandshake, f.Event)
	}
	var ce connectionEstablished
	if err := unwrapData(f.Data, &ce); err != nil || ce.SocketID == "" {
		return nil, fmt.Errorf("%w: missing socket id", ErrHandshake)
	}
	return &ce, nil
}

func (s *subscription) relayDeposit(ctx context.Context, raw json.RawMessage) {
	var d Deposit
	if err := unwrapData(raw, &d); err != nil {
		log.Warn(ctx).Err(err).Msg("notify: malformed deposit event")
		return
	}
	if err := s.sender.Send(ctx, s.identity, chat.Markdown(DepositText(d))); err != nil {
		log.Warn(ctx).Err(err).Msg("notify: failed to deliver deposit notification")
	}
}

func writeFrame(conn *websocket.Conn, event, channel string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(frame{Event: event, Channel: channel, Data: raw}); err != nil {
		return fmt.Errorf("notify: write %s: %w", event, err)
	}
	return nil
}
