package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"copperx-bot/internal/log"
)

const gateQuery = "data.copperx.gate.exempt"

// DefaultGatePolicy is the built-in exemption policy. Operators can replace it with GATE_POLICY_FILE.
const DefaultGatePolicy = `package copperx.gate

default exempt := false

public_commands := {"start", "help"}

public_buttons := {"login"}

exempt if {
	input.kind == "command"
	public_commands[input.name]
}

exempt if {
	input.kind == "command"
	input.name == "cancel"
	input.in_public_flow
}

exempt if {
	input.kind == "button"
	public_buttons[input.name]
}

exempt if {
	input.kind == "text"
	input.in_public_flow
}
`

// OPAEvaluator evaluates the gate exemption policy with OPA Rego.
type OPAEvaluator struct {
	query    *rego.PreparedEvalQuery
	fallback StaticEvaluator
}

// NewOPAEvaluator compiles the policy in policyFile, or DefaultGatePolicy when policyFile is empty.
// A policy that fails to load or compile is logged and the default is used instead.
func NewOPAEvaluator(ctx context.Context, policyFile string) *OPAEvaluator {
	e := &OPAEvaluator{}
	src := DefaultGatePolicy
	if policyFile != "" {
		b, err := os.ReadFile(policyFile)
		if err != nil {
			log.Warn(ctx).Err(err).Str("file", policyFile).Msg("policy: cannot read gate policy, using default")
		} else {
			src = string(b)
		}
	}
	q, err := prepare(ctx, src)
	if err != nil && src != DefaultGatePolicy {
		log.Warn(ctx).Err(err).Str("file", policyFile).Msg("policy: gate policy does not compile, using default")
		q, err = prepare(ctx, DefaultGatePolicy)
	}
	if err != nil {
		log.Warn(ctx).Err(err).Msg("policy: default gate policy unusable, using static table")
		return e
	}
	e.query = q
	return e
}

func prepare(ctx context.Context, src string) (*rego.PreparedEvalQuery, error) {
	compiler, err := ast.CompileModules(map[string]string{"gate.rego": src})
	if err != nil {
		return nil, fmt.Errorf("compile gate policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(gateQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare gate policy: %w", err)
	}
	return &pq, nil
}

// Exempt evaluates the policy for in. Any evaluation failure falls back to the static table.
func (e *OPAEvaluator) Exempt(ctx context.Context, in GateInput) bool {
	q := e.query
	if q == nil {
		return e.fallback.Exempt(ctx, in)
	}
	input := map[string]interface{}{
		"kind":           in.Kind,
		"name":           in.Name,
		"in_public_flow": in.InPublicFlow,
	}
	rs, err := q.Eval(ctx, rego.EvalInput(input))
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		log.Warn(ctx).Err(err).Msg("policy: gate evaluation failed, using static table")
		return e.fallback.Exempt(ctx, in)
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		log.Warn(ctx).Interface("value", rs[0].Expressions[0].Value).Msg("policy: gate policy returned non-boolean, using static table")
		return e.fallback.Exempt(ctx, in)
	}
	return v
}

// HealthCheck verifies that the in-process OPA engine can compile and evaluate the default gate policy.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	q, err := prepare(ctx, DefaultGatePolicy)
	if err != nil {
		return err
	}
	rs, err := q.Eval(ctx, rego.EvalInput(map[string]interface{}{"kind": "command", "name": "start"}))
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}
