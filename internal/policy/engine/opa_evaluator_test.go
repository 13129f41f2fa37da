package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

var gateCases = []struct {
	name string
	in   GateInput
	want bool
}{
	{"start command", GateInput{Kind: "command", Name: "start"}, true},
	{"help command", GateInput{Kind: "command", Name: "help"}, true},
	{"balance command", GateInput{Kind: "command", Name: "balance"}, false},
	{"logout command", GateInput{Kind: "command", Name: "logout"}, false},
	{"cancel outside login", GateInput{Kind: "command", Name: "cancel"}, false},
	{"cancel during login", GateInput{Kind: "command", Name: "cancel", InPublicFlow: true}, true},
	{"login button", GateInput{Kind: "button", Name: "login"}, true},
	{"menu button", GateInput{Kind: "button", Name: "menu"}, false},
	{"text outside flow", GateInput{Kind: "text"}, false},
	{"text in login flow", GateInput{Kind: "text", InPublicFlow: true}, true},
	{"unknown kind", GateInput{Kind: "sticker"}, false},
}

func TestStaticEvaluator_Exempt(t *testing.T) {
	ctx := context.Background()
	for _, tc := range gateCases {
		if got := (StaticEvaluator{}).Exempt(ctx, tc.in); got != tc.want {
			t.Errorf("%s: Exempt = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOPAEvaluator_MatchesStaticTable(t *testing.T) {
	ctx := context.Background()
	e := NewOPAEvaluator(ctx, "")
	if e.query == nil {
		t.Fatal("default policy should compile")
	}
	for _, tc := range gateCases {
		if got := e.Exempt(ctx, tc.in); got != tc.want {
			t.Errorf("%s: Exempt = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := NewOPAEvaluator(context.Background(), "")
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_PolicyFileOverride(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "gate.rego")
	policy := `package copperx.gate

default exempt := false

exempt if {
	input.kind == "command"
	input.name == "start"
}
`
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := NewOPAEvaluator(ctx, path)
	if !e.Exempt(ctx, GateInput{Kind: "command", Name: "start"}) {
		t.Error("start should be exempt under the override policy")
	}
	if e.Exempt(ctx, GateInput{Kind: "command", Name: "help"}) {
		t.Error("help should not be exempt under the override policy")
	}
}

func TestOPAEvaluator_BadPolicyFileFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "gate.rego")
	if err := os.WriteFile(path, []byte("package copperx.gate\n\nexempt if {"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := NewOPAEvaluator(ctx, path)
	if !e.Exempt(ctx, GateInput{Kind: "command", Name: "help"}) {
		t.Error("default policy should apply when the override does not compile")
	}
}

func TestOPAEvaluator_MissingPolicyFileFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	e := NewOPAEvaluator(ctx, filepath.Join(t.TempDir(), "missing.rego"))
	if !e.Exempt(ctx, GateInput{Kind: "button", Name: "login"}) {
		t.Error("default policy should apply when the override file is missing")
	}
}

func TestOPAEvaluator_NilQueryUsesStaticTable(t *testing.T) {
	e := &OPAEvaluator{}
	if !e.Exempt(context.Background(), GateInput{Kind: "command", Name: "start"}) {
		t.Error("static fallback should exempt start")
	}
}
