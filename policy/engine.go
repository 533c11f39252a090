// Package policy evaluates the credential shape policy with OPA.
package policy

import (
	"context"

	"github.com/open-policy-agent/opa/rego"
	"golang.org/x/xerrors"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content. The
// module must define data.credential_policy.valid.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.credential_policy.valid"),
		rego.Module("credential_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// CredentialInput is what the policy sees. The credential itself is never
// handed to the policy, only its length.
type CredentialInput struct {
	Provider         string `json:"provider"`
	CredentialLength int    `json:"credential_length"`
}

// Evaluate reports whether the input satisfies the policy.
func (e *Engine) Evaluate(ctx context.Context, input CredentialInput) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"provider":          input.Provider,
		"credential_length": input.CredentialLength,
	}))
	if err != nil {
		return false, xerrors.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, xerrors.New("policy produced no decision")
	}

	valid, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, xerrors.Errorf("policy returned %T, want bool", results[0].Expressions[0].Value)
	}
	return valid, nil
}

// DefaultPolicy accepts any non-empty credential of at least ten characters.
// It is a shape check only; no provider is contacted.
const DefaultPolicy = `
package credential_policy

default valid = false

valid {
	input.credential_length > 0
	input.credential_length >= 10
}
`
