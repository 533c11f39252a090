package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	tests := []struct {
		name   string
		length int
		want   bool
	}{
		{"empty", 0, false},
		{"short", 5, false},
		{"one below threshold", 9, false},
		{"at threshold", 10, true},
		{"long", 16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate(ctx, CredentialInput{Provider: "openai", CredentialLength: tt.length})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyIgnoresProvider(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	got, err := engine.Evaluate(ctx, CredentialInput{Provider: "not-a-provider", CredentialLength: 12})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package credential_policy\nvalid {")
	assert.Error(t, err)
}

func TestEvaluateNonBooleanDecision(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, "package credential_policy\nvalid = \"yes\"\n")
	require.NoError(t, err)

	_, err = engine.Evaluate(ctx, CredentialInput{CredentialLength: 20})
	assert.Error(t, err)
}
