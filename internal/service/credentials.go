package service

import (
	"context"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/observe"
	"github.com/xiaot623/gogo/roundtable/policy"
)

// CredentialCheck is one bot's credential awaiting validation.
type CredentialCheck struct {
	BotID      string
	Provider   domain.Provider
	Credential string
}

// CredentialValidator judges credentials by shape only. It never contacts a
// provider and never touches session state.
type CredentialValidator struct {
	engine      *policy.Engine
	hook        observe.Hook
	concurrency int
}

// NewCredentialValidator creates a validator evaluating engine's policy with
// at most concurrency checks in flight.
func NewCredentialValidator(engine *policy.Engine, hook observe.Hook, concurrency int) *CredentialValidator {
	if hook == nil {
		hook = observe.Nop{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &CredentialValidator{engine: engine, hook: hook, concurrency: concurrency}
}

// Validate reports whether credential is well-formed for provider.
func (v *CredentialValidator) Validate(ctx context.Context, provider domain.Provider, credential string) (bool, error) {
	return v.engine.Evaluate(ctx, policy.CredentialInput{
		Provider:         string(provider),
		CredentialLength: utf8.RuneCountInString(credential),
	})
}

// ValidateAll checks every credential independently and returns one verdict
// per bot id. A check that errors or panics yields false for that bot and
// does not affect the others.
func (v *CredentialValidator) ValidateAll(ctx context.Context, checks []CredentialCheck) map[string]bool {
	verdicts := make([]bool, len(checks))

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, c := range checks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					verdicts[i] = false
				}
			}()
			ok, err := v.Validate(ctx, c.Provider, c.Credential)
			verdicts[i] = err == nil && ok
			v.hook.CredentialChecked(ctx, c.BotID, c.Provider, verdicts[i])
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]bool, len(checks))
	for i, c := range checks {
		results[c.BotID] = verdicts[i]
	}
	return results
}

// ValidateCredentials validates a batch of credentials. It never fails.
func (s *Service) ValidateCredentials(ctx context.Context, checks []CredentialCheck) map[string]bool {
	return s.validator.ValidateAll(ctx, checks)
}
