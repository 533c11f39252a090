// Package service implements the conversation sessions and the turn engine.
package service

import (
	"cdr.dev/slog/v3"
	"github.com/google/uuid"

	"github.com/xiaot623/gogo/roundtable/internal/adapter/llm"
	"github.com/xiaot623/gogo/roundtable/internal/domain"
	"github.com/xiaot623/gogo/roundtable/internal/observe"
	"github.com/xiaot623/gogo/roundtable/internal/repository"
)

// Publisher receives every message appended to a session log.
type Publisher interface {
	Publish(sessionID string, msg domain.Message)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, domain.Message) {}

// Service owns session state and advances conversations. It does no
// per-session locking: callers keep at most one operation in flight per
// session. Different sessions may be used concurrently.
type Service struct {
	store     repository.Store
	llm       llm.Completer
	validator *CredentialValidator
	hook      observe.Hook
	publisher Publisher
	logger    slog.Logger
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithHook sets the observability hook.
func WithHook(h observe.Hook) Option {
	return func(s *Service) {
		s.hook = h
	}
}

// WithPublisher sets where appended messages are announced.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func New(store repository.Store, completer llm.Completer, validator *CredentialValidator, logger slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		llm:       completer,
		validator: validator,
		hook:      observe.Nop{},
		publisher: nopPublisher{},
		logger:    logger,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
