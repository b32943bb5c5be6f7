package orange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/internal/runtime"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/dodgeblaster/orange-agent/pkg/registry"
	"github.com/dodgeblaster/orange-agent/pkg/transcript"
)

// Session is the high-level entry point for the orange-agent library.
// It wraps the internal turn engine and provides a simplified API for hosts.
//
// Operations on one session must be serialized by the caller: the engine
// executes one logical turn at a time and assumes no second Run or
// ResolveConfirmation arrives before the previous one yields.
type Session struct {
	engine *runtime.Engine
	hub    *hub.Hub
	logger *slog.Logger
	closed bool
}

type config struct {
	tools               []ports.Tool
	initialUserMessages []string
	autoAccept          bool
	logger              *slog.Logger
	policy              *policy.Table
	ids                 ports.IDSource
	clock               func() time.Time
	resume              []domain.Message
}

// Option defines a functional option for configuring a Session.
type Option func(*config)

// WithTools registers the tools available to the model, in order.
func WithTools(tools ...ports.Tool) Option {
	return func(c *config) {
		c.tools = append(c.tools, tools...)
	}
}

// WithInitialUserMessages seeds the transcript with user turns appended after
// the system prompt, before the first Run.
func WithInitialUserMessages(messages ...string) Option {
	return func(c *config) {
		c.initialUserMessages = append(c.initialUserMessages, messages...)
	}
}

// WithAutoAcceptAll disables the confirmation gate: every tool call executes
// without asking.
func WithAutoAcceptAll() Option {
	return func(c *config) {
		c.autoAccept = true
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithConfirmationPolicy replaces the default always-confirm policy table.
func WithConfirmationPolicy(table *policy.Table) Option {
	return func(c *config) {
		c.policy = table
	}
}

// WithIDSource injects the message/correlation id generator.
func WithIDSource(ids ports.IDSource) Option {
	return func(c *config) {
		c.ids = ids
	}
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.clock = now
	}
}

// WithResumedTranscript restores a previously persisted transcript instead of
// starting fresh. The system prompt and initial messages are skipped when the
// resumed transcript is non-empty.
func WithResumedTranscript(messages []domain.Message) Option {
	return func(c *config) {
		c.resume = messages
	}
}

// New initializes a session around the given model collaborator. The system
// prompt is appended as the first transcript entry; tools are announced to
// the backend once, at construction.
func New(systemPrompt string, model ports.ModelClient, opts ...Option) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("model collaborator is required")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	notifications := hub.New(hub.WithLogger(cfg.logger))

	engineOpts := []runtime.Option{
		runtime.WithLogger(cfg.logger),
	}
	if cfg.policy != nil {
		engineOpts = append(engineOpts, runtime.WithPolicy(cfg.policy))
	}
	if cfg.autoAccept {
		engineOpts = append(engineOpts, runtime.WithAutoAccept())
	}
	if cfg.ids != nil {
		engineOpts = append(engineOpts, runtime.WithIDSource(cfg.ids))
	}
	if cfg.clock != nil {
		engineOpts = append(engineOpts, runtime.WithClock(cfg.clock))
	}
	if len(cfg.resume) > 0 {
		engineOpts = append(engineOpts, runtime.WithTranscript(transcript.FromMessages(cfg.resume)))
	}

	engine := runtime.New(model, registry.New(cfg.tools...), notifications, engineOpts...)
	if len(cfg.resume) == 0 {
		engine.Seed(systemPrompt, cfg.initialUserMessages)
	}

	return &Session{
		engine: engine,
		hub:    notifications,
		logger: cfg.logger,
	}, nil
}

// On subscribes named handlers to the notification catalog and returns the
// session for chaining. Handlers are purely observational.
func (s *Session) On(handlers map[domain.EventType]hub.Handler) *Session {
	for eventType, handler := range handlers {
		s.hub.Subscribe(eventType, handler)
	}
	return s
}

// Run appends a user message and advances the conversation until it needs
// external input again, returning the most recent assistant content. Backend
// and tool failures degrade silently (the previous assistant content is
// returned); they surface through engine_error and tool_call_failed
// notifications. The only hard failure is using a closed session.
func (s *Session) Run(ctx context.Context, input string) (string, error) {
	if s.closed {
		return "", domain.ErrSessionClosed
	}
	return s.engine.Run(ctx, input), nil
}

// ResolveConfirmation applies a human decision to the pending tool call.
// Resolving a tool-use ID with no pending gate returns
// domain.ErrNoPendingConfirmation.
func (s *Session) ResolveConfirmation(ctx context.Context, toolUseID string, approved bool) error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	return s.engine.ResolveConfirmation(ctx, toolUseID, approved)
}

// Messages returns a read-only view of the full ordered transcript.
func (s *Session) Messages() []domain.Message {
	return s.engine.Messages()
}

// Pending returns the tool call currently awaiting confirmation, if any.
func (s *Session) Pending() (domain.ToolCall, bool) {
	return s.engine.Pending()
}

// Notifications exposes the session's event hub so observers (metrics,
// persistence) can attach without going through On.
func (s *Session) Notifications() *hub.Hub {
	return s.hub
}

// Close releases all notification subscriptions. Further Run or
// ResolveConfirmation calls fail with domain.ErrSessionClosed.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.hub.UnsubscribeAll()
}
