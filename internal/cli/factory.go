package cli

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"github.com/lmittmann/tint"
	backend "github.com/redis/go-redis/v9"

	orange "github.com/dodgeblaster/orange-agent"
	"github.com/dodgeblaster/orange-agent/internal/logging"
	redisadapter "github.com/dodgeblaster/orange-agent/pkg/adapters/redis"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
	"github.com/dodgeblaster/orange-agent/pkg/llm/openai"
	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/dodgeblaster/orange-agent/pkg/session"
	"github.com/dodgeblaster/orange-agent/pkg/tools"
)

// BuildTools assembles the enabled built-in tool set, confined to the
// configured workspace.
func BuildTools(cfg *Config) []ports.Tool {
	available := []ports.Tool{
		tools.CurrentTime{},
		tools.ReadFile{Root: cfg.Workspace},
		tools.WriteFile{Root: cfg.Workspace},
		tools.RunCommand{Dir: cfg.Workspace},
	}

	if len(cfg.Tools) == 0 {
		return available
	}

	enabled := make(map[string]bool, len(cfg.Tools))
	for _, name := range cfg.Tools {
		enabled[name] = true
	}

	var selected []ports.Tool
	for _, t := range available {
		if enabled[t.Name()] {
			selected = append(selected, t)
		}
	}
	return selected
}

// BuildPolicy translates the confirm section into a policy table. An empty
// section yields the default table (filesystem writes and process execution
// always gated).
func BuildPolicy(cfg ConfirmConfig) *policy.Table {
	if len(cfg.Tools) == 0 && len(cfg.Effects) == 0 {
		return policy.Default()
	}

	opts := []policy.Option{}
	if len(cfg.Tools) > 0 {
		opts = append(opts, policy.WithTools(cfg.Tools...))
	}
	for _, e := range cfg.Effects {
		opts = append(opts, policy.WithEffects(policy.Effect(e)))
	}
	return policy.New(opts...)
}

// BuildSession constructs a ready-to-run session from the configuration: the
// OpenAI-backed model, the enabled tools, and the confirmation policy.
func BuildSession(cfg *Config, logger *slog.Logger) (*orange.Session, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	modelOpts := []openai.Option{openai.WithLogger(logger)}
	if cfg.Model.Name != "" {
		modelOpts = append(modelOpts, openai.WithModel(cfg.Model.Name))
	}
	model := openai.New(apiKey, cfg.Model.BaseURL, modelOpts...)

	sessionOpts := []orange.Option{
		orange.WithTools(BuildTools(cfg)...),
		orange.WithConfirmationPolicy(BuildPolicy(cfg.Confirm)),
		orange.WithLogger(logger),
	}
	if len(cfg.InitialMessages) > 0 {
		sessionOpts = append(sessionOpts, orange.WithInitialUserMessages(cfg.InitialMessages...))
	}
	if cfg.Confirm.AutoAccept {
		sessionOpts = append(sessionOpts, orange.WithAutoAcceptAll())
	}

	var manager *session.Manager
	sessionID := cfg.Redis.SessionID
	if cfg.Redis.Addr != "" {
		if sessionID == "" {
			sessionID = "default"
		}

		client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})

		storeOpts := []redisadapter.Option{}
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisadapter.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(cfg.Redis.TTL))
		}
		store := redisadapter.NewFromClient(client, storeOpts...)

		manager = session.NewManager(store,
			session.WithLocker(redisadapter.NewLocker(client, "orange:lock:")),
			session.WithLogger(logger),
		)

		messages, err := manager.LoadOrCreate(context.Background(), sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		if len(messages) > 0 {
			sessionOpts = append(sessionOpts, orange.WithResumedTranscript(messages))
			logger.Info("session resumed", "session_id", sessionID, "messages", len(messages))
		}
	}

	sess, err := orange.New(cfg.SystemPrompt, model, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if manager != nil {
		AttachPersistence(sess, manager, sessionID, logger)
	}
	return sess, nil
}

// AttachPersistence saves the transcript after every appended message or tool
// outcome. Saves are best-effort: a failing store logs and the conversation
// continues in memory.
func AttachPersistence(sess *orange.Session, manager *session.Manager, sessionID string, logger *slog.Logger) {
	save := func(ctx context.Context, evt domain.Event) error {
		if err := manager.Save(ctx, sessionID, sess.Messages()); err != nil {
			logger.Warn("failed to persist transcript", "session_id", sessionID, "err", err)
		}
		return nil
	}
	sess.On(map[domain.EventType]hub.Handler{
		domain.EventUserMessageAppended:      save,
		domain.EventAssistantMessageAppended: save,
		domain.EventToolCallFinished:         save,
		domain.EventToolCallFailed:           save,
	})
}

// CreateLogger configures the command-line logger. Debug mode gets a colored
// tint handler on stderr so logs stay out of the chat stream.
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		}))
	}
	return logging.NewNop()
}
