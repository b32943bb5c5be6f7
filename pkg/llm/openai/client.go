// Package openai implements the model collaborator against the OpenAI chat
// completions API (and any compatible endpoint via a custom base URL).
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/dodgeblaster/orange-agent/pkg/schema"
)

// Client adapts the OpenAI SDK to the engine's ModelClient port. Accepted
// tool calls are executed locally against the registered tool set.
type Client struct {
	api    openai.Client
	model  string
	tools  []ports.Tool
	logger *slog.Logger
}

var _ ports.ModelClient = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the given API key. An empty baseURL targets the
// public OpenAI endpoint; set it to use a compatible gateway or local server.
func New(apiKey, baseURL string, opts ...Option) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	c := &Client{
		api:    openai.NewClient(reqOpts...),
		model:  openai.ChatModelGPT4o,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterTools announces the available tools. Called once at session start.
func (c *Client) RegisterTools(tools []ports.Tool) {
	c.tools = tools
}

// Invoke sends the full ordered transcript and returns the next response.
func (c *Client) Invoke(ctx context.Context, history []domain.Message) (*ports.ModelResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: c.buildMessages(history),
	}
	if defs := c.toolDefinitions(); len(defs) > 0 {
		params.Tools = defs
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := completion.Choices[0].Message

	resp := &ports.ModelResponse{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if raw := tc.Function.Arguments; raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				c.logger.Warn("tool call arguments are not valid JSON",
					"tool", tc.Function.Name,
					"err", err,
				)
			}
		}
		resp.Calls = append(resp.Calls, domain.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return resp, nil
}

// ProcessToolCalls executes accepted tool calls against the registered tool
// set, one outcome per call in order. A failing tool produces an error
// outcome, not an error return.
func (c *Client) ProcessToolCalls(ctx context.Context, calls []domain.ToolCall) ([]domain.ToolOutcome, error) {
	outcomes := make([]domain.ToolOutcome, 0, len(calls))
	for _, call := range calls {
		outcomes = append(outcomes, c.runTool(ctx, call))
	}
	return outcomes, nil
}

func (c *Client) runTool(ctx context.Context, call domain.ToolCall) domain.ToolOutcome {
	tool := c.lookup(call.Name)
	if tool == nil {
		return domain.ToolOutcome{
			ToolUseID: call.ID,
			IsError:   true,
			Error:     fmt.Sprintf("unknown tool %q", call.Name),
		}
	}

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		c.logger.Warn("tool execution failed", "tool", call.Name, "err", err)
		return domain.ToolOutcome{
			ToolUseID: call.ID,
			IsError:   true,
			Error:     err.Error(),
		}
	}

	return domain.ToolOutcome{
		ToolUseID: call.ID,
		Result:    result,
	}
}

func (c *Client) lookup(name string) ports.Tool {
	for _, t := range c.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// buildMessages converts the transcript into the wire shape. Tool requests
// become assistant tool-call entries; tool results become tool-role replies
// keyed by the call ID.
func (c *Client) buildMessages(history []domain.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Kind {
		case domain.KindSystem:
			messages = append(messages, openai.SystemMessage(m.Content))

		case domain.KindUser:
			messages = append(messages, openai.UserMessage(m.Content))

		case domain.KindAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))

		case domain.KindToolRequest:
			if m.ToolCall == nil {
				continue
			}
			rawArgs, err := json.Marshal(m.ToolCall.Args)
			if err != nil {
				rawArgs = []byte("{}")
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
						OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
							ID: m.ToolCall.ID,
							Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
								Name:      m.ToolCall.Name,
								Arguments: string(rawArgs),
							},
						},
					}},
				},
			})

		case domain.KindToolResult:
			if m.ToolOutcome == nil {
				continue
			}
			messages = append(messages, openai.ToolMessage(renderOutcome(m.ToolOutcome), m.ToolOutcome.ToolUseID))

		case domain.KindInfo:
			// Local annotations never reach the backend.
		}
	}
	return messages
}

// renderOutcome flattens a tool outcome into the text body of a tool message.
func renderOutcome(outcome *domain.ToolOutcome) string {
	if outcome.IsDenied {
		return fmt.Sprintf("error: %s", outcome.Error)
	}
	if outcome.IsError {
		return fmt.Sprintf("error: %s", outcome.Error)
	}
	switch v := outcome.Result.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func (c *Client) toolDefinitions() []openai.ChatCompletionToolUnionParam {
	var defs []openai.ChatCompletionToolUnionParam
	for _, t := range c.tools {
		def := openai.FunctionDefinitionParam{
			Name:        t.Name(),
			Description: openai.String(t.Description()),
		}
		if s := t.ParameterSchema(); s != nil {
			def.Parameters = openai.FunctionParameters(schema.AsMap(s))
		}
		defs = append(defs, openai.ChatCompletionFunctionTool(def))
	}
	return defs
}
