// Package mcp exposes a conversation session as a Model Context Protocol
// server, so MCP-capable clients can drive the agent and inspect its
// transcript.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// Conversation is the slice of the session facade the MCP adapter needs.
type Conversation interface {
	Run(ctx context.Context, input string) (string, error)
	ResolveConfirmation(ctx context.Context, toolUseID string, approved bool) error
	Messages() []domain.Message
	Pending() (domain.ToolCall, bool)
}

// TurnResponse is the structured result of send_message and
// resolve_confirmation: the assistant reply plus the gate state.
type TurnResponse struct {
	Reply   string           `json:"reply" jsonschema_description:"The latest assistant reply"`
	Pending *domain.ToolCall `json:"pending,omitempty" jsonschema_description:"Tool call awaiting confirmation, if any"`
}

// Server wraps a session and exposes it as an MCP server.
type Server struct {
	session   Conversation
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server around the given session.
func NewServer(session Conversation, version string, opts ...Option) *Server {
	s := &Server{
		session:   session,
		mcpServer: server.NewMCPServer("orange-agent", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE transport.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: send_message
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a user message to the agent and run the turn to completion. If a tool call requires confirmation, the turn suspends and 'pending' is set."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The user message text")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	// TOOL: resolve_confirmation
	confirmTool := mcp.NewTool("resolve_confirmation",
		mcp.WithDescription("Approve or deny the pending tool call and resume the suspended turn."),
		mcp.WithString("tool_use_id", mcp.Required(), mcp.Description("The ID of the tool call awaiting confirmation")),
		mcp.WithBoolean("approved", mcp.Required(), mcp.Description("true to execute the tool, false to decline it")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(confirmTool, mcp.NewStructuredToolHandler(s.handleResolveConfirmation))

	// TOOL: list_messages
	s.mcpServer.AddTool(mcp.NewTool("list_messages",
		mcp.WithDescription("Return the full ordered transcript of the conversation."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.session.Messages())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	input, _ := args["input"].(string)
	if input == "" {
		return TurnResponse{}, fmt.Errorf("input is required")
	}

	reply, err := s.session.Run(ctx, input)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("run failed: %w", err)
	}

	resp := TurnResponse{Reply: reply}
	if call, ok := s.session.Pending(); ok {
		resp.Pending = &call
	}
	return resp, nil
}

func (s *Server) handleResolveConfirmation(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	toolUseID, _ := args["tool_use_id"].(string)
	approved, _ := args["approved"].(bool)

	if err := s.session.ResolveConfirmation(ctx, toolUseID, approved); err != nil {
		return TurnResponse{}, fmt.Errorf("resolve failed: %w", err)
	}

	resp := TurnResponse{}
	for _, m := range s.session.Messages() {
		if m.Kind == domain.KindAssistant {
			resp.Reply = m.Content
		}
	}
	if call, ok := s.session.Pending(); ok {
		resp.Pending = &call
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: orange://transcript
	s.mcpServer.AddResource(mcp.NewResource("orange://transcript", "Conversation Transcript",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.session.Messages())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal transcript: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "orange://transcript",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
