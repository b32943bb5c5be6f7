// Package tui renders the interactive chat surface: markdown assistant
// replies, tool activity lines, and confirmation prompts.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// FormatToolActivity renders a one-line summary of a tool lifecycle event.
func FormatToolActivity(evt domain.Event) string {
	p := termenv.ColorProfile()

	switch evt.Type {
	case domain.EventToolCallStarted:
		label := termenv.String("⚙ " + evt.ToolName).Foreground(p.Color("#818cf8"))
		return fmt.Sprintf("%s %s", label, summarizeArgs(evt.Input))
	case domain.EventToolCallFinished:
		label := termenv.String("✓ " + evt.ToolName).Foreground(p.Color("#34d399"))
		return label.String()
	case domain.EventToolCallFailed:
		label := termenv.String("✗ " + evt.ToolName).Foreground(p.Color("#fb7185"))
		if evt.Err != nil {
			return fmt.Sprintf("%s %v", label, evt.Err)
		}
		return label.String()
	case domain.EventToolConfirmationRequest:
		label := termenv.String("? " + evt.ToolName).Foreground(p.Color("#fbbf24"))
		return fmt.Sprintf("%s requires confirmation: %s", label, summarizeArgs(evt.Input))
	default:
		return ""
	}
}

// FormatConfirmationPrompt builds the approve/deny question shown to the user
// when a turn suspends on the confirmation gate.
func FormatConfirmationPrompt(call domain.ToolCall) string {
	p := termenv.ColorProfile()
	name := termenv.String(call.Name).Foreground(p.Color("#fbbf24")).Bold()
	return fmt.Sprintf("Allow %s %s? [y/N] ", name, summarizeArgs(call.Args))
}

func summarizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for k, v := range args {
		s := fmt.Sprintf("%v", v)
		if len(s) > 60 {
			s = s[:57] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, s))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
