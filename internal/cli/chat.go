package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	orange "github.com/dodgeblaster/orange-agent"
	"github.com/dodgeblaster/orange-agent/internal/presentation/tui"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
)

// RunChat starts the interactive chat loop for the configured agent.
func RunChat(configPath string, debug bool) error {
	logger := CreateLogger(debug)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	session, err := BuildSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		tui.PrintBanner()
	}

	// Tool activity is printed live from notifications; assistant content is
	// rendered once per turn from the Run return value.
	activity := func(ctx context.Context, evt domain.Event) error {
		if line := tui.FormatToolActivity(evt); line != "" {
			fmt.Println(line)
		}
		return nil
	}
	session.On(map[domain.EventType]hub.Handler{
		domain.EventToolCallStarted:  activity,
		domain.EventToolCallFinished: activity,
		domain.EventToolCallFailed:   activity,
	})

	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	render := tui.NewRenderer()
	reader := bufio.NewReader(os.Stdin)

	for {
		if sc.Err() != nil {
			break
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if isInterrupted(err) {
				fmt.Println()
				break
			}
			return fmt.Errorf("input error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		input, err = SanitizeInput(input)
		if err != nil {
			printSystemMessage("Input rejected: %v", err)
			continue
		}

		reply, err := session.Run(sc, input)
		if err != nil {
			return err
		}

		reply, err = resolvePending(sc, session, reader, reply)
		if err != nil {
			return err
		}

		printReply(render, reply)
	}

	if sc.Signal() != nil {
		printSystemMessage("Interrupted.")
	}
	return nil
}

// RunHeadless drives the configured agent over NDJSON on stdin/stdout.
func RunHeadless(configPath string, debug bool) error {
	logger := CreateLogger(debug)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	session, err := BuildSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	return RunJSON(sc, session, os.Stdin, os.Stdout)
}

// resolvePending drains the confirmation gate: each suspended tool call is
// prompted on the terminal, and the turn resumes with the user's decision.
func resolvePending(ctx context.Context, session *orange.Session, reader *bufio.Reader, reply string) (string, error) {
	for {
		call, ok := session.Pending()
		if !ok {
			return reply, nil
		}

		fmt.Print(tui.FormatConfirmationPrompt(call))
		line, err := reader.ReadString('\n')
		if err != nil {
			if isInterrupted(err) {
				// Treat an interrupt at the prompt as a denial.
				line = "n"
			} else {
				return reply, fmt.Errorf("input error: %w", err)
			}
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		approved := answer == "y" || answer == "yes"

		if err := session.ResolveConfirmation(ctx, call.ID, approved); err != nil {
			return reply, err
		}
		reply = lastAssistant(session.Messages())
	}
}

func lastAssistant(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Kind == domain.KindAssistant {
			return messages[i].Content
		}
	}
	return ""
}

func printReply(render func(string) (string, error), reply string) {
	if reply == "" {
		return
	}
	if pretty, err := render(reply); err == nil {
		fmt.Print(pretty)
	} else {
		fmt.Println(reply)
	}
}
