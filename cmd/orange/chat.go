package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dodgeblaster/orange-agent/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the agent",
	Long: `Starts a terminal chat loop. Assistant replies render as markdown; tool
calls that need approval prompt before executing.

With --json, the loop speaks newline-delimited JSON on stdin/stdout instead,
for embedding in other programs.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")

		var err error
		if jsonMode {
			err = cli.RunHeadless(configPath, debug)
		} else {
			err = cli.RunChat(configPath, debug)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")

	// Make 'chat' the default if no command is provided.
	rootCmd.Run = chatCmd.Run
}
