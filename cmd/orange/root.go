package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orange",
	Short: "Orange is a conversational agent runtime with a confirmation gate",
	Long: `Orange runs tool-using conversations against an OpenAI-compatible backend.
Side-effecting tool calls suspend the turn until a human approves or denies them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "orange.yaml", "Path to the agent configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
