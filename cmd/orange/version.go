package main

import (
	"fmt"

	"github.com/spf13/cobra"

	orange "github.com/dodgeblaster/orange-agent"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orange %s\n", orange.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
