package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "anime-api: %v\n", version)
		if commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %v\n", commit)
		}
		if date != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %v\n", date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
