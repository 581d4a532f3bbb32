package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "trcdesk",
	Short: "trcdesk — backend for The Reward Collection dashboard",
	Long: `trcdesk answers natural-language questions about merchants, publishers,
and contracts, and manages the knowledge base behind the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the trcdesk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trcdesk version %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
