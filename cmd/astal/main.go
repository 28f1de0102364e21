package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "astal",
		Short: "Reactive value toolkit for the command line",
		Long: `Astal drives reactive variables from timers, commands, and
long-running processes. The CLI feeds a variable from a command and
prints every change, optionally exposing a live inspector endpoint:

  astal poll --every 5s -- uptime -p
  astal watch --serve :9190 -- journalctl -f`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		pollCmd(),
		watchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
