package main

import (
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		serve string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "watch [flags] -- command [args...]",
		Short: "Stream a long-running command into a variable",
		Long: `Watch starts the given command and feeds each line it writes to stdout
into a reactive variable, printing every change. The subprocess is
killed when the watch ends.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(streamConfig{
				name:  name,
				serve: serve,
				start: func(v *stringVar) {
					v.Watch(args, nil)
				},
			})
		},
	}

	cmd.Flags().StringVar(&serve, "serve", "", "Serve the live inspector on this address (e.g. :9190)")
	cmd.Flags().StringVar(&name, "name", "watch", "Variable name in the inspector")

	return cmd
}
