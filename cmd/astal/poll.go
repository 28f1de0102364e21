package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func pollCmd() *cobra.Command {
	var (
		every time.Duration
		serve string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "poll [flags] -- command [args...]",
		Short: "Poll a command into a variable and print changes",
		Long: `Poll runs the given command on a fixed interval, stores its output in a
reactive variable, and prints the value whenever it changes. Equal
outputs are suppressed by the variable's change gate, so a command that
keeps printing the same thing produces no output churn.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if every <= 0 {
				return fmt.Errorf("--every must be positive, got %s", every)
			}
			return runStream(streamConfig{
				name:  name,
				serve: serve,
				start: func(v *stringVar) {
					v.PollCommand(every, args, nil)
				},
			})
		},
	}

	cmd.Flags().DurationVarP(&every, "every", "e", 5*time.Second, "Poll interval")
	cmd.Flags().StringVar(&serve, "serve", "", "Serve the live inspector on this address (e.g. :9190)")
	cmd.Flags().StringVar(&name, "name", "poll", "Variable name in the inspector")

	return cmd
}
