package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [task] [args...]",
		Short: "Run a task and restart it when its inputs change",
		Long: "Watch runs a single task and keeps watching its input patterns. " +
			"A qualifying file change cancels the running command cooperatively " +
			"and starts a fresh run. A task without inputs runs exactly once.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args, runOptionsFromFlags(cmd))
		},
	}
	addRunFlags(cmd)
	return cmd
}
