package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [task] [args...]",
		Short: "Run a task and its dependencies",
		Long: "Run resolves the named task across the workspace environments, " +
			"executes its dependencies in order and then the task itself. " +
			"A name that matches no task is executed as a literal command. " +
			"Without arguments the available tasks are listed.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, runOptionsFromFlags(cmd))
		},
	}
	addRunFlags(cmd)
	return cmd
}
