// Package commands implements the CLI commands for the pax task runner.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pax/internal/app"
	"go.trai.ch/pax/internal/build"
)

// CLI represents the command line interface for pax.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, tokens []string, opts app.RunOptions) error
	Watch(ctx context.Context, tokens []string, opts app.RunOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pax",
		Short:         "Run and watch project tasks in managed environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addRunFlags registers the flags run and watch share. Flag parsing stops at
// the first positional argument so everything after the task name reaches the
// task untouched.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringP("environment", "e", "", "Environment to run the task in")
	cmd.Flags().Bool("clean-env", false, "Do not inherit the parent shell environment")
	cmd.Flags().Bool("skip-deps", false, "Run only the requested task, ignoring its dependencies")
	cmd.Flags().BoolP("dry-run", "n", false, "Print the resolved commands without executing anything")
}

func runOptionsFromFlags(cmd *cobra.Command) app.RunOptions {
	environment, _ := cmd.Flags().GetString("environment")
	cleanEnv, _ := cmd.Flags().GetBool("clean-env")
	skipDeps, _ := cmd.Flags().GetBool("skip-deps")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return app.RunOptions{
		Environment: environment,
		CleanEnv:    cleanEnv,
		SkipDeps:    skipDeps,
		DryRun:      dryRun,
	}
}
