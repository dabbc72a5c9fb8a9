package command

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/keshon/fstate/internal/config"
)

// Version is stamped at build time with -ldflags "-X ...command.Version=...".
var Version = "dev"

// NewRoot builds the cobra command tree from the registered commands. The
// root itself behaves like DefaultCommand.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName + " [flags] [path...]",
		Short: "Mirror directory trees against a recorded file state",
		Long: `fstate records the state of directory trees in a database and
reconciles a reference copy against the live trees, backing up what it
replaces into dated generation directories.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $"+config.ConfigEnv+" or user config dir)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: console, json")

	for _, cmd := range AllCommands() {
		root.AddCommand(toCobra(cmd))
	}
	if def, ok := GetCommand(DefaultCommand); ok {
		def.Flags(root.Flags())
		root.Args = cobra.ArbitraryArgs
		root.RunE = runE(def)
	}
	return root
}

func toCobra(cmd Command) *cobra.Command {
	c := &cobra.Command{
		Use:     cmd.Usage(),
		Short:   cmd.Brief(),
		Long:    cmd.Help(),
		Aliases: cmd.Aliases(),
		RunE:    runE(cmd),
	}
	if s := cmd.Short(); s != "" {
		c.Aliases = append(c.Aliases, s)
	}
	cmd.Flags(c.Flags())
	for _, sub := range cmd.Subcommands() {
		c.AddCommand(toCobra(sub))
	}
	return c
}

func runE(cmd Command) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return cmd.Run(&Context{
			Ctx:   ctx,
			Args:  args,
			Flags: c.Flags(),
			Out:   c.OutOrStdout(),
			Err:   c.ErrOrStderr(),
		})
	}
}

// Execute runs the command line args against the registered commands.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
