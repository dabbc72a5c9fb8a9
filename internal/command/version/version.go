package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/config"
)

type Command struct{}

func (c *Command) Name() string                   { return "version" }
func (c *Command) Short() string                  { return "" }
func (c *Command) Aliases() []string              { return nil }
func (c *Command) Usage() string                  { return "version" }
func (c *Command) Brief() string                  { return "Print version information" }
func (c *Command) Help() string                   { return "Print the program version and the Go runtime it was built with." }
func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *pflag.FlagSet)        {}

func (c *Command) Run(ctx *command.Context) error {
	fmt.Fprintf(ctx.Out, "%s %s (%s %s/%s)\n", config.AppName, command.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

func init() {
	command.RegisterCommand(&Command{})
}
