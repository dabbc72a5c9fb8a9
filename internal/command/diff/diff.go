package diff

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/command/sync"
	"github.com/keshon/fstate/internal/middleware"
	"github.com/keshon/fstate/internal/session"
)

var (
	ErrNoReference = errors.New("diff needs a reference directory or a database")
	ErrDifferences = errors.New("differences found")
)

type Command struct{}

func (c *Command) Name() string      { return "diff" }
func (c *Command) Short() string     { return "D" }
func (c *Command) Aliases() []string { return []string{"status"} }
func (c *Command) Usage() string     { return "diff [flags] [path...]" }
func (c *Command) Brief() string     { return "Report differences between the reference and the live paths" }

func (c *Command) Help() string {
	return `Report what an update would change, without touching anything.

Each line names an entry relative to its top level path:
  <name>: added
  <name>: <reason>
  <name>: removed

Options:
      --exit-code   exit with an error when differences are found`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	sync.AddFlags(fs, false)
	fs.Bool("exit-code", false, "fail when differences are found")
}

func (c *Command) Run(ctx *command.Context) error {
	opts, closeOut, err := sync.Options(ctx)
	if err != nil {
		return err
	}
	defer closeOut()
	if opts.DatabaseFile == "" {
		return ErrNoReference
	}

	res, err := session.Run(ctx.Ctx, opts)
	if err != nil {
		return err
	}
	if exit, _ := ctx.Flags.GetBool("exit-code"); exit && res.Changes > 0 {
		return fmt.Errorf("%w: %d", ErrDifferences, res.Changes)
	}
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
			middleware.WithConfig(),
		),
	)
}
