package show

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/middleware"
	"github.com/keshon/fstate/internal/session"
	"github.com/keshon/fstate/internal/snapshot"
	"github.com/keshon/fstate/internal/state"
)

type Command struct{}

func (c *Command) Name() string      { return "show" }
func (c *Command) Short() string     { return "" }
func (c *Command) Aliases() []string { return []string{"report"} }
func (c *Command) Usage() string     { return "show [--json] <database>" }
func (c *Command) Brief() string     { return "List the entries recorded in a database" }

func (c *Command) Help() string {
	return `Print every entry recorded in a database as "path (name)", or the
whole document with --json.`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "print the document as JSON")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	st, err := snapshot.Load(fs.NewOSFS(), ctx.Args[0], state.Options{Log: logging.L()})
	if err != nil {
		return err
	}
	if asJSON, _ := ctx.Flags.GetBool("json"); asJSON {
		return snapshot.Write(ctx.Out, st)
	}
	session.ReportTree(ctx.Out, st)
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
