package sync

import (
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/middleware"
	"github.com/keshon/fstate/internal/session"
)

type Command struct{}

func (c *Command) Name() string      { return "sync" }
func (c *Command) Short() string     { return "S" }
func (c *Command) Aliases() []string { return []string{"mirror"} }
func (c *Command) Usage() string     { return "sync [flags] [path...]" }
func (c *Command) Brief() string     { return "Compare live paths with the reference and optionally update it" }

func (c *Command) Help() string {
	return `Compare the live paths with the reference state and report the
differences. With --update the reference directory is changed to match:
new entries are copied, changed ones overwritten and vanished ones removed.

The reference state is read from the database, which defaults to
<reference>/.file_db.json. When the database does not exist it is built
from the reference directory first. Without live paths, the top level
entries of the reference are compared against themselves.

With --generations every entry that is about to be overwritten or removed
is first copied into <generations>/<YYYY-MM-DD.HHMMSS>/.

Without a reference, the live state is written to --database, or printed.

Examples:
  fstate -r /backup/home -u -g /backup/generations /home
  fstate sync -r /backup/home /home
  fstate -d state.json /home`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) { AddFlags(fs, true) }

func (c *Command) Run(ctx *command.Context) error {
	opts, closeOut, err := Options(ctx)
	if err != nil {
		return err
	}
	defer closeOut()

	res, err := session.Run(ctx.Ctx, opts)
	if err != nil {
		return err
	}
	logging.Info("sync finished",
		zap.Int("changes", res.Changes),
		zap.Bool("applied", res.Applied),
		zap.Int("remaining", res.Remaining),
	)
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
