package record

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/command/sync"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/middleware"
	"github.com/keshon/fstate/internal/scan"
	"github.com/keshon/fstate/internal/snapshot"
	"github.com/keshon/fstate/internal/state"
)

type Command struct{}

func (c *Command) Name() string      { return "record" }
func (c *Command) Short() string     { return "R" }
func (c *Command) Aliases() []string { return []string{"snapshot"} }
func (c *Command) Usage() string     { return "record [flags] <path...>" }
func (c *Command) Brief() string     { return "Record the state of directory trees" }

func (c *Command) Help() string {
	return `Scan the given paths and write their state to --database, replacing
any existing file. A name ending in .gz is compressed. Without --database
the state is printed as JSON.`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringP("database", "d", "", "file to write the state to")
	fs.StringP("ignore-file", "x", "", "file of ignore patterns, one per line")
	fs.StringArray("ignore", nil, "ignore pattern (glob, or re:<regexp> on the full path)")
	fs.BoolP("verbose", "v", false, "log progress")
	fs.IntP("hash-workers", "j", 0, "parallel hash workers (default from config)")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	ignore, err := sync.Ignore(ctx)
	if err != nil {
		return err
	}

	sc := &scan.Scanner{Ignore: ignore, Log: logging.L(), Workers: 1}
	if ctx.Config != nil {
		sc.Workers = ctx.Config.HashWorkers
	}
	if ctx.Flags.Changed("hash-workers") {
		sc.Workers, _ = ctx.Flags.GetInt("hash-workers")
	}
	if v, _ := ctx.Flags.GetBool("verbose"); v {
		sc.Progress = ctx.Err
	}

	fsys := fs.NewOSFS()
	st, err := sc.ReadState(ctx.Args, state.Options{FS: fsys, Log: logging.L(), EagerHash: true})
	if err != nil {
		return err
	}

	path, _ := ctx.Flags.GetString("database")
	if path == "" {
		return snapshot.Write(ctx.Out, st)
	}
	if err := snapshot.Save(fsys, path, st); err != nil {
		return err
	}
	logging.Info("state recorded", zap.String("path", path), zap.Int("entries", st.Count()))
	fmt.Fprintf(ctx.Err, "recorded %d entries in %s\n", st.Count(), path)
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
