package sync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/config"
	"github.com/keshon/fstate/internal/fs"
	"github.com/keshon/fstate/internal/logging"
	"github.com/keshon/fstate/internal/scan"
	"github.com/keshon/fstate/internal/session"
)

// AddFlags registers the flags shared by the commands that run a session.
// Update related flags are left out when update is false.
func AddFlags(fs *pflag.FlagSet, update bool) {
	fs.StringP("reference", "r", "", "reference directory kept in sync with the live paths")
	fs.StringP("database", "d", "", "database file (default <reference>/"+config.DefaultDatabaseFile+")")
	fs.StringP("output", "o", "", "write reports to this file instead of stdout")
	fs.StringP("ignore-file", "x", "", "file of ignore patterns, one per line")
	fs.StringArray("ignore", nil, "ignore pattern (glob, or re:<regexp> on the full path)")
	fs.BoolP("report-files", "D", false, "list every entry of the trees read")
	fs.BoolP("verbose", "v", false, "log progress")
	fs.IntP("hash-workers", "j", 0, "parallel hash workers (default from config)")
	fs.Bool("lazy-hash", false, "hash files only when a comparison needs it")
	fs.String("metrics-file", "", "write Prometheus metrics to this textfile")
	if !update {
		return
	}
	fs.BoolP("update", "u", false, "apply changes to the reference")
	fs.BoolP("clean-first", "C", false, "perform removals before additions")
	fs.StringP("generations", "g", "", "directory for dated backups of replaced entries")
	fs.Bool("no-dedup", false, "always copy, never reuse identical reference files")
}

// Options turns flags and configuration into session options. The returned
// function closes the output file, if any.
func Options(ctx *command.Context) (session.Options, func() error, error) {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}
	f := ctx.Flags
	noop := func() error { return nil }

	o := session.Options{
		ReferenceDir: getString(f, "reference", ""),
		LivePaths:    ctx.Args,
		Update:       getBool(f, "update"),
		CleanFirst:   getBool(f, "clean-first") || cfg.CleanFirst,
		DisableDedup: getBool(f, "no-dedup") || cfg.DisableDedup,
		ReportFiles:  getBool(f, "report-files"),
		EagerHash:    cfg.EagerHash && !getBool(f, "lazy-hash"),
		HashWorkers:  cfg.HashWorkers,
		MetricsFile:  getString(f, "metrics-file", cfg.MetricsFile),
		Out:          ctx.Out,
		FS:           fs.NewOSFS(),
		Log:          logging.L(),
	}
	if f.Lookup("hash-workers") != nil && f.Changed("hash-workers") {
		o.HashWorkers, _ = f.GetInt("hash-workers")
	}
	if o.Update {
		o.GenerationsDir = getString(f, "generations", cfg.GenerationsDir)
	}
	if getBool(f, "verbose") {
		o.Progress = ctx.Err
	}

	o.DatabaseFile = getString(f, "database", "")
	if o.DatabaseFile == "" && (o.ReferenceDir != "" || filepath.IsAbs(cfg.DatabaseFile)) {
		o.DatabaseFile = cfg.DatabasePath(o.ReferenceDir)
	}

	ignore, err := Ignore(ctx)
	if err != nil {
		return o, noop, err
	}
	o.Ignore = ignore

	if path := getString(f, "output", ""); path != "" {
		out, err := os.Create(path)
		if err != nil {
			return o, noop, fmt.Errorf("open output: %w", err)
		}
		o.Out = out
		return o, out.Close, nil
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o, noop, nil
}

// Ignore builds the ignore matcher from configuration, the ignore file and
// --ignore patterns.
func Ignore(ctx *command.Context) (*scan.Ignore, error) {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ignore, err := scan.NewIgnore(cfg.Ignore...)
	if err != nil {
		return nil, fmt.Errorf("config ignore: %w", err)
	}
	if path := getString(ctx.Flags, "ignore-file", cfg.IgnoreFile); path != "" {
		if err := ignore.LoadIgnoreFile(fs.NewOSFS(), path); err != nil {
			return nil, err
		}
	}
	if ctx.Flags.Lookup("ignore") != nil {
		patterns, _ := ctx.Flags.GetStringArray("ignore")
		for _, p := range patterns {
			if err := ignore.Add(p); err != nil {
				return nil, err
			}
		}
	}
	return ignore, nil
}

func getString(f *pflag.FlagSet, name, fallback string) string {
	if f == nil || f.Lookup(name) == nil || !f.Changed(name) {
		return fallback
	}
	v, _ := f.GetString(name)
	return v
}

func getBool(f *pflag.FlagSet, name string) bool {
	if f == nil || f.Lookup(name) == nil {
		return false
	}
	v, _ := f.GetBool(name)
	return v
}
