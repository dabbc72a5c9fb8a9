package middleware

import (
	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/config"
	"github.com/keshon/fstate/internal/logging"
)

// WithConfig loads the configuration into ctx.Config and sets up the global
// logger from it. The --config, --log-level and --log-format flags override
// the file, and --verbose raises the level to info.
func WithConfig() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				path := stringFlag(ctx, "config")
				if path == "" {
					path = config.ResolvePath()
				}
				cfg, err := config.Load(path)
				if err != nil {
					return err
				}
				if v := stringFlag(ctx, "log-level"); v != "" {
					cfg.LogLevel = v
				}
				if v := stringFlag(ctx, "log-format"); v != "" {
					cfg.LogFormat = v
				}
				if boolFlag(ctx, "verbose") && (cfg.LogLevel == "warn" || cfg.LogLevel == "error") {
					cfg.LogLevel = "info"
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
					return err
				}

				ctx.Config = cfg
				return cmd.Run(ctx)
			},
		}
	}
}

func stringFlag(ctx *command.Context, name string) string {
	if ctx.Flags == nil || ctx.Flags.Lookup(name) == nil {
		return ""
	}
	v, _ := ctx.Flags.GetString(name)
	return v
}

func boolFlag(ctx *command.Context, name string) bool {
	if ctx.Flags == nil || ctx.Flags.Lookup(name) == nil {
		return false
	}
	v, _ := ctx.Flags.GetBool(name)
	return v
}
