package middleware

import (
	"go.uber.org/zap"

	"github.com/keshon/fstate/internal/command"
	"github.com/keshon/fstate/internal/logging"
)

// WithDebugArgsPrint logs the command name and arguments at debug level.
func WithDebugArgsPrint() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				logging.Debug("running command", zap.String("command", cmd.Name()), zap.Strings("args", ctx.Args))
				return cmd.Run(ctx)
			},
		}
	}
}
