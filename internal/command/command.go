package command

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"github.com/keshon/fstate/internal/config"
)

// Command represents a cli command
type Command interface {
	Name() string
	Short() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Subcommands() []Command
	Flags(fs *pflag.FlagSet)
	Run(ctx *Context) error
}

// Context represents a cli context
type Context struct {
	Ctx    context.Context
	Args   []string
	Flags  *pflag.FlagSet
	Config *config.Config // set by the config middleware
	Out    io.Writer
	Err    io.Writer
}
