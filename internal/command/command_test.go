package command

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmd struct {
	name    string
	short   string
	aliases []string
	subs    []Command

	ran    bool
	args   []string
	target string
}

func (f *fakeCmd) Name() string           { return f.name }
func (f *fakeCmd) Short() string          { return f.short }
func (f *fakeCmd) Aliases() []string      { return f.aliases }
func (f *fakeCmd) Usage() string          { return f.name + " [path...]" }
func (f *fakeCmd) Brief() string          { return "brief " + f.name }
func (f *fakeCmd) Help() string           { return "help " + f.name }
func (f *fakeCmd) Subcommands() []Command { return f.subs }
func (f *fakeCmd) Flags(fs *pflag.FlagSet) {
	fs.StringP("target", "t", "", "")
}

func (f *fakeCmd) Run(ctx *Context) error {
	f.ran = true
	f.args = ctx.Args
	f.target, _ = ctx.Flags.GetString("target")
	fmt.Fprintf(ctx.Out, "ran %s\n", f.name)
	return nil
}

func (f *fakeCmd) reset() {
	f.ran, f.args, f.target = false, nil, ""
}

func TestTreeRegisterAndGet(t *testing.T) {
	tr := NewTree()
	a := &fakeCmd{name: "alpha", short: "A", aliases: []string{"al"}}
	b := &fakeCmd{name: "beta"}
	tr.Register(b)
	tr.Register(a)

	for _, name := range []string{"alpha", "al", "A"} {
		got, ok := tr.Get(name)
		require.True(t, ok, name)
		assert.Same(t, a, got)
	}
	_, ok := tr.Get("gamma")
	assert.False(t, ok)

	top := tr.Top()
	require.Len(t, top, 2)
	assert.Equal(t, "alpha", top[0].Name())
	assert.Equal(t, "beta", top[1].Name())
}

func TestApplyMiddlewaresOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(cmd Command) Command {
			return &WrappedCommand{Command: cmd, Wrap: func(ctx *Context) error {
				order = append(order, name)
				return cmd.Run(ctx)
			}}
		}
	}

	base := &fakeCmd{name: "base"}
	cmd := ApplyMiddlewares(base, mw("inner"), mw("outer"))
	require.NoError(t, cmd.Run(&Context{Flags: pflag.NewFlagSet("x", pflag.ContinueOnError), Out: &bytes.Buffer{}}))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.True(t, base.ran)
	assert.Equal(t, "base", cmd.Name())
}

func TestWrappedCommandWithoutWrap(t *testing.T) {
	base := &fakeCmd{name: "base"}
	w := &WrappedCommand{Command: base}
	require.NoError(t, w.Run(&Context{Flags: pflag.NewFlagSet("x", pflag.ContinueOnError), Out: &bytes.Buffer{}}))
	assert.True(t, base.ran)
}

func TestExecute(t *testing.T) {
	child := &fakeCmd{name: "child"}
	def := &fakeCmd{name: DefaultCommand}
	other := &fakeCmd{name: "other", short: "O", subs: []Command{child}}
	RegisterCommand(def)
	RegisterCommand(other)

	run := func(args ...string) (string, error) {
		def.reset()
		other.reset()
		child.reset()
		var out bytes.Buffer
		err := Execute(context.Background(), args, &out, &bytes.Buffer{})
		return out.String(), err
	}

	t.Run("root runs the default command", func(t *testing.T) {
		out, err := run("-t", "x", "a", "b")
		require.NoError(t, err)
		assert.True(t, def.ran)
		assert.Equal(t, []string{"a", "b"}, def.args)
		assert.Equal(t, "x", def.target)
		assert.Equal(t, "ran sync\n", out)
	})

	t.Run("named default command", func(t *testing.T) {
		_, err := run(DefaultCommand, "--target", "y", "c")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, def.args)
		assert.Equal(t, "y", def.target)
	})

	t.Run("short name and subcommand", func(t *testing.T) {
		out, err := run("O", "child", "z")
		require.NoError(t, err)
		assert.False(t, other.ran)
		assert.True(t, child.ran)
		assert.Equal(t, []string{"z"}, child.args)
		assert.Equal(t, "ran child\n", out)
	})

	t.Run("persistent flags reach subcommands", func(t *testing.T) {
		root := NewRoot()
		root.SetArgs([]string{"other", "--log-level", "debug"})
		root.SetOut(&bytes.Buffer{})
		require.NoError(t, root.Execute())
		assert.True(t, other.ran)
	})

	t.Run("version flag", func(t *testing.T) {
		out, err := run("--version")
		require.NoError(t, err)
		assert.Equal(t, "fstate version dev\n", out)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := run("--bogus")
		assert.Error(t, err)
	})
}
