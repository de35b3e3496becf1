package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/cmd/rpctree/internal/check"
	"github.com/broady/rpctree/cmd/rpctree/internal/gen"
	"github.com/broady/rpctree/cmd/rpctree/internal/ls"
	"github.com/broady/rpctree/cmd/rpctree/internal/resolve"
	"github.com/broady/rpctree/internal/config"
)

type Globals struct {
	Config   string `help:"Configuration file (default: ./rpctree.yaml if present)." short:"c" type:"path"`
	LogLevel string `help:"Minimum log level: debug, info, warn or error." name:"log-level"`
}

// env loads configuration and builds the environment bound into commands.
func (g *Globals) env(stdout, stderr io.Writer) (*app.Env, error) {
	overrides := map[string]any{}
	if g.LogLevel != "" {
		overrides["log.level"] = g.LogLevel
	}
	cfg, err := config.Load(g.Config, overrides)
	if err != nil {
		return nil, err
	}
	return app.NewEnv(cfg, stdout, stderr), nil
}

type CLI struct {
	Globals

	Version VersionCmd  `cmd:"" help:"Print version information."`
	Resolve resolve.Cmd `cmd:"" help:"Print the params and return of a method."`
	Check   check.Cmd   `cmd:"" help:"Validate a schema and check that method paths resolve."`
	Ls      ls.Cmd      `cmd:"" help:"List callable method paths."`
	Gen     gen.Cmd     `cmd:"" help:"Generate TypeScript declarations."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(env *app.Env) error {
	fmt.Fprintln(env.Stdout, Version())
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("rpctree"),
		kong.Description("Resolve, check and generate TypeScript for RPC handler trees."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	var env *app.Env
	if kctx.Command() == "version" {
		env = app.NewEnv(&config.Config{}, os.Stdout, os.Stderr)
	} else {
		env, err = cli.env(os.Stdout, os.Stderr)
		kctx.FatalIfErrorf(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(env)
	kctx.FatalIfErrorf(err)
}
