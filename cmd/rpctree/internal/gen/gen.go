package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/internal/watch"
	"github.com/broady/rpctree/sink"
	"github.com/broady/rpctree/typescript"
)

type Cmd struct {
	Schema string `arg:"" optional:"" help:"Schema document (default: schema from config)."`
	Out    string `arg:"" optional:"" help:"Output directory for generated files (default: out from config)."`
	Watch  bool   `help:"Watch the schema and regenerate on change." short:"w"`
}

func (c *Cmd) Run(ctx context.Context, env *app.Env) error {
	schemaPath, err := env.SchemaPath(c.Schema)
	if err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = env.Config.Out
	}
	if out == "" {
		return errors.New("no output directory given and none configured")
	}
	outDir, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	if !c.Watch {
		return c.generate(ctx, env, schemaPath, outDir)
	}

	// A broken schema is reported and watched until fixed.
	if err := c.generate(ctx, env, schemaPath, outDir); err != nil {
		env.Logger.Error("generation failed", slog.Any("error", err))
	}
	w, err := watch.New(schemaPath)
	if err != nil {
		return err
	}
	w = w.WithDebounce(env.Config.Watch.Debounce).WithLogger(env.Logger)
	return w.Run(ctx, func(ctx context.Context, _ string) error {
		return c.generate(ctx, env, schemaPath, outDir)
	})
}

func (c *Cmd) generate(ctx context.Context, env *app.Env, schemaPath, outDir string) error {
	doc, schema, err := env.LoadSchema(schemaPath)
	if err != nil {
		return err
	}

	out := sink.NewFilesystemSink(outDir).
		WithSkipUnchanged(true).
		WithLogger(env.Logger)
	result, err := typescript.FromSchema(schema).
		WithTypes(doc.Types...).
		WithConfig(env.Config.TypeScriptConfig()).
		WithLogger(env.Logger).
		ToSink(ctx, out)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		env.Logger.Warn(w.Message, slog.String("code", w.Code), slog.String("type", w.TypeName))
	}
	fmt.Fprintf(env.Stdout, "✓ Wrote %d files to %s (%d methods)\n", len(result.Files), outDir, result.Methods)
	return nil
}
