// Package app holds what every rpctree command needs: configuration,
// logging, output streams and schema loading.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/document"
	"github.com/broady/rpctree/internal/config"
)

// Env is bound into every command's Run method.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// NewEnv returns an Env logging as text to stderr at the configured level.
func NewEnv(cfg *config.Config, stdout, stderr io.Writer) *Env {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return &Env{
		Config: cfg,
		Logger: logger,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// SchemaPath returns arg, or the configured schema if arg is empty.
func (e *Env) SchemaPath(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if e.Config.Schema != "" {
		return e.Config.Schema, nil
	}
	return "", errors.New("no schema given and none configured (set schema in " + config.DefaultFile + ")")
}

// Load reads the schema document at path.
func (e *Env) Load(path string) (*document.Document, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("loaded schema",
		slog.String("file", path),
		slog.Int("types", len(doc.Types)))
	return doc, nil
}

// Compile validates the document's handler tree and resolves every method.
func (e *Env) Compile(doc *document.Document) (*rpctree.Schema, error) {
	schema, err := rpctree.NewCompiler().WithLogger(e.Logger).Compile(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.File, err)
	}
	return schema, nil
}

// LoadSchema loads and compiles the schema document at path.
func (e *Env) LoadSchema(path string) (*document.Document, *rpctree.Schema, error) {
	doc, err := e.Load(path)
	if err != nil {
		return nil, nil, err
	}
	schema, err := e.Compile(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, schema, nil
}
