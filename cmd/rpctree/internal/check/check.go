package check

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/cmd/rpctree/internal/app"
)

type Cmd struct {
	Schema    string   `arg:"" help:"Schema document (YAML or JSON)." type:"existingfile"`
	Paths     []string `arg:"" optional:"" name:"path" help:"Method paths that must resolve."`
	PathsFile string   `name:"paths" help:"File of method paths, one per line. Lines starting with # are ignored." type:"existingfile"`
}

func (c *Cmd) Run(env *app.Env) error {
	_, schema, err := env.LoadSchema(c.Schema)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "✓ Schema valid: %d methods\n", schema.Len())

	paths := c.Paths
	if c.PathsFile != "" {
		listed, err := ReadPaths(c.PathsFile)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return nil
	}

	var failed int
	for _, path := range paths {
		if err := resolves(schema, path); err != nil {
			fmt.Fprintf(env.Stderr, "✗ %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d paths do not resolve", failed, len(paths))
	}
	fmt.Fprintf(env.Stdout, "✓ %d paths resolve\n", len(paths))
	return nil
}

func resolves(schema *rpctree.Schema, path string) error {
	if _, err := schema.ResolveParams(path); err != nil {
		return err
	}
	_, err := schema.ResolveReturn(path)
	return err
}

// ReadPaths reads one method path per line, skipping blank lines and
// lines starting with "#".
func ReadPaths(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return paths, nil
}
