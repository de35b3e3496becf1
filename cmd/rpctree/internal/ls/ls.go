package ls

import (
	"fmt"
	"text/tabwriter"

	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/ir"
)

type Cmd struct {
	Schema string `arg:"" optional:"" help:"Schema document (default: schema from config)."`
	Long   bool   `help:"Show resolved params and return." short:"l"`
}

func (c *Cmd) Run(env *app.Env) error {
	path, err := env.SchemaPath(c.Schema)
	if err != nil {
		return err
	}
	_, schema, err := env.LoadSchema(path)
	if err != nil {
		return err
	}

	if !c.Long {
		for _, m := range schema.Methods() {
			fmt.Fprintln(env.Stdout, m.Path)
		}
		return nil
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tPARAMS\tRETURN")
	for _, m := range schema.Methods() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Path, ir.Describe(m.Params), ir.Describe(m.Return))
	}
	return tw.Flush()
}
