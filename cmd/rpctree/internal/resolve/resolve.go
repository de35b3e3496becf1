package resolve

import (
	"encoding/json"
	"fmt"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/ir"
	"github.com/broady/rpctree/typescript"
)

type Cmd struct {
	Schema string `arg:"" help:"Schema document (YAML or JSON)." type:"existingfile"`
	Path   string `arg:"" help:"Dotted method path, e.g. users.create."`
	Format string `help:"Output format: text, ts or json." enum:"text,ts,json" default:"text" short:"f"`
}

type result struct {
	Path   string               `json:"path"`
	Params *ir.ObjectDescriptor `json:"params"`
	Return ir.TypeDescriptor    `json:"return"`
}

func (c *Cmd) Run(env *app.Env) error {
	doc, err := env.Load(c.Schema)
	if err != nil {
		return err
	}

	params, err := rpctree.ResolveParams(doc.Root, c.Path)
	if err != nil {
		return err
	}
	ret, err := rpctree.ResolveReturn(doc.Root, c.Path)
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result{Path: c.Path, Params: params, Return: ret})

	case "ts":
		cfg := env.Config.TypeScriptConfig()
		cfg.EmitComments = false
		e := typescript.NewEmitter(cfg)
		p, err := e.EmitTypeExpr(params)
		if err != nil {
			return err
		}
		r, err := e.EmitTypeExpr(ret)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "type Params = %s;\n", p)
		fmt.Fprintf(env.Stdout, "type Return = %s;\n", r)

	default:
		fmt.Fprintf(env.Stdout, "params: %s\n", ir.Describe(params))
		fmt.Fprintf(env.Stdout, "return: %s\n", ir.Describe(ret))
	}
	return nil
}
