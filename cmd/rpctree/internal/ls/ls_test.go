package ls

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/internal/config"
)

const schemaFile = "../../testdata/api.yaml"

func TestCmd(t *testing.T) {
	cfg := config.Defaults()
	var stdout bytes.Buffer
	env := app.NewEnv(&cfg, &stdout, new(bytes.Buffer))

	if err := (&Cmd{Schema: schemaFile}).Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "ping\nusers.get\nusers.list\nusers.remove\n"
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCmd_Long(t *testing.T) {
	cfg := config.Defaults()
	var stdout bytes.Buffer
	env := app.NewEnv(&cfg, &stdout, new(bytes.Buffer))

	if err := (&Cmd{Schema: schemaFile, Long: true}).Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header and 4 methods:\n%s", len(lines), stdout.String())
	}
	if fields := strings.Fields(lines[0]); !cmp.Equal(fields, []string{"PATH", "PARAMS", "RETURN"}) {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "users.get") || !strings.HasSuffix(lines[2], "@User") {
		t.Errorf("users.get line = %q", lines[2])
	}
}

func TestCmd_SchemaFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Schema = schemaFile
	var stdout bytes.Buffer
	env := app.NewEnv(&cfg, &stdout, new(bytes.Buffer))

	if err := (&Cmd{}).Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "ping\n") {
		t.Errorf("unexpected output: %s", stdout.String())
	}

	cfg.Schema = ""
	if err := (&Cmd{}).Run(env); err == nil {
		t.Error("expected error without a schema")
	}
}
