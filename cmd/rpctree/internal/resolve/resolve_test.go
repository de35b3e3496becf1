package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/cmd/rpctree/internal/app"
	"github.com/broady/rpctree/internal/config"
)

const schemaFile = "../../testdata/api.yaml"

func testEnv() (*app.Env, *bytes.Buffer) {
	cfg := config.Defaults()
	var stdout, stderr bytes.Buffer
	return app.NewEnv(&cfg, &stdout, &stderr), &stdout
}

func TestCmd_Formats(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		format string
		want   string
	}{
		{
			name:   "text",
			path:   "users.get",
			format: "text",
			want:   "params: {auth: string, tenant: string, id: int64}\nreturn: @User\n",
		},
		{
			name:   "ts",
			path:   "ping",
			format: "ts",
			want:   "type Params = {\n  auth: string;\n};\ntype Return = {\n  pong: boolean;\n};\n",
		},
		{
			name:   "ts reference",
			path:   "users.list",
			format: "ts",
			want:   "type Params = {\n  auth: string;\n  tenant: string;\n  page?: Page;\n};\ntype Return = User[];\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, stdout := testEnv()
			cmd := &Cmd{Schema: schemaFile, Path: tt.path, Format: tt.format}
			if err := cmd.Run(env); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if diff := cmp.Diff(tt.want, stdout.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCmd_JSON(t *testing.T) {
	env, stdout := testEnv()
	cmd := &Cmd{Schema: schemaFile, Path: "users.remove", Format: "json"}
	if err := cmd.Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got struct {
		Path   string `json:"path"`
		Params struct {
			Kind   string `json:"kind"`
			Fields []struct {
				Name string `json:"name"`
			} `json:"fields"`
		} `json:"params"`
		Return struct {
			Kind          string `json:"kind"`
			PrimitiveKind string `json:"primitiveKind"`
		} `json:"return"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.Path != "users.remove" || got.Params.Kind != "object" || got.Return.Kind != "primitive" || got.Return.PrimitiveKind != "Empty" {
		t.Errorf("unexpected output: %s", stdout)
	}
	var names []string
	for _, f := range got.Params.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"auth", "tenant", "id"}, names); diff != "" {
		t.Errorf("param names mismatch (-want +got):\n%s", diff)
	}
}

func TestCmd_Unresolved(t *testing.T) {
	tests := []struct {
		path   string
		reason rpctree.Reason
	}{
		{"", rpctree.ReasonEmptyPath},
		{"users..get", rpctree.ReasonEmptySegment},
		{"users.delete", rpctree.ReasonMissingChild},
		{"users", rpctree.ReasonNotInvocable},
		{"ping.now", rpctree.ReasonPastLeaf},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			env, stdout := testEnv()
			err := (&Cmd{Schema: schemaFile, Path: tt.path, Format: "text"}).Run(env)
			var unresolved *rpctree.UnresolvedError
			if !errors.As(err, &unresolved) {
				t.Fatalf("error = %v, want *UnresolvedError", err)
			}
			if unresolved.Reason != tt.reason {
				t.Errorf("Reason = %s, want %s", unresolved.Reason, tt.reason)
			}
			if stdout.Len() != 0 {
				t.Errorf("unexpected output on failure: %s", stdout)
			}
		})
	}
}

func TestCmd_BadSchema(t *testing.T) {
	env, _ := testEnv()
	err := (&Cmd{Schema: "../../testdata/missing.yaml", Path: "ping", Format: "text"}).Run(env)
	if err == nil {
		t.Fatal("expected error for missing schema")
	}
}
