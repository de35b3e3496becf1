package typescript

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/ir"
)

func TestEmitTypeExpr(t *testing.T) {
	tests := []struct {
		name string
		typ  ir.TypeDescriptor
		want string
	}{
		{"string", ir.String(), "string"},
		{"bool", ir.Bool(), "boolean"},
		{"int", ir.Int(64), "number"},
		{"bytes", ir.Bytes(), "string"},
		{"time", ir.Time(), "string"},
		{"duration", ir.Duration(), "number"},
		{"any", ir.Any(), "unknown"},
		{"empty", ir.Empty(), "Record<string, never>"},
		{"ptr", ir.Ptr(ir.String()), "string | null"},
		{"slice", ir.Slice(ir.String()), "string[]"},
		{"slice of ptr", ir.Slice(ir.Ptr(ir.String())), "(string | null)[]"},
		{"slice of union", ir.Slice(ir.Union(ir.String(), ir.Bool())), "(string | boolean)[]"},
		{"tuple", ir.Array(ir.Int(32), 3), "[number, number, number]"},
		{"long array", ir.Array(ir.Int(8), 11), "number[]"},
		{"map", ir.Map(ir.String(), ir.Int(64)), "Record<string, number>"},
		{"map with named key", ir.Map(ir.Ref("Key", ""), ir.Bool()), "Record<Key, boolean>"},
		{"map of ptr", ir.Map(ir.String(), ir.Ptr(ir.Bool())), "Record<string, boolean | null>"},
		{"reference", ir.Ref("User", "example.com/api"), "User"},
		{"sanitized reference", ir.Ref("api.User", ""), "api_User"},
		{"union", ir.Union(ir.String(), ir.Int(0)), "string | number"},
		{"empty union", ir.Union(), "never"},
		{"empty object", ir.Object(), "{}"},
		{
			name: "object",
			typ: ir.Object(
				ir.NewField("id", ir.String()),
				ir.OptionalField("class", ir.Int(0)),
				ir.NewField("x-y", ir.Bool()),
			),
			want: "{\n  id: string;\n  \"class\"?: number;\n  \"x-y\": boolean;\n}",
		},
		{
			name: "nested object",
			typ: ir.Slice(ir.Object(
				ir.NewField("tags", ir.Map(ir.String(), ir.Object(ir.NewField("v", ir.Bool())))),
			)),
			want: "{\n  tags: Record<string, {\n    v: boolean;\n  }>;\n}[]",
		},
	}

	e := NewEmitter(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EmitTypeExpr(tt.typ)
			if err != nil {
				t.Fatalf("EmitTypeExpr: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EmitTypeExpr mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitTypeExpr_Config(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		typ  ir.TypeDescriptor
		want string
	}{
		{"any", Config{UnknownType: "any"}, ir.Any(), "any"},
		{"readonly", Config{ReadonlyArrays: true}, ir.Slice(ir.String()), "readonly string[]"},
		{"readonly nested", Config{ReadonlyArrays: true}, ir.Slice(ir.Slice(ir.String())), "readonly (readonly string[])[]"},
		{"readonly tuple", Config{ReadonlyArrays: true}, ir.Array(ir.Bool(), 2), "[boolean, boolean]"},
		{"indent", Config{IndentSize: 4}, ir.Object(ir.NewField("a", ir.String())), "{\n    a: string;\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEmitter(tt.cfg).EmitTypeExpr(tt.typ)
			if err != nil {
				t.Fatalf("EmitTypeExpr: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EmitTypeExpr mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitTypeExpr_FieldDocs(t *testing.T) {
	deprecated := "use id"
	obj := ir.Object(
		ir.FieldDescriptor{Name: "id", Type: ir.String(), Documentation: ir.Documentation{Summary: "The user ID."}},
		ir.FieldDescriptor{Name: "uid", Type: ir.String(), Documentation: ir.Documentation{Body: "Legacy ID.", Deprecated: &deprecated}},
	)
	want := `{
  /** The user ID. */
  id: string;
  /**
   * Legacy ID.
   * @deprecated use id
   */
  uid: string;
}`

	got, err := NewEmitter(DefaultConfig()).EmitTypeExpr(obj)
	if err != nil {
		t.Fatalf("EmitTypeExpr: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmitTypeExpr mismatch (-want +got):\n%s", diff)
	}

	cfg := DefaultConfig()
	cfg.EmitComments = false
	got, err = NewEmitter(cfg).EmitTypeExpr(obj)
	if err != nil {
		t.Fatalf("EmitTypeExpr: %v", err)
	}
	if strings.Contains(got, "/**") {
		t.Errorf("comments emitted with EmitComments=false:\n%s", got)
	}
}

func TestEmitTypeExpr_Errors(t *testing.T) {
	tests := []struct {
		name    string
		typ     ir.TypeDescriptor
		wantErr string
	}{
		{"nil", nil, "missing type"},
		{"nil field type", ir.Object(ir.NewField("t", nil)), "property t: missing type"},
		{"nil element", ir.Slice(nil), "missing type"},
	}

	e := NewEmitter(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.EmitTypeExpr(tt.typ)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmitTree(t *testing.T) {
	root := rpctree.NewParent(ir.Object(ir.NewField("auth", ir.String()))).
		Add("ping", rpctree.NewLeaf(nil, ir.Bool()).WithDoc("Checks liveness.")).
		Add("users", rpctree.NewParent(nil).
			Add("get", rpctree.NewLeaf(ir.Object(ir.NewField("id", ir.Int(64))), ir.Ref("User", ""))))

	want := `{
  _PARAMS: {
    auth: string;
  };
  _CHILDREN: {
    /** Checks liveness. */
    ping: {
      _PARAMS: {};
      _RETURN: boolean;
    };
    users: {
      _PARAMS: {};
      _CHILDREN: {
        get: {
          _PARAMS: {
            id: number;
          };
          _RETURN: User;
        };
      };
    };
  };
}`

	got, err := NewEmitter(DefaultConfig()).EmitTree(root)
	if err != nil {
		t.Fatalf("EmitTree: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmitTree mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitTree_EmptyNamespace(t *testing.T) {
	got, err := NewEmitter(DefaultConfig()).EmitTree(rpctree.NewParent(nil))
	if err != nil {
		t.Fatalf("EmitTree: %v", err)
	}
	want := "{\n  _PARAMS: {};\n  _CHILDREN: {};\n}"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmitTree mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitTree_NamespaceReturnOmitted(t *testing.T) {
	users := rpctree.NewParent(nil).Add("create", rpctree.NewLeaf(nil, ir.String()))
	users.Return = ir.Bool()
	root := rpctree.NewParent(nil).Add("users", users)

	want := `{
  _PARAMS: {};
  _CHILDREN: {
    users: {
      _PARAMS: {};
      _CHILDREN: {
        create: {
          _PARAMS: {};
          _RETURN: string;
        };
      };
    };
  };
}`

	got, err := NewEmitter(DefaultConfig()).EmitTree(root)
	if err != nil {
		t.Fatalf("EmitTree: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmitTree mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitTree_QuotedNames(t *testing.T) {
	root := rpctree.NewParent(nil).
		Add("delete", rpctree.NewLeaf(nil, ir.Bool())).
		Add("get-all", rpctree.NewLeaf(nil, ir.Bool()))

	got, err := NewEmitter(DefaultConfig()).EmitTree(root)
	if err != nil {
		t.Fatalf("EmitTree: %v", err)
	}
	for _, want := range []string{`"delete": {`, `"get-all": {`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in:\n%s", want, got)
		}
	}
}

func TestEmitTree_Errors(t *testing.T) {
	var nilLeaf *rpctree.Leaf

	tests := []struct {
		name    string
		root    rpctree.Node
		wantErr string
	}{
		{"nil root", nil, `handler "" is nil`},
		{"nil child", rpctree.NewParent(nil).Add("gone", nilLeaf), `handler "gone" is nil`},
		{
			name:    "missing return",
			root:    rpctree.NewParent(nil).Add("ns", rpctree.NewParent(nil).Add("m", rpctree.NewLeaf(nil, nil))),
			wantErr: `method "ns.m" has no return shape`,
		},
		{
			name:    "bad params",
			root:    rpctree.NewParent(ir.Object(ir.NewField("x", nil))),
			wantErr: `params of "<root>": property x: missing type`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmitter(DefaultConfig()).EmitTree(tt.root)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"id", "id"},
		{"_private", "_private"},
		{"$ref", "$ref"},
		{"userID2", "userID2"},
		{"2fa", `"2fa"`},
		{"x-y", `"x-y"`},
		{"class", `"class"`},
		{"", `""`},
		{`a"b`, `"a\"b"`},
	}
	for _, tt := range tests {
		if got := propertyName(tt.in); got != tt.want {
			t.Errorf("propertyName(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"User", "User"},
		{"api.User", "api_User"},
		{"Page[T]", "Page_T_"},
		{"2D", "_2D"},
		{"default", "default_"},
	}
	for _, tt := range tests {
		if got := typeName(tt.in); got != tt.want {
			t.Errorf("typeName(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
