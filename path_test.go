package rpctree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path      string
		want      []string
		wantDepth int
		wantErr   Reason
	}{
		{path: "ping", want: []string{"ping"}},
		{path: "users.create", want: []string{"users", "create"}},
		{path: "a.b.c.d", want: []string{"a", "b", "c", "d"}},
		{path: "", wantErr: ReasonEmptyPath},
		{path: ".", wantErr: ReasonEmptySegment},
		{path: "a..b", wantDepth: 1, wantErr: ReasonEmptySegment},
		{path: "a.b.", wantDepth: 2, wantErr: ReasonEmptySegment},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := SplitPath(tt.path)
			if tt.wantErr != "" {
				var unresolved *UnresolvedError
				if !errors.As(err, &unresolved) {
					t.Fatalf("expected *UnresolvedError, got %v", err)
				}
				if unresolved.Reason != tt.wantErr || unresolved.Depth != tt.wantDepth {
					t.Errorf("got reason %s depth %d, want %s depth %d", unresolved.Reason, unresolved.Depth, tt.wantErr, tt.wantDepth)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitPath: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitPath mismatch (-want +got):\n%s", diff)
			}
			if joined := JoinPath(got...); joined != tt.path {
				t.Errorf("JoinPath = %q, want %q", joined, tt.path)
			}
		})
	}
}
