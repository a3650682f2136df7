package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/weightsync/engine/mesh"
)

const sampleObj = `# library
o Body
v 0 0 0
v 1 0 0
vn 0 0 1
v 1 1 0
vg Upper Arm
vw 2 0.75
vw 1 1
vg Root
vw 0 1.0
f 1 2 3
`

func TestParseObj(t *testing.T) {
	m, err := ParseObj(strings.NewReader(sampleObj))
	if err != nil {
		t.Fatalf("ParseObj: %v", err)
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", m.VertexCount())
	}
	if len(m.Groups()) != 2 {
		t.Fatalf("groups = %d, want 2", len(m.Groups()))
	}
	arm, ok := m.Group("Upper Arm")
	if !ok {
		t.Fatal("group with a spaced name missing")
	}
	if w, err := arm.Weight(2); err != nil || w != 0.75 {
		t.Errorf("Upper Arm weight(2) = %v, %v", w, err)
	}
	if _, err := arm.Weight(0); err == nil {
		t.Error("vertex 0 should not be in Upper Arm")
	}
	if b := m.Bounds(); b.Max.X != 1 || b.Max.Y != 1 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestParseObjErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 2\n"},
		{"weight outside group", "v 0 0 0\nvw 0 1\n"},
		{"weight arity", "v 0 0 0\nvg A\nvw 0\n"},
		{"weight vertex out of range", "v 0 0 0\nvg A\nvw 3 1\n"},
		{"group without name", "vg\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseObj(strings.NewReader(tt.input)); err == nil {
				t.Error("ParseObj succeeded, want error")
			}
		})
	}
}

func TestObjLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.obj")
	if err := os.WriteFile(path, []byte(sampleObj), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewObjLoader()
	res, err := loader.Load(path, map[string]string{"name": "Body"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, ok := res.Data.(*mesh.Mesh)
	if !ok {
		t.Fatalf("Data is %T, want *mesh.Mesh", res.Data)
	}
	if res.Name != "Body" || res.DataSize != 3 || m.VertexCount() != 3 {
		t.Errorf("resource = %+v", res)
	}
}
