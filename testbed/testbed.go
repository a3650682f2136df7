// Package testbed builds the sample scene and objects used to try the tool out.
package testbed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/scene"
)

const (
	SampleSceneFile   = "scene.toml"
	SampleLibraryFile = "body.obj"
	SampleWeightFile  = "weights.json"
)

// sampleLibrary is a cube. The library ships a single "Root" group; anything else
// is painted in the scene and lost when the library is reloaded.
const sampleLibrary = `# weightsync sample library
o Body
v -1.0 -1.0 -1.0
v  1.0 -1.0 -1.0
v  1.0  1.0 -1.0
v -1.0  1.0 -1.0
v -1.0 -1.0  1.0
v  1.0 -1.0  1.0
v  1.0  1.0  1.0
v -1.0  1.0  1.0
f 1 2 3 4
f 5 6 7 8
vg Root
vw 0 1.0
vw 1 1.0
`

// WriteSample writes a sample scene, with a linked cube and a local prop, into dir
// and returns the scene path. Existing files are overwritten.
func WriteSample(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, SampleLibraryFile), []byte(sampleLibrary), 0o644); err != nil {
		return "", err
	}

	sc := scene.New()
	if err := sc.AddObject(&mesh.Object{
		Name:    "Body",
		Type:    mesh.ObjectTypeMesh,
		Library: SampleLibraryFile,
	}); err != nil {
		return "", err
	}
	prop, err := NewSkinnedObject("Prop", 4, map[string]map[int]float64{
		"Handle": {0: 1.0, 1: 0.5},
		"Blade":  {2: 0.75, 3: 1.0},
	}, "Handle", "Blade")
	if err != nil {
		return "", err
	}
	if err := sc.AddObject(prop); err != nil {
		return "", err
	}
	if err := sc.AddObject(&mesh.Object{Name: "Rig", Type: mesh.ObjectTypeArmature}); err != nil {
		return "", err
	}
	if err := sc.SetActive("Body"); err != nil {
		return "", err
	}

	path := filepath.Join(dir, SampleSceneFile)
	if err := sc.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// NewSkinnedObject builds a local mesh object with vertexCount vertices. Groups are
// created in the order given by order, then filled from weights.
func NewSkinnedObject(name string, vertexCount int, weights map[string]map[int]float64, order ...string) (*mesh.Object, error) {
	m := mesh.New(vertexCount)
	for _, g := range order {
		m.NewGroup(g)
	}
	for group, vw := range weights {
		g, ok := m.Group(group)
		if !ok {
			return nil, fmt.Errorf("group %q not listed in order", group)
		}
		for v, w := range vw {
			if err := g.Add([]int{v}, w, mesh.Replace); err != nil {
				return nil, err
			}
		}
	}
	return &mesh.Object{Name: name, Type: mesh.ObjectTypeMesh, Data: m}, nil
}
