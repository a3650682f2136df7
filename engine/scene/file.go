package scene

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
)

type sceneFile struct {
	ActiveObject string       `toml:"active_object,omitempty"`
	WeightSync   SyncSettings `toml:"weight_sync"`
	Objects      []objectFile `toml:"objects"`
}

type objectFile struct {
	ID      string `toml:"id,omitempty"`
	Name    string `toml:"name"`
	Type    string `toml:"type,omitempty"`
	Library string `toml:"library,omitempty"`
	// Local mesh data. Linked objects take both from their library.
	VertexCount  int         `toml:"vertex_count,omitempty"`
	VertexGroups []groupFile `toml:"vertex_groups,omitempty"`
}

type groupFile struct {
	Name    string             `toml:"name"`
	Weights map[string]float64 `toml:"weights,inline"`
}

// Open reads the scene file at path and starts loading its linked libraries.
// The scene is usable once Ready reports true.
func Open(path string, loader LibraryLoader) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	s.Path = path
	if loader != nil {
		s.LoadLibraries(loader)
	}
	return s, nil
}

// Decode builds a scene from TOML. Libraries are not loaded.
func Decode(data []byte) (*Scene, error) {
	var f sceneFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	s := New()
	s.Settings = f.WeightSync
	seen := make(map[string]bool, len(f.Objects))
	for _, of := range f.Objects {
		obj := &mesh.Object{
			Name:    of.Name,
			Type:    mesh.ObjectType(of.Type),
			Library: of.Library,
		}
		if obj.Type == "" {
			obj.Type = mesh.ObjectTypeMesh
		}
		if seen[of.ID] {
			obj.ID = core.IdentifierAcquireNewID(obj)
		} else {
			obj.ID = core.IdentifierClaim(of.ID, obj)
		}
		seen[obj.ID] = true
		if obj.Type == mesh.ObjectTypeMesh && !obj.IsLinked() {
			m, err := decodeMesh(of)
			if err != nil {
				return nil, fmt.Errorf("object %q: %w", of.Name, err)
			}
			obj.Data = m
		}
		if err := s.AddObject(obj); err != nil {
			return nil, err
		}
	}
	if err := s.SetActive(f.ActiveObject); err != nil {
		return nil, fmt.Errorf("active object: %w", err)
	}
	return s, nil
}

func decodeMesh(of objectFile) (*mesh.Mesh, error) {
	if of.VertexCount < 0 {
		return nil, fmt.Errorf("negative vertex_count %d", of.VertexCount)
	}
	m := mesh.New(of.VertexCount)
	for _, gf := range of.VertexGroups {
		g := m.NewGroup(gf.Name)
		for key, w := range gf.Weights {
			v, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("group %q: bad vertex index %q", gf.Name, key)
			}
			if err := g.Add([]int{v}, w, mesh.Replace); err != nil {
				return nil, fmt.Errorf("group %q: %w", gf.Name, err)
			}
		}
	}
	return m, nil
}

// Encode renders the scene as TOML. Linked objects are written as references only.
func (s *Scene) Encode() ([]byte, error) {
	f := sceneFile{
		ActiveObject: s.active,
		WeightSync:   s.Settings,
		Objects:      make([]objectFile, 0, len(s.objects)),
	}
	for _, o := range s.objects {
		of := objectFile{
			ID:      o.ID,
			Name:    o.Name,
			Type:    string(o.Type),
			Library: o.Library,
		}
		if o.IsMesh() && !o.IsLinked() {
			of.VertexCount = o.Data.VertexCount()
			for _, g := range o.Data.Groups() {
				gf := groupFile{Name: g.Name, Weights: make(map[string]float64)}
				for _, v := range g.Members() {
					w, _ := g.Weight(v)
					gf.Weights[strconv.Itoa(v)] = w
				}
				of.VertexGroups = append(of.VertexGroups, gf)
			}
		}
		f.Objects = append(f.Objects, of)
	}
	return toml.Marshal(f)
}

// Save writes the scene to path and remembers path as the scene file.
func (s *Scene) Save(path string) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	s.Path = path
	return nil
}
