// Package mesh holds the object and vertex group model weights are read from and
// written to.
package mesh

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/weightsync/engine/math"
)

var (
	ErrNotInGroup       = errors.New("vertex not in group")
	ErrGroupNotFound    = errors.New("vertex group not found")
	ErrVertexOutOfRange = errors.New("vertex index out of range")
)

// Mesh is the geometry data of an object: vertex positions plus the ordered
// vertex groups defined on it.
type Mesh struct {
	Vertices []math.Vec3
	groups   []*VertexGroup
}

// New creates a mesh with vertexCount vertices at the origin.
func New(vertexCount int) *Mesh {
	return &Mesh{Vertices: make([]math.Vec3, max(vertexCount, 0))}
}

// FromVertices creates a mesh that owns vertices.
func FromVertices(vertices []math.Vec3) *Mesh {
	return &Mesh{Vertices: vertices}
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh) Bounds() math.Extents3D {
	return math.ExtentsOf(m.Vertices)
}

// Groups returns the vertex groups in index order. The slice must not be modified.
func (m *Mesh) Groups() []*VertexGroup {
	return m.groups
}

// Group looks a vertex group up by name.
func (m *Mesh) Group(name string) (*VertexGroup, bool) {
	for _, g := range m.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

func (m *Mesh) HasGroup(name string) bool {
	_, ok := m.Group(name)
	return ok
}

// NewGroup appends a vertex group. Taken names get a numeric suffix (".001", ".002", ...)
// the way the editor names duplicates.
func (m *Mesh) NewGroup(name string) *VertexGroup {
	if name == "" {
		name = "Group"
	}
	unique := name
	for i := 1; m.HasGroup(unique); i++ {
		unique = fmt.Sprintf("%s.%03d", name, i)
	}
	g := &VertexGroup{
		Name:    unique,
		Index:   len(m.groups),
		mesh:    m,
		weights: make(map[int]float64),
	}
	m.groups = append(m.groups, g)
	return g
}

// RemoveGroup deletes g and re-indexes the groups after it.
func (m *Mesh) RemoveGroup(g *VertexGroup) error {
	if g == nil || g.mesh != m || g.Index >= len(m.groups) || m.groups[g.Index] != g {
		return ErrGroupNotFound
	}
	m.groups = append(m.groups[:g.Index], m.groups[g.Index+1:]...)
	for i := g.Index; i < len(m.groups); i++ {
		m.groups[i].Index = i
	}
	g.mesh = nil
	return nil
}

// ClearGroups removes every vertex group.
func (m *Mesh) ClearGroups() {
	for _, g := range m.groups {
		g.mesh = nil
	}
	m.groups = nil
}

// WeightedVertexCount counts the vertices that belong to at least one group.
func (m *Mesh) WeightedVertexCount() int {
	seen := make(map[int]struct{})
	for _, g := range m.groups {
		for v := range g.weights {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// Clone returns a deep copy of the mesh, vertex groups included.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Vertices: append([]math.Vec3(nil), m.Vertices...)}
	for _, g := range m.groups {
		ng := c.NewGroup(g.Name)
		for v, w := range g.weights {
			ng.weights[v] = w
		}
	}
	return c
}
