package mesh

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/weightsync/engine/math"
)

// AssignMode selects how Add combines a new weight with an existing one.
type AssignMode int

const (
	// Replace overwrites the current weight.
	Replace AssignMode = iota
	// Add sums the new weight onto the current one.
	Add
	// Subtract removes the new weight from the current one. Vertices not in the
	// group are left untouched.
	Subtract
)

func (m AssignMode) String() string {
	switch m {
	case Replace:
		return "REPLACE"
	case Add:
		return "ADD"
	case Subtract:
		return "SUBTRACT"
	default:
		return fmt.Sprintf("AssignMode(%d)", int(m))
	}
}

// VertexGroup is a named set of vertices with a weight per member vertex.
// A vertex can be a member with weight 0.
type VertexGroup struct {
	Name  string
	Index int

	mesh    *Mesh
	weights map[int]float64
}

// Weight returns the weight of vertex v, or ErrNotInGroup if v is not a member.
func (g *VertexGroup) Weight(v int) (float64, error) {
	w, ok := g.weights[v]
	if !ok {
		return 0, fmt.Errorf("%w: vertex %d, group %q", ErrNotInGroup, v, g.Name)
	}
	return w, nil
}

// Add assigns weight to every vertex in indices. Weights are clamped to [0, 1].
func (g *VertexGroup) Add(indices []int, weight float64, mode AssignMode) error {
	if g.mesh == nil {
		return fmt.Errorf("%w: %q was removed", ErrGroupNotFound, g.Name)
	}
	count := g.mesh.VertexCount()
	for _, v := range indices {
		if v < 0 || v >= count {
			return fmt.Errorf("%w: %d (mesh has %d vertices)", ErrVertexOutOfRange, v, count)
		}
	}
	for _, v := range indices {
		current, member := g.weights[v]
		switch mode {
		case Replace:
			g.weights[v] = math.Saturate(weight)
		case Add:
			g.weights[v] = math.Saturate(current + weight)
		case Subtract:
			if member {
				g.weights[v] = math.Saturate(current - weight)
			}
		default:
			return fmt.Errorf("unknown assign mode %s", mode)
		}
	}
	return nil
}

// Remove drops the membership of every vertex in indices.
func (g *VertexGroup) Remove(indices []int) {
	for _, v := range indices {
		delete(g.weights, v)
	}
}

// Members returns the member vertex indices in ascending order.
func (g *VertexGroup) Members() []int {
	out := make([]int, 0, len(g.weights))
	for v := range g.weights {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
