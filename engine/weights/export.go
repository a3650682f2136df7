package weights

import (
	"errors"
	"fmt"
	"os"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
)

// BuildDocument reads every nonzero vertex group weight of obj into a document.
// Vertices without any nonzero weight are left out.
func BuildDocument(obj *mesh.Object) (*Document, error) {
	if !obj.IsMesh() {
		return nil, core.ErrInvalidSelection
	}
	data := obj.Data
	groups := data.Groups()

	doc := &Document{
		ObjectName:   obj.Name,
		VertexCount:  data.VertexCount(),
		GroupNames:   make([]string, 0, len(groups)),
		VertexGroups: make(map[string]map[string]float64),
	}
	for _, g := range groups {
		doc.GroupNames = append(doc.GroupNames, g.Name)
	}

	for v := 0; v < data.VertexCount(); v++ {
		var vertexWeights map[string]float64
		for _, g := range groups {
			w, err := g.Weight(v)
			if err != nil {
				if errors.Is(err, mesh.ErrNotInGroup) {
					continue
				}
				return nil, err
			}
			if w <= 0.0 {
				continue
			}
			if vertexWeights == nil {
				vertexWeights = make(map[string]float64)
			}
			vertexWeights[g.Name] = w
		}
		if vertexWeights != nil {
			doc.VertexGroups[vertexKey(v)] = vertexWeights
		}
	}

	doc.Validation = doc.Validate()
	return doc, nil
}

// Export writes the weights of obj to path, replacing any existing file.
func Export(obj *mesh.Object, path string) (*Document, error) {
	doc, err := BuildDocument(obj)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSelection) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrSave, err)
	}

	data, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSave, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSave, err)
	}

	v := doc.Validation
	core.LogInfo("Weight validation data for '%s':", obj.Name)
	core.LogInfo("- Vertices with weights: %d", v.VerticesWithWeights)
	core.LogInfo("- Groups with weights: %v", v.GroupsWithWeights)
	core.LogInfo("- Weight range: %g to %g", v.WeightRange[0], v.WeightRange[1])
	return doc, nil
}
