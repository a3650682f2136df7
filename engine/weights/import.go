package weights

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
)

// LoadResult reports what an import changed.
type LoadResult struct {
	// VerticesAffected counts distinct vertices that received at least one weight.
	VerticesAffected int
	// WeightsApplied counts vertex/group pairs written.
	WeightsApplied int
	GroupsCreated  int
	// Skipped counts stored weights that could not be applied: out of range
	// vertices, unknown groups, or non-positive values.
	Skipped int
}

// ReadDocument loads and decodes the weight file at path.
func ReadDocument(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrLoad, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrLoad, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrParse, path, err)
	}
	return doc, nil
}

// Import replaces the vertex groups of obj with the ones stored at path. Nothing is
// changed when the file is missing, malformed or recorded for a different vertex count.
func Import(obj *mesh.Object, path string) (LoadResult, error) {
	if !obj.IsMesh() {
		return LoadResult{}, core.ErrInvalidSelection
	}
	doc, err := ReadDocument(path)
	if err != nil {
		return LoadResult{}, err
	}
	res, err := Apply(obj, doc)
	if err != nil {
		return res, err
	}

	core.LogInfo("Load validation for '%s':", obj.Name)
	core.LogInfo("- Vertices affected: %d", res.VerticesAffected)
	core.LogInfo("- Groups created: %d", res.GroupsCreated)
	if res.Skipped > 0 {
		core.LogWarn("- Weights skipped: %d", res.Skipped)
	}
	return res, nil
}

// Apply checks doc against obj and then rebuilds every vertex group of obj from it.
// All existing groups are removed, including ones doc does not mention.
func Apply(obj *mesh.Object, doc *Document) (LoadResult, error) {
	if !obj.IsMesh() {
		return LoadResult{}, core.ErrInvalidSelection
	}
	data := obj.Data
	if data.VertexCount() != doc.VertexCount {
		return LoadResult{}, fmt.Errorf("%w: file has %d, mesh has %d",
			core.ErrVertexCountMismatch, doc.VertexCount, data.VertexCount())
	}

	var res LoadResult
	data.ClearGroups()
	for _, name := range doc.GroupNames {
		if data.HasGroup(name) {
			continue
		}
		data.NewGroup(name)
		res.GroupsCreated++
	}

	for _, v := range doc.Vertices() {
		if v >= data.VertexCount() {
			res.Skipped += len(doc.VertexGroups[vertexKey(v)])
			continue
		}
		touched := false
		for name, w := range doc.VertexGroups[vertexKey(v)] {
			if w <= 0.0 {
				res.Skipped++
				continue
			}
			g, ok := data.Group(name)
			if !ok {
				core.LogWarn("weight for vertex %d names unknown group %q, skipping", v, name)
				res.Skipped++
				continue
			}
			if err := g.Add([]int{v}, w, mesh.Replace); err != nil {
				return res, fmt.Errorf("%w: %w", core.ErrLoad, err)
			}
			res.WeightsApplied++
			touched = true
		}
		if touched {
			res.VerticesAffected++
		}
	}
	return res, nil
}
