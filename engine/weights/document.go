// Package weights moves vertex group weights between a mesh object and a JSON
// weight document.
package weights

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sort"
	"strconv"
)

// Document is the on-disk weight file.
type Document struct {
	ObjectName  string   `json:"object_name"`
	VertexCount int      `json:"vertex_count"`
	GroupNames  []string `json:"group_names"`
	// VertexGroups maps a vertex index, as a decimal string, to the nonzero weights
	// of that vertex keyed by group name.
	VertexGroups map[string]map[string]float64 `json:"vertex_groups"`
	Validation   Validation                    `json:"validation"`
}

// Validation summarises the stored weights.
type Validation struct {
	VerticesWithWeights int        `json:"vertices_with_weights"`
	GroupsWithWeights   []string   `json:"groups_with_weights"`
	WeightRange         [2]float64 `json:"weight_range"`
}

// Validate recomputes the summary from the sparse weight map. With no weights the
// range stays at its seed values [1, 0].
func (d *Document) Validate() Validation {
	v := Validation{
		VerticesWithWeights: len(d.VertexGroups),
		GroupsWithWeights:   []string{},
		WeightRange:         [2]float64{1.0, 0.0},
	}
	used := make(map[string]struct{})
	for _, groups := range d.VertexGroups {
		for name, w := range groups {
			used[name] = struct{}{}
			v.WeightRange[0] = min(v.WeightRange[0], w)
			v.WeightRange[1] = max(v.WeightRange[1], w)
		}
	}
	if len(used) > 0 {
		v.GroupsWithWeights = slices.Sorted(maps.Keys(used))
	}
	return v
}

// Vertices returns the stored vertex indices in ascending order. Keys that are not
// non-negative integers in plain decimal form are left out.
func (d *Document) Vertices() []int {
	out := make([]int, 0, len(d.VertexGroups))
	for key := range d.VertexGroups {
		if v, ok := parseVertexKey(key); ok {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// Marshal encodes d as indented JSON followed by a newline.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a weight document. vertex_count and group_names are required;
// a missing vertex_groups map decodes as empty.
func Unmarshal(data []byte) (*Document, error) {
	var required struct {
		VertexCount *int      `json:"vertex_count"`
		GroupNames  *[]string `json:"group_names"`
	}
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, err
	}
	if required.VertexCount == nil {
		return nil, errors.New("missing vertex_count")
	}
	if required.GroupNames == nil {
		return nil, errors.New("missing group_names")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.VertexGroups == nil {
		doc.VertexGroups = make(map[string]map[string]float64)
	}
	return &doc, nil
}

func vertexKey(v int) string {
	return strconv.Itoa(v)
}

func parseVertexKey(key string) (int, bool) {
	v, err := strconv.Atoi(key)
	if err != nil || v < 0 || vertexKey(v) != key {
		return 0, false
	}
	return v, true
}
