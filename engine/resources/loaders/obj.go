package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/weightsync/engine/math"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/resources"
)

// ObjLoader reads library meshes from Wavefront OBJ files. Only vertex positions
// are kept. Two extension statements declare vertex groups the library ships with:
//
//	vg <name>               start a vertex group
//	vw <vertex> <weight>    assign a weight in the current group (0-based vertex)
type ObjLoader struct{}

func NewObjLoader() ResourceLoader {
	return ResourceLoader{
		ResourceType:            resources.ResourceTypeMesh,
		Extensions:              []string{".obj"},
		ResourceLoaderInterface: &ObjLoader{},
	}
}

func (ol *ObjLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseObj(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := path
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}
	return &resources.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(m.VertexCount()),
		Data:     m,
	}, nil
}

func (ol *ObjLoader) Unload(*resources.Resource) error {
	return nil
}

type pendingWeight struct {
	line   int
	group  *mesh.VertexGroup
	vertex int
	weight float64
}

// ParseObj builds a mesh from OBJ text.
func ParseObj(r io.Reader) (*mesh.Mesh, error) {
	var (
		vertices []math.Vec3
		current  *mesh.VertexGroup
		pending  []pendingWeight
	)
	m := mesh.New(0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var xyz [3]float32
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				xyz[i] = float32(f)
			}
			vertices = append(vertices, math.NewVec3(xyz[0], xyz[1], xyz[2]))
		case "vg":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: vertex group needs a name", lineNo)
			}
			current = m.NewGroup(strings.Join(fields[1:], " "))
		case "vw":
			if current == nil {
				return nil, fmt.Errorf("line %d: weight outside of a vertex group", lineNo)
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: weight needs a vertex and a value", lineNo)
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			w, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pending = append(pending, pendingWeight{line: lineNo, group: current, vertex: v, weight: w})
		default:
			// faces, normals, texture coordinates and materials carry no weight data
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	m.Vertices = vertices
	for _, p := range pending {
		if err := p.group.Add([]int{p.vertex}, p.weight, mesh.Replace); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	return m, nil
}
