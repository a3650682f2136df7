package weights

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
)

func skinned(t *testing.T, name string, vertexCount int, weights map[string]map[int]float64, order ...string) *mesh.Object {
	t.Helper()
	m := mesh.New(vertexCount)
	for _, g := range order {
		m.NewGroup(g)
	}
	for group, vw := range weights {
		g, ok := m.Group(group)
		if !ok {
			t.Fatalf("group %q not in order", group)
		}
		for v, w := range vw {
			if err := g.Add([]int{v}, w, mesh.Replace); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
	}
	return &mesh.Object{Name: name, Type: mesh.ObjectTypeMesh, Data: m}
}

// snapshot returns group name -> vertex -> weight for every membership.
func snapshot(obj *mesh.Object) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	for _, g := range obj.Data.Groups() {
		out[g.Name] = make(map[int]float64)
		for _, v := range g.Members() {
			w, _ := g.Weight(v)
			out[g.Name][v] = w
		}
	}
	return out
}

func groupNames(obj *mesh.Object) []string {
	var names []string
	for _, g := range obj.Data.Groups() {
		names = append(names, g.Name)
	}
	return names
}

func TestExportExample(t *testing.T) {
	obj := skinned(t, "Body", 3, map[string]map[int]float64{
		"Arm": {0: 0.5, 1: 0.0},
	}, "Arm")
	path := filepath.Join(t.TempDir(), "weights.json")

	doc, err := Export(obj, path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := map[string]map[string]float64{"0": {"Arm": 0.5}}
	if !reflect.DeepEqual(doc.VertexGroups, want) {
		t.Errorf("VertexGroups = %v, want %v", doc.VertexGroups, want)
	}
	if doc.Validation.WeightRange != [2]float64{0.5, 0.5} {
		t.Errorf("WeightRange = %v, want [0.5 0.5]", doc.Validation.WeightRange)
	}
	if doc.Validation.VerticesWithWeights != 1 {
		t.Errorf("VerticesWithWeights = %d, want 1", doc.Validation.VerticesWithWeights)
	}
	if !reflect.DeepEqual(doc.Validation.GroupsWithWeights, []string{"Arm"}) {
		t.Errorf("GroupsWithWeights = %v, want [Arm]", doc.Validation.GroupsWithWeights)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}
	for _, key := range []string{"object_name", "vertex_count", "group_names", "vertex_groups", "validation"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("written file misses %q", key)
		}
	}
	if generic["object_name"] != "Body" || generic["vertex_count"] != float64(3) {
		t.Errorf("header = %v/%v", generic["object_name"], generic["vertex_count"])
	}
}

func TestExportSparse(t *testing.T) {
	obj := skinned(t, "Body", 4, map[string]map[int]float64{
		"A": {0: 0.0, 2: 0.3},
		"B": {0: 0.0, 3: 1.0},
	}, "A", "B")

	doc, err := BuildDocument(obj)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"0", "1"} {
		if _, ok := doc.VertexGroups[key]; ok {
			t.Errorf("vertex %s has no nonzero weight but was stored", key)
		}
	}
	if len(doc.VertexGroups) != 2 {
		t.Errorf("stored %d vertices, want 2", len(doc.VertexGroups))
	}
	for v, groups := range doc.VertexGroups {
		for g, w := range groups {
			if w <= 0 {
				t.Errorf("vertex %s group %s stored weight %v", v, g, w)
			}
		}
	}
	if !reflect.DeepEqual(doc.GroupNames, []string{"A", "B"}) {
		t.Errorf("GroupNames = %v", doc.GroupNames)
	}
	if doc.Validation.WeightRange != [2]float64{0.3, 1.0} {
		t.Errorf("WeightRange = %v", doc.Validation.WeightRange)
	}
}

func TestExportNoWeights(t *testing.T) {
	obj := skinned(t, "Empty", 2, nil, "Unused")
	doc, err := BuildDocument(obj)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.VertexGroups) != 0 {
		t.Errorf("VertexGroups = %v, want empty", doc.VertexGroups)
	}
	if doc.Validation.WeightRange != [2]float64{1.0, 0.0} {
		t.Errorf("WeightRange = %v, want seed values [1 0]", doc.Validation.WeightRange)
	}
	if len(doc.Validation.GroupsWithWeights) != 0 {
		t.Errorf("GroupsWithWeights = %v", doc.Validation.GroupsWithWeights)
	}
}

func TestExportInvalidSelection(t *testing.T) {
	tests := []struct {
		name string
		obj  *mesh.Object
	}{
		{"nil", nil},
		{"armature", &mesh.Object{Name: "Rig", Type: mesh.ObjectTypeArmature}},
		{"mesh without data", &mesh.Object{Name: "Ghost", Type: mesh.ObjectTypeMesh}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "w.json")
			if _, err := Export(tt.obj, path); !errors.Is(err, core.ErrInvalidSelection) {
				t.Errorf("err = %v, want ErrInvalidSelection", err)
			}
			if _, err := os.Stat(path); err == nil {
				t.Error("file written for invalid selection")
			}
		})
	}
}

func TestExportSaveError(t *testing.T) {
	obj := skinned(t, "Body", 1, map[string]map[int]float64{"A": {0: 1}}, "A")
	path := filepath.Join(t.TempDir(), "missing", "dir", "w.json")

	_, err := Export(obj, path)
	if !errors.Is(err, core.ErrSave) {
		t.Fatalf("err = %v, want ErrSave", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want the original cause in the chain", err)
	}
}

func TestRoundTrip(t *testing.T) {
	weights := map[string]map[int]float64{
		"Spine": {0: 1.0, 1: 0.123456789, 4: 0.5},
		"Arm.L": {1: 0.876543211, 2: 0.0, 3: 0.25},
	}
	src := skinned(t, "Body", 5, weights, "Spine", "Arm.L")
	path := filepath.Join(t.TempDir(), "weights.json")
	if _, err := Export(src, path); err != nil {
		t.Fatal(err)
	}

	dst := skinned(t, "Body", 5, nil)
	res, err := Import(dst, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := map[string]map[int]float64{
		"Spine": {0: 1.0, 1: 0.123456789, 4: 0.5},
		"Arm.L": {1: 0.876543211, 3: 0.25},
	}
	if got := snapshot(dst); !reflect.DeepEqual(got, want) {
		t.Errorf("weights after import = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(groupNames(dst), []string{"Spine", "Arm.L"}) {
		t.Errorf("group order = %v", groupNames(dst))
	}
	if res.VerticesAffected != 5-1 {
		t.Errorf("VerticesAffected = %d, want 4", res.VerticesAffected)
	}
	if res.WeightsApplied != 5 {
		t.Errorf("WeightsApplied = %d, want 5", res.WeightsApplied)
	}
	if res.GroupsCreated != 2 {
		t.Errorf("GroupsCreated = %d, want 2", res.GroupsCreated)
	}
}

func TestImportIdempotent(t *testing.T) {
	src := skinned(t, "Body", 3, map[string]map[int]float64{
		"A": {0: 0.2, 2: 0.9},
		"B": {1: 0.4},
	}, "A", "B")
	path := filepath.Join(t.TempDir(), "weights.json")
	if _, err := Export(src, path); err != nil {
		t.Fatal(err)
	}

	dst := skinned(t, "Body", 3, nil)
	if _, err := Import(dst, path); err != nil {
		t.Fatal(err)
	}
	once := snapshot(dst)
	if _, err := Import(dst, path); err != nil {
		t.Fatal(err)
	}
	if twice := snapshot(dst); !reflect.DeepEqual(once, twice) {
		t.Errorf("second import changed state: %v -> %v", once, twice)
	}
}

func TestImportVertexCountMismatch(t *testing.T) {
	src := skinned(t, "Body", 3, map[string]map[int]float64{"A": {0: 1}}, "A")
	path := filepath.Join(t.TempDir(), "weights.json")
	if _, err := Export(src, path); err != nil {
		t.Fatal(err)
	}

	dst := skinned(t, "Other", 4, map[string]map[int]float64{"Keep": {3: 0.7}}, "Keep")
	before := snapshot(dst)

	_, err := Import(dst, path)
	if !errors.Is(err, core.ErrVertexCountMismatch) {
		t.Fatalf("err = %v, want ErrVertexCountMismatch", err)
	}
	if after := snapshot(dst); !reflect.DeepEqual(before, after) {
		t.Errorf("groups changed on rejected import: %v -> %v", before, after)
	}
}

func TestImportRemovesUnrelatedGroups(t *testing.T) {
	src := skinned(t, "Body", 2, map[string]map[int]float64{"Arm": {1: 0.6}}, "Arm")
	path := filepath.Join(t.TempDir(), "weights.json")
	if _, err := Export(src, path); err != nil {
		t.Fatal(err)
	}

	dst := skinned(t, "Body", 2, map[string]map[int]float64{
		"Unrelated": {0: 1},
		"Arm":       {0: 1},
	}, "Unrelated", "Arm")
	if _, err := Import(dst, path); err != nil {
		t.Fatal(err)
	}

	want := map[string]map[int]float64{"Arm": {1: 0.6}}
	if got := snapshot(dst); !reflect.DeepEqual(got, want) {
		t.Errorf("groups after import = %v, want %v", got, want)
	}
}

func TestImportFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		obj  *mesh.Object
		path string
		want error
	}{
		{"invalid selection", nil, write("ok.json", `{"vertex_count":1,"group_names":[]}`), core.ErrInvalidSelection},
		{"missing file", skinned(t, "B", 1, nil), filepath.Join(dir, "nope.json"), core.ErrFileNotFound},
		{"malformed", skinned(t, "B", 1, nil), write("bad.json", `{"vertex_count": `), core.ErrParse},
		{"missing vertex_count", skinned(t, "B", 1, nil), write("nocount.json", `{"group_names":[]}`), core.ErrParse},
		{"missing group_names", skinned(t, "B", 1, nil), write("nogroups.json", `{"vertex_count":1}`), core.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Import(tt.obj, tt.path); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplySkipsUnusableEntries(t *testing.T) {
	doc := &Document{
		ObjectName:  "Body",
		VertexCount: 2,
		GroupNames:  []string{"A"},
		VertexGroups: map[string]map[string]float64{
			"0":   {"A": 0.5, "Ghost": 0.3},
			"1":   {"A": 0.0},
			"7":   {"A": 1.0},
			"-1":  {"A": 1.0},
			"abc": {"A": 1.0},
		},
	}
	obj := skinned(t, "Body", 2, nil)

	res, err := Apply(obj, doc)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := map[string]map[int]float64{"A": {0: 0.5}}
	if got := snapshot(obj); !reflect.DeepEqual(got, want) {
		t.Errorf("weights = %v, want %v", got, want)
	}
	if res.VerticesAffected != 1 || res.WeightsApplied != 1 {
		t.Errorf("result = %+v", res)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3 (unknown group, zero weight, out of range)", res.Skipped)
	}
}

func TestApplyKeepsExistingGroupNameOnce(t *testing.T) {
	doc := &Document{VertexCount: 1, GroupNames: []string{"A", "A"}}
	obj := skinned(t, "Body", 1, nil)
	res, err := Apply(obj, doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupsCreated != 1 || !reflect.DeepEqual(groupNames(obj), []string{"A"}) {
		t.Errorf("groups = %v, created %d", groupNames(obj), res.GroupsCreated)
	}
}

func TestImportLogsCreatedGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dupes.json")
	data := `{"object_name":"Body","vertex_count":1,"group_names":["A","A"],"vertex_groups":{"0":{"A":1}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	core.SetLogOutput(&logs)
	core.SetLogLevel(core.InfoLevel)
	defer core.SetLogOutput(os.Stderr)

	res, err := Import(skinned(t, "Body", 1, nil), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupsCreated != 1 {
		t.Errorf("GroupsCreated = %d, want 1", res.GroupsCreated)
	}
	if !strings.Contains(logs.String(), "Groups created: 1") {
		t.Errorf("log does not report the created group count:\n%s", logs.String())
	}
}
