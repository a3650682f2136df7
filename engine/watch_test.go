package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/weightsync/engine/assets"
	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/resources"
	"github.com/spaghettifunk/weightsync/engine/scene"
	"github.com/spaghettifunk/weightsync/testbed"
)

// syncedSample opens the sample scene, paints an "Arm" group on Body and saves it
// to the active weight file.
func syncedSample(t *testing.T) (e *Engine, sc *scene.Scene, dir string) {
	t.Helper()
	dir = t.TempDir()
	scenePath, err := testbed.WriteSample(dir)
	if err != nil {
		t.Fatal(err)
	}
	e = newEngine(t)
	sc = openSettled(t, e, scenePath)
	body, err := sc.Object("Body")
	if err != nil {
		t.Fatal(err)
	}
	if err := body.Data.NewGroup("Arm").Add([]int{2}, 0.25, mesh.Replace); err != nil {
		t.Fatal(err)
	}
	if r := e.Operators().Save(body, filepath.Join(dir, testbed.SampleWeightFile)); r.Failed() {
		t.Fatalf("Save: %s", r)
	}
	return e, sc, dir
}

func settle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Settle(ctx); err != nil {
		t.Fatalf("Settle: %v", err)
	}
}

func countEvents(e *Engine, code core.SystemEventCode) *int {
	n := new(int)
	e.Events().Register(code, n, func(core.SystemEventCode, interface{}, interface{}, core.EventContext) bool {
		*n++
		return false
	})
	return n
}

func TestLibraryChangeReloadsAndResyncs(t *testing.T) {
	e, sc, dir := syncedSample(t)
	body, _ := sc.Object("Body")
	before := body.Data
	reloaded := countEvents(e, core.EventCodeLibraryReloaded)
	reports := len(e.Operators().Reports())

	e.onAssetChanged(assets.AssetEvent{
		Path: filepath.Join(dir, testbed.SampleLibraryFile),
		Type: resources.ResourceTypeMesh,
		Op:   fsnotify.Write,
	})
	settle(t, e)

	if body.Data == nil || body.Data == before {
		t.Fatal("Body was not reloaded from its library")
	}
	if !body.Data.HasGroup("Root") {
		t.Error("library group missing after reload")
	}
	arm, ok := body.Data.Group("Arm")
	if !ok {
		t.Fatal("painted group not restored after reload")
	}
	if w, err := arm.Weight(2); err != nil || w != 0.25 {
		t.Errorf("Arm weight(2) = %v, %v", w, err)
	}
	if *reloaded != 1 {
		t.Errorf("library reloaded fired %d times, want 1", *reloaded)
	}
	got := e.Operators().Reports()
	if len(got) != reports+1 || got[len(got)-1].Operator != "resync" || got[len(got)-1].Failed() {
		t.Errorf("reports = %v", got)
	}
}

func TestUnrelatedLibraryChangeIsIgnored(t *testing.T) {
	e, sc, dir := syncedSample(t)
	body, _ := sc.Object("Body")
	before := body.Data

	e.onAssetChanged(assets.AssetEvent{
		Path: filepath.Join(dir, "other.obj"),
		Type: resources.ResourceTypeMesh,
		Op:   fsnotify.Write,
	})
	settle(t, e)

	if body.Data != before {
		t.Error("Body reloaded for a library it does not use")
	}
}

func TestWeightFileChange(t *testing.T) {
	tests := []struct {
		name      string
		stopSync  bool
		otherPath bool
		resynced  bool
	}{
		{name: "active weight file", resynced: true},
		{name: "syncing off", stopSync: true},
		{name: "different file", otherPath: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sc, dir := syncedSample(t)
			body, _ := sc.Object("Body")
			path := sc.Settings.WeightFile
			if tt.stopSync {
				sc.Settings.Clear()
			}
			if tt.otherPath {
				path = filepath.Join(dir, "other.json")
			}
			changed := countEvents(e, core.EventCodeWeightFileChanged)
			reports := len(e.Operators().Reports())
			body.Data.ClearGroups()

			e.onAssetChanged(assets.AssetEvent{Path: path, Type: resources.ResourceTypeWeights, Op: fsnotify.Write})
			settle(t, e)

			if got := body.Data.HasGroup("Arm"); got != tt.resynced {
				t.Errorf("Arm restored = %v, want %v", got, tt.resynced)
			}
			wantEvents, wantReports := 0, reports
			if tt.resynced {
				wantEvents, wantReports = 1, reports+1
			}
			if *changed != wantEvents {
				t.Errorf("weight file changed fired %d times, want %d", *changed, wantEvents)
			}
			if n := len(e.Operators().Reports()); n != wantReports {
				t.Errorf("reports = %d, want %d", n, wantReports)
			}
		})
	}
}

// blockedLoader holds every library load until release is closed.
type blockedLoader struct {
	release chan struct{}
}

func (l blockedLoader) LoadLibrary(path string, done func(*mesh.Mesh, error)) {
	go func() {
		<-l.release
		done(mesh.New(8), nil)
	}()
}

func TestDeferredTaskWaitsForLateLoad(t *testing.T) {
	path, err := testbed.WriteSample(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := newEngine(t)
	sc := openSettled(t, e, path)
	body, _ := sc.Object("Body")

	ran := false
	e.deferUntilReady(sc, func() { ran = true })

	// wait until the task is queued and its gate goroutine is gone
	deadline := time.Now().Add(5 * time.Second)
	for len(e.tasks) == 0 || e.outstanding.Load() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("deferred task never queued")
		}
		time.Sleep(time.Millisecond)
	}

	loader := blockedLoader{release: make(chan struct{})}
	sc.ReloadLibrary(body, loader)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(loader.release)
	}()
	settle(t, e)

	if !ran {
		t.Error("deferred task dropped when a load started before it ran")
	}
	if body.Data == nil || body.Data.VertexCount() != 8 {
		t.Error("late load not installed")
	}
}
