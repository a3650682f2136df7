package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/weightsync/engine/resources"
)

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want resources.ResourceType
	}{
		{"libs/body.obj", resources.ResourceTypeMesh},
		{"weights.json", resources.ResourceTypeWeights},
		{"scene.toml", resources.ResourceTypeCustom},
	}
	for _, tt := range tests {
		if got := determineAssetType(tt.path); got != tt.want {
			t.Errorf("determineAssetType(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "weights.json")
	other := filepath.Join(dir, "other.json")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Close()
	if err := am.Watch(watched); err != nil {
		t.Fatal(err)
	}
	if err := am.Watch(watched); err != nil {
		t.Fatalf("second Watch: %v", err)
	}
	if n := len(am.Watched()); n != 1 {
		t.Fatalf("watched = %d, want 1", n)
	}

	if err := os.WriteFile(other, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(watched, []byte(`{"b":2}`), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-am.Events():
			if ev.Path != watched {
				t.Fatalf("event for untracked file %s", ev.Path)
			}
			if ev.Type != resources.ResourceTypeWeights {
				t.Errorf("type = %s", ev.Type)
			}
			return
		case <-timeout:
			t.Fatal("no event for the watched file")
		}
	}
}

func TestWatchAfterClose(t *testing.T) {
	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Close(); err != nil {
		t.Fatal(err)
	}
	if err := am.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := am.Watch(filepath.Join(t.TempDir(), "w.json")); err != ErrClosed {
		t.Errorf("Watch after Close err = %v", err)
	}
	if _, ok := <-am.Events(); ok {
		t.Error("events channel still open after Close")
	}
}
