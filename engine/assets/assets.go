// Package assets watches the files a scene depends on (linked libraries and the
// weight file) and reports when they change on disk.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/resources"
)

type AssetInfo struct {
	Path        string
	Type        resources.ResourceType
	LastChanged time.Time
}

// AssetEvent is sent when a watched file was created or written.
type AssetEvent struct {
	Path string
	Type resources.ResourceType
	Op   fsnotify.Op
}

var ErrClosed = errors.New("asset watcher already closed")

type AssetManager struct {
	assets map[string]AssetInfo
	// watched directories and how many assets live in each
	dirs map[string]int

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan AssetEvent
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		dirs:     make(map[string]int),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent),
		errors:   make(chan error),
		done:     make(chan struct{}),
	}
	go am.start()
	return am, nil
}

// Events delivers changes of watched files. Closed after Close.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

// Errors delivers watcher failures. Closed after Close.
func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

// Watch starts reporting changes of the file at path. The parent directory is
// watched so files replaced through a rename are still seen.
func (am *AssetManager) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if am.isClosed {
		return ErrClosed
	}
	if _, ok := am.assets[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if am.dirs[dir] == 0 {
		if err := am.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	am.dirs[dir]++
	am.assets[abs] = AssetInfo{
		Path: abs,
		Type: determineAssetType(abs),
	}
	core.LogDebug("watching %s", abs)
	return nil
}

// Unwatch stops reporting changes of path.
func (am *AssetManager) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if _, ok := am.assets[abs]; !ok {
		return nil
	}
	delete(am.assets, abs)
	dir := filepath.Dir(abs)
	am.dirs[dir]--
	if am.dirs[dir] <= 0 {
		delete(am.dirs, dir)
		if !am.isClosed {
			return am.fsnotify.Remove(dir)
		}
	}
	return nil
}

// Watched lists the watched files.
func (am *AssetManager) Watched() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	return out
}

func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()
	close(am.done)
	return nil
}

func (am *AssetManager) start() {
	defer func() {
		am.fsnotify.Close()
		close(am.events)
		close(am.errors)
	}()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			ev, tracked := am.handleFileEvent(e)
			if !tracked {
				continue
			}
			select {
			case am.events <- ev:
			case <-am.done:
				return
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case am.errors <- err:
			case <-am.done:
				return
			default:
			}

		case <-am.done:
			return
		}
	}
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(e fsnotify.Event) (AssetEvent, bool) {
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		return AssetEvent{}, false
	}
	if s, err := os.Stat(abs); err == nil && s.IsDir() {
		return AssetEvent{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	asset, ok := am.assets[abs]
	if !ok {
		return AssetEvent{}, false
	}
	asset.LastChanged = time.Now()
	am.assets[abs] = asset
	return AssetEvent{Path: abs, Type: asset.Type, Op: e.Op}, true
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".obj":
		return resources.ResourceTypeMesh
	case ".json":
		return resources.ResourceTypeWeights
	default:
		return resources.ResourceTypeCustom
	}
}
