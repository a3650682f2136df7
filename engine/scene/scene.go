// Package scene holds the objects of an open scene file together with its weight
// sync settings.
package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
)

// LibraryLoader reads a linked library mesh. done may be called from any goroutine.
type LibraryLoader interface {
	LoadLibrary(path string, done func(*mesh.Mesh, error))
}

type loadResult struct {
	mesh *mesh.Mesh
	err  error
}

// Scene is the set of objects opened from a scene file. Linked objects get their
// geometry once their library finished loading; until then Ready reports false and
// their Data is nil.
type Scene struct {
	// Path of the scene file, empty for scenes never saved.
	Path     string
	Settings SyncSettings

	objects []*mesh.Object
	active  string

	mu      sync.Mutex
	pending int
	staged  map[*mesh.Object]loadResult
	errs    []error
}

func New() *Scene {
	return &Scene{staged: make(map[*mesh.Object]loadResult)}
}

// AddObject appends obj. Names are unique within a scene.
func (s *Scene) AddObject(obj *mesh.Object) error {
	if obj == nil || obj.Name == "" {
		return fmt.Errorf("object needs a name")
	}
	for _, o := range s.objects {
		if o.Name == obj.Name {
			return fmt.Errorf("object %q already exists", obj.Name)
		}
	}
	if obj.ID == "" {
		obj.ID = core.IdentifierAcquireNewID(obj)
	}
	if obj.Type == "" {
		obj.Type = mesh.ObjectTypeMesh
	}
	s.objects = append(s.objects, obj)
	return nil
}

// Objects returns the scene objects in file order.
func (s *Scene) Objects() []*mesh.Object {
	return append([]*mesh.Object(nil), s.objects...)
}

func (s *Scene) Object(name string) (*mesh.Object, error) {
	for _, o := range s.objects {
		if o.Name == name {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrObjectNotFound, name)
}

// ActiveObject returns the active object, or nil when none is set.
func (s *Scene) ActiveObject() *mesh.Object {
	if s.active == "" {
		return nil
	}
	o, err := s.Object(s.active)
	if err != nil {
		return nil
	}
	return o
}

func (s *Scene) SetActive(name string) error {
	if name == "" {
		s.active = ""
		return nil
	}
	if _, err := s.Object(name); err != nil {
		return err
	}
	s.active = name
	return nil
}

// LinkedObjects returns the objects linked from library. An empty library
// matches every linked object.
func (s *Scene) LinkedObjects(library string) []*mesh.Object {
	var out []*mesh.Object
	for _, o := range s.objects {
		if !o.IsLinked() {
			continue
		}
		if library == "" || samePath(s.LibraryPath(o), library) {
			out = append(out, o)
		}
	}
	return out
}

// LibraryPath resolves the library of obj against the scene directory.
func (s *Scene) LibraryPath(obj *mesh.Object) string {
	if obj.Library == "" || filepath.IsAbs(obj.Library) || s.Path == "" {
		return obj.Library
	}
	return filepath.Join(filepath.Dir(s.Path), obj.Library)
}

// LoadLibraries starts loading every linked object from its library.
func (s *Scene) LoadLibraries(loader LibraryLoader) {
	for _, o := range s.objects {
		if o.IsLinked() {
			s.ReloadLibrary(o, loader)
		}
	}
}

// ReloadLibrary drops the geometry of obj and loads it again from its library.
// Vertex groups come back exactly as the library defines them.
func (s *Scene) ReloadLibrary(obj *mesh.Object, loader LibraryLoader) {
	obj.Data = nil
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	path := s.LibraryPath(obj)
	loader.LoadLibrary(path, func(m *mesh.Mesh, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			err = fmt.Errorf("library %s for %q: %w", path, obj.Name, err)
		}
		s.staged[obj] = loadResult{mesh: m, err: err}
		s.pending--
	})
}

// Ready reports whether every library load finished. Once true, loaded geometry is
// installed on the objects. Call it from the goroutine that owns the scene.
func (s *Scene) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending > 0 {
		return false
	}
	for obj, r := range s.staged {
		if r.err != nil {
			core.LogError(r.err.Error())
			s.errs = append(s.errs, r.err)
			continue
		}
		obj.Data = r.mesh
	}
	clear(s.staged)
	return true
}

// Loading reports whether library loads are still in flight. Unlike Ready it
// installs nothing and is safe to call from any goroutine.
func (s *Scene) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// WaitReady blocks until Ready reports true.
func (s *Scene) WaitReady(ctx context.Context, cfg core.GateConfig) error {
	return core.WaitUntil(ctx, cfg, s.Ready)
}

// LoadErrors returns the library loads that failed so far.
func (s *Scene) LoadErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
