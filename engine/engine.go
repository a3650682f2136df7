package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/weightsync/engine/assets"
	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/operators"
	"github.com/spaghettifunk/weightsync/engine/resources"
	"github.com/spaghettifunk/weightsync/engine/scene"
	"github.com/spaghettifunk/weightsync/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const taskQueueSize = 64

// Engine owns the open scene and everything that acts on it. Scene and operator
// access is confined to the goroutine calling Open, Settle and Run; background work
// hands its results back through the task queue.
type Engine struct {
	currentStage  Stage
	config        *Config
	gate          core.GateConfig
	events        *core.EventSystem
	metrics       *core.Metrics
	systemManager *systems.SystemManager
	assetManager  *assets.AssetManager

	scene     *scene.Scene
	operators *operators.Operators

	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan func()
	// deferred tasks still waiting for their precondition
	outstanding atomic.Int64
	isRunning   bool
}

func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gate, err := cfg.Gate()
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		gate:         gate,
		events:       core.NewEventSystem(),
		metrics:      core.NewMetrics(),
		ctx:          ctx,
		cancel:       cancel,
		tasks:        make(chan func(), taskQueueSize),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Workers:   e.config.Workers,
		QueueSize: e.config.QueueSize,
	})
	if err != nil {
		return err
	}
	e.systemManager = sm

	if e.config.Watch {
		am, err := assets.NewAssetManager()
		if err != nil {
			return err
		}
		e.assetManager = am
	}

	// register some events
	e.events.Register(core.EventCodeApplicationQuit, e, e.onQuit)
	e.events.Register(core.EventCodeFileLoaded, e, e.onFileLoaded)
	e.events.Register(core.EventCodeWeightsSaved, e, e.onWeightFileSet)
	e.events.Register(core.EventCodeWeightsLoaded, e, e.onWeightFileSet)

	e.currentStage = EngineStageInitialized
	core.LogDebug("%s engine initialized with %d worker(s)", e.config.Name, e.config.Workers)
	return nil
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Scene returns the open scene, nil before Open or NewScene.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Operators returns the actions bound to the open scene's settings.
func (e *Engine) Operators() *operators.Operators {
	return e.operators
}

// Resources gives access to the registered resource loaders.
func (e *Engine) Resources() *systems.ResourceSystem {
	return e.systemManager.ResourceSystem
}

// Open reads a scene file, starts loading its linked libraries and fires the post
// load event. The resync it triggers runs on a later Settle or Run.
func (e *Engine) Open(path string) (*scene.Scene, error) {
	if e.currentStage < EngineStageInitialized {
		return nil, fmt.Errorf("engine not initialized")
	}
	sc, err := scene.Open(path, e.systemManager.MeshLoaderSystem)
	if err != nil {
		return nil, err
	}
	e.bind(sc)
	core.LogDebug("scene %s opened with %d object(s)", path, len(sc.Objects()))

	e.events.Fire(core.EventCodeFileLoaded, e, core.EventContext{Path: path})
	return sc, nil
}

// NewScene makes an empty scene current.
func (e *Engine) NewScene() *scene.Scene {
	sc := scene.New()
	e.bind(sc)
	return sc
}

func (e *Engine) bind(sc *scene.Scene) {
	e.scene = sc
	e.operators = operators.New(&sc.Settings, e.events, e.metrics)
	if e.assetManager == nil {
		return
	}
	for _, o := range sc.LinkedObjects("") {
		e.watch(sc.LibraryPath(o))
	}
	if sc.Settings.WeightFile != "" {
		e.watch(sc.Settings.WeightFile)
	}
}

// WaitReady blocks until every linked library of the open scene is loaded.
func (e *Engine) WaitReady(ctx context.Context) error {
	if e.scene == nil {
		return fmt.Errorf("%w: no scene open", core.ErrSceneNotReady)
	}
	return e.scene.WaitReady(ctx, e.gate)
}

// Settle runs queued tasks until no deferred work is left.
func (e *Engine) Settle(ctx context.Context) error {
	for {
		if e.outstanding.Load() == 0 {
			ran := false
			for drained := false; !drained; {
				select {
				case t := <-e.tasks:
					t()
					ran = true
				default:
					drained = true
				}
			}
			if !ran && e.outstanding.Load() == 0 {
				return nil
			}
			continue
		}
		select {
		case t := <-e.tasks:
			t()
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run processes deferred tasks and file changes until ctx is done or a quit event
// is fired.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	var (
		assetEvents <-chan assets.AssetEvent
		assetErrors <-chan error
	)
	if e.assetManager != nil {
		assetEvents = e.assetManager.Events()
		assetErrors = e.assetManager.Errors()
	}

	for e.isRunning {
		select {
		case <-ctx.Done():
			e.isRunning = false
		case <-e.ctx.Done():
			e.isRunning = false
		case t := <-e.tasks:
			t()
		case ev, ok := <-assetEvents:
			if !ok {
				assetEvents = nil
				continue
			}
			e.onAssetChanged(ev)
		case err, ok := <-assetErrors:
			if !ok {
				assetErrors = nil
				continue
			}
			core.LogWarn("watcher: %s", err)
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.cancel()
	if err := e.events.Shutdown(); err != nil {
		return err
	}
	if e.assetManager != nil {
		if err := e.assetManager.Close(); err != nil {
			return err
		}
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// deferUntilReady runs fn on the engine goroutine once sc has no library loads in
// flight. It waits in the background, polling through the readiness gate. A load
// started while the task sat in the queue sends it back to wait again.
func (e *Engine) deferUntilReady(sc *scene.Scene, fn func()) {
	e.outstanding.Add(1)
	go func() {
		defer e.outstanding.Add(-1)
		err := core.WaitUntil(e.ctx, e.gate, func() bool { return !sc.Loading() })
		if err != nil {
			core.LogError("deferred resync abandoned: %s", err)
			return
		}
		select {
		case e.tasks <- func() {
			if e.scene != sc {
				return
			}
			if !sc.Ready() {
				e.deferUntilReady(sc, fn)
				return
			}
			fn()
		}:
		case <-e.ctx.Done():
		}
	}()
}

func (e *Engine) watch(path string) {
	if e.assetManager == nil || path == "" {
		return
	}
	if err := e.assetManager.Watch(path); err != nil {
		core.LogWarn("cannot watch %s: %s", path, err)
	}
}

func (e *Engine) onQuit(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	core.LogInfo("quit requested, shutting down.")
	e.isRunning = false
	return true
}

func (e *Engine) onFileLoaded(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	sc := e.scene
	if sc == nil {
		return false
	}
	e.deferUntilReady(sc, func() {
		e.operators.AutoResync(sc)
		e.events.Fire(core.EventCodeSceneReady, e, core.EventContext{Path: sc.Path})
	})
	return false
}

func (e *Engine) onWeightFileSet(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	e.watch(data.Path)
	return false
}

func (e *Engine) onAssetChanged(ev assets.AssetEvent) {
	sc := e.scene
	if sc == nil {
		return
	}
	switch ev.Type {
	case resources.ResourceTypeMesh:
		objs := sc.LinkedObjects(ev.Path)
		if len(objs) == 0 {
			return
		}
		for _, o := range objs {
			core.LogInfo("library %s changed, reloading '%s'", filepath.Base(ev.Path), o.Name)
			sc.ReloadLibrary(o, e.systemManager.MeshLoaderSystem)
		}
		e.deferUntilReady(sc, func() {
			for _, o := range objs {
				e.events.Fire(core.EventCodeLibraryReloaded, e, core.EventContext{Path: ev.Path, Object: o.Name})
			}
			e.operators.ResyncObjects(objs)
		})
	case resources.ResourceTypeWeights:
		if !sc.Settings.Syncing() || !sameFile(sc.Settings.WeightFile, ev.Path) {
			return
		}
		e.events.Fire(core.EventCodeWeightFileChanged, e, core.EventContext{Path: ev.Path})
		e.deferUntilReady(sc, func() {
			e.operators.AutoResync(sc)
		})
	}
}

// ActiveObject returns the active object of the open scene, nil when none is set.
func (e *Engine) ActiveObject() *mesh.Object {
	if e.scene == nil {
		return nil
	}
	return e.scene.ActiveObject()
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
