// Package operators implements the user facing weight sync actions: save, load,
// resync and clear, plus the resync run after a scene is opened.
package operators

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/weightsync/engine/containers"
	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/scene"
	"github.com/spaghettifunk/weightsync/engine/weights"
)

// DefaultWeightFile is offered when the settings hold no file yet.
const DefaultWeightFile = "weights.json"

const (
	OpSave   = "save"
	OpLoad   = "load"
	OpResync = "resync"
	OpClear  = "clear"
)

const maxReports = 32

// Operators runs the weight sync actions against one set of settings. It must be
// used from a single goroutine.
type Operators struct {
	settings *scene.SyncSettings
	events   *core.EventSystem
	metrics  *core.Metrics
	reports  *containers.RingQueue[Report]
}

// New binds the operators to settings. events and metrics may be nil.
func New(settings *scene.SyncSettings, events *core.EventSystem, metrics *core.Metrics) *Operators {
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &Operators{
		settings: settings,
		events:   events,
		metrics:  metrics,
		reports:  containers.NewRingQueue[Report](maxReports),
	}
}

func (o *Operators) Settings() scene.SyncSettings {
	return *o.settings
}

func (o *Operators) Metrics() *core.Metrics {
	return o.metrics
}

// Reports returns the most recent reports, oldest first.
func (o *Operators) Reports() []Report {
	return o.reports.Items()
}

// DefaultPath is the file offered to Save and Load when the caller gives none.
func (o *Operators) DefaultPath() string {
	if o.settings.WeightFile != "" {
		return o.settings.WeightFile
	}
	return DefaultWeightFile
}

// Save exports the weights of obj to path and makes path the active weight file.
func (o *Operators) Save(obj *mesh.Object, path string) Report {
	if path == "" {
		path = o.DefaultPath()
	}
	clock := o.start()
	if _, err := weights.Export(obj, path); err != nil {
		return o.fail(OpSave, clock, err)
	}
	o.settings.Activate(path)
	o.fire(core.EventCodeWeightsSaved, obj, path)
	return o.succeed(OpSave, clock, fmt.Sprintf("Weights saved to %s", path))
}

// Load imports the weights at path into obj and makes path the active weight file.
func (o *Operators) Load(obj *mesh.Object, path string) Report {
	if path == "" {
		path = o.DefaultPath()
	}
	clock := o.start()
	if _, err := weights.Import(obj, path); err != nil {
		return o.fail(OpLoad, clock, err)
	}
	o.settings.Activate(path)
	o.fire(core.EventCodeWeightsLoaded, obj, path)
	return o.succeed(OpLoad, clock, fmt.Sprintf("Weights loaded from %s", path))
}

// Resync imports the active weight file into obj again.
func (o *Operators) Resync(obj *mesh.Object) Report {
	clock := o.start()
	if !o.settings.Syncing() {
		return o.fail(OpResync, clock, core.ErrNoActiveFile)
	}
	path := o.settings.WeightFile
	if _, err := weights.Import(obj, path); err != nil {
		return o.fail(OpResync, clock, err)
	}
	o.fire(core.EventCodeWeightsLoaded, obj, path)
	return o.succeed(OpResync, clock, fmt.Sprintf("Weights resynced from %s", path))
}

// Clear forgets the weight file. No file is touched.
func (o *Operators) Clear() Report {
	clock := o.start()
	o.settings.Clear()
	o.fire(core.EventCodeSyncCleared, nil, "")
	return o.succeed(OpClear, clock, "Weight file cleared")
}

// AutoResync re-applies the active weight file to every linked mesh object of sc.
// It does nothing when syncing is off. One report is returned per object tried.
func (o *Operators) AutoResync(sc *scene.Scene) []Report {
	return o.ResyncObjects(sc.LinkedObjects(""))
}

// ResyncObjects runs Resync on every mesh object in objs.
func (o *Operators) ResyncObjects(objs []*mesh.Object) []Report {
	if !o.settings.Syncing() {
		return nil
	}
	var out []Report
	for _, obj := range objs {
		if obj.Type != mesh.ObjectTypeMesh {
			continue
		}
		out = append(out, o.Resync(obj))
	}
	return out
}

func (o *Operators) start() *core.Clock {
	c := core.NewClock()
	c.Start()
	return c
}

func (o *Operators) succeed(op string, clock *core.Clock, msg string) Report {
	clock.Stop()
	o.metrics.Record(op, clock.Elapsed(), nil)
	return o.report(Report{Operator: op, Level: LevelInfo, Message: msg})
}

func (o *Operators) fail(op string, clock *core.Clock, err error) Report {
	clock.Stop()
	o.metrics.Record(op, clock.Elapsed(), err)
	return o.report(Report{Operator: op, Level: LevelError, Message: Describe(err), Err: err})
}

func (o *Operators) report(r Report) Report {
	r.Time = time.Now()
	o.reports.Push(r)
	core.LogDebug("%s", r)
	return r
}

func (o *Operators) fire(code core.SystemEventCode, obj *mesh.Object, path string) {
	if o.events == nil {
		return
	}
	ctx := core.EventContext{Path: path}
	if obj != nil {
		ctx.Object = obj.Name
	}
	o.events.Fire(code, o, ctx)
}

// Describe turns an operator error into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrInvalidSelection):
		return "No valid mesh selected"
	case errors.Is(err, core.ErrNoActiveFile):
		return "No active weight file"
	default:
		return err.Error()
	}
}

// FileName returns the base name of the active weight file for display.
func FileName(s scene.SyncSettings) string {
	if s.WeightFile == "" {
		return ""
	}
	return filepath.Base(s.WeightFile)
}
