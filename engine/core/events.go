package core

import "sync"

// EventContext carries the payload of a fired event. Data depends on the code.
type EventContext struct {
	Type SystemEventCode
	// Path of the file the event refers to, if any.
	Path string
	// Name of the object the event refers to, if any.
	Object string
	Data   interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next loop iteration.
	EventCodeApplicationQuit SystemEventCode = 0x01

	// A scene file was read from disk. Library objects may still be loading.
	/* Context usage:
	 * Path = scene file path
	 */
	EventCodeFileLoaded SystemEventCode = 0x02

	// Every linked library of the open scene finished loading.
	EventCodeSceneReady SystemEventCode = 0x03

	// A linked library file changed on disk and its objects were rebuilt.
	/* Context usage:
	 * Path = library path, Object = rebuilt object name
	 */
	EventCodeLibraryReloaded SystemEventCode = 0x04

	// The active weight file changed on disk.
	/* Context usage:
	 * Path = weight file path
	 */
	EventCodeWeightFileChanged SystemEventCode = 0x05

	// Weights were written to a file.
	EventCodeWeightsSaved SystemEventCode = 0x06

	// Weights were applied from a file.
	EventCodeWeightsLoaded SystemEventCode = 0x07

	// The sync settings were reset.
	EventCodeSyncCleared SystemEventCode = 0x08

	MaxEventCode SystemEventCode = 0xFF
)

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventSystem dispatches events synchronously to the listeners registered for a code.
type EventSystem struct {
	mu         sync.Mutex
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A comparable listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	for _, e := range es.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Listeners returns how many listeners are registered for code.
func (es *EventSystem) Listeners(code SystemEventCode) int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return len(es.registered[code])
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * Handlers may unregister themselves while being dispatched.
 * @returns true if handled, otherwise false.
 */
func (es *EventSystem) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	es.mu.Lock()
	events := append([]*registeredEvent(nil), es.registered[code]...)
	es.mu.Unlock()

	context.Type = code
	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (es *EventSystem) Shutdown() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered = make(map[SystemEventCode][]*registeredEvent)
	return nil
}
