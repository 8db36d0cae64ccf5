package core

import "sync"

// EventContext is the payload of an event. Which fields are meaningful
// depends on the code, see the code constants.
type EventContext struct {
	Data struct {
		I32 [4]int32
		U32 [4]uint32
		U16 [8]uint16
	}
}

// SystemEventCode identifies an event. Codes up to MAX_EVENT_CODE are
// reserved for the engine.
type SystemEventCode int

const (
	// Quit on the next frame. No payload.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01
	// Data.U16[0] holds the key code.
	EVENT_CODE_KEY_PRESSED  SystemEventCode = 0x02
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03
	// Data.U16[0] holds the mouse button.
	EVENT_CODE_BUTTON_PRESSED  SystemEventCode = 0x04
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05
	// Data.I32[0], Data.I32[1] hold the cursor position in window pixels.
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06
	// Data.U32[0], Data.U32[1] hold the new framebuffer size.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

const MAX_MESSAGE_CODES = 16384

// FnOnEvent handles an event and reports whether it consumed it.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type listener struct {
	inst     interface{}
	callback FnOnEvent
}

var events struct {
	mu          sync.RWMutex
	initialized bool
	listeners   map[SystemEventCode][]listener
}

// EventInitialize sets up the event table. It returns false when the table
// already exists.
func EventInitialize() bool {
	events.mu.Lock()
	defer events.mu.Unlock()
	if events.initialized {
		return false
	}
	events.listeners = make(map[SystemEventCode][]listener)
	events.initialized = true
	return true
}

// EventShutdown drops every registration.
func EventShutdown() error {
	events.mu.Lock()
	defer events.mu.Unlock()
	events.listeners = nil
	events.initialized = false
	return nil
}

// EventRegister adds onEvent for code. A listener instance registers at most
// once per code, a second attempt returns false.
func EventRegister(code SystemEventCode, inst interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code >= MAX_MESSAGE_CODES || onEvent == nil {
		return false
	}
	events.mu.Lock()
	defer events.mu.Unlock()
	if !events.initialized {
		return false
	}
	for _, l := range events.listeners[code] {
		if l.inst == inst {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	events.listeners[code] = append(events.listeners[code], listener{inst: inst, callback: onEvent})
	return true
}

// EventUnregister removes the registration of inst for code.
func EventUnregister(code SystemEventCode, inst interface{}) bool {
	events.mu.Lock()
	defer events.mu.Unlock()
	if !events.initialized {
		return false
	}
	ls := events.listeners[code]
	for i, l := range ls {
		if l.inst == inst {
			events.listeners[code] = append(ls[:i:i], ls[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire calls the listeners of code in registration order until one of
// them consumes the event. Listeners may register or unregister while being
// called.
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	events.mu.RLock()
	if !events.initialized {
		events.mu.RUnlock()
		return false
	}
	ls := append([]listener(nil), events.listeners[code]...)
	events.mu.RUnlock()

	for _, l := range ls {
		if l.callback(code, sender, l.inst, context) {
			return true
		}
	}
	return false
}
