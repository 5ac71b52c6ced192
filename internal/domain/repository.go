package domain

import "time"

// PreferencesRepository is a secondary port that defines how preferences are persisted.
// This interface is defined in the domain layer and implemented by adapters.
type PreferencesRepository interface {
	Load() (Preferences, error)
	Save(prefs Preferences) error
}

// AudioDevice is a secondary port for the shared output device.
// Voices are scheduled against the device's own clock, not wall-clock time.
type AudioDevice interface {
	State() DeviceState
	// Resume requests a transition to DeviceRunning without waiting for it.
	// A synchronous rejection wraps ErrDeviceSuspendFailed.
	Resume() error
	// CurrentTime returns the device clock in seconds.
	CurrentTime() float64
	// Play hands a fully specified voice to the device.
	Play(v Voice)
}

// DeviceFactory constructs the single AudioDevice of the process.
// Open returns an error wrapping ErrDeviceUnavailable when the platform has no output.
type DeviceFactory interface {
	Open() (AudioDevice, error)
}

// Speaker is a secondary port for text-to-speech output.
type Speaker interface {
	// Available reports whether the speech capability exists on this host.
	Available() bool
	// Speak starts u and returns immediately. done is called exactly once from any
	// goroutine when the utterance ends; a nil error means normal completion.
	Speak(u Utterance, done func(error)) error
	// Cancel stops any utterance in flight.
	Cancel() error
	// Voices lists installed voices; used to warm up the engine.
	Voices() ([]string, error)
}

// TickTimer runs f once after d. The returned stop function cancels a pending call.
type TickTimer interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// GestureSource delivers raw user interactions.
type GestureSource interface {
	Subscribe(fn func(GestureKind)) (unsubscribe func())
}
