package domain

import (
	"fmt"
	"strings"
)

// Preferences holds the three independent audio switches.
// This is a pure domain model; persistence is handled by a repository adapter.
type Preferences struct {
	MusicEnabled bool
	SfxEnabled   bool
	VoiceEnabled bool
}

// DefaultPreferences returns the preferences used when nothing has been stored yet.
func DefaultPreferences() Preferences {
	return Preferences{
		MusicEnabled: true,
		SfxEnabled:   true,
		VoiceEnabled: true,
	}
}

// ToggleMusic returns a copy with only MusicEnabled flipped.
func (p Preferences) ToggleMusic() Preferences {
	p.MusicEnabled = !p.MusicEnabled
	return p
}

// ToggleSfx returns a copy with only SfxEnabled flipped.
func (p Preferences) ToggleSfx() Preferences {
	p.SfxEnabled = !p.SfxEnabled
	return p
}

// ToggleVoice returns a copy with only VoiceEnabled flipped.
func (p Preferences) ToggleVoice() Preferences {
	p.VoiceEnabled = !p.VoiceEnabled
	return p
}

// DeviceState is the lifecycle state of the shared output device.
// It only ever moves forward: Uninitialized -> Suspended -> Running.
type DeviceState int

const (
	DeviceUninitialized DeviceState = iota
	DeviceSuspended
	DeviceRunning
)

func (s DeviceState) String() string {
	switch s {
	case DeviceUninitialized:
		return "uninitialized"
	case DeviceSuspended:
		return "suspended"
	case DeviceRunning:
		return "running"
	default:
		return "unknown"
	}
}

// UnlockState tracks whether a user gesture has unlocked audio output.
type UnlockState int

const (
	Locked UnlockState = iota
	Unlocked
)

func (s UnlockState) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// GestureKind is a user interaction that may unlock audio.
type GestureKind int

const (
	GesturePointer GestureKind = iota
	GestureKey
	GestureTouch
)

func (g GestureKind) String() string {
	switch g {
	case GesturePointer:
		return "pointer"
	case GestureKey:
		return "key"
	case GestureTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// ParseGestureKind converts "pointer", "key" or "touch" into a GestureKind.
func ParseGestureKind(s string) (GestureKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointer", "click", "press", "":
		return GesturePointer, nil
	case "key", "keydown":
		return GestureKey, nil
	case "touch", "touchstart":
		return GestureTouch, nil
	default:
		return GesturePointer, fmt.Errorf("unknown gesture %q", s)
	}
}

// SoundKind identifies one of the procedural sound effects.
type SoundKind int

const (
	SoundClick SoundKind = iota
	SoundSuccess
	SoundCorrect
	SoundWrong
)

// SoundKinds lists every effect in a stable order.
func SoundKinds() []SoundKind {
	return []SoundKind{SoundClick, SoundSuccess, SoundCorrect, SoundWrong}
}

func (k SoundKind) String() string {
	switch k {
	case SoundClick:
		return "click"
	case SoundSuccess:
		return "success"
	case SoundCorrect:
		return "correct"
	case SoundWrong:
		return "wrong"
	default:
		return "unknown"
	}
}

// ParseSoundKind returns the SoundKind named by s.
func ParseSoundKind(s string) (SoundKind, error) {
	for _, k := range SoundKinds() {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return SoundClick, fmt.Errorf("%w: %q", ErrUnknownSoundKind, s)
}

// Waveform is the oscillator shape of a voice.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	default:
		return "unknown"
	}
}

// SchedulerCursor is the melody playback bookkeeping owned by the scheduler.
type SchedulerCursor struct {
	NextNoteTime float64 // device clock time of the next unscheduled note
	Index        int     // position in the score, wraps to 0
	Armed        bool
	Started      bool // set on the first arm of the session
}

// UtteranceConfig describes how an announcement is spoken.
type UtteranceConfig struct {
	Rate   float64
	Pitch  float64
	Volume float64
	Locale string
}

// DefaultUtteranceConfig returns the fixed announcement defaults.
func DefaultUtteranceConfig() UtteranceConfig {
	return UtteranceConfig{
		Rate:   0.9,
		Pitch:  1.1,
		Volume: 1.0,
		Locale: "en-US",
	}
}

// Utterance is a single speech request.
type Utterance struct {
	ID     string
	Text   string
	Config UtteranceConfig
}

// Snapshot represents a complete view of the engine state.
type Snapshot struct {
	Preferences Preferences
	Device      DeviceState
	Unlock      UnlockState
	Cursor      SchedulerCursor
	DeviceTime  float64
	Speaking    *Utterance
}
