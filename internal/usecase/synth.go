package usecase

import (
	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// DeviceSource exposes the shared device once it has been created.
type DeviceSource interface {
	Device() (domain.AudioDevice, bool)
}

// ToneSynthesizer turns effect kinds and melody notes into voices on the shared device.
// It holds no state of its own; without a device every call is a silent no-op.
type ToneSynthesizer struct {
	devices DeviceSource
}

// NewToneSynthesizer creates a synthesizer writing to the device exposed by src.
func NewToneSynthesizer(src DeviceSource) *ToneSynthesizer {
	return &ToneSynthesizer{devices: src}
}

// EmitEffect schedules the effect kind at device time at.
func (s *ToneSynthesizer) EmitEffect(kind domain.SoundKind, at float64) {
	dev, ok := s.devices.Device()
	if !ok {
		return
	}
	v, err := domain.EffectVoice(kind, at)
	if err != nil {
		logging.Warnf("sfx %v: %v", kind, err)
		return
	}
	dev.Play(v)
}

// EmitEffectNow schedules the effect kind at the current device time.
func (s *ToneSynthesizer) EmitEffectNow(kind domain.SoundKind) {
	dev, ok := s.devices.Device()
	if !ok {
		return
	}
	s.EmitEffect(kind, dev.CurrentTime())
}

// EmitNote schedules a melody note.
func (s *ToneSynthesizer) EmitNote(freq, start, duration float64) {
	dev, ok := s.devices.Device()
	if !ok {
		return
	}
	dev.Play(domain.NoteVoice(freq, start, duration))
}
