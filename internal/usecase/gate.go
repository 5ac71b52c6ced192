package usecase

import (
	"errors"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// DeviceGate lazily opens the single output device and asks it to resume.
// The device is created at most once and never replaced.
type DeviceGate struct {
	factory     domain.DeviceFactory
	device      domain.AudioDevice
	unavailable bool
}

// NewDeviceGate creates a gate that opens devices through factory.
func NewDeviceGate(factory domain.DeviceFactory) *DeviceGate {
	return &DeviceGate{factory: factory}
}

// EnsureReady opens the device if needed and requests a resume when it is suspended.
// It never waits for the resume to finish; callers observe the result through State.
func (g *DeviceGate) EnsureReady() domain.DeviceState {
	if g.device == nil {
		if g.unavailable || g.factory == nil {
			return domain.DeviceUninitialized
		}
		dev, err := g.factory.Open()
		if err != nil {
			if errors.Is(err, domain.ErrDeviceUnavailable) {
				g.unavailable = true
				logging.Warnf("audio output disabled: %v", err)
			} else {
				logging.Warnf("open audio device: %v", err)
			}
			return domain.DeviceUninitialized
		}
		g.device = dev
		logging.Debugf("audio device created (%s)", dev.State())
	}

	if g.device.State() == domain.DeviceSuspended {
		if err := g.device.Resume(); err != nil {
			logging.Warnf("resume audio device: %v", err)
		}
	}
	return g.device.State()
}

// State returns the device state without side effects.
func (g *DeviceGate) State() domain.DeviceState {
	if g.device == nil {
		return domain.DeviceUninitialized
	}
	return g.device.State()
}

// Device returns the device if it has been created.
func (g *DeviceGate) Device() (domain.AudioDevice, bool) {
	return g.device, g.device != nil
}

// Now returns the device clock, or false when there is no device yet.
func (g *DeviceGate) Now() (float64, bool) {
	if g.device == nil {
		return 0, false
	}
	return g.device.CurrentTime(), true
}
