package device

import (
	"sync"
	"time"

	"abc-audio/internal/domain"
)

// NoopFactory opens silent devices.
// Useful for testing or hosts without an audio output.
type NoopFactory struct {
	Now func() time.Time
}

// NewNoopFactory creates a factory whose devices follow the wall clock.
func NewNoopFactory() *NoopFactory {
	return &NoopFactory{Now: time.Now}
}

// Open creates a suspended silent device.
func (f *NoopFactory) Open() (domain.AudioDevice, error) {
	now := f.Now
	if now == nil {
		now = time.Now
	}
	return &NoopDevice{now: now, state: domain.DeviceSuspended}, nil
}

// NoopDevice discards voices. Its clock starts at zero on the first Resume.
type NoopDevice struct {
	now func() time.Time

	mu      sync.Mutex
	state   domain.DeviceState
	started time.Time
	played  int
}

func (d *NoopDevice) State() domain.DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Resume always succeeds immediately.
func (d *NoopDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != domain.DeviceRunning {
		d.state = domain.DeviceRunning
		d.started = d.now()
	}
	return nil
}

func (d *NoopDevice) CurrentTime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != domain.DeviceRunning {
		return 0
	}
	return d.now().Sub(d.started).Seconds()
}

// Play counts v and drops it.
func (d *NoopDevice) Play(domain.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.played++
}

// Played returns how many voices were handed to the device.
func (d *NoopDevice) Played() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.played
}
