package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// bufferLatency bounds how far the mixer renders ahead of the speaker.
// It stays below the scheduler's look-ahead so notes are never rendered late.
const bufferLatency = 50 * time.Millisecond

// OtoFactory opens the system audio output through oto.
type OtoFactory struct {
	SampleRate   int
	ChannelCount int
}

// NewOtoFactory creates a factory for the given output format.
func NewOtoFactory(sampleRate, channelCount int) *OtoFactory {
	return &OtoFactory{SampleRate: sampleRate, ChannelCount: channelCount}
}

// Open creates the oto context. oto allows one context per process, so callers
// must open at most once. Failure means the host has no usable output.
func (f *OtoFactory) Open() (domain.AudioDevice, error) {
	ctx, ready, err := oto.NewContext(f.SampleRate, f.ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("oto context: %v: %w", err, domain.ErrDeviceUnavailable)
	}
	mixer := NewMixer(f.SampleRate, f.ChannelCount)
	player := ctx.NewPlayer(mixer)
	if b, ok := player.(interface{ SetBufferSize(int) }); ok {
		frames := int(float64(f.SampleRate) * bufferLatency.Seconds())
		b.SetBufferSize(frames * f.ChannelCount * bytesPerSample)
	}
	logging.Debugf("oto context %dHz x%d", f.SampleRate, f.ChannelCount)
	return &otoDevice{
		ctx:    ctx,
		ready:  ready,
		player: player,
		mixer:  mixer,
		state:  domain.DeviceSuspended,
	}, nil
}

// otoDevice starts Suspended; the player is started by the first Resume once
// the driver reports ready.
type otoDevice struct {
	ctx    *oto.Context
	ready  chan struct{}
	player oto.Player
	mixer  *Mixer

	mu       sync.Mutex
	state    domain.DeviceState
	resuming bool
}

func (d *otoDevice) State() domain.DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Resume requests playback and returns without waiting for the driver.
func (d *otoDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == domain.DeviceRunning || d.resuming {
		return nil
	}
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("oto: %v: %w", err, domain.ErrDeviceSuspendFailed)
	}
	d.resuming = true
	go d.finishResume()
	return nil
}

func (d *otoDevice) finishResume() {
	<-d.ready
	err := d.ctx.Resume()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.resuming = false
	if err != nil {
		logging.Warnf("resume audio device: %v", err)
		return
	}
	d.player.Play()
	d.state = domain.DeviceRunning
	logging.Debugf("audio device running")
}

func (d *otoDevice) CurrentTime() float64 { return d.mixer.Now() }

func (d *otoDevice) Play(v domain.Voice) { d.mixer.Add(v) }
