package device

import (
	"math"
	"sync"

	"abc-audio/internal/domain"
)

// bytesPerSample is the size of one float32 LE sample.
const bytesPerSample = 4

// Mixer renders scheduled voices into interleaved float32 LE frames.
// The frame counter is the device clock: time only advances as frames are read.
type Mixer struct {
	sampleRate int
	channels   int

	mu     sync.Mutex
	frames int64
	voices []*mixVoice
}

type mixVoice struct {
	voice domain.Voice
	phase float64
}

// NewMixer creates a mixer producing channels interleaved samples at sampleRate.
func NewMixer(sampleRate, channels int) *Mixer {
	return &Mixer{sampleRate: sampleRate, channels: channels}
}

// Now returns the device clock in seconds.
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.frames) / float64(m.sampleRate)
}

// Add schedules v. Voices that already ended are dropped.
func (m *Mixer) Add(v domain.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.Stop <= float64(m.frames)/float64(m.sampleRate) {
		return
	}
	m.voices = append(m.voices, &mixVoice{voice: v})
}

// Pending returns the number of voices not yet finished.
func (m *Mixer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read fills p with whole frames and never returns an error; silence is rendered
// when no voice is active.
func (m *Mixer) Read(p []byte) (int, error) {
	frameSize := bytesPerSample * m.channels
	n := len(p) / frameSize

	m.mu.Lock()
	defer m.mu.Unlock()

	dt := 1 / float64(m.sampleRate)
	for i := 0; i < n; i++ {
		t := float64(m.frames+int64(i)) * dt
		var sample float64
		for _, mv := range m.voices {
			if !mv.voice.Active(t) {
				continue
			}
			sample += domain.Oscillate(mv.voice.Waveform, mv.phase) * mv.voice.Gain.ValueAt(t)
			mv.phase += mv.voice.Frequency.ValueAt(t) * dt
			mv.phase -= math.Floor(mv.phase)
		}
		putFrame(p[i*frameSize:(i+1)*frameSize], clip(sample))
	}
	m.frames += int64(n)
	m.prune(float64(m.frames) * dt)
	return n * frameSize, nil
}

// prune drops voices that stopped before t.
func (m *Mixer) prune(t float64) {
	live := m.voices[:0]
	for _, mv := range m.voices {
		if mv.voice.Stop > t {
			live = append(live, mv)
		}
	}
	for i := len(live); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = live
}

// putFrame writes sample to every channel of one frame.
func putFrame(frame []byte, sample float64) {
	v := math.Float32bits(float32(sample))
	for off := 0; off+bytesPerSample <= len(frame); off += bytesPerSample {
		frame[off] = byte(v)
		frame[off+1] = byte(v >> 8)
		frame[off+2] = byte(v >> 16)
		frame[off+3] = byte(v >> 24)
	}
}

// clip keeps overlapping voices inside [-1,1].
func clip(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
