package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomation_DefaultBeforeEvents(t *testing.T) {
	a := NewAutomation(440)
	assert.Equal(t, 440.0, a.ValueAt(0))
	assert.Equal(t, 440.0, a.ValueAt(100))

	a.SetValueAtTime(220, 1)
	assert.Equal(t, 440.0, a.ValueAt(0.5))
	assert.Equal(t, 220.0, a.ValueAt(1))
	assert.Equal(t, 220.0, a.ValueAt(5))
}

func TestAutomation_LinearRamp(t *testing.T) {
	a := NewAutomation(0).SetValueAtTime(0.1, 1).LinearRampToValueAtTime(0, 1.5)
	assert.InDelta(t, 0.1, a.ValueAt(1), 1e-12)
	assert.InDelta(t, 0.05, a.ValueAt(1.25), 1e-12)
	assert.InDelta(t, 0, a.ValueAt(1.5), 1e-12)
	assert.InDelta(t, 0, a.ValueAt(2), 1e-12)
}

func TestAutomation_ExponentialRamp(t *testing.T) {
	a := NewAutomation(800).SetValueAtTime(800, 0).ExponentialRampToValueAtTime(300, 0.1)
	assert.InDelta(t, 800, a.ValueAt(0), 1e-9)
	assert.InDelta(t, 800*math.Pow(300.0/800.0, 0.5), a.ValueAt(0.05), 1e-9)
	assert.InDelta(t, 300, a.ValueAt(0.1), 1e-9)
}

func TestAutomation_ExponentialToZeroHolds(t *testing.T) {
	a := NewAutomation(1).SetValueAtTime(1, 0).ExponentialRampToValueAtTime(0, 1)
	assert.Equal(t, 1.0, a.ValueAt(0.5))
	assert.Equal(t, 0.0, a.ValueAt(1))
}

func TestAutomation_EventsKeptInTimeOrder(t *testing.T) {
	a := NewAutomation(0)
	a.LinearRampToValueAtTime(1, 2)
	a.SetValueAtTime(0, 1)
	require.Equal(t, 2, a.Len())
	assert.InDelta(t, 0.5, a.ValueAt(1.5), 1e-12)
}

func TestOscillate(t *testing.T) {
	tests := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{WaveSine, 0, 0},
		{WaveSine, 0.25, 1},
		{WaveSine, 1.25, 1},
		{WaveTriangle, 0.25, 1},
		{WaveTriangle, 0.5, 0},
		{WaveTriangle, 0.75, -1},
		{WaveSawtooth, 0, 0},
		{WaveSawtooth, 0.25, 0.5},
		{WaveSawtooth, 0.75, -0.5},
		{WaveSquare, 0.1, 1},
		{WaveSquare, 0.6, -1},
	}
	for _, tt := range tests {
		t.Run(tt.w.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, Oscillate(tt.w, tt.phase), 1e-9)
		})
	}
}

func TestVoice_Active(t *testing.T) {
	v := NoteVoice(440, 1, 0.5)
	assert.False(t, v.Active(0.99))
	assert.True(t, v.Active(1))
	assert.True(t, v.Active(1.49))
	assert.False(t, v.Active(1.5))
	assert.InDelta(t, 0.5, v.Duration(), 1e-12)
}
