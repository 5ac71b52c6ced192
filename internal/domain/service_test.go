package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTwinkleScore(t *testing.T) {
	score := TwinkleScore()
	require.Equal(t, 42, score.Len())
	assert.Equal(t, NoteC4, score.Note(0).FrequencyHz)
	assert.Equal(t, 2.0, score.Note(6).Beats)
	assert.Equal(t, NoteC4, score.Note(41).FrequencyHz)
}

// Tempo 90 BPM gives a beat of 0.6667s; a two-beat note sounds for 1.333s.
func TestScore_BeatDurationAt90BPM(t *testing.T) {
	score, err := NewScore([]Note{{NoteA4, 2}}, 90)
	require.NoError(t, err)
	assert.InDelta(t, 0.6667, score.BeatDuration(), 1e-4)
	assert.InDelta(t, 1.333, score.NoteDuration(0), 1e-3)
}

func TestNewScore_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		notes []Note
		bpm   float64
	}{
		{"empty", nil, 90},
		{"zero tempo", []Note{{NoteA4, 1}}, 0},
		{"zero beats", []Note{{NoteA4, 0}}, 90},
		{"zero frequency", []Note{{0, 1}}, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScore(tt.notes, tt.bpm)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidScore))
		})
	}
}

func TestSchedulerService_ArmSeedsOnFirstArm(t *testing.T) {
	svc := NewSchedulerService()
	c := svc.Arm(SchedulerCursor{Index: 7}, 2.0)
	assert.True(t, c.Armed)
	assert.True(t, c.Started)
	assert.Equal(t, 0, c.Index)
	assert.InDelta(t, 2.1, c.NextNoteTime, 1e-12)
}

func TestSchedulerService_ArmTwiceIsNoop(t *testing.T) {
	svc := NewSchedulerService()
	first := svc.Arm(SchedulerCursor{}, 1.0)
	second := svc.Arm(first, 5.0)
	assert.Equal(t, first, second)
}

func TestSchedulerService_RearmKeepsPosition(t *testing.T) {
	svc := NewSchedulerService()
	score := TwinkleScore()

	c := svc.Arm(SchedulerCursor{}, 0)
	c, events := svc.Drain(c, score, 3.0)
	require.NotEmpty(t, events)
	index := c.Index

	c = svc.Disarm(c)
	assert.False(t, c.Armed)
	c = svc.Arm(c, 100)
	assert.Equal(t, index, c.Index)
	assert.InDelta(t, 100.1, c.NextNoteTime, 1e-12)
}

func TestSchedulerService_DrainHorizon(t *testing.T) {
	svc := NewSchedulerService()
	score := TwinkleScore()
	c := svc.Arm(SchedulerCursor{}, 0) // first note at 0.1

	c, events := svc.Drain(c, score, 0)
	require.Len(t, events, 0, "0.1 is not before 0+0.1")

	c, events = svc.Drain(c, score, 0.01)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].Index)
	assert.InDelta(t, 0.1, events[0].Start, 1e-12)
	assert.InDelta(t, 60.0/90.0, events[0].Duration, 1e-12)
	assert.Equal(t, 1, c.Index)
}

// TestProperty_DrainStartTimesFollowScore verifies that emitted start times are
// non-decreasing and each equals the previous plus the previous note's length.
func TestProperty_DrainStartTimesFollowScore(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		svc := NewSchedulerService()
		score := TwinkleScore()
		beat := score.BeatDuration()

		now := rapid.Float64Range(0, 1000).Draw(t, "start")
		c := svc.Arm(SchedulerCursor{}, now)

		steps := rapid.SliceOfN(rapid.Float64Range(0, 2), 1, 60).Draw(t, "steps")
		var all []NoteEvent
		for _, dt := range steps {
			now += dt
			var events []NoteEvent
			c, events = svc.Drain(c, score, now)
			all = append(all, events...)
		}

		for i := 1; i < len(all); i++ {
			prev, cur := all[i-1], all[i]
			if cur.Start < prev.Start {
				t.Fatalf("start times decreased at %d: %v < %v", i, cur.Start, prev.Start)
			}
			want := prev.Start + prev.Note.Beats*beat
			if math.Abs(cur.Start-want) > 1e-9 {
				t.Fatalf("event %d starts at %v, want %v", i, cur.Start, want)
			}
			if cur.Index != (prev.Index+1)%score.Len() {
				t.Fatalf("event %d has index %d after %d", i, cur.Index, prev.Index)
			}
		}
		if c.NextNoteTime < now+LookaheadHorizon {
			t.Fatalf("horizon not drained: next %v, now %v", c.NextNoteTime, now)
		}
	})
}

func TestSchedulerService_WrapsWithoutGapOrDuplicate(t *testing.T) {
	svc := NewSchedulerService()
	score := TwinkleScore()
	c := svc.Arm(SchedulerCursor{}, 0)

	// one full pass of the melody is 48 beats
	c, events := svc.Drain(c, score, 48*score.BeatDuration()+1)
	require.Greater(t, len(events), score.Len())

	last := events[score.Len()-1]
	wrapped := events[score.Len()]
	assert.Equal(t, score.Len()-1, last.Index)
	assert.Equal(t, 0, wrapped.Index)
	assert.InDelta(t, last.Start+last.Duration, wrapped.Start, 1e-9)
	assert.Greater(t, c.Index, 0)
}

func TestEffectVoice_Envelopes(t *testing.T) {
	const at = 10.0
	tests := []struct {
		kind      SoundKind
		waveform  Waveform
		duration  float64
		freqStart float64
		freqEnd   float64
		gainEnd   float64
	}{
		{SoundClick, WaveSine, 0.1, 800, 300, 0.01},
		{SoundSuccess, WaveTriangle, 0.5, 400, 1000, 0},
		{SoundCorrect, WaveSine, 0.3, 600, 900, 0},
		{SoundWrong, WaveSawtooth, 0.3, 300, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			v, err := EffectVoice(tt.kind, at)
			require.NoError(t, err)
			assert.Equal(t, tt.waveform, v.Waveform)
			assert.InDelta(t, at, v.Start, 1e-12)
			assert.InDelta(t, tt.duration, v.Duration(), 1e-12)
			assert.InDelta(t, tt.freqStart, v.Frequency.ValueAt(at), 1e-9)
			assert.InDelta(t, tt.freqEnd, v.Frequency.ValueAt(v.Stop), 1e-9)
			assert.InDelta(t, 0.1, v.Gain.ValueAt(at), 1e-12)
			assert.InDelta(t, tt.gainEnd, v.Gain.ValueAt(v.Stop), 1e-9)
		})
	}
}

func TestEffectVoice_SuccessTwoRamps(t *testing.T) {
	v, err := EffectVoice(SoundSuccess, 0)
	require.NoError(t, err)
	assert.InDelta(t, 600, v.Frequency.ValueAt(0.1), 1e-9)
	assert.InDelta(t, 800, v.Frequency.ValueAt(0.2), 1e-9)
	assert.InDelta(t, 1000, v.Frequency.ValueAt(0.3), 1e-9)
}

func TestEffectVoice_Unknown(t *testing.T) {
	_, err := EffectVoice(SoundKind(99), 0)
	require.ErrorIs(t, err, ErrUnknownSoundKind)
}

func TestNoteVoice_Envelope(t *testing.T) {
	v := NoteVoice(NoteA4, 1, 1)
	assert.Equal(t, WaveSine, v.Waveform)
	assert.InDelta(t, NoteA4, v.Frequency.ValueAt(1.5), 1e-12)
	assert.InDelta(t, 0, v.Gain.ValueAt(1), 1e-12)
	assert.InDelta(t, 0.025, v.Gain.ValueAt(1.025), 1e-12)
	assert.InDelta(t, 0.05, v.Gain.ValueAt(1.05), 1e-12)
	assert.InDelta(t, 0.05, v.Gain.ValueAt(1.9), 1e-12)
	assert.InDelta(t, 0.025, v.Gain.ValueAt(1.975), 1e-9)
	assert.InDelta(t, 0, v.Gain.ValueAt(2), 1e-12)
}
