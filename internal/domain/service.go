package domain

import "time"

const (
	// TickInterval is the wall-clock period of the look-ahead scheduler.
	TickInterval = 25 * time.Millisecond
	// LookaheadHorizon is how far ahead of the device clock notes are committed, in seconds.
	LookaheadHorizon = 0.1
	// StartOffset delays the first note after arming, in seconds.
	StartOffset = 0.1
)

// NoteEvent is a note committed to a device-clock start time.
type NoteEvent struct {
	Index    int
	Note     Note
	Start    float64
	Duration float64
}

// SchedulerService provides pure domain logic for the scheduler.
// This service has no side effects and no dependencies on external concerns.
type SchedulerService struct{}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService() *SchedulerService {
	return &SchedulerService{}
}

// Arm returns the cursor after arming at device time now.
// The first arm of the session rewinds to the top of the score; later arms keep the
// position and only move the next start time forward so missed notes are not replayed.
func (s *SchedulerService) Arm(c SchedulerCursor, now float64) SchedulerCursor {
	if c.Armed {
		return c
	}
	if !c.Started {
		c.Index = 0
		c.Started = true
	}
	c.NextNoteTime = now + StartOffset
	c.Armed = true
	return c
}

// Disarm marks the cursor as stopped without touching its position.
func (s *SchedulerService) Disarm(c SchedulerCursor) SchedulerCursor {
	c.Armed = false
	return c
}

// Drain commits every note that starts before now+LookaheadHorizon and advances the cursor,
// wrapping to the top of the score after the last note.
func (s *SchedulerService) Drain(c SchedulerCursor, score Score, now float64) (SchedulerCursor, []NoteEvent) {
	if score.Len() == 0 {
		return c, nil
	}
	var events []NoteEvent
	for c.NextNoteTime < now+LookaheadHorizon {
		dur := score.NoteDuration(c.Index)
		events = append(events, NoteEvent{
			Index:    c.Index,
			Note:     score.Note(c.Index),
			Start:    c.NextNoteTime,
			Duration: dur,
		})
		c.NextNoteTime += dur
		c.Index = (c.Index + 1) % score.Len()
	}
	return c, events
}

const (
	effectGain = 0.1
	noteGain   = 0.05
	noteAttack = 0.05
)

// EffectVoice builds the envelope of a sound effect triggered at device time at.
func EffectVoice(kind SoundKind, at float64) (Voice, error) {
	switch kind {
	case SoundClick:
		return Voice{
			Waveform:  WaveSine,
			Start:     at,
			Stop:      at + 0.1,
			Frequency: NewAutomation(800).SetValueAtTime(800, at).ExponentialRampToValueAtTime(300, at+0.1),
			Gain:      NewAutomation(effectGain).SetValueAtTime(effectGain, at).ExponentialRampToValueAtTime(0.01, at+0.1),
		}, nil
	case SoundSuccess:
		return Voice{
			Waveform: WaveTriangle,
			Start:    at,
			Stop:     at + 0.5,
			Frequency: NewAutomation(400).SetValueAtTime(400, at).
				LinearRampToValueAtTime(600, at+0.1).
				LinearRampToValueAtTime(1000, at+0.3),
			Gain: NewAutomation(effectGain).SetValueAtTime(effectGain, at).LinearRampToValueAtTime(0, at+0.5),
		}, nil
	case SoundCorrect:
		return Voice{
			Waveform:  WaveSine,
			Start:     at,
			Stop:      at + 0.3,
			Frequency: NewAutomation(600).SetValueAtTime(600, at).LinearRampToValueAtTime(900, at+0.1),
			Gain:      NewAutomation(effectGain).SetValueAtTime(effectGain, at).LinearRampToValueAtTime(0, at+0.3),
		}, nil
	case SoundWrong:
		return Voice{
			Waveform:  WaveSawtooth,
			Start:     at,
			Stop:      at + 0.3,
			Frequency: NewAutomation(300).SetValueAtTime(300, at).LinearRampToValueAtTime(200, at+0.2),
			Gain:      NewAutomation(effectGain).SetValueAtTime(effectGain, at).LinearRampToValueAtTime(0, at+0.3),
		}, nil
	default:
		return Voice{}, ErrUnknownSoundKind
	}
}

// NoteVoice builds a soft sine melody note with a short attack and release.
func NoteVoice(freq, start, duration float64) Voice {
	gain := NewAutomation(0).
		SetValueAtTime(0, start).
		LinearRampToValueAtTime(noteGain, start+noteAttack).
		SetValueAtTime(noteGain, start+duration-noteAttack).
		LinearRampToValueAtTime(0, start+duration)
	return Voice{
		Waveform:  WaveSine,
		Start:     start,
		Stop:      start + duration,
		Frequency: NewAutomation(freq),
		Gain:      gain,
	}
}
