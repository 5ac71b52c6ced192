package domain

import "fmt"

// Note is one melody step.
type Note struct {
	FrequencyHz float64
	Beats       float64
}

// Score is a fixed melody and its tempo. It is never mutated after construction.
type Score struct {
	notes    []Note
	tempoBPM float64
}

// NewScore validates and copies notes.
func NewScore(notes []Note, tempoBPM float64) (Score, error) {
	if len(notes) == 0 {
		return Score{}, fmt.Errorf("%w: no notes", ErrInvalidScore)
	}
	if tempoBPM <= 0 {
		return Score{}, fmt.Errorf("%w: tempo must be positive, got %v", ErrInvalidScore, tempoBPM)
	}
	for i, n := range notes {
		if n.Beats <= 0 {
			return Score{}, fmt.Errorf("%w: note %d has %v beats", ErrInvalidScore, i, n.Beats)
		}
		if n.FrequencyHz <= 0 {
			return Score{}, fmt.Errorf("%w: note %d has frequency %v", ErrInvalidScore, i, n.FrequencyHz)
		}
	}
	return Score{notes: append([]Note(nil), notes...), tempoBPM: tempoBPM}, nil
}

// Len returns the number of notes.
func (s Score) Len() int { return len(s.notes) }

// Note returns the note at i.
func (s Score) Note(i int) Note { return s.notes[i] }

// TempoBPM returns the tempo in beats per minute.
func (s Score) TempoBPM() float64 { return s.tempoBPM }

// BeatDuration returns the length of one beat in seconds.
func (s Score) BeatDuration() float64 { return 60 / s.tempoBPM }

// NoteDuration returns the sounding length of the note at i in seconds.
func (s Score) NoteDuration(i int) float64 { return s.notes[i].Beats * s.BeatDuration() }

// Pitches used by the background melody.
const (
	NoteC4 = 261.63
	NoteD4 = 293.66
	NoteE4 = 329.63
	NoteF4 = 349.23
	NoteG4 = 392.00
	NoteA4 = 440.00
)

// MelodyTempoBPM is the tempo of the background melody.
const MelodyTempoBPM = 90

// TwinkleScore returns "Twinkle Twinkle Little Star" at MelodyTempoBPM.
func TwinkleScore() Score {
	phrase := func(a, b, c, d float64) []Note {
		return []Note{{a, 1}, {a, 1}, {b, 1}, {b, 1}, {c, 1}, {c, 1}, {d, 2}}
	}
	var notes []Note
	notes = append(notes, phrase(NoteC4, NoteG4, NoteA4, NoteG4)...)
	notes = append(notes, phrase(NoteF4, NoteE4, NoteD4, NoteC4)...)
	notes = append(notes, phrase(NoteG4, NoteF4, NoteE4, NoteD4)...)
	notes = append(notes, phrase(NoteG4, NoteF4, NoteE4, NoteD4)...)
	notes = append(notes, phrase(NoteC4, NoteG4, NoteA4, NoteG4)...)
	notes = append(notes, phrase(NoteF4, NoteE4, NoteD4, NoteC4)...)

	score, err := NewScore(notes, MelodyTempoBPM)
	if err != nil {
		panic(err)
	}
	return score
}
