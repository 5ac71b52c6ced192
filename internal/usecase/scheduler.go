package usecase

import (
	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// LookaheadScheduler loops the melody by committing notes slightly ahead of the device clock
// on every tick. Ticks are wall-clock driven; note times are device-clock driven.
type LookaheadScheduler struct {
	gate    *DeviceGate
	synth   *ToneSynthesizer
	timer   domain.TickTimer
	score   domain.Score
	service *domain.SchedulerService

	cursor     domain.SchedulerCursor
	stop       func() bool
	generation uint64
}

// NewLookaheadScheduler creates an unarmed scheduler for score.
func NewLookaheadScheduler(gate *DeviceGate, synth *ToneSynthesizer, timer domain.TickTimer, score domain.Score) *LookaheadScheduler {
	return &LookaheadScheduler{
		gate:    gate,
		synth:   synth,
		timer:   timer,
		score:   score,
		service: domain.NewSchedulerService(),
	}
}

// Arm starts the tick loop. It requires a running device and is a no-op when already armed.
// It reports whether the scheduler is armed afterwards.
func (s *LookaheadScheduler) Arm() bool {
	if s.cursor.Armed {
		return true
	}
	if s.gate.State() != domain.DeviceRunning {
		return false
	}
	now, _ := s.gate.Now()
	s.cursor = s.service.Arm(s.cursor, now)
	s.generation++
	logging.Debugf("melody armed at %.3f (note %d)", s.cursor.NextNoteTime, s.cursor.Index)
	s.tick(s.generation)
	return true
}

// Disarm cancels the pending tick. Notes already handed to the device keep playing.
func (s *LookaheadScheduler) Disarm() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.cursor.Armed {
		logging.Debugf("melody disarmed at note %d", s.cursor.Index)
	}
	s.cursor = s.service.Disarm(s.cursor)
	s.generation++
}

// Armed reports whether ticks are running.
func (s *LookaheadScheduler) Armed() bool { return s.cursor.Armed }

// Cursor returns a copy of the playback bookkeeping.
func (s *LookaheadScheduler) Cursor() domain.SchedulerCursor { return s.cursor }

func (s *LookaheadScheduler) tick(gen uint64) {
	// a tick queued before Disarm must not reschedule itself
	if gen != s.generation || !s.cursor.Armed {
		return
	}
	now, ok := s.gate.Now()
	if !ok {
		return
	}
	var events []domain.NoteEvent
	s.cursor, events = s.service.Drain(s.cursor, s.score, now)
	for _, ev := range events {
		logging.Tracef("note %d %.2fHz at %.3f for %.3fs", ev.Index, ev.Note.FrequencyHz, ev.Start, ev.Duration)
		s.synth.EmitNote(ev.Note.FrequencyHz, ev.Start, ev.Duration)
	}
	s.stop = s.timer.AfterFunc(domain.TickInterval, func() { s.tick(gen) })
}
