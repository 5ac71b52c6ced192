package usecase

import (
	"errors"

	"github.com/google/uuid"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// Dispatcher runs fn on the goroutine that owns engine state.
type Dispatcher func(fn func())

// AnnouncementChannel speaks at most one utterance at a time.
// Starting a new utterance cancels the previous one; nothing is queued.
type AnnouncementChannel struct {
	speaker  domain.Speaker
	prefs    func() domain.Preferences
	dispatch Dispatcher
	config   domain.UtteranceConfig

	current *domain.Utterance
}

// NewAnnouncementChannel creates a channel. speaker may be nil when the host has no speech.
func NewAnnouncementChannel(speaker domain.Speaker, prefs func() domain.Preferences, dispatch Dispatcher, cfg domain.UtteranceConfig) *AnnouncementChannel {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &AnnouncementChannel{
		speaker:  speaker,
		prefs:    prefs,
		dispatch: dispatch,
		config:   cfg,
	}
}

// Speak announces text with the channel's default configuration.
func (c *AnnouncementChannel) Speak(text string) {
	c.SpeakWith(text, c.config)
}

// SpeakWith announces text with cfg, replacing any utterance in flight.
func (c *AnnouncementChannel) SpeakWith(text string, cfg domain.UtteranceConfig) {
	if !c.prefs().VoiceEnabled {
		return
	}
	if c.speaker == nil || !c.speaker.Available() {
		logging.Debugf("speak %q: %v", text, domain.ErrSpeechUnsupported)
		return
	}

	if err := c.speaker.Cancel(); err != nil {
		logging.Warnf("cancel speech: %v", err)
	}
	c.current = nil

	u := &domain.Utterance{ID: uuid.NewString(), Text: text, Config: cfg}
	c.current = u
	err := c.speaker.Speak(*u, func(err error) {
		c.dispatch(func() { c.finish(u, err) })
	})
	if err != nil {
		c.finish(u, err)
	}
}

// Current returns the utterance in flight, or nil.
func (c *AnnouncementChannel) Current() *domain.Utterance {
	if c.current == nil {
		return nil
	}
	u := *c.current
	return &u
}

// Warm asks the speaker for its voices once so the first announcement starts quickly.
// It only touches the speaker and may run on any goroutine.
func (c *AnnouncementChannel) Warm() {
	if c.speaker == nil || !c.speaker.Available() {
		return
	}
	voices, err := c.speaker.Voices()
	if err != nil {
		logging.Warnf("load voices: %v", err)
		return
	}
	logging.Debugf("speech ready with %d voices", len(voices))
}

func (c *AnnouncementChannel) finish(u *domain.Utterance, err error) {
	if err != nil && !errors.Is(err, domain.ErrUtteranceCanceled) {
		logging.Errorf("speech %q: %v", u.Text, err)
	}
	if c.current == u {
		c.current = nil
	}
}
