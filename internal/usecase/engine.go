package usecase

import (
	"context"
	"sync"
	"time"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// EngineUseCase is the primary port collaborators use to drive audio.
// Every method returns domain.ErrEngineStopped once the engine loop has exited;
// audio failures themselves are never returned.
type EngineUseCase interface {
	Start(ctx context.Context)
	Done() <-chan struct{}

	ToggleMusic() (domain.Preferences, error)
	ToggleSfx() (domain.Preferences, error)
	ToggleVoice() (domain.Preferences, error)
	SetPreferences(prefs domain.Preferences) error
	Preferences() (domain.Preferences, error)

	PlayBgm() error
	PauseBgm() error
	PlaySfx(kind domain.SoundKind) error
	Speak(text string) error
	Gesture(kind domain.GestureKind) error

	Snapshot() (domain.Snapshot, error)
}

// Option customizes the engine.
type Option func(*engineOptions)

type engineOptions struct {
	score     domain.Score
	utterance domain.UtteranceConfig
	timer     domain.TickTimer
}

// WithScore replaces the background melody.
func WithScore(score domain.Score) Option {
	return func(o *engineOptions) { o.score = score }
}

// WithUtteranceConfig replaces the announcement defaults.
func WithUtteranceConfig(cfg domain.UtteranceConfig) Option {
	return func(o *engineOptions) { o.utterance = cfg }
}

// WithTickTimer replaces the wall-clock timer driving the scheduler.
func WithTickTimer(timer domain.TickTimer) Option {
	return func(o *engineOptions) { o.timer = timer }
}

// engineInteractor implements EngineUseCase.
// All component state is owned by the loop goroutine; requests reach it through a channel.
type engineInteractor struct {
	saver     *preferenceSaver
	gate      *DeviceGate
	synth     *ToneSynthesizer
	scheduler *LookaheadScheduler
	unlock    *UnlockCoordinator
	channel   *AnnouncementChannel
	gestures  *gestureHub

	prefs domain.Preferences

	requests  chan request
	stopped   chan struct{}
	startOnce sync.Once
}

type request struct {
	fn   func()
	done chan struct{}
}

// NewEngineUseCase wires the audio components.
// Dependencies are injected (secondary ports); speaker may be nil.
func NewEngineUseCase(
	repo domain.PreferencesRepository,
	devices domain.DeviceFactory,
	speaker domain.Speaker,
	opts ...Option,
) EngineUseCase {
	o := engineOptions{
		score:     domain.TwinkleScore(),
		utterance: domain.DefaultUtteranceConfig(),
		timer:     realTimer{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Load initial state
	prefs := domain.DefaultPreferences()
	if repo != nil {
		loaded, err := repo.Load()
		if err != nil {
			logging.Warnf("load preferences, using defaults: %v", err)
		} else {
			prefs = loaded
		}
	}

	e := &engineInteractor{
		saver:    newPreferenceSaver(repo),
		prefs:    prefs,
		gestures: &gestureHub{subs: map[int]func(domain.GestureKind){}},
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
	current := func() domain.Preferences { return e.prefs }

	e.gate = NewDeviceGate(devices)
	e.synth = NewToneSynthesizer(e.gate)
	e.scheduler = NewLookaheadScheduler(e.gate, e.synth, loopTimer{base: o.timer, post: e.post}, o.score)
	e.unlock = NewUnlockCoordinator(e.gate, e.scheduler, current)
	e.channel = NewAnnouncementChannel(speaker, current, e.post, o.utterance)
	e.unlock.Listen(e.gestures)
	return e
}

// Start launches the engine loop until ctx is cancelled.
func (e *engineInteractor) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		saverCtx, stopSaver := context.WithCancel(context.Background())
		saved := make(chan struct{})
		go func() {
			defer close(saved)
			e.saver.run(saverCtx)
		}()
		go e.channel.Warm()
		go e.loop(ctx, func() {
			stopSaver()
			<-saved
		})
	})
}

// Done is closed when the loop has exited and pending preferences are written.
func (e *engineInteractor) Done() <-chan struct{} { return e.stopped }

// flush runs after the last request so no toggle is left unsaved.
func (e *engineInteractor) loop(ctx context.Context, flush func()) {
	defer close(e.stopped)
	for {
		select {
		case <-ctx.Done():
			e.scheduler.Disarm()
			flush()
			return
		case req := <-e.requests:
			req.fn()
			if req.done != nil {
				close(req.done)
			}
		}
	}
}

// do runs fn on the loop and waits for it.
func (e *engineInteractor) do(fn func()) error {
	done := make(chan struct{})
	select {
	case e.requests <- request{fn: fn, done: done}:
	case <-e.stopped:
		return domain.ErrEngineStopped
	}
	select {
	case <-done:
		return nil
	case <-e.stopped:
		return domain.ErrEngineStopped
	}
}

// post queues fn on the loop without waiting. Safe to call from the loop itself.
func (e *engineInteractor) post(fn func()) {
	go func() {
		select {
		case e.requests <- request{fn: fn}:
		case <-e.stopped:
		}
	}()
}

// applyPreferences installs next and starts or stops the melody when music changed.
func (e *engineInteractor) applyPreferences(next domain.Preferences, persist bool) {
	prev := e.prefs
	e.prefs = next
	if persist && next != prev {
		e.saver.Save(next)
	}
	if next.MusicEnabled == prev.MusicEnabled {
		return
	}
	if !next.MusicEnabled {
		e.scheduler.Disarm()
		return
	}
	if !e.scheduler.Arm() {
		logging.Debugf("music enabled; waiting for audio unlock")
	}
}

func (e *engineInteractor) toggle(flip func(domain.Preferences) domain.Preferences) (domain.Preferences, error) {
	var prefs domain.Preferences
	err := e.do(func() {
		e.applyPreferences(flip(e.prefs), true)
		prefs = e.prefs
	})
	return prefs, err
}

// ToggleMusic flips the music flag and arms or disarms the melody.
func (e *engineInteractor) ToggleMusic() (domain.Preferences, error) {
	return e.toggle(domain.Preferences.ToggleMusic)
}

// ToggleSfx flips the sound-effect flag.
func (e *engineInteractor) ToggleSfx() (domain.Preferences, error) {
	return e.toggle(domain.Preferences.ToggleSfx)
}

// ToggleVoice flips the announcement flag.
func (e *engineInteractor) ToggleVoice() (domain.Preferences, error) {
	return e.toggle(domain.Preferences.ToggleVoice)
}

// SetPreferences applies preferences changed outside the engine without saving them again.
func (e *engineInteractor) SetPreferences(prefs domain.Preferences) error {
	return e.do(func() { e.applyPreferences(prefs, false) })
}

// Preferences returns the current flags.
func (e *engineInteractor) Preferences() (domain.Preferences, error) {
	var prefs domain.Preferences
	err := e.do(func() { prefs = e.prefs })
	return prefs, err
}

// PlayBgm arms the melody when music is enabled and the device is running.
func (e *engineInteractor) PlayBgm() error {
	return e.do(func() {
		if e.prefs.MusicEnabled {
			e.scheduler.Arm()
		}
	})
}

// PauseBgm stops scheduling further melody notes.
func (e *engineInteractor) PauseBgm() error {
	return e.do(e.scheduler.Disarm)
}

// PlaySfx plays an effect now. Effects usually come from a click, so the device is readied first.
func (e *engineInteractor) PlaySfx(kind domain.SoundKind) error {
	return e.do(func() {
		if !e.prefs.SfxEnabled {
			return
		}
		e.gate.EnsureReady()
		e.synth.EmitEffectNow(kind)
	})
}

// Speak announces text, replacing any announcement in flight.
func (e *engineInteractor) Speak(text string) error {
	return e.do(func() { e.channel.Speak(text) })
}

// Gesture delivers a user interaction to the unlock listeners.
func (e *engineInteractor) Gesture(kind domain.GestureKind) error {
	return e.do(func() { e.gestures.emit(kind) })
}

// Snapshot returns the current system state.
func (e *engineInteractor) Snapshot() (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := e.do(func() {
		now, _ := e.gate.Now()
		snap = domain.Snapshot{
			Preferences: e.prefs,
			Device:      e.gate.State(),
			Unlock:      e.unlock.State(),
			Cursor:      e.scheduler.Cursor(),
			DeviceTime:  now,
			Speaking:    e.channel.Current(),
		}
	})
	return snap, err
}

// gestureHub fans gestures out to subscribers. Used only from the engine loop.
type gestureHub struct {
	next int
	subs map[int]func(domain.GestureKind)
}

func (h *gestureHub) Subscribe(fn func(domain.GestureKind)) func() {
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

func (h *gestureHub) emit(kind domain.GestureKind) {
	for _, fn := range h.subs {
		fn(kind)
	}
}

// realTimer is the wall-clock TickTimer.
type realTimer struct{}

func (realTimer) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// loopTimer delivers timer callbacks onto the engine loop.
type loopTimer struct {
	base domain.TickTimer
	post func(func())
}

func (t loopTimer) AfterFunc(d time.Duration, f func()) func() bool {
	return t.base.AfterFunc(d, func() { t.post(f) })
}
