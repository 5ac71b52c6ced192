package usecase

import (
	"sync"
	"time"

	"abc-audio/internal/domain"
)

type fakeDevice struct {
	mu            sync.Mutex
	state         domain.DeviceState
	now           float64
	voices        []domain.Voice
	resumeCalls   int
	resumeErr     error
	resumeRunsNow bool
}

func (d *fakeDevice) State() domain.DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumeCalls++
	if d.resumeErr != nil {
		return d.resumeErr
	}
	if d.resumeRunsNow {
		d.state = domain.DeviceRunning
	}
	return nil
}

func (d *fakeDevice) CurrentTime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.now
}

func (d *fakeDevice) Play(v domain.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.voices = append(d.voices, v)
}

func (d *fakeDevice) setState(s domain.DeviceState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

func (d *fakeDevice) setNow(t float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = t
}

func (d *fakeDevice) played() []domain.Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Voice(nil), d.voices...)
}

func (d *fakeDevice) resumes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resumeCalls
}

type fakeFactory struct {
	mu    sync.Mutex
	dev   *fakeDevice
	err   error
	opens int
}

func (f *fakeFactory) Open() (domain.AudioDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.err != nil {
		return nil, f.err
	}
	return f.dev, nil
}

func (f *fakeFactory) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// newSuspendedFactory returns a factory whose device opens suspended.
// When runsNow is true a resume request completes immediately.
func newSuspendedFactory(runsNow bool) *fakeFactory {
	return &fakeFactory{dev: &fakeDevice{state: domain.DeviceSuspended, resumeRunsNow: runsNow}}
}

type pendingCall struct {
	d       time.Duration
	f       func()
	stopped bool
}

// manualTimer records AfterFunc calls; Fire runs the pending ones.
type manualTimer struct {
	mu    sync.Mutex
	calls []*pendingCall
}

func (t *manualTimer) AfterFunc(d time.Duration, f func()) func() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := &pendingCall{d: d, f: f}
	t.calls = append(t.calls, c)
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		was := !c.stopped
		c.stopped = true
		return was
	}
}

// Fire runs every pending, non-stopped call once.
func (t *manualTimer) Fire() int {
	t.mu.Lock()
	calls := t.calls
	t.calls = nil
	t.mu.Unlock()

	n := 0
	for _, c := range calls {
		if c.stopped {
			continue
		}
		n++
		c.f()
	}
	return n
}

// FireAll runs every recorded call, including stopped ones, to mimic a timer that fired late.
func (t *manualTimer) FireAll() {
	t.mu.Lock()
	calls := t.calls
	t.calls = nil
	t.mu.Unlock()
	for _, c := range calls {
		c.f()
	}
}

func (t *manualTimer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.calls {
		if !c.stopped {
			n++
		}
	}
	return n
}

type fakeSpeaker struct {
	mu        sync.Mutex
	available bool
	speakErr  error
	started   []domain.Utterance
	dones     []func(error)
	cancels   int
}

func (s *fakeSpeaker) Available() bool { return s.available }

func (s *fakeSpeaker) Speak(u domain.Utterance, done func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speakErr != nil {
		return s.speakErr
	}
	s.started = append(s.started, u)
	s.dones = append(s.dones, done)
	return nil
}

func (s *fakeSpeaker) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	return nil
}

func (s *fakeSpeaker) Voices() ([]string, error) { return []string{"en-us"}, nil }

func (s *fakeSpeaker) startedTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var texts []string
	for _, u := range s.started {
		texts = append(texts, u.Text)
	}
	return texts
}

type fakeRepo struct {
	mu    sync.Mutex
	prefs domain.Preferences
	err   error
	saved []domain.Preferences
}

func (r *fakeRepo) Load() (domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefs, r.err
}

func (r *fakeRepo) Save(p domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, p)
	return nil
}

func (r *fakeRepo) last() (domain.Preferences, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return domain.Preferences{}, false
	}
	return r.saved[len(r.saved)-1], true
}

type fakeSource struct {
	subs map[int]func(domain.GestureKind)
	next int
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: map[int]func(domain.GestureKind){}}
}

func (s *fakeSource) Subscribe(fn func(domain.GestureKind)) func() {
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *fakeSource) emit(kind domain.GestureKind) {
	for _, fn := range s.subs {
		fn(kind)
	}
}
