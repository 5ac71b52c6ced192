package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"abc-audio/internal/domain"
)

type unlockFixture struct {
	factory *fakeFactory
	gate    *DeviceGate
	sched   *LookaheadScheduler
	timer   *manualTimer
	prefs   domain.Preferences
	unlock  *UnlockCoordinator
	pointer *fakeSource
	keys    *fakeSource
}

func newUnlockFixture(factory *fakeFactory, prefs domain.Preferences) *unlockFixture {
	f := &unlockFixture{
		factory: factory,
		timer:   &manualTimer{},
		prefs:   prefs,
		pointer: newFakeSource(),
		keys:    newFakeSource(),
	}
	f.gate = NewDeviceGate(factory)
	f.sched = NewLookaheadScheduler(f.gate, NewToneSynthesizer(f.gate), f.timer, domain.TwinkleScore())
	f.unlock = NewUnlockCoordinator(f.gate, f.sched, func() domain.Preferences { return f.prefs })
	f.unlock.Listen(f.pointer, f.keys)
	return f
}

func TestUnlockCoordinator_FirstGestureWithSlowResume(t *testing.T) {
	f := newUnlockFixture(newSuspendedFactory(false), domain.DefaultPreferences())
	require.Equal(t, 2, f.unlock.Listening())

	f.pointer.emit(domain.GesturePointer)
	assert.Equal(t, domain.Locked, f.unlock.State())
	assert.Equal(t, 1, f.factory.openCount())
	assert.Equal(t, 1, f.factory.dev.resumes())
	assert.Equal(t, 2, f.unlock.Listening())
	assert.False(t, f.sched.Armed())

	// resume completes in the background
	f.factory.dev.setState(domain.DeviceRunning)

	f.keys.emit(domain.GestureKey)
	assert.Equal(t, domain.Unlocked, f.unlock.State())
	assert.Equal(t, 0, f.unlock.Listening())
	assert.Empty(t, f.pointer.subs)
	assert.Empty(t, f.keys.subs)
	assert.True(t, f.sched.Armed(), "music was enabled")
	assert.Equal(t, 1, f.factory.openCount())
}

func TestUnlockCoordinator_ImmediateResumeUnlocksOnFirstGesture(t *testing.T) {
	f := newUnlockFixture(newSuspendedFactory(true), domain.DefaultPreferences())

	f.keys.emit(domain.GestureKey)
	assert.Equal(t, domain.Unlocked, f.unlock.State())
	assert.True(t, f.sched.Armed())
}

func TestUnlockCoordinator_MusicDisabledStaysQuiet(t *testing.T) {
	prefs := domain.Preferences{MusicEnabled: false, SfxEnabled: true, VoiceEnabled: true}
	f := newUnlockFixture(newSuspendedFactory(true), prefs)

	f.pointer.emit(domain.GesturePointer)
	assert.Equal(t, domain.Unlocked, f.unlock.State())
	assert.False(t, f.sched.Armed())
	assert.Equal(t, 0, f.timer.Pending())
}

func TestUnlockCoordinator_GesturesAfterUnlockTouchNothing(t *testing.T) {
	f := newUnlockFixture(newSuspendedFactory(true), domain.DefaultPreferences())
	f.pointer.emit(domain.GesturePointer)
	require.Equal(t, domain.Unlocked, f.unlock.State())
	resumes := f.factory.dev.resumes()

	// a host may still deliver a gesture that was already in flight
	f.factory.dev.setState(domain.DeviceSuspended)
	f.unlock.HandleGesture(domain.GestureTouch)
	assert.Equal(t, domain.Unlocked, f.unlock.State())
	assert.Equal(t, resumes, f.factory.dev.resumes())
	assert.Equal(t, 1, f.factory.openCount())

	f.unlock.Listen(newFakeSource())
	assert.Equal(t, 0, f.unlock.Listening())
}

func TestUnlockCoordinator_UnavailableDeviceStaysLocked(t *testing.T) {
	factory := &fakeFactory{err: fmt.Errorf("headless: %w", domain.ErrDeviceUnavailable)}
	f := newUnlockFixture(factory, domain.DefaultPreferences())

	for i := 0; i < 3; i++ {
		f.pointer.emit(domain.GesturePointer)
	}
	assert.Equal(t, domain.Locked, f.unlock.State())
	assert.Equal(t, 2, f.unlock.Listening())
	assert.Equal(t, 1, factory.openCount())
}

// TestProperty_UnlockIsMonotonic drives random gestures, background resumes and
// music toggles and checks that Unlocked never reverts and the device is created once.
func TestProperty_UnlockIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newUnlockFixture(newSuspendedFactory(false), domain.DefaultPreferences())
		unlocked := false

		ops := rapid.SliceOfN(rapid.IntRange(0, 3), 1, 40).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				f.pointer.emit(domain.GesturePointer)
			case 1:
				f.keys.emit(domain.GestureKey)
			case 2:
				if dev := f.factory.dev; f.factory.openCount() > 0 {
					dev.setState(domain.DeviceRunning)
				}
			case 3:
				f.prefs = f.prefs.ToggleMusic()
			}

			if unlocked && f.unlock.State() != domain.Unlocked {
				t.Fatalf("unlock reverted after op %d", op)
			}
			unlocked = f.unlock.State() == domain.Unlocked
			if unlocked && f.unlock.Listening() != 0 {
				t.Fatalf("still listening after unlock")
			}
			if f.factory.openCount() > 1 {
				t.Fatalf("device opened %d times", f.factory.openCount())
			}
		}
	})
}
