package usecase

import (
	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// UnlockCoordinator promotes audio from Locked to Unlocked on user gestures.
// Every gesture while Locked retries; once the device is observed running the
// coordinator stops listening for the rest of the process.
type UnlockCoordinator struct {
	gate      *DeviceGate
	scheduler *LookaheadScheduler
	prefs     func() domain.Preferences

	state        domain.UnlockState
	unsubscribes []func()
}

// NewUnlockCoordinator creates a Locked coordinator. prefs reads the current preferences.
func NewUnlockCoordinator(gate *DeviceGate, scheduler *LookaheadScheduler, prefs func() domain.Preferences) *UnlockCoordinator {
	return &UnlockCoordinator{
		gate:      gate,
		scheduler: scheduler,
		prefs:     prefs,
	}
}

// Listen subscribes to gestures from each source until unlocked.
func (u *UnlockCoordinator) Listen(sources ...domain.GestureSource) {
	if u.state == domain.Unlocked {
		return
	}
	for _, src := range sources {
		u.unsubscribes = append(u.unsubscribes, src.Subscribe(u.HandleGesture))
	}
}

// HandleGesture runs one unlock attempt.
func (u *UnlockCoordinator) HandleGesture(kind domain.GestureKind) {
	if u.state == domain.Unlocked {
		return
	}
	state := u.gate.EnsureReady()
	logging.Tracef("%s gesture: device %s", kind, state)

	// music requested before the device could run starts now
	if u.prefs().MusicEnabled && !u.scheduler.Armed() {
		u.scheduler.Arm()
	}

	if u.gate.State() != domain.DeviceRunning {
		return
	}
	u.state = domain.Unlocked
	for _, unsubscribe := range u.unsubscribes {
		unsubscribe()
	}
	u.unsubscribes = nil
	logging.Infof("audio unlocked by %s gesture", kind)
}

// State returns the unlock state.
func (u *UnlockCoordinator) State() domain.UnlockState { return u.state }

// Listening returns the number of active gesture subscriptions.
func (u *UnlockCoordinator) Listening() int { return len(u.unsubscribes) }
