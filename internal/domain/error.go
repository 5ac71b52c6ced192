package domain

import "errors"

var (
	// ErrDeviceUnavailable indicates that the platform has no audio output capability.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrDeviceSuspendFailed indicates that a resume request was rejected.
	ErrDeviceSuspendFailed = errors.New("audio device resume rejected")

	// ErrSpeechUnsupported indicates that no speech capability is present.
	ErrSpeechUnsupported = errors.New("speech synthesis unsupported")

	// ErrSpeechSynthesis is reported by a speech device after an utterance started.
	ErrSpeechSynthesis = errors.New("speech synthesis failed")

	// ErrUtteranceCanceled marks an utterance stopped by a newer one.
	ErrUtteranceCanceled = errors.New("utterance canceled")

	// ErrUnknownSoundKind indicates an effect name that is not click, success, correct or wrong.
	ErrUnknownSoundKind = errors.New("unknown sound kind")

	// ErrInvalidScore indicates a melody that cannot be scheduled.
	ErrInvalidScore = errors.New("invalid melody score")

	// ErrEngineStopped is returned when a request reaches an engine whose loop has exited.
	ErrEngineStopped = errors.New("audio engine stopped")
)
