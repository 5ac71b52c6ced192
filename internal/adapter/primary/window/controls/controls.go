// Package controls maps window input onto engine calls without depending on a windowing toolkit.
package controls

import (
	"unicode"

	"abc-audio/internal/domain"
	"abc-audio/internal/usecase"
)

// Controls delivers presses to the engine. Every press is a gesture first.
type Controls struct {
	engine usecase.EngineUseCase
}

// New creates controls bound to engine.
func New(engine usecase.EngineUseCase) *Controls {
	return &Controls{engine: engine}
}

// Help describes the key bindings.
const Help = "M music  S sfx  V voice  B play/pause  1-4 click/success/correct/wrong  Esc quit"

// Pointer handles a mouse press.
func (c *Controls) Pointer() error {
	return c.engine.Gesture(domain.GesturePointer)
}

// Key handles a key press. r is the key's character; unbound keys only count as gestures.
func (c *Controls) Key(r rune) error {
	if err := c.engine.Gesture(domain.GestureKey); err != nil {
		return err
	}
	switch unicode.ToUpper(r) {
	case 'M':
		_, err := c.engine.ToggleMusic()
		return err
	case 'S':
		_, err := c.engine.ToggleSfx()
		return err
	case 'V':
		_, err := c.engine.ToggleVoice()
		return err
	case 'B':
		snap, err := c.engine.Snapshot()
		if err != nil {
			return err
		}
		if snap.Cursor.Armed {
			return c.engine.PauseBgm()
		}
		return c.engine.PlayBgm()
	case '1', '2', '3', '4':
		return c.engine.PlaySfx(domain.SoundKinds()[r-'1'])
	}
	return nil
}
