package window

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"abc-audio/internal/adapter/primary/window/controls"
	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
	"abc-audio/internal/usecase"
)

const (
	width  = 480
	height = 320
	title  = "ABC Audio"
)

// Clear colours per unlock state.
var (
	lockedColor   = [3]float32{0.25, 0.25, 0.28}
	unlockedColor = [3]float32{0.13, 0.55, 0.33}
	playingColor  = [3]float32{0.16, 0.42, 0.75}
)

// Run opens a window whose mouse and key presses drive engine, until the window
// closes or ctx is done. It must be called from the main goroutine.
func Run(ctx context.Context, engine usecase.EngineUseCase) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window, err := initWindow()
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)

	ctl := controls.New(engine)
	window.SetMouseButtonCallback(func(_ *glfw.Window, _ glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if err := ctl.Pointer(); err != nil {
			logging.Warnf("pointer: %v", err)
		}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			w.SetShouldClose(true)
			return
		}
		if err := ctl.Key(keyRune(key)); err != nil {
			logging.Warnf("key %d: %v", key, err)
		}
	})
	logging.Infof("window keys: %s", controls.Help)

	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		glfw.WaitEventsTimeout(0.05)

		snap, err := engine.Snapshot()
		if err != nil {
			return err
		}
		draw(window, snap)
	}
	return nil
}

func initWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}

// keyRune returns the character of printable keys; glfw key codes match ASCII there.
func keyRune(key glfw.Key) rune {
	if key >= glfw.KeySpace && key <= glfw.KeyGraveAccent {
		return rune(key)
	}
	return 0
}

func draw(window *glfw.Window, snap domain.Snapshot) {
	c := lockedColor
	switch {
	case snap.Cursor.Armed:
		c = playingColor
	case snap.Unlock == domain.Unlocked:
		c = unlockedColor
	}
	gl.ClearColor(c[0], c[1], c[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	window.SwapBuffers()

	p := snap.Preferences
	window.SetTitle(fmt.Sprintf("%s  [%s]  music:%s sfx:%s voice:%s",
		title, snap.Unlock, onOff(p.MusicEnabled), onOff(p.SfxEnabled), onOff(p.VoiceEnabled)))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
