package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
	"abc-audio/internal/usecase"
)

func runInteractiveShell(uc usecase.EngineUseCase, prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "abc-audio-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintln(out, "Audio is locked until the first line you enter. 'help' for commands, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Fprintln(out)
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if quit := runShellLine(uc, line, out); quit {
			return nil
		}
	}
}

// runShellLine handles one entered line and reports whether the shell should exit.
// The line counts as a key press before anything else happens.
func runShellLine(uc usecase.EngineUseCase, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if err := uc.Gesture(domain.GestureKey); err != nil {
		fmt.Fprintf(out, "engine: %v\n", err)
		return errors.Is(err, domain.ErrEngineStopped)
	}

	switch line {
	case "exit", "quit":
		fmt.Fprintln(out, "Bye!")
		return true
	case "help":
		printShellHelp(out)
		return false
	}
	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(out, "Parse error: %v\n", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}
	if tokens[0] == "log" {
		if err := handleShellLog(tokens[1:], out); err != nil {
			fmt.Fprintf(out, "log: %v\n", err)
		}
		return false
	}

	if err := executeShell(uc, tokens, out); err != nil {
		fmt.Fprintf(out, "command error: %v\n", err)
	}
	return false
}

func executeShell(uc usecase.EngineUseCase, args []string, out io.Writer) error {
	root := newShellRoot(uc, out)
	root.SetArgs(args)
	return root.Execute()
}

// newShellRoot builds the command tree available inside the shell.
func newShellRoot(uc usecase.EngineUseCase, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "abc",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(out)

	toggle := &cobra.Command{
		Use:       "toggle music|sfx|voice",
		Short:     "Flip one preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"music", "sfx", "voice"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				prefs domain.Preferences
				err   error
			)
			switch args[0] {
			case "music":
				prefs, err = uc.ToggleMusic()
			case "sfx":
				prefs, err = uc.ToggleSfx()
			case "voice":
				prefs, err = uc.ToggleVoice()
			default:
				return fmt.Errorf("unknown preference %q", args[0])
			}
			if err != nil {
				return err
			}
			printPreferences(out, prefs)
			return nil
		},
	}

	bgm := &cobra.Command{
		Use:   "bgm play|pause",
		Short: "Start or pause the background melody",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "play":
				return uc.PlayBgm()
			case "pause":
				return uc.PauseBgm()
			default:
				return fmt.Errorf("unknown bgm action %q", args[0])
			}
		},
	}

	sfx := &cobra.Command{
		Use:   "sfx click|success|correct|wrong",
		Short: "Play a sound effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseSoundKind(args[0])
			if err != nil {
				return err
			}
			return uc.PlaySfx(kind)
		},
	}

	say := &cobra.Command{
		Use:   "say <text>",
		Short: "Announce text, interrupting any announcement in progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return uc.Speak(strings.Join(args, " "))
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show preferences, unlock and melody state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := uc.Snapshot()
			if err != nil {
				return err
			}
			printStatus(out, snap)
			return nil
		},
	}

	root.AddCommand(toggle, bgm, sfx, say, status)
	return root
}

func printStatus(w io.Writer, snap domain.Snapshot) {
	printPreferences(w, snap.Preferences)
	fmt.Fprintf(w, "audio %s (device %s, t=%.2fs)\n", snap.Unlock, snap.Device, snap.DeviceTime)
	state := "stopped"
	if snap.Cursor.Armed {
		state = "playing"
	}
	fmt.Fprintf(w, "melody %s at note %d\n", state, snap.Cursor.Index)
	if snap.Speaking != nil {
		fmt.Fprintf(w, "speaking %q\n", snap.Speaking.Text)
	}
}

func handleShellLog(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "print the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case level != "":
		if err := logging.SetLevel(level); err != nil {
			return err
		}
	case vcount > 0:
		logging.SetVerbosity(vcount)
	default:
		fmt.Fprintf(out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	verbosity = logging.Verbosity()
	fmt.Fprintf(out, "log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, `Commands (every line also counts as a key press):
  toggle music|sfx|voice      # flip a preference
  bgm play|pause              # start or pause the melody
  sfx click|success|correct|wrong
  say A is for Apple          # speak, interrupting the previous announcement
  status                      # show preferences, unlock and melody state
  log -vv                     # more logging
  log --level debug           # set the log level
  log --show                  # show the log level
  exit / quit                 # leave the shell`)
}
