package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"abc-audio/internal/adapter/primary/web"
	"abc-audio/internal/adapter/primary/window"
	"abc-audio/internal/adapter/secondary/device"
	"abc-audio/internal/adapter/secondary/repository"
	"abc-audio/internal/adapter/secondary/speech"
	"abc-audio/internal/config"
	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
	"abc-audio/internal/usecase"
)

var (
	cfgPath   string
	verbosity int
	appConfig config.Config
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "abc-audio",
		Short:         "Melody, sound effects and spoken announcements for the ABC learning app",
		Long:          "Runs the audio engine behind an interactive shell, an HTTP API or a window.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to the YAML config file")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging (-v, -vv, ... up to 4)")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		appConfig = cfg
		if verbosity > 0 {
			logging.SetVerbosity(verbosity)
			return nil
		}
		return logging.SetLevel(cfg.LogLevel)
	}

	cmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newWindowCmd(),
		newPrefsCmd(),
		newConfigCmd(),
	)

	return cmd
}

// buildEngine wires the secondary adapters selected by cfg into an engine.
func buildEngine(cfg config.Config) (usecase.EngineUseCase, *repository.FileRepository, error) {
	repo, err := repository.NewFileRepository(cfg.PreferencesPath)
	if err != nil {
		return nil, nil, err
	}

	var devices domain.DeviceFactory
	switch cfg.Device.Backend {
	case config.BackendNoop:
		devices = device.NewNoopFactory()
	default:
		devices = device.NewOtoFactory(cfg.Device.SampleRate, cfg.Device.ChannelCount)
	}

	var speaker domain.Speaker
	if cfg.Speech.Backend == config.SpeechExec {
		speaker = speech.NewExecSpeaker(cfg.Speech.Command)
	}

	uc := usecase.NewEngineUseCase(repo, devices, speaker, usecase.WithUtteranceConfig(cfg.Utterance()))
	return uc, repo, nil
}

// startEngine runs the engine and feeds external preference edits into it until ctx is done.
func startEngine(ctx context.Context, uc usecase.EngineUseCase, repo *repository.FileRepository) {
	uc.Start(ctx)
	err := repo.Watch(ctx, func(prefs domain.Preferences) {
		if err := uc.SetPreferences(prefs); err != nil && !errors.Is(err, domain.ErrEngineStopped) {
			logging.Warnf("apply preferences: %v", err)
		}
	})
	if err != nil {
		logging.Warnf("preferences will not follow external edits: %v", err)
	}
}

// waitEngine cancels the engine context and waits for the last preferences to be written.
func waitEngine(stop context.CancelFunc, uc usecase.EngineUseCase) {
	stop()
	<-uc.Done()
}

func newRunCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine with an interactive shell (every line is a key press)",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, repo, err := buildEngine(appConfig)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			startEngine(ctx, uc, repo)
			defer waitEngine(stop, uc)

			return runInteractiveShell(uc, prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "abc> ", "shell prompt")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the engine behind the HTTP API and web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, repo, err := buildEngine(appConfig)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = appConfig.Web.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			startEngine(ctx, uc, repo)
			defer waitEngine(stop, uc)

			srv := web.NewServer(uc, addr)
			fmt.Fprintf(cmd.OutOrStdout(), "ABC Audio UI running at http://%s\n", addr)
			logging.Infof("web UI: http://%s", addr)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config web.addr)")
	return cmd
}

func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Start the engine in a desktop window (mouse and keys are gestures)",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, repo, err := buildEngine(appConfig)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			startEngine(ctx, uc, repo)
			defer waitEngine(stop, uc)

			return window.Run(ctx, uc)
		},
	}
}

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read or edit the stored music/sfx/voice toggles",
	}
	cmd.AddCommand(newPrefsGetCmd(), newPrefsSetCmd())
	return cmd
}

func newPrefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored toggles",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.NewFileRepository(appConfig.PreferencesPath)
			if err != nil {
				return err
			}
			prefs, err := repo.Load()
			if err != nil {
				return err
			}
			printPreferences(cmd.OutOrStdout(), prefs)
			return nil
		},
	}
}

func newPrefsSetCmd() *cobra.Command {
	var music, sfx, voice bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change stored toggles; a running engine picks them up",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.NewFileRepository(appConfig.PreferencesPath)
			if err != nil {
				return err
			}
			prefs, err := repo.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("music") && !flags.Changed("sfx") && !flags.Changed("voice") {
				return errors.New("set at least one of --music, --sfx, --voice")
			}
			if flags.Changed("music") {
				prefs.MusicEnabled = music
			}
			if flags.Changed("sfx") {
				prefs.SfxEnabled = sfx
			}
			if flags.Changed("voice") {
				prefs.VoiceEnabled = voice
			}

			if err := repo.Save(prefs); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "saved: ")
			printPreferences(cmd.OutOrStdout(), prefs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&music, "music", true, "background melody")
	cmd.Flags().BoolVar(&sfx, "sfx", true, "sound effects")
	cmd.Flags().BoolVar(&voice, "voice", true, "spoken announcements")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the config file",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the commented default config to --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}
			if err := config.WriteDefaultConfig(cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.Marshal(appConfig)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func printPreferences(w io.Writer, prefs domain.Preferences) {
	fmt.Fprintf(w, "music=%s sfx=%s voice=%s\n",
		onOff(prefs.MusicEnabled), onOff(prefs.SfxEnabled), onOff(prefs.VoiceEnabled))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
