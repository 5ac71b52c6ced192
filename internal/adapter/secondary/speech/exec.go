package speech

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/language"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// Candidates are tried in order when no command is configured.
var Candidates = []string{"espeak-ng", "espeak", "say"}

const (
	voicesKey = "voices"
	voicesTTL = 10 * time.Minute

	// baseWPM is the words per minute spoken at rate 1.0.
	baseWPM = 175
)

type flavor int

const (
	flavorEspeak flavor = iota
	flavorSay
)

// ExecSpeaker implements domain.Speaker by running a command-line synthesizer.
// This is a secondary adapter.
type ExecSpeaker struct {
	path   string
	flavor flavor
	voices *cache.Cache

	mu  sync.Mutex
	cur *run
}

type run struct {
	cmd      *exec.Cmd
	canceled bool
}

// NewExecSpeaker resolves command (or the first available candidate when empty).
// The returned speaker reports Available() == false when nothing was found.
func NewExecSpeaker(command string) *ExecSpeaker {
	s := &ExecSpeaker{voices: cache.New(voicesTTL, 2*voicesTTL)}
	names := Candidates
	if command != "" {
		names = []string{command}
	}
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		s.path = path
		s.flavor = flavorOf(path)
		logging.Debugf("speech via %s", path)
		return s
	}
	logging.Infof("no speech synthesizer found (tried %s)", strings.Join(names, ", "))
	return s
}

func flavorOf(path string) flavor {
	if strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) == "say" {
		return flavorSay
	}
	return flavorEspeak
}

// Available reports whether a synthesizer command was found.
func (s *ExecSpeaker) Available() bool { return s.path != "" }

// Speak starts u and returns once the process is running. done is called once,
// from another goroutine, when the process exits.
func (s *ExecSpeaker) Speak(u domain.Utterance, done func(error)) error {
	if !s.Available() {
		return domain.ErrSpeechUnsupported
	}
	cmd := exec.Command(s.path, args(s.flavor, u.Config)...)
	cmd.Stdin = strings.NewReader(u.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	r := &run{cmd: cmd}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %v: %w", filepath.Base(s.path), err, domain.ErrSpeechSynthesis)
	}
	s.cur = r

	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		canceled := r.canceled
		if s.cur == r {
			s.cur = nil
		}
		s.mu.Unlock()

		switch {
		case canceled:
			done(fmt.Errorf("utterance %s: %w", u.ID, domain.ErrUtteranceCanceled))
		case err != nil:
			done(fmt.Errorf("%v: %s: %w", err, strings.TrimSpace(stderr.String()), domain.ErrSpeechSynthesis))
		default:
			done(nil)
		}
	}()
	return nil
}

// Cancel stops the utterance in progress, if any.
func (s *ExecSpeaker) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	r := s.cur
	s.cur = nil
	r.canceled = true
	if err := r.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill speech: %w", err)
	}
	return nil
}

// Voices lists the synthesizer's voices. The list is cached.
func (s *ExecSpeaker) Voices() ([]string, error) {
	if !s.Available() {
		return nil, domain.ErrSpeechUnsupported
	}
	if cached, ok := s.voices.Get(voicesKey); ok {
		return cached.([]string), nil
	}

	var out []byte
	var err error
	switch s.flavor {
	case flavorSay:
		out, err = exec.Command(s.path, "-v", "?").Output()
	default:
		out, err = exec.Command(s.path, "--voices").Output()
	}
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	voices := parseVoices(s.flavor, out)
	s.voices.Set(voicesKey, voices, cache.DefaultExpiration)
	return voices, nil
}

// args maps an utterance configuration onto command-line flags. Text is read from stdin.
func args(f flavor, cfg domain.UtteranceConfig) []string {
	wpm := strconv.Itoa(int(math.Round(baseWPM * cfg.Rate)))
	if f == flavorSay {
		return []string{"-r", wpm, "-f", "-"}
	}
	return []string{
		"-s", wpm,
		"-p", strconv.Itoa(clampInt(math.Round(50*cfg.Pitch), 0, 99)),
		"-a", strconv.Itoa(clampInt(math.Round(100*cfg.Volume), 0, 200)),
		"-v", VoiceFor(cfg.Locale),
		"--stdin",
	}
}

// VoiceFor converts a BCP 47 locale into an espeak voice name such as "en-us".
func VoiceFor(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	base, conf := tag.Base()
	region, rconf := tag.Region()
	if conf == language.No {
		return "en"
	}
	if rconf == language.Exact {
		return strings.ToLower(base.String() + "-" + region.String())
	}
	return base.String()
}

func parseVoices(f flavor, out []byte) []string {
	var voices []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if f == flavorEspeak && first {
			// header: Pty Language Age/Gender VoiceName File Other Languages
			first = false
			continue
		}
		switch {
		case f == flavorSay && len(fields) >= 1:
			voices = append(voices, fields[0])
		case f == flavorEspeak && len(fields) >= 2:
			voices = append(voices, fields[1])
		}
	}
	return voices
}

func clampInt(v float64, lo, hi int) int {
	n := int(v)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
