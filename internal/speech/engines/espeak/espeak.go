// Package espeak adapts the espeak-ng command line synthesizer to the
// speech engine interface. Synthesis runs one process per utterance
// with WAV output on stdout; playback goes through an oto audio
// context. Closing a session stops its playback, which is the only way
// to halt in-flight speech.
package espeak

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"

	"github.com/speakclip/speakclip/internal/speech"
)

// DefaultBinary is the synthesizer executable looked up on PATH.
const DefaultBinary = "espeak-ng"

// sampleRate is espeak-ng's fixed output rate.
const sampleRate = 22050

const contextReadyTimeout = 5 * time.Second

// Engine implements speech.Engine on top of espeak-ng.
type Engine struct {
	binary string
	audio  *oto.Context
}

// New creates an engine using the given espeak-ng binary. An empty
// binary selects DefaultBinary.
func New(binary string) *Engine {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Engine{binary: binary}
}

// Initialize verifies the binary is present and brings up the audio
// context.
func (e *Engine) Initialize() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("synthesizer not found: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("audio context: %w", err)
	}
	select {
	case <-ready:
	case <-time.After(contextReadyTimeout):
		return errors.New("audio context not ready")
	}
	e.audio = ctx
	return nil
}

// Finalize suspends the audio context. oto contexts are process-wide
// and cannot be destroyed.
func (e *Engine) Finalize() {
	if e.audio != nil {
		if err := e.audio.Suspend(); err != nil {
			log.Debug("Could not suspend audio context", "err", err)
		}
	}
}

// Voices enumerates the installed espeak-ng voices.
func (e *Engine) Voices() ([]speech.Voice, error) {
	out, err := exec.Command(e.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return parseVoices(out), nil
}

// parseVoices reads `espeak-ng --voices` output. Columns:
// Pty Language Age/Gender VoiceName File Other Languages
func parseVoices(out []byte) []speech.Voice {
	var voices []speech.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false // header row
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, speech.Voice{
			Name:     fields[3],
			Language: fields[1],
		})
	}
	return voices
}

// NewSession implements speech.Engine.
func (e *Engine) NewSession(handler speech.EventHandler) (speech.Session, error) {
	if e.audio == nil {
		return nil, errors.New("engine not initialized")
	}
	if err := e.audio.Resume(); err != nil {
		return nil, fmt.Errorf("resume audio context: %w", err)
	}
	return &session{
		engine:  e,
		handler: handler,
		volume:  100,
	}, nil
}

// session holds the pending synthesis parameters and at most one live
// playback.
type session struct {
	engine  *Engine
	handler speech.EventHandler

	mu     sync.Mutex
	voice  string // espeak voice identifier; empty selects the default
	rate   int
	volume int
	player *oto.Player
	closed bool
}

func (s *session) SetVoice(v speech.Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	if v.Language == "" {
		return fmt.Errorf("voice %q has no language identifier", v.Name)
	}
	s.voice = v.Language
	return nil
}

func (s *session) SetRate(rate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	if rate < -10 || rate > 10 {
		return fmt.Errorf("rate %d out of range", rate)
	}
	s.rate = rate
	return nil
}

func (s *session) SetVolume(volume int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	if volume < 0 || volume > 100 {
		return fmt.Errorf("volume %d out of range", volume)
	}
	s.volume = volume
	return nil
}

// Speak synthesizes text and starts asynchronous playback. It returns
// once the submission is accepted; the audio keeps playing until it
// ends or the session is closed.
func (s *session) Speak(text string) (speech.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.New("session closed")
	}

	args := []string{
		"--stdout",
		"-s", fmt.Sprintf("%d", wordsPerMinute(s.rate)),
		"-a", fmt.Sprintf("%d", amplitude(s.volume)),
	}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}

	cmd := exec.Command(s.engine.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	pcm, rate, err := decodeWAV(out)
	if err != nil {
		return "", fmt.Errorf("decode synthesis output: %w", err)
	}
	if rate != sampleRate {
		return "", fmt.Errorf("unexpected sample rate %d", rate)
	}

	id := speech.SessionID(uuid.NewString())
	player := s.engine.audio.NewPlayer(bytes.NewReader(pcm))
	s.player = player
	player.Play()
	go s.watchPlayback(player, id)
	return id, nil
}

// watchPlayback waits for the player to drain, then notifies the
// event handler and releases the player.
func (s *session) watchPlayback(player *oto.Player, id speech.SessionID) {
	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	s.mu.Lock()
	if s.player == player {
		s.player = nil
	}
	closed := s.closed
	s.mu.Unlock()

	_ = player.Close()
	if !closed && s.handler != nil {
		s.handler.SpeechFinished(id)
	}
}

// Close tears the session down; any in-flight audio stops here.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.player != nil {
		if err := s.player.Close(); err != nil {
			log.Debug("Could not close audio player", "err", err)
		}
		s.player = nil
	}
	return nil
}

// wordsPerMinute maps the -10..10 rate setting exponentially onto
// espeak's words-per-minute scale around its default of 175.
func wordsPerMinute(rate int) int {
	return int(math.Round(175 * math.Pow(2, float64(rate)/10)))
}

// amplitude maps the 0..100 volume setting onto espeak's 0..200
// amplitude scale.
func amplitude(volume int) int {
	return volume * 2
}
