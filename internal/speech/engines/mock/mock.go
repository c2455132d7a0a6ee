// Package mock provides an in-memory speech engine for testing.
package mock

import (
	"fmt"
	"sync"

	"github.com/speakclip/speakclip/internal/speech"
)

// Step records one sub-operation executed against the engine or one of
// its sessions, in global order across all sessions.
type Step struct {
	Session int    // 1-based session number, 0 for engine-level ops
	Op      string // "new-session", "set-voice", "set-rate", "set-volume", "speak", "close"
	Arg     string // operation argument, when meaningful
}

// Engine implements speech.Engine for tests. Failure switches allow
// individual call sites to be made to fail, and every sub-step is
// recorded so tests can assert ordering.
type Engine struct {
	mu     sync.Mutex
	voices []speech.Voice
	steps  []Step

	sessions    int
	initialized bool
	finalized   bool

	// Failure switches.
	InitErr      error
	VoicesErr    error
	SessionErr   error
	SetVoiceErr  error
	SetRateErr   error
	SetVolumeErr error
	SpeakErr     error
}

// New creates a mock engine exposing the given voices.
func New(voices ...speech.Voice) *Engine {
	return &Engine{voices: voices}
}

// Initialize implements speech.Engine.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.InitErr != nil {
		return e.InitErr
	}
	e.initialized = true
	return nil
}

// Finalize implements speech.Engine.
func (e *Engine) Finalize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finalized = true
}

// Voices implements speech.Engine.
func (e *Engine) Voices() ([]speech.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.VoicesErr != nil {
		return nil, e.VoicesErr
	}
	out := make([]speech.Voice, len(e.voices))
	copy(out, e.voices)
	return out, nil
}

// NewSession implements speech.Engine.
func (e *Engine) NewSession(handler speech.EventHandler) (speech.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SessionErr != nil {
		return nil, e.SessionErr
	}
	e.sessions++
	n := e.sessions
	e.steps = append(e.steps, Step{Session: n, Op: "new-session"})
	return &session{engine: e, n: n, handler: handler}, nil
}

// Steps returns a copy of the ordered sub-step log.
func (e *Engine) Steps() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Step, len(e.steps))
	copy(out, e.steps)
	return out
}

// SessionCount returns how many sessions have been constructed.
func (e *Engine) SessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// Initialized reports whether Initialize succeeded.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Finalized reports whether Finalize was called.
func (e *Engine) Finalized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finalized
}

func (e *Engine) record(n int, op, arg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps = append(e.steps, Step{Session: n, Op: op, Arg: arg})
}

type session struct {
	engine  *Engine
	n       int
	handler speech.EventHandler
	mu      sync.Mutex
	closed  bool
	voice   speech.Voice
	rate    int
	volume  int
}

func (s *session) SetVoice(v speech.Voice) error {
	if err := s.engine.SetVoiceErr; err != nil {
		return err
	}
	s.mu.Lock()
	s.voice = v
	s.mu.Unlock()
	s.engine.record(s.n, "set-voice", v.DisplayName())
	return nil
}

func (s *session) SetRate(rate int) error {
	if err := s.engine.SetRateErr; err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	s.engine.record(s.n, "set-rate", fmt.Sprintf("%d", rate))
	return nil
}

func (s *session) SetVolume(volume int) error {
	if err := s.engine.SetVolumeErr; err != nil {
		return err
	}
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
	s.engine.record(s.n, "set-volume", fmt.Sprintf("%d", volume))
	return nil
}

func (s *session) Speak(text string) (speech.SessionID, error) {
	if err := s.engine.SpeakErr; err != nil {
		return "", err
	}
	s.engine.record(s.n, "speak", text)
	id := speech.SessionID(fmt.Sprintf("s%d-u1", s.n))
	if s.handler != nil {
		// Playback is instantaneous in the mock.
		s.handler.SpeechFinished(id)
	}
	return id, nil
}

func (s *session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.engine.record(s.n, "close", "")
	return nil
}

// Closed reports whether the session has been discarded.
func (s *session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
