package speech

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/speakclip/speakclip/internal/settings"
)

// Utterance describes a successfully submitted speak request.
type Utterance struct {
	ID     SessionID
	Text   string
	Voice  string
	Rate   int
	Volume int
}

// Recorder receives successfully submitted utterances, e.g. for a
// history log. Recording is best-effort; failures are logged and never
// surfaced.
type Recorder interface {
	Record(u Utterance) error
}

// noopEvents is attached to every session; utterance completion is not
// tracked.
type noopEvents struct{}

func (noopEvents) SpeechFinished(SessionID) {}

// Coordinator owns the synthesis engine and the current session,
// serializes all access behind one lock, and keeps the persisted
// settings consistent with the live session. There is exactly one
// per process, shared by the UI and the clipboard watcher.
type Coordinator struct {
	mu       sync.Mutex
	engine   Engine
	catalog  *Catalog
	store    *settings.Store
	cfg      settings.Settings
	session  Session
	resolved Voice // voice currently applied to the session
	recorder Recorder
	closed   bool
}

// New constructs the coordinator: it initializes the platform
// subsystem, enumerates voices, creates the first session and applies
// the loaded settings to it. Construction fails fast; a process
// without a working engine has no purpose. Settings values applied
// here are not persisted.
func New(engine Engine, store *settings.Store, cfg settings.Settings) (*Coordinator, error) {
	if err := engine.Initialize(); err != nil {
		return nil, engineErr("initialize", err)
	}

	voices, err := engine.Voices()
	if err != nil {
		engine.Finalize()
		return nil, engineErr("enumerate voices", err)
	}

	c := &Coordinator{
		engine:  engine,
		catalog: NewCatalog(voices),
		store:   store,
		cfg:     cfg.Sanitize(),
	}

	session, err := engine.NewSession(noopEvents{})
	if err != nil {
		engine.Finalize()
		return nil, engineErr("create session", err)
	}
	c.session = session

	if err := c.applyAllLocked(); err != nil {
		_ = session.Close()
		engine.Finalize()
		return nil, err
	}

	return c, nil
}

// Catalog returns the voice catalog enumerated at startup. It is
// read-only and safe to share.
func (c *Coordinator) Catalog() *Catalog {
	return c.catalog
}

// Settings returns a copy of the current settings.
func (c *Coordinator) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// SelectedIndex returns the catalog position of the persisted voice,
// or 0 when it cannot be resolved. Used to drive the UI selection.
func (c *Coordinator) SelectedIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.catalog.Index(c.cfg.VoiceName); ok {
		return i
	}
	return 0
}

// SetRecorder attaches an utterance recorder.
func (c *Coordinator) SetRecorder(r Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// SetVoice selects the speaking voice. A non-nil name is persisted
// first and then used as the selection target; nil re-applies the
// persisted name. An unknown name falls back to the first catalog
// voice; with an empty catalog, selection is a no-op.
func (c *Coordinator) SetVoice(name *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if name != nil {
		c.cfg.VoiceName = *name
		c.store.Store(c.cfg)
	}
	return c.applyVoiceLocked(name)
}

// SetRate sets the speech rate. A non-nil rate is clamped, persisted
// and applied; nil re-applies the persisted rate.
func (c *Coordinator) SetRate(rate *int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if rate != nil {
		c.cfg.Rate = *rate
		c.cfg = c.cfg.Sanitize()
		c.store.Store(c.cfg)
	}
	return c.applyRateLocked()
}

// SetVolume sets the playback volume. A non-nil volume is clamped,
// persisted and applied; nil re-applies the persisted volume.
func (c *Coordinator) SetVolume(volume *int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if volume != nil {
		c.cfg.Volume = *volume
		c.cfg = c.cfg.Sanitize()
		c.store.Store(c.cfg)
	}
	return c.applyVolumeLocked()
}

// SetHidden persists the UI-visibility preference. It involves no
// engine call.
func (c *Coordinator) SetHidden(hidden bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cfg.Hidden = hidden
	c.store.Store(c.cfg)
}

// Speak stops any in-flight utterance and speaks text. The session
// exposes no cancel primitive, so the current session is discarded
// (teardown halts its audio), a fresh one is constructed, voice, rate
// and volume are re-applied from the current settings, and only then
// is the text submitted. On failure the coordinator is left without a
// session until the next successful Speak.
func (c *Coordinator) Speak(text string) (SessionID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}

	if c.session != nil {
		if err := c.session.Close(); err != nil {
			log.Debug("Discarding session reported an error", "err", err)
		}
		c.session = nil
	}

	session, err := c.engine.NewSession(noopEvents{})
	if err != nil {
		return "", engineErr("create session", err)
	}
	c.session = session

	// A fresh session starts at platform defaults.
	if err := c.applyAllLocked(); err != nil {
		c.dropSessionLocked()
		return "", err
	}

	id, err := session.Speak(text)
	if err != nil {
		c.dropSessionLocked()
		return "", engineErr("speak", err)
	}

	if c.recorder != nil {
		voice := ""
		if c.resolved != (Voice{}) {
			voice = c.resolved.DisplayName()
		}
		u := Utterance{
			ID:     id,
			Text:   text,
			Voice:  voice,
			Rate:   c.cfg.Rate,
			Volume: c.cfg.Volume,
		}
		if err := c.recorder.Record(u); err != nil {
			log.Debug("Could not record utterance", "id", id, "err", err)
		}
	}

	return id, nil
}

// Reload applies an externally modified settings record to the live
// session without persisting it again. Used when the settings file is
// edited outside the application.
func (c *Coordinator) Reload(cfg settings.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.cfg = cfg.Sanitize()
	return c.applyAllLocked()
}

// Close tears the coordinator down: the session is dropped and the
// platform subsystem finalized. All further operations return
// ErrClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.dropSessionLocked()
	c.engine.Finalize()
	c.closed = true
}

func (c *Coordinator) dropSessionLocked() {
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
}

// applyAllLocked re-applies voice, rate and volume from the current
// settings to the live session.
func (c *Coordinator) applyAllLocked() error {
	if err := c.applyVoiceLocked(nil); err != nil {
		return err
	}
	if err := c.applyRateLocked(); err != nil {
		return err
	}
	return c.applyVolumeLocked()
}

func (c *Coordinator) applyVoiceLocked(name *string) error {
	if c.session == nil {
		return ErrNoSession
	}

	target := c.cfg.VoiceName
	if name != nil {
		target = *name
	}

	voice, ok := c.catalog.ByName(target)
	if !ok {
		if c.catalog.Len() == 0 {
			return nil
		}
		voice = c.catalog.Voices()[0]
	}

	if err := c.session.SetVoice(voice); err != nil {
		return engineErr("set voice", err)
	}
	c.resolved = voice
	return nil
}

func (c *Coordinator) applyRateLocked() error {
	if c.session == nil {
		return ErrNoSession
	}
	if err := c.session.SetRate(c.cfg.Rate); err != nil {
		return engineErr("set rate", err)
	}
	return nil
}

func (c *Coordinator) applyVolumeLocked() error {
	if c.session == nil {
		return ErrNoSession
	}
	if err := c.session.SetVolume(c.cfg.Volume); err != nil {
		return engineErr("set volume", err)
	}
	return nil
}
