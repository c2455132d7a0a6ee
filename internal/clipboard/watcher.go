// Package clipboard watches the system clipboard and forwards newly
// copied text to the speech coordinator.
package clipboard

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/speakclip/speakclip/internal/speech"
)

// DefaultInterval is the polling period for clipboard changes.
const DefaultInterval = 500 * time.Millisecond

// CallbackResult tells the watch loop whether to keep listening after
// an event.
type CallbackResult int

const (
	// Next continues the watch loop.
	Next CallbackResult = iota
	// Stop terminates the watch loop.
	Stop
)

// Handler receives clipboard events. Change is invoked with the new
// clipboard text; Error is invoked when a read fails. Either may stop
// the loop, but the expected behavior is fail-open: prefer a missed
// notification over a dead listener.
type Handler interface {
	Change(text string) CallbackResult
	Error(err error) CallbackResult
}

// Watcher runs the clipboard listen loop. The platform exposes no
// portable change notification, so changes are detected by polling and
// comparing content.
type Watcher struct {
	handler  Handler
	interval time.Duration
	read     func() (string, error)

	last   string
	primed bool
}

// NewWatcher creates a watcher delivering events to handler. A
// non-positive interval selects DefaultInterval.
func NewWatcher(handler Handler, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		handler:  handler,
		interval: interval,
		read:     clipboard.ReadAll,
	}
}

// Run blocks, polling the clipboard until the context is canceled or
// the handler returns Stop. It is meant to run on its own goroutine
// for the process lifetime.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.poll() == Stop {
				return
			}
		}
	}
}

// poll reads the clipboard once and dispatches at most one event.
func (w *Watcher) poll() CallbackResult {
	text, err := w.read()
	if err != nil {
		// Non-text or unreadable content: skip this event, keep
		// listening.
		return w.handler.Error(err)
	}

	if !w.primed {
		// Whatever was on the clipboard before startup is not a
		// change; never speak it.
		w.primed = true
		w.last = text
		return Next
	}

	if text == w.last || text == "" {
		return Next
	}
	w.last = text
	return w.handler.Change(text)
}

// Speaker forwards clipboard text to the coordinator through a
// non-owning handle. Once the owner has released the coordinator,
// events are skipped without error; a failed speak is logged and never
// stops the loop.
type Speaker struct {
	ref *speech.Ref
}

// NewSpeaker creates a handler speaking through ref.
func NewSpeaker(ref *speech.Ref) *Speaker {
	return &Speaker{ref: ref}
}

// Change implements Handler.
func (s *Speaker) Change(text string) CallbackResult {
	c, ok := s.ref.Get()
	if !ok {
		log.Debug("Coordinator gone, skipping clipboard event")
		return Next
	}
	id, err := c.Speak(text)
	if err != nil {
		log.Warn("Could not speak clipboard text", "err", err)
		return Next
	}
	log.Debug("Speaking clipboard text", "id", id, "chars", len(text))
	return Next
}

// Error implements Handler.
func (s *Speaker) Error(err error) CallbackResult {
	log.Debug("Clipboard read failed, skipping event", "err", err)
	return Next
}
