package clipboard

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/speakclip/speakclip/internal/settings"
	"github.com/speakclip/speakclip/internal/speech"
	"github.com/speakclip/speakclip/internal/speech/engines/mock"
)

type recordingHandler struct {
	changes []string
	errs    []error
	result  CallbackResult
}

func (h *recordingHandler) Change(text string) CallbackResult {
	h.changes = append(h.changes, text)
	return h.result
}

func (h *recordingHandler) Error(err error) CallbackResult {
	h.errs = append(h.errs, err)
	return h.result
}

// TestPollDetectsChanges verifies only genuine content changes are
// delivered: the pre-existing clipboard content is primed away and
// unchanged reads stay silent.
func TestPollDetectsChanges(t *testing.T) {
	h := &recordingHandler{result: Next}
	w := NewWatcher(h, time.Minute)

	reads := []string{"stale", "stale", "fresh", "fresh", "newer"}
	i := 0
	w.read = func() (string, error) {
		s := reads[i]
		i++
		return s, nil
	}

	for range reads {
		if got := w.poll(); got != Next {
			t.Fatalf("poll() = %v, want Next", got)
		}
	}

	want := []string{"fresh", "newer"}
	if len(h.changes) != len(want) {
		t.Fatalf("changes = %v, want %v", h.changes, want)
	}
	for i := range want {
		if h.changes[i] != want[i] {
			t.Errorf("changes[%d] = %q, want %q", i, h.changes[i], want[i])
		}
	}
}

// TestPollSkipsReadErrors verifies a failed read is reported and the
// loop keeps going; the next good read still counts as a change.
func TestPollSkipsReadErrors(t *testing.T) {
	h := &recordingHandler{result: Next}
	w := NewWatcher(h, time.Minute)

	readErr := errors.New("clipboard holds an image")
	reads := []func() (string, error){
		func() (string, error) { return "initial", nil },
		func() (string, error) { return "", readErr },
		func() (string, error) { return "copied text", nil },
	}
	i := 0
	w.read = func() (string, error) {
		f := reads[i]
		i++
		return f()
	}

	for range reads {
		if got := w.poll(); got != Next {
			t.Fatalf("poll() = %v, want Next", got)
		}
	}

	if len(h.errs) != 1 || !errors.Is(h.errs[0], readErr) {
		t.Errorf("errs = %v, want one read error", h.errs)
	}
	if len(h.changes) != 1 || h.changes[0] != "copied text" {
		t.Errorf("changes = %v, want [copied text]", h.changes)
	}
}

// TestRunStopsOnHandlerResult verifies a Stop result terminates Run.
func TestRunStopsOnHandlerResult(t *testing.T) {
	h := &recordingHandler{result: Stop}
	w := NewWatcher(h, time.Millisecond)

	reads := []string{"first", "second"}
	i := 0
	w.read = func() (string, error) {
		s := reads[i%len(reads)]
		i++
		return s, nil
	}

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after handler returned Stop")
	}
}

// TestRunStopsOnContextCancel verifies cancellation ends the loop.
func TestRunStopsOnContextCancel(t *testing.T) {
	h := &recordingHandler{result: Next}
	w := NewWatcher(h, time.Millisecond)
	w.read = func() (string, error) { return "", nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func newCoordinator(t *testing.T, engine *mock.Engine) *speech.Coordinator {
	t.Helper()
	store := settings.NewStoreAt(filepath.Join(t.TempDir(), "settings.yml"))
	c, err := speech.New(engine, store, settings.Defaults())
	if err != nil {
		t.Fatalf("speech.New() error = %v", err)
	}
	return c
}

// TestSpeakerForwards verifies clipboard text reaches the engine.
func TestSpeakerForwards(t *testing.T) {
	engine := mock.New(speech.Voice{Name: "Alice", Language: "en-US"})
	c := newCoordinator(t, engine)
	s := NewSpeaker(speech.NewRef(c))

	if got := s.Change("read me"); got != Next {
		t.Fatalf("Change() = %v, want Next", got)
	}

	steps := engine.Steps()
	last := steps[len(steps)-1]
	if last.Op != "speak" || last.Arg != "read me" {
		t.Errorf("last step = %v, want speak(read me)", last)
	}
}

// TestSpeakerAfterRelease verifies an event after the owner released
// the coordinator is skipped without crashing and keeps the loop
// alive.
func TestSpeakerAfterRelease(t *testing.T) {
	engine := mock.New(speech.Voice{Name: "Alice", Language: "en-US"})
	c := newCoordinator(t, engine)
	ref := speech.NewRef(c)
	s := NewSpeaker(ref)

	ref.Release()
	c.Close()

	if got := s.Change("too late"); got != Next {
		t.Errorf("Change() after release = %v, want Next", got)
	}
	for _, step := range engine.Steps() {
		if step.Op == "speak" {
			t.Errorf("engine spoke after release: %v", step)
		}
	}
}

// TestSpeakerEngineFailureNonFatal verifies a failed auto-speak does
// not stop the watch loop.
func TestSpeakerEngineFailureNonFatal(t *testing.T) {
	engine := mock.New(speech.Voice{Name: "Alice", Language: "en-US"})
	c := newCoordinator(t, engine)
	s := NewSpeaker(speech.NewRef(c))

	engine.SpeakErr = errors.New("device lost")
	if got := s.Change("read me"); got != Next {
		t.Errorf("Change() with failing engine = %v, want Next", got)
	}
}
