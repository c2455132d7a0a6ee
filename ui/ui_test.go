package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/speakclip/speakclip/internal/settings"
	"github.com/speakclip/speakclip/internal/speech"
	"github.com/speakclip/speakclip/internal/speech/engines/mock"
)

func newTestModel(t *testing.T) (model, *mock.Engine) {
	t.Helper()
	engine := mock.New(
		speech.Voice{Name: "Alice", Language: "en-US"},
		speech.Voice{Name: "Bob", Language: "en-GB"},
	)
	store := settings.NewStoreAt(filepath.Join(t.TempDir(), "settings.yml"))
	coord, err := speech.New(engine, store, settings.Defaults())
	if err != nil {
		t.Fatalf("speech.New() error = %v", err)
	}
	m := newModel(Config{}, coord)
	m.width = 80
	m.height = 24
	return m, engine
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestRateKeys verifies the rate keys adjust the model and push the
// new value to the coordinator.
func TestRateKeys(t *testing.T) {
	m, engine := newTestModel(t)

	next, cmd := m.Update(keyMsg("+"))
	m = next.(model)
	if m.rate != 1 {
		t.Errorf("rate after '+' = %d, want 1", m.rate)
	}
	if cmd == nil {
		t.Fatal("no command returned for rate change")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("rate command returned %v, want nil", msg)
	}

	steps := engine.Steps()
	last := steps[len(steps)-1]
	if last.Op != "set-rate" || last.Arg != "1" {
		t.Errorf("last engine step = %v, want set-rate 1", last)
	}
}

// TestRateKeysClampAtBounds verifies repeated presses stop at the
// range limits.
func TestRateKeysClampAtBounds(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < 15; i++ {
		next, cmd := m.Update(keyMsg("+"))
		m = next.(model)
		if cmd != nil {
			cmd()
		}
	}
	if m.rate != settings.RateMax {
		t.Errorf("rate after 15 presses = %d, want %d", m.rate, settings.RateMax)
	}
}

// TestVolumeKeys verifies the volume keys adjust and clamp.
func TestVolumeKeys(t *testing.T) {
	m, engine := newTestModel(t)

	next, cmd := m.Update(keyMsg("["))
	m = next.(model)
	if m.volume != 95 {
		t.Errorf("volume after '[' = %d, want 95", m.volume)
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("volume command returned %v, want nil", msg)
	}

	steps := engine.Steps()
	last := steps[len(steps)-1]
	if last.Op != "set-volume" || last.Arg != "95" {
		t.Errorf("last engine step = %v, want set-volume 95", last)
	}
}

// TestEnterOnVoiceList verifies selecting a voice pushes it to the
// coordinator.
func TestEnterOnVoiceList(t *testing.T) {
	m, engine := newTestModel(t)
	m.voices.Select(1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no command returned for voice selection")
	}
	msg := cmd()
	set, ok := msg.(voiceSetMsg)
	if !ok {
		t.Fatalf("command returned %T, want voiceSetMsg", msg)
	}
	if set.name != "Bob [en-GB]" {
		t.Errorf("selected voice = %q, want %q", set.name, "Bob [en-GB]")
	}

	steps := engine.Steps()
	last := steps[len(steps)-1]
	if last.Op != "set-voice" || last.Arg != "Bob [en-GB]" {
		t.Errorf("last engine step = %v, want set-voice Bob [en-GB]", last)
	}
}

// TestEnterOnInputSpeaks verifies the speak action submits the input
// text.
func TestEnterOnInputSpeaks(t *testing.T) {
	m, engine := newTestModel(t)
	m = m.toggleFocus() // focus the input
	m.input.SetValue("hello there")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no command returned for speak")
	}
	msg := cmd()
	if _, ok := msg.(spokeMsg); !ok {
		t.Fatalf("command returned %T, want spokeMsg", msg)
	}

	steps := engine.Steps()
	last := steps[len(steps)-1]
	if last.Op != "speak" || last.Arg != "hello there" {
		t.Errorf("last engine step = %v, want speak(hello there)", last)
	}
}

// TestEngineErrorShownAsNotice verifies a failed operation surfaces in
// the status line instead of being dropped.
func TestEngineErrorShownAsNotice(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(errMsg{errors.New("speech engine: speak: device lost")})
	m = next.(model)

	if !m.isNotice || m.status == "" {
		t.Fatalf("status = (%q, notice=%v), want visible notice", m.status, m.isNotice)
	}
	if !strings.Contains(m.View(), "device lost") {
		t.Error("View() does not show the engine error")
	}
}

// TestSettingsReloaded verifies an external settings edit updates the
// displayed values.
func TestSettingsReloaded(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(SettingsReloadedMsg{Settings: settings.Settings{
		VoiceName: "Bob [en-GB]", Rate: 7, Volume: 30,
	}})
	m = next.(model)

	if m.rate != 7 || m.volume != 30 {
		t.Errorf("model after reload = {rate:%d volume:%d}, want {7 30}", m.rate, m.volume)
	}
}
