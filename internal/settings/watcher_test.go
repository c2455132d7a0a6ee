package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestWatchReportsExternalEdit verifies an outside write to the
// settings file reaches the callback with sanitized values.
func TestWatchReportsExternalEdit(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreAt(filepath.Join(dir, "settings.yml"))

	changes := make(chan Settings, 1)
	w, err := Watch(store, func(s Settings) {
		select {
		case changes <- s:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	edited := Settings{VoiceName: "Bob [en-GB]", Rate: 25, Volume: 50}
	data, err := yaml.Marshal(edited)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := os.WriteFile(store.Path(), data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case got := <-changes:
		want := edited.Sanitize()
		if got != want {
			t.Errorf("callback received %+v, want %+v", got, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported within 3s")
	}
}

// TestWatchIgnoresSiblingFiles verifies writes to other files in the
// directory do not trigger the callback.
func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreAt(filepath.Join(dir, "settings.yml"))

	changes := make(chan Settings, 4)
	w, err := Watch(store, func(s Settings) { changes <- s })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yml"), []byte("rate: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case got := <-changes:
		t.Errorf("callback fired for a sibling file: %+v", got)
	case <-time.After(500 * time.Millisecond):
	}
}
