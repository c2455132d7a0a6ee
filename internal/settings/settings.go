// Package settings persists the user-tunable speech parameters.
package settings

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"gopkg.in/yaml.v3"
)

const (
	// RateMin and RateMax bound the speech rate setting.
	RateMin = -10
	RateMax = 10
	// VolumeMin and VolumeMax bound the volume setting.
	VolumeMin = 0
	VolumeMax = 100
)

// Settings is the persisted user configuration record.
type Settings struct {
	// VoiceName is the display identifier of the selected voice.
	// Empty means "use the first available voice".
	VoiceName string `yaml:"voice_name"`
	// Rate is the speech rate, RateMin..RateMax.
	Rate int `yaml:"rate"`
	// Volume is the playback volume, VolumeMin..VolumeMax.
	Volume int `yaml:"volume"`
	// Hidden records whether the UI should start hidden.
	Hidden bool `yaml:"hidden"`
}

// Defaults returns the settings used when nothing valid is on disk.
func Defaults() Settings {
	return Settings{
		VoiceName: "",
		Rate:      0,
		Volume:    100,
		Hidden:    false,
	}
}

// Sanitize clamps out-of-range values into their valid ranges.
// Out-of-range values are corrected, never rejected.
func (s Settings) Sanitize() Settings {
	s.Rate = clamp(s.Rate, RateMin, RateMax)
	s.Volume = clamp(s.Volume, VolumeMin, VolumeMax)
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

// NewStore creates a store backed by the user's config directory for
// the given application scope name.
func NewStore(appName string) (*Store, error) {
	scope := gap.NewScope(gap.User, appName)
	path, err := scope.ConfigPath("settings.yml")
	if err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted settings. Any read or parse failure yields
// the defaults rather than an error. When sanitize is true the loaded
// values are clamped into range.
func (st *Store) Load(sanitize bool) Settings {
	s := Defaults()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("Could not read settings, using defaults", "path", st.path, "err", err)
		}
		return s
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		log.Debug("Could not parse settings, using defaults", "path", st.path, "err", err)
		return Defaults()
	}

	if sanitize {
		s = s.Sanitize()
	}
	return s
}

// Store writes the full settings record. Persistence is best-effort:
// failures are logged and swallowed so a bad disk never blocks speech.
func (st *Store) Store(s Settings) {
	data, err := yaml.Marshal(s)
	if err != nil {
		log.Debug("Could not encode settings", "err", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		log.Debug("Could not create settings directory", "path", st.path, "err", err)
		return
	}
	if err := os.WriteFile(st.path, data, 0o644); err != nil {
		log.Debug("Could not write settings", "path", st.path, "err", err)
	}
}

// LoadHealed loads sanitized settings and, if sanitization changed
// anything relative to what is on disk, persists the corrected record
// so a corrupt value is healed on the first successful run.
func (st *Store) LoadHealed() Settings {
	original := st.Load(false)
	s := st.Load(true)
	if s != original {
		st.Store(s)
	}
	return s
}
