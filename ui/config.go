package ui

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir string `env:"HOME"`

	// TestText seeds the speak input.
	TestText string

	// For debugging the UI
	Logfile string `env:"SPEAKCLIP_LOGFILE"`
	Debug   bool   `env:"SPEAKCLIP_DEBUG"`
}

// DefaultTestText is the initial content of the speak input.
const DefaultTestText = "The quick brown fox jumps over the lazy dog."
