package main

import (
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/speakclip/speakclip/ui"
)

// setupLog directs logging to the file named by SPEAKCLIP_LOGFILE, or
// discards it. Stderr belongs to the TUI renderer, so it is never the
// default log sink.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[ui.Config]()
	if err == nil && cfg.Logfile != "" {
		f, err := tea.LogToFile(cfg.Logfile, "speakclip")
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.InfoLevel)
		if cfg.Debug {
			log.SetLevel(log.DebugLevel)
		}
		return f.Close, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
