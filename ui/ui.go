// Package ui provides the terminal UI for speakclip.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/speakclip/speakclip/internal/settings"
	"github.com/speakclip/speakclip/internal/speech"
)

const (
	statusMessageTimeout = 3 * time.Second
	barWidth             = 20
	ellipsis             = "…"
)

// NewProgram returns the Tea program for the voice panel.
func NewProgram(cfg Config, coord *speech.Coordinator) *tea.Program {
	log.Debug("Starting speakclip UI", "voices", coord.Catalog().Len())
	return tea.NewProgram(newModel(cfg, coord), tea.WithAltScreen())
}

// SettingsReloadedMsg is sent from outside the program when the
// settings file was edited externally and re-applied.
type SettingsReloadedMsg struct {
	Settings settings.Settings
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type spokeMsg struct{ id speech.SessionID }

type voiceSetMsg struct{ name string }

type statusTimeoutMsg struct{}

type focusArea int

const (
	focusVoices focusArea = iota
	focusInput
)

type voiceItem string

func (v voiceItem) Title() string       { return string(v) }
func (v voiceItem) Description() string { return "" }
func (v voiceItem) FilterValue() string { return string(v) }

// voiceFilter ranks voices with the same fuzzy matcher used for file
// filtering elsewhere in the charm ecosystem.
func voiceFilter(term string, targets []string) []list.Rank {
	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, m := range matches {
		ranks[i] = list.Rank{
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return ranks
}

type model struct {
	cfg   Config
	coord *speech.Coordinator

	voices list.Model
	input  textinput.Model
	focus  focusArea

	rate   int
	volume int
	hidden bool

	status   string
	isNotice bool

	width  int
	height int
}

func newModel(cfg Config, coord *speech.Coordinator) model {
	items := make([]list.Item, 0, coord.Catalog().Len())
	for _, name := range coord.Catalog().Names() {
		items = append(items, voiceItem(name))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	voices := list.New(items, delegate, 0, 0)
	voices.Title = "Voices"
	voices.Styles.Title = titleStyle
	voices.Filter = voiceFilter
	voices.SetShowStatusBar(false)
	voices.SetShowHelp(false)
	voices.Select(coord.SelectedIndex())

	input := textinput.New()
	input.Placeholder = "text to speak"
	text := cfg.TestText
	if text == "" {
		text = DefaultTestText
	}
	input.SetValue(text)

	s := coord.Settings()
	return model{
		cfg:    cfg,
		coord:  coord,
		voices: voices,
		input:  input,
		focus:  focusVoices,
		rate:   s.Rate,
		volume: s.Volume,
		hidden: s.Hidden,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.voices.SetSize(msg.Width-6, msg.Height-10)
		m.input.Width = msg.Width - 10
		return m, nil

	case errMsg:
		// Engine failures are recoverable: show a notice, keep going.
		log.Warn("Speech operation failed", "err", msg.err)
		return m.notice(msg.err.Error())

	case spokeMsg:
		return m.info(fmt.Sprintf("speaking (%s)", shortID(msg.id)))

	case voiceSetMsg:
		return m.info("voice set to " + msg.name)

	case statusTimeoutMsg:
		m.status = ""
		return m, nil

	case SettingsReloadedMsg:
		m.rate = msg.Settings.Rate
		m.volume = msg.Settings.Volume
		m.hidden = msg.Settings.Hidden
		m.voices.Select(m.coord.SelectedIndex())
		return m.info("settings reloaded from disk")

	case tea.KeyMsg:
		// Let an active list filter swallow keystrokes first.
		if m.focus == focusVoices && m.voices.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.focus == focusInput && msg.String() == "q" {
				break // typing a q into the text
			}
			return m, tea.Quit

		case "tab":
			return m.toggleFocus(), nil

		case "enter":
			if m.focus == focusInput {
				return m, m.speakCmd(m.input.Value())
			}
			if item, ok := m.voices.SelectedItem().(voiceItem); ok {
				return m, m.setVoiceCmd(string(item))
			}
			return m, nil

		case "+", "=":
			if m.focus == focusVoices {
				return m, m.setRateCmd(m.rate + 1)
			}
		case "-", "_":
			if m.focus == focusVoices {
				return m, m.setRateCmd(m.rate - 1)
			}
		case "]":
			if m.focus == focusVoices {
				return m, m.setVolumeCmd(m.volume + 5)
			}
		case "[":
			if m.focus == focusVoices {
				return m, m.setVolumeCmd(m.volume - 5)
			}

		case "ctrl+h":
			m.hidden = !m.hidden
			m.coord.SetHidden(m.hidden)
			if m.hidden {
				return m.info("will start hidden next time")
			}
			return m.info("will start visible next time")
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusVoices:
		m.voices, cmd = m.voices.Update(msg)
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m model) toggleFocus() model {
	if m.focus == focusVoices {
		m.focus = focusInput
		m.input.Focus()
	} else {
		m.focus = focusVoices
		m.input.Blur()
	}
	return m
}

func (m model) notice(text string) (model, tea.Cmd) {
	m.status = text
	m.isNotice = true
	return m, statusTimeout()
}

func (m model) info(text string) (model, tea.Cmd) {
	m.status = text
	m.isNotice = false
	return m, statusTimeout()
}

func statusTimeout() tea.Cmd {
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusTimeoutMsg{}
	})
}

func (m model) speakCmd(text string) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		id, err := coord.Speak(text)
		if err != nil {
			return errMsg{err}
		}
		return spokeMsg{id}
	}
}

func (m *model) setVoiceCmd(name string) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		if err := coord.SetVoice(&name); err != nil {
			return errMsg{err}
		}
		return voiceSetMsg{name}
	}
}

func (m *model) setRateCmd(rate int) tea.Cmd {
	if rate < settings.RateMin {
		rate = settings.RateMin
	}
	if rate > settings.RateMax {
		rate = settings.RateMax
	}
	m.rate = rate
	coord := m.coord
	return func() tea.Msg {
		if err := coord.SetRate(&rate); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *model) setVolumeCmd(volume int) tea.Cmd {
	if volume < settings.VolumeMin {
		volume = settings.VolumeMin
	}
	if volume > settings.VolumeMax {
		volume = settings.VolumeMax
	}
	m.volume = volume
	coord := m.coord
	return func() tea.Msg {
		if err := coord.SetVolume(&volume); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	var b strings.Builder

	voicesPane := paneStyle
	inputPane := paneStyle
	if m.focus == focusVoices {
		voicesPane = focusedPaneStyle
	} else {
		inputPane = focusedPaneStyle
	}

	b.WriteString(voicesPane.Width(m.width - 4).Render(m.voices.View()))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf(" %s %s %3d   %s %s %3d\n",
		labelStyle.Render("rate"),
		bar(m.rate-settings.RateMin, settings.RateMax-settings.RateMin),
		m.rate,
		labelStyle.Render("volume"),
		bar(m.volume, settings.VolumeMax),
		m.volume,
	))

	b.WriteString(inputPane.Width(m.width - 4).Render(m.input.View()))
	b.WriteString("\n")

	if m.status != "" {
		text := truncate.StringWithTail(m.status, uint(max(m.width-2, 10)), ellipsis) //nolint:gosec
		if m.isNotice {
			b.WriteString(" " + noticeStyle.Render(text))
		} else {
			b.WriteString(" " + statusStyle.Render(text))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(
		" tab focus · enter speak/select · +/- rate · [/] volume · / filter · ctrl+h hidden · q quit"))
	return b.String()
}

// bar renders value out of total as a fixed-width meter.
func bar(value, total int) string {
	if total <= 0 {
		total = 1
	}
	filled := value * barWidth / total
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

func shortID(id speech.SessionID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
