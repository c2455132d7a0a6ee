// Package main provides the entry point for the speakclip CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/speakclip/speakclip/internal/clipboard"
	"github.com/speakclip/speakclip/internal/history"
	"github.com/speakclip/speakclip/internal/settings"
	"github.com/speakclip/speakclip/internal/speech"
	"github.com/speakclip/speakclip/internal/speech/engines/espeak"
	"github.com/speakclip/speakclip/internal/speech/engines/mock"
	"github.com/speakclip/speakclip/ui"
	"github.com/speakclip/speakclip/utils"
)

const appName = "speakclip"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	hidden     bool
	engineName string

	rootCmd = &cobra.Command{
		Use:   "speakclip",
		Short: "Read your clipboard aloud",
		Long: paragraph(
			fmt.Sprintf("\nSpeak text aloud, with %s: anything you copy gets read to you.", keyword("clipboard watching")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		RunE:             execute,
	}
)

func execute(cmd *cobra.Command, _ []string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	store, err := settings.NewStore(appName)
	if err != nil {
		return fmt.Errorf("unable to locate the settings file: %w", err)
	}
	persisted := store.LoadHealed()

	// The flag overrides the persisted preference for this run only.
	if cmd.Flags().Changed("hidden") {
		persisted.Hidden = hidden
	}

	// Without the TUI claiming the terminal, stderr is free for logs.
	if persisted.Hidden && cfg.Logfile == "" && term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetOutput(os.Stderr)
	}

	engine, err := buildEngine(viper.GetString("engine"))
	if err != nil {
		return err
	}

	coord, err := speech.New(engine, store, persisted)
	if err != nil {
		return fmt.Errorf("unable to start the speech engine: %w", err)
	}
	defer coord.Close()

	if viper.GetBool("history.enabled") {
		hist, err := openHistory(cmd.Context())
		if err != nil {
			log.Warn("Utterance history unavailable", "err", err)
		} else {
			defer hist.Close() //nolint:errcheck
			if keep := viper.GetDuration("history.keep"); keep > 0 {
				if err := hist.Prune(cmd.Context(), keep); err != nil {
					log.Debug("Could not prune history", "err", err)
				}
			}
			coord.SetRecorder(historyRecorder{hist})
		}
	}

	// The clipboard watcher never owns the coordinator; its handle goes
	// stale the moment we release it on the way out.
	ref := speech.NewRef(coord)
	defer ref.Release()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watcher := clipboard.NewWatcher(clipboard.NewSpeaker(ref), viper.GetDuration("poll_interval"))
	go watcher.Run(ctx)

	if persisted.Hidden {
		return runHeadless(ctx, coord, store)
	}
	return runTUI(cfg, coord, store)
}

func buildEngine(name string) (speech.Engine, error) {
	switch name {
	case "", "espeak":
		return espeak.New(viper.GetString("espeak.binary")), nil
	case "mock":
		return mock.New(
			speech.Voice{Name: "Alice", Language: "en-US"},
			speech.Voice{Name: "Bob", Language: "en-GB"},
		), nil
	default:
		return nil, fmt.Errorf("unknown speech engine %q: use espeak or mock", name)
	}
}

func historyPath() (string, error) {
	if p := viper.GetString("history.path"); p != "" {
		return utils.ExpandPath(p), nil
	}
	scope := gap.NewScope(gap.User, appName)
	return scope.DataPath("history.db")
}

func openHistory(ctx context.Context) (*history.Store, error) {
	path, err := historyPath()
	if err != nil {
		return nil, err
	}
	return history.Open(ctx, path)
}

// historyRecorder bridges the coordinator's utterance hook to the
// SQLite log.
type historyRecorder struct {
	store *history.Store
}

func (r historyRecorder) Record(u speech.Utterance) error {
	return r.store.Record(context.Background(), history.Entry{
		Utterance: string(u.ID),
		Text:      u.Text,
		Voice:     u.Voice,
		Rate:      u.Rate,
		Volume:    u.Volume,
	})
}

// watchSettings re-applies the settings file when it is edited outside
// the application. onApply may be nil.
func watchSettings(store *settings.Store, coord *speech.Coordinator, onApply func(settings.Settings)) *settings.Watcher {
	sw, err := settings.Watch(store, func(s settings.Settings) {
		if s == coord.Settings() {
			return // our own write echoing back
		}
		if err := coord.Reload(s); err != nil {
			log.Warn("Could not apply edited settings", "err", err)
			return
		}
		if onApply != nil {
			onApply(s)
		}
	})
	if err != nil {
		log.Debug("Settings watch unavailable", "err", err)
		return nil
	}
	return sw
}

func runHeadless(ctx context.Context, coord *speech.Coordinator, store *settings.Store) error {
	log.Info("Running hidden, watching the clipboard", "voices", coord.Catalog().Len())

	if sw := watchSettings(store, coord, nil); sw != nil {
		defer sw.Close() //nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

func runTUI(cfg ui.Config, coord *speech.Coordinator, store *settings.Store) error {
	p := ui.NewProgram(cfg, coord)

	sw := watchSettings(store, coord, func(s settings.Settings) {
		p.Send(ui.SettingsReloadedMsg{Settings: s})
	})
	if sw != nil {
		defer sw.Close() //nolint:errcheck
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().BoolVar(&hidden, "hidden", false, "watch the clipboard without showing the UI")
	rootCmd.Flags().StringVar(&engineName, "engine", "", "speech engine (espeak/mock)")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))

	viper.SetDefault("engine", "espeak")
	viper.SetDefault("espeak.binary", espeak.DefaultBinary)
	viper.SetDefault("poll_interval", clipboard.DefaultInterval)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "")
	viper.SetDefault("history.keep", "0s")

	rootCmd.AddCommand(configCmd, manCmd, historyCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("SPEAKCLIP_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], appName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
