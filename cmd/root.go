// Package cmd implements the dread command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/dread/internal/config"
	"github.com/zjrosen/dread/internal/log"
	"github.com/zjrosen/dread/internal/tracing"
	"github.com/zjrosen/dread/internal/ui/app"
)

var (
	cfg     config.Config
	cfgFile string // config file actually read, "" when none

	flagConfig     string
	flagDebug      bool
	flagLogFile    string
	flagMute       bool
	flagScene      string
	flagNoAutoplay bool

	cleanups []func()
)

var rootCmd = &cobra.Command{
	Use:   "dread",
	Short: "Ambient horror soundscapes for your terminal",
	Long: `dread plays looping ambient scenes (the sea, a campsite, a forest at night)
with a tiny terminal player. Pick a scene with 1-9, toggle with space.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runPlayer,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "config file (default ~/.config/dread/config.yaml)")
	pf.BoolVarP(&flagDebug, "debug", "d", false, "write debug logs")
	pf.StringVar(&flagLogFile, "log-file", "", "log file (default log.file, or ~/.dread/dread.log with --debug)")
	pf.BoolVar(&flagMute, "mute", false, "run without an audio device")

	rootCmd.Flags().StringVarP(&flagScene, "scene", "s", "", "scene to show at startup")
	rootCmd.Flags().BoolVar(&flagNoAutoplay, "no-autoplay", false, "wait for play after selecting a scene")
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

func execute(ctx context.Context) error {
	defer runCleanups()
	return rootCmd.ExecuteContext(ctx)
}

// setup loads config and starts logging and tracing for every command.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, used, err := config.Load(viper.New(), flagConfig)
	if err != nil {
		return err
	}
	cfg, cfgFile = loaded, used
	applyFlags(cmd)

	logFile := cfg.Log.File
	if flagLogFile != "" {
		logFile = config.ExpandHome(flagLogFile)
	} else if logFile == "" && cfg.Log.Debug {
		logFile = defaultLogFile()
	}
	closeLog, err := log.Init(log.Options{Path: logFile, Debug: cfg.Log.Debug})
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() { _ = closeLog() })

	shutdown, err := tracing.Init(cmd.Context(), tracing.Config{
		Exporter: cfg.Tracing.Exporter,
		Endpoint: cfg.Tracing.Endpoint,
		File:     cfg.Tracing.File,
		Version:  Version,
	})
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTracing, "Failed to flush spans", err)
		}
	})

	if !isatty.IsTerminal(os.Stdout.Fd()) || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	log.Debug(log.CatCLI, "Command starting", "command", cmd.Name(), "config", cfgFile)
	return nil
}

// applyFlags lets command line flags override the loaded config.
func applyFlags(cmd *cobra.Command) {
	if flagDebug {
		cfg.Log.Debug = true
	}
	if f := cmd.Flags().Lookup("scene"); f != nil && f.Changed {
		cfg.Startup.Scene = flagScene
		cfg.Startup.Load = true
	}
	if flagNoAutoplay {
		cfg.Audio.Autoplay = false
	}
}

// runCleanups undoes setup in reverse order.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func defaultLogFile() string {
	return filepath.Join(config.DataDir(), "dread.log")
}

func runPlayer(cmd *cobra.Command, _ []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("dread needs a terminal; use 'dread play <scene>' for headless playback")
	}
	if err := app.ApplyTheme(cfg.Theme); err != nil {
		return err
	}

	sess, err := openSession(cfg, flagMute)
	if err != nil {
		return err
	}
	defer sess.Close()

	if cfg.Startup.Load && cfg.Startup.Scene != "" {
		if err := sess.Player.SelectScene(sceneID(cfg.Startup.Scene)); err != nil {
			return fmt.Errorf("starting scene: %w", err)
		}
	}

	opts := app.Options{Player: sess.Player, Mailbox: sess.Mailbox}
	if cfgFile != "" {
		watcher, err := config.WatchTheme(cfgFile, cfg.Theme)
		if err != nil {
			log.Warn(log.CatConfig, "Theme reload unavailable", "error", err.Error())
		} else {
			defer func() { _ = watcher.Close() }()
			opts.Themes = watcher.Themes
		}
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(cmd.Context())}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	_, err = tea.NewProgram(app.New(opts), programOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running player: %w", err)
	}
	return nil
}
