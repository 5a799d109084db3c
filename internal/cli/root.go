package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/config"
	"github.com/faizmokh/bridgelog/internal/controller"
	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
	"github.com/faizmokh/bridgelog/internal/store"
	"github.com/faizmokh/bridgelog/internal/ui"
	"github.com/faizmokh/bridgelog/internal/weather"
)

// Options substitute collaborators of the commands. The zero value uses the
// wall clock, the Open-Meteo client and the process stdin.
type Options struct {
	Now     func() time.Time
	Weather controller.Fetcher
	In      io.Reader
}

type app struct {
	opts     Options
	identity string
	verbose  bool
}

// session is one opened ledger.
type session struct {
	cfg     config.Config
	manager *files.Manager
	store   store.Store
	ctrl    *controller.Controller
	logger  *slog.Logger
	logFile io.Closer
	// rolled is set when opening archived the previous live day.
	rolled bool
}

// NewRootCommand builds the bridgelog command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	return newRootCommand(ctx, Options{})
}

func newRootCommand(ctx context.Context, opts Options) *cobra.Command {
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:   "bridgelog",
		Short: "bridgelog is a vessel bridge logbook for the terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(ctx, cmd, true)
			if err != nil {
				return err
			}
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = s.ctrl.Run(runCtx)
			}()

			program := tea.NewProgram(ui.NewModel(runCtx, s.ctrl), tea.WithContext(runCtx))
			_, runErr := program.Run()
			cancel()
			<-done
			if err := s.close(ctx); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.identity, "identity", "", "Ledger identity (default: from config)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		newTodayCommand(ctx, a),
		newAddCommand(ctx, a),
		newMoveCommand(ctx, a),
		newNoteCommand(ctx, a),
		newEditCommand(ctx, a),
		newDeleteCommand(ctx, a),
		newSaveDayCommand(ctx, a),
		newRolloverCommand(ctx, a),
		newHistoryCommand(ctx, a),
		newPositionCommand(ctx, a),
		newDailyCommand(ctx, a),
		newVesselCommand(ctx, a),
		newWatchkeeperCommand(ctx, a),
		newBackupCommand(ctx, a),
		newWeatherCommand(ctx, a),
		newVersionCommand(),
	)

	return cmd
}

func (a *app) now() time.Time {
	if a.opts.Now != nil {
		return a.opts.Now()
	}
	return time.Now()
}

func (a *app) stdin(cmd *cobra.Command) io.Reader {
	if a.opts.In != nil {
		return a.opts.In
	}
	return cmd.InOrStdin()
}

// open loads the configuration, the ledger of the selected identity and rolls
// the live day over if the date has changed since the last run. The TUI logs
// to <home>/bridgelog.log; every other command logs to stderr.
func (a *app) open(ctx context.Context, cmd *cobra.Command, tui bool) (*session, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	if a.identity != "" {
		cfg.Identity = a.identity
	}

	mgr, err := cfg.Manager()
	if err != nil {
		return nil, err
	}
	if _, err := mgr.StatePath(cfg.Identity); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, manager: mgr}
	if err := s.setupLogger(cmd, a.verbose, tui); err != nil {
		return nil, err
	}

	storeOpts := cfg.StoreOptions(mgr)
	storeOpts.Now = a.now
	st, err := store.Open(ctx, storeOpts)
	if err != nil {
		s.closeLog()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	s.store = st

	fetcher := a.opts.Weather
	if fetcher == nil {
		fetcher = weather.NewClient(
			weather.WithEndpoints(cfg.ForecastURL, cfg.MarineURL),
			weather.WithLogger(s.logger),
		)
	}

	s.ctrl = controller.New(cfg.Identity, st, controller.Options{
		Now:              a.now,
		Logger:           s.logger,
		SaveDebounce:     cfg.SaveDebounce,
		RolloverInterval: cfg.RolloverInterval,
		Weather:          fetcher,
		WeatherCooldown:  cfg.WeatherCooldown,
		LocationLabel:    cfg.LocationLabel,
	})
	if err := s.ctrl.Load(ctx); err != nil {
		_ = st.Close()
		s.closeLog()
		return nil, err
	}
	s.rolled = s.ctrl.Tick(a.now())
	return s, nil
}

func (s *session) setupLogger(cmd *cobra.Command, verbose, tui bool) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = cmd.ErrOrStderr()
	if tui {
		if err := os.MkdirAll(s.manager.BasePath(), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		f, err := os.OpenFile(s.manager.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		s.logFile = f
		out = f
		if !verbose {
			level = slog.LevelInfo
		}
	}

	s.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(s.logger)
	return nil
}

func (s *session) closeLog() {
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}

// close writes any pending change and releases the store.
func (s *session) close(ctx context.Context) error {
	flushErr := s.ctrl.Flush(ctx)
	closeErr := s.store.Close()
	s.closeLog()
	return errors.Join(flushErr, closeErr)
}

// with runs fn against an opened ledger and saves afterwards.
func (a *app) with(ctx context.Context, cmd *cobra.Command, fn func(*session) error) error {
	s, err := a.open(ctx, cmd, false)
	if err != nil {
		return err
	}
	runErr := fn(s)
	if err := s.close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// report turns operator-facing outcomes into notices. Validation errors and
// declined confirmations leave the ledger as it was and are not failures.
func report(cmd *cobra.Command, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, logbook.ErrCancelled):
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	case logbook.IsValidation(err):
		fmt.Fprintf(cmd.OutOrStdout(), "notice: %v\n", err)
		return nil
	default:
		return err
	}
}

// ExecuteCommand runs the root command with the provided context.
func ExecuteCommand(ctx context.Context) error {
	return NewRootCommand(ctx).ExecuteContext(ctx)
}

// Main is the entry point used by cmd/bridgelog.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
