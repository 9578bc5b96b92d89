// Package cli implements the marketclock command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"marketclock/internal/calendar"
	"marketclock/internal/config"
	"marketclock/internal/treasury"
	"marketclock/internal/util"
)

// app carries what every subcommand needs. Fields left nil are built from
// the configuration in the root command's pre-run.
type app struct {
	cfgPath string
	asJSON  bool

	cfg    *config.Config
	logger *slog.Logger
	cal    *calendar.TradingCalendar
	rates  *treasury.Client
	ref    calendar.SessionSource
	out    io.Writer
	now    func() time.Time
}

// Execute runs the command tree against os.Args.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(&app{})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "marketclock",
		Short:        "US stock market calendar: holidays, sessions, open state",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			return a.init()
		},
	}

	defaultCfg := "config/marketclock.yaml"
	if p := os.Getenv("MARKETCLOCK_CONFIG"); p != "" {
		defaultCfg = p
	}
	cmd.PersistentFlags().StringVar(&a.cfgPath, "config", defaultCfg, "Path to YAML config")
	cmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(
		statusCmd(a),
		holidaysCmd(a),
		nextCmd(a),
		lastOpenCmd(a),
		sessionsCmd(a),
		verifyCmd(a),
		rateCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}

	if a.logger == nil {
		a.logger = util.NewLogger(a.cfg.Logging.Level, a.cfg.Logging.Format)
		util.SetDefault(a.logger)
	}

	if a.now == nil {
		a.now = time.Now
	}

	if a.cal == nil {
		loc, err := time.LoadLocation(a.cfg.Calendar.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone %q: %w", a.cfg.Calendar.Timezone, err)
		}
		cal, err := calendar.New(calendar.WithLocation(loc), calendar.WithClock(a.now))
		if err != nil {
			return err
		}
		a.cal = cal
	}

	if a.rates == nil {
		t := a.cfg.Treasury
		a.rates = treasury.NewClient(treasury.Options{
			BaseURL:         t.BaseURL,
			Timeout:         t.Timeout,
			RateLimitPerMin: t.RateLimitPerMin,
			MaxAttempts:     t.MaxAttempts,
			Backoff:         t.Backoff,
			Logger:          a.logger,
		})
	}

	a.logger.Debug("marketclock initialised",
		"config", a.cfgPath,
		"timezone", a.cal.Location().String(),
	)
	return nil
}
