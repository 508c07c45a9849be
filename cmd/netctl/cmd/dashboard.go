package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/tui"
)

// newDashboardCmd creates the live terminal dashboard command
func newDashboardCmd() *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the live dashboard in the terminal",
		Long: `Draw the inventory dashboard full screen.

Keys:
  r         reload
  q, C-c    quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("dashboard needs an interactive terminal, use 'netctl snapshot' instead")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newSession(ctx, "netctl-dashboard", true)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("refresh") {
				refresh = s.cfg.Dashboard.Refresh
			}
			return runDashboard(ctx, s, refresh)
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", 0, "reload interval, 0 disables automatic reloads")

	return cmd
}

func runDashboard(ctx context.Context, s *session, refresh time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	width, height := ui.TerminalDimensions()
	screen := tui.NewScreen(s.cfg.Console.Title, width, height)

	logger := s.obs.Logger.Slog(s.cfg.Log.Format)
	d := dashboard.New(s.client, screen,
		dashboard.WithOptions(s.cfg.DashboardOptions()),
		dashboard.WithLogger(logger),
	)
	defer d.Close()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	// Renders run off the event loop so keys stay responsive; a newer
	// reload supersedes an older one still waiting for data.
	reload := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Render(ctx, screen); err != nil && !errors.Is(err, dashboard.ErrStale) {
				s.obs.Logger.Debug("Dashboard render failed", zap.Error(err))
			}
		}()
	}
	reload()

	var tick <-chan time.Time
	if refresh > 0 {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "r":
				reload()
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				ui.Clear()
				screen.Resize(payload.Width, payload.Height)
			}
		case <-tick:
			reload()
		}
	}
}
