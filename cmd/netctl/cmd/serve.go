package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"netinv.sh/internal/config"
	"netinv.sh/internal/server"
)

// newServeCmd creates the web console command
func newServeCmd() *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as a web console",
		Long: `Start an HTTP server that renders the dashboard on every page view.

Routes:
  /               dashboard page
  /api/dashboard  snapshot as JSON
  /healthz        liveness
  /readyz         readiness, probes the inventory API
  /metrics        Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newSession(ctx, "netinv-console", false)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("addr") {
				addr = s.cfg.Console.Addr
			}

			srv, err := server.New(server.Config{
				Addr:            addr,
				Title:           s.cfg.Console.Title,
				Rate:            s.cfg.Console.Rate,
				Burst:           s.cfg.Console.Burst,
				TrustProxy:      s.cfg.Console.TrustProxy,
				CORSOrigins:     s.cfg.Console.CORSOrigins,
				ShutdownTimeout: config.GetDurationFromEnv("NETINV_SHUTDOWN_TIMEOUT", 10*time.Second),
				Dashboard:       s.cfg.DashboardOptions(),
			}, s.client, s.obs.Logger.Logger)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			url := consoleURL(ln.Addr())
			printSuccess("Console listening on %s", cyan(url))
			printInfo("Press Ctrl+C to stop")
			if open {
				if err := browser.OpenURL(url); err != nil {
					printWarning("Could not open browser automatically, visit the URL above")
				}
			}

			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8088", "listen address")
	cmd.Flags().BoolVar(&open, "open", false, "open the console in a browser")

	return cmd
}

// consoleURL turns a listen address into a URL a local browser can open
func consoleURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
