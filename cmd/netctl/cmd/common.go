package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"netinv.sh/internal/config"
	"netinv.sh/internal/inventory"
	"netinv.sh/internal/observability"
	"netinv.sh/internal/version"
)

// session is what every command that talks to the inventory API needs
type session struct {
	cfg    *config.Config
	obs    *observability.Observability
	client *inventory.Client
}

// newSession loads the config and builds logging, tracing and the API
// client. With quiet set, logs that would go to the terminal are dropped
// so they cannot tear a full screen UI.
func newSession(ctx context.Context, service string, quiet bool) (*session, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	output := cfg.Log.Output
	if quiet && isStdStream(output) {
		output = os.DevNull
	}

	obs := observability.New(ctx, observability.Config{
		Log: observability.LogConfig{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			OutputPath:  output,
			ServiceName: service,
			Version:     version.Version,
		},
		Tracing: observability.TracingConfig{
			ServiceName:    service,
			ServiceVersion: version.Version,
			Endpoint:       cfg.Tracing.Endpoint,
			Insecure:       cfg.Tracing.Insecure,
			SampleRate:     cfg.Tracing.SampleRate,
			Enabled:        cfg.Tracing.Enabled,
		},
	})

	client, err := inventory.NewClient(&inventory.Config{
		BaseURL:   cfg.API.URL,
		AuthToken: cfg.API.Token,
		Timeout:   cfg.API.Timeout,
	}, inventory.WithLogger(obs.Logger.Slog(cfg.Log.Format)))
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create inventory client: %w", err)
	}

	return &session{cfg: cfg, obs: obs, client: client}, nil
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.obs.Shutdown(ctx)
}

func isStdStream(output string) bool {
	switch output {
	case "", "stdout", "stderr":
		return true
	}
	return false
}
