package observability

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
)

// Observability bundles the process logger and tracer
type Observability struct {
	Logger *Logger
	Tracer *Tracer
}

type Config struct {
	Log     LogConfig
	Tracing TracingConfig
}

// New builds the logger, points log/slog at the same output and level,
// and installs tracing. A tracing failure is logged and leaves tracing off.
func New(ctx context.Context, config Config) *Observability {
	logger := NewLogger(config.Log)
	slog.SetDefault(logger.Slog(config.Log.Format))

	tracer, err := InitTracing(ctx, config.Tracing)
	if err != nil {
		logger.Warn("Failed to initialize tracing", zap.Error(err))
		tracer, _ = InitTracing(ctx, TracingConfig{ServiceName: config.Tracing.ServiceName})
	}

	return &Observability{
		Logger: logger,
		Tracer: tracer,
	}
}

// Shutdown flushes the tracer and the logger
func (o *Observability) Shutdown(ctx context.Context) error {
	err := o.Tracer.Shutdown(ctx)
	if err != nil {
		o.Logger.Error("Failed to shutdown tracer", zap.Error(err))
	}
	_ = o.Logger.Sync()
	return err
}
