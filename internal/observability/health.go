package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"netinv.sh/internal/metrics"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string        `json:"name"`
	Status      HealthStatus  `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration_ms"`
}

// HealthChecker performs health checks
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
}

// HealthCheckFunc is a function that performs a health check
type HealthCheckFunc func(ctx context.Context) HealthCheck

// Check implements HealthChecker
func (f HealthCheckFunc) Check(ctx context.Context) HealthCheck {
	return f(ctx)
}

// HealthService runs registered checks concurrently and caches results
// for a short while so probes do not hammer the inventory API.
type HealthService struct {
	checks   map[string]HealthChecker
	mu       sync.RWMutex
	logger   *slog.Logger
	cache    map[string]*HealthCheck
	cacheTTL time.Duration
	timeout  time.Duration
}

func NewHealthService(cacheTTL time.Duration) *HealthService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Second
	}
	return &HealthService{
		checks:   make(map[string]HealthChecker),
		cache:    make(map[string]*HealthCheck),
		cacheTTL: cacheTTL,
		timeout:  5 * time.Second,
		logger:   slog.Default().With("component", "health"),
	}
}

// RegisterCheck registers a health check
func (s *HealthService) RegisterCheck(name string, checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = checker
}

// RegisterCheckFunc registers fn as a check that is healthy when it
// returns nil
func (s *HealthService) RegisterCheckFunc(name string, fn func(ctx context.Context) error) {
	s.RegisterCheck(name, HealthCheckFunc(func(ctx context.Context) HealthCheck {
		start := time.Now()
		err := fn(ctx)

		check := HealthCheck{
			Name:        name,
			Status:      HealthStatusHealthy,
			Message:     "OK",
			LastChecked: time.Now(),
			Duration:    time.Since(start),
		}
		if err != nil {
			check.Status = HealthStatusUnhealthy
			check.Message = err.Error()
		}
		return check
	}))
}

// Check performs all health checks
func (s *HealthService) Check(ctx context.Context) map[string]HealthCheck {
	s.mu.RLock()
	checkers := make(map[string]HealthChecker, len(s.checks))
	for name, checker := range s.checks {
		checkers[name] = checker
	}
	s.mu.RUnlock()

	var (
		resultsMu sync.Mutex
		results   = make(map[string]HealthCheck, len(checkers))
		wg        sync.WaitGroup
	)

	for name, checker := range checkers {
		if cached := s.getCached(name); cached != nil {
			resultsMu.Lock()
			results[name] = *cached
			resultsMu.Unlock()
			continue
		}

		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			checkCtx, span := otel.Tracer("netinv/health").Start(checkCtx, fmt.Sprintf("health.check.%s", name))
			defer span.End()

			check := checker.Check(checkCtx)
			span.SetAttributes(
				attribute.String("check", name),
				attribute.String("status", string(check.Status)),
			)
			metrics.RecordHealthCheck(name, string(check.Status), check.Duration.Seconds())
			if check.Status != HealthStatusHealthy {
				s.logger.Warn("Health check failed", "check", name, "message", check.Message)
			}

			s.updateCache(name, &check)

			resultsMu.Lock()
			results[name] = check
			resultsMu.Unlock()
		}(name, checker)
	}

	wg.Wait()
	return results
}

// Overall folds check results into one status
func Overall(checks map[string]HealthCheck) HealthStatus {
	status := HealthStatusHealthy
	for _, check := range checks {
		switch check.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

func (s *HealthService) getCached(name string) *HealthCheck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, exists := s.cache[name]
	if !exists || time.Since(cached.LastChecked) > s.cacheTTL {
		return nil
	}
	return cached
}

func (s *HealthService) updateCache(name string, check *HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = check
}

// ReadinessHandler answers 200 while every check is healthy or degraded
// and 503 otherwise
func (s *HealthService) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := s.Check(r.Context())
		status := Overall(checks)

		response := struct {
			Status HealthStatus           `json:"status"`
			Checks map[string]HealthCheck `json:"checks"`
			Time   time.Time              `json:"time"`
		}{
			Status: status,
			Checks: checks,
			Time:   time.Now(),
		}

		code := http.StatusOK
		if status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(response); err != nil {
			s.logger.Error("Failed to encode health response", "error", err)
		}
	}
}
