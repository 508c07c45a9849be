package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_HTTPMiddleware(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2, Expiration: time.Hour})
	require.NoError(t, err)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl, "console")(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5001"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "a new source port is the same client")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_MultipleClients(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1, Expiration: time.Hour})
	require.NoError(t, err)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl, "console")(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
	assert.Equal(t, 3, rl.Clients())
}

func TestRateLimiter_ClientIDExtraction(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remote     string
		forwarded  string
		want       string
	}{
		{name: "remote host", remote: "192.0.2.1:4000", want: "192.0.2.1"},
		{name: "forwarded ignored by default", remote: "192.0.2.1:4000", forwarded: "203.0.113.9", want: "192.0.2.1"},
		{name: "forwarded trusted", trustProxy: true, remote: "192.0.2.1:4000", forwarded: "203.0.113.9, 10.0.0.1", want: "203.0.113.9"},
		{name: "unparsable remote", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, err := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, TrustProxy: tt.trustProxy})
			require.NoError(t, err)
			defer rl.Stop()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, rl.clientID(req))
		})
	}
}

func TestRateLimiterConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  RateLimiterConfig
		wantErr bool
	}{
		{name: "valid", config: RateLimiterConfig{Rate: 10, Burst: 20}},
		{name: "zero rate", config: RateLimiterConfig{Rate: 0, Burst: 20}, wantErr: true},
		{name: "negative burst", config: RateLimiterConfig{Rate: 1, Burst: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, err := NewRateLimiter(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, rl)
				return
			}
			require.NoError(t, err)
			rl.Stop()
		})
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, Expiration: time.Hour})
	require.NoError(t, err)
	defer rl.Stop()

	rl.getLimiter("stale")
	rl.getLimiter("fresh")

	rl.mu.Lock()
	rl.limiters["stale"].lastUsed = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	rl.cleanup()

	assert.Equal(t, 1, rl.Clients())
	rl.mu.RLock()
	_, ok := rl.limiters["fresh"]
	rl.mu.RUnlock()
	assert.True(t, ok)
}

func TestRateLimiter_StopIdempotency(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{Rate: 1000, Burst: 1000, Expiration: time.Hour})
	require.NoError(t, err)
	defer rl.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rl.getLimiter([]string{"a", "b", "c"}[(i+j)%3]).Allow()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, rl.Clients())
}
