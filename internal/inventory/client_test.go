package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/middleware"
	"netinv.sh/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{BaseURL: srv.URL + "/", AuthToken: token, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "empty", query: Query{}, want: ""},
		{name: "limit only", query: Query{Limit: 1}, want: "limit=1"},
		{name: "status", query: Query{Limit: 1, Status: "active"}, want: "limit=1&status=active"},
		{name: "sort with direction", query: Query{Limit: 5, Sort: "created_at:desc"}, want: "limit=5&sortby=created_at%3Adesc"},
		{name: "sort without direction", query: Query{Sort: "hostname"}, want: "sortby=hostname%3Aasc"},
		{name: "sort direction case", query: Query{Sort: "cpu:DESC"}, want: "sortby=cpu%3Adesc"},
		{name: "zero limit dropped", query: Query{Limit: 0, Status: " "}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Values().Encode())
		})
	}
}

func TestClientList(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(middleware.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta":{"total_count":2},"data":[{"id":1,"hostname":"sw1"},{"id":2,"hostname":"sw2"}]}`))
	}, "secret")

	env, err := c.Devices(context.Background(), Query{Limit: 1, Status: "active"})
	require.NoError(t, err)

	assert.Equal(t, "/devices", gotPath)
	assert.Equal(t, "limit=1&status=active", gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, ResourceDevices, env.Resource)

	devices, skipped := DecodeData[models.Device](env)
	assert.Zero(t, skipped)
	require.Len(t, devices, 2)
	assert.Equal(t, "sw2", devices[1].Hostname)
}

func TestClientPropagatesRequestID(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(middleware.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}, "")

	ctx := middleware.WithRequestID(context.Background(), "req-42")
	_, err := c.Events(ctx, Query{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "req-42", got)
}

func TestClientNoTokenNoAuthHeader(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, "")

	_, err := c.VLANs(context.Background(), Query{Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantIs     error
		wantStatus int
		wantMsg    string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"token expired"}`,
			wantIs: ferrors.ErrUnauthorized,
		},
		{
			name:       "message from body",
			status:     http.StatusInternalServerError,
			body:       `{"message":"database unavailable"}`,
			wantIs:     ferrors.ErrUnexpectedStatus,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "database unavailable",
		},
		{
			name:       "status text fallback",
			status:     http.StatusBadGateway,
			body:       `<html>oops</html>`,
			wantIs:     ferrors.ErrUnexpectedStatus,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			_, err := c.Metrics(context.Background(), Query{Limit: 5, Sort: "cpu:desc"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)

			if tt.wantStatus != 0 {
				var se *ferrors.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.wantStatus, se.StatusCode)
				assert.Equal(t, tt.wantMsg, se.Message)
			}
		})
	}
}

func TestClientNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	env, err := c.Locations(context.Background(), Query{Limit: 1})
	require.NoError(t, err)
	require.NotNil(t, env)
	items, ok := env.Items()
	assert.False(t, ok)
	assert.Empty(t, items)
}

func TestClientRejectsOversizedBody(t *testing.T) {
	body := `{"data":[{"id":1,"hostname":"core-1"},{"id":2,"hostname":"edge-1"}],"meta":{"total_count":2}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	tight, err := NewClient(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxBodySize: int64(len(body)) - 1})
	require.NoError(t, err)

	env, err := tight.Devices(context.Background(), Query{Limit: 5000})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, ferrors.ErrResponseTooLarge)
	assert.Contains(t, err.Error(), "devices")

	exact, err := NewClient(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxBodySize: int64(len(body))})
	require.NoError(t, err)

	env, err = exact.Devices(context.Background(), Query{Limit: 5000})
	require.NoError(t, err)
	devices, skipped := DecodeData[models.Device](env)
	assert.Len(t, devices, 2)
	assert.Zero(t, skipped)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(&Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Devices(context.Background(), Query{Limit: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devices")
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(&Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, ferrors.ErrInvalidConfig)
}

func TestEnvelopeItems(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
		want   int
	}{
		{name: "array", raw: `{"data":[{"id":1},{"id":2}]}`, wantOK: true, want: 2},
		{name: "empty array", raw: `{"data":[]}`, wantOK: true, want: 0},
		{name: "data object", raw: `{"data":{"id":1}}`, wantOK: false},
		{name: "no data", raw: `{"total":4}`, wantOK: false},
		{name: "not json", raw: `garbage`, wantOK: false},
		{name: "top-level array", raw: `[1,2]`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, ok := (&Envelope{Raw: []byte(tt.raw)}).Items()
			assert.Equal(t, tt.wantOK, ok)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestDecodeDataSkipsMalformed(t *testing.T) {
	env := &Envelope{Raw: []byte(`{"data":[{"id":1,"vendor":"Cisco"},"oops",{"id":[1]},{"id":3,"vendor":"Arista"}]}`)}

	devices, skipped := DecodeData[models.Device](env)
	assert.Equal(t, 2, skipped)
	require.Len(t, devices, 2)
	assert.Equal(t, "Cisco", devices[0].Vendor)
	assert.Equal(t, "Arista", devices[1].Vendor)
}
