package console

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/inventory"
)

// stubSource serves one body per resource; filtered device queries get
// activeBody.
type stubSource struct {
	bodies     map[inventory.Resource]string
	activeBody string
	err        error
}

func (s *stubSource) envelope(res inventory.Resource, q inventory.Query) (*inventory.Envelope, error) {
	if s.err != nil {
		return nil, s.err
	}
	body := s.bodies[res]
	if res == inventory.ResourceDevices && q.Status != "" {
		body = s.activeBody
	}
	if body == "" {
		body = `{"data":[]}`
	}
	return &inventory.Envelope{Resource: res, Raw: []byte(body)}, nil
}

func (s *stubSource) Devices(_ context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return s.envelope(inventory.ResourceDevices, q)
}

func (s *stubSource) Locations(_ context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return s.envelope(inventory.ResourceLocations, q)
}

func (s *stubSource) VLANs(_ context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return s.envelope(inventory.ResourceVLANs, q)
}

func (s *stubSource) Events(_ context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return s.envelope(inventory.ResourceEvents, q)
}

func (s *stubSource) Metrics(_ context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return s.envelope(inventory.ResourceMetrics, q)
}

func inventorySource() *stubSource {
	return &stubSource{
		bodies: map[inventory.Resource]string{
			inventory.ResourceDevices: `{"data":[
				{"id":1,"hostname":"core-1","status":"active","vendor":"Cisco","role":"core","location_id":"10"},
				{"id":2,"hostname":"edge-1","status":"offline","vendor":"Juniper","role":"edge"}
			],"meta":{"total_count":2}}`,
			inventory.ResourceLocations: `{"data":[{"id":"10","name":"HQ"}],"meta":{"total_count":1}}`,
			inventory.ResourceVLANs:     `{"data":[],"meta":{"total_count":3}}`,
			inventory.ResourceEvents:    `{"data":[{"id":7,"severity":"critical","message":"Link down","device_id":2}]}`,
			inventory.ResourceMetrics:   `{"data":[{"device_id":1,"cpu":91.5}]}`,
		},
		activeBody: `{"data":[],"meta":{"total_count":1}}`,
	}
}

func render(t *testing.T, p *Page) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, p.Render(&sb))
	return sb.String()
}

func TestPage_Skeleton(t *testing.T) {
	p := NewPage("")
	p.ShowSkeleton()

	out := render(t, p)
	assert.Contains(t, out, "<title>Network Inventory</title>")
	assert.Contains(t, out, "skeleton")
	assert.NotContains(t, out, "data-chart")
	assert.False(t, p.Failed())
}

func TestPage_RendersDashboard(t *testing.T) {
	p := NewPage("Lab")
	d := dashboard.New(inventorySource(), p)
	defer d.Close()

	require.NoError(t, d.Render(context.Background(), p))
	assert.Equal(t, len(dashboard.Slots), p.Bound())

	out := render(t, p)
	for _, slot := range dashboard.Slots {
		assert.Contains(t, out, `id="`+string(slot)+`-option"`)
	}
	assert.Contains(t, out, "Total Devices")
	assert.Contains(t, out, `kpi-value danger">50%`)
	assert.Contains(t, out, "Link down")
	assert.Contains(t, out, "core-1")
	assert.Contains(t, out, "91.5%")
	assert.Contains(t, out, echartsScript)
}

func TestPage_Empty(t *testing.T) {
	p := NewPage("")
	d := dashboard.New(&stubSource{}, p)
	defer d.Close()

	require.NoError(t, d.Render(context.Background(), p))
	out := render(t, p)
	assert.Contains(t, out, dashboard.NoAlertsMessage)
	assert.Contains(t, out, dashboard.NoMetricsMessage)
	assert.Contains(t, out, `kpi-value success">100%`)
}

func TestPage_Error(t *testing.T) {
	p := NewPage("")
	d := dashboard.New(&stubSource{err: errors.New("connection refused")}, p)
	defer d.Close()

	err := d.Render(context.Background(), p)
	require.Error(t, err)
	assert.True(t, p.Failed())
	assert.Zero(t, p.Bound())

	out := render(t, p)
	assert.Contains(t, out, "Failed to load dashboard: ")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, `role="alert"`)
}

func TestPage_RerenderReplacesCharts(t *testing.T) {
	p := NewPage("")
	d := dashboard.New(inventorySource(), p)

	require.NoError(t, d.Render(context.Background(), p))
	require.NoError(t, d.Render(context.Background(), p))
	assert.Equal(t, len(dashboard.Slots), p.Bound())

	d.Close()
	assert.Zero(t, p.Bound())
}

func TestPage_SlotOccupied(t *testing.T) {
	p := NewPage("")
	spec := dashboard.ChartSpec{
		Slot:   dashboard.SlotLocation,
		Kind:   dashboard.ChartBar,
		Labels: []string{"HQ"},
		Values: []int{1},
		Colors: []string{"#2563eb"},
	}

	c, err := p.NewChart(spec)
	require.NoError(t, err)

	_, err = p.NewChart(spec)
	assert.True(t, ferrors.Is(err, ferrors.ErrChartSlotOccupied))

	c.Destroy()
	c.Destroy()
	_, err = p.NewChart(spec)
	assert.NoError(t, err)
}
