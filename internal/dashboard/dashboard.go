package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"netinv.sh/internal/inventory"
	"netinv.sh/internal/metrics"
	"netinv.sh/internal/models"
)

// ErrStale is returned by Render when a newer render started while this
// one was waiting for data. The stale result is dropped.
var ErrStale = errors.New("dashboard render superseded")

// LoadError is what a Container is shown when a load fails
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "Failed to load dashboard: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Container is the surface a dashboard is drawn on. Calls may arrive from
// different goroutines but never overlap for one Dashboard.
type Container interface {
	ShowSkeleton()
	ShowError(err error)
	ShowOverview(o *Overview)
}

// Options tunes a dashboard load
type Options struct {
	Limits   Limits   `json:"limits" yaml:"limits"`
	Status   Ordering `json:"status" yaml:"status"`
	Vendor   Ordering `json:"vendor" yaml:"vendor"`
	Role     Ordering `json:"role" yaml:"role"`
	Location Ordering `json:"location" yaml:"location"`
	Accent   string   `json:"accent" yaml:"accent"`
}

func DefaultOptions() Options {
	return Options{
		Limits:   DefaultLimits(),
		Status:   Ordering{Preferred: StatusOrder},
		Vendor:   Ordering{TopN: 6, Others: true},
		Role:     Ordering{Others: true},
		Location: Ordering{TopN: 8},
		Accent:   DefaultAccent,
	}
}

// Overview is everything a Container draws besides the charts
type Overview struct {
	KPIs   KPIs             `json:"kpis"`
	Alerts Widget[AlertRow] `json:"alerts"`
	CPU    Widget[CPURow]   `json:"cpu"`
	// Skipped counts list elements that could not be decoded
	Skipped int `json:"skipped,omitempty"`
}

// Snapshot is the result of one load
type Snapshot struct {
	Overview
	Aggregates Aggregates  `json:"aggregates"`
	Charts     []ChartSpec `json:"charts"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

type Option func(*Dashboard)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithOptions(o Options) Option {
	return func(d *Dashboard) {
		d.opts = o
	}
}

// WithFetchObserver reports each settled request of a load
func WithFetchObserver(fn FetchObserver) Option {
	return func(d *Dashboard) {
		d.observe = fn
	}
}

// Dashboard loads inventory data and draws it. It owns the charts it draws.
type Dashboard struct {
	src     Source
	charts  *ChartManager
	opts    Options
	observe FetchObserver
	logger  *slog.Logger

	gen atomic.Uint64
	mu  sync.Mutex
}

// New creates a dashboard reading from src. charts may be nil when only
// Load is used.
func New(src Source, charts ChartFactory, opts ...Option) *Dashboard {
	d := &Dashboard{
		src:    src,
		opts:   DefaultOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if charts != nil {
		d.charts = NewChartManager(charts, d.logger)
	}
	return d
}

// Load fetches and aggregates one snapshot without drawing anything
func (d *Dashboard) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	batch, err := Fetch(ctx, d.src, DefaultPlan(d.opts.Limits), d.observe)
	if err != nil {
		metrics.RecordDashboardLoad("error", time.Since(start).Seconds())
		d.logger.Warn("Dashboard load failed", "error", err)
		return nil, err
	}

	snap := d.build(batch)
	metrics.RecordDashboardLoad("ok", time.Since(start).Seconds())
	metrics.DashboardDevicesAggregated.Set(float64(snap.Aggregates.Devices))
	d.logger.Debug("Dashboard loaded",
		"devices", snap.Aggregates.Devices,
		"skipped", snap.Skipped,
		"duration", time.Since(start))
	return snap, nil
}

func (d *Dashboard) build(b Batch) *Snapshot {
	devices, skippedDevices := inventory.DecodeData[models.Device](b.Get(KeyDeviceList))
	locations, skippedLocations := inventory.DecodeData[models.Location](b.Get(KeyLocationList))
	events, skippedEvents := inventory.DecodeData[models.Event](b.Get(KeyRecentEvents))
	samples, skippedSamples := inventory.DecodeData[models.DeviceMetric](b.Get(KeyTopMetrics))

	skipped := skippedDevices + skippedLocations + skippedEvents + skippedSamples
	if skipped > 0 {
		d.logger.Warn("Skipped malformed records",
			"devices", skippedDevices,
			"locations", skippedLocations,
			"events", skippedEvents,
			"metrics", skippedSamples)
	}

	agg := Aggregate(devices, locations)
	return &Snapshot{
		Overview: Overview{
			KPIs:    ComputeKPIs(b),
			Alerts:  AlertsWidget(events),
			CPU:     CPUWidget(samples, devices),
			Skipped: skipped,
		},
		Aggregates: agg,
		Charts:     BuildCharts(agg, d.opts),
		LoadedAt:   time.Now(),
	}
}

// BuildCharts buckets and colours the four chart datasets
func BuildCharts(agg Aggregates, o Options) []ChartSpec {
	status := Bucket(agg.Status, o.Status)
	vendor := Bucket(agg.Vendor, o.Vendor)
	role := Bucket(agg.Role, o.Role)
	location := Bucket(agg.Location, o.Location)

	return []ChartSpec{
		{
			Slot:   SlotStatus,
			Kind:   ChartBar,
			Title:  "Device Status",
			Series: "Devices",
			Labels: displayLabels(Labels(status)),
			Values: Counts(status),
			Colors: StatusColors(Labels(status)),
		},
		{
			Slot:   SlotVendor,
			Kind:   ChartDoughnut,
			Title:  "Vendors",
			Labels: Labels(vendor),
			Values: Counts(vendor),
			Colors: SpreadColors(len(vendor)),
		},
		{
			Slot:   SlotRole,
			Kind:   ChartDoughnut,
			Title:  "Device Roles",
			Labels: displayLabels(Labels(role)),
			Values: Counts(role),
			Colors: SpreadColors(len(role)),
		},
		{
			Slot:   SlotLocation,
			Kind:   ChartBar,
			Title:  "Devices by Location",
			Series: "Devices",
			Labels: Labels(location),
			Values: Counts(location),
			Colors: AccentColors(len(location), o.Accent),
		},
	}
}

// Render draws the dashboard on c: a skeleton at once, then either the
// overview and charts or a single error. If another Render starts before
// this one has its data, this one returns ErrStale and leaves c alone.
func (d *Dashboard) Render(ctx context.Context, c Container) error {
	gen := d.gen.Add(1)

	d.mu.Lock()
	if d.gen.Load() == gen {
		c.ShowSkeleton()
	}
	d.mu.Unlock()

	snap, err := d.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gen.Load() != gen {
		metrics.DashboardLoadsTotal.WithLabelValues("stale").Inc()
		d.logger.Debug("Dropping stale dashboard render", "generation", gen)
		return ErrStale
	}

	if err != nil {
		loadErr := &LoadError{Err: err}
		c.ShowError(loadErr)
		return loadErr
	}

	c.ShowOverview(&snap.Overview)
	if d.charts == nil {
		return nil
	}
	if err := d.charts.Render(snap.Charts); err != nil {
		loadErr := &LoadError{Err: err}
		c.ShowError(loadErr)
		return loadErr
	}
	return nil
}

// LiveCharts returns the number of charts currently drawn
func (d *Dashboard) LiveCharts() int {
	if d.charts == nil {
		return 0
	}
	return d.charts.Live()
}

// Close destroys every chart the dashboard drew
func (d *Dashboard) Close() {
	if d.charts != nil {
		d.charts.Destroy()
	}
}
