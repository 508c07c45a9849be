package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"netinv.sh/internal/inventory"
)

const tracerName = "netinv.sh/internal/dashboard"

// Source is the read side of the inventory API the dashboard depends on.
// *inventory.Client satisfies it.
type Source interface {
	Devices(ctx context.Context, q inventory.Query) (*inventory.Envelope, error)
	Locations(ctx context.Context, q inventory.Query) (*inventory.Envelope, error)
	VLANs(ctx context.Context, q inventory.Query) (*inventory.Envelope, error)
	Events(ctx context.Context, q inventory.Query) (*inventory.Envelope, error)
	Metrics(ctx context.Context, q inventory.Query) (*inventory.Envelope, error)
}

// RequestKey names one request of a fetch plan
type RequestKey string

const (
	KeyTotalDevices   RequestKey = "total_devices"
	KeyActiveDevices  RequestKey = "active_devices"
	KeyLocationsTotal RequestKey = "locations_total"
	KeyVLANsTotal     RequestKey = "vlans_total"
	KeyDeviceList     RequestKey = "device_list"
	KeyLocationList   RequestKey = "location_list"
	KeyRecentEvents   RequestKey = "recent_events"
	KeyTopMetrics     RequestKey = "top_metrics"
)

// Request is one entry of a fetch plan
type Request struct {
	Key      RequestKey         `json:"key"`
	Resource inventory.Resource `json:"resource"`
	Query    inventory.Query    `json:"query"`
}

// Limits caps the list requests of a load
type Limits struct {
	Devices   int `json:"devices" yaml:"devices"`
	Locations int `json:"locations" yaml:"locations"`
	Events    int `json:"events" yaml:"events"`
	Metrics   int `json:"metrics" yaml:"metrics"`
}

func DefaultLimits() Limits {
	return Limits{
		Devices:   5000,
		Locations: 10000,
		Events:    5,
		Metrics:   5,
	}
}

// DefaultPlan returns the eight requests of a dashboard load
func DefaultPlan(l Limits) []Request {
	return []Request{
		{Key: KeyTotalDevices, Resource: inventory.ResourceDevices, Query: inventory.Query{Limit: 1}},
		{Key: KeyActiveDevices, Resource: inventory.ResourceDevices, Query: inventory.Query{Limit: 1, Status: "active"}},
		{Key: KeyLocationsTotal, Resource: inventory.ResourceLocations, Query: inventory.Query{Limit: 1}},
		{Key: KeyVLANsTotal, Resource: inventory.ResourceVLANs, Query: inventory.Query{Limit: 1}},
		{Key: KeyDeviceList, Resource: inventory.ResourceDevices, Query: inventory.Query{Limit: l.Devices}},
		{Key: KeyLocationList, Resource: inventory.ResourceLocations, Query: inventory.Query{Limit: l.Locations}},
		{Key: KeyRecentEvents, Resource: inventory.ResourceEvents, Query: inventory.Query{Limit: l.Events, Sort: "created_at:desc"}},
		{Key: KeyTopMetrics, Resource: inventory.ResourceMetrics, Query: inventory.Query{Limit: l.Metrics, Sort: "cpu:desc"}},
	}
}

// Batch holds the envelopes of a settled plan by key
type Batch map[RequestKey]*inventory.Envelope

// Get returns the envelope for key, nil when absent
func (b Batch) Get(key RequestKey) *inventory.Envelope {
	return b[key]
}

// Raw returns the body for key, nil when absent
func (b Batch) Raw(key RequestKey) []byte {
	if env := b[key]; env != nil {
		return env.Raw
	}
	return nil
}

// FetchObserver is told about every request once it settles. Calls are
// serialised.
type FetchObserver func(req Request, err error)

// Fetch issues every request of plan concurrently and waits for all of them
// to settle. The first failure cancels the rest and is returned; no partial
// batch is ever handed back.
func Fetch(ctx context.Context, src Source, plan []Request, observe FetchObserver) (Batch, error) {
	seen := make(map[RequestKey]bool, len(plan))
	for _, r := range plan {
		if seen[r.Key] {
			return nil, fmt.Errorf("duplicate request key %q", r.Key)
		}
		seen[r.Key] = true
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "dashboard.fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("dashboard.requests", len(plan)))

	var (
		mu      sync.Mutex
		results = make(Batch, len(plan))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range plan {
		req := req
		g.Go(func() error {
			env, err := fetchOne(gctx, src, req)

			mu.Lock()
			defer mu.Unlock()
			if observe != nil {
				observe(req, err)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", req.Resource, err)
			}
			results[req.Key] = env
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return results, nil
}

func fetchOne(ctx context.Context, src Source, req Request) (*inventory.Envelope, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "inventory."+string(req.Resource))
	defer span.End()
	span.SetAttributes(
		attribute.String("dashboard.request", string(req.Key)),
		attribute.Int("inventory.limit", req.Query.Limit),
	)

	var (
		env *inventory.Envelope
		err error
	)
	switch req.Resource {
	case inventory.ResourceDevices:
		env, err = src.Devices(ctx, req.Query)
	case inventory.ResourceLocations:
		env, err = src.Locations(ctx, req.Query)
	case inventory.ResourceVLANs:
		env, err = src.VLANs(ctx, req.Query)
	case inventory.ResourceEvents:
		env, err = src.Events(ctx, req.Query)
	case inventory.ResourceMetrics:
		env, err = src.Metrics(ctx, req.Query)
	default:
		err = fmt.Errorf("unsupported resource %q", req.Resource)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if env == nil {
		env = &inventory.Envelope{Resource: req.Resource}
	}
	return env, nil
}
