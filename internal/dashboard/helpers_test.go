package dashboard

import (
	"context"
	"fmt"
	"sync"

	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/inventory"
)

// fakeSource answers with canned bodies looked up through the default plan
type fakeSource struct {
	mu      sync.Mutex
	bodies  map[RequestKey]string
	errs    map[RequestKey]error
	calls   []Request
	respond func(ctx context.Context, req Request) (*inventory.Envelope, error)
}

func newFakeSource(bodies map[RequestKey]string) *fakeSource {
	return &fakeSource{bodies: bodies, errs: map[RequestKey]error{}}
}

func (f *fakeSource) lookup(ctx context.Context, res inventory.Resource, q inventory.Query) (*inventory.Envelope, error) {
	var req Request
	for _, r := range DefaultPlan(DefaultLimits()) {
		if r.Resource == res && r.Query == q {
			req = r
			break
		}
	}
	if req.Key == "" {
		return nil, fmt.Errorf("unexpected request %s %+v", res, q)
	}

	f.mu.Lock()
	f.calls = append(f.calls, req)
	respond := f.respond
	err := f.errs[req.Key]
	body, ok := f.bodies[req.Key]
	f.mu.Unlock()

	if respond != nil {
		return respond(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		body = `{"data":[],"meta":{"total_count":0}}`
	}
	return &inventory.Envelope{Resource: res, Raw: []byte(body)}, nil
}

func (f *fakeSource) Devices(ctx context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return f.lookup(ctx, inventory.ResourceDevices, q)
}

func (f *fakeSource) Locations(ctx context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return f.lookup(ctx, inventory.ResourceLocations, q)
}

func (f *fakeSource) VLANs(ctx context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return f.lookup(ctx, inventory.ResourceVLANs, q)
}

func (f *fakeSource) Events(ctx context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return f.lookup(ctx, inventory.ResourceEvents, q)
}

func (f *fakeSource) Metrics(ctx context.Context, q inventory.Query) (*inventory.Envelope, error) {
	return f.lookup(ctx, inventory.ResourceMetrics, q)
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeFactory refuses to build into a slot that is still live
type fakeFactory struct {
	mu        sync.Mutex
	live      map[Slot]bool
	created   int
	destroyed int
	failOn    Slot
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{live: map[Slot]bool{}}
}

func (f *fakeFactory) NewChart(spec ChartSpec) (Chart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if spec.Slot == f.failOn {
		return nil, fmt.Errorf("canvas %s unavailable", spec.Slot)
	}
	if f.live[spec.Slot] {
		return nil, ferrors.ErrChartSlotOccupied
	}
	f.live[spec.Slot] = true
	f.created++
	return &fakeChart{factory: f, slot: spec.Slot}, nil
}

func (f *fakeFactory) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

type fakeChart struct {
	factory *fakeFactory
	slot    Slot
}

func (c *fakeChart) Destroy() {
	c.factory.mu.Lock()
	defer c.factory.mu.Unlock()
	delete(c.factory.live, c.slot)
	c.factory.destroyed++
}

// fakeContainer records what it was asked to show
type fakeContainer struct {
	mu        sync.Mutex
	skeletons int
	overviews []*Overview
	errs      []error
	last      string
}

func (c *fakeContainer) ShowSkeleton() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skeletons++
	c.last = "skeleton"
}

func (c *fakeContainer) ShowError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	c.last = "error"
}

func (c *fakeContainer) ShowOverview(o *Overview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overviews = append(c.overviews, o)
	c.last = "overview"
}
