package dashboard

import (
	"fmt"
	"log/slog"
	"sync"

	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/metrics"
)

// Slot is the fixed element a chart is bound to
type Slot string

const (
	SlotStatus   Slot = "chart-status"
	SlotVendor   Slot = "chart-vendor"
	SlotRole     Slot = "chart-role"
	SlotLocation Slot = "chart-location"
)

// Slots lists every chart slot in layout order
var Slots = []Slot{SlotStatus, SlotVendor, SlotRole, SlotLocation}

func (s Slot) valid() bool {
	for _, v := range Slots {
		if s == v {
			return true
		}
	}
	return false
}

// ChartKind selects the chart type drawn in a slot
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartDoughnut ChartKind = "doughnut"
)

// ChartSpec is the bucketed, coloured dataset for one slot
type ChartSpec struct {
	Slot   Slot      `json:"slot"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	Series string    `json:"series,omitempty"`
	Labels []string  `json:"labels"`
	Values []int     `json:"values"`
	Colors []string  `json:"colors"`
}

// Chart is a live chart drawn by a ChartFactory
type Chart interface {
	Destroy()
}

// ChartFactory constructs charts on some display surface. A factory may
// refuse to construct into a slot that still holds a live chart.
type ChartFactory interface {
	NewChart(spec ChartSpec) (Chart, error)
}

// ChartManager owns the chart in every slot. Each Render first destroys
// every live chart and only then constructs the new ones, so a slot never
// holds two charts.
type ChartManager struct {
	mu      sync.Mutex
	factory ChartFactory
	handles map[Slot]Chart
	logger  *slog.Logger
}

func NewChartManager(factory ChartFactory, logger *slog.Logger) *ChartManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartManager{
		factory: factory,
		handles: make(map[Slot]Chart, len(Slots)),
		logger:  logger,
	}
}

// Render replaces all charts with ones built from specs. If a construction
// fails the charts built so far in this call are destroyed as well and all
// slots are left empty.
func (m *ChartManager) Render(specs []ChartSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[Slot]bool, len(specs))
	for _, s := range specs {
		if !s.Slot.valid() {
			return fmt.Errorf("unknown chart slot %q", s.Slot)
		}
		if seen[s.Slot] {
			return fmt.Errorf("chart slot %q given twice: %w", s.Slot, ferrors.ErrChartSlotOccupied)
		}
		seen[s.Slot] = true
	}

	m.destroyAll()

	for _, s := range specs {
		chart, err := m.factory.NewChart(s)
		if err != nil {
			m.destroyAll()
			return ferrors.Wrapf(err, "failed to create chart %s", s.Slot)
		}
		m.handles[s.Slot] = chart
		metrics.DashboardLiveCharts.Inc()
	}

	m.logger.Debug("Charts rendered", "count", len(m.handles))
	return nil
}

// Destroy releases every live chart
func (m *ChartManager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyAll()
}

// Live returns the number of charts currently held
func (m *ChartManager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

func (m *ChartManager) destroyAll() {
	for _, slot := range Slots {
		chart, ok := m.handles[slot]
		if !ok {
			continue
		}
		chart.Destroy()
		delete(m.handles, slot)
		metrics.DashboardLiveCharts.Dec()
	}
}
