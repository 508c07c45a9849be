package tui

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/ferrors"
)

const keyHelp = "r reload | q quit"

type screenState int

const (
	stateBlank screenState = iota
	stateSkeleton
	stateError
	stateOverview
)

// Screen draws a dashboard in the terminal. It is the Container and the
// ChartFactory for one dashboard; every state change redraws.
type Screen struct {
	mu     sync.Mutex
	title  string
	state  screenState
	err    error
	width  int
	height int

	header *widgets.Paragraph
	kpis   []*widgets.Paragraph
	alerts *widgets.List
	cpu    *widgets.List
	charts map[dashboard.Slot]ui.Drawable

	render func(items ...ui.Drawable)
	now    func() time.Time
}

type ScreenOption func(*Screen)

// WithRenderer replaces ui.Render, mostly for tests
func WithRenderer(fn func(items ...ui.Drawable)) ScreenOption {
	return func(s *Screen) {
		s.render = fn
	}
}

func NewScreen(title string, width, height int, opts ...ScreenOption) *Screen {
	if title == "" {
		title = "Network Inventory"
	}
	s := &Screen{
		title:  title,
		width:  width,
		height: height,
		header: widgets.NewParagraph(),
		alerts: widgets.NewList(),
		cpu:    widgets.NewList(),
		charts: make(map[dashboard.Slot]ui.Drawable, len(dashboard.Slots)),
		render: ui.Render,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.header.Title = title
	s.header.Border = true
	for _, label := range []string{"Total Devices", "Active Devices", "Health", "Locations", "VLANs"} {
		p := widgets.NewParagraph()
		p.Title = label
		s.kpis = append(s.kpis, p)
	}
	s.alerts.Title = dashboard.AlertsTitle
	s.alerts.WrapText = false
	s.cpu.Title = dashboard.CPUTitle
	return s
}

func (s *Screen) ShowSkeleton() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateSkeleton
	s.err = nil
	s.header.Text = "Loading... | " + keyHelp
	s.header.TextStyle = ui.NewStyle(ui.ColorWhite)
	s.header.BorderStyle.Fg = ui.ColorWhite
	for _, p := range s.kpis {
		p.Text = "..."
		p.TextStyle = ui.NewStyle(ui.ColorWhite)
	}
	s.alerts.Rows = []string{"..."}
	s.cpu.Rows = []string{"..."}
	s.draw()
}

func (s *Screen) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateError
	s.err = err
	msg := "Failed to load dashboard"
	if err != nil {
		msg = err.Error()
	}
	s.header.Text = markupSafe(msg) + " | " + keyHelp
	s.header.TextStyle = ui.NewStyle(ui.ColorRed)
	s.header.BorderStyle.Fg = ui.ColorRed
	s.draw()
}

func (s *Screen) ShowOverview(o *dashboard.Overview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateOverview
	s.err = nil

	s.header.Text = fmt.Sprintf("Updated %s | %s", s.now().Format("15:04:05"), keyHelp)
	if o.Skipped > 0 {
		s.header.Text = fmt.Sprintf("%d malformed records skipped | %s", o.Skipped, s.header.Text)
	}
	s.header.TextStyle = ui.NewStyle(ui.ColorWhite)
	s.header.BorderStyle.Fg = ui.ColorWhite

	k := o.KPIs
	values := []string{
		fmt.Sprint(k.TotalDevices),
		fmt.Sprint(k.ActiveDevices),
		fmt.Sprintf("%d%%", k.Health),
		fmt.Sprint(k.Locations),
		fmt.Sprint(k.VLANs),
	}
	for i, p := range s.kpis {
		p.Text = values[i]
		p.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)
	}
	s.kpis[2].TextStyle = ui.NewStyle(toneColor(k.HealthTone), ui.ColorClear, ui.ModifierBold)

	s.alerts.Rows = alertRows(o.Alerts)
	s.cpu.Rows = cpuRows(o.CPU)
	s.draw()
}

// Failed reports whether the screen shows an error
func (s *Screen) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateError
}

// NewChart builds the widget for spec and places it in its slot
func (s *Screen) NewChart(spec dashboard.ChartSpec) (dashboard.Chart, error) {
	if len(spec.Labels) != len(spec.Values) || len(spec.Labels) != len(spec.Colors) {
		return nil, fmt.Errorf("chart %s: %d labels, %d values, %d colors",
			spec.Slot, len(spec.Labels), len(spec.Values), len(spec.Colors))
	}

	var w ui.Drawable
	switch spec.Kind {
	case dashboard.ChartBar:
		w = barWidget(spec)
	case dashboard.ChartDoughnut:
		w = pieWidget(spec)
	default:
		return nil, fmt.Errorf("chart %s: unsupported kind %q", spec.Slot, spec.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.charts[spec.Slot]; live {
		return nil, ferrors.Wrapf(ferrors.ErrChartSlotOccupied, "slot %s", spec.Slot)
	}
	s.charts[spec.Slot] = w
	s.draw()
	return &chartHandle{screen: s, slot: spec.Slot, widget: w}, nil
}

// Charts returns the number of slots holding a chart
func (s *Screen) Charts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.charts)
}

type chartHandle struct {
	screen *Screen
	slot   dashboard.Slot
	widget ui.Drawable
	once   sync.Once
}

func (h *chartHandle) Destroy() {
	h.once.Do(func() {
		h.screen.mu.Lock()
		defer h.screen.mu.Unlock()
		if h.screen.charts[h.slot] == h.widget {
			delete(h.screen.charts, h.slot)
		}
	})
}

// Resize records the terminal size and redraws
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.draw()
}

// Draw redraws the current state
func (s *Screen) Draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draw()
}

func (s *Screen) draw() {
	if s.state == stateBlank || s.render == nil {
		return
	}
	s.render(s.layout())
}

func (s *Screen) layout() *ui.Grid {
	grid := ui.NewGrid()
	grid.SetRect(0, 0, s.width, s.height)

	if s.state == stateError {
		grid.Set(ui.NewRow(1.0, ui.NewCol(1.0, s.header)))
		return grid
	}

	kpiCols := make([]interface{}, len(s.kpis))
	for i, p := range s.kpis {
		kpiCols[i] = ui.NewCol(1.0/float64(len(s.kpis)), p)
	}

	grid.Set(
		ui.NewRow(0.1, ui.NewCol(1.0, s.header)),
		ui.NewRow(0.12, kpiCols...),
		ui.NewRow(0.26,
			ui.NewCol(0.5, s.slot(dashboard.SlotStatus)),
			ui.NewCol(0.5, s.slot(dashboard.SlotVendor)),
		),
		ui.NewRow(0.26,
			ui.NewCol(0.5, s.slot(dashboard.SlotRole)),
			ui.NewCol(0.5, s.slot(dashboard.SlotLocation)),
		),
		ui.NewRow(0.26,
			ui.NewCol(0.5, s.alerts),
			ui.NewCol(0.5, s.cpu),
		),
	)
	return grid
}

// slot returns the chart bound to slot or a placeholder
func (s *Screen) slot(slot dashboard.Slot) ui.Drawable {
	if w, ok := s.charts[slot]; ok {
		return w
	}
	p := widgets.NewParagraph()
	p.Text = "..."
	return p
}

func barWidget(spec dashboard.ChartSpec) ui.Drawable {
	if len(spec.Values) == 0 {
		return emptyChart(spec.Title)
	}
	bc := widgets.NewBarChart()
	bc.Title = spec.Title
	bc.Labels = spec.Labels
	bc.Data = floats(spec.Values)
	bc.BarColors = colors256(spec.Colors)
	bc.BarWidth = 6
	bc.BarGap = 1
	bc.LabelStyles = []ui.Style{ui.NewStyle(ui.ColorWhite)}
	bc.NumStyles = []ui.Style{ui.NewStyle(ui.ColorBlack)}
	bc.NumFormatter = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	return bc
}

func pieWidget(spec dashboard.ChartSpec) ui.Drawable {
	total := 0
	for _, v := range spec.Values {
		total += v
	}
	if total == 0 {
		return emptyChart(spec.Title)
	}

	pc := widgets.NewPieChart()
	pc.Title = spec.Title
	pc.Data = floats(spec.Values)
	pc.Colors = colors256(spec.Colors)
	pc.AngleOffset = -.5 * math.Pi
	labels := spec.Labels
	pc.LabelFormatter = func(i int, v float64) string {
		return fmt.Sprintf("%s %.0f", labels[i], v)
	}
	return pc
}

func emptyChart(title string) ui.Drawable {
	p := widgets.NewParagraph()
	p.Title = title
	p.Text = "No data"
	return p
}

func alertRows(w dashboard.Widget[dashboard.AlertRow]) []string {
	if w.IsEmpty() {
		return []string{w.Empty}
	}
	rows := make([]string, 0, len(w.Rows))
	for _, r := range w.Rows {
		line := fmt.Sprintf("[●](fg:%s) %s", ColorName(r.Color), markupSafe(r.Message))
		if r.Type != "" {
			line += " (" + markupSafe(r.Type) + ")"
		}
		rows = append(rows, line)
	}
	return rows
}

const cpuBarWidth = 20

func cpuRows(w dashboard.Widget[dashboard.CPURow]) []string {
	if w.IsEmpty() {
		return []string{w.Empty}
	}
	rows := make([]string, 0, len(w.Rows))
	for _, r := range w.Rows {
		filled := int(r.Width / 100 * cpuBarWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", cpuBarWidth-filled)
		rows = append(rows, fmt.Sprintf("%-16.16s [%s](fg:%s) %5.1f%%",
			markupSafe(r.Host), bar, ColorName(r.Color), r.CPU))
	}
	return rows
}

func toneColor(t dashboard.Tone) ui.Color {
	switch t {
	case dashboard.ToneDanger:
		return ui.ColorRed
	case dashboard.ToneWarning:
		return ui.ColorYellow
	default:
		return ui.ColorGreen
	}
}

var markupReplacer = strings.NewReplacer("[", "(", "]", ")")

// markupSafe keeps backend text from being parsed as style markup
func markupSafe(s string) string {
	return markupReplacer.Replace(s)
}

func floats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
