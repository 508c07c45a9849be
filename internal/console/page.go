package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"

	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/ferrors"
)

type pageState int

const (
	stateBlank pageState = iota
	stateSkeleton
	stateError
	stateOverview
)

// Page is a server-rendered dashboard document. It is both the Container
// the dashboard draws into and the factory for the charts on it; a chart
// binds its option document to one slot until destroyed.
type Page struct {
	mu       sync.Mutex
	title    string
	state    pageState
	overview *dashboard.Overview
	err      error
	options  map[dashboard.Slot][]byte
	now      func() time.Time
}

func NewPage(title string) *Page {
	if title == "" {
		title = "Network Inventory"
	}
	return &Page{
		title:   title,
		options: make(map[dashboard.Slot][]byte, len(dashboard.Slots)),
		now:     time.Now,
	}
}

func (p *Page) ShowSkeleton() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateSkeleton
	p.overview = nil
	p.err = nil
}

func (p *Page) ShowError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateError
	p.err = err
}

func (p *Page) ShowOverview(o *dashboard.Overview) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateOverview
	p.overview = o
	p.err = nil
}

// Failed reports whether the page currently shows an error
func (p *Page) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateError
}

// NewChart binds the chart described by spec to its slot
func (p *Page) NewChart(spec dashboard.ChartSpec) (dashboard.Chart, error) {
	option, err := chartOption(spec)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, live := p.options[spec.Slot]; live {
		return nil, ferrors.Wrapf(ferrors.ErrChartSlotOccupied, "slot %s", spec.Slot)
	}
	p.options[spec.Slot] = option
	return &chartHandle{page: p, slot: spec.Slot}, nil
}

// Bound returns the number of slots holding a chart
func (p *Page) Bound() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.options)
}

type chartHandle struct {
	page *Page
	slot dashboard.Slot
	once sync.Once
}

func (h *chartHandle) Destroy() {
	h.once.Do(func() {
		h.page.mu.Lock()
		delete(h.page.options, h.slot)
		h.page.mu.Unlock()
	})
}

// Render writes the page as an HTML document
func (p *Page) Render(w io.Writer) error {
	return p.Node().Render(w)
}

// Node builds the document for the current state
func (p *Page) Node() g.Node {
	p.mu.Lock()
	defer p.mu.Unlock()

	var body g.Node
	switch p.state {
	case stateError:
		body = errorPanel(p.err)
	case stateOverview:
		body = p.overviewNode()
	default:
		body = skeleton()
	}

	return components.HTML5(components.HTML5Props{
		Title:    p.title,
		Language: "en",
		Head: []g.Node{
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.StyleEl(g.Raw(pageCSS)),
			html.Script(html.Src(echartsScript), html.Defer()),
		},
		Body: []g.Node{
			html.Header(
				html.Class("topbar"),
				html.H1(g.Text(p.title)),
				html.Span(html.Class("muted"), g.Textf("Updated %s", p.now().Format("15:04:05"))),
			),
			html.Main(html.ID("dashboard"), body),
			html.Script(g.Raw(initScript)),
		},
	})
}

func (p *Page) overviewNode() g.Node {
	o := p.overview
	return g.Group([]g.Node{
		kpiGrid(o.KPIs),
		g.If(o.Skipped > 0,
			html.P(html.Class("notice"), g.Textf("%d malformed records were skipped", o.Skipped)),
		),
		html.Section(
			html.Class("charts"),
			g.Map(dashboard.Slots, func(slot dashboard.Slot) g.Node {
				return p.chartPanel(slot)
			}),
		),
		html.Section(
			html.Class("widgets"),
			alertsPanel(o.Alerts),
			cpuPanel(o.CPU),
		),
	})
}

func (p *Page) chartPanel(slot dashboard.Slot) g.Node {
	option, live := p.options[slot]
	return html.Div(
		html.Class("card chart-card"),
		html.Div(html.ID(string(slot)), html.Class("chart"), g.If(live, g.Attr("data-chart", ""))),
		g.If(live,
			html.Script(html.Type("application/json"), html.ID(string(slot)+"-option"), g.Raw(string(option))),
		),
	)
}

func kpiGrid(k dashboard.KPIs) g.Node {
	return html.Section(
		html.Class("kpis"),
		kpiCard("Total Devices", fmt.Sprint(k.TotalDevices), ""),
		kpiCard("Active Devices", fmt.Sprint(k.ActiveDevices), ""),
		kpiCard("Health", fmt.Sprintf("%d%%", k.Health), string(k.HealthTone)),
		kpiCard("Locations", fmt.Sprint(k.Locations), ""),
		kpiCard("VLANs", fmt.Sprint(k.VLANs), ""),
	)
}

func kpiCard(label, value, tone string) g.Node {
	return html.Div(
		html.Class("card kpi"),
		html.Div(html.Class("kpi-label"), g.Text(label)),
		html.Div(html.Class("kpi-value "+tone), g.Text(value)),
	)
}

func alertsPanel(w dashboard.Widget[dashboard.AlertRow]) g.Node {
	if w.IsEmpty() {
		return widgetCard(w.Title, html.P(html.Class("empty"), g.Text(w.Empty)))
	}
	return widgetCard(w.Title, html.Ul(
		html.Class("rows"),
		g.Map(w.Rows, func(r dashboard.AlertRow) g.Node {
			return html.Li(
				html.Span(html.Class("dot"), html.Style("background:"+r.Color)),
				html.Span(html.Class("grow"), g.Text(r.Message)),
				g.If(r.Type != "", html.Span(html.Class("muted"), g.Text(r.Type))),
				g.If(r.CreatedAt != "", html.Time(html.DateTime(r.CreatedAt), html.Class("muted"), g.Text(r.CreatedAt))),
			)
		}),
	))
}

func cpuPanel(w dashboard.Widget[dashboard.CPURow]) g.Node {
	if w.IsEmpty() {
		return widgetCard(w.Title, html.P(html.Class("empty"), g.Text(w.Empty)))
	}
	return widgetCard(w.Title, html.Ul(
		html.Class("rows"),
		g.Map(w.Rows, func(r dashboard.CPURow) g.Node {
			return html.Li(
				html.Span(html.Class("host"), g.Text(r.Host)),
				html.Div(
					html.Class("bar"),
					html.Div(html.Class("fill"), html.Style(fmt.Sprintf("width:%.1f%%;background:%s", r.Width, r.Color))),
				),
				html.Span(html.Class("pct"), g.Textf("%.1f%%", r.CPU)),
			)
		}),
	))
}

func widgetCard(title string, content g.Node) g.Node {
	return html.Div(
		html.Class("card widget"),
		html.H2(g.Text(title)),
		content,
	)
}

func errorPanel(err error) g.Node {
	msg := "Failed to load dashboard"
	if err != nil {
		msg = err.Error()
	}
	return html.Div(
		html.Class("card error"),
		html.Role("alert"),
		html.P(g.Text(msg)),
		html.A(html.Href(""), g.Text("Retry")),
	)
}

func skeleton() g.Node {
	cards := make([]g.Node, 5)
	for i := range cards {
		cards[i] = html.Div(html.Class("card kpi skeleton"))
	}
	return g.Group([]g.Node{
		html.Section(html.Class("kpis"), g.Group(cards)),
		html.Section(
			html.Class("charts"),
			g.Map(dashboard.Slots, func(dashboard.Slot) g.Node {
				return html.Div(html.Class("card chart-card skeleton"))
			}),
		),
	})
}

// initScript disposes any chart already attached to a slot before
// initialising a new one.
const initScript = `document.addEventListener("DOMContentLoaded", function () {
  if (!window.echarts) { return; }
  document.querySelectorAll("[data-chart]").forEach(function (el) {
    var prev = echarts.getInstanceByDom(el);
    if (prev) { prev.dispose(); }
    var src = document.getElementById(el.id + "-option");
    if (!src) { return; }
    echarts.init(el).setOption(JSON.parse(src.textContent));
  });
  window.addEventListener("resize", function () {
    document.querySelectorAll("[data-chart]").forEach(function (el) {
      var c = echarts.getInstanceByDom(el);
      if (c) { c.resize(); }
    });
  });
});`

const pageCSS = `
body{margin:0;font-family:system-ui,sans-serif;background:#f8fafc;color:#0f172a}
.topbar{display:flex;align-items:baseline;gap:1rem;padding:1rem 1.5rem;border-bottom:1px solid #e2e8f0;background:#fff}
.topbar h1{font-size:1.25rem;margin:0}
main{padding:1.5rem;display:grid;gap:1.5rem}
.card{background:#fff;border:1px solid #e2e8f0;border-radius:.5rem;padding:1rem}
.kpis{display:grid;grid-template-columns:repeat(auto-fit,minmax(10rem,1fr));gap:1rem}
.kpi-label{font-size:.8rem;color:#64748b}
.kpi-value{font-size:1.75rem;font-weight:600}
.kpi-value.success{color:#10b981}.kpi-value.warning{color:#f59e0b}.kpi-value.danger{color:#ef4444}
.charts,.widgets{display:grid;grid-template-columns:repeat(auto-fit,minmax(22rem,1fr));gap:1rem}
.chart{height:20rem}
.skeleton{min-height:5rem;background:linear-gradient(90deg,#f1f5f9,#e2e8f0,#f1f5f9)}
.chart-card.skeleton{min-height:20rem}
.rows{list-style:none;margin:0;padding:0}
.rows li{display:flex;align-items:center;gap:.5rem;padding:.4rem 0;border-bottom:1px solid #f1f5f9}
.dot{width:.6rem;height:.6rem;border-radius:50%;flex:none}
.grow{flex:1}
.host{width:9rem;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.bar{flex:1;height:.5rem;background:#f1f5f9;border-radius:.25rem}
.fill{height:100%;border-radius:.25rem}
.pct{width:4rem;text-align:right}
.muted,.empty{color:#64748b;font-size:.85rem}
.notice{color:#b45309}
.error{border-color:#fecaca;color:#b91c1c}
`
