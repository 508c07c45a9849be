package console

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	jsoniter "github.com/json-iterator/go"

	"netinv.sh/internal/dashboard"
)

// EChartsCDN is where the page loads the charting runtime from
const EChartsCDN = "https://cdn.jsdelivr.net"

const echartsScript = EChartsCDN + "/npm/echarts@5.5.1/dist/echarts.min.js"

// json escapes <, > and & so option documents can sit inside <script>
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// chartOption renders spec as an ECharts option document
func chartOption(spec dashboard.ChartSpec) ([]byte, error) {
	if len(spec.Labels) != len(spec.Values) || len(spec.Labels) != len(spec.Colors) {
		return nil, fmt.Errorf("chart %s: %d labels, %d values, %d colors",
			spec.Slot, len(spec.Labels), len(spec.Values), len(spec.Colors))
	}

	switch spec.Kind {
	case dashboard.ChartBar:
		return json.Marshal(barOption(spec).JSON())
	case dashboard.ChartDoughnut:
		return json.Marshal(doughnutOption(spec).JSON())
	default:
		return nil, fmt.Errorf("chart %s: unsupported kind %q", spec.Slot, spec.Kind)
	}
}

func barOption(spec dashboard.ChartSpec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: string(spec.Slot)}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)

	data := make([]opts.BarData, len(spec.Values))
	for i, v := range spec.Values {
		data[i] = opts.BarData{
			Name:      spec.Labels[i],
			Value:     v,
			ItemStyle: &opts.ItemStyle{Color: spec.Colors[i]},
		}
	}

	series := spec.Series
	if series == "" {
		series = spec.Title
	}
	bar.SetXAxis(spec.Labels).AddSeries(series, data)
	bar.Validate()
	return bar
}

func doughnutOption(spec dashboard.ChartSpec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: string(spec.Slot)}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)

	data := make([]opts.PieData, len(spec.Values))
	for i, v := range spec.Values {
		data[i] = opts.PieData{
			Name:      spec.Labels[i],
			Value:     v,
			ItemStyle: &opts.ItemStyle{Color: spec.Colors[i]},
		}
	}

	pie.AddSeries(spec.Title, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"45%", "70%"}}),
	)
	pie.Validate()
	return pie
}
