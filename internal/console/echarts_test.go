package console

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinv.sh/internal/dashboard"
)

func TestChartOption_Bar(t *testing.T) {
	raw, err := chartOption(dashboard.ChartSpec{
		Slot:   dashboard.SlotStatus,
		Kind:   dashboard.ChartBar,
		Title:  "Devices by Status",
		Labels: []string{"Active", "Offline"},
		Values: []int{4, 1},
		Colors: []string{"#10b981", "#ef4444"},
	})
	require.NoError(t, err)

	assert.Equal(t, "bar", jsoniter.Get(raw, "series", 0, "type").ToString())
	assert.Equal(t, "Active", jsoniter.Get(raw, "series", 0, "data", 0, "name").ToString())
	assert.Equal(t, 1, jsoniter.Get(raw, "series", 0, "data", 1, "value").ToInt())
	assert.Equal(t, "#ef4444", jsoniter.Get(raw, "series", 0, "data", 1, "itemStyle", "color").ToString())
}

func TestChartOption_Doughnut(t *testing.T) {
	raw, err := chartOption(dashboard.ChartSpec{
		Slot:   dashboard.SlotVendor,
		Kind:   dashboard.ChartDoughnut,
		Title:  "Devices by Vendor",
		Labels: []string{"Cisco", "Juniper"},
		Values: []int{3, 2},
		Colors: []string{"#111111", "#222222"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pie", jsoniter.Get(raw, "series", 0, "type").ToString())
	assert.Equal(t, "45%", jsoniter.Get(raw, "series", 0, "radius", 0).ToString())
	assert.Equal(t, "Juniper", jsoniter.Get(raw, "series", 0, "data", 1, "name").ToString())
}

func TestChartOption_EscapesMarkup(t *testing.T) {
	raw, err := chartOption(dashboard.ChartSpec{
		Slot:   dashboard.SlotRole,
		Kind:   dashboard.ChartDoughnut,
		Labels: []string{"</script><b>"},
		Values: []int{1},
		Colors: []string{"#000000"},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "</script>")
}

func TestChartOption_Invalid(t *testing.T) {
	_, err := chartOption(dashboard.ChartSpec{
		Slot:   dashboard.SlotRole,
		Kind:   dashboard.ChartBar,
		Labels: []string{"a"},
		Values: []int{1, 2},
		Colors: []string{"#000000"},
	})
	assert.Error(t, err)

	_, err = chartOption(dashboard.ChartSpec{Slot: dashboard.SlotRole, Kind: "radar"})
	assert.Error(t, err)
}
