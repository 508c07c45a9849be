package dashboard

import "math"

// Tone classifies the health score for display
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// KPIs are the summary numbers shown above the charts
type KPIs struct {
	TotalDevices  int  `json:"total_devices"`
	ActiveDevices int  `json:"active_devices"`
	Health        int  `json:"health"`
	HealthTone    Tone `json:"health_tone"`
	Locations     int  `json:"locations"`
	VLANs         int  `json:"vlans"`
}

// HealthScore is the active share of all devices in whole percent. An
// empty inventory is considered fully healthy.
func HealthScore(active, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(active) / float64(total) * 100))
}

func HealthTone(score int) Tone {
	switch {
	case score < 75:
		return ToneDanger
	case score < 90:
		return ToneWarning
	default:
		return ToneSuccess
	}
}

// ComputeKPIs derives the KPI block from a fetched batch
func ComputeKPIs(b Batch) KPIs {
	total := CountTotal(b.Raw(KeyTotalDevices))
	active := CountTotal(b.Raw(KeyActiveDevices))

	locations := CountTotal(b.Raw(KeyLocationsTotal))
	if items, ok := b.Get(KeyLocationList).Items(); ok {
		locations = len(items)
	}

	health := HealthScore(active, total)
	return KPIs{
		TotalDevices:  total,
		ActiveDevices: active,
		Health:        health,
		HealthTone:    HealthTone(health),
		Locations:     locations,
		VLANs:         CountTotal(b.Raw(KeyVLANsTotal)),
	}
}
