package dashboard

import (
	"strings"

	"netinv.sh/internal/models"
)

const (
	AlertsTitle = "Recent Alerts"
	CPUTitle    = "Top CPU Usage"

	NoAlertsMessage  = "No recent alerts"
	NoMetricsMessage = "No metrics data"

	UnknownEvent  = "Unknown Event"
	UnknownDevice = "Unknown Device"
)

// Widget is a titled list of rows with a message for the empty case
type Widget[T any] struct {
	Title string `json:"title"`
	Rows  []T    `json:"rows"`
	Empty string `json:"empty"`
}

func (w Widget[T]) IsEmpty() bool {
	return len(w.Rows) == 0
}

// AlertRow is one line of the alerts leaderboard
type AlertRow struct {
	ID        models.ID `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type,omitempty"`
	Message   string    `json:"message"`
	DeviceID  models.ID `json:"device_id,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
	Color     string    `json:"color"`
}

// CPURow is one line of the CPU leaderboard. Width is the bar length in
// percent, clamped to 0-100.
type CPURow struct {
	DeviceID models.ID `json:"device_id,omitempty"`
	Host     string    `json:"host"`
	CPU      float64   `json:"cpu"`
	Width    float64   `json:"width"`
	Color    string    `json:"color"`
}

// AlertsWidget maps events, already sorted newest first, to leaderboard rows
func AlertsWidget(events []models.Event) Widget[AlertRow] {
	w := Widget[AlertRow]{Title: AlertsTitle, Empty: NoAlertsMessage, Rows: make([]AlertRow, 0, len(events))}
	for _, e := range events {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = UnknownEvent
		}
		w.Rows = append(w.Rows, AlertRow{
			ID:        e.ID,
			Severity:  strings.ToLower(strings.TrimSpace(e.Severity)),
			Type:      e.Type,
			Message:   msg,
			DeviceID:  e.DeviceID,
			CreatedAt: e.CreatedAt,
			Color:     SeverityColor(e.Severity),
		})
	}
	return w
}

// SeverityColor maps an event severity to its display colour
func SeverityColor(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical", "error":
		return ColorRed
	case "warning":
		return ColorAmber
	default:
		return ColorBlue
	}
}

// CPUWidget maps metrics, already sorted by CPU descending, to leaderboard
// rows, resolving hostnames from devices.
func CPUWidget(samples []models.DeviceMetric, devices []models.Device) Widget[CPURow] {
	hosts := make(map[models.ID]string, len(devices))
	for _, d := range devices {
		if d.ID != "" && strings.TrimSpace(d.Hostname) != "" {
			hosts[d.ID] = d.Hostname
		}
	}

	w := Widget[CPURow]{Title: CPUTitle, Empty: NoMetricsMessage, Rows: make([]CPURow, 0, len(samples))}
	for _, m := range samples {
		cpu := m.CPUPercent()
		w.Rows = append(w.Rows, CPURow{
			DeviceID: m.DeviceID,
			Host:     hostFor(m.DeviceID, hosts),
			CPU:      cpu,
			Width:    clamp(cpu, 0, 100),
			Color:    CPUColor(cpu),
		})
	}
	return w
}

// CPUColor maps a CPU percentage to its bar colour
func CPUColor(cpu float64) string {
	switch {
	case cpu > 80:
		return ColorRed
	case cpu >= 50:
		return ColorAmber
	default:
		return ColorGreen
	}
}

func hostFor(id models.ID, hosts map[models.ID]string) string {
	if h, ok := hosts[id]; ok {
		return h
	}
	if id != "" {
		return string(id)
	}
	return UnknownDevice
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v != v:
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
