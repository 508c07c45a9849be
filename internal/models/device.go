package models

// Device is a network device as returned by the inventory API
type Device struct {
	ID           ID     `json:"id"`
	Hostname     string `json:"hostname"`
	IP           string `json:"ip"`
	Model        string `json:"model"`
	Vendor       string `json:"vendor"`
	OS           string `json:"os"`
	SerialNumber string `json:"serial_number,omitempty"`
	Status       string `json:"status"`
	Role         string `json:"role,omitempty"`
	RackPosition string `json:"rack_position,omitempty"`
	LocationID   ID     `json:"location_id,omitempty"`
	LastSeen     string `json:"last_seen,omitempty"`
}

// DeviceStatus is one of the lifecycle states the inventory knows about.
// The API does not enforce it; any string may come back.
type DeviceStatus string

const (
	DeviceStatusActive         DeviceStatus = "active"
	DeviceStatusMaintenance    DeviceStatus = "maintenance"
	DeviceStatusDecommissioned DeviceStatus = "decommissioned"
	DeviceStatusUnknown        DeviceStatus = "unknown"
	DeviceStatusOffline        DeviceStatus = "offline"
	DeviceStatusProvisioning   DeviceStatus = "provisioning"
)

// DeviceMetric is a point-in-time resource snapshot for a device
type DeviceMetric struct {
	ID            ID       `json:"id"`
	DeviceID      ID       `json:"device_id"`
	CPU           *float64 `json:"cpu,omitempty"`
	Memory        *float64 `json:"memory,omitempty"`
	Temp          *float64 `json:"temp,omitempty"`
	UptimeSeconds *int64   `json:"uptime_seconds,omitempty"`
	Ts            string   `json:"ts"`
}

// CPUPercent returns the CPU reading, 0 when absent
func (m DeviceMetric) CPUPercent() float64 {
	if m.CPU == nil {
		return 0
	}
	return *m.CPU
}
