package models

// Event is an alert raised against a device, interface, or location
// (device_down, link_flap, high_cpu, ...)
type Event struct {
	ID             ID     `json:"id"`
	Severity       string `json:"severity"` // critical, error, warning, info, ...
	Type           string `json:"type"`
	Message        string `json:"message"`
	DeviceID       ID     `json:"device_id,omitempty"`
	InterfaceID    string `json:"interface_id,omitempty"`
	LocationID     ID     `json:"location_id,omitempty"`
	CreatedAt      string `json:"created_at"`
	AcknowledgedAt string `json:"acknowledged_at,omitempty"`
}
