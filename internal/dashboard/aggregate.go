package dashboard

import (
	"strings"

	"netinv.sh/internal/models"
)

// Fallback labels used when a device field is blank
const (
	UnknownStatus  = "unknown"
	UnknownRole    = "unknown"
	UnknownVendor  = "Unknown"
	UnassignedSite = "Unassigned"
)

// Entry is one (label, count) pair
type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FrequencyTable counts occurrences per label and remembers the order in
// which labels were first seen.
type FrequencyTable struct {
	index   map[string]int
	entries []Entry
	total   int
}

func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{index: make(map[string]int)}
}

// Inc adds one occurrence of label
func (t *FrequencyTable) Inc(label string) {
	if i, ok := t.index[label]; ok {
		t.entries[i].Count++
	} else {
		t.index[label] = len(t.entries)
		t.entries = append(t.entries, Entry{Label: label, Count: 1})
	}
	t.total++
}

func (t *FrequencyTable) Count(label string) int {
	if t == nil {
		return 0
	}
	if i, ok := t.index[label]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct labels
func (t *FrequencyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Total returns the sum of all counts
func (t *FrequencyTable) Total() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Entries returns a copy of the entries in insertion order
func (t *FrequencyTable) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

// Aggregates holds the four per-device histograms of one load
type Aggregates struct {
	Devices  int             `json:"devices"`
	Status   *FrequencyTable `json:"status"`
	Vendor   *FrequencyTable `json:"vendor"`
	Role     *FrequencyTable `json:"role"`
	Location *FrequencyTable `json:"location"`
}

// Aggregate walks devices once and counts them by status, vendor, role and
// resolved location name. Every device lands in exactly one bucket of each
// table.
func Aggregate(devices []models.Device, locations []models.Location) Aggregates {
	names := make(map[models.ID]string, len(locations))
	for _, loc := range locations {
		if loc.ID == "" {
			continue
		}
		names[loc.ID] = loc.DisplayName()
	}

	agg := Aggregates{
		Devices:  len(devices),
		Status:   NewFrequencyTable(),
		Vendor:   NewFrequencyTable(),
		Role:     NewFrequencyTable(),
		Location: NewFrequencyTable(),
	}

	for _, d := range devices {
		agg.Status.Inc(lowerOr(d.Status, UnknownStatus))
		agg.Vendor.Inc(trimOr(d.Vendor, UnknownVendor))
		agg.Role.Inc(lowerOr(d.Role, UnknownRole))
		agg.Location.Inc(locationName(d.LocationID, names))
	}

	return agg
}

func locationName(id models.ID, names map[models.ID]string) string {
	key := models.ID(strings.TrimSpace(string(id)))
	if key == "" {
		return UnassignedSite
	}
	if name, ok := names[key]; ok {
		return name
	}
	// orphaned reference
	return string(key)
}

func lowerOr(s, fallback string) string {
	if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
		return s
	}
	return fallback
}

func trimOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
