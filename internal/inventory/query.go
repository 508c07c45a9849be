package inventory

import (
	"net/url"
	"strconv"
	"strings"
)

// Resource names a collection exposed by the inventory API
type Resource string

const (
	ResourceDevices   Resource = "devices"
	ResourceLocations Resource = "locations"
	ResourceVLANs     Resource = "vlans"
	ResourceEvents    Resource = "events"
	ResourceMetrics   Resource = "metrics"
)

// Query holds the list options the inventory API recognises
type Query struct {
	Limit  int    `json:"limit,omitempty" yaml:"limit,omitempty"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	// Sort is "field" or "field:asc|desc"
	Sort string `json:"sort,omitempty" yaml:"sort,omitempty"`
}

// Values encodes the query the way the API expects it. Sort travels as
// sortby and always carries a direction.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		v.Set("status", s)
	}
	if s := strings.TrimSpace(q.Sort); s != "" {
		v.Set("sortby", normalizeSort(s))
	}
	return v
}

func normalizeSort(sort string) string {
	if i := strings.LastIndexByte(sort, ':'); i >= 0 {
		switch strings.ToLower(sort[i+1:]) {
		case "asc", "desc":
			return sort[:i] + ":" + strings.ToLower(sort[i+1:])
		}
	}
	return sort + ":asc"
}
