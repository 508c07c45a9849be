package models

import "strings"

// Location is a site that devices can be assigned to
type Location struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	Address  string   `json:"address,omitempty"`
	SiteCode string   `json:"site_code,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// DisplayName returns the label used for the location on charts:
// the site code, then the name, then the raw id.
func (l Location) DisplayName() string {
	if s := strings.TrimSpace(l.SiteCode); s != "" {
		return s
	}
	if s := strings.TrimSpace(l.Name); s != "" {
		return s
	}
	return string(l.ID)
}

// VLAN is a layer-2 segment. The dashboard only counts them.
type VLAN struct {
	ID          ID     `json:"id"`
	VlanID      int    `json:"vlan_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LocationID  ID     `json:"location_id,omitempty"`
	SubnetCIDR  string `json:"subnet_cidr,omitempty"`
}
