package dashboard

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OthersLabel names the overflow bucket
const OthersLabel = "Others"

// StatusOrder is the fixed presentation order of known device statuses
var StatusOrder = []string{"active", "maintenance", "decommissioned", "unknown"}

// Ordering describes how one axis is presented.
//
// With Preferred set, preferred labels come first in the listed order and
// the rest follow alphabetically. Otherwise entries are sorted by count,
// highest first, ties keeping insertion order. TopN > 0 keeps that many
// entries; Others folds a non-zero remainder into one trailing bucket.
type Ordering struct {
	Preferred []string `json:"preferred,omitempty" yaml:"preferred,omitempty"`
	TopN      int      `json:"top_n" yaml:"top_n"`
	Others    bool     `json:"others" yaml:"others"`
}

// Bucket orders and truncates a frequency table for display
func Bucket(t *FrequencyTable, o Ordering) []Entry {
	entries := t.Entries()
	if len(entries) == 0 {
		return []Entry{}
	}

	if len(o.Preferred) > 0 {
		sortPreferred(entries, o.Preferred)
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
	}

	if o.TopN <= 0 || len(entries) <= o.TopN {
		return entries
	}

	rest := 0
	for _, e := range entries[o.TopN:] {
		rest += e.Count
	}
	out := entries[:o.TopN:o.TopN]
	if o.Others && rest > 0 {
		out = append(out, Entry{Label: OthersLabel, Count: rest})
	}
	return out
}

func sortPreferred(entries []Entry, preferred []string) {
	rank := make(map[string]int, len(preferred))
	for i, p := range preferred {
		if _, dup := rank[p]; !dup {
			rank[p] = i
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, iok := rank[entries[i].Label]
		rj, jok := rank[entries[j].Label]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return entries[i].Label < entries[j].Label
		}
	})
}

// Labels extracts the labels of entries
func Labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

// Counts extracts the counts of entries
func Counts(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Count
	}
	return out
}

// DisplayLabel upper-cases the first letter: "active" becomes "Active"
func DisplayLabel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func displayLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = DisplayLabel(strings.TrimSpace(l))
	}
	return out
}
