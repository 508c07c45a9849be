package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(entries ...Entry) *FrequencyTable {
	t := NewFrequencyTable()
	for _, e := range entries {
		for i := 0; i < e.Count; i++ {
			t.Inc(e.Label)
		}
	}
	return t
}

func TestBucketStatusPreferredOrder(t *testing.T) {
	table := tableOf(Entry{"broken", 1}, Entry{"active", 3})

	got := Bucket(table, DefaultOptions().Status)

	assert.Equal(t, []string{"Active", "Broken"}, displayLabels(Labels(got)))
	assert.Equal(t, []int{3, 1}, Counts(got))
}

func TestBucketStatusRemainderAlphabetical(t *testing.T) {
	table := tableOf(
		Entry{"zombie", 9},
		Entry{"unknown", 1},
		Entry{"offline", 5},
		Entry{"active", 2},
		Entry{"decommissioned", 4},
	)

	got := Bucket(table, Ordering{Preferred: StatusOrder})

	assert.Equal(t, []string{"active", "decommissioned", "unknown", "offline", "zombie"}, Labels(got))
}

func TestBucketVendorOverflow(t *testing.T) {
	entries := make([]Entry, 10)
	for i := range entries {
		entries[i] = Entry{Label: fmt.Sprintf("vendor-%02d", i), Count: 20 - i}
	}
	table := tableOf(entries...)

	got := Bucket(table, Ordering{TopN: 6, Others: true})

	require.Len(t, got, 7)
	assert.Equal(t, OthersLabel, got[6].Label)
	// the four smallest: 14+13+12+11
	assert.Equal(t, 50, got[6].Count)
	assert.Equal(t, "vendor-00", got[0].Label)
}

func TestBucketTopNProperty(t *testing.T) {
	for distinct := 1; distinct <= 12; distinct++ {
		for _, k := range []int{1, 6, 8} {
			t.Run(fmt.Sprintf("distinct=%d/k=%d", distinct, k), func(t *testing.T) {
				entries := make([]Entry, distinct)
				total := 0
				for i := range entries {
					entries[i] = Entry{Label: fmt.Sprintf("l%d", i), Count: (i*7)%5 + 1}
					total += entries[i].Count
				}
				table := tableOf(entries...)

				got := Bucket(table, Ordering{TopN: k, Others: true})

				if distinct <= k {
					assert.Len(t, got, distinct)
					assert.NotContains(t, Labels(got), OthersLabel)
					return
				}
				require.Len(t, got, k+1)
				head := 0
				for _, e := range got[:k] {
					head += e.Count
				}
				assert.Equal(t, OthersLabel, got[k].Label)
				assert.Equal(t, total-head, got[k].Count)
			})
		}
	}
}

func TestBucketStableTies(t *testing.T) {
	table := tableOf(Entry{"c", 2}, Entry{"a", 2}, Entry{"b", 3}, Entry{"d", 2})

	got := Bucket(table, Ordering{})

	assert.Equal(t, []string{"b", "c", "a", "d"}, Labels(got))
}

func TestBucketWithoutOthers(t *testing.T) {
	entries := make([]Entry, 10)
	for i := range entries {
		entries[i] = Entry{Label: fmt.Sprintf("site-%d", i), Count: i + 1}
	}

	got := Bucket(tableOf(entries...), DefaultOptions().Location)

	require.Len(t, got, 8)
	assert.NotContains(t, Labels(got), OthersLabel)
	assert.Equal(t, "site-9", got[0].Label)
}

func TestBucketEmpty(t *testing.T) {
	assert.Empty(t, Bucket(NewFrequencyTable(), Ordering{TopN: 6, Others: true}))
	assert.Empty(t, Bucket(nil, Ordering{Preferred: StatusOrder}))
}

func TestBucketDoesNotMutateTable(t *testing.T) {
	table := tableOf(Entry{"a", 1}, Entry{"b", 5})
	_ = Bucket(table, Ordering{TopN: 1, Others: true})
	assert.Equal(t, []Entry{{"a", 1}, {"b", 5}}, table.Entries())
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Active", DisplayLabel("active"))
	assert.Equal(t, "Éte", DisplayLabel("éte"))
	assert.Equal(t, "", DisplayLabel(""))
	assert.Equal(t, "Others", DisplayLabel("Others"))
}
