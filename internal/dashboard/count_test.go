package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "meta total_count", raw: `{"meta":{"total_count":5}}`, want: 5},
		{name: "meta totalCount", raw: `{"meta":{"totalCount":7}}`, want: 7},
		{name: "empty object", raw: `{}`, want: 0},
		{name: "top-level total", raw: `{"total":3}`, want: 3},
		{name: "meta total", raw: `{"meta":{"total":11}}`, want: 11},
		{name: "page count ignored", raw: `{"status":"success","count":1,"data":[{"id":1}]}`, want: 0},
		{name: "total_count wins over total", raw: `{"meta":{"total_count":2},"total":9}`, want: 2},
		{name: "string value skipped", raw: `{"meta":{"total_count":"5"},"total":6}`, want: 6},
		{name: "negative skipped", raw: `{"meta":{"total_count":-1},"total":8}`, want: 8},
		{name: "null skipped", raw: `{"meta":{"total_count":null}}`, want: 0},
		{name: "meta not an object", raw: `{"meta":"nope","total":1}`, want: 1},
		{name: "fraction truncated", raw: `{"total":3.9}`, want: 3},
		{name: "not json", raw: `<html>`, want: 0},
		{name: "array body", raw: `[1,2,3]`, want: 0},
		{name: "empty body", raw: ``, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, CountTotal([]byte(tt.raw)))
			})
		})
	}
}
