package dashboard

import (
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// countPaths lists, in order, the places list endpoints have been seen to
// report their total. A top-level "count" is the size of the returned page,
// not of the collection, and is never read.
var countPaths = [][]interface{}{
	{"meta", "total_count"},
	{"meta", "totalCount"},
	{"meta", "total"},
	{"total"},
}

// CountTotal returns the total record count advertised by a list response.
// The first candidate holding a non-negative number wins; anything else,
// including a body that is not JSON at all, yields 0.
func CountTotal(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	for _, path := range countPaths {
		v := jsoniter.Get(raw, path...)
		if v.ValueType() != jsoniter.NumberValue {
			continue
		}
		n := v.ToFloat64()
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			continue
		}
		if n > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(n)
	}
	return 0
}
