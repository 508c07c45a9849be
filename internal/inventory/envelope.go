package inventory

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the body returned by a list endpoint. Endpoints do not agree
// on one shape, so the raw bytes are kept and read on demand.
type Envelope struct {
	Resource Resource
	Raw      []byte
}

// Items returns the elements of the top-level data array. ok is false when
// the body has no data array at all.
func (e *Envelope) Items() (items []jsoniter.RawMessage, ok bool) {
	if e == nil || len(e.Raw) == 0 {
		return nil, false
	}
	if jsoniter.Get(e.Raw, "data").ValueType() != jsoniter.ArrayValue {
		return nil, false
	}

	var body struct {
		Data []jsoniter.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(e.Raw, &body); err != nil {
		return nil, false
	}
	return body.Data, true
}

// DecodeData decodes each element of the data array into T. Elements that
// do not decode are skipped and counted.
func DecodeData[T any](e *Envelope) (out []T, skipped int) {
	items, _ := e.Items()
	out = make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
