package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// keySet builds a lookup of JSON member names.
func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// splitExtra returns the members of the JSON object b whose names are not
// in known, or nil when there are none.
func splitExtra(b []byte, known map[string]bool) (bson.M, error) {
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	var extra bson.M
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = bson.M{}
		}
		extra[k] = v
	}
	return extra, nil
}

// withExtra flattens extra into the encoded object b. Members already in b
// win.
func withExtra(b []byte, extra bson.M) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := out[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// stripKnown drops the members of extra that collide with known fields, so
// an inline bson map never shadows a struct field.
func stripKnown(extra bson.M, known map[string]bool) bson.M {
	for k := range extra {
		if known[k] {
			delete(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// OrderExtra returns the members of a checkout body that Order does not model.
func OrderExtra(b []byte) (bson.M, error) { return splitExtra(b, orderKnownKeys) }

// PaymentExtra returns the members of a payment body that Payment does not model.
func PaymentExtra(b []byte) (bson.M, error) { return splitExtra(b, paymentKnownKeys) }
