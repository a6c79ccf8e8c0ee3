// Package model defines domain types used by the reconciler.
package model

import (
	"bytes"
	"encoding/json"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

// Reserved field names of a product record on the wire.
const (
	FieldRemoteID = "id"
	FieldLocalID  = "_localId"
	FieldUID      = "uid"
	FieldName     = "name"
	FieldPrice    = "price"
)

// RawRecord is a product record as it arrives from the authoritative store
// or from a local creation. RemoteID and LocalID are optional; they are
// validated and normalised only by the identity resolver.
type RawRecord struct {
	RemoteID any
	LocalID  string
	Name     string
	Price    any
	// Extra carries fields the reconciler does not interpret. They are
	// passed through unchanged.
	Extra map[string]any
}

// UnmarshalJSON decodes a JSON object into the record. A client-supplied
// "uid" field is dropped: uids are always derived.
func (r *RawRecord) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = RawRecord{}
	for k, v := range m {
		switch k {
		case FieldRemoteID:
			r.RemoteID = v
		case FieldLocalID:
			if s, ok := v.(string); ok {
				r.LocalID = s
			}
		case FieldName:
			r.Name = nameOf(v)
		case FieldPrice:
			r.Price = v
		case FieldUID:
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}
	return nil
}

func nameOf(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	}
	return ""
}

// Entity is one product held in the collection. UID is derived from
// RemoteID when present, otherwise from LocalID.
type Entity struct {
	RemoteID any
	LocalID  string
	UID      string
	Name     string
	Price    float64
	Extra    map[string]any
}

// HasRemoteID reports whether the authoritative store has assigned an id.
func (e Entity) HasRemoteID() bool { return e.RemoteID != nil }

// Record converts the entity back into a raw record, keeping its identity
// so that resolving it again yields the same uid.
func (e Entity) Record() *RawRecord {
	return &RawRecord{
		RemoteID: e.RemoteID,
		LocalID:  e.LocalID,
		Name:     e.Name,
		Price:    e.Price,
		Extra:    maps.Clone(e.Extra),
	}
}

// MarshalJSON flattens Extra next to the known fields.
func (e Entity) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Extra)+5)
	maps.Copy(m, e.Extra)
	if e.RemoteID != nil {
		m[FieldRemoteID] = e.RemoteID
	}
	if e.LocalID != "" {
		m[FieldLocalID] = e.LocalID
	}
	m[FieldUID] = e.UID
	m[FieldName] = e.Name
	m[FieldPrice] = e.Price
	return json.Marshal(m)
}

// Product is a product as persisted by the reference authoritative store.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreateRequest is the payload sent to the authoritative store on creation.
type CreateRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// CoercePrice turns a price value of any supported type into a float.
// Strings are parsed by their leading numeric part; anything unparseable
// yields 0.
func CoercePrice(v any) float64 {
	switch p := v.(type) {
	case float64:
		return p
	case float32:
		return float64(p)
	case int:
		return float64(p)
	case int64:
		return float64(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return ParsePrice(p)
	}
	return 0
}

// ParsePrice parses price input text, degrading to 0 on failure.
func ParsePrice(s string) float64 {
	prefix := numericPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return f
}
