// Package identity stamps raw product records with a stable uid.
//
// A record that carries a remote id is keyed by the stringified remote id.
// Otherwise it is keyed by a process-local id, reused when the record
// already carries one and generated otherwise. The uid is never read from
// input.
package identity

import (
	"encoding/hex"
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/product-reconciler/internal/model"
)

// LocalPrefix marks generated local ids. Remote keys never carry it, so a
// local id cannot collide with a remote-backed uid.
const LocalPrefix = "_local_"

// NewLocalID returns a process-unique local id built from the current
// unix millisecond and 128 random bits.
func NewLocalID() string {
	u := uuid.New()
	return LocalPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + hex.EncodeToString(u[:])
}

// ValidLocalID reports whether id has the shape of a generated local id.
func ValidLocalID(id string) bool {
	return len(id) > len(LocalPrefix) && strings.HasPrefix(id, LocalPrefix)
}

// Resolver resolves raw records into entities.
type Resolver struct {
	newID func() string
}

// New returns a resolver using NewLocalID.
func New() *Resolver { return &Resolver{newID: NewLocalID} }

// NewWithGenerator returns a resolver with a custom local id generator.
func NewWithGenerator(gen func() string) *Resolver {
	if gen == nil {
		gen = NewLocalID
	}
	return &Resolver{newID: gen}
}

// Usable reports whether raw can be resolved at all. Nil records and
// records whose remote id has no usable string form are skipped by callers.
func Usable(raw *model.RawRecord) bool {
	if raw == nil {
		return false
	}
	if raw.RemoteID == nil {
		return true
	}
	_, ok := RemoteKey(raw.RemoteID)
	return ok
}

// Resolve stamps raw with its uid. Exactly one of RemoteID and LocalID is
// set on the result; RemoteID wins when both are present. A LocalID without
// LocalPrefix is replaced by a fresh one.
func (r *Resolver) Resolve(raw model.RawRecord) model.Entity {
	e := model.Entity{
		Name:  raw.Name,
		Price: model.CoercePrice(raw.Price),
		Extra: maps.Clone(raw.Extra),
	}
	if key, ok := RemoteKey(raw.RemoteID); ok {
		e.RemoteID = raw.RemoteID
		e.UID = key
		return e
	}
	e.LocalID = raw.LocalID
	if !ValidLocalID(e.LocalID) {
		e.LocalID = r.newID()
	}
	e.UID = e.LocalID
	return e
}

// RemoteKey stringifies a remote id. Integral numbers render without a
// fraction or exponent; empty strings, booleans and composite values have
// no key.
func RemoteKey(id any) (string, bool) {
	switch v := id.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		return s, s != "" && !strings.HasPrefix(s, LocalPrefix)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		f, err := v.Float64()
		if err != nil {
			return "", false
		}
		return formatFloat(f)
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return formatFloat(v)
	}
	return "", false
}

func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
