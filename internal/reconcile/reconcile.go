// Package reconcile maintains the canonical product collection.
//
// Records from the initial load, creation responses and deletions are
// merged into a single collection keyed by uid. Within one pass the last
// record for a uid wins, and it takes the position where that uid was
// first seen.
package reconcile

import (
	"github.com/fairyhunter13/product-reconciler/internal/identity"
	"github.com/fairyhunter13/product-reconciler/internal/model"
)

// Reconciler applies batches, single upserts and removals to collections.
// It holds no collection itself; callers own the current version.
type Reconciler struct {
	ids *identity.Resolver
}

// New returns a Reconciler resolving identities with ids. A nil resolver
// uses identity.New().
func New(ids *identity.Resolver) *Reconciler {
	if ids == nil {
		ids = identity.New()
	}
	return &Reconciler{ids: ids}
}

// IngestBatch builds a fresh collection from raws. Nil and unusable records
// are skipped.
func (r *Reconciler) IngestBatch(raws []*model.RawRecord) Collection {
	c := newCollection(len(raws))
	for _, raw := range raws {
		if !identity.Usable(raw) {
			continue
		}
		c.put(r.ids.Resolve(*raw))
	}
	return c
}

// UpsertOne appends raw to the records of c and re-runs IngestBatch over
// the result. The size grows by one unless raw's uid is already present, in
// which case that entry's fields are replaced in place.
func (r *Reconciler) UpsertOne(c Collection, raw *model.RawRecord) Collection {
	if !identity.Usable(raw) {
		return c
	}
	return r.IngestBatch(append(c.Records(), raw))
}

// Remove drops the entity with uid, keeping the relative order of the rest.
// Removing an absent uid returns c unchanged.
func (r *Reconciler) Remove(c Collection, uid string) Collection {
	if _, ok := c.items[uid]; !ok {
		return c
	}
	out := newCollection(len(c.order) - 1)
	for _, u := range c.order {
		if u != uid {
			out.put(c.items[u])
		}
	}
	return out
}

// Confirm re-keys the local row localUID with the store's confirmation raw.
// The confirmed entity takes the local row's position and any other row
// already holding the confirmed uid is dropped, so the logical entity is
// never duplicated. A confirmation without a remote id keeps the local id
// unless it carries a valid local id of its own.
// When localUID is absent, Confirm behaves like UpsertOne.
func (r *Reconciler) Confirm(c Collection, localUID string, raw *model.RawRecord) Collection {
	if !identity.Usable(raw) {
		return c
	}
	if _, ok := c.items[localUID]; !ok {
		return r.UpsertOne(c, raw)
	}
	rec := *raw
	if rec.RemoteID == nil && !identity.ValidLocalID(rec.LocalID) {
		rec.LocalID = localUID
	}
	confirmed := r.ids.Resolve(rec)
	out := newCollection(len(c.order))
	for _, u := range c.order {
		switch u {
		case localUID:
			out.put(confirmed)
		case confirmed.UID:
		default:
			out.put(c.items[u])
		}
	}
	return out
}
