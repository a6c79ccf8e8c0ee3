package reconcile

import "github.com/fairyhunter13/product-reconciler/internal/model"

// Collection is an insertion-ordered mapping from uid to entity. Values are
// immutable: every reconciler operation returns a new Collection, so a
// reader holding one never observes a partially applied change. The zero
// value is an empty collection.
type Collection struct {
	order []string
	items map[string]model.Entity
}

func newCollection(capacity int) Collection {
	return Collection{
		order: make([]string, 0, capacity),
		items: make(map[string]model.Entity, capacity),
	}
}

// put inserts e, overwriting in place when its uid is already present.
func (c *Collection) put(e model.Entity) {
	if _, ok := c.items[e.UID]; !ok {
		c.order = append(c.order, e.UID)
	}
	c.items[e.UID] = e
}

// Len returns the number of entities.
func (c Collection) Len() int { return len(c.order) }

// Get returns the entity stored under uid.
func (c Collection) Get(uid string) (model.Entity, bool) {
	e, ok := c.items[uid]
	return e, ok
}

// UIDs returns the uids in collection order.
func (c Collection) UIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Entities returns the entities in collection order.
func (c Collection) Entities() []model.Entity {
	out := make([]model.Entity, 0, len(c.order))
	for _, uid := range c.order {
		out = append(out, c.items[uid])
	}
	return out
}

// Records returns the entities as raw records, identities included.
func (c Collection) Records() []*model.RawRecord {
	out := make([]*model.RawRecord, 0, len(c.order))
	for _, uid := range c.order {
		out = append(out, c.items[uid].Record())
	}
	return out
}

// TotalValue sums the prices of all entities in collection order.
func (c Collection) TotalValue() float64 {
	var sum float64
	for _, uid := range c.order {
		sum += c.items[uid].Price
	}
	return sum
}
