package state

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/product-reconciler/internal/model"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
)

var rec = reconcile.New(nil)

func addRemote(id string) func(reconcile.Collection) reconcile.Collection {
	return func(c reconcile.Collection) reconcile.Collection {
		return rec.UpsertOne(c, &model.RawRecord{RemoteID: json.Number(id), Name: id})
	}
}

func TestApplyAndSnapshot(t *testing.T) {
	s := New()
	c, v := s.Snapshot()
	assert.Equal(t, 0, c.Len())
	assert.Zero(t, v)

	require.True(t, s.Apply(1, addRemote("1")))
	require.True(t, s.Apply(2, addRemote("2")))
	c, v = s.Snapshot()
	assert.Equal(t, []string{"1", "2"}, c.UIDs())
	assert.Equal(t, uint64(2), v)
}

func TestApplyDropsRedelivery(t *testing.T) {
	s := New()
	require.True(t, s.Apply(2, addRemote("1")))
	assert.False(t, s.Apply(2, addRemote("2")))
	assert.False(t, s.Apply(1, addRemote("3")))
	assert.True(t, s.Apply(0, addRemote("4")))
	c, _ := s.Snapshot()
	assert.Equal(t, []string{"1", "4"}, c.UIDs())
}

func TestSubscribe(t *testing.T) {
	s := New()
	var got []uint64
	unsubscribe := s.Subscribe(func(c reconcile.Collection, v uint64) {
		got = append(got, v)
		assert.Equal(t, int(v), c.Len())
	})
	s.Apply(1, addRemote("1"))
	s.Apply(2, addRemote("2"))
	unsubscribe()
	s.Apply(3, addRemote("3"))
	assert.Equal(t, []uint64{1, 2}, got)
}

func TestCreateFlag(t *testing.T) {
	s := New()
	assert.True(t, s.TryBeginCreate())
	assert.False(t, s.TryBeginCreate())
	assert.True(t, s.Creating())
	s.EndCreate()
	assert.False(t, s.Creating())
	assert.True(t, s.TryBeginCreate())
}

func TestConcurrentApply(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Apply(0, func(c reconcile.Collection) reconcile.Collection {
				return rec.UpsertOne(c, &model.RawRecord{Name: "local"})
			})
		}()
	}
	wg.Wait()
	c, v := s.Snapshot()
	assert.Equal(t, 50, c.Len())
	assert.Equal(t, uint64(50), v)
}
