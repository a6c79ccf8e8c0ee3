package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	httpapi "github.com/fairyhunter13/product-reconciler/internal/http"
	"github.com/fairyhunter13/product-reconciler/internal/queue"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
	"github.com/fairyhunter13/product-reconciler/internal/remote"
	"github.com/fairyhunter13/product-reconciler/internal/session"
	"github.com/fairyhunter13/product-reconciler/internal/state"
	"github.com/fairyhunter13/product-reconciler/internal/store"
)

func TestIntegration_SessionAgainstStore(t *testing.T) {
	cfg := config.Load()
	st := store.New()
	st.Create("Phone", 100)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewApp(cfg, st)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cs := state.New()
	mgr := queue.NewManager(cfg, queue.New(cfg.ApplyBuffer), cs)
	mgr.Start(ctx)
	defer mgr.Stop()
	s := session.New(remote.New(srv.URL, time.Second), reconcile.New(nil), mgr, cs)

	require.NoError(t, s.Load(ctx))
	require.Equal(t, []string{"1"}, s.Collection().UIDs())

	e, err := s.Create(ctx, "Case", "10")
	require.NoError(t, err)
	assert.Equal(t, "2", e.UID)
	assert.Equal(t, []string{"1", "2"}, s.Collection().UIDs())

	require.NoError(t, s.Delete(ctx, "1"))
	assert.Equal(t, []string{"2"}, s.Collection().UIDs())
	assert.Equal(t, 1, st.Len())

	// Another client removed the product already; the retry still succeeds.
	st.Delete(2)
	require.NoError(t, s.Delete(ctx, "2"))
	assert.Equal(t, 0, s.Collection().Len())

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 0, s.Collection().Len())
}

func TestIntegration_StoreDown(t *testing.T) {
	cfg := config.Load()
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewApp(cfg, store.New())))
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cs := state.New()
	mgr := queue.NewManager(cfg, queue.New(cfg.ApplyBuffer), cs)
	mgr.Start(ctx)
	defer mgr.Stop()
	var notified []string
	s := session.New(remote.New(url, 200*time.Millisecond), reconcile.New(nil), mgr, cs,
		session.WithNotify(func(op string, err error) { notified = append(notified, op) }))

	assert.Error(t, s.Load(ctx))
	_, err := s.Create(ctx, "Case", "10")
	assert.Error(t, err)
	assert.Equal(t, 0, s.Collection().Len())
	assert.Equal(t, []string{"load", "create"}, notified)
}
