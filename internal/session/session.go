// Package session drives one client's view of the product collection:
// it performs the remote load, create and delete calls and applies their
// completions through the reconciler.
package session

import (
	"context"
	"strings"

	"github.com/fairyhunter13/product-reconciler/internal/errors"
	"github.com/fairyhunter13/product-reconciler/internal/identity"
	"github.com/fairyhunter13/product-reconciler/internal/model"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
	"github.com/fairyhunter13/product-reconciler/internal/queue"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
	"github.com/fairyhunter13/product-reconciler/internal/state"
)

// Remote is the authoritative store as seen by a session.
type Remote interface {
	List(ctx context.Context) ([]*model.RawRecord, error)
	Create(ctx context.Context, req model.CreateRequest) (*model.RawRecord, error)
	Delete(ctx context.Context, remoteKey string) error
}

// ConfirmFunc asks the user whether e may be deleted.
type ConfirmFunc func(e model.Entity) bool

// NotifyFunc presents a failed operation to the user.
type NotifyFunc func(op string, err error)

// Option configures a Session.
type Option func(*Session)

// WithConfirm sets the delete confirmation hook. Without one every delete
// is confirmed.
func WithConfirm(f ConfirmFunc) Option { return func(s *Session) { s.confirm = f } }

// WithNotify sets the failure notification hook.
func WithNotify(f NotifyFunc) Option { return func(s *Session) { s.notify = f } }

// WithLocalIDs replaces the generator of optimistic local ids. Generated
// ids must start with identity.LocalPrefix.
func WithLocalIDs(gen func() string) Option { return func(s *Session) { s.newID = gen } }

// Session is safe for concurrent use; all collection changes go through
// the manager's single worker.
type Session struct {
	remote  Remote
	rec     *reconcile.Reconciler
	mgr     *queue.Manager
	st      *state.Container
	confirm ConfirmFunc
	notify  NotifyFunc
	newID   func() string
}

// New creates a session. mgr must apply to st and be started.
func New(remote Remote, rec *reconcile.Reconciler, mgr *queue.Manager, st *state.Container, opts ...Option) *Session {
	s := &Session{
		remote:  remote,
		rec:     rec,
		mgr:     mgr,
		st:      st,
		confirm: func(model.Entity) bool { return true },
		notify:  func(string, error) {},
		newID:   identity.NewLocalID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Collection returns the current collection.
func (s *Session) Collection() reconcile.Collection {
	c, _ := s.st.Snapshot()
	return c
}

// Products returns the current entities in order.
func (s *Session) Products() []model.Entity { return s.Collection().Entities() }

// Load replaces the collection with the store's current products.
func (s *Session) Load(ctx context.Context) error {
	raws, err := s.remote.List(ctx)
	if err != nil {
		return s.fail("load", err)
	}
	if err := s.mgr.Submit(ctx, "ingest", func(reconcile.Collection) reconcile.Collection {
		return s.rec.IngestBatch(raws)
	}); err != nil {
		return err
	}
	obs.Logger.Info().Int("received", len(raws)).Int("count", s.Collection().Len()).Msg("collection_loaded")
	return nil
}

// Create validates the form input, inserts a local-only row, submits the
// product and re-keys the row with the store's response. On failure the
// local row is withdrawn. Only one creation may be in flight.
func (s *Session) Create(ctx context.Context, name, priceText string) (model.Entity, error) {
	name = strings.TrimSpace(name)
	priceText = strings.TrimSpace(priceText)
	if name == "" {
		return model.Entity{}, s.fail("create", errors.NewValidationError("name", "is required"))
	}
	if priceText == "" {
		return model.Entity{}, s.fail("create", errors.NewValidationError("price", "is required"))
	}
	if !s.st.TryBeginCreate() {
		return model.Entity{}, errors.ErrBusy
	}
	defer s.st.EndCreate()

	req := model.CreateRequest{Name: name, Price: model.ParsePrice(priceText)}
	localUID := s.newID()
	optimistic := &model.RawRecord{LocalID: localUID, Name: req.Name, Price: req.Price}
	if err := s.mgr.Submit(ctx, "create_local", func(c reconcile.Collection) reconcile.Collection {
		return s.rec.UpsertOne(c, optimistic)
	}); err != nil {
		return model.Entity{}, err
	}

	created, err := s.remote.Create(ctx, req)
	if err != nil {
		if rbErr := s.mgr.Submit(ctx, "create_rollback", func(c reconcile.Collection) reconcile.Collection {
			return s.rec.Remove(c, localUID)
		}); rbErr != nil {
			obs.Logger.Warn().Err(rbErr).Str("uid", localUID).Msg("create_rollback_pending")
		}
		return model.Entity{}, s.fail("create", err)
	}

	if err := s.mgr.Submit(ctx, "create_confirm", func(c reconcile.Collection) reconcile.Collection {
		return s.rec.Confirm(c, localUID, created)
	}); err != nil {
		return model.Entity{}, err
	}
	uid := confirmedUID(created, localUID)
	e, _ := s.Collection().Get(uid)
	obs.Logger.Info().Str("local_uid", localUID).Str("uid", uid).Bool("remote", e.HasRemoteID()).
		Msg("create_confirmed")
	return e, nil
}

// Delete removes the entity with uid after confirmation. A remote delete is
// issued only for remote-backed entities; a remote 404 counts as done.
// Unknown uids are a no-op; a declined confirmation returns ErrDeclined and
// changes nothing.
func (s *Session) Delete(ctx context.Context, uid string) error {
	e, ok := s.Collection().Get(uid)
	if !ok {
		return nil
	}
	if !s.confirm(e) {
		return errors.ErrDeclined
	}
	if key, remote := identity.RemoteKey(e.RemoteID); remote {
		if err := s.remote.Delete(ctx, key); err != nil && !errors.Is(err, errors.ErrNotFound) {
			return s.fail("delete", err)
		}
	}
	if err := s.mgr.Submit(ctx, "remove", func(c reconcile.Collection) reconcile.Collection {
		return s.rec.Remove(c, uid)
	}); err != nil {
		return err
	}
	obs.Logger.Info().Str("uid", uid).Bool("remote", e.HasRemoteID()).Msg("product_deleted")
	return nil
}

func (s *Session) fail(op string, err error) error {
	obs.Logger.Error().Err(err).Str("op", op).Msg("operation_failed")
	s.notify(op, err)
	return err
}

func confirmedUID(created *model.RawRecord, localUID string) string {
	if key, ok := identity.RemoteKey(created.RemoteID); ok {
		return key
	}
	if identity.ValidLocalID(created.LocalID) {
		return created.LocalID
	}
	return localUID
}
