package service

import (
	"context"
	"testing"

	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	refs map[string]*entity.CalendarRef // keyed by remote id
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{refs: make(map[string]*entity.CalendarRef)}
}

func (f *fakeCatalogRepo) seed(remoteID, summary string, primary, selected bool) *entity.CalendarRef {
	ref := &entity.CalendarRef{
		AccountID: uuid.New(),
		RemoteID:  remoteID,
		Summary:   summary,
		IsPrimary: primary,
		Selected:  selected,
	}
	ref.ID = uuid.New()
	f.refs[remoteID] = ref
	return ref
}

func (f *fakeCatalogRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	var out []entity.CalendarRef
	for _, ref := range f.refs {
		out = append(out, *ref)
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListSelected(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	var out []entity.CalendarRef
	for _, ref := range f.refs {
		if ref.Selected {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetPrimary(ctx context.Context, accountID uuid.UUID) (*entity.CalendarRef, error) {
	for _, ref := range f.refs {
		if ref.IsPrimary {
			return ref, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CalendarRef, error) {
	for _, ref := range f.refs {
		if ref.ID == id {
			return ref, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) Insert(ctx context.Context, ref *entity.CalendarRef) error {
	stored := *ref
	stored.ID = uuid.New()
	f.refs[ref.RemoteID] = &stored
	return nil
}

func (f *fakeCatalogRepo) UpdateMetadata(ctx context.Context, ref *entity.CalendarRef) error {
	stored := *ref
	f.refs[ref.RemoteID] = &stored
	return nil
}

func (f *fakeCatalogRepo) SetSelected(ctx context.Context, id uuid.UUID, selected bool) error {
	for _, ref := range f.refs {
		if ref.ID == id {
			ref.Selected = selected
			return nil
		}
	}
	return nil
}

func (f *fakeCatalogRepo) DeleteMissing(ctx context.Context, accountID uuid.UUID, keepRemoteIDs []string) (int64, error) {
	keep := make(map[string]bool, len(keepRemoteIDs))
	for _, id := range keepRemoteIDs {
		keep[id] = true
	}
	var deleted int64
	for remoteID := range f.refs {
		if !keep[remoteID] {
			delete(f.refs, remoteID)
			deleted++
		}
	}
	return deleted, nil
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error) {
	return s.token, s.err
}

type staticLister struct {
	entries []googlecal.CalendarListEntry
	err     error
}

func (s staticLister) ListCalendars(ctx context.Context, accessToken string) ([]googlecal.CalendarListEntry, error) {
	return s.entries, s.err
}

func TestReconcilePreservesSelectionAcrossMetadataChanges(t *testing.T) {
	repo := newFakeCatalogRepo()
	deselected := repo.seed("primary@group.calendar.google.com", "Old Name", true, false)
	optedIn := repo.seed("shared@group.calendar.google.com", "Shared", false, true)

	svc := NewCatalogService(repo, staticTokens{token: "tok"}, staticLister{entries: []googlecal.CalendarListEntry{
		{ID: deselected.RemoteID, Summary: "Renamed", Primary: true},
		{ID: optedIn.RemoteID, Summary: "Shared", Primary: false},
	}})

	refs, err := svc.Reconcile(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, refs, 2)

	byRemote := make(map[string]entity.CalendarRef)
	for _, ref := range refs {
		byRemote[ref.RemoteID] = ref
	}

	// The user's choices survive even when remote metadata changes.
	assert.False(t, byRemote[deselected.RemoteID].Selected)
	assert.Equal(t, "Renamed", byRemote[deselected.RemoteID].Summary)
	assert.True(t, byRemote[optedIn.RemoteID].Selected)
}

func TestReconcileSelectsNewPrimaryByDefault(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, staticTokens{token: "tok"}, staticLister{entries: []googlecal.CalendarListEntry{
		{ID: "primary-cal", Summary: "Personal", Primary: true},
		{ID: "holidays", Summary: "Holidays", Primary: false},
	}})

	refs, err := svc.Reconcile(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, refs, 2)

	for _, ref := range refs {
		if ref.RemoteID == "primary-cal" {
			assert.True(t, ref.Selected)
		} else {
			assert.False(t, ref.Selected)
		}
	}
}

func TestReconcilePrunesCalendarsGoneRemotely(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.seed("kept", "Kept", true, true)
	repo.seed("removed", "Removed remotely", false, true)

	svc := NewCatalogService(repo, staticTokens{token: "tok"}, staticLister{entries: []googlecal.CalendarListEntry{
		{ID: "kept", Summary: "Kept", Primary: true},
	}})

	refs, err := svc.Reconcile(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "kept", refs[0].RemoteID)
}

func TestReconcilePropagatesTokenFailure(t *testing.T) {
	repo := newFakeCatalogRepo()
	tokenErr := errors.NewAppError(errors.ErrAccountRevoked, "calendar account has been revoked", nil)
	svc := NewCatalogService(repo, staticTokens{err: tokenErr}, staticLister{})

	_, err := svc.Reconcile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAccountRevoked))
}

func TestReconcileClassifiesTransientProviderFailure(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, staticTokens{token: "tok"},
		staticLister{err: &googlecal.APIError{StatusCode: 503, Body: "backend unavailable"}})

	_, err := svc.Reconcile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderTransient))
}

func TestReconcileClassifiesPermanentProviderFailure(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, staticTokens{token: "tok"},
		staticLister{err: &googlecal.APIError{StatusCode: 403, Body: "forbidden"}})

	_, err := svc.Reconcile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderPermanent))
}

func TestSetSelectedUnknownCalendar(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, staticTokens{token: "tok"}, staticLister{})

	err := svc.SetSelected(context.Background(), uuid.New(), uuid.New(), true)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestSetSelectedRejectsForeignCalendar(t *testing.T) {
	repo := newFakeCatalogRepo()
	owner := uuid.New()
	ref := repo.seed("work-cal", "Work", false, false)
	ref.AccountID = owner

	svc := NewCatalogService(repo, staticTokens{token: "tok"}, staticLister{})

	// Another account knowing the ref id must not be able to flip the flag.
	err := svc.SetSelected(context.Background(), uuid.New(), ref.ID, true)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	assert.False(t, repo.refs["work-cal"].Selected)

	require.NoError(t, svc.SetSelected(context.Background(), owner, ref.ID, true))
	assert.True(t, repo.refs["work-cal"].Selected)
}
