package service

import (
	"context"
	"testing"
	"time"

	appErrors "github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	catalogEntity "github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"
	planEntity "github.com/gekaluck/couple-moments-sub000/modules/plan/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/dto"
	linkEntity "github.com/gekaluck/couple-moments-sub000/modules/plansync/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLinkRepo struct {
	link      *linkEntity.PlanEventLink
	createErr error

	created []linkEntity.PlanEventLink
	deletes int
	updates int
}

func (f *fakeLinkRepo) GetByPlanID(ctx context.Context, planID uuid.UUID) (*linkEntity.PlanEventLink, error) {
	if f.link != nil && f.link.PlanID == planID {
		return f.link, nil
	}
	return nil, nil
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *linkEntity.PlanEventLink) error {
	if f.createErr != nil {
		return f.createErr
	}
	link.ID = uuid.New()
	f.created = append(f.created, *link)
	f.link = link
	return nil
}

func (f *fakeLinkRepo) UpdateSyncState(ctx context.Context, id uuid.UUID, etag *string, syncedAt time.Time) error {
	f.updates++
	return nil
}

func (f *fakeLinkRepo) DeleteByPlanID(ctx context.Context, planID uuid.UUID) error {
	f.deletes++
	f.link = nil
	return nil
}

type fakePlanRepo struct {
	plan    *planEntity.Plan
	members []planEntity.SpaceMember
}

func (f *fakePlanRepo) GetByID(ctx context.Context, planID uuid.UUID) (*planEntity.Plan, error) {
	if f.plan != nil && f.plan.ID == planID {
		return f.plan, nil
	}
	return nil, nil
}

func (f *fakePlanRepo) ListSpaceMembers(ctx context.Context, spaceID uuid.UUID) ([]planEntity.SpaceMember, error) {
	return f.members, nil
}

type fakeResolver struct {
	accountID uuid.UUID
	connected bool
	revoked   bool
}

func (f *fakeResolver) ActiveAccountID(ctx context.Context, userID uuid.UUID, provider string) (uuid.UUID, bool, error) {
	return f.accountID, f.connected, nil
}

func (f *fakeResolver) IsRevoked(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return f.revoked, nil
}

// primaryFinder returns a primary calendar with the given remote id, or
// none when the id is empty.
type primaryFinder struct {
	remoteID string
}

func (p primaryFinder) GetPrimary(ctx context.Context, accountID uuid.UUID) (*catalogEntity.CalendarRef, error) {
	if p.remoteID == "" {
		return nil, nil
	}
	return &catalogEntity.CalendarRef{AccountID: accountID, RemoteID: p.remoteID, IsPrimary: true}, nil
}

type fakeEventAPI struct {
	insertErr error
	updateErr error
	deleteErr error

	inserts int
	updates int
	deletes int

	lastInserted *googlecal.Event
	nextEventID  string
}

func (f *fakeEventAPI) InsertEvent(ctx context.Context, token, calendarID string, event *googlecal.Event) (*googlecal.Event, error) {
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.lastInserted = event
	out := *event
	out.ID = f.nextEventID
	out.Etag = `"etag-1"`
	return &out, nil
}

func (f *fakeEventAPI) UpdateEvent(ctx context.Context, token, calendarID, eventID string, event *googlecal.Event) (*googlecal.Event, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	out := *event
	out.ID = eventID
	out.Etag = `"etag-2"`
	return &out, nil
}

func (f *fakeEventAPI) DeleteEvent(ctx context.Context, token, calendarID, eventID string) error {
	f.deletes++
	return f.deleteErr
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error) {
	return s.token, s.err
}

type syncFixture struct {
	links    *fakeLinkRepo
	plans    *fakePlanRepo
	resolver *fakeResolver
	api      *fakeEventAPI
	svc      SyncService

	userID    uuid.UUID
	accountID uuid.UUID
	planID    uuid.UUID
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		links:     &fakeLinkRepo{},
		userID:    uuid.New(),
		accountID: uuid.New(),
		planID:    uuid.New(),
	}
	f.plans = &fakePlanRepo{
		plan: &planEntity.Plan{
			ID:        f.planID,
			SpaceID:   uuid.New(),
			CreatorID: f.userID,
			Title:     "Dinner",
			StartsAt:  time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		},
		members: []planEntity.SpaceMember{
			{UserID: f.userID, Email: "me@example.com"},
			{UserID: uuid.New(), Email: "partner@example.com"},
		},
	}
	f.resolver = &fakeResolver{accountID: f.accountID, connected: true}
	f.api = &fakeEventAPI{nextEventID: "evt-1"}
	f.svc = NewSyncService(f.links, f.plans, f.resolver, primaryFinder{remoteID: "primary-cal"}, staticTokens{token: "tok"}, f.api)
	return f
}

func TestCreateEventLinksPlanToRemoteEvent(t *testing.T) {
	f := newSyncFixture(t)

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	require.True(t, result.Success)
	assert.Equal(t, "evt-1", result.ExternalEventID)
	assert.False(t, result.Recovered)

	require.Len(t, f.links.created, 1)
	link := f.links.created[0]
	assert.Equal(t, f.planID, link.PlanID)
	assert.Equal(t, f.accountID, link.AccountID)
	assert.Equal(t, "primary-cal", link.RemoteCalendarID)
	assert.Equal(t, "evt-1", link.RemoteEventID)

	// Partner is invited, organizer is not.
	require.Len(t, f.api.lastInserted.Attendees, 1)
	assert.Equal(t, "partner@example.com", f.api.lastInserted.Attendees[0].Email)
}

func TestCreateEventAlreadySynced(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{PlanID: f.planID, RemoteEventID: "evt-0"}

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrAlreadySynced, result.Code)
	assert.Zero(t, f.api.inserts)
}

func TestCreateEventLosingRaceCleansUpOrphan(t *testing.T) {
	f := newSyncFixture(t)
	f.links.createErr = repository.ErrDuplicateLink

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrAlreadySynced, result.Code)
	// The remote event we just inserted must not be left dangling.
	assert.Equal(t, 1, f.api.deletes)
}

func TestCreateEventWithoutConnectedAccount(t *testing.T) {
	f := newSyncFixture(t)
	f.resolver.connected = false

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrNotConnected, result.Code)
}

func TestCreateEventWithoutPrimaryCalendar(t *testing.T) {
	f := newSyncFixture(t)
	f.svc = NewSyncService(f.links, f.plans, f.resolver, primaryFinder{}, staticTokens{token: "tok"}, f.api)

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrNoPrimaryCalendar, result.Code)
}

func TestCreateEventProviderRejection(t *testing.T) {
	f := newSyncFixture(t)
	f.api.insertErr = &googlecal.APIError{StatusCode: 403, Body: "forbidden"}

	result := f.svc.CreateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrProviderPermanent, result.Code)
	assert.Empty(t, f.links.created)
}

func TestUpdateEventNotSynced(t *testing.T) {
	f := newSyncFixture(t)

	result := f.svc.UpdateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrNotSynced, result.Code)
}

func TestUpdateEventRevokedAccount(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{PlanID: f.planID, AccountID: f.accountID, RemoteEventID: "evt-0"}
	f.resolver.revoked = true

	result := f.svc.UpdateEvent(context.Background(), f.userID, f.planID)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrAccountRevoked, result.Code)
}

func TestUpdateEventSuccess(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{
		PlanID:           f.planID,
		AccountID:        f.accountID,
		RemoteCalendarID: "primary-cal",
		RemoteEventID:    "evt-0",
	}

	result := f.svc.UpdateEvent(context.Background(), f.userID, f.planID)
	require.True(t, result.Success)
	assert.Equal(t, "evt-0", result.ExternalEventID)
	assert.Equal(t, 1, f.links.updates)
}

func TestUpdateEventRecoversFromRemoteDrift(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{
		PlanID:           f.planID,
		AccountID:        f.accountID,
		RemoteCalendarID: "primary-cal",
		RemoteEventID:    "evt-gone",
	}
	f.api.updateErr = &googlecal.APIError{StatusCode: 404, Body: "not found"}
	f.api.nextEventID = "evt-new"

	result := f.svc.UpdateEvent(context.Background(), f.userID, f.planID)
	require.True(t, result.Success)
	assert.True(t, result.Recovered)
	assert.Equal(t, "evt-new", result.ExternalEventID)

	// Stale link dropped and replaced on the same account.
	assert.Equal(t, 1, f.links.deletes)
	require.Len(t, f.links.created, 1)
	assert.Equal(t, f.accountID, f.links.created[0].AccountID)
	assert.Equal(t, "evt-new", f.links.created[0].RemoteEventID)
}

func TestRemoveEventDropsLinkBeforeRemoteDelete(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{
		PlanID:           f.planID,
		AccountID:        f.accountID,
		RemoteCalendarID: "primary-cal",
		RemoteEventID:    "evt-0",
	}

	result := f.svc.RemoveEvent(context.Background(), f.planID)
	require.True(t, result.Success)
	assert.Equal(t, 1, f.links.deletes)
	assert.Equal(t, 1, f.api.deletes)
}

func TestCancelEventSkipsWhenNeverSynced(t *testing.T) {
	f := newSyncFixture(t)

	result := f.svc.CancelEvent(context.Background(), nil)
	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Zero(t, f.api.deletes)
}

func TestCancelEventSkipsWhenAccountRevokedAtCapture(t *testing.T) {
	f := newSyncFixture(t)

	result := f.svc.CancelEvent(context.Background(), &dto.DeleteContext{
		AccountID:     f.accountID,
		CalendarID:    "primary-cal",
		RemoteEventID: "evt-0",
		Revoked:       true,
	})
	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Zero(t, f.api.deletes)
}

func TestCancelEventTreatsMissingRemoteAsDone(t *testing.T) {
	f := newSyncFixture(t)
	f.api.deleteErr = &googlecal.APIError{StatusCode: 410, Body: "gone"}

	result := f.svc.CancelEvent(context.Background(), &dto.DeleteContext{
		AccountID:     f.accountID,
		CalendarID:    "primary-cal",
		RemoteEventID: "evt-0",
	})
	assert.True(t, result.Success)
}

func TestCancelEventReportsProviderFailureWithoutBlocking(t *testing.T) {
	f := newSyncFixture(t)
	f.api.deleteErr = &googlecal.APIError{StatusCode: 403, Body: "forbidden"}

	result := f.svc.CancelEvent(context.Background(), &dto.DeleteContext{
		AccountID:     f.accountID,
		CalendarID:    "primary-cal",
		RemoteEventID: "evt-0",
	})
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrProviderPermanent, result.Code)
}

func TestCaptureDeleteContextSnapshotsLink(t *testing.T) {
	f := newSyncFixture(t)
	f.links.link = &linkEntity.PlanEventLink{
		PlanID:           f.planID,
		AccountID:        f.accountID,
		RemoteCalendarID: "primary-cal",
		RemoteEventID:    "evt-0",
	}

	dc := f.svc.CaptureDeleteContext(context.Background(), f.planID)
	require.NotNil(t, dc)
	assert.Equal(t, f.accountID, dc.AccountID)
	assert.Equal(t, "evt-0", dc.RemoteEventID)
	assert.False(t, dc.Revoked)

	assert.Nil(t, f.svc.CaptureDeleteContext(context.Background(), uuid.New()))
}
