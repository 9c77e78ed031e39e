package service

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	accountEntity "github.com/gekaluck/couple-moments-sub000/modules/account/entity"
	catalogEntity "github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"
	planEntity "github.com/gekaluck/couple-moments-sub000/modules/plan/entity"
	planRepository "github.com/gekaluck/couple-moments-sub000/modules/plan/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/dto"
	linkEntity "github.com/gekaluck/couple-moments-sub000/modules/plansync/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/repository"

	"github.com/google/uuid"
)

// TokenProvider yields a usable access token for a connected account,
// refreshing it first when needed.
type TokenProvider interface {
	ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error)
}

// AccountResolver finds the caller's active connected account.
type AccountResolver interface {
	ActiveAccountID(ctx context.Context, userID uuid.UUID, provider string) (uuid.UUID, bool, error)
	IsRevoked(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// PrimaryCalendarFinder locates the synced primary calendar of an account.
type PrimaryCalendarFinder interface {
	GetPrimary(ctx context.Context, accountID uuid.UUID) (*catalogEntity.CalendarRef, error)
}

// EventWriter is the slice of the provider client the sync flow needs.
type EventWriter interface {
	InsertEvent(ctx context.Context, token, calendarID string, event *googlecal.Event) (*googlecal.Event, error)
	UpdateEvent(ctx context.Context, token, calendarID, eventID string, event *googlecal.Event) (*googlecal.Event, error)
	DeleteEvent(ctx context.Context, token, calendarID, eventID string) error
}

type SyncService interface {
	CreateEvent(ctx context.Context, userID, planID uuid.UUID) *dto.SyncResult
	UpdateEvent(ctx context.Context, userID, planID uuid.UUID) *dto.SyncResult
	RemoveEvent(ctx context.Context, planID uuid.UUID) *dto.SyncResult
	CaptureDeleteContext(ctx context.Context, planID uuid.UUID) *dto.DeleteContext
	CancelEvent(ctx context.Context, dc *dto.DeleteContext) *dto.SyncResult
}

type syncService struct {
	links    repository.LinkRepository
	plans    planRepository.PlanRepository
	accounts AccountResolver
	catalog  PrimaryCalendarFinder
	tokens   TokenProvider
	api      EventWriter
}

func NewSyncService(
	links repository.LinkRepository,
	plans planRepository.PlanRepository,
	accounts AccountResolver,
	catalog PrimaryCalendarFinder,
	tokens TokenProvider,
	api EventWriter,
) SyncService {
	return &syncService{
		links:    links,
		plans:    plans,
		accounts: accounts,
		catalog:  catalog,
		tokens:   tokens,
		api:      api,
	}
}

// CreateEvent pushes a plan to the organizer's primary calendar and records
// the link. A plan can be linked to at most one external event; a concurrent
// create loses the race at the unique link constraint and reports the same
// already-synced outcome as a sequential retry.
func (s *syncService) CreateEvent(ctx context.Context, userID, planID uuid.UUID) *dto.SyncResult {
	existing, err := s.links.GetByPlanID(ctx, planID)
	if err != nil {
		logger.Error("SyncService:CreateEvent:GetLink", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}
	if existing != nil {
		return dto.Fail(appErrors.ErrAlreadySynced, "plan is already synced to an external event")
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		logger.Error("SyncService:CreateEvent:GetPlan", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}
	if plan == nil {
		return dto.Fail(appErrors.ErrNotFound, "plan not found")
	}

	accountID, ok, err := s.accounts.ActiveAccountID(ctx, userID, accountEntity.ProviderGoogle)
	if err != nil {
		logger.Error("SyncService:CreateEvent:ResolveAccount", "user_id", userID, "error", err)
		return dto.FailFrom(err)
	}
	if !ok {
		return dto.Fail(appErrors.ErrNotConnected, "no connected google account")
	}

	return s.createForAccount(ctx, plan, accountID, false)
}

func (s *syncService) createForAccount(ctx context.Context, plan *planEntity.Plan, accountID uuid.UUID, recovered bool) *dto.SyncResult {
	primary, err := s.catalog.GetPrimary(ctx, accountID)
	if err != nil {
		logger.Error("SyncService:Create:GetPrimary", "account_id", accountID, "error", err)
		return dto.FailFrom(err)
	}
	if primary == nil {
		return dto.Fail(appErrors.ErrNoPrimaryCalendar, "account has no synced primary calendar")
	}

	token, err := s.tokens.ValidAccessToken(ctx, accountID)
	if err != nil {
		return dto.FailFrom(err)
	}

	members, err := s.plans.ListSpaceMembers(ctx, plan.SpaceID)
	if err != nil {
		logger.Error("SyncService:Create:ListMembers", "space_id", plan.SpaceID, "error", err)
		return dto.FailFrom(err)
	}

	payload := buildEventPayload(plan, attendeeEmails(members, plan.CreatorID))

	var created *googlecal.Event
	err = googlecal.Do(ctx, func() error {
		var opErr error
		created, opErr = s.api.InsertEvent(ctx, token, primary.RemoteID, payload)
		return opErr
	})
	if err != nil {
		logger.Error("SyncService:Create:InsertEvent", "plan_id", plan.ID, "error", err)
		return dto.FailFrom(classifyProviderError(err))
	}

	link := &linkEntity.PlanEventLink{
		PlanID:           plan.ID,
		AccountID:        accountID,
		RemoteCalendarID: primary.RemoteID,
		RemoteEventID:    created.ID,
		LastSyncedAt:     time.Now().UTC(),
	}
	if created.Etag != "" {
		link.Etag = &created.Etag
	}
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicateLink) {
			// Lost a concurrent create race; the remote copy we just made is
			// an orphan, so clean it up on a best-effort basis.
			if delErr := s.api.DeleteEvent(ctx, token, primary.RemoteID, created.ID); delErr != nil {
				logger.Warn("SyncService:Create:OrphanCleanup", "plan_id", plan.ID, "event_id", created.ID, "error", delErr)
			}
			return dto.Fail(appErrors.ErrAlreadySynced, "plan is already synced to an external event")
		}
		logger.Error("SyncService:Create:SaveLink", "plan_id", plan.ID, "error", err)
		return dto.FailFrom(err)
	}

	logger.Info("SyncService:Create:Done", "plan_id", plan.ID, "event_id", created.ID, "recovered", recovered)
	if recovered {
		return dto.Recovered(created.ID)
	}
	return dto.Ok(created.ID)
}

// UpdateEvent pushes the current plan state to the linked external event.
// When the remote event is gone (deleted out-of-band by the user), the stale
// link is dropped and the event is recreated on the same account, so an edit
// never silently vanishes just because the remote copy drifted.
func (s *syncService) UpdateEvent(ctx context.Context, userID, planID uuid.UUID) *dto.SyncResult {
	link, err := s.links.GetByPlanID(ctx, planID)
	if err != nil {
		logger.Error("SyncService:UpdateEvent:GetLink", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}
	if link == nil {
		return dto.Fail(appErrors.ErrNotSynced, "plan is not synced to an external event")
	}

	revoked, err := s.accounts.IsRevoked(ctx, link.AccountID)
	if err != nil {
		logger.Error("SyncService:UpdateEvent:CheckAccount", "account_id", link.AccountID, "error", err)
		return dto.FailFrom(err)
	}
	if revoked {
		return dto.Fail(appErrors.ErrAccountRevoked, "connected account was disconnected")
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		logger.Error("SyncService:UpdateEvent:GetPlan", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}
	if plan == nil {
		return dto.Fail(appErrors.ErrNotFound, "plan not found")
	}

	token, err := s.tokens.ValidAccessToken(ctx, link.AccountID)
	if err != nil {
		return dto.FailFrom(err)
	}

	members, err := s.plans.ListSpaceMembers(ctx, plan.SpaceID)
	if err != nil {
		logger.Error("SyncService:UpdateEvent:ListMembers", "space_id", plan.SpaceID, "error", err)
		return dto.FailFrom(err)
	}

	payload := buildEventPayload(plan, attendeeEmails(members, plan.CreatorID))

	var updated *googlecal.Event
	err = googlecal.Do(ctx, func() error {
		var opErr error
		updated, opErr = s.api.UpdateEvent(ctx, token, link.RemoteCalendarID, link.RemoteEventID, payload)
		return opErr
	})
	if err != nil {
		if googlecal.IsNotFound(err) {
			logger.Warn("SyncService:UpdateEvent:Drift", "plan_id", planID, "event_id", link.RemoteEventID)
			if delErr := s.links.DeleteByPlanID(ctx, planID); delErr != nil {
				logger.Error("SyncService:UpdateEvent:DropStaleLink", "plan_id", planID, "error", delErr)
				return dto.FailFrom(delErr)
			}
			return s.createForAccount(ctx, plan, link.AccountID, true)
		}
		logger.Error("SyncService:UpdateEvent:UpdateEvent", "plan_id", planID, "error", err)
		return dto.FailFrom(classifyProviderError(err))
	}

	var etag *string
	if updated.Etag != "" {
		etag = &updated.Etag
	}
	if err := s.links.UpdateSyncState(ctx, link.ID, etag, time.Now().UTC()); err != nil {
		logger.Error("SyncService:UpdateEvent:SaveLink", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}

	logger.Info("SyncService:UpdateEvent:Done", "plan_id", planID, "event_id", updated.ID)
	return dto.Ok(updated.ID)
}

// RemoveEvent unsyncs a plan on explicit request: the link is dropped first
// so the plan is unsynced locally even when the remote delete fails.
func (s *syncService) RemoveEvent(ctx context.Context, planID uuid.UUID) *dto.SyncResult {
	dc := s.CaptureDeleteContext(ctx, planID)
	if dc == nil {
		return dto.Fail(appErrors.ErrNotSynced, "plan is not synced to an external event")
	}
	if err := s.links.DeleteByPlanID(ctx, planID); err != nil {
		logger.Error("SyncService:RemoveEvent:DropLink", "plan_id", planID, "error", err)
		return dto.FailFrom(err)
	}
	return s.CancelEvent(ctx, dc)
}

// CaptureDeleteContext snapshots everything the cancel step needs before the
// plan row (and its link, via cascade) is deleted. Returns nil when the plan
// was never synced.
func (s *syncService) CaptureDeleteContext(ctx context.Context, planID uuid.UUID) *dto.DeleteContext {
	link, err := s.links.GetByPlanID(ctx, planID)
	if err != nil {
		logger.Error("SyncService:CaptureDeleteContext:GetLink", "plan_id", planID, "error", err)
		return nil
	}
	if link == nil {
		return nil
	}

	revoked, err := s.accounts.IsRevoked(ctx, link.AccountID)
	if err != nil {
		logger.Error("SyncService:CaptureDeleteContext:CheckAccount", "account_id", link.AccountID, "error", err)
		revoked = false
	}

	return &dto.DeleteContext{
		AccountID:     link.AccountID,
		CalendarID:    link.RemoteCalendarID,
		RemoteEventID: link.RemoteEventID,
		Revoked:       revoked,
	}
}

// CancelEvent removes the external event after the plan itself has been
// deleted. Failures here never surface to the caller as hard errors: the
// local delete already happened, so the worst case is a leftover remote
// event, which the result records without blocking anything.
func (s *syncService) CancelEvent(ctx context.Context, dc *dto.DeleteContext) *dto.SyncResult {
	if dc == nil {
		return dto.Skip()
	}
	if dc.Revoked {
		logger.Info("SyncService:CancelEvent:SkipRevoked", "account_id", dc.AccountID)
		return dto.Skip()
	}

	token, err := s.tokens.ValidAccessToken(ctx, dc.AccountID)
	if err != nil {
		logger.Warn("SyncService:CancelEvent:Token", "account_id", dc.AccountID, "error", err)
		return dto.FailFrom(err)
	}

	err = googlecal.Do(ctx, func() error {
		return s.api.DeleteEvent(ctx, token, dc.CalendarID, dc.RemoteEventID)
	})
	if err != nil {
		if googlecal.IsNotFound(err) {
			// Already gone remotely; treat as done.
			return dto.Ok(dc.RemoteEventID)
		}
		logger.Warn("SyncService:CancelEvent:DeleteEvent", "event_id", dc.RemoteEventID, "error", err)
		return dto.FailFrom(classifyProviderError(err))
	}

	logger.Info("SyncService:CancelEvent:Done", "event_id", dc.RemoteEventID)
	return dto.Ok(dc.RemoteEventID)
}

// classifyProviderError folds raw provider failures into the two stable
// domain codes callers branch on. Errors that already carry a domain code
// pass through untouched.
func classifyProviderError(err error) error {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if googlecal.IsRetryable(err) {
		return appErrors.NewAppError(appErrors.ErrProviderTransient, "calendar provider is temporarily unavailable", err)
	}
	return appErrors.NewAppError(appErrors.ErrProviderPermanent, "calendar provider rejected the request", err)
}
