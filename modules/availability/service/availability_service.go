package service

import (
	"context"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/constants"
	appErrors "github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/repository"
	catalogEntity "github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// TokenProvider yields a usable access token for a connected account.
type TokenProvider interface {
	ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error)
}

// SelectedCalendarLister returns the calendars the user opted into for
// availability mirroring.
type SelectedCalendarLister interface {
	ListSelected(ctx context.Context, accountID uuid.UUID) ([]catalogEntity.CalendarRef, error)
}

// BusyReader is the free/busy slice of the provider client.
type BusyReader interface {
	FreeBusy(ctx context.Context, accessToken string, calendarIDs []string, windowStart, windowEnd time.Time) (map[string][]googlecal.BusyInterval, error)
}

// SyncOutcome summarizes one availability sync run.
type SyncOutcome struct {
	BlocksCount int
	SyncedAt    time.Time
}

type AvailabilityService interface {
	// SyncAccount refreshes the availability mirror for one account. Zero
	// window bounds default to the rolling 90-day window starting now. Safe
	// to call repeatedly; each run replaces the window's blocks wholesale.
	SyncAccount(ctx context.Context, accountID uuid.UUID, windowStart, windowEnd time.Time) (*SyncOutcome, error)
	ListBlocks(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]entity.AvailabilityBlock, error)
	SyncState(ctx context.Context, accountID uuid.UUID) (*entity.AvailabilitySyncState, error)
}

type availabilityService struct {
	repo     repository.AvailabilityRepository
	accounts accountRepository.AccountRepository
	catalog  SelectedCalendarLister
	tokens   TokenProvider
	api      BusyReader
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	accounts accountRepository.AccountRepository,
	catalog SelectedCalendarLister,
	tokens TokenProvider,
	api BusyReader,
) AvailabilityService {
	return &availabilityService{
		repo:     repo,
		accounts: accounts,
		catalog:  catalog,
		tokens:   tokens,
		api:      api,
	}
}

func (s *availabilityService) SyncAccount(ctx context.Context, accountID uuid.UUID, windowStart, windowEnd time.Time) (*SyncOutcome, error) {
	now := time.Now().UTC()
	if windowStart.IsZero() {
		windowStart = now
	}
	if windowEnd.IsZero() {
		windowEnd = windowStart.AddDate(0, 0, constants.AvailabilityWindowDays)
	}
	if !windowEnd.After(windowStart) {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "window end must be after window start", nil)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, accountID, err)
	}
	if account == nil || account.Revoked() {
		// Nothing to mirror anymore; drop what we had and stop.
		if err := s.repo.ReplaceWindow(ctx, accountID, windowStart, windowEnd, nil); err != nil {
			return nil, s.fail(ctx, accountID, err)
		}
		logger.Info("AvailabilityService:SyncAccount:SkipInactive", "account_id", accountID)
		return &SyncOutcome{SyncedAt: now}, nil
	}

	selected, err := s.catalog.ListSelected(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, accountID, err)
	}
	if len(selected) == 0 {
		if err := s.repo.ReplaceWindow(ctx, accountID, windowStart, windowEnd, nil); err != nil {
			return nil, s.fail(ctx, accountID, err)
		}
		if err := s.repo.RecordSuccess(ctx, accountID, now); err != nil {
			return nil, err
		}
		return &SyncOutcome{SyncedAt: now}, nil
	}

	token, err := s.tokens.ValidAccessToken(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, accountID, err)
	}

	calendarIDs := make([]string, 0, len(selected))
	tagByCalendar := make(map[string]string, len(selected))
	for _, cal := range selected {
		calendarIDs = append(calendarIDs, cal.RemoteID)
		tagByCalendar[cal.RemoteID] = sourceTag(cal)
	}

	var busy map[string][]googlecal.BusyInterval
	err = googlecal.Do(ctx, func() error {
		var opErr error
		busy, opErr = s.api.FreeBusy(ctx, token, calendarIDs, windowStart, windowEnd)
		return opErr
	})
	if err != nil {
		return nil, s.fail(ctx, accountID, err)
	}

	var blocks []entity.AvailabilityBlock
	for calendarID, intervals := range busy {
		tag := tagByCalendar[calendarID]
		for _, interval := range intervals {
			blocks = append(blocks, entity.AvailabilityBlock{
				UserID:    account.UserID,
				AccountID: accountID,
				SourceTag: tag,
				StartsAt:  interval.Start,
				EndsAt:    interval.End,
			})
		}
	}

	if err := s.repo.ReplaceWindow(ctx, accountID, windowStart, windowEnd, blocks); err != nil {
		return nil, s.fail(ctx, accountID, err)
	}

	logger.Info("AvailabilityService:SyncAccount:Done",
		"account_id", accountID,
		"calendars", len(selected),
		"blocks", len(blocks),
	)
	if err := s.repo.RecordSuccess(ctx, accountID, now); err != nil {
		return nil, err
	}
	return &SyncOutcome{BlocksCount: len(blocks), SyncedAt: now}, nil
}

func (s *availabilityService) ListBlocks(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]entity.AvailabilityBlock, error) {
	if !to.After(from) {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "window end must be after window start", nil)
	}
	return s.repo.ListByUsers(ctx, userIDs, from, to)
}

func (s *availabilityService) SyncState(ctx context.Context, accountID uuid.UUID) (*entity.AvailabilitySyncState, error) {
	return s.repo.GetSyncState(ctx, accountID)
}

// fail records the outcome so repeated worker failures are visible, then
// returns the original error for the queue's own retry accounting.
func (s *availabilityService) fail(ctx context.Context, accountID uuid.UUID, cause error) error {
	logger.Error("AvailabilityService:SyncAccount:Failed", "account_id", accountID, "error", cause)
	if recErr := s.repo.RecordFailure(ctx, accountID, cause.Error()); recErr != nil {
		logger.Error("AvailabilityService:SyncAccount:RecordFailure", "account_id", accountID, "error", recErr)
	}
	return cause
}

// sourceTag derives a stable human-readable tag for a mirrored calendar,
// e.g. "google:team-standups".
func sourceTag(cal catalogEntity.CalendarRef) string {
	return "google:" + slug.Make(cal.Summary)
}
