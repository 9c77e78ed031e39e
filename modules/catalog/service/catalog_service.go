package service

import (
	"context"
	goerrors "errors"

	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/repository"

	"github.com/google/uuid"
)

// TokenProvider mints a currently valid access credential for an account.
type TokenProvider interface {
	ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error)
}

// CalendarLister is the slice of the provider API this service consumes.
type CalendarLister interface {
	ListCalendars(ctx context.Context, accessToken string) ([]googlecal.CalendarListEntry, error)
}

type CatalogService interface {
	// Reconcile makes the local catalog match the provider's current
	// calendar list. The remote list is authoritative for existence and
	// metadata; the selected flag is locally owned and preserved.
	Reconcile(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error)
	ReconcileForAccount(ctx context.Context, accountID uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error)
	// SetSelected flips the availability opt-in on one of the account's own
	// calendars; a ref belonging to another account is treated as not found.
	SetSelected(ctx context.Context, accountID, refID uuid.UUID, selected bool) error
}

type catalogService struct {
	repo   repository.CatalogRepository
	tokens TokenProvider
	api    CalendarLister
}

func NewCatalogService(repo repository.CatalogRepository, tokens TokenProvider, api CalendarLister) CatalogService {
	return &catalogService{repo: repo, tokens: tokens, api: api}
}

// Reconcile is a full pass every call. Calendar lists are small and change
// rarely, so no incremental diffing; failures from the token layer or the
// provider propagate to the caller unretried.
func (s *catalogService) Reconcile(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	accessToken, err := s.tokens.ValidAccessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	remote, err := s.api.ListCalendars(ctx, accessToken)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	existing, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar catalog", err)
	}

	byRemoteID := make(map[string]*entity.CalendarRef, len(existing))
	for i := range existing {
		byRemoteID[existing[i].RemoteID] = &existing[i]
	}

	keep := make([]string, 0, len(remote))
	for _, item := range remote {
		keep = append(keep, item.ID)

		if ref, ok := byRemoteID[item.ID]; ok {
			ref.Summary = item.Summary
			ref.IsPrimary = item.Primary
			ref.ForegroundColor = optional(item.ForegroundColor)
			ref.BackgroundColor = optional(item.BackgroundColor)
			if err := s.repo.UpdateMetadata(ctx, ref); err != nil {
				return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update calendar ref", err)
			}
			continue
		}

		// New calendars opt in to availability only when primary.
		ref := &entity.CalendarRef{
			AccountID:       accountID,
			RemoteID:        item.ID,
			Summary:         item.Summary,
			IsPrimary:       item.Primary,
			Selected:        item.Primary,
			ForegroundColor: optional(item.ForegroundColor),
			BackgroundColor: optional(item.BackgroundColor),
		}
		if err := s.repo.Insert(ctx, ref); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to insert calendar ref", err)
		}
	}

	deleted, err := s.repo.DeleteMissing(ctx, accountID, keep)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to prune calendar refs", err)
	}
	if deleted > 0 {
		logger.Info("CatalogService:Reconcile:Pruned", "account_id", accountID, "deleted", deleted)
	}

	return s.repo.ListByAccount(ctx, accountID)
}

// ReconcileForAccount is Reconcile with the result list dropped, for callers
// that only care about the side effect.
func (s *catalogService) ReconcileForAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.Reconcile(ctx, accountID)
	return err
}

func (s *catalogService) List(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

func (s *catalogService) SetSelected(ctx context.Context, accountID, refID uuid.UUID, selected bool) error {
	ref, err := s.repo.GetByID(ctx, refID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load calendar ref", err)
	}
	if ref == nil || ref.AccountID != accountID {
		return errors.NewAppError(errors.ErrNotFound, "calendar not found", nil)
	}
	return s.repo.SetSelected(ctx, refID, selected)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// classifyProviderError folds a raw calendar-list failure into the two
// stable provider codes, so retryable conditions keep their retry-prompt
// semantics downstream. Errors already carrying a domain code pass through.
func classifyProviderError(err error) error {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return err
	}
	if googlecal.IsRetryable(err) {
		return errors.NewAppError(errors.ErrProviderTransient, "calendar provider is temporarily unavailable", err)
	}
	return errors.NewAppError(errors.ErrProviderPermanent, "failed to fetch calendar list", err)
}
