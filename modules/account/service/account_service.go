package service

import (
	"context"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/cache"
	"github.com/gekaluck/couple-moments-sub000/core/constants"
	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/core/utils"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	"github.com/gekaluck/couple-moments-sub000/modules/account/dto"
	"github.com/gekaluck/couple-moments-sub000/modules/account/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/account/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateKeyPrefix = "oauth:state:"

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/calendar",
}

// CatalogReconciler lets the account module trigger a catalog sync right
// after connect without importing the catalog package (which depends on the
// token service defined here).
type CatalogReconciler interface {
	ReconcileForAccount(ctx context.Context, accountID uuid.UUID) error
}

// SyncEnqueuer queues a background availability sync.
type SyncEnqueuer interface {
	EnqueueAvailabilitySync(accountID uuid.UUID) error
}

type AccountService interface {
	BeginConnect(ctx context.Context, userID uuid.UUID) (*dto.ConnectURLResponse, error)
	CompleteConnect(ctx context.Context, state, code string) (*entity.ConnectedAccount, error)
	Disconnect(ctx context.Context, userID uuid.UUID, provider string) error
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]dto.AccountResponse, error)
}

type accountService struct {
	repo     repository.AccountRepository
	vault    *vault.Vault
	cache    cache.Cache
	oauth    *oauth2.Config
	api      *googlecal.Client
	catalog  CatalogReconciler
	enqueuer SyncEnqueuer
}

func NewAccountService(
	repo repository.AccountRepository,
	v *vault.Vault,
	c cache.Cache,
	clientID, clientSecret, redirectURL string,
	api *googlecal.Client,
	catalog CatalogReconciler,
	enqueuer SyncEnqueuer,
) AccountService {
	return &accountService{
		repo:  repo,
		vault: v,
		cache: c,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       googleScopes,
			Endpoint:     google.Endpoint,
		},
		api:      api,
		catalog:  catalog,
		enqueuer: enqueuer,
	}
}

// BeginConnect issues the provider consent URL bound to the requesting user
// by a short-lived state nonce.
func (s *accountService) BeginConnect(ctx context.Context, userID uuid.UUID) (*dto.ConnectURLResponse, error) {
	state, err := utils.GenerateStateNonce()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate state nonce", err)
	}

	if err := s.cache.Set(ctx, oauthStateKeyPrefix+state, userID.String(), constants.OAuthStateTTL); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to store connect state", err)
	}

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return &dto.ConnectURLResponse{URL: url, State: state}, nil
}

// CompleteConnect validates the state nonce, exchanges the authorization
// code, seals both credentials and upserts the account. Reconnecting a
// revoked account revives it.
func (s *accountService) CompleteConnect(ctx context.Context, state, code string) (*entity.ConnectedAccount, error) {
	stored, found, err := s.cache.Get(ctx, oauthStateKeyPrefix+state)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to look up connect state", err)
	}
	if !found {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "connect state is unknown or expired", nil)
	}
	_ = s.cache.Delete(ctx, oauthStateKeyPrefix+state)

	userID, err := uuid.Parse(stored)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "stored connect state is malformed", err)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error("AccountService:CompleteConnect:Exchange:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "authorization code exchange failed", err)
	}

	profile, err := s.api.GetProfile(ctx, token.AccessToken)
	if err != nil {
		logger.Error("AccountService:CompleteConnect:GetProfile:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrProviderPermanent, "failed to fetch provider profile", err)
	}

	accessCipher, err := s.vault.Seal([]byte(token.AccessToken))
	if err != nil {
		return nil, err
	}
	var refreshCipher []byte
	if token.RefreshToken != "" {
		if refreshCipher, err = s.vault.Seal([]byte(token.RefreshToken)); err != nil {
			return nil, err
		}
	}

	scope, _ := token.Extra("scope").(string)
	expiry := token.Expiry

	account := &entity.ConnectedAccount{
		UserID:         userID,
		Provider:       entity.ProviderGoogle,
		AccountEmail:   profile.Email,
		AccessCipher:   accessCipher,
		RefreshCipher:  refreshCipher,
		TokenExpiresAt: &expiry,
		Scope:          scope,
	}
	account, err = s.repo.Upsert(ctx, account)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to persist connected account", err)
	}

	logger.Info("AccountService:CompleteConnect:Connected",
		"user_id", userID, "account_id", account.ID, "email", profile.Email)

	// Best-effort follow-ups; a failure here does not undo the connect.
	if s.catalog != nil {
		if err := s.catalog.ReconcileForAccount(ctx, account.ID); err != nil {
			logger.Error("AccountService:CompleteConnect:Reconcile:Error", "error", err, "account_id", account.ID)
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAvailabilitySync(account.ID); err != nil {
			logger.Error("AccountService:CompleteConnect:Enqueue:Error", "error", err, "account_id", account.ID)
		}
	}

	return account, nil
}

// Disconnect marks the account revoked. The row is retained for audit and
// in-flight delete contexts, never reused for remote calls.
func (s *accountService) Disconnect(ctx context.Context, userID uuid.UUID, provider string) error {
	account, err := s.repo.GetActiveByUserAndProvider(ctx, userID, provider)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load connected account", err)
	}
	if account == nil {
		return errors.NewAppError(errors.ErrNotConnected, "no connected account for this provider", nil)
	}
	return s.repo.MarkRevoked(ctx, account.ID, time.Now())
}

func (s *accountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]dto.AccountResponse, error) {
	accounts, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list connected accounts", err)
	}

	result := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		result = append(result, dto.AccountResponse{
			ID:           account.ID.String(),
			Provider:     account.Provider,
			AccountEmail: account.AccountEmail,
			Connected:    !account.Revoked(),
			ConnectedAt:  account.CreatedAt,
			RevokedAt:    account.RevokedAt,
		})
	}
	return result, nil
}
