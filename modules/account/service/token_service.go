package service

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/constants"
	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	"github.com/gekaluck/couple-moments-sub000/modules/account/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenRefresher exchanges a refresh credential for a fresh access
// credential at the provider's token endpoint.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type googleRefresher struct {
	cfg *oauth2.Config
}

func NewGoogleRefresher(clientID, clientSecret string) TokenRefresher {
	return &googleRefresher{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
	}
}

func (r *googleRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := r.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return source.Token()
}

// TokenService produces a currently valid access credential for a connected
// account, transparently refreshing and persisting rotation. Concurrent
// refreshes for the same account may both succeed redundantly; that is
// tolerated, not prevented.
type TokenService interface {
	ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error)
}

type tokenService struct {
	repo      repository.AccountRepository
	vault     *vault.Vault
	refresher TokenRefresher
}

func NewTokenService(repo repository.AccountRepository, v *vault.Vault, refresher TokenRefresher) TokenService {
	return &tokenService{repo: repo, vault: v, refresher: refresher}
}

func (s *tokenService) ValidAccessToken(ctx context.Context, accountID uuid.UUID) (string, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to load connected account", err)
	}
	if account == nil {
		return "", errors.NewAppError(errors.ErrNotConnected, "calendar account is not connected", nil)
	}
	if account.Revoked() {
		return "", errors.NewAppError(errors.ErrAccountRevoked, "calendar account has been revoked", nil)
	}

	// The margin keeps a credential from expiring provider-side between
	// local validation and the remote call.
	needsRefresh := account.TokenExpiresAt == nil ||
		time.Until(*account.TokenExpiresAt) < constants.TokenRefreshMargin

	if !needsRefresh {
		plaintext, err := s.vault.Open(account.AccessCipher)
		if err != nil {
			return "", err
		}
		return string(plaintext), nil
	}

	if len(account.RefreshCipher) == 0 {
		// Terminal until the user reconnects; nothing can mint a usable
		// credential for this account anymore.
		s.revoke(ctx, accountID)
		return "", errors.NewAppError(errors.ErrRefreshFailed,
			"access credential expired and no refresh credential is stored", nil)
	}

	refreshPlain, err := s.vault.Open(account.RefreshCipher)
	if err != nil {
		return "", err
	}

	logger.Info("TokenService:ValidAccessToken:Refreshing", "account_id", accountID)
	token, err := s.refresher.Refresh(ctx, string(refreshPlain))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if goerrors.As(err, &retrieveErr) {
			// The provider rejected the refresh credential outright.
			logger.Warn("TokenService:ValidAccessToken:RefreshRejected",
				"account_id", accountID, "error", err)
			s.revoke(ctx, accountID)
			return "", errors.NewAppError(errors.ErrRefreshFailed,
				"provider rejected the refresh credential", err)
		}
		// Transport-level failure: the credential itself was never judged,
		// so the account stays usable for a later attempt.
		return "", errors.NewAppError(errors.ErrProviderTransient,
			"token refresh did not complete", err)
	}

	accessCipher, err := s.vault.Seal([]byte(token.AccessToken))
	if err != nil {
		return "", err
	}

	// Providers only sometimes rotate the refresh credential; keep the old
	// one when no replacement arrives.
	var refreshCipher []byte
	if token.RefreshToken != "" && token.RefreshToken != string(refreshPlain) {
		if refreshCipher, err = s.vault.Seal([]byte(token.RefreshToken)); err != nil {
			return "", err
		}
	}

	expiry := token.Expiry
	if err := s.repo.UpdateCredentials(ctx, accountID, accessCipher, refreshCipher, &expiry); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to persist refreshed credentials", err)
	}

	logger.Info("TokenService:ValidAccessToken:Refreshed", "account_id", accountID, "expires_at", expiry)
	return token.AccessToken, nil
}

func (s *tokenService) revoke(ctx context.Context, accountID uuid.UUID) {
	if err := s.repo.MarkRevoked(ctx, accountID, time.Now()); err != nil {
		logger.Error("TokenService:revoke:Error", "error", err, "account_id", accountID)
	}
}
