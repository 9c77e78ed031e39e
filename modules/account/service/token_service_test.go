package service

import (
	"bytes"
	"context"
	"encoding/base64"
	goerrors "errors"
	"testing"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	"github.com/gekaluck/couple-moments-sub000/modules/account/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeAccountRepo struct {
	account *entity.ConnectedAccount

	updatedAccess  []byte
	updatedRefresh []byte
	updatedExpiry  *time.Time
	updateCalls    int
	revokedAt      *time.Time
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ConnectedAccount, error) {
	return f.account, nil
}

func (f *fakeAccountRepo) GetActiveByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*entity.ConnectedAccount, error) {
	if f.account == nil || f.account.Revoked() {
		return nil, nil
	}
	return f.account, nil
}

func (f *fakeAccountRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]entity.ConnectedAccount, error) {
	return nil, nil
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, account *entity.ConnectedAccount) (*entity.ConnectedAccount, error) {
	return account, nil
}

func (f *fakeAccountRepo) UpdateCredentials(ctx context.Context, id uuid.UUID, accessCipher, refreshCipher []byte, expiresAt *time.Time) error {
	f.updateCalls++
	f.updatedAccess = accessCipher
	f.updatedRefresh = refreshCipher
	f.updatedExpiry = expiresAt
	return nil
}

func (f *fakeAccountRepo) MarkRevoked(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.revokedAt = &at
	return nil
}

type fakeRefresher struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.calls++
	return f.token, f.err
}

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x24}, 32))
	v, err := vault.New(key)
	require.NoError(t, err)
	return v
}

func sealedAccount(t *testing.T, v *vault.Vault, access, refresh string, expiresIn time.Duration) *entity.ConnectedAccount {
	t.Helper()
	account := &entity.ConnectedAccount{
		UserID:       uuid.New(),
		Provider:     entity.ProviderGoogle,
		AccountEmail: "pat@example.com",
	}
	account.ID = uuid.New()

	var err error
	account.AccessCipher, err = v.Seal([]byte(access))
	require.NoError(t, err)
	if refresh != "" {
		account.RefreshCipher, err = v.Seal([]byte(refresh))
		require.NoError(t, err)
	}
	expiry := time.Now().Add(expiresIn)
	account.TokenExpiresAt = &expiry
	return account
}

func TestValidAccessTokenInsideMarginSkipsRefresh(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stored-access", "stored-refresh", 10*time.Minute)}
	refresher := &fakeRefresher{}
	svc := NewTokenService(repo, v, refresher)

	token, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.NoError(t, err)
	assert.Equal(t, "stored-access", token)
	assert.Zero(t, refresher.calls)
	assert.Zero(t, repo.updateCalls)
}

func TestValidAccessTokenNearExpiryRefreshes(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stale-access", "stored-refresh", 4*time.Minute)}
	refresher := &fakeRefresher{token: &oauth2.Token{
		AccessToken: "fresh-access",
		Expiry:      time.Now().Add(time.Hour),
	}}
	svc := NewTokenService(repo, v, refresher)

	token, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, refresher.calls)
	require.Equal(t, 1, repo.updateCalls)

	opened, err := v.Open(repo.updatedAccess)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", string(opened))
	// Refresh credential was not rotated, so the stored one must be kept.
	assert.Nil(t, repo.updatedRefresh)
}

func TestValidAccessTokenPersistsRotatedRefreshCredential(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stale-access", "old-refresh", time.Minute)}
	refresher := &fakeRefresher{token: &oauth2.Token{
		AccessToken:  "fresh-access",
		RefreshToken: "rotated-refresh",
		Expiry:       time.Now().Add(time.Hour),
	}}
	svc := NewTokenService(repo, v, refresher)

	_, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.NoError(t, err)

	require.NotNil(t, repo.updatedRefresh)
	opened, err := v.Open(repo.updatedRefresh)
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", string(opened))
}

func TestValidAccessTokenRejectedRefreshRevokesAccount(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stale-access", "dead-refresh", time.Minute)}
	refresher := &fakeRefresher{err: &oauth2.RetrieveError{
		ErrorCode: "invalid_grant",
		Body:      []byte(`{"error":"invalid_grant"}`),
	}}
	svc := NewTokenService(repo, v, refresher)

	_, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRefreshFailed))
	assert.NotNil(t, repo.revokedAt)
}

func TestValidAccessTokenTransportFailureDoesNotRevoke(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stale-access", "stored-refresh", time.Minute)}
	refresher := &fakeRefresher{err: goerrors.New("dial tcp: connection refused")}
	svc := NewTokenService(repo, v, refresher)

	_, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProviderTransient))
	assert.Nil(t, repo.revokedAt)
}

func TestValidAccessTokenExpiredWithoutRefreshCredential(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{account: sealedAccount(t, v, "stale-access", "", time.Minute)}
	svc := NewTokenService(repo, v, &fakeRefresher{})

	_, err := svc.ValidAccessToken(context.Background(), repo.account.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRefreshFailed))
	assert.NotNil(t, repo.revokedAt)
}

func TestValidAccessTokenRevokedAccount(t *testing.T) {
	v := testVault(t)
	account := sealedAccount(t, v, "access", "refresh", time.Hour)
	revokedAt := time.Now()
	account.RevokedAt = &revokedAt
	repo := &fakeAccountRepo{account: account}
	svc := NewTokenService(repo, v, &fakeRefresher{})

	_, err := svc.ValidAccessToken(context.Background(), account.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAccountRevoked))
}

func TestValidAccessTokenUnknownAccount(t *testing.T) {
	v := testVault(t)
	repo := &fakeAccountRepo{}
	svc := NewTokenService(repo, v, &fakeRefresher{})

	_, err := svc.ValidAccessToken(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotConnected))
}
