package service

import (
	"context"

	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"

	"github.com/google/uuid"
)

// repoAccountResolver adapts the connected-account repository to the narrow
// lookup interface the sync flow needs.
type repoAccountResolver struct {
	accounts accountRepository.AccountRepository
}

func NewAccountResolver(accounts accountRepository.AccountRepository) AccountResolver {
	return &repoAccountResolver{accounts: accounts}
}

func (r *repoAccountResolver) ActiveAccountID(ctx context.Context, userID uuid.UUID, provider string) (uuid.UUID, bool, error) {
	account, err := r.accounts.GetActiveByUserAndProvider(ctx, userID, provider)
	if err != nil {
		return uuid.Nil, false, err
	}
	if account == nil {
		return uuid.Nil, false, nil
	}
	return account.ID, true, nil
}

func (r *repoAccountResolver) IsRevoked(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := r.accounts.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if account == nil {
		return true, nil
	}
	return account.Revoked(), nil
}
