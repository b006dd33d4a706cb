package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
)

func newAccountService(store *memStore) *AccountService {
	return NewAccountService(store, quietLogger())
}

func TestAccountCreate(t *testing.T) {
	store := newMemStore()
	svc := newAccountService(store)
	ctx := context.Background()

	account, err := svc.Create(ctx, models.AccountRequest{Code: "1010", Name: "Cash", Type: "asset"})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.True(t, account.IsActive)

	// Creating an account seeds its zero balance row.
	bal, err := store.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Zero(t, bal.Balance)
}

func TestAccountCreate_DuplicateCode(t *testing.T) {
	store := newMemStore()
	svc := newAccountService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.AccountRequest{Code: "1010", Name: "Cash", Type: "asset"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.AccountRequest{Code: "1010", Name: "Petty Cash", Type: "asset"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateCode)
}

// blindStore hides accounts from code lookups so the pre-insert check
// passes, the way it does when a concurrent create wins the race. The
// duplicate must still surface as ErrDuplicateCode from the insert itself.
type blindStore struct {
	*memStore
}

func (s *blindStore) FindByCode(context.Context, string) (*models.Account, error) {
	return nil, ledger.ErrNotFound
}

func TestAccountCreate_ConcurrentDuplicateCode(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	seeded := models.Account{Code: "1010", Name: "Cash", Type: models.AccountTypeAsset, IsActive: true}
	require.NoError(t, store.Create(ctx, &seeded))

	svc := NewAccountService(&blindStore{store}, quietLogger())
	_, err := svc.Create(ctx, models.AccountRequest{Code: "1010", Name: "Petty Cash", Type: "asset"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateCode)
	assert.True(t, ledger.IsValidation(err))
}

func TestAccountCreate_InvalidType(t *testing.T) {
	svc := newAccountService(newMemStore())

	_, err := svc.Create(context.Background(), models.AccountRequest{Code: "1010", Name: "Cash", Type: "revenue"})
	assert.ErrorIs(t, err, ledger.ErrInvalidAccountType)
}

func TestAccountCreate_InvalidParent(t *testing.T) {
	svc := newAccountService(newMemStore())

	missing := int64(42)
	_, err := svc.Create(context.Background(), models.AccountRequest{Code: "1011", Name: "Petty Cash", Type: "asset", ParentID: &missing})
	assert.ErrorIs(t, err, ledger.ErrInvalidParent)
}

func TestAccountUpdate_ParentCycle(t *testing.T) {
	store := newMemStore()
	svc := newAccountService(store)
	ctx := context.Background()

	parent, err := svc.Create(ctx, models.AccountRequest{Code: "1000", Name: "Current Assets", Type: "asset"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, models.AccountRequest{Code: "1010", Name: "Cash", Type: "asset", ParentID: &parent.ID})
	require.NoError(t, err)

	// Moving the parent under its own child would form a cycle.
	_, err = svc.Update(ctx, parent.ID, models.AccountRequest{ParentID: &child.ID})
	assert.ErrorIs(t, err, ledger.ErrInvalidParent)

	// As would self-parenting.
	_, err = svc.Update(ctx, parent.ID, models.AccountRequest{ParentID: &parent.ID})
	assert.ErrorIs(t, err, ledger.ErrInvalidParent)
}

func TestAccountDeactivate(t *testing.T) {
	store := seedChart(t)
	svc := newAccountService(store)
	ctx := context.Background()

	account, err := store.FindByCode(ctx, "1020")
	require.NoError(t, err)

	updated, err := svc.Deactivate(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// Deactivating twice is a no-op, not an error.
	_, err = svc.Deactivate(ctx, account.ID)
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAccountDelete_RefusedOnceUsed(t *testing.T) {
	store := seedChart(t)
	accounts := newAccountService(store)
	posting, _ := newPostingService(store)
	ctx := context.Background()

	_, err := posting.PostRequest(ctx, tuitionRequest(5000), 1)
	require.NoError(t, err)

	cash, err := store.FindByCode(ctx, "1010")
	require.NoError(t, err)
	err = accounts.Delete(ctx, cash.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountInUse)

	// An unused account may still be removed.
	unused, err := store.FindByCode(ctx, "2010")
	require.NoError(t, err)
	require.NoError(t, accounts.Delete(ctx, unused.ID))
	_, err = accounts.Get(ctx, unused.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAccountList_FilterAndOrder(t *testing.T) {
	store := seedChart(t)
	svc := newAccountService(store)
	ctx := context.Background()

	bank, err := store.FindByCode(ctx, "1020")
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, bank.ID)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Code, all[i].Code)
	}

	assets, _, err := svc.List(ctx, AccountFilter{Type: models.AccountTypeAsset, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "1010", assets[0].Code)
}
