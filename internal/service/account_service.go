package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
)

// AccountService manages the chart of accounts. Accounts referenced by
// posted lines are never hard-deleted, only deactivated, to preserve audit
// history.
type AccountService struct {
	store  AccountStore
	logger *logrus.Logger
}

func NewAccountService(store AccountStore, logger *logrus.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

func (s *AccountService) Create(ctx context.Context, req models.AccountRequest) (*models.Account, error) {
	accountType := models.AccountType(req.Type)
	if !accountType.Valid() {
		return nil, &ledger.ValidationError{Rule: ledger.ErrInvalidAccountType, Detail: req.Type}
	}

	if existing, err := s.store.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, &ledger.ValidationError{Rule: ledger.ErrDuplicateCode, Detail: req.Code}
	}

	if req.ParentID != nil {
		if _, err := s.store.FindByID(ctx, *req.ParentID); err != nil {
			return nil, &ledger.ValidationError{Rule: ledger.ErrInvalidParent, Detail: fmt.Sprintf("parent %d does not exist", *req.ParentID)}
		}
	}

	account := &models.Account{
		Code:     req.Code,
		Name:     req.Name,
		Type:     accountType,
		ParentID: req.ParentID,
		IsActive: true,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"code":       account.Code,
	}).Info("account created")

	return account, nil
}

// Update renames an account or moves it under a new parent. Parent moves are
// checked for cycles by walking the parent chain.
func (s *AccountService) Update(ctx context.Context, id int64, req models.AccountRequest) (*models.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}

	if req.Code != "" && req.Code != account.Code {
		if existing, err := s.store.FindByCode(ctx, req.Code); err == nil && existing != nil && existing.ID != id {
			return nil, &ledger.ValidationError{Rule: ledger.ErrDuplicateCode, Detail: req.Code}
		}
		account.Code = req.Code
	}
	if req.Name != "" {
		account.Name = req.Name
	}
	if req.ParentID != nil {
		if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		account.ParentID = req.ParentID
	}

	if err := s.store.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Deactivate marks the account inactive. Historical balances are untouched;
// the account simply stops accepting new lines.
func (s *AccountService) Deactivate(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}
	if !account.IsActive {
		return account, nil
	}
	account.IsActive = false
	if err := s.store.Update(ctx, account); err != nil {
		return nil, err
	}

	s.logger.WithField("account_id", id).Info("account deactivated")
	return account, nil
}

// Delete removes an account only while it has no posted lines; otherwise it
// returns ErrAccountInUse and the caller should deactivate instead.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return ledger.ErrNotFound
	}
	used, err := s.store.HasLines(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ledger.ErrAccountInUse
	}
	return s.store.Delete(ctx, id)
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}
	return account, nil
}

// List returns accounts in stable code order.
func (s *AccountService) List(ctx context.Context, filter AccountFilter) ([]models.Account, int, error) {
	return s.store.List(ctx, filter)
}

// checkParent verifies the new parent exists and that the move would not
// create a cycle in the hierarchy.
func (s *AccountService) checkParent(ctx context.Context, id, parentID int64) error {
	if parentID == id {
		return &ledger.ValidationError{Rule: ledger.ErrInvalidParent, Detail: "account cannot be its own parent"}
	}
	const maxDepth = 64
	current := parentID
	for depth := 0; depth < maxDepth; depth++ {
		parent, err := s.store.FindByID(ctx, current)
		if err != nil {
			return &ledger.ValidationError{Rule: ledger.ErrInvalidParent, Detail: fmt.Sprintf("parent %d does not exist", current)}
		}
		if parent.ID == id {
			return &ledger.ValidationError{Rule: ledger.ErrInvalidParent, Detail: "parent chain would form a cycle"}
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return &ledger.ValidationError{Rule: ledger.ErrInvalidParent, Detail: "parent chain too deep"}
}
