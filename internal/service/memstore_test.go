package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
)

var errStorageDown = errors.New("storage unavailable")

// memStore is an in-memory AccountStore + LedgerStore for tests. PostVoucher
// mirrors the repository contract: it either applies the whole voucher or
// nothing.
type memStore struct {
	mu sync.RWMutex

	nextAccountID int64
	nextVoucherID int64
	nextLineID    int64

	accounts map[int64]*models.Account
	byCode   map[string]int64
	vouchers map[int64]*models.Voucher
	balances map[int64]*models.AccountBalance

	// failPost simulates a durability failure during commit.
	failPost bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*models.Account),
		byCode:   make(map[string]int64),
		vouchers: make(map[int64]*models.Voucher),
		balances: make(map[int64]*models.AccountBalance),
	}
}

// --- AccountStore ---

func (m *memStore) Create(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byCode[account.Code]; exists {
		return ledger.ErrDuplicateCode
	}
	m.nextAccountID++
	account.ID = m.nextAccountID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	m.accounts[account.ID] = &cp
	m.byCode[account.Code] = account.ID
	m.balances[account.ID] = &models.AccountBalance{AccountID: account.ID}
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) FindByCode(_ context.Context, code string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byCode[code]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *m.accounts[id]
	return &cp, nil
}

func (m *memStore) FindByCodes(_ context.Context, codes []string) (map[string]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*models.Account, len(codes))
	for _, code := range codes {
		if id, ok := m.byCode[code]; ok {
			cp := *m.accounts[id]
			out[code] = &cp
		}
	}
	return out, nil
}

func (m *memStore) FindByIDs(_ context.Context, ids []int64) (map[int64]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]*models.Account, len(ids))
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			cp := *a
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.accounts[account.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	delete(m.byCode, old.Code)
	account.UpdatedAt = time.Now()
	cp := *account
	m.accounts[account.ID] = &cp
	m.byCode[account.Code] = account.ID
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ledger.ErrNotFound
	}
	delete(m.byCode, a.Code)
	delete(m.accounts, id)
	delete(m.balances, id)
	return nil
}

func (m *memStore) List(_ context.Context, filter AccountFilter) ([]models.Account, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Account
	for _, a := range m.accounts {
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (m *memStore) HasLines(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vouchers {
		for _, ln := range v.Lines {
			if ln.AccountID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- LedgerStore ---

func (m *memStore) PostVoucher(_ context.Context, voucher *models.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPost {
		return errStorageDown
	}
	m.nextVoucherID++
	voucher.ID = m.nextVoucherID
	for i := range voucher.Lines {
		m.nextLineID++
		voucher.Lines[i].ID = m.nextLineID
		voucher.Lines[i].VoucherID = voucher.ID
	}
	cp := *voucher
	cp.Lines = append([]models.VoucherLine(nil), voucher.Lines...)
	m.vouchers[voucher.ID] = &cp

	for _, ln := range voucher.Lines {
		account := m.accounts[ln.AccountID]
		bal := m.balances[ln.AccountID]
		bal.Balance += ledger.Delta(account.Type, ln.Debit, ln.Credit)
		id := voucher.ID
		bal.LastVoucherID = &id
		bal.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memStore) FindVoucher(_ context.Context, id int64) (*models.Voucher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vouchers[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *v
	cp.Lines = append([]models.VoucherLine(nil), v.Lines...)
	return &cp, nil
}

func (m *memStore) ListVouchers(_ context.Context, filter VoucherFilter) ([]models.Voucher, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Voucher
	for _, v := range m.vouchers {
		if filter.Type != "" && v.Type != filter.Type {
			continue
		}
		if !filter.StartDate.IsZero() && v.Date.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && v.Date.After(filter.EndDate) {
			continue
		}
		cp := *v
		cp.Lines = append([]models.VoucherLine(nil), v.Lines...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memStore) GetBalance(_ context.Context, accountID int64) (*models.AccountBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bal, ok := m.balances[accountID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *bal
	return &cp, nil
}

func (m *memStore) SumActivity(_ context.Context, accountID int64, asOf time.Time) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var debit, credit int64
	for _, v := range m.vouchers {
		if !asOf.IsZero() && v.Date.After(asOf) {
			continue
		}
		for _, ln := range v.Lines {
			if ln.AccountID == accountID {
				debit += ln.Debit
				credit += ln.Credit
			}
		}
	}
	return debit, credit, nil
}

func (m *memStore) Ledger(_ context.Context, accountID int64, start, end time.Time, limit, offset int) ([]models.LedgerLine, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.LedgerLine
	for _, v := range m.vouchers {
		if (!start.IsZero() && v.Date.Before(start)) || (!end.IsZero() && v.Date.After(end)) {
			continue
		}
		for _, ln := range v.Lines {
			if ln.AccountID != accountID {
				continue
			}
			out = append(out, models.LedgerLine{
				LineID:    ln.ID,
				VoucherID: v.ID,
				VoucherNo: v.VoucherNo,
				Type:      v.Type,
				Date:      v.Date,
				Narration: v.Narration,
				Debit:     ln.Debit,
				Credit:    ln.Credit,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].LineID < out[j].LineID
	})
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) ActivityByAccount(_ context.Context, start, end time.Time) ([]models.AccountActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byAccount := make(map[int64]*models.AccountActivity)
	for _, v := range m.vouchers {
		if (!start.IsZero() && v.Date.Before(start)) || v.Date.After(end) {
			continue
		}
		for _, ln := range v.Lines {
			act, ok := byAccount[ln.AccountID]
			if !ok {
				account := m.accounts[ln.AccountID]
				act = &models.AccountActivity{
					AccountID: account.ID,
					Code:      account.Code,
					Name:      account.Name,
					Type:      account.Type,
				}
				byAccount[ln.AccountID] = act
			}
			act.Debit += ln.Debit
			act.Credit += ln.Credit
		}
	}
	out := make([]models.AccountActivity, 0, len(byAccount))
	for _, act := range byAccount {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- shared test fixtures ---

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// seedChart loads a minimal school chart of accounts and returns the store.
func seedChart(t interface{ Fatalf(string, ...interface{}) }) *memStore {
	store := newMemStore()
	ctx := context.Background()
	for _, a := range []models.Account{
		{Code: "1010", Name: "Cash", Type: models.AccountTypeAsset, IsActive: true},
		{Code: "1020", Name: "Bank", Type: models.AccountTypeAsset, IsActive: true},
		{Code: "2010", Name: "Payables", Type: models.AccountTypeLiability, IsActive: true},
		{Code: "3010", Name: "General Fund", Type: models.AccountTypeEquity, IsActive: true},
		{Code: "4010", Name: "Tuition Income", Type: models.AccountTypeIncome, IsActive: true},
		{Code: "5010", Name: "Salaries", Type: models.AccountTypeExpense, IsActive: true},
	} {
		account := a
		if err := store.Create(ctx, &account); err != nil {
			t.Fatalf("seed account %s: %v", a.Code, err)
		}
	}
	return store
}
