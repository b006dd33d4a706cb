package service

import (
	"context"
	"time"

	"school-ledger/internal/models"
)

// AccountFilter narrows account listings. Zero values mean "no filter".
type AccountFilter struct {
	Type       models.AccountType
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// VoucherFilter narrows voucher listings.
type VoucherFilter struct {
	Type      models.VoucherType
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// AccountStore persists the chart of accounts. Creating an account also
// seeds its zero balance row so the posting engine can always row-lock.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByCode(ctx context.Context, code string) (*models.Account, error)
	FindByCodes(ctx context.Context, codes []string) (map[string]*models.Account, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter AccountFilter) ([]models.Account, int, error)
	HasLines(ctx context.Context, id int64) (bool, error)
}

// LedgerStore is the balance store: the append-only voucher/line log plus
// the materialized per-account balances. PostVoucher is the single mutating
// entry point and must be atomic. On error the ledger is left untouched.
type LedgerStore interface {
	// PostVoucher appends the voucher and its lines and applies each line's
	// signed delta to the touched account balances, all in one commit.
	// Balance updates are serialized per account, not globally.
	PostVoucher(ctx context.Context, voucher *models.Voucher) error

	FindVoucher(ctx context.Context, id int64) (*models.Voucher, error)
	ListVouchers(ctx context.Context, filter VoucherFilter) ([]models.Voucher, int, error)

	// GetBalance returns the materialized balance row.
	GetBalance(ctx context.Context, accountID int64) (*models.AccountBalance, error)

	// SumActivity replays the log: total debits and credits against the
	// account for voucher dates up to and including asOf. A zero asOf
	// replays the entire log, future-dated vouchers included.
	SumActivity(ctx context.Context, accountID int64, asOf time.Time) (debit, credit int64, err error)

	// Ledger returns posted lines for the account within [start, end],
	// ordered by voucher date then insertion order.
	Ledger(ctx context.Context, accountID int64, start, end time.Time, limit, offset int) ([]models.LedgerLine, int, error)

	// ActivityByAccount sums debits and credits per account over the window,
	// omitting accounts with no lines in it. A zero start means "from the
	// beginning of the ledger".
	ActivityByAccount(ctx context.Context, start, end time.Time) ([]models.AccountActivity, error)
}
