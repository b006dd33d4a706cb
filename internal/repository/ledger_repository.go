package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
	"school-ledger/internal/service"
)

// LedgerRepository is the durable balance store: the append-only voucher and
// line log plus the materialized account_balances view.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// PostVoucher commits a voucher in a single transaction. Balance rows of the
// touched accounts are locked with SELECT ... FOR UPDATE in ascending
// account-id order, so concurrent vouchers sharing an account serialize
// against each other while vouchers on disjoint account sets proceed in
// parallel. InnoDB MVCC keeps readers on a consistent snapshot, so a report
// in flight never observes a half-posted voucher.
func (r *LedgerRepository) PostVoucher(ctx context.Context, voucher *models.Voucher) error {
	accountIDs := uniqueAccountIDs(voucher.Lines)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock in a stable order to avoid deadlocks between concurrent posts.
	lockQuery, args, err := sqlx.In(
		`SELECT account_id FROM account_balances WHERE account_id IN (?) ORDER BY account_id FOR UPDATE`,
		accountIDs)
	if err != nil {
		return err
	}
	var locked []int64
	if err := tx.SelectContext(ctx, &locked, tx.Rebind(lockQuery), args...); err != nil {
		return err
	}
	if len(locked) != len(accountIDs) {
		return fmt.Errorf("%w: balance row missing for a referenced account", ledger.ErrNotFound)
	}

	typeQuery, args, err := sqlx.In(`SELECT id, account_type FROM accounts WHERE id IN (?)`, accountIDs)
	if err != nil {
		return err
	}
	var accountTypes []struct {
		ID   int64              `db:"id"`
		Type models.AccountType `db:"account_type"`
	}
	if err := tx.SelectContext(ctx, &accountTypes, tx.Rebind(typeQuery), args...); err != nil {
		return err
	}
	types := make(map[int64]models.AccountType, len(accountTypes))
	for _, at := range accountTypes {
		types[at.ID] = at.Type
	}

	result, err := tx.NamedExecContext(ctx, `
		INSERT INTO vouchers (voucher_no, voucher_type, voucher_date, narration, reverses_id, created_by, created_at, posted_at)
		VALUES (:voucher_no, :voucher_type, :voucher_date, :narration, :reverses_id, :created_by, :created_at, :posted_at)`,
		voucher)
	if err != nil {
		return err
	}
	voucherID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	voucher.ID = voucherID

	deltas := make(map[int64]int64, len(accountIDs))
	for i := range voucher.Lines {
		line := &voucher.Lines[i]
		line.VoucherID = voucherID
		lineResult, err := tx.ExecContext(ctx, `
			INSERT INTO voucher_lines (voucher_id, line_no, account_id, debit, credit, narration)
			VALUES (?, ?, ?, ?, ?, ?)`,
			voucherID, line.LineNo, line.AccountID, line.Debit, line.Credit, line.Narration)
		if err != nil {
			return err
		}
		if line.ID, err = lineResult.LastInsertId(); err != nil {
			return err
		}
		deltas[line.AccountID] += ledger.Delta(types[line.AccountID], line.Debit, line.Credit)
	}

	for _, accountID := range accountIDs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE account_balances
			SET balance = balance + ?, last_voucher_id = ?, updated_at = NOW()
			WHERE account_id = ?`,
			deltas[accountID], voucherID, accountID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *LedgerRepository) FindVoucher(ctx context.Context, id int64) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.GetContext(ctx, &voucher, `
		SELECT id, voucher_no, voucher_type, voucher_date, narration, reverses_id,
		       created_by, created_at, posted_at
		FROM vouchers WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}

	err = r.db.SelectContext(ctx, &voucher.Lines, `
		SELECT id, voucher_id, line_no, account_id, debit, credit, narration
		FROM voucher_lines WHERE voucher_id = ? ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *LedgerRepository) ListVouchers(ctx context.Context, filter service.VoucherFilter) ([]models.Voucher, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if filter.Type != "" {
		whereClause += " AND voucher_type = ?"
		args = append(args, filter.Type)
	}
	if !filter.StartDate.IsZero() {
		whereClause += " AND voucher_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		whereClause += " AND voucher_date <= ?"
		args = append(args, filter.EndDate)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM vouchers %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, voucher_no, voucher_type, voucher_date, narration, reverses_id,
		       created_by, created_at, posted_at
		FROM vouchers %s
		ORDER BY voucher_date, id`, whereClause)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	var vouchers []models.Voucher
	if err := r.db.SelectContext(ctx, &vouchers, query, args...); err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, accountID int64) (*models.AccountBalance, error) {
	var balance models.AccountBalance
	err := r.db.GetContext(ctx, &balance, `
		SELECT account_id, balance, last_voucher_id, updated_at
		FROM account_balances WHERE account_id = ? LIMIT 1`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// SumActivity replays the ledger log: total debits and credits against the
// account for voucher dates up to and including asOf. A zero asOf replays
// the entire log, future-dated vouchers included.
func (r *LedgerRepository) SumActivity(ctx context.Context, accountID int64, asOf time.Time) (int64, int64, error) {
	var sums struct {
		Debit  int64 `db:"debit"`
		Credit int64 `db:"credit"`
	}
	query := `
		SELECT COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit
		FROM voucher_lines l
		JOIN vouchers v ON v.id = l.voucher_id
		WHERE l.account_id = ?`
	args := []interface{}{accountID}
	if !asOf.IsZero() {
		query += ` AND v.voucher_date <= ?`
		args = append(args, asOf)
	}
	if err := r.db.GetContext(ctx, &sums, query, args...); err != nil {
		return 0, 0, err
	}
	return sums.Debit, sums.Credit, nil
}

func (r *LedgerRepository) Ledger(ctx context.Context, accountID int64, start, end time.Time, limit, offset int) ([]models.LedgerLine, int, error) {
	whereClause := "WHERE l.account_id = ? AND v.voucher_date <= ?"
	args := []interface{}{accountID, end}
	if !start.IsZero() {
		whereClause += " AND v.voucher_date >= ?"
		args = append(args, start)
	}

	var total int
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM voucher_lines l
		JOIN vouchers v ON v.id = l.voucher_id %s`, whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT l.id AS line_id, v.id AS voucher_id, v.voucher_no, v.voucher_type,
		       v.voucher_date, v.narration, l.debit, l.credit
		FROM voucher_lines l
		JOIN vouchers v ON v.id = l.voucher_id
		%s
		ORDER BY v.voucher_date, l.id`, whereClause)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	var lines []models.LedgerLine
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// ActivityByAccount sums debits and credits per account over the window.
// Accounts with no lines in the window produce no row.
func (r *LedgerRepository) ActivityByAccount(ctx context.Context, start, end time.Time) ([]models.AccountActivity, error) {
	whereClause := "WHERE v.voucher_date <= ?"
	args := []interface{}{end}
	if !start.IsZero() {
		whereClause += " AND v.voucher_date >= ?"
		args = append(args, start)
	}

	query := fmt.Sprintf(`
		SELECT a.id AS account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit
		FROM voucher_lines l
		JOIN vouchers v ON v.id = l.voucher_id
		JOIN accounts a ON a.id = l.account_id
		%s
		GROUP BY a.id, a.code, a.name, a.account_type
		ORDER BY a.code`, whereClause)

	var activity []models.AccountActivity
	if err := r.db.SelectContext(ctx, &activity, query, args...); err != nil {
		return nil, err
	}
	return activity, nil
}

func uniqueAccountIDs(lines []models.VoucherLine) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, ln := range lines {
		if !seen[ln.AccountID] {
			seen[ln.AccountID] = true
			ids = append(ids, ln.AccountID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
