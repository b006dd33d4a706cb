package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
	"school-ledger/internal/service"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, code, name, account_type, parent_id, is_active, created_at, updated_at`

// Create inserts the account together with its zero balance row so the
// posting engine can always lock a balance row for it.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, `
		INSERT INTO accounts (code, name, account_type, parent_id, is_active)
		VALUES (:code, :name, :account_type, :parent_id, :is_active)`, account)
	if err != nil {
		// The service pre-checks the code, but two concurrent creates can
		// both pass it; the unique index is the arbiter.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ledger.ErrDuplicateCode
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO account_balances (account_id, balance) VALUES (?, 0)`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = ? LIMIT 1`, accountColumns)
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE code = ? LIMIT 1`, accountColumns)
	if err := r.db.GetContext(ctx, &account, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*models.Account, error) {
	out := make(map[string]*models.Account, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM accounts WHERE code IN (?)`, accountColumns), codes)
	if err != nil {
		return nil, err
	}
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range accounts {
		out[accounts[i].Code] = &accounts[i]
	}
	return out, nil
}

func (r *AccountRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Account, error) {
	out := make(map[int64]*models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM accounts WHERE id IN (?)`, accountColumns), ids)
	if err != nil {
		return nil, err
	}
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	return out, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE accounts SET code = :code, name = :name, parent_id = :parent_id,
		       is_active = :is_active
		WHERE id = :id`, account)
	return err
}

// Delete removes the account and its balance row. Callers are responsible
// for checking HasLines first; the FK on voucher_lines also refuses deletes
// of referenced accounts.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM account_balances WHERE account_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *AccountRepository) List(ctx context.Context, filter service.AccountFilter) ([]models.Account, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if filter.Type != "" {
		whereClause += " AND account_type = ?"
		args = append(args, filter.Type)
	}
	if filter.ActiveOnly {
		whereClause += " AND is_active = TRUE"
	}
	if filter.Search != "" {
		whereClause += " AND (code LIKE ? OR name LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM accounts %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts %s ORDER BY code`, accountColumns, whereClause)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *AccountRepository) HasLines(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM voucher_lines WHERE account_id = ?)`, id)
	return exists, err
}
