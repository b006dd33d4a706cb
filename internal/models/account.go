package models

import "time"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the account type accumulates on the debit side.
// Asset and expense accounts are debit-normal; liability, equity and income
// accounts are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

type Account struct {
	ID        int64       `db:"id" json:"id"`
	Code      string      `db:"code" json:"code"`
	Name      string      `db:"name" json:"name"`
	Type      AccountType `db:"account_type" json:"type"`
	ParentID  *int64      `db:"parent_id" json:"parent_id,omitempty"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

type AccountRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id"`
}

// AccountBalance is the materialized running balance for one account. It is
// mutated only inside the posting transaction and is always re-derivable by
// summing the account's voucher lines.
type AccountBalance struct {
	AccountID     int64     `db:"account_id" json:"account_id"`
	Balance       int64     `db:"balance" json:"balance"`
	LastVoucherID *int64    `db:"last_voucher_id" json:"last_voucher_id,omitempty"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
