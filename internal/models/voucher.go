package models

import "time"

// VoucherType is descriptive metadata on a voucher. It does not constrain
// which accounts the lines may touch.
type VoucherType string

const (
	VoucherTypeCashPayment VoucherType = "CPV"
	VoucherTypeCashReceipt VoucherType = "CRV"
	VoucherTypeBankPayment VoucherType = "BPV"
	VoucherTypeBankReceipt VoucherType = "BRV"
	VoucherTypeJournal     VoucherType = "JV"
)

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	switch t {
	case VoucherTypeCashPayment, VoucherTypeCashReceipt, VoucherTypeBankPayment, VoucherTypeBankReceipt, VoucherTypeJournal:
		return true
	}
	return false
}

// Voucher is a single balanced journal entry. A row exists in storage only
// once the voucher is posted; drafts live in memory and PostedAt is set
// exactly once, by the posting engine.
type Voucher struct {
	ID         int64         `db:"id" json:"id"`
	VoucherNo  string        `db:"voucher_no" json:"voucher_no"`
	Type       VoucherType   `db:"voucher_type" json:"type"`
	Date       time.Time     `db:"voucher_date" json:"date"`
	Narration  string        `db:"narration" json:"narration"`
	ReversesID *int64        `db:"reverses_id" json:"reverses_id,omitempty"`
	CreatedBy  int64         `db:"created_by" json:"created_by"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	PostedAt   *time.Time    `db:"posted_at" json:"posted_at,omitempty"`
	Lines      []VoucherLine `db:"-" json:"lines"`
}

// Posted reports whether the voucher has been committed to the ledger.
func (v *Voucher) Posted() bool {
	return v.PostedAt != nil
}

// VoucherLine is one side of a double entry: exactly one of Debit or Credit
// is set, in integer minor units.
type VoucherLine struct {
	ID        int64  `db:"id" json:"id"`
	VoucherID int64  `db:"voucher_id" json:"voucher_id"`
	LineNo    int    `db:"line_no" json:"line_no"`
	AccountID int64  `db:"account_id" json:"account_id"`
	Debit     int64  `db:"debit" json:"debit"`
	Credit    int64  `db:"credit" json:"credit"`
	Narration string `db:"narration" json:"narration,omitempty"`
}

// LedgerLine is a posted line joined with its voucher, as returned by the
// account ledger read path.
type LedgerLine struct {
	LineID    int64       `db:"line_id" json:"line_id"`
	VoucherID int64       `db:"voucher_id" json:"voucher_id"`
	VoucherNo string      `db:"voucher_no" json:"voucher_no"`
	Type      VoucherType `db:"voucher_type" json:"type"`
	Date      time.Time   `db:"voucher_date" json:"date"`
	Narration string      `db:"narration" json:"narration"`
	Debit     int64       `db:"debit" json:"debit"`
	Credit    int64       `db:"credit" json:"credit"`
}

type VoucherLineRequest struct {
	AccountCode string `json:"account_code"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	Narration   string `json:"narration"`
}

type VoucherRequest struct {
	Type      string               `json:"type"`
	Date      string               `json:"date"` // YYYY-MM-DD
	Narration string               `json:"narration"`
	Lines     []VoucherLineRequest `json:"lines"`
}

type ReverseRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Narration string `json:"narration"`
}
