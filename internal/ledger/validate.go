package ledger

import (
	"fmt"
	"time"

	"school-ledger/internal/models"
)

// AccountResolver resolves account codes against the chart of accounts.
type AccountResolver interface {
	ByCode(code string) (*models.Account, bool)
}

// BuildVoucher resolves and validates a draft voucher. It is pure: callers
// may invoke it repeatedly (for example while an operator edits line amounts)
// without committing anything. On success the returned voucher is unposted
// (PostedAt nil) and its lines carry resolved account IDs.
func BuildVoucher(
	vtype models.VoucherType,
	date time.Time,
	narration string,
	createdBy int64,
	reqs []models.VoucherLineRequest,
	accounts AccountResolver,
) (*models.Voucher, error) {
	if !vtype.Valid() {
		return nil, &ValidationError{Rule: ErrInvalidLine, Detail: fmt.Sprintf("unknown voucher type %q", vtype)}
	}
	if len(reqs) < 2 {
		return nil, &ValidationError{Rule: ErrTooFewLines, Detail: fmt.Sprintf("got %d line(s)", len(reqs))}
	}

	var totalDebit, totalCredit int64
	lines := make([]models.VoucherLine, 0, len(reqs))
	for i, req := range reqs {
		lineNo := i + 1

		if req.Debit < 0 || req.Credit < 0 {
			return nil, &ValidationError{Rule: ErrInvalidLine, LineNo: lineNo, Detail: "negative amount"}
		}
		hasDebit := req.Debit > 0
		hasCredit := req.Credit > 0
		if hasDebit == hasCredit {
			return nil, &ValidationError{Rule: ErrInvalidLine, LineNo: lineNo, Detail: "exactly one of debit or credit must be set"}
		}

		account, ok := accounts.ByCode(req.AccountCode)
		if !ok {
			return nil, fmt.Errorf("%w: account %q", ErrNotFound, req.AccountCode)
		}
		if !account.IsActive {
			return nil, &ValidationError{Rule: ErrInactiveAccount, LineNo: lineNo, Detail: fmt.Sprintf("account %s %s", account.Code, account.Name)}
		}

		totalDebit += req.Debit
		totalCredit += req.Credit
		lines = append(lines, models.VoucherLine{
			LineNo:    lineNo,
			AccountID: account.ID,
			Debit:     req.Debit,
			Credit:    req.Credit,
			Narration: req.Narration,
		})
	}

	if totalDebit != totalCredit {
		return nil, &ValidationError{
			Rule:   ErrUnbalanced,
			Detail: fmt.Sprintf("debits %d != credits %d (off by %d)", totalDebit, totalCredit, totalDebit-totalCredit),
		}
	}

	return &models.Voucher{
		Type:      vtype,
		Date:      date,
		Narration: narration,
		CreatedBy: createdBy,
		Lines:     lines,
	}, nil
}

// MirrorLines returns the exact debit/credit mirror of lines: every debit
// becomes a credit of equal amount and vice versa. Used to build reversal
// vouchers.
func MirrorLines(lines []models.VoucherLine) []models.VoucherLine {
	mirrored := make([]models.VoucherLine, len(lines))
	for i, ln := range lines {
		mirrored[i] = models.VoucherLine{
			LineNo:    ln.LineNo,
			AccountID: ln.AccountID,
			Debit:     ln.Credit,
			Credit:    ln.Debit,
			Narration: ln.Narration,
		}
	}
	return mirrored
}

// Delta is the signed balance change a line applies to an account, under the
// account type's normal-balance convention.
func Delta(t models.AccountType, debit, credit int64) int64 {
	if t.DebitNormal() {
		return debit - credit
	}
	return credit - debit
}
