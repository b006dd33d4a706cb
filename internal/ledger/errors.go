package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger core. Handlers map these onto HTTP statuses.
var (
	// Registry errors
	ErrNotFound           = errors.New("ledger: not found")
	ErrDuplicateCode      = errors.New("ledger: duplicate account code")
	ErrInvalidParent      = errors.New("ledger: invalid parent account")
	ErrInvalidAccountType = errors.New("ledger: invalid account type")
	ErrAccountInUse       = errors.New("ledger: account has posted lines")

	// Voucher validation errors
	ErrUnbalanced      = errors.New("ledger: voucher does not balance")
	ErrTooFewLines     = errors.New("ledger: voucher requires at least two lines")
	ErrInvalidLine     = errors.New("ledger: invalid voucher line")
	ErrInactiveAccount = errors.New("ledger: inactive account")

	// Posting errors
	ErrAlreadyPosted = errors.New("ledger: voucher already posted")
)

// ValidationError carries the specific failed rule plus enough detail for the
// operator to correct the entry before resubmitting.
type ValidationError struct {
	Rule   error // one of the sentinel errors above
	LineNo int   // 1-based line number, 0 for voucher-level failures
	Detail string
}

func (e *ValidationError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("%v: line %d: %s", e.Rule, e.LineNo, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Rule, e.Detail)
	}
	return e.Rule.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Rule
}

// IsValidation reports whether err belongs to the caller-fixable validation
// family.
func IsValidation(err error) bool {
	for _, rule := range []error{
		ErrUnbalanced, ErrTooFewLines, ErrInvalidLine, ErrInactiveAccount,
		ErrDuplicateCode, ErrInvalidParent, ErrInvalidAccountType,
	} {
		if errors.Is(err, rule) {
			return true
		}
	}
	return false
}
