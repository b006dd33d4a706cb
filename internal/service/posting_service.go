package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
)

// TaskEnqueuer schedules background work after a commit. A nil enqueuer
// disables background jobs (web instance running without Redis).
type TaskEnqueuer interface {
	EnqueueVerifyBalances(ctx context.Context) error
}

// PostingService is the posting engine: the only path that mutates the
// ledger. Vouchers are validated, committed atomically exactly once, and
// undone only by posting a reversing voucher.
type PostingService struct {
	accounts AccountStore
	store    LedgerStore
	cache    *ReportCache
	tasks    TaskEnqueuer
	logger   *logrus.Logger
}

func NewPostingService(accounts AccountStore, store LedgerStore, cache *ReportCache, tasks TaskEnqueuer, logger *logrus.Logger) *PostingService {
	return &PostingService{
		accounts: accounts,
		store:    store,
		cache:    cache,
		tasks:    tasks,
		logger:   logger,
	}
}

// codeResolver adapts a preloaded account map to ledger.AccountResolver.
type codeResolver map[string]*models.Account

func (r codeResolver) ByCode(code string) (*models.Account, bool) {
	a, ok := r[code]
	return a, ok
}

// Validate builds a draft voucher from the request without committing
// anything. Safe to call repeatedly while an operator edits the entry.
func (s *PostingService) Validate(ctx context.Context, req models.VoucherRequest, createdBy int64) (*models.Voucher, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, &ledger.ValidationError{Rule: ledger.ErrInvalidLine, Detail: fmt.Sprintf("bad date %q, want YYYY-MM-DD", req.Date)}
	}

	codes := make([]string, 0, len(req.Lines))
	for _, ln := range req.Lines {
		codes = append(codes, ln.AccountCode)
	}
	accounts, err := s.accounts.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	return ledger.BuildVoucher(models.VoucherType(req.Type), date, req.Narration, createdBy, req.Lines, codeResolver(accounts))
}

// Post commits a validated draft: assigns the posted-at timestamp, appends
// the lines to the ledger log and applies the balance deltas in one atomic
// commit. A draft is posted at most once; re-validation happens here because
// accounts may have been deactivated since the draft was built.
func (s *PostingService) Post(ctx context.Context, voucher *models.Voucher) error {
	if voucher.Posted() || voucher.ID != 0 {
		return ledger.ErrAlreadyPosted
	}
	if err := s.revalidate(ctx, voucher); err != nil {
		return err
	}

	if voucher.VoucherNo == "" {
		voucher.VoucherNo = uuid.NewString()
	}
	now := time.Now()
	voucher.CreatedAt = now
	voucher.PostedAt = &now

	if err := s.store.PostVoucher(ctx, voucher); err != nil {
		// The commit is all-or-nothing; leave the draft unposted.
		voucher.PostedAt = nil
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"voucher_id": voucher.ID,
		"voucher_no": voucher.VoucherNo,
		"type":       voucher.Type,
		"lines":      len(voucher.Lines),
	}).Info("voucher posted")

	s.cache.Bump(ctx)
	if s.tasks != nil {
		if err := s.tasks.EnqueueVerifyBalances(ctx); err != nil {
			s.logger.WithError(err).Warn("failed to enqueue balance verification")
		}
	}
	return nil
}

// PostRequest validates and posts in one step, the POST /vouchers path.
func (s *PostingService) PostRequest(ctx context.Context, req models.VoucherRequest, createdBy int64) (*models.Voucher, error) {
	voucher, err := s.Validate(ctx, req, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.Post(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Reverse posts a new voucher mirroring every line of the original. The
// original is never mutated or deleted; both remain queryable in the ledger.
func (s *PostingService) Reverse(ctx context.Context, voucherID int64, date time.Time, narration string, createdBy int64) (*models.Voucher, error) {
	original, err := s.store.FindVoucher(ctx, voucherID)
	if err != nil {
		return nil, ledger.ErrNotFound
	}

	reversal := &models.Voucher{
		Type:       models.VoucherTypeJournal,
		Date:       date,
		Narration:  narration,
		ReversesID: &original.ID,
		CreatedBy:  createdBy,
		Lines:      ledger.MirrorLines(original.Lines),
	}
	if err := s.Post(ctx, reversal); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"voucher_id":  reversal.ID,
		"reverses_id": original.ID,
	}).Info("voucher reversed")

	return reversal, nil
}

func (s *PostingService) GetVoucher(ctx context.Context, id int64) (*models.Voucher, error) {
	voucher, err := s.store.FindVoucher(ctx, id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}
	return voucher, nil
}

func (s *PostingService) ListVouchers(ctx context.Context, filter VoucherFilter) ([]models.Voucher, int, error) {
	return s.store.ListVouchers(ctx, filter)
}

// revalidate enforces the voucher invariants against current account state:
// at least two lines, exactly one side per line, all accounts active, and
// debits equal to credits.
func (s *PostingService) revalidate(ctx context.Context, voucher *models.Voucher) error {
	if len(voucher.Lines) < 2 {
		return &ledger.ValidationError{Rule: ledger.ErrTooFewLines, Detail: fmt.Sprintf("got %d line(s)", len(voucher.Lines))}
	}

	ids := make([]int64, 0, len(voucher.Lines))
	for _, ln := range voucher.Lines {
		ids = append(ids, ln.AccountID)
	}
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var totalDebit, totalCredit int64
	for i, ln := range voucher.Lines {
		if ln.Debit < 0 || ln.Credit < 0 || (ln.Debit > 0) == (ln.Credit > 0) {
			return &ledger.ValidationError{Rule: ledger.ErrInvalidLine, LineNo: i + 1, Detail: "exactly one of debit or credit must be set"}
		}
		account, ok := accounts[ln.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %d", ledger.ErrNotFound, ln.AccountID)
		}
		if !account.IsActive {
			return &ledger.ValidationError{Rule: ledger.ErrInactiveAccount, LineNo: i + 1, Detail: fmt.Sprintf("account %s %s", account.Code, account.Name)}
		}
		totalDebit += ln.Debit
		totalCredit += ln.Credit
	}
	if totalDebit != totalCredit {
		return &ledger.ValidationError{
			Rule:   ledger.ErrUnbalanced,
			Detail: fmt.Sprintf("debits %d != credits %d (off by %d)", totalDebit, totalCredit, totalDebit-totalCredit),
		}
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
