package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
)

const dateLayout = "2006-01-02"

// ReportService aggregates ledger activity into financial statements. It is
// a pure read path: it never mutates state and is safe to run concurrently
// with postings.
type ReportService struct {
	accounts AccountStore
	store    LedgerStore
	cache    *ReportCache
	logger   *logrus.Logger
}

func NewReportService(accounts AccountStore, store LedgerStore, cache *ReportCache, logger *logrus.Logger) *ReportService {
	return &ReportService{accounts: accounts, store: store, cache: cache, logger: logger}
}

// ProfitAndLoss sums ledger activity per income and expense account over
// [start, end] inclusive. Accounts with no lines in the window are omitted.
func (s *ReportService) ProfitAndLoss(ctx context.Context, start, end time.Time) (*models.ProfitAndLoss, error) {
	startStr, endStr := start.Format(dateLayout), end.Format(dateLayout)

	var cached models.ProfitAndLoss
	gen, ok := s.cache.Get(ctx, &cached, "pnl", startStr, endStr)
	if ok {
		return &cached, nil
	}

	activity, err := s.store.ActivityByAccount(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &models.ProfitAndLoss{
		StartDate: startStr,
		EndDate:   endStr,
		Income:    []models.ReportLine{},
		Expense:   []models.ReportLine{},
	}
	for _, a := range activity {
		net := ledger.Delta(a.Type, a.Debit, a.Credit)
		switch a.Type {
		case models.AccountTypeIncome:
			report.Income = append(report.Income, models.ReportLine{Code: a.Code, Name: a.Name, Balance: net})
			report.TotalIncome += net
		case models.AccountTypeExpense:
			report.Expense = append(report.Expense, models.ReportLine{Code: a.Code, Name: a.Name, Balance: net})
			report.TotalExpense += net
		}
	}
	sortReportLines(report.Income)
	sortReportLines(report.Expense)
	report.NetProfit = report.TotalIncome - report.TotalExpense

	s.cache.Set(ctx, gen, report, "pnl", startStr, endStr)
	return report, nil
}

// TrialBalance lists per-account debit and credit totals over the window.
// The two grand totals must always be equal; a mismatch means ledger
// corruption.
func (s *ReportService) TrialBalance(ctx context.Context, start, end time.Time) (*models.TrialBalance, error) {
	activity, err := s.store.ActivityByAccount(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &models.TrialBalance{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Rows:      make([]models.TrialBalanceRow, 0, len(activity)),
	}
	for _, a := range activity {
		report.Rows = append(report.Rows, models.TrialBalanceRow{
			Code:   a.Code,
			Name:   a.Name,
			Type:   a.Type,
			Debit:  a.Debit,
			Credit: a.Credit,
		})
		report.TotalDebit += a.Debit
		report.TotalCredit += a.Credit
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Code < report.Rows[j].Code })

	if report.TotalDebit != report.TotalCredit {
		s.logger.WithFields(logrus.Fields{
			"total_debit":  report.TotalDebit,
			"total_credit": report.TotalCredit,
		}).Error("trial balance does not balance")
	}
	return report, nil
}

// BalanceSheet accumulates asset, liability and equity balances from the
// beginning of the ledger up to asOf.
func (s *ReportService) BalanceSheet(ctx context.Context, asOf time.Time) (*models.BalanceSheet, error) {
	activity, err := s.store.ActivityByAccount(ctx, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	report := &models.BalanceSheet{
		AsOf:        asOf.Format(dateLayout),
		Assets:      []models.ReportLine{},
		Liabilities: []models.ReportLine{},
		Equity:      []models.ReportLine{},
	}
	for _, a := range activity {
		net := ledger.Delta(a.Type, a.Debit, a.Credit)
		line := models.ReportLine{Code: a.Code, Name: a.Name, Balance: net}
		switch a.Type {
		case models.AccountTypeAsset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets += net
		case models.AccountTypeLiability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities += net
		case models.AccountTypeEquity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity += net
		}
	}
	sortReportLines(report.Assets)
	sortReportLines(report.Liabilities)
	sortReportLines(report.Equity)
	return report, nil
}

// GetBalance returns the account balance in minor units, signed per the
// account's normal-balance convention. With a nil asOf it reads the
// materialized balance; otherwise it replays the ledger log up to and
// including asOf. The two must agree at head; the worker verifies this.
func (s *ReportService) GetBalance(ctx context.Context, accountID int64, asOf *time.Time) (int64, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return 0, ledger.ErrNotFound
	}

	if asOf == nil {
		balance, err := s.store.GetBalance(ctx, accountID)
		if err != nil {
			return 0, err
		}
		return balance.Balance, nil
	}

	debit, credit, err := s.store.SumActivity(ctx, accountID, *asOf)
	if err != nil {
		return 0, err
	}
	return ledger.Delta(account.Type, debit, credit), nil
}

// GetLedger returns the account's posted lines within [start, end], ordered
// by voucher date then insertion order. Re-querying the same committed state
// yields the same rows.
func (s *ReportService) GetLedger(ctx context.Context, accountID int64, start, end time.Time, limit, offset int) ([]models.LedgerLine, int, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, 0, ledger.ErrNotFound
	}
	return s.store.Ledger(ctx, accountID, start, end, limit, offset)
}

func sortReportLines(lines []models.ReportLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].Code < lines[j].Code })
}
