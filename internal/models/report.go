package models

// ReportLine is one account row in an aggregate report. Balance is signed
// under the account type's normal-balance convention, in minor units.
type ReportLine struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type ProfitAndLoss struct {
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	Income       []ReportLine `json:"income"`
	Expense      []ReportLine `json:"expense"`
	TotalIncome  int64        `json:"total_income"`
	TotalExpense int64        `json:"total_expense"`
	NetProfit    int64        `json:"net_profit"`
}

type TrialBalanceRow struct {
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Type   AccountType `json:"type"`
	Debit  int64       `json:"debit"`
	Credit int64       `json:"credit"`
}

type TrialBalance struct {
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  int64             `json:"total_debit"`
	TotalCredit int64             `json:"total_credit"`
}

type BalanceSheet struct {
	AsOf             string       `json:"as_of"`
	Assets           []ReportLine `json:"assets"`
	Liabilities      []ReportLine `json:"liabilities"`
	Equity           []ReportLine `json:"equity"`
	TotalAssets      int64        `json:"total_assets"`
	TotalLiabilities int64        `json:"total_liabilities"`
	TotalEquity      int64        `json:"total_equity"`
}

// AccountActivity is the per-account debit/credit sum over a date window,
// produced by the ledger store for the report aggregator.
type AccountActivity struct {
	AccountID int64       `db:"account_id" json:"account_id"`
	Code      string      `db:"code" json:"code"`
	Name      string      `db:"name" json:"name"`
	Type      AccountType `db:"account_type" json:"type"`
	Debit     int64       `db:"debit" json:"debit"`
	Credit    int64       `db:"credit" json:"credit"`
}
