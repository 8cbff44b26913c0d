package service

import (
	"fmt"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ManualLineInput struct {
	AccountID   uuid.UUID       `json:"account_id" validate:"uuid_required"`
	Debit       decimal.Decimal `json:"debit" validate:"dec_gte0"`
	Credit      decimal.Decimal `json:"credit" validate:"dec_gte0"`
	Description string          `json:"description"`
}

type ManualEntryRequest struct {
	Lines       []ManualLineInput `json:"lines" validate:"required,min=2,dive"`
	Description string            `json:"description" validate:"required"`
	Date        *time.Time        `json:"date"`
}

type RecordExpenseRequest struct {
	CategoryID    *uuid.UUID          `json:"category_id"`
	Amount        decimal.Decimal     `json:"amount" validate:"dec_gt0"`
	Description   string              `json:"description" validate:"required"`
	Date          *time.Time          `json:"date"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Reference     string              `json:"reference"`
}

type ProfitAndLoss struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Revenue     decimal.Decimal `json:"revenue"`
	CostOfGoods decimal.Decimal `json:"cost_of_goods"`
	GrossMargin decimal.Decimal `json:"gross_margin"`
	Expenses    decimal.Decimal `json:"expenses"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

type VATSummary struct {
	From       time.Time                `json:"from"`
	To         time.Time                `json:"to"`
	Collected  decimal.Decimal          `json:"collected"`
	Deductible decimal.Decimal          `json:"deductible"`
	Net        decimal.Decimal          `json:"net"`
	ByRate     []repository.VATRateLine `json:"by_rate"`
}

type CashierSummary struct {
	From         time.Time                  `json:"from"`
	To           time.Time                  `json:"to"`
	SalesCount   int64                      `json:"sales_count"`
	SalesTotal   decimal.Decimal            `json:"sales_total"`
	ByMethod     []repository.MethodTotal   `json:"by_method"`
	ByOperator   []repository.OperatorTotal `json:"by_operator"`
	CashSales    decimal.Decimal            `json:"cash_sales"`
	Expenses     decimal.Decimal            `json:"expenses"`
	ExpectedCash decimal.Decimal            `json:"expected_cash"`
}

type TrialBalanceLine struct {
	AccountID uuid.UUID         `json:"account_id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      model.AccountType `json:"type"`
	Debit     decimal.Decimal   `json:"debit"`
	Credit    decimal.Decimal   `json:"credit"`
	Balance   decimal.Decimal   `json:"balance"`
	// Cached is the stored running balance; it differs from Balance only if
	// the cache drifted from the journal.
	Cached decimal.Decimal `json:"cached"`
}

type TrialBalance struct {
	Lines       []TrialBalanceLine                    `json:"lines"`
	ByType      map[model.AccountType]decimal.Decimal `json:"by_type"`
	TotalDebit  decimal.Decimal                       `json:"total_debit"`
	TotalCredit decimal.Decimal                       `json:"total_credit"`
	Balanced    bool                                  `json:"balanced"`
	Drifted     []string                              `json:"drifted,omitempty"`
}

type AccountingService interface {
	PostManualEntry(req *ManualEntryRequest, actor Actor) (*PostingResult, error)
	RecordExpense(req *RecordExpenseRequest, actor Actor) (*model.Expense, error)
	ListAccounts() ([]model.Account, error)
	ListJournal(filter repository.JournalFilter) ([]model.JournalEntry, error)
	ListExpenses(filter repository.ExpenseFilter) ([]model.Expense, error)
	ExpenseCategories() ([]model.ExpenseCategory, error)
	ProfitAndLoss(from, to time.Time) (*ProfitAndLoss, error)
	VATSummary(from, to time.Time) (*VATSummary, error)
	CashierSummary(from, to time.Time) (*CashierSummary, error)
	TrialBalance() (*TrialBalance, error)
}

type accountingService struct {
	LedgerDeps
	accountRepo repository.AccountRepository
	journalRepo repository.JournalRepository
	expenseRepo repository.ExpenseRepository
	saleRepo    repository.SaleRepository
	reportRepo  repository.ReportRepository
}

func NewAccountingService(deps LedgerDeps, aRepo repository.AccountRepository, jRepo repository.JournalRepository, eRepo repository.ExpenseRepository, sRepo repository.SaleRepository, rRepo repository.ReportRepository) AccountingService {
	deps.Clock = deps.Clock.orDefault()
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &accountingService{
		LedgerDeps:  deps,
		accountRepo: aRepo,
		journalRepo: jRepo,
		expenseRepo: eRepo,
		saleRepo:    sRepo,
		reportRepo:  rRepo,
	}
}

func (s *accountingService) PostManualEntry(req *ManualEntryRequest, actor Actor) (*PostingResult, error) {
	const op = "accounting.manual_entry"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}

	lines := make([]JournalLine, 0, len(req.Lines))
	for _, in := range req.Lines {
		if in.Debit.IsZero() && in.Credit.IsZero() {
			return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "a journal line needs a debit or a credit"}
		}
		id := in.AccountID
		description := in.Description
		if description == "" {
			description = req.Description
		}
		lines = append(lines, JournalLine{AccountID: &id, Debit: in.Debit, Credit: in.Credit, Description: description})
	}
	// rejected before a transaction is opened
	if d, c := SumLines(lines); !IsBalanced(d, c) {
		return nil, &apperr.Error{
			Kind:    apperr.UnbalancedEntry,
			Op:      op,
			Message: fmt.Sprintf("debits (%s) do not equal credits (%s)", d.StringFixed(2), c.StringFixed(2)),
		}
	}

	date := s.Clock()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	var result *PostingResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.Poster.Post(tx, Posting{
			Date:      date,
			Reference: model.Reference{Type: model.RefManual},
			Actor:     actor.ID,
			Lines:     lines,
		})
		return err
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("manual entry rolled back")
		return nil, err
	}

	s.Log.Info().Str("event_id", result.EventID.String()).Int("lines", len(result.Entries)).Msg("manual entry posted")
	return result, nil
}

func (s *accountingService) RecordExpense(req *RecordExpenseRequest, actor Actor) (*model.Expense, error) {
	const op = "accounting.expense"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = model.PayCash
	}
	if !method.Valid() || method == model.PayCredit {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: fmt.Sprintf("expenses cannot be paid by %q", method)}
	}

	date := s.Clock()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	var expense *model.Expense
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		accountCode := s.Accounts.DefaultExpense
		if req.CategoryID != nil {
			category, err := s.expenseRepo.FindCategoryByID(tx, *req.CategoryID)
			if err != nil {
				if apperr.Is(err, apperr.NotFound) {
					return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "expense category not found"}
				}
				return apperr.Wrap(op, err)
			}
			if category.AccountCode != "" {
				accountCode = category.AccountCode
			}
		}

		expense = &model.Expense{
			CategoryID:    req.CategoryID,
			Amount:        money(req.Amount),
			Description:   req.Description,
			ExpenseDate:   date,
			PaymentMethod: method,
			Reference:     req.Reference,
			UserID:        actor.ID,
		}
		expense.CreatedBy = actor.ID
		expense.UpdatedBy = actor.ID
		if err := s.expenseRepo.Create(tx, expense); err != nil {
			return apperr.Wrap(op, err)
		}

		_, err := s.Poster.Post(tx, Posting{
			Date:      date,
			Reference: model.NewReference(model.RefExpense, expense.ID),
			Actor:     actor.ID,
			Lines: []JournalLine{
				{AccountCode: accountCode, Debit: expense.Amount, Description: req.Description},
				{AccountCode: debitAccountFor(s.Accounts, method), Credit: expense.Amount, Description: req.Description},
			},
		})
		return err
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("expense rolled back")
		return nil, err
	}

	s.Log.Info().Str("expense_id", expense.ID.String()).Str("amount", expense.Amount.StringFixed(2)).Msg("expense recorded")
	return expense, nil
}

func (s *accountingService) ListAccounts() ([]model.Account, error) {
	accounts, err := s.accountRepo.FindAll(false)
	return accounts, apperr.Wrap("accounting.accounts", err)
}

func (s *accountingService) ListJournal(filter repository.JournalFilter) ([]model.JournalEntry, error) {
	entries, err := s.journalRepo.FindAll(filter)
	return entries, apperr.Wrap("accounting.journal", err)
}

func (s *accountingService) ListExpenses(filter repository.ExpenseFilter) ([]model.Expense, error) {
	expenses, err := s.expenseRepo.FindAll(filter)
	return expenses, apperr.Wrap("accounting.expenses", err)
}

func (s *accountingService) ExpenseCategories() ([]model.ExpenseCategory, error) {
	categories, err := s.expenseRepo.FindCategories()
	return categories, apperr.Wrap("accounting.expense_categories", err)
}

// ProfitAndLoss reads revenue and expenses from the journal over [from, to).
// Cost of goods is valued at current purchase prices since sales do not post it.
func (s *accountingService) ProfitAndLoss(from, to time.Time) (*ProfitAndLoss, error) {
	const op = "accounting.profit_and_loss"

	totals, err := s.periodTotals(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	cogs, err := s.reportRepo.CostOfGoodsSold(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	pl := &ProfitAndLoss{From: from, To: to, Revenue: decimal.Zero, Expenses: decimal.Zero, CostOfGoods: money(cogs)}
	for _, t := range totals {
		switch t.Type {
		case model.AccountRevenue:
			pl.Revenue = pl.Revenue.Add(t.Credit.Sub(t.Debit))
		case model.AccountExpense:
			pl.Expenses = pl.Expenses.Add(t.Debit.Sub(t.Credit))
		}
	}
	pl.GrossMargin = pl.Revenue.Sub(pl.CostOfGoods)
	pl.NetProfit = pl.GrossMargin.Sub(pl.Expenses)
	return pl, nil
}

func (s *accountingService) VATSummary(from, to time.Time) (*VATSummary, error) {
	const op = "accounting.vat_summary"

	totals, err := s.periodTotals(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	byRate, err := s.reportRepo.VATByRate(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	summary := &VATSummary{From: from, To: to, Collected: decimal.Zero, Deductible: decimal.Zero, ByRate: byRate}
	for _, t := range totals {
		switch t.Code {
		case s.Accounts.VATPayable:
			summary.Collected = t.Credit.Sub(t.Debit)
		case s.Accounts.VATInput:
			summary.Deductible = t.Debit.Sub(t.Credit)
		}
	}
	summary.Net = summary.Collected.Sub(summary.Deductible)
	return summary, nil
}

func (s *accountingService) CashierSummary(from, to time.Time) (*CashierSummary, error) {
	const op = "accounting.cashier_summary"

	agg, err := s.saleRepo.Aggregate(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	byMethod, err := s.saleRepo.TotalsByMethod(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	byOperator, err := s.saleRepo.TotalsByOperator(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	expenses, err := s.expenseRepo.Total(from, to)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	summary := &CashierSummary{
		From:       from,
		To:         to,
		SalesCount: agg.Count,
		SalesTotal: agg.Revenue,
		ByMethod:   byMethod,
		ByOperator: byOperator,
		CashSales:  decimal.Zero,
		Expenses:   expenses,
	}
	for _, m := range byMethod {
		if m.Method == model.PayCash {
			summary.CashSales = m.Total
		}
	}
	summary.ExpectedCash = summary.CashSales.Sub(expenses)
	return summary, nil
}

// TrialBalance sums every journal line per account and checks both the
// overall balance and the cached account balances.
func (s *accountingService) TrialBalance() (*TrialBalance, error) {
	const op = "accounting.trial_balance"

	accounts, err := s.accountRepo.FindAll(false)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	totals, err := s.journalRepo.TotalsByAccount(nil, nil)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	byAccount := make(map[uuid.UUID]repository.AccountTotals, len(totals))
	for _, t := range totals {
		byAccount[t.AccountID] = t
	}

	tb := &TrialBalance{
		ByType:      make(map[model.AccountType]decimal.Decimal),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range accounts {
		t, ok := byAccount[a.ID]
		if !ok {
			t = repository.AccountTotals{Debit: decimal.Zero, Credit: decimal.Zero}
		}
		line := TrialBalanceLine{
			AccountID: a.ID,
			Code:      a.Code,
			Name:      a.NameFr,
			Type:      a.Type,
			Debit:     t.Debit,
			Credit:    t.Credit,
			Balance:   t.Debit.Sub(t.Credit),
			Cached:    a.Balance,
		}
		if !money(line.Balance).Equal(money(line.Cached)) {
			tb.Drifted = append(tb.Drifted, a.Code)
		}
		tb.Lines = append(tb.Lines, line)
		tb.ByType[a.Type] = tb.ByType[a.Type].Add(line.Balance)
		tb.TotalDebit = tb.TotalDebit.Add(t.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(t.Credit)
	}
	tb.Balanced = IsBalanced(tb.TotalDebit, tb.TotalCredit)
	return tb, nil
}

// periodTotals turns the half-open [from, to) into the inclusive bounds the
// journal filter takes.
func (s *accountingService) periodTotals(from, to time.Time) ([]repository.AccountTotals, error) {
	last := to.Add(-time.Nanosecond)
	return s.journalRepo.TotalsByAccount(&from, &last)
}
