package handler

import (
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AccountingHandler struct {
	service service.AccountingService
}

func NewAccountingHandler(s service.AccountingService) *AccountingHandler {
	return &AccountingHandler{service: s}
}

// PostEntry records a manual journal entry
// POST /api/v1/accounting/entries
func (h *AccountingHandler) PostEntry(c *fiber.Ctx) error {
	var req service.ManualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	result, err := h.service.PostManualEntry(&req, getActor(c))
	return respond(c, 201, result, err)
}

// RecordExpense books an operating expense
// POST /api/v1/expenses
func (h *AccountingHandler) RecordExpense(c *fiber.Ctx) error {
	var req service.RecordExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	expense, err := h.service.RecordExpense(&req, getActor(c))
	return respond(c, 201, expense, err)
}

func (h *AccountingHandler) GetExpenses(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	expenses, err := h.service.ListExpenses(repository.ExpenseFilter{
		From:       from,
		To:         to,
		CategoryID: queryUUID(c, "category_id"),
	})
	return respond(c, 200, expenses, err)
}

func (h *AccountingHandler) GetExpenseCategories(c *fiber.Ctx) error {
	categories, err := h.service.ExpenseCategories()
	return respond(c, 200, categories, err)
}

func (h *AccountingHandler) GetAccounts(c *fiber.Ctx) error {
	accounts, err := h.service.ListAccounts()
	return respond(c, 200, accounts, err)
}

// GetJournal lists journal lines
// Query params: account_id, reference_type, from, to, limit
func (h *AccountingHandler) GetJournal(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	entries, err := h.service.ListJournal(repository.JournalFilter{
		AccountID:     queryUUID(c, "account_id"),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
		Limit:         queryInt(c, "limit", 500),
	})
	return respond(c, 200, entries, err)
}

func (h *AccountingHandler) GetProfitAndLoss(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	report, err := h.service.ProfitAndLoss(from, to)
	return respond(c, 200, report, err)
}

func (h *AccountingHandler) GetVATSummary(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	summary, err := h.service.VATSummary(from, to)
	return respond(c, 200, summary, err)
}

func (h *AccountingHandler) GetCashierSummary(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	summary, err := h.service.CashierSummary(from, to)
	return respond(c, 200, summary, err)
}

func (h *AccountingHandler) GetTrialBalance(c *fiber.Ctx) error {
	balance, err := h.service.TrialBalance()
	return respond(c, 200, balance, err)
}
