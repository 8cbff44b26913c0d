package service

import (
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
)

func (f *fixture) account(t *testing.T, code string) *model.Account {
	t.Helper()
	a, err := f.accounts.FindByCode(f.db, code)
	if err != nil {
		t.Fatalf("account %s: %v", code, err)
	}
	return a
}

func TestPostManualEntry(t *testing.T) {
	f := newFixture(t)
	svc := f.accounting()
	cash, capital := f.account(t, "1000"), f.account(t, "3000")

	res, err := svc.PostManualEntry(&ManualEntryRequest{
		Description: "Apport initial",
		Lines: []ManualLineInput{
			{AccountID: cash.ID, Debit: dec("10000")},
			{AccountID: capital.ID, Credit: dec("10000")},
		},
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 2 || res.Entries[0].Description != "Apport initial" {
		t.Fatalf("entries %+v", res.Entries)
	}
	if got := f.balance(t, "1000"); !got.Equal(dec("10000")) {
		t.Fatalf("cash = %s", got)
	}

	_, err = svc.PostManualEntry(&ManualEntryRequest{
		Description: "Erreur",
		Lines: []ManualLineInput{
			{AccountID: cash.ID, Debit: dec("100")},
			{AccountID: capital.ID, Credit: dec("90")},
		},
	}, f.actor)
	assertKind(t, err, apperr.UnbalancedEntry)

	_, err = svc.PostManualEntry(&ManualEntryRequest{
		Description: "Vide",
		Lines: []ManualLineInput{
			{AccountID: cash.ID},
			{AccountID: capital.ID},
		},
	}, f.actor)
	assertKind(t, err, apperr.Validation)

	if n := f.count(t, &model.JournalEntry{}); n != 2 {
		t.Fatalf("journal rows = %d, want 2", n)
	}
}

func TestRecordExpense(t *testing.T) {
	f := newFixture(t)
	svc := f.accounting()

	categories, err := svc.ExpenseCategories()
	if err != nil {
		t.Fatal(err)
	}
	var rent *model.ExpenseCategory
	for i := range categories {
		if categories[i].AccountCode == "6100" {
			rent = &categories[i]
		}
	}
	if rent == nil {
		t.Fatalf("rent category not seeded: %+v", categories)
	}

	expense, err := svc.RecordExpense(&RecordExpenseRequest{
		CategoryID:  &rent.ID,
		Amount:      dec("15000"),
		Description: "Loyer mars",
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	keys := f.entryKeys(t, model.RefExpense, expense.ID)
	if !keys["6100 D 15000.00"] || !keys["1000 C 15000.00"] || len(keys) != 2 {
		t.Fatalf("expense journal = %v", keys)
	}

	// no category falls back to general charges, bank transfer credits the bank
	other, err := svc.RecordExpense(&RecordExpenseRequest{
		Amount:        dec("1200.50"),
		Description:   "Fournitures",
		PaymentMethod: model.PayBankTransfer,
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	keys = f.entryKeys(t, model.RefExpense, other.ID)
	if !keys["6000 D 1200.50"] || !keys["1100 C 1200.50"] {
		t.Fatalf("expense journal = %v", keys)
	}

	_, err = svc.RecordExpense(&RecordExpenseRequest{Amount: dec("10"), Description: "x", PaymentMethod: model.PayCredit}, f.actor)
	assertKind(t, err, apperr.InvalidPayment)
	_, err = svc.RecordExpense(&RecordExpenseRequest{Amount: dec("0"), Description: "x"}, f.actor)
	assertKind(t, err, apperr.Validation)
}

func TestTrialBalanceAfterActivity(t *testing.T) {
	f := newFixture(t)
	acc := f.accounting()
	sales := f.salesService()
	p := f.product(t, "Huile 1L", "100", "19", 0)
	s := f.supplier(t, "Cevital")

	if _, err := f.purchaseService().CreatePurchase(&CreatePurchaseRequest{
		SupplierID: s.ID,
		Items:      []PurchaseItemInput{{ProductID: p.ID, Quantity: 20, UnitPrice: dec("55")}},
		AmountPaid: dec("500"),
	}, f.actor); err != nil {
		t.Fatal(err)
	}
	receipt, err := sales.CreateSale(cashSale(p.ID, 3, "400"), f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sales.CreateSale(cashSale(p.ID, 1, "119"), f.actor); err != nil {
		t.Fatal(err)
	}
	if err := sales.VoidSale(receipt.SaleID, "", f.actor); err != nil {
		t.Fatal(err)
	}
	if _, err := acc.RecordExpense(&RecordExpenseRequest{Amount: dec("30"), Description: "Sacs"}, f.actor); err != nil {
		t.Fatal(err)
	}

	tb, err := acc.TrialBalance()
	if err != nil {
		t.Fatal(err)
	}
	if !tb.Balanced {
		t.Fatalf("trial balance off: debit %s credit %s", tb.TotalDebit, tb.TotalCredit)
	}
	if len(tb.Drifted) != 0 {
		t.Fatalf("cached balances drifted on %v", tb.Drifted)
	}

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	pl, err := acc.ProfitAndLoss(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if !pl.Revenue.Equal(dec("100")) || !pl.Expenses.Equal(dec("30")) {
		t.Fatalf("profit and loss %+v", pl)
	}

	vat, err := acc.VATSummary(from, to)
	if err != nil {
		t.Fatal(err)
	}
	// collected 19 on the kept sale, deductible 19% of 1100
	if !vat.Collected.Equal(dec("19")) || !vat.Deductible.Equal(dec("209")) || !vat.Net.Equal(dec("-190")) {
		t.Fatalf("vat summary %+v", vat)
	}

	cashier, err := acc.CashierSummary(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if cashier.SalesCount != 1 || !cashier.CashSales.Equal(dec("119")) || !cashier.ExpectedCash.Equal(dec("89")) {
		t.Fatalf("cashier summary %+v", cashier)
	}
}

func TestCentAmountsStayExact(t *testing.T) {
	f := newFixture(t)
	sales := f.salesService()
	p := f.product(t, "Bonbon", "0.10", "0", 10)

	for i := 0; i < 3; i++ {
		if _, err := sales.CreateSale(cashSale(p.ID, 1, "0.10"), f.actor); err != nil {
			t.Fatal(err)
		}
	}

	tb, err := f.accounting().TrialBalance()
	if err != nil {
		t.Fatal(err)
	}
	if len(tb.Drifted) != 0 {
		t.Fatalf("drifted = %v", tb.Drifted)
	}
	for _, line := range tb.Lines {
		if line.Code == "1000" && line.Debit.String() != "0.3" {
			t.Fatalf("cash debit = %s", line.Debit)
		}
	}

	summary, err := sales.DailySummary(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Revenue.String() != "0.3" {
		t.Fatalf("daily revenue = %s", summary.Revenue)
	}
}
