package service

import (
	"testing"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func cashSale(productID uuid.UUID, qty int, paid string) *CreateSaleRequest {
	return &CreateSaleRequest{
		Items:         []SaleItemInput{{ProductID: productID, Quantity: qty}},
		AmountPaid:    dec(paid),
		PaymentMethod: model.PayCash,
	}
}

func TestCreateSaleWithVAT(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Huile 1L", "100", "19", 10)

	receipt, err := svc.CreateSale(cashSale(p.ID, 2, "250"), f.actor)
	if err != nil {
		t.Fatal(err)
	}

	if receipt.InvoiceNumber != "INV-000001" {
		t.Errorf("invoice = %s", receipt.InvoiceNumber)
	}
	checks := map[string]struct{ got, want decimal.Decimal }{
		"subtotal": {receipt.Subtotal, dec("200")},
		"vat":      {receipt.VATAmount, dec("38")},
		"total":    {receipt.Total, dec("238")},
		"change":   {receipt.Change, dec("12")},
	}
	for name, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %s, want %s", name, c.got, c.want)
		}
	}
	if got := f.stock(t, p.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	keys := f.entryKeys(t, model.RefSale, receipt.SaleID)
	for _, k := range []string{"1000 D 238.00", "4000 C 200.00", "2100 C 38.00"} {
		if !keys[k] {
			t.Errorf("missing journal line %q in %v", k, keys)
		}
	}
	if len(keys) != 3 {
		t.Errorf("journal lines = %v", keys)
	}

	sale, err := svc.GetSale(receipt.SaleID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sale.Items) != 1 || sale.Items[0].ProductName != "Huile 1L" || !sale.Items[0].Total.Equal(dec("238")) {
		t.Errorf("unexpected items %+v", sale.Items)
	}
}

func TestCreateSaleDebitAccountFollowsPaymentMethod(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Pain", "10", "0", 50)

	req := cashSale(p.ID, 3, "30")
	req.PaymentMethod = model.PayCard
	receipt, err := svc.CreateSale(req, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	keys := f.entryKeys(t, model.RefSale, receipt.SaleID)
	if !keys["1100 D 30.00"] || !keys["4000 C 30.00"] || len(keys) != 2 {
		t.Fatalf("card sale journal = %v", keys)
	}
}

func TestCreateSaleHeaderDiscount(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Savon", "50", "19", 10)

	req := cashSale(p.ID, 4, "300")
	pct := dec("10")
	req.DiscountPercent = &pct
	receipt, err := f.salesService().CreateSale(req, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	// 200 - 20 + 38
	if !receipt.DiscountAmount.Equal(dec("20")) || !receipt.Total.Equal(dec("218")) {
		t.Fatalf("discount %s total %s", receipt.DiscountAmount, receipt.Total)
	}
	keys := f.entryKeys(t, model.RefSale, receipt.SaleID)
	if !keys["1000 D 218.00"] || !keys["4000 C 180.00"] || !keys["2100 C 38.00"] {
		t.Fatalf("journal = %v", keys)
	}
}

func TestCreateSaleIsAtomic(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	a := f.product(t, "Riz", "80", "9", 20)
	b := f.product(t, "Thé", "120", "19", 3)
	before := len(f.events.actions())

	req := &CreateSaleRequest{
		Items: []SaleItemInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1000000},
		},
		AmountPaid:    dec("1000000000"),
		PaymentMethod: model.PayCash,
	}
	_, err := svc.CreateSale(req, f.actor)
	assertKind(t, err, apperr.InsufficientStock)

	if got := f.stock(t, a.ID); got != 20 {
		t.Errorf("stock of first item = %d, want 20", got)
	}
	if n := f.count(t, &model.Sale{}); n != 0 {
		t.Errorf("sales = %d", n)
	}
	if n := f.count(t, &model.SaleItem{}); n != 0 {
		t.Errorf("sale items = %d", n)
	}
	if n := f.count(t, &model.JournalEntry{}); n != 0 {
		t.Errorf("journal rows = %d", n)
	}
	cfg, err := f.cfg.Get()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InvoiceNextNumber != 1 {
		t.Errorf("invoice counter = %d, want 1", cfg.InvoiceNextNumber)
	}
	if got := len(f.events.actions()); got != before {
		t.Errorf("events published for a rolled back sale: %v", f.events.actions()[before:])
	}

	receipt, err := svc.CreateSale(cashSale(a.ID, 1, "100"), f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.InvoiceNumber != "INV-000001" {
		t.Errorf("invoice after rollback = %s", receipt.InvoiceNumber)
	}
}

func TestInvoiceNumbersAreGapFree(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Biscuit", "25", "19", 5)

	var numbers []string
	for i := 0; i < 8; i++ {
		receipt, err := svc.CreateSale(cashSale(p.ID, 1, "100"), f.actor)
		if err != nil {
			// stock runs out after five sales
			assertKind(t, err, apperr.InsufficientStock)
			continue
		}
		numbers = append(numbers, receipt.InvoiceNumber)
	}
	want := []string{"INV-000001", "INV-000002", "INV-000003", "INV-000004", "INV-000005"}
	if len(numbers) != len(want) {
		t.Fatalf("invoices = %v", numbers)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("invoices = %v, want %v", numbers, want)
		}
	}
}

func TestCreateSaleInvalidPayment(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Jus", "100", "19", 10)

	short := cashSale(p.ID, 1, "100")
	_, err := svc.CreateSale(short, f.actor)
	assertKind(t, err, apperr.InvalidPayment)

	unknown := cashSale(p.ID, 1, "200")
	unknown.PaymentMethod = "bitcoin"
	_, err = svc.CreateSale(unknown, f.actor)
	assertKind(t, err, apperr.InvalidPayment)

	negative := cashSale(p.ID, 1, "-1")
	_, err = svc.CreateSale(negative, f.actor)
	assertKind(t, err, apperr.InvalidPayment)

	anonymousCredit := cashSale(p.ID, 1, "0")
	anonymousCredit.PaymentMethod = model.PayCredit
	_, err = svc.CreateSale(anonymousCredit, f.actor)
	assertKind(t, err, apperr.InvalidPayment)

	_, err = svc.CreateSale(&CreateSaleRequest{PaymentMethod: model.PayCash}, f.actor)
	assertKind(t, err, apperr.Validation)

	if got := f.stock(t, p.ID); got != 10 {
		t.Fatalf("stock = %d after rejected sales", got)
	}
}

func TestVoidSaleRestoresStockAndMirrorsJournal(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Huile 1L", "100", "19", 10)

	receipt, err := svc.CreateSale(cashSale(p.ID, 2, "238"), f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.VoidSale(receipt.SaleID, "erreur de caisse", f.actor); err != nil {
		t.Fatal(err)
	}

	if got := f.stock(t, p.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
	keys := f.entryKeys(t, model.RefSaleVoid, receipt.SaleID)
	for _, k := range []string{"1000 C 238.00", "4000 D 200.00", "2100 D 38.00"} {
		if !keys[k] {
			t.Errorf("missing void line %q in %v", k, keys)
		}
	}
	for _, code := range []string{"1000", "4000", "2100"} {
		if got := f.balance(t, code); !got.IsZero() {
			t.Errorf("account %s balance = %s after void", code, got)
		}
	}

	sale, err := svc.GetSale(receipt.SaleID)
	if err != nil {
		t.Fatal(err)
	}
	if sale.Status != model.SaleVoided || sale.VoidReason != "erreur de caisse" {
		t.Errorf("sale status %s reason %q", sale.Status, sale.VoidReason)
	}

	err = svc.VoidSale(receipt.SaleID, "again", f.actor)
	assertKind(t, err, apperr.AlreadyVoided)
	if got := f.stock(t, p.ID); got != 10 {
		t.Errorf("stock = %d after second void", got)
	}

	err = svc.VoidSale(uuid.New(), "", f.actor)
	assertKind(t, err, apperr.NotFound)
}

func TestCreditSaleMovesClientBalance(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Farine", "100", "19", 10)
	c := f.client(t, "Épicerie Nour", "0")

	req := cashSale(p.ID, 1, "0")
	req.PaymentMethod = model.PayCredit
	req.ClientID = &c.ID
	receipt, err := svc.CreateSale(req, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := f.clients.FindByID(c.ID)
	if !got.Balance.Equal(dec("119")) {
		t.Fatalf("client balance = %s, want 119", got.Balance)
	}
	if keys := f.entryKeys(t, model.RefSale, receipt.SaleID); !keys["1200 D 119.00"] {
		t.Fatalf("receivable leg missing: %v", keys)
	}

	// a cash sale to the same client leaves the balance alone
	cash := cashSale(p.ID, 1, "119")
	cash.ClientID = &c.ID
	if _, err := svc.CreateSale(cash, f.actor); err != nil {
		t.Fatal(err)
	}
	got, _ = f.clients.FindByID(c.ID)
	if !got.Balance.Equal(dec("119")) {
		t.Fatalf("client balance after cash sale = %s", got.Balance)
	}

	if err := svc.VoidSale(receipt.SaleID, "retour", f.actor); err != nil {
		t.Fatal(err)
	}
	got, _ = f.clients.FindByID(c.ID)
	if !got.Balance.IsZero() {
		t.Fatalf("client balance after void = %s", got.Balance)
	}
}

func TestCreditLimitEnforced(t *testing.T) {
	f := newFixture(t)
	svc := NewSalesService(f.deps, f.cfg, f.products, f.sales, f.clients, NewCreditPolicy("enforce", logger.Nop()))
	p := f.product(t, "Farine", "100", "0", 10)
	c := f.client(t, "Café du coin", "150")

	req := cashSale(p.ID, 2, "0")
	req.PaymentMethod = model.PayCredit
	req.ClientID = &c.ID
	_, err := svc.CreateSale(req, f.actor)
	assertKind(t, err, apperr.CreditLimitExceeded)
	if got := f.stock(t, p.ID); got != 10 {
		t.Fatalf("stock = %d after refused credit sale", got)
	}

	// advisory lets the same sale through
	if _, err := f.salesService().CreateSale(req, f.actor); err != nil {
		t.Fatalf("advisory: %v", err)
	}
}

func TestSaleEventsPublishedAfterCommit(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Lait", "60", "9", 4)
	start := len(f.events.actions())

	receipt, err := svc.CreateSale(cashSale(p.ID, 1, "100"), f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.VoidSale(receipt.SaleID, "", f.actor); err != nil {
		t.Fatal(err)
	}

	got := f.events.actions()[start:]
	want := []string{"sale_created", "products_changed", "sale_voided", "products_changed"}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestDailySummary(t *testing.T) {
	f := newFixture(t)
	svc := f.salesService()
	p := f.product(t, "Yaourt", "100", "19", 20)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSale(cashSale(p.ID, 1, "119"), f.actor); err != nil {
			t.Fatal(err)
		}
	}
	receipt, err := svc.CreateSale(cashSale(p.ID, 1, "119"), f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.VoidSale(receipt.SaleID, "", f.actor); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.DailySummary(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Count != 3 || !summary.Revenue.Equal(dec("357")) || summary.VoidedCount != 1 {
		t.Fatalf("summary %+v", summary)
	}
	if !summary.AverageTicket.Equal(dec("119")) {
		t.Fatalf("average ticket = %s", summary.AverageTicket)
	}
}
