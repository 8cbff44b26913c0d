package service

import (
	"bytes"
	"testing"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/xuri/excelize/v2"
)

func (f *fixture) reportService() ReportService {
	return NewReportService(f.reports, f.journal, f.movements, f.clients, f.suppliers)
}

func TestInventoryReport(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Huile 1L", "100", "19", 10)
	f.product(t, "Sel", "20", "0", 2)

	report, err := f.reportService().Inventory()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("lines = %d", len(report.Lines))
	}
	// 10 x 50 + 2 x 10
	if !report.TotalCost.Equal(dec("520")) || !report.TotalSale.Equal(dec("1040")) || !report.PotentialGain.Equal(dec("520")) {
		t.Fatalf("totals cost %s sale %s gain %s", report.TotalCost, report.TotalSale, report.PotentialGain)
	}
	if report.LowStockCount != 1 {
		t.Fatalf("low stock = %d, want 1", report.LowStockCount)
	}
}

func TestExportInventoryWorkbook(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Huile 1L", "100", "19", 10)

	var buf bytes.Buffer
	if err := f.reportService().ExportInventory(&buf); err != nil {
		t.Fatal(err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Inventaire")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][1] != "Produit" || rows[1][1] != "Huile 1L" || rows[1][2] != "10" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[2][1] != "Total" || rows[2][6] != "500" {
		t.Fatalf("total row %v", rows[2])
	}
}

func TestExportJournalWorkbook(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Huile 1L", "100", "19", 10)
	if _, err := f.salesService().CreateSale(cashSale(p.ID, 1, "119"), f.actor); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err := f.reportService().ExportJournal(repository.JournalFilter{ReferenceType: model.RefSale}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer book.Close()

	rows, err := book.GetRows("Journal")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("journal rows = %v", rows)
	}
	for _, r := range rows[1:] {
		if r[6] != model.RefSale {
			t.Fatalf("reference column %v", r)
		}
	}
}

func TestPartnerBalanceReports(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "Épicerie Nour", "1000")
	f.client(t, "Café", "0")
	if err := f.clients.UpdateBalance(f.db, c.ID, dec("250.50")); err != nil {
		t.Fatal(err)
	}

	report, err := f.reportService().ClientBalances()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Lines) != 2 || !report.Total.Equal(dec("250.5")) {
		t.Fatalf("client balances %+v", report)
	}
}
