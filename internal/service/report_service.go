package service

import (
	"io"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type InventoryReportLine struct {
	repository.InventoryLine
	StockValue decimal.Decimal `json:"stock_value"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	Margin     decimal.Decimal `json:"margin"`
	LowStock   bool            `json:"low_stock"`
}

type InventoryReport struct {
	Lines         []InventoryReportLine `json:"lines"`
	TotalCost     decimal.Decimal       `json:"total_cost"`
	TotalSale     decimal.Decimal       `json:"total_sale"`
	PotentialGain decimal.Decimal       `json:"potential_gain"`
	LowStockCount int                   `json:"low_stock_count"`
}

type PartnerBalance struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Balance decimal.Decimal `json:"balance"`
	Limit   decimal.Decimal `json:"credit_limit,omitempty"`
}

type BalanceReport struct {
	Lines []PartnerBalance `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

type ReportService interface {
	Inventory() (*InventoryReport, error)
	ClientBalances() (*BalanceReport, error)
	SupplierBalances() (*BalanceReport, error)
	ExportJournal(filter repository.JournalFilter, w io.Writer) error
	ExportInventory(w io.Writer) error
	ExportMovements(filter repository.MovementFilter, w io.Writer) error
}

type reportService struct {
	reportRepo   repository.ReportRepository
	journalRepo  repository.JournalRepository
	movementRepo repository.StockMovementRepository
	clientRepo   repository.ClientRepository
	supplierRepo repository.SupplierRepository
}

func NewReportService(rRepo repository.ReportRepository, jRepo repository.JournalRepository, mRepo repository.StockMovementRepository, cRepo repository.ClientRepository, sRepo repository.SupplierRepository) ReportService {
	return &reportService{
		reportRepo:   rRepo,
		journalRepo:  jRepo,
		movementRepo: mRepo,
		clientRepo:   cRepo,
		supplierRepo: sRepo,
	}
}

func (s *reportService) Inventory() (*InventoryReport, error) {
	lines, err := s.reportRepo.InventoryLines()
	if err != nil {
		return nil, apperr.Wrap("reports.inventory", err)
	}

	report := &InventoryReport{TotalCost: decimal.Zero, TotalSale: decimal.Zero}
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.StockQuantity))
		line := InventoryReportLine{
			InventoryLine: l,
			StockValue:    money(l.PurchasePrice.Mul(qty)),
			SaleValue:     money(l.SalePrice.Mul(qty)),
			Margin:        l.SalePrice.Sub(l.PurchasePrice),
			LowStock:      l.StockQuantity <= l.MinStockLevel,
		}
		if line.LowStock {
			report.LowStockCount++
		}
		report.TotalCost = report.TotalCost.Add(line.StockValue)
		report.TotalSale = report.TotalSale.Add(line.SaleValue)
		report.Lines = append(report.Lines, line)
	}
	report.PotentialGain = report.TotalSale.Sub(report.TotalCost)
	return report, nil
}

func (s *reportService) ClientBalances() (*BalanceReport, error) {
	clients, err := s.clientRepo.FindAll(true)
	if err != nil {
		return nil, apperr.Wrap("reports.client_balances", err)
	}
	report := &BalanceReport{Total: decimal.Zero}
	for _, c := range clients {
		report.Lines = append(report.Lines, PartnerBalance{
			ID: c.ID.String(), Name: c.Name, Phone: c.Phone, Balance: c.Balance, Limit: c.CreditLimit,
		})
		report.Total = report.Total.Add(c.Balance)
	}
	return report, nil
}

func (s *reportService) SupplierBalances() (*BalanceReport, error) {
	suppliers, err := s.supplierRepo.FindAll(true)
	if err != nil {
		return nil, apperr.Wrap("reports.supplier_balances", err)
	}
	report := &BalanceReport{Total: decimal.Zero}
	for _, sp := range suppliers {
		report.Lines = append(report.Lines, PartnerBalance{
			ID: sp.ID.String(), Name: sp.Name, Phone: sp.Phone, Balance: sp.Balance,
		})
		report.Total = report.Total.Add(sp.Balance)
	}
	return report, nil
}

func (s *reportService) ExportJournal(filter repository.JournalFilter, w io.Writer) error {
	entries, err := s.journalRepo.FindAll(filter)
	if err != nil {
		return apperr.Wrap("reports.export_journal", err)
	}
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		code, name := "", ""
		if e.Account != nil {
			code, name = e.Account.Code, e.Account.NameFr
		}
		rows = append(rows, []interface{}{
			e.EntryDate.Format("2006-01-02 15:04"),
			code,
			name,
			e.Description,
			e.Debit.InexactFloat64(),
			e.Credit.InexactFloat64(),
			e.Reference.Type,
			e.UserID,
		})
	}
	return writeSheet(w, "Journal",
		[]string{"Date", "Compte", "Libellé compte", "Description", "Débit", "Crédit", "Référence", "Utilisateur"}, rows)
}

func (s *reportService) ExportInventory(w io.Writer) error {
	report, err := s.Inventory()
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(report.Lines)+1)
	for _, l := range report.Lines {
		rows = append(rows, []interface{}{
			l.Barcode,
			l.NameFr,
			l.StockQuantity,
			l.MinStockLevel,
			l.PurchasePrice.InexactFloat64(),
			l.SalePrice.InexactFloat64(),
			l.StockValue.InexactFloat64(),
			l.Margin.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{"", "Total", "", "", "", "", report.TotalCost.InexactFloat64(), ""})
	return writeSheet(w, "Inventaire",
		[]string{"Code-barres", "Produit", "Stock", "Stock min", "Prix achat", "Prix vente", "Valeur stock", "Marge"}, rows)
}

func (s *reportService) ExportMovements(filter repository.MovementFilter, w io.Writer) error {
	movements, err := s.movementRepo.FindAll(filter)
	if err != nil {
		return apperr.Wrap("reports.export_movements", err)
	}
	rows := make([][]interface{}, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []interface{}{
			m.CreatedAt.Format("2006-01-02 15:04"),
			productName(m.Product),
			string(m.Type),
			m.Quantity,
			m.PreviousStock,
			m.NewStock,
			m.Reason,
			m.Reference.Type,
			m.UserID,
		})
	}
	return writeSheet(w, "Mouvements",
		[]string{"Date", "Produit", "Type", "Quantité", "Stock avant", "Stock après", "Motif", "Référence", "Utilisateur"}, rows)
}

func productName(p *model.Product) string {
	if p == nil {
		return ""
	}
	return p.DisplayName()
}

// writeSheet renders a single-sheet workbook with a header row.
func writeSheet(w io.Writer, sheet string, headings []string, rows [][]interface{}) error {
	const op = "reports.write_xlsx"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return apperr.Wrap(op, err)
	}
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return apperr.Wrap(op, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return apperr.Wrap(op, err)
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return apperr.Wrap(op, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return apperr.Wrap(op, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperr.Wrap(op, err)
	}
	return nil
}
