package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository interface {
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(dayStart, dayEnd time.Time) (*DashboardStats, error)
	InventoryLines() ([]InventoryLine, error)
	VATByRate(from, to time.Time) ([]VATRateLine, error)
	CostOfGoodsSold(from, to time.Time) (decimal.Decimal, error)
}

// StockMovementData for chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats for overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	StockValuation decimal.Decimal `json:"stock_valuation"`
	TodaySales     int64           `json:"today_sales"`
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	ReceivableOpen decimal.Decimal `json:"receivable_open"`
	PayableOpen    decimal.Decimal `json:"payable_open"`
}

// InventoryLine is one product row of the inventory report.
type InventoryLine struct {
	ProductID     string          `json:"product_id"`
	Barcode       string          `json:"barcode"`
	NameFr        string          `json:"name_fr"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

type VATRateLine struct {
	Rate      decimal.Decimal `json:"rate"`
	Base      decimal.Decimal `json:"base"`
	VATAmount decimal.Decimal `json:"vat_amount"`
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per day; adjustments are not flows and are left out
	rows, err := r.db.Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *reportRepo) GetDashboardStats(dayStart, dayEnd time.Time) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity <= min_stock_level", true).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock_quantity * purchase_price), 0)").
		Where("is_active = ?", true).
		Scan(&stats.StockValuation).Error; err != nil {
		return nil, err
	}

	var today struct {
		Count   int64
		Revenue decimal.Decimal
	}
	if err := r.db.Model(&model.Sale{}).
		Select("COUNT(*) as count, COALESCE(SUM(total), 0) as revenue").
		Where("status = ? AND sale_date >= ? AND sale_date < ?", model.SaleCompleted, dayStart, dayEnd).
		Scan(&today).Error; err != nil {
		return nil, err
	}
	stats.TodaySales = today.Count
	stats.TodayRevenue = cents(today.Revenue)
	stats.StockValuation = cents(stats.StockValuation)

	if err := r.db.Model(&model.Client{}).Select("COALESCE(SUM(balance), 0)").Scan(&stats.ReceivableOpen).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Supplier{}).Select("COALESCE(SUM(balance), 0)").Scan(&stats.PayableOpen).Error; err != nil {
		return nil, err
	}
	stats.ReceivableOpen = cents(stats.ReceivableOpen)
	stats.PayableOpen = cents(stats.PayableOpen)

	return &stats, nil
}

func (r *reportRepo) InventoryLines() ([]InventoryLine, error) {
	var lines []InventoryLine
	err := r.db.Model(&model.Product{}).
		Select("id as product_id, COALESCE(barcode, '') as barcode, name_fr, stock_quantity, min_stock_level, purchase_price, sale_price").
		Where("is_active = ?", true).
		Order("name_fr ASC").
		Scan(&lines).Error
	return lines, err
}

// VATByRate groups collected VAT of completed sales by rate.
func (r *reportRepo) VATByRate(from, to time.Time) ([]VATRateLine, error) {
	var lines []VATRateLine
	err := r.db.Table("sale_items si").
		Select(`si.vat_rate as rate,
			COALESCE(SUM(si.total - si.vat_amount), 0) as base,
			COALESCE(SUM(si.vat_amount), 0) as vat_amount`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Where("s.status = ? AND s.sale_date >= ? AND s.sale_date < ?", model.SaleCompleted, from, to).
		Group("si.vat_rate").
		Order("si.vat_rate ASC").
		Scan(&lines).Error
	for i := range lines {
		lines[i].Base = cents(lines[i].Base)
		lines[i].VATAmount = cents(lines[i].VATAmount)
	}
	return lines, err
}

// CostOfGoodsSold values sold quantities at the current purchase price.
func (r *reportRepo) CostOfGoodsSold(from, to time.Time) (decimal.Decimal, error) {
	var cogs decimal.Decimal
	err := r.db.Table("sale_items si").
		Select("COALESCE(SUM(si.quantity * p.purchase_price), 0)").
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("JOIN products p ON p.id = si.product_id").
		Where("s.status = ? AND s.sale_date >= ? AND s.sale_date < ?", model.SaleCompleted, from, to).
		Scan(&cogs).Error
	return cents(cogs), err
}
