package service

import (
	"fmt"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerDeps are the collaborators shared by every orchestrator.
type LedgerDeps struct {
	DB       *gorm.DB
	Ledger   StockLedger
	Poster   JournalPoster
	Accounts config.AccountMap
	Notifier Notifier
	Clock    Clock
	Log      zerolog.Logger
}

type SaleItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,dec_gte0"` // defaults to the product sale price
	Discount  decimal.Decimal  `json:"discount" validate:"dec_gte0"`
	VATRate   *decimal.Decimal `json:"vat_rate" validate:"omitempty,dec_gte0"` // defaults to the product rate
}

type CreateSaleRequest struct {
	Items           []SaleItemInput     `json:"items" validate:"required,min=1,dive"`
	ClientID        *uuid.UUID          `json:"client_id"`
	DiscountAmount  *decimal.Decimal    `json:"discount_amount" validate:"omitempty,dec_gte0"`
	DiscountPercent *decimal.Decimal    `json:"discount_percent" validate:"omitempty,dec_gte0"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	Notes           string              `json:"notes"`
}

type SaleReceipt struct {
	SaleID         uuid.UUID       `json:"sale_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	Total          decimal.Decimal `json:"total"`
	Change         decimal.Decimal `json:"change"`
}

type DailySummary struct {
	Date           string                     `json:"date"`
	Count          int64                      `json:"count"`
	Revenue        decimal.Decimal            `json:"revenue"`
	VAT            decimal.Decimal            `json:"vat"`
	Discounts      decimal.Decimal            `json:"discounts"`
	AverageTicket  decimal.Decimal            `json:"average_ticket"`
	ByMethod       []repository.MethodTotal   `json:"by_method"`
	ByOperator     []repository.OperatorTotal `json:"by_operator"`
	VoidedCount    int                        `json:"voided_count"`
	LowStockAlerts int                        `json:"low_stock_alerts"`
}

type SalesService interface {
	CreateSale(req *CreateSaleRequest, actor Actor) (*SaleReceipt, error)
	VoidSale(saleID uuid.UUID, reason string, actor Actor) error
	GetSale(id uuid.UUID) (*model.Sale, error)
	ListSales(filter repository.SaleFilter) ([]model.Sale, error)
	DailySummary(day time.Time) (*DailySummary, error)
}

type salesService struct {
	LedgerDeps
	configRepo  repository.StoreConfigRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	clientRepo  repository.ClientRepository
	credit      CreditPolicy
}

func NewSalesService(deps LedgerDeps, cfgRepo repository.StoreConfigRepository, pRepo repository.ProductRepository, sRepo repository.SaleRepository, cRepo repository.ClientRepository, credit CreditPolicy) SalesService {
	deps.Clock = deps.Clock.orDefault()
	deps.Notifier = notifierOrNop(deps.Notifier)
	if credit == nil {
		credit = NewCreditPolicy("advisory", deps.Log)
	}
	return &salesService{
		LedgerDeps:  deps,
		configRepo:  cfgRepo,
		productRepo: pRepo,
		saleRepo:    sRepo,
		clientRepo:  cRepo,
		credit:      credit,
	}
}

// FormatInvoiceNumber renders prefix-000042.
func FormatInvoiceNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// debitAccountFor is where the money of a sale lands.
func debitAccountFor(accounts config.AccountMap, method model.PaymentMethod) string {
	switch method {
	case model.PayCredit:
		return accounts.Receivables
	case model.PayCard, model.PayCheck, model.PayBankTransfer:
		return accounts.Bank
	default:
		return accounts.Cash
	}
}

func (s *salesService) CreateSale(req *CreateSaleRequest, actor Actor) (*SaleReceipt, error) {
	const op = "sales.create"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: fmt.Sprintf("unknown payment method %q", req.PaymentMethod)}
	}
	if req.AmountPaid.IsNegative() {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: "amount paid cannot be negative"}
	}
	if req.PaymentMethod == model.PayCredit && req.ClientID == nil {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: "a credit sale needs a client"}
	}

	var receipt *SaleReceipt
	var sale *model.Sale
	now := s.Clock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 1. Invoice number, consumed only if this transaction commits
		cfg, err := s.configRepo.Lock(tx)
		if err != nil {
			return apperr.Wrap(op, err)
		}
		invoiceNumber := FormatInvoiceNumber(cfg.InvoicePrefix, cfg.InvoiceNextNumber)

		// 2. Line math
		items := make([]model.SaleItem, 0, len(req.Items))
		subtotal, totalVAT := decimal.Zero, decimal.Zero
		for _, in := range req.Items {
			product, err := s.productRepo.LockByID(tx, in.ProductID)
			if err != nil {
				if apperr.Is(err, apperr.NotFound) {
					return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "product " + in.ProductID.String() + " not found"}
				}
				return apperr.Wrap(op, err)
			}
			if !product.IsActive {
				return &apperr.Error{Kind: apperr.Validation, Op: op, Message: product.DisplayName() + " is not active"}
			}

			unitPrice := product.SalePrice
			if in.UnitPrice != nil {
				unitPrice = *in.UnitPrice
			}
			vatRate := product.VATRate
			if in.VATRate != nil {
				vatRate = *in.VATRate
			}
			gross := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
			if in.Discount.GreaterThan(gross) {
				return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "line discount exceeds line amount for " + product.DisplayName()}
			}
			lineSubtotal := money(gross.Sub(in.Discount))
			lineVAT := percentOf(lineSubtotal, vatRate)

			barcode := ""
			if product.Barcode != nil {
				barcode = *product.Barcode
			}
			items = append(items, model.SaleItem{
				ProductID:   product.ID,
				ProductName: product.DisplayName(),
				Barcode:     barcode,
				Quantity:    in.Quantity,
				UnitPrice:   unitPrice,
				Discount:    in.Discount,
				VATRate:     vatRate,
				VATAmount:   lineVAT,
				Total:       lineSubtotal.Add(lineVAT),
			})
			subtotal = subtotal.Add(lineSubtotal)
			totalVAT = totalVAT.Add(lineVAT)
		}

		// 3. Header totals
		discountPercent := decimal.Zero
		if req.DiscountPercent != nil {
			discountPercent = *req.DiscountPercent
		}
		discountAmount := decimal.Zero
		if req.DiscountAmount != nil && req.DiscountAmount.IsPositive() {
			discountAmount = money(*req.DiscountAmount)
		} else {
			discountAmount = percentOf(subtotal, discountPercent)
		}
		if discountAmount.GreaterThan(subtotal) {
			return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "discount exceeds subtotal"}
		}
		total := subtotal.Sub(discountAmount).Add(totalVAT)
		change := decimal.Max(decimal.Zero, req.AmountPaid.Sub(total))

		if req.PaymentMethod != model.PayCredit && req.AmountPaid.LessThan(total) {
			return &apperr.Error{
				Kind:    apperr.InvalidPayment,
				Op:      op,
				Message: "amount paid " + req.AmountPaid.StringFixed(2) + " is below total " + total.StringFixed(2),
			}
		}

		// Client must exist before anything is written for it
		var client *model.Client
		if req.ClientID != nil {
			client, err = s.clientRepo.LockByID(tx, *req.ClientID)
			if err != nil {
				if apperr.Is(err, apperr.NotFound) {
					return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "client not found"}
				}
				return apperr.Wrap(op, err)
			}
		}

		// 4. Header, items and stock
		sale = &model.Sale{
			InvoiceNumber:   invoiceNumber,
			UserID:          actor.ID,
			ClientID:        req.ClientID,
			SaleDate:        now,
			Subtotal:        subtotal,
			DiscountAmount:  discountAmount,
			DiscountPercent: discountPercent,
			VATAmount:       totalVAT,
			Total:           total,
			AmountPaid:      req.AmountPaid,
			ChangeAmount:    change,
			PaymentMethod:   req.PaymentMethod,
			Status:          model.SaleCompleted,
			Notes:           req.Notes,
		}
		sale.CreatedBy = actor.ID
		sale.UpdatedBy = actor.ID
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return apperr.Wrap(op, err)
		}

		ref := model.NewReference(model.RefSale, sale.ID)
		for i := range items {
			items[i].SaleID = sale.ID
			if err := s.saleRepo.CreateItem(tx, &items[i]); err != nil {
				return apperr.Wrap(op, err)
			}
			if _, err := s.Ledger.Apply(tx, MovementRequest{
				ProductID: items[i].ProductID,
				Type:      model.MovementOut,
				Quantity:  items[i].Quantity,
				Reason:    "Vente",
				Actor:     actor.ID,
				Reference: ref,
			}); err != nil {
				return err
			}
		}
		sale.Items = items

		// 5. Payment
		saleID := sale.ID
		if err := s.saleRepo.CreatePayment(tx, &model.Payment{
			SaleID: &saleID,
			Amount: req.AmountPaid,
			Method: req.PaymentMethod,
		}); err != nil {
			return apperr.Wrap(op, err)
		}

		// 6. Journal
		lines := []JournalLine{
			{AccountCode: debitAccountFor(s.Accounts, req.PaymentMethod), Debit: total, Description: "Vente " + invoiceNumber},
			{AccountCode: s.Accounts.Sales, Credit: sale.NetRevenue(), Description: "Vente " + invoiceNumber},
		}
		if totalVAT.IsPositive() {
			lines = append(lines, JournalLine{AccountCode: s.Accounts.VATPayable, Credit: totalVAT, Description: "TVA Vente " + invoiceNumber})
		}
		if _, err := s.Poster.Post(tx, Posting{Date: now, Reference: ref, Actor: actor.ID, Lines: lines}); err != nil {
			return err
		}

		// 7. Counter
		if err := s.configRepo.IncrementInvoiceNumber(tx, cfg.ID); err != nil {
			return apperr.Wrap(op, err)
		}

		// 8. Receivable
		if client != nil && req.PaymentMethod == model.PayCredit {
			newBalance := client.Balance.Add(total)
			if err := s.credit.CheckCreditLimit(client, newBalance); err != nil {
				return err
			}
			if err := s.clientRepo.UpdateBalance(tx, client.ID, newBalance); err != nil {
				return apperr.Wrap(op, err)
			}
		}

		receipt = &SaleReceipt{
			SaleID:         sale.ID,
			InvoiceNumber:  invoiceNumber,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
			VATAmount:      totalVAT,
			Total:          total,
			Change:         change,
		}
		return nil
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("sale rolled back")
		return nil, err
	}

	s.Log.Info().
		Str("invoice", receipt.InvoiceNumber).
		Str("total", receipt.Total.StringFixed(2)).
		Str("method", string(req.PaymentMethod)).
		Msg("sale committed")
	s.Notifier.Publish(ws.Event{
		Type:    "sale",
		Action:  "sale_created",
		Data:    receipt,
		UserID:  actor.ID,
		Message: fmt.Sprintf("%s recorded sale %s", actor.Name, receipt.InvoiceNumber),
	})
	s.publishStock(sale.Items, actor)

	return receipt, nil
}

func (s *salesService) VoidSale(saleID uuid.UUID, reason string, actor Actor) error {
	const op = "sales.void"
	actor = actor.orSystem()

	var sale *model.Sale
	now := s.Clock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		sale, err = s.saleRepo.LockByID(tx, saleID)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "sale not found"}
			}
			return apperr.Wrap(op, err)
		}
		if sale.Status != model.SaleCompleted {
			return &apperr.Error{Kind: apperr.AlreadyVoided, Op: op, Message: "sale " + sale.InvoiceNumber + " is already voided"}
		}

		ref := model.NewReference(model.RefSaleVoid, sale.ID)
		for _, item := range sale.Items {
			if _, err := s.Ledger.Apply(tx, MovementRequest{
				ProductID: item.ProductID,
				Type:      model.MovementIn,
				Quantity:  item.Quantity,
				Reason:    "Annulation vente",
				Actor:     actor.ID,
				Reference: ref,
			}); err != nil {
				return err
			}
		}

		if err := s.saleRepo.MarkVoided(tx, sale.ID, reason, now, actor.ID); err != nil {
			return apperr.Wrap(op, err)
		}

		// only credit sales raised the receivable
		if sale.ClientID != nil && sale.PaymentMethod == model.PayCredit {
			client, err := s.clientRepo.LockByID(tx, *sale.ClientID)
			if err != nil {
				return apperr.Wrap(op, err)
			}
			if err := s.clientRepo.UpdateBalance(tx, client.ID, client.Balance.Sub(sale.Total)); err != nil {
				return apperr.Wrap(op, err)
			}
		}

		description := "Annulation " + sale.InvoiceNumber
		lines := []JournalLine{
			{AccountCode: debitAccountFor(s.Accounts, sale.PaymentMethod), Credit: sale.Total, Description: description},
			{AccountCode: s.Accounts.Sales, Debit: sale.NetRevenue(), Description: description},
		}
		if sale.VATAmount.IsPositive() {
			lines = append(lines, JournalLine{AccountCode: s.Accounts.VATPayable, Debit: sale.VATAmount, Description: "TVA " + description})
		}
		if _, err := s.Poster.Post(tx, Posting{Date: now, Reference: ref, Actor: actor.ID, Lines: lines}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("void rolled back")
		return err
	}

	s.Log.Info().Str("invoice", sale.InvoiceNumber).Str("reason", reason).Msg("sale voided")
	s.Notifier.Publish(ws.Event{
		Type:    "sale",
		Action:  "sale_voided",
		Data:    map[string]interface{}{"sale_id": sale.ID, "invoice_number": sale.InvoiceNumber, "reason": reason},
		UserID:  actor.ID,
		Message: fmt.Sprintf("%s voided sale %s", actor.Name, sale.InvoiceNumber),
	})
	s.publishStock(sale.Items, actor)
	return nil
}

func (s *salesService) publishStock(items []model.SaleItem, actor Actor) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	s.Notifier.Publish(ws.Event{
		Type:   "stock_update",
		Action: "products_changed",
		Data:   map[string]interface{}{"product_ids": ids},
		UserID: actor.ID,
	})
}

func (s *salesService) GetSale(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap("sales.get", err)
	}
	return sale, nil
}

func (s *salesService) ListSales(filter repository.SaleFilter) ([]model.Sale, error) {
	sales, err := s.saleRepo.FindAll(filter)
	return sales, apperr.Wrap("sales.list", err)
}

func (s *salesService) DailySummary(day time.Time) (*DailySummary, error) {
	const op = "sales.daily_summary"
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

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
	voided, err := s.saleRepo.FindAll(repository.SaleFilter{From: &from, To: &to, Status: model.SaleVoided})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	lowStock, err := s.productRepo.FindLowStock()
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	summary := &DailySummary{
		Date:           from.Format("2006-01-02"),
		Count:          agg.Count,
		Revenue:        agg.Revenue,
		VAT:            agg.VAT,
		Discounts:      agg.Discounts,
		AverageTicket:  decimal.Zero,
		ByMethod:       byMethod,
		ByOperator:     byOperator,
		VoidedCount:    len(voided),
		LowStockAlerts: len(lowStock),
	}
	if agg.Count > 0 {
		summary.AverageTicket = money(agg.Revenue.Div(decimal.NewFromInt(agg.Count)))
	}
	return summary, nil
}
