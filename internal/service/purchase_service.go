package service

import (
	"fmt"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"dec_gte0"`
	VATRate   *decimal.Decimal `json:"vat_rate" validate:"omitempty,dec_gte0"` // defaults to the product rate
}

type CreatePurchaseRequest struct {
	SupplierID    uuid.UUID           `json:"supplier_id" validate:"uuid_required"`
	Items         []PurchaseItemInput `json:"items" validate:"required,min=1,dive"`
	AmountPaid    decimal.Decimal     `json:"amount_paid" validate:"dec_gte0"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Notes         string              `json:"notes"`
}

type PurchaseReceipt struct {
	PurchaseID      uuid.UUID       `json:"purchase_id"`
	ReferenceNumber string          `json:"reference_number"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	Total           decimal.Decimal `json:"total"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
}

type PurchaseService interface {
	CreatePurchase(req *CreatePurchaseRequest, actor Actor) (*PurchaseReceipt, error)
	GetPurchase(id uuid.UUID) (*model.Purchase, error)
	ListPurchases(filter repository.PurchaseFilter) ([]model.Purchase, error)
}

type purchaseService struct {
	LedgerDeps
	configRepo   repository.StoreConfigRepository
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
}

func NewPurchaseService(deps LedgerDeps, cfgRepo repository.StoreConfigRepository, pRepo repository.ProductRepository, purRepo repository.PurchaseRepository, sRepo repository.SupplierRepository) PurchaseService {
	deps.Clock = deps.Clock.orDefault()
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &purchaseService{
		LedgerDeps:   deps,
		configRepo:   cfgRepo,
		productRepo:  pRepo,
		purchaseRepo: purRepo,
		supplierRepo: sRepo,
	}
}

// FormatPurchaseReference renders PUR-2026-00042.
func FormatPurchaseReference(year int, n int64) string {
	return fmt.Sprintf("PUR-%d-%05d", year, n)
}

func (s *purchaseService) CreatePurchase(req *CreatePurchaseRequest, actor Actor) (*PurchaseReceipt, error) {
	const op = "purchases.create"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = model.PayCash
	}
	if !method.Valid() {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: fmt.Sprintf("unknown payment method %q", method)}
	}
	if method == model.PayCredit && req.AmountPaid.IsPositive() {
		return nil, &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: "a purchase on credit cannot carry a payment"}
	}

	var receipt *PurchaseReceipt
	var productIDs []uuid.UUID
	now := s.Clock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		supplier, err := s.supplierRepo.LockByID(tx, req.SupplierID)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return &apperr.Error{Kind: apperr.SupplierNotFound, Op: op, Message: "supplier not found"}
			}
			return apperr.Wrap(op, err)
		}

		cfg, err := s.configRepo.Lock(tx)
		if err != nil {
			return apperr.Wrap(op, err)
		}
		reference := FormatPurchaseReference(now.Year(), cfg.PurchaseNextNumber)

		items := make([]model.PurchaseItem, 0, len(req.Items))
		subtotal, totalVAT := decimal.Zero, decimal.Zero
		for _, in := range req.Items {
			product, err := s.productRepo.LockByID(tx, in.ProductID)
			if err != nil {
				if apperr.Is(err, apperr.NotFound) {
					return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "product " + in.ProductID.String() + " not found"}
				}
				return apperr.Wrap(op, err)
			}
			vatRate := product.VATRate
			if in.VATRate != nil {
				vatRate = *in.VATRate
			}
			lineTotal := money(in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))))
			lineVAT := percentOf(lineTotal, vatRate)

			items = append(items, model.PurchaseItem{
				ProductID: product.ID,
				Quantity:  in.Quantity,
				UnitPrice: in.UnitPrice,
				VATRate:   vatRate,
				VATAmount: lineVAT,
				Total:     lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
			totalVAT = totalVAT.Add(lineVAT)
		}
		total := subtotal.Add(totalVAT)

		if req.AmountPaid.GreaterThan(total) {
			return &apperr.Error{Kind: apperr.InvalidPayment, Op: op, Message: "amount paid exceeds purchase total " + total.StringFixed(2)}
		}

		purchase := &model.Purchase{
			ReferenceNumber: reference,
			SupplierID:      supplier.ID,
			UserID:          actor.ID,
			PurchaseDate:    now,
			Subtotal:        subtotal,
			VATAmount:       totalVAT,
			Total:           total,
			AmountPaid:      req.AmountPaid,
			Status:          model.PurchaseReceived,
			Notes:           req.Notes,
		}
		purchase.CreatedBy = actor.ID
		purchase.UpdatedBy = actor.ID
		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			return apperr.Wrap(op, err)
		}

		ref := model.NewReference(model.RefPurchase, purchase.ID)
		for i := range items {
			items[i].PurchaseID = purchase.ID
			if err := s.purchaseRepo.CreateItem(tx, &items[i]); err != nil {
				return apperr.Wrap(op, err)
			}
			if _, err := s.Ledger.Apply(tx, MovementRequest{
				ProductID: items[i].ProductID,
				Type:      model.MovementIn,
				Quantity:  items[i].Quantity,
				Reason:    "Achat",
				Actor:     actor.ID,
				Reference: ref,
			}); err != nil {
				return err
			}
			// last cost wins
			if err := s.productRepo.UpdatePurchasePrice(tx, items[i].ProductID, items[i].UnitPrice, actor.ID); err != nil {
				return apperr.Wrap(op, err)
			}
			productIDs = append(productIDs, items[i].ProductID)
		}

		if req.AmountPaid.IsPositive() {
			purchaseID := purchase.ID
			if err := s.purchaseRepo.CreatePayment(tx, &model.Payment{
				PurchaseID: &purchaseID,
				Amount:     req.AmountPaid,
				Method:     method,
			}); err != nil {
				return apperr.Wrap(op, err)
			}
		}

		unpaid := purchase.Unpaid()
		if unpaid.IsPositive() {
			if err := s.supplierRepo.UpdateBalance(tx, supplier.ID, supplier.Balance.Add(unpaid)); err != nil {
				return apperr.Wrap(op, err)
			}
		}

		description := "Achat " + reference
		lines := []JournalLine{
			{AccountCode: s.Accounts.Stock, Debit: subtotal, Description: description},
		}
		if totalVAT.IsPositive() {
			lines = append(lines, JournalLine{AccountCode: s.Accounts.VATInput, Debit: totalVAT, Description: "TVA " + description})
		}
		if unpaid.IsPositive() {
			lines = append(lines, JournalLine{AccountCode: s.Accounts.Payables, Credit: unpaid, Description: description})
		}
		if req.AmountPaid.IsPositive() {
			lines = append(lines, JournalLine{AccountCode: debitAccountFor(s.Accounts, method), Credit: req.AmountPaid, Description: description})
		}
		if total.IsPositive() {
			if _, err := s.Poster.Post(tx, Posting{Date: now, Reference: ref, Actor: actor.ID, Lines: lines}); err != nil {
				return err
			}
		}

		if err := s.configRepo.IncrementPurchaseNumber(tx, cfg.ID); err != nil {
			return apperr.Wrap(op, err)
		}

		receipt = &PurchaseReceipt{
			PurchaseID:      purchase.ID,
			ReferenceNumber: reference,
			Subtotal:        subtotal,
			VATAmount:       totalVAT,
			Total:           total,
			AmountPaid:      req.AmountPaid,
		}
		return nil
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("purchase rolled back")
		return nil, err
	}

	s.Log.Info().
		Str("reference", receipt.ReferenceNumber).
		Str("total", receipt.Total.StringFixed(2)).
		Str("paid", receipt.AmountPaid.StringFixed(2)).
		Msg("purchase committed")
	s.Notifier.Publish(ws.Event{
		Type:    "purchase",
		Action:  "purchase_created",
		Data:    receipt,
		UserID:  actor.ID,
		Message: fmt.Sprintf("%s received purchase %s", actor.Name, receipt.ReferenceNumber),
	})
	s.Notifier.Publish(ws.Event{
		Type:   "stock_update",
		Action: "products_changed",
		Data:   map[string]interface{}{"product_ids": productIDs},
		UserID: actor.ID,
	})
	return receipt, nil
}

func (s *purchaseService) GetPurchase(id uuid.UUID) (*model.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap("purchases.get", err)
	}
	return purchase, nil
}

func (s *purchaseService) ListPurchases(filter repository.PurchaseFilter) ([]model.Purchase, error) {
	purchases, err := s.purchaseRepo.FindAll(filter)
	return purchases, apperr.Wrap("purchases.list", err)
}
