package service

import (
	"math"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRequest asks the stock ledger for one quantity change.
// For adjustments Quantity is the new absolute stock, not a delta.
type MovementRequest struct {
	ProductID uuid.UUID
	Type      model.MovementType
	Quantity  int
	Reason    string
	Actor     string
	Reference model.Reference
}

type MovementResult struct {
	PreviousStock int                  `json:"previous_stock"`
	NewStock      int                  `json:"new_stock"`
	Movement      *model.StockMovement `json:"movement"`
}

// StockLedger applies stock changes. It never opens nor commits a transaction:
// callers hand it the transaction of the business event.
type StockLedger interface {
	Apply(tx *gorm.DB, req MovementRequest) (*MovementResult, error)
}

type stockLedger struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	now          Clock
}

func NewStockLedger(pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, clock Clock) StockLedger {
	return &stockLedger{
		productRepo:  pRepo,
		movementRepo: mRepo,
		now:          clock.orDefault(),
	}
}

func (l *stockLedger) Apply(tx *gorm.DB, req MovementRequest) (*MovementResult, error) {
	const op = "stock.apply"

	if !req.Type.Valid() {
		return nil, apperr.Ef(apperr.Validation, "unknown movement type %q", req.Type)
	}
	if req.Type == model.MovementAdjustment {
		if req.Quantity < 0 {
			return nil, apperr.E(apperr.Validation, "adjusted stock cannot be negative")
		}
	} else if req.Quantity <= 0 {
		return nil, apperr.E(apperr.Validation, "quantity must be positive")
	}

	product, err := l.productRepo.LockByID(tx, req.ProductID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "product not found", Err: err}
		}
		return nil, apperr.Wrap(op, err)
	}

	previous := product.StockQuantity
	var next int
	switch req.Type {
	case model.MovementIn:
		if req.Quantity > math.MaxInt-previous {
			return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "quantity would overflow stock of " + product.DisplayName()}
		}
		next = previous + req.Quantity
	case model.MovementOut:
		next = previous - req.Quantity
		if next < 0 {
			return nil, &apperr.Error{
				Kind:    apperr.InsufficientStock,
				Op:      op,
				Message: "insufficient stock for " + product.DisplayName(),
			}
		}
	case model.MovementAdjustment:
		next = req.Quantity
	}

	seq, err := l.movementRepo.LastSeq(tx, product.ID)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	if err := l.productRepo.UpdateStock(tx, product.ID, next, req.Actor); err != nil {
		return nil, apperr.Wrap(op, err)
	}

	movement := &model.StockMovement{
		ProductID:     product.ID,
		Seq:           seq + 1,
		Type:          req.Type,
		Quantity:      req.Quantity,
		PreviousStock: previous,
		NewStock:      next,
		Reason:        req.Reason,
		Reference:     req.Reference,
		UserID:        req.Actor,
	}
	movement.CreatedAt = l.now()
	if err := l.movementRepo.Create(tx, movement); err != nil {
		return nil, apperr.Wrap(op, err)
	}

	return &MovementResult{PreviousStock: previous, NewStock: next, Movement: movement}, nil
}

// ReplayMovements folds an ordered audit chain from zero stock. It reports the
// first broken link, if any.
func ReplayMovements(movements []model.StockMovement) (stock int, brokenAt int64, ok bool) {
	stock = 0
	for _, m := range movements {
		if m.PreviousStock != stock {
			return stock, m.Seq, false
		}
		switch m.Type {
		case model.MovementIn:
			stock += m.Quantity
		case model.MovementOut:
			stock -= m.Quantity
		case model.MovementAdjustment:
			stock = m.Quantity
		}
		if stock != m.NewStock || stock < 0 {
			return stock, m.Seq, false
		}
	}
	return stock, 0, true
}

// Clock is injected wherever time is recorded.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return c
}
