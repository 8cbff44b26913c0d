package service

import (
	"fmt"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementInput is a manual stock event. For adjustments Quantity is the
// counted stock.
type MovementInput struct {
	ProductID uuid.UUID          `json:"product_id" validate:"uuid_required"`
	Type      model.MovementType `json:"type" validate:"required,oneof=in out adjustment"`
	Quantity  int                `json:"quantity" validate:"gte=0"`
	Reason    string             `json:"reason" validate:"required"`
}

// StockCheck is the outcome of replaying a product's movement chain.
type StockCheck struct {
	ProductID     uuid.UUID `json:"product_id"`
	StockQuantity int       `json:"stock_quantity"`
	Replayed      int       `json:"replayed"`
	Movements     int       `json:"movements"`
	BrokenAtSeq   int64     `json:"broken_at_seq,omitempty"`
	Consistent    bool      `json:"consistent"`
}

type InventoryService interface {
	CreateProduct(req *model.Product, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *model.ProductUpdate, actor Actor) (*model.Product, error)
	DeactivateProduct(id uuid.UUID, actor Actor) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetProductByBarcode(barcode string) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	LowStock() ([]model.Product, error)
	RecordMovement(req *MovementInput, actor Actor) (*MovementResult, error)
	ListMovements(filter repository.MovementFilter) ([]model.StockMovement, error)
	VerifyStock(productID uuid.UUID) (*StockCheck, error)
	ListCategories(activeOnly bool) ([]model.ProductCategory, error)
	CreateCategory(req *model.ProductCategory, actor Actor) (*model.ProductCategory, error)
	UpdateCategory(id uuid.UUID, req *model.CategoryUpdate, actor Actor) (*model.ProductCategory, error)
}

type inventoryService struct {
	LedgerDeps
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	categoryRepo repository.CategoryRepository
}

func NewInventoryService(deps LedgerDeps, pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, cRepo repository.CategoryRepository) InventoryService {
	deps.Clock = deps.Clock.orDefault()
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &inventoryService{
		LedgerDeps:   deps,
		productRepo:  pRepo,
		movementRepo: mRepo,
		categoryRepo: cRepo,
	}
}

// CreateProduct inserts the product with zero stock; an initial quantity is
// recorded as an "in" movement so the audit chain starts at zero.
func (s *inventoryService) CreateProduct(req *model.Product, actor Actor) (*model.Product, error) {
	const op = "inventory.create_product"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "initial stock cannot be negative"}
	}
	if err := s.checkUnique(op, req.Barcode, req.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	initial := req.StockQuantity
	product := *req
	product.ID = uuid.Nil
	product.StockQuantity = 0
	product.IsActive = true
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, &product); err != nil {
			return apperr.Wrap(op, err)
		}
		if initial > 0 {
			res, err := s.Ledger.Apply(tx, MovementRequest{
				ProductID: product.ID,
				Type:      model.MovementIn,
				Quantity:  initial,
				Reason:    "Stock initial",
				Actor:     actor.ID,
				Reference: model.NewReference(model.RefInitial, product.ID),
			})
			if err != nil {
				return err
			}
			product.StockQuantity = res.NewStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("product_id", product.ID.String()).Str("name", product.NameFr).Int("stock", product.StockQuantity).Msg("product created")
	s.publish("product_created", &product, actor, fmt.Sprintf("%s created product '%s'", actor.Name, product.DisplayName()))
	return &product, nil
}

// UpdateProduct applies the present fields. A new stock quantity becomes an
// adjustment movement in the same transaction.
func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.ProductUpdate, actor Actor) (*model.Product, error) {
	const op = "inventory.update_product"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}

	var updated *model.Product
	var oldStock int

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "product not found"}
			}
			return apperr.Wrap(op, err)
		}
		oldStock = existing.StockQuantity

		req.Apply(existing)
		if err := s.checkUniqueTx(tx, op, existing.Barcode, existing.SKU, existing.ID); err != nil {
			return err
		}
		existing.UpdatedBy = actor.ID
		if err := s.productRepo.Update(tx, existing); err != nil {
			return apperr.Wrap(op, err)
		}

		if req.StockQuantity != nil && *req.StockQuantity != oldStock {
			res, err := s.Ledger.Apply(tx, MovementRequest{
				ProductID: existing.ID,
				Type:      model.MovementAdjustment,
				Quantity:  *req.StockQuantity,
				Reason:    "Ajustement",
				Actor:     actor.ID,
				Reference: model.NewReference(model.RefAdjustment, existing.ID),
			})
			if err != nil {
				return err
			}
			existing.StockQuantity = res.NewStock
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("product_id", updated.ID.String()).Int("old_stock", oldStock).Int("new_stock", updated.StockQuantity).Msg("product updated")
	s.publish("product_updated", updated, actor, fmt.Sprintf("%s updated product '%s'", actor.Name, updated.DisplayName()))
	return updated, nil
}

func (s *inventoryService) DeactivateProduct(id uuid.UUID, actor Actor) error {
	actor = actor.orSystem()
	if err := s.productRepo.Deactivate(id, actor.ID); err != nil {
		return apperr.Wrap("inventory.deactivate_product", err)
	}
	s.Log.Info().Str("product_id", id.String()).Msg("product deactivated")
	s.Notifier.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_deactivated",
		Data:   map[string]interface{}{"id": id},
		UserID: actor.ID,
	})
	return nil
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap("inventory.get_product", err)
	}
	return product, nil
}

func (s *inventoryService) GetProductByBarcode(barcode string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(barcode)
	if err != nil {
		return nil, apperr.Wrap("inventory.get_by_barcode", err)
	}
	return product, nil
}

func (s *inventoryService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(filter)
	return products, apperr.Wrap("inventory.list_products", err)
}

func (s *inventoryService) LowStock() ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock()
	return products, apperr.Wrap("inventory.low_stock", err)
}

func (s *inventoryService) RecordMovement(req *MovementInput, actor Actor) (*MovementResult, error) {
	const op = "inventory.record_movement"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}

	var result *MovementResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.Ledger.Apply(tx, MovementRequest{
			ProductID: req.ProductID,
			Type:      req.Type,
			Quantity:  req.Quantity,
			Reason:    req.Reason,
			Actor:     actor.ID,
			Reference: model.NewReference(model.RefAdjustment, req.ProductID),
		})
		return err
	})
	if err != nil {
		s.Log.Warn().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("stock movement rolled back")
		return nil, err
	}

	s.Log.Info().
		Str("product_id", req.ProductID.String()).
		Str("type", string(req.Type)).
		Int("previous", result.PreviousStock).
		Int("new", result.NewStock).
		Msg("stock movement recorded")
	s.Notifier.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "movement_created",
		Data:    result,
		UserID:  actor.ID,
		Message: fmt.Sprintf("%s recorded %s of %d (%s)", actor.Name, req.Type, req.Quantity, req.Reason),
	})
	return result, nil
}

func (s *inventoryService) ListMovements(filter repository.MovementFilter) ([]model.StockMovement, error) {
	movements, err := s.movementRepo.FindAll(filter)
	return movements, apperr.Wrap("inventory.list_movements", err)
}

func (s *inventoryService) VerifyStock(productID uuid.UUID) (*StockCheck, error) {
	const op = "inventory.verify_stock"

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	movements, err := s.movementRepo.FindByProduct(productID)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	replayed, brokenAt, ok := ReplayMovements(movements)
	check := &StockCheck{
		ProductID:     product.ID,
		StockQuantity: product.StockQuantity,
		Replayed:      replayed,
		Movements:     len(movements),
		BrokenAtSeq:   brokenAt,
		Consistent:    ok && replayed == product.StockQuantity,
	}
	if !check.Consistent {
		s.Log.Error().
			Str("product_id", productID.String()).
			Int("stock", product.StockQuantity).
			Int("replayed", replayed).
			Int64("broken_at", brokenAt).
			Msg("stock audit chain does not match")
	}
	return check, nil
}

func (s *inventoryService) ListCategories(activeOnly bool) ([]model.ProductCategory, error) {
	categories, err := s.categoryRepo.FindAll(activeOnly)
	return categories, apperr.Wrap("inventory.list_categories", err)
}

func (s *inventoryService) CreateCategory(req *model.ProductCategory, actor Actor) (*model.ProductCategory, error) {
	const op = "inventory.create_category"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	category := *req
	category.ID = uuid.Nil
	category.IsActive = true
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(&category); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return &category, nil
}

func (s *inventoryService) UpdateCategory(id uuid.UUID, req *model.CategoryUpdate, actor Actor) (*model.ProductCategory, error) {
	const op = "inventory.update_category"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	req.Apply(category)
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return category, nil
}

func (s *inventoryService) checkUnique(op string, barcode, sku *string, self uuid.UUID) error {
	return s.checkUniqueTx(nil, op, barcode, sku, self)
}

// checkUniqueTx rejects a barcode or SKU held by another product. Inside a
// transaction the lookup goes through tx so sqlite's single connection is reused.
func (s *inventoryService) checkUniqueTx(tx *gorm.DB, op string, barcode, sku *string, self uuid.UUID) error {
	db := s.DB
	if tx != nil {
		db = tx
	}
	if barcode != nil {
		var n int64
		if err := db.Model(&model.Product{}).Where("barcode = ? AND id <> ?", *barcode, self).Count(&n).Error; err != nil {
			return apperr.Wrap(op, err)
		}
		if n > 0 {
			return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "barcode already exists"}
		}
	}
	if sku != nil {
		var n int64
		if err := db.Model(&model.Product{}).Where("sku = ? AND id <> ?", *sku, self).Count(&n).Error; err != nil {
			return apperr.Wrap(op, err)
		}
		if n > 0 {
			return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "SKU already exists"}
		}
	}
	return nil
}

func (s *inventoryService) publish(action string, p *model.Product, actor Actor, message string) {
	s.Notifier.Publish(ws.Event{
		Type:   "stock_update",
		Action: action,
		Data: map[string]interface{}{
			"id":      p.ID,
			"barcode": p.Barcode,
			"name":    p.DisplayName(),
			"stock":   p.StockQuantity,
			"price":   p.SalePrice,
		},
		UserID:  actor.ID,
		Message: message,
	})
}
