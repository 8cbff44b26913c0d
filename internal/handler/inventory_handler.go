package handler

import (
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetProducts lists products
// Query params: search, category_id, active, low_stock
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Search:     c.Query("search"),
		CategoryID: queryUUID(c, "category_id"),
		ActiveOnly: c.QueryBool("active", true),
		LowStock:   c.QueryBool("low_stock", false),
	}
	products, err := h.service.ListProducts(filter)
	return respond(c, 200, products, err)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	product, err := h.service.GetProduct(id)
	return respond(c, 200, product, err)
}

// GetProductByBarcode is the scanner lookup
// GET /api/v1/products/barcode/:code
func (h *InventoryHandler) GetProductByBarcode(c *fiber.Ctx) error {
	product, err := h.service.GetProductByBarcode(c.Params("code"))
	return respond(c, 200, product, err)
}

func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock()
	return respond(c, 200, products, err)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}

	created, err := h.service.CreateProduct(&product, getActor(c))
	return respond(c, 201, created, err)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req model.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.service.UpdateProduct(id, &req, getActor(c))
	return respond(c, 200, product, err)
}

func (h *InventoryHandler) DeactivateProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	err := h.service.DeactivateProduct(id, getActor(c))
	return respond(c, 200, fiber.Map{"id": id, "is_active": false}, err)
}

// CreateMovement records a manual in/out/adjustment
// POST /api/v1/stock/movements
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var req service.MovementInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	result, err := h.service.RecordMovement(&req, getActor(c))
	return respond(c, 201, result, err)
}

// GetMovements lists the stock history
// Query params: product_id, type, reference_type, from, to, limit
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	filter := repository.MovementFilter{
		ProductID:     queryUUID(c, "product_id"),
		Type:          model.MovementType(c.Query("type")),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
		Limit:         queryInt(c, "limit", 200),
	}
	movements, err := h.service.ListMovements(filter)
	return respond(c, 200, movements, err)
}

// VerifyStock replays a product's movements against its stock
// GET /api/v1/products/:id/verify
func (h *InventoryHandler) VerifyStock(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	check, err := h.service.VerifyStock(id)
	return respond(c, 200, check, err)
}

func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.QueryBool("active", true))
	return respond(c, 200, categories, err)
}

func (h *InventoryHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.ProductCategory
	if err := c.BodyParser(&category); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateCategory(&category, getActor(c))
	return respond(c, 201, created, err)
}

func (h *InventoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req model.CategoryUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	category, err := h.service.UpdateCategory(id, &req, getActor(c))
	return respond(c, 200, category, err)
}
