package handler

import (
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// CreatePurchase receives goods from a supplier
// POST /api/v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	receipt, err := h.service.CreatePurchase(&req, getActor(c))
	return respond(c, 201, receipt, err)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	purchase, err := h.service.GetPurchase(id)
	return respond(c, 200, purchase, err)
}

func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	purchases, err := h.service.ListPurchases(repository.PurchaseFilter{
		From:       from,
		To:         to,
		SupplierID: queryUUID(c, "supplier_id"),
		Limit:      queryInt(c, "limit", 100),
	})
	return respond(c, 200, purchases, err)
}
