package handler

import (
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

// CreateSale checks out a cart
// POST /api/v1/sales
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	receipt, err := h.service.CreateSale(&req, getActor(c))
	return respond(c, 201, receipt, err)
}

type VoidSaleRequest struct {
	Reason string `json:"reason"`
}

// VoidSale reverses a completed sale
// POST /api/v1/sales/:id/void
func (h *SalesHandler) VoidSale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req VoidSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}

	err := h.service.VoidSale(id, req.Reason, getActor(c))
	return respond(c, 200, fiber.Map{"id": id, "status": model.SaleVoided}, err)
}

func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	sale, err := h.service.GetSale(id)
	return respond(c, 200, sale, err)
}

// GetSales lists sales
// Query params: from, to, user_id, client_id, status, limit
func (h *SalesHandler) GetSales(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	filter := repository.SaleFilter{
		From:     from,
		To:       to,
		UserID:   c.Query("user_id"),
		ClientID: queryUUID(c, "client_id"),
		Status:   model.SaleStatus(c.Query("status")),
		Limit:    queryInt(c, "limit", 100),
	}
	sales, err := h.service.ListSales(filter)
	return respond(c, 200, sales, err)
}

// GetDailySummary is the end-of-day report
// Query params: date (default today)
func (h *SalesHandler) GetDailySummary(c *fiber.Ctx) error {
	day, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, err)
	}
	if day == nil {
		now := time.Now().UTC()
		day = &now
	}
	summary, err := h.service.DailySummary(*day)
	return respond(c, 200, summary, err)
}
