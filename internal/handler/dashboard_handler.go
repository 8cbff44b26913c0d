package handler

import (
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

type stockMovementSeries struct {
	Days int                            `json:"period"`
	Data []repository.StockMovementData `json:"data"`
}

// GetStockMovement returns daily in/out quantities for charts, ?days=7 by default
// GET /api/v1/dashboard/stock-movement
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := queryInt(c, "days", 7)
	data, err := h.service.GetStockMovement(days)
	return respond(c, 200, stockMovementSeries{Days: days, Data: data}, err)
}

// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	return respond(c, 200, stats, err)
}
