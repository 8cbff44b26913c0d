package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) GetInventory(c *fiber.Ctx) error {
	report, err := h.service.Inventory()
	return respond(c, 200, report, err)
}

func (h *ReportHandler) GetClientBalances(c *fiber.Ctx) error {
	report, err := h.service.ClientBalances()
	return respond(c, 200, report, err)
}

func (h *ReportHandler) GetSupplierBalances(c *fiber.Ctx) error {
	report, err := h.service.SupplierBalances()
	return respond(c, 200, report, err)
}

// ExportJournal downloads the journal as a workbook
// GET /api/v1/reports/export/journal
func (h *ReportHandler) ExportJournal(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	var buf bytes.Buffer
	err = h.service.ExportJournal(repository.JournalFilter{
		AccountID:     queryUUID(c, "account_id"),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
	}, &buf)
	return sendWorkbook(c, "journal", &buf, err)
}

func (h *ReportHandler) ExportInventory(c *fiber.Ctx) error {
	var buf bytes.Buffer
	err := h.service.ExportInventory(&buf)
	return sendWorkbook(c, "inventaire", &buf, err)
}

func (h *ReportHandler) ExportMovements(c *fiber.Ctx) error {
	from, to, err := queryBounds(c)
	if err != nil {
		return badRequest(c, err)
	}
	var buf bytes.Buffer
	err = h.service.ExportMovements(repository.MovementFilter{
		ProductID:     queryUUID(c, "product_id"),
		Type:          model.MovementType(c.Query("type")),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
	}, &buf)
	return sendWorkbook(c, "mouvements", &buf, err)
}

func sendWorkbook(c *fiber.Ctx, name string, buf *bytes.Buffer, err error) error {
	if err != nil {
		return respond[any](c, 200, nil, err)
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
