package handler

import (
	"go-pos-ledger/internal/license"

	"github.com/gofiber/fiber/v2"
)

type LicenseHandler struct {
	engine *license.Engine
}

func NewLicenseHandler(engine *license.Engine) *LicenseHandler {
	return &LicenseHandler{engine: engine}
}

// GetStatus returns the cached license status
// GET /api/v1/license/status
func (h *LicenseHandler) GetStatus(c *fiber.Ctx) error {
	return respond(c, 200, h.engine.Status(), nil)
}

// GetMachineInfo shows the binding factors of this machine
// GET /api/v1/license/machine
func (h *LicenseHandler) GetMachineInfo(c *fiber.Ctx) error {
	return respond(c, 200, h.engine.MachineInfo(), nil)
}

type licenseRequestBody struct {
	CustomerName string `json:"customerName"`
}

// GenerateRequest builds the activation request to send to the vendor
// POST /api/v1/license/request
func (h *LicenseHandler) GenerateRequest(c *fiber.Ctx) error {
	var body licenseRequestBody
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c)
	}
	req, err := h.engine.GenerateRequest(body.CustomerName)
	return respond(c, 200, req, err)
}

// Activate installs a signed license. The body is the license JSON itself.
// POST /api/v1/license/activate
func (h *LicenseHandler) Activate(c *fiber.Ctx) error {
	status, err := h.engine.Activate(c.Body())
	return respond(c, 200, status, err)
}

// Revalidate re-reads the license file
// POST /api/v1/license/validate
func (h *LicenseHandler) Revalidate(c *fiber.Ctx) error {
	status, err := h.engine.Validate()
	return respond(c, 200, status, err)
}

// Deactivate removes the license file; the app drops back to trial.
// DELETE /api/v1/license
func (h *LicenseHandler) Deactivate(c *fiber.Ctx) error {
	err := h.engine.Deactivate()
	return respond(c, 200, h.engine.Status(), err)
}
