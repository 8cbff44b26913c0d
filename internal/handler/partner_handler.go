package handler

import (
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PartnerHandler serves suppliers and clients.
type PartnerHandler struct {
	service service.PartnerService
}

func NewPartnerHandler(s service.PartnerService) *PartnerHandler {
	return &PartnerHandler{service: s}
}

func (h *PartnerHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.QueryBool("active", true))
	return respond(c, 200, suppliers, err)
}

func (h *PartnerHandler) GetSupplier(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	supplier, err := h.service.GetSupplier(id)
	return respond(c, 200, supplier, err)
}

func (h *PartnerHandler) CreateSupplier(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateSupplier(&supplier, getActor(c))
	return respond(c, 201, created, err)
}

func (h *PartnerHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req model.PartnerUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	supplier, err := h.service.UpdateSupplier(id, &req, getActor(c))
	return respond(c, 200, supplier, err)
}

func (h *PartnerHandler) DeactivateSupplier(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	err := h.service.DeactivateSupplier(id, getActor(c))
	return respond(c, 200, fiber.Map{"id": id, "is_active": false}, err)
}

func (h *PartnerHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.service.ListClients(c.QueryBool("active", true))
	return respond(c, 200, clients, err)
}

func (h *PartnerHandler) GetClient(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	client, err := h.service.GetClient(id)
	return respond(c, 200, client, err)
}

func (h *PartnerHandler) CreateClient(c *fiber.Ctx) error {
	var client model.Client
	if err := c.BodyParser(&client); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateClient(&client, getActor(c))
	return respond(c, 201, created, err)
}

func (h *PartnerHandler) UpdateClient(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req model.PartnerUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	client, err := h.service.UpdateClient(id, &req, getActor(c))
	return respond(c, 200, client, err)
}

func (h *PartnerHandler) DeactivateClient(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	err := h.service.DeactivateClient(id, getActor(c))
	return respond(c, 200, fiber.Map{"id": id, "is_active": false}, err)
}
