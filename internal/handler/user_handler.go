package handler

import (
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser registers an operator; privileges follow the role
// POST /api/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	view, err := h.userService.CreateOperator(&req, getActor(c))
	return respond(c, 201, view, err)
}

// PUT /api/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	view, err := h.userService.SetPrivileges(id, req.Privileges, getActor(c))
	return respond(c, 200, view, err)
}

// GET /api/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	views, err := h.userService.ListOperators()
	return respond(c, 200, views, err)
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	view, err := h.userService.GetOperator(id)
	return respond(c, 200, view, err)
}

// UpdateUser applies a partial update
// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req service.UpdateOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	view, err := h.userService.UpdateOperator(id, &req, getActor(c))
	return respond(c, 200, view, err)
}

// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c)
	}
	err := h.userService.DeleteOperator(id, getActor(c))
	return respond(c, 200, fiber.Map{"deleted": id}, err)
}
