package handler

import (
	"strconv"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// getActor reads the operator set by RequireAuth.
func getActor(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)
	if name == "" {
		name, _ = c.Locals("user_username").(string)
	}
	return service.Actor{ID: id, Name: name}
}

func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

// respond renders a service outcome as a Result envelope.
func respond[T any](c *fiber.Ctx, okStatus int, value T, err error) error {
	res := apperr.From(value, err)
	return c.Status(res.Status(okStatus)).JSON(res)
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(apperr.Err[any](apperr.E(apperr.Validation, "Invalid JSON")))
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(400).JSON(apperr.Err[any](apperr.E(apperr.Validation, "Invalid ID")))
}

// queryUUID returns nil for an absent or malformed id.
func queryUUID(c *fiber.Ctx, key string) *uuid.UUID {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// queryDate parses a YYYY-MM-DD query value as a UTC day start.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, apperr.Ef(apperr.Validation, "%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

// queryRange reads from/to as a half-open range [from, to+1day). Missing
// bounds default to the current month.
func queryRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if from != nil {
		start = *from
	}
	end := start.AddDate(0, 1, 0)
	if to != nil {
		end = to.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, apperr.E(apperr.Validation, "to must not be before from")
	}
	return start, end, nil
}

// queryBounds is queryRange for optional filters: absent bounds stay nil.
func queryBounds(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(400).JSON(apperr.Err[any](err))
}
