package middleware

import (
	"strings"

	"go-pos-ledger/internal/repository"
	"go-pos-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func deny(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(c *fiber.Ctx) (string, bool) {
	scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// RequireAuth accepts a request only for an active operator whose token
// matches the current session version, then exposes the operator in Locals.
func RequireAuth(tokens *jwt.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c)
		if !ok {
			return deny(c, fiber.StatusUnauthorized, "Missing or malformed bearer token")
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := users.FindByID(claims.UserID)
		switch {
		case err != nil:
			return deny(c, fiber.StatusUnauthorized, "Operator not found")
		case !user.IsActive:
			return deny(c, fiber.StatusUnauthorized, "Operator account is inactive")
		case user.TokenVersion != claims.TokenVersion:
			return deny(c, fiber.StatusUnauthorized, "Session ended (signed in elsewhere or credentials changed)")
		}

		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_username", claims.Username)
		c.Locals("user_name", claims.Name)
		c.Locals("user_privileges", claims.Privileges)
		return c.Next()
	}
}

func privilegesOf(c *fiber.Ctx) []string {
	privileges, _ := c.Locals("user_privileges").([]string)
	return privileges
}

func holdsAny(held []string, wanted ...string) bool {
	for _, h := range held {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}

// RequirePrivilege lets the request through only when the operator holds code.
func RequirePrivilege(code string) fiber.Handler {
	return RequireAnyPrivilege(code)
}

func RequireAnyPrivilege(codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !holdsAny(privilegesOf(c), codes...) {
			return deny(c, fiber.StatusForbidden, "Forbidden: requires "+strings.Join(codes, " or "))
		}
		return c.Next()
	}
}
