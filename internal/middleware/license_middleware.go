package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// FeatureChecker is satisfied by the license engine.
type FeatureChecker interface {
	HasFeature(name string) bool
}

// RequireFeature blocks the route unless the current license grants feature.
func RequireFeature(checker FeatureChecker, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if checker == nil || !checker.HasFeature(feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Feature '" + feature + "' is not included in the current license",
				"feature": feature,
			})
		}
		return c.Next()
	}
}
