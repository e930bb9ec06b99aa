package middleware

import (
	"strconv"

	"nwd/database"
	"nwd/services/permission"

	"github.com/gofiber/fiber/v2"
)

// CheckPermissionMiddleware returns a middleware that checks if the
// authenticated person holds the required permission at the location named
// in the route (":locationId"). Cohort-scoped checks happen inside the
// services, which see the cohort id.
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		personID, ok := c.Locals("personId").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  false,
				"message": "Unauthorized: Person not found",
				"data":    nil,
			})
		}

		locationID, err := strconv.Atoi(c.Params("locationId"))
		if err != nil || locationID <= 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
		}

		allowed, err := permission.CheckPermission(database.Database.Db, personID, uint(locationID), requiredPermission, nil)
		if err != nil {
			return ErrorResponse(c, err)
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  false,
				"message": "You do not have permission to access this resource!",
				"data":    nil,
			})
		}

		// Permission found, proceed
		return c.Next()
	}
}
