package actorValidator

import (
	"nwd/middleware"
	"nwd/models"

	"github.com/gofiber/fiber/v2"
)

// UpsertActor validates adding (or re-adding) an actor to a location
func UpsertActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PersonID uint   `json:"person_id"`
			Type     string `json:"type"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PersonID == 0 {
			errors["person_id"] = "Person is required!"
		}

		if reqData.Type == "" {
			errors["type"] = "Actor type is required!"
		} else if !models.IsValidActorType(reqData.Type) {
			errors["type"] = "Unknown actor type!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedActor", reqData)
		return c.Next()
	}
}
