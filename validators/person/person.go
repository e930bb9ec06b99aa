package personValidator

import (
	"strings"

	"nwd/middleware"
	"nwd/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePerson validates person creation
func CreatePerson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			FirstName      string `json:"first_name"`
			LastNamePrefix string `json:"last_name_prefix"`
			LastName       string `json:"last_name"`
			Email          string `json:"email"`
			AuthUserID     string `json:"auth_user_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.FirstName = strings.TrimSpace(reqData.FirstName)
		reqData.LastName = strings.TrimSpace(reqData.LastName)
		reqData.Email = strings.TrimSpace(reqData.Email)

		if reqData.FirstName == "" {
			errors["first_name"] = "First name is required!"
		}

		if reqData.LastName == "" {
			errors["last_name"] = "Last name is required!"
		}

		if reqData.Email != "" && !strings.Contains(reqData.Email, "@") {
			errors["email"] = "Invalid email address!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPerson", reqData)
		return c.Next()
	}
}

// LinkPerson validates a person-to-location link update
func LinkPerson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PersonID uint   `json:"person_id"`
			Status   string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PersonID == 0 {
			errors["person_id"] = "Person is required!"
		}

		switch reqData.Status {
		case "", models.LinkStatusPending, models.LinkStatusLinked, models.LinkStatusBlocked:
		default:
			errors["status"] = "Unknown link status!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLink", reqData)
		return c.Next()
	}
}
