package personRoutes

import (
	personController "nwd/controllers/person"
	"nwd/middleware"
	personValidator "nwd/validators/person"

	"github.com/gofiber/fiber/v2"
)

// SetupPersonRoutes sets up person and profile routes
func SetupPersonRoutes(app *fiber.App) {
	personGroup := app.Group("/persons")

	personGroup.Post("/", personValidator.CreatePerson(), middleware.JWTMiddleware, personController.CreatePerson)

	app.Get("/me", middleware.JWTMiddleware, personController.GetMe)
	app.Get("/me/active-types", middleware.JWTMiddleware, personController.GetMyActiveTypes)
}
