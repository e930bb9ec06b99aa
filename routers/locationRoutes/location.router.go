package locationRoutes

import (
	actorController "nwd/controllers/actor"
	catalogController "nwd/controllers/catalog"
	cohortController "nwd/controllers/cohort"
	personController "nwd/controllers/person"
	"nwd/middleware"
	actorValidator "nwd/validators/actor"
	catalogValidator "nwd/validators/catalog"
	cohortValidator "nwd/validators/cohort"
	personValidator "nwd/validators/person"

	"github.com/gofiber/fiber/v2"
)

// SetupLocationRoutes sets up location management routes. Everything below
// /:locationId is guarded by the location-scoped permission check.
func SetupLocationRoutes(app *fiber.App) {
	locationGroup := app.Group("/locations")

	locationGroup.Post("/", catalogValidator.CreateLocation(), middleware.JWTMiddleware, catalogController.CreateLocation)
	locationGroup.Get("/", catalogController.ListLocations)

	locationGroup.Get("/:locationId/stats", middleware.JWTMiddleware, catalogController.LocationDashboardStats)

	// Actor management
	locationGroup.Post("/:locationId/actors", actorValidator.UpsertActor(), middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("actor.manage"), actorController.UpsertActor)
	locationGroup.Delete("/:locationId/actors", actorValidator.UpsertActor(), middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("actor.manage"), actorController.RemoveActor)
	locationGroup.Get("/:locationId/actors", middleware.JWTMiddleware, actorController.ListLocationActors)

	// Person-location links
	locationGroup.Post("/:locationId/persons/link", personValidator.LinkPerson(), middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("person.manage"), personController.LinkPersonToLocation)

	// Cohorts
	locationGroup.Post("/:locationId/cohorts", cohortValidator.CreateCohort(), middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("cohort.manage"), cohortController.CreateCohort)
	locationGroup.Get("/:locationId/cohorts", middleware.JWTMiddleware, cohortController.ListCohorts)
}
