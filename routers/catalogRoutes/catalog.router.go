package catalogRoutes

import (
	catalogController "nwd/controllers/catalog"
	"nwd/middleware"
	catalogValidator "nwd/validators/catalog"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes sets up the course catalog management routes
func SetupCatalogRoutes(app *fiber.App) {
	catalogGroup := app.Group("/catalog")

	// Simple handle+title entities
	catalogGroup.Post("/disciplines", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateDiscipline)
	catalogGroup.Get("/disciplines", catalogController.ListDisciplines)
	catalogGroup.Post("/degrees", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateDegree)
	catalogGroup.Get("/degrees", catalogController.ListDegrees)
	catalogGroup.Post("/gear-types", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateGearType)
	catalogGroup.Get("/gear-types", catalogController.ListGearTypes)
	catalogGroup.Post("/modules", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateModule)
	catalogGroup.Get("/modules", catalogController.ListModules)
	catalogGroup.Post("/competencies", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateCompetency)
	catalogGroup.Get("/competencies", catalogController.ListCompetencies)
	catalogGroup.Post("/kwalificatieprofielen", catalogValidator.CreateHandleEntity(), middleware.JWTMiddleware, catalogController.CreateKwalificatieprofiel)

	// Courses and curricula
	catalogGroup.Post("/courses", catalogValidator.CreateCourse(), middleware.JWTMiddleware, catalogController.CreateCourse)
	catalogGroup.Get("/courses", catalogController.ListCourses)
	catalogGroup.Post("/curricula", catalogValidator.CreateCurriculum(), middleware.JWTMiddleware, catalogController.CreateCurriculum)
	catalogGroup.Get("/curricula/:id", catalogController.GetCurriculum)
	catalogGroup.Post("/curricula/:id/competencies", catalogValidator.AddCurriculumCompetency(), middleware.JWTMiddleware, catalogController.AddCurriculumCompetency)
}
