package cohortRoutes

import (
	cohortController "nwd/controllers/cohort"
	"nwd/middleware"
	cohortValidator "nwd/validators/cohort"

	"github.com/gofiber/fiber/v2"
)

// SetupCohortRoutes sets up allocation, progress and certificate routes.
// Cohort-scoped permission checks live in the services, which re-derive
// the location from the cohort itself.
func SetupCohortRoutes(app *fiber.App) {
	cohortGroup := app.Group("/cohorts")

	// Allocations
	cohortGroup.Post("/:cohortId/allocations", cohortValidator.AllocateStudent(), middleware.JWTMiddleware, cohortController.AllocateStudent)
	cohortGroup.Get("/:cohortId/allocations", middleware.JWTMiddleware, cohortController.ListAllocations)
	cohortGroup.Put("/allocations/:allocationId/tags", cohortValidator.UpdateAllocationTags(), middleware.JWTMiddleware, cohortController.UpdateAllocationTags)

	// Cohort-scoped roles
	cohortGroup.Post("/:cohortId/roles", cohortValidator.CohortRole(), middleware.JWTMiddleware, cohortController.AddCohortRole)
	cohortGroup.Delete("/:cohortId/roles", cohortValidator.CohortRole(), middleware.JWTMiddleware, cohortController.RemoveCohortRole)

	// Competency progress
	cohortGroup.Post("/allocations/:allocationId/progress", cohortValidator.UpdateProgress(), middleware.JWTMiddleware, cohortController.UpdateProgress)
	cohortGroup.Post("/allocations/:allocationId/progress/complete-core", middleware.JWTMiddleware, cohortController.CompleteCoreCompetencies)
	cohortGroup.Get("/allocations/:allocationId/progress", middleware.JWTMiddleware, cohortController.GetLatestProgress)
	cohortGroup.Post("/:cohortId/allocations/:allocationId/progress/release", middleware.JWTMiddleware, cohortController.MakeProgressVisible)

	// Certificates
	cohortGroup.Post("/:cohortId/certificates/issue", cohortValidator.IssueCertificates(), middleware.JWTMiddleware, cohortController.IssueCertificates)
	cohortGroup.Post("/:cohortId/certificates/withdraw", cohortValidator.WithdrawCertificates(), middleware.JWTMiddleware, cohortController.WithdrawCertificates)
	cohortGroup.Put("/:cohortId/certificates/visible-from", cohortValidator.UpdateVisibleFrom(), middleware.JWTMiddleware, cohortController.UpdateDefaultVisibleFrom)
}
