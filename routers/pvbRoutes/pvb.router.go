package pvbRoutes

import (
	pvbController "nwd/controllers/pvb"
	"nwd/middleware"
	pvbValidator "nwd/validators/pvb"

	"github.com/gofiber/fiber/v2"
)

// SetupPvbRoutes sets up the assessment request routes. Role checks
// (kandidaat, leercoach, beoordelaar, secretariaat) happen in the
// services since they depend on the aanvraag being acted on.
func SetupPvbRoutes(app *fiber.App) {
	pvbGroup := app.Group("/pvb")

	// Bulk operations (MUST come before /:aanvraagId)
	pvbGroup.Post("/bulk/kick-off", pvbValidator.Bulk(), middleware.JWTMiddleware, pvbController.BulkKickOff)
	pvbGroup.Post("/bulk/cancel", pvbValidator.Bulk(), middleware.JWTMiddleware, pvbController.BulkCancel)
	pvbGroup.Post("/bulk/datetime", pvbValidator.Bulk(), middleware.JWTMiddleware, pvbController.BulkUpdateDatetime)
	pvbGroup.Post("/bulk/leercoach", pvbValidator.Bulk(), middleware.JWTMiddleware, pvbController.BulkUpdateLeercoach)

	// Aanvraag lifecycle
	pvbGroup.Post("/", pvbValidator.CreateAanvraag(), middleware.JWTMiddleware, pvbController.CreateAanvraag)
	pvbGroup.Get("/:aanvraagId", middleware.JWTMiddleware, pvbController.GetAanvraag)
	pvbGroup.Post("/:aanvraagId/submit", middleware.JWTMiddleware, pvbController.SubmitAanvraag)
	pvbGroup.Post("/:aanvraagId/consent/grant", pvbValidator.Consent(), middleware.JWTMiddleware, pvbController.GrantConsent)
	pvbGroup.Post("/:aanvraagId/consent/deny", pvbValidator.Consent(), middleware.JWTMiddleware, pvbController.DenyConsent)
	pvbGroup.Put("/:aanvraagId/datetime", pvbValidator.Datetime(), middleware.JWTMiddleware, pvbController.UpdateDatetime)
	pvbGroup.Put("/:aanvraagId/leercoach", pvbValidator.Leercoach(), middleware.JWTMiddleware, pvbController.UpdateLeercoach)
	pvbGroup.Post("/:aanvraagId/start", middleware.JWTMiddleware, pvbController.StartAssessment)
	pvbGroup.Post("/:aanvraagId/finalize", pvbValidator.Finalize(), middleware.JWTMiddleware, pvbController.FinalizeAanvraag)
	pvbGroup.Post("/:aanvraagId/cancel", pvbValidator.Cancel(), middleware.JWTMiddleware, pvbController.CancelAanvraag)

	// Audit trail
	pvbGroup.Get("/:aanvraagId/events", middleware.JWTMiddleware, pvbController.ListEvents)

	// Onderdelen
	pvbGroup.Post("/:aanvraagId/onderdelen", pvbValidator.Onderdeel(), middleware.JWTMiddleware, pvbController.AddOnderdeel)
	pvbGroup.Put("/onderdelen/:onderdeelId/beoordelaar", pvbValidator.Beoordelaar(), middleware.JWTMiddleware, pvbController.UpdateOnderdeelBeoordelaar)
	pvbGroup.Put("/onderdelen/:onderdeelId/uitslag", pvbValidator.Uitslag(), middleware.JWTMiddleware, pvbController.UpdateOnderdeelUitslag)
}
