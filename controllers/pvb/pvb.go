package controllers

import (
	"strconv"

	"nwd/database"
	"nwd/middleware"
	pvbModels "nwd/models/pvb"
	"nwd/services/pvb"
	pvbValidator "nwd/validators/pvb"

	"github.com/gofiber/fiber/v2"
)

func aanvraagParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("aanvraagId"))
	if err != nil || id <= 0 {
		return 0, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid aanvraag ID!", nil)
	}
	return uint(id), nil
}

func actingPerson(c *fiber.Ctx) (uint, bool) {
	personID, ok := c.Locals("personId").(uint)
	return personID, ok
}

// CreateAanvraag creates an assessment request in concept status
func CreateAanvraag(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAanvraag").(*pvbValidator.CreateAanvraagRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	aanvraag, err := pvb.Create(database.Database.Db, pvb.CreateInput{
		LocationID:             reqData.LocationID,
		KandidaatID:            reqData.KandidaatID,
		HoofdcursusID:          reqData.HoofdcursusID,
		LeercoachID:            reqData.LeercoachID,
		BeoordelaarID:          reqData.BeoordelaarID,
		Type:                   reqData.Type,
		KwalificatieprofielIDs: reqData.KwalificatieprofielIDs,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Aanvraag created successfully!", aanvraag)
}

// SubmitAanvraag submits a concept request into the flow
func SubmitAanvraag(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := pvb.Submit(database.Database.Db, aanvraagID, personID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Aanvraag submitted successfully!", nil)
}

// GrantConsent records the leercoach's consent
func GrantConsent(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, _ := c.Locals("validatedConsent").(*pvbValidator.ConsentRequest)
	opmerkingen := ""
	if reqData != nil {
		opmerkingen = reqData.Opmerkingen
	}

	if err := pvb.GrantConsent(database.Database.Db, aanvraagID, personID, opmerkingen); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Consent granted!", nil)
}

// DenyConsent records the leercoach's refusal
func DenyConsent(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, _ := c.Locals("validatedConsent").(*pvbValidator.ConsentRequest)
	reden := ""
	if reqData != nil {
		reden = reqData.Reden
	}

	if err := pvb.DenyConsent(database.Database.Db, aanvraagID, personID, reden); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Consent denied!", nil)
}

// UpdateDatetime sets the start moment of an assessment
func UpdateDatetime(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedDatetime").(*pvbValidator.DatetimeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := pvb.UpdateDatetime(database.Database.Db, aanvraagID, personID, reqData.Aanvangsdatum, reqData.Aanvangstijd); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Start moment updated!", nil)
}

// UpdateLeercoach replaces the leercoach; consent resets with it
func UpdateLeercoach(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLeercoach").(*pvbValidator.LeercoachRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := pvb.UpdateLeercoach(database.Database.Db, aanvraagID, personID, reqData.LeercoachActorID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leercoach updated!", nil)
}

// StartAssessment moves a planned request into execution
func StartAssessment(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := pvb.StartAssessment(database.Database.Db, aanvraagID, personID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment started!", nil)
}

// FinalizeAanvraag records the assessment outcome
func FinalizeAanvraag(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedFinalize").(*pvbValidator.FinalizeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := pvb.Finalize(database.Database.Db, aanvraagID, personID, *reqData.Geslaagd, reqData.Opmerkingen); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment finalized!", nil)
}

// CancelAanvraag withdraws an assessment request
func CancelAanvraag(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, _ := c.Locals("validatedCancel").(*pvbValidator.CancelRequest)
	reden := ""
	if reqData != nil {
		reden = reqData.Reden
	}

	if err := pvb.Cancel(database.Database.Db, aanvraagID, personID, reden); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Aanvraag cancelled!", nil)
}

// GetAanvraag returns an assessment request with its parts
func GetAanvraag(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}

	var aanvraag pvbModels.PvbAanvraag
	err = database.Database.Db.Preload("Onderdelen").First(&aanvraag, aanvraagID).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Aanvraag not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Aanvraag fetched successfully!", aanvraag)
}

// ListEvents returns the audit trail of a request, newest first
func ListEvents(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}

	events, err := pvb.Events(database.Database.Db, aanvraagID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Events fetched successfully!", events)
}

// AddOnderdeel adds an assessment part for a qualification profile
func AddOnderdeel(c *fiber.Ctx) error {
	aanvraagID, err := aanvraagParam(c)
	if err != nil {
		return err
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedOnderdeel").(*pvbValidator.OnderdeelRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	onderdeel, err := pvb.AddOnderdeel(database.Database.Db, aanvraagID, personID, reqData.KwalificatieprofielID, reqData.BeoordelaarID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Onderdeel added!", onderdeel)
}

// UpdateOnderdeelBeoordelaar changes the assessor of one part
func UpdateOnderdeelBeoordelaar(c *fiber.Ctx) error {
	onderdeelID, err := strconv.Atoi(c.Params("onderdeelId"))
	if err != nil || onderdeelID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid onderdeel ID!", nil)
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBeoordelaar").(*pvbValidator.BeoordelaarRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := pvb.UpdateOnderdeelBeoordelaar(database.Database.Db, uint(onderdeelID), personID, reqData.BeoordelaarActorID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Beoordelaar updated!", nil)
}

// UpdateOnderdeelUitslag records the result of one part
func UpdateOnderdeelUitslag(c *fiber.Ctx) error {
	onderdeelID, err := strconv.Atoi(c.Params("onderdeelId"))
	if err != nil || onderdeelID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid onderdeel ID!", nil)
	}
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedUitslag").(*pvbValidator.UitslagRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := pvb.UpdateOnderdeelUitslag(database.Database.Db, uint(onderdeelID), personID, reqData.Uitslag); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Uitslag updated!", nil)
}

// BulkKickOff submits a batch of requests; per-item failures are reported,
// not fatal
func BulkKickOff(c *fiber.Ctx) error {
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBulk").(*pvbValidator.BulkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	results := pvb.BulkKickOff(database.Database.Db, reqData.AanvraagIDs, personID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk kick-off processed!", results)
}

// BulkCancel withdraws a batch of requests
func BulkCancel(c *fiber.Ctx) error {
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBulk").(*pvbValidator.BulkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	results := pvb.BulkCancel(database.Database.Db, reqData.AanvraagIDs, personID, reqData.Reden)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk cancel processed!", results)
}

// BulkUpdateDatetime sets the start moment on a batch of requests
func BulkUpdateDatetime(c *fiber.Ctx) error {
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBulk").(*pvbValidator.BulkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if reqData.Aanvangsdatum == nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"aanvangsdatum": "Start date is required!"})
	}

	results := pvb.BulkUpdateDatetime(database.Database.Db, reqData.AanvraagIDs, personID, *reqData.Aanvangsdatum, reqData.Aanvangstijd)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk datetime update processed!", results)
}

// BulkUpdateLeercoach replaces the leercoach on a batch of requests
func BulkUpdateLeercoach(c *fiber.Ctx) error {
	personID, ok := actingPerson(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedBulk").(*pvbValidator.BulkRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if reqData.LeercoachActorID == nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"leercoach_actor_id": "Leercoach is required!"})
	}

	results := pvb.BulkUpdateLeercoach(database.Database.Db, reqData.AanvraagIDs, personID, *reqData.LeercoachActorID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk leercoach update processed!", results)
}
