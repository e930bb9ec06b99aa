package pvbValidator

import (
	"reflect"
	"strings"
	"time"

	"nwd/middleware"
	pvbModels "nwd/models/pvb"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// fieldErrors flattens validator.ValidationErrors into the response map
func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[fe.Field()] = "Failed validation: " + fe.Tag() + "!"
		}
		return errors
	}
	errors["body"] = "Invalid request body!"
	return errors
}

// CreateAanvraagRequest is the payload for creating an assessment request
type CreateAanvraagRequest struct {
	LocationID             uint   `json:"location_id" validate:"required"`
	KandidaatID            uint   `json:"kandidaat_id" validate:"required"`
	HoofdcursusID          *uint  `json:"hoofdcursus_id"`
	LeercoachID            *uint  `json:"leercoach_id"`
	BeoordelaarID          *uint  `json:"beoordelaar_id"`
	Type                   string `json:"type" validate:"required"`
	KwalificatieprofielIDs []uint `json:"kwalificatieprofiel_ids" validate:"min=1,dive,required"`
}

// CreateAanvraag validates creation of an assessment request
func CreateAanvraag() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateAanvraagRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		if !pvbModels.IsValidType(reqData.Type) {
			return middleware.ValidationErrorResponse(c, map[string]string{"type": "Unknown assessment type!"})
		}

		c.Locals("validatedAanvraag", reqData)
		return c.Next()
	}
}

// ConsentRequest carries the optional remarks or reason of a consent decision
type ConsentRequest struct {
	Opmerkingen string `json:"opmerkingen"`
	Reden       string `json:"reden"`
}

// Consent validates a leercoach consent decision
func Consent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ConsentRequest)

		// body is optional here
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("validatedConsent", reqData)
		return c.Next()
	}
}

// DatetimeRequest sets the start moment of an assessment
type DatetimeRequest struct {
	Aanvangsdatum time.Time `json:"aanvangsdatum" validate:"required"`
	Aanvangstijd  string    `json:"aanvangstijd"`
}

// Datetime validates an assessment start moment update
func Datetime() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DatetimeRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedDatetime", reqData)
		return c.Next()
	}
}

// LeercoachRequest replaces the leercoach of an assessment request
type LeercoachRequest struct {
	LeercoachActorID uint `json:"leercoach_actor_id" validate:"required"`
}

// Leercoach validates a leercoach replacement
func Leercoach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LeercoachRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLeercoach", reqData)
		return c.Next()
	}
}

// FinalizeRequest records the outcome of an executed assessment
type FinalizeRequest struct {
	Geslaagd    *bool  `json:"geslaagd" validate:"required"`
	Opmerkingen string `json:"opmerkingen"`
}

// Finalize validates recording an assessment outcome
func Finalize() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(FinalizeRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedFinalize", reqData)
		return c.Next()
	}
}

// CancelRequest withdraws an assessment request
type CancelRequest struct {
	Reden string `json:"reden"`
}

// Cancel validates a withdrawal
func Cancel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CancelRequest)

		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("validatedCancel", reqData)
		return c.Next()
	}
}

// OnderdeelRequest adds an assessment part for a qualification profile
type OnderdeelRequest struct {
	KwalificatieprofielID uint  `json:"kwalificatieprofiel_id" validate:"required"`
	BeoordelaarID         *uint `json:"beoordelaar_id"`
}

// Onderdeel validates adding an assessment part
func Onderdeel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(OnderdeelRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedOnderdeel", reqData)
		return c.Next()
	}
}

// BeoordelaarRequest changes the assessor of an assessment part
type BeoordelaarRequest struct {
	BeoordelaarActorID uint `json:"beoordelaar_actor_id" validate:"required"`
}

// Beoordelaar validates an assessor change
func Beoordelaar() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BeoordelaarRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedBeoordelaar", reqData)
		return c.Next()
	}
}

// UitslagRequest records the result of an assessment part
type UitslagRequest struct {
	Uitslag string `json:"uitslag" validate:"required"`
}

// Uitslag validates an assessment part result
func Uitslag() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UitslagRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedUitslag", reqData)
		return c.Next()
	}
}

// BulkRequest is the common shape of the bulk operations: a list of
// assessment request ids plus the op-specific fields
type BulkRequest struct {
	AanvraagIDs      []uint     `json:"aanvraag_ids" validate:"min=1,dive,required"`
	Reden            string     `json:"reden"`
	Aanvangsdatum    *time.Time `json:"aanvangsdatum"`
	Aanvangstijd     string     `json:"aanvangstijd"`
	LeercoachActorID *uint      `json:"leercoach_actor_id"`
}

// Bulk validates the shared shape of all bulk operations
func Bulk() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedBulk", reqData)
		return c.Next()
	}
}
