package cohortValidator

import (
	"strings"
	"time"

	"nwd/middleware"
	"nwd/services/progress"
	"nwd/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateCohort validates cohort creation
func CreateCohort() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Label           string    `json:"label"`
			Handle          string    `json:"handle"`
			AccessStartTime time.Time `json:"access_start_time"`
			AccessEndTime   time.Time `json:"access_end_time"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Label = strings.TrimSpace(reqData.Label)
		reqData.Handle = strings.TrimSpace(reqData.Handle)

		if reqData.Label == "" {
			errors["label"] = "Label is required!"
		}

		if reqData.Handle != "" && !utils.IsValidHandle(reqData.Handle) {
			errors["handle"] = "Handle must be 3-48 lowercase alphanumeric characters or dashes!"
		}

		if reqData.AccessStartTime.IsZero() {
			errors["access_start_time"] = "Access start time is required!"
		}

		if reqData.AccessEndTime.IsZero() {
			errors["access_end_time"] = "Access end time is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCohort", reqData)
		return c.Next()
	}
}

// AllocateStudent validates placing a student in a cohort
func AllocateStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ActorID             uint     `json:"actor_id"`
			StudentCurriculumID uint     `json:"student_curriculum_id"`
			Tags                []string `json:"tags"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ActorID == 0 {
			errors["actor_id"] = "Actor is required!"
		}

		if reqData.StudentCurriculumID == 0 {
			errors["student_curriculum_id"] = "Student curriculum is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAllocation", reqData)
		return c.Next()
	}
}

// UpdateAllocationTags validates replacing the tag list of an allocation
func UpdateAllocationTags() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Tags []string `json:"tags"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedTags", reqData)
		return c.Next()
	}
}

// CohortRole validates granting or revoking a cohort-scoped role
func CohortRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ActorID    uint   `json:"actor_id"`
			RoleHandle string `json:"role_handle"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ActorID == 0 {
			errors["actor_id"] = "Actor is required!"
		}

		if strings.TrimSpace(reqData.RoleHandle) == "" {
			errors["role_handle"] = "Role handle is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCohortRole", reqData)
		return c.Next()
	}
}

// UpdateProgress validates a batch of competency progress entries
func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Entries []progress.Entry `json:"entries"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Entries) == 0 {
			errors["entries"] = "At least one progress entry is required!"
		}
		for _, entry := range reqData.Entries {
			if entry.CompetencyID == 0 {
				errors["entries"] = "Competency is required!"
				break
			}
			if entry.Progress < 0 || entry.Progress > 100 {
				errors["entries"] = "Progress must be between 0 and 100!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// IssueCertificates validates a certificate issuance request
func IssueCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CohortAllocationIDs []uint     `json:"cohort_allocation_ids"`
			VisibleFrom         *time.Time `json:"visible_from"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.CohortAllocationIDs) == 0 {
			errors["cohort_allocation_ids"] = "At least one allocation is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedIssue", reqData)
		return c.Next()
	}
}

// WithdrawCertificates validates a certificate withdrawal request
func WithdrawCertificates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CertificateIDs []uint `json:"certificate_ids"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.CertificateIDs) == 0 {
			errors["certificate_ids"] = "At least one certificate is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWithdraw", reqData)
		return c.Next()
	}
}

// UpdateVisibleFrom validates changing a cohort's default certificate
// visibility date
func UpdateVisibleFrom() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			VisibleFrom time.Time `json:"visible_from"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.VisibleFrom.IsZero() {
			errors["visible_from"] = "Visible from date is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVisibleFrom", reqData)
		return c.Next()
	}
}
