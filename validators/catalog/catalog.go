package catalogValidator

import (
	"strings"

	"nwd/middleware"
	"nwd/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleEntity is the common payload for catalog entities that only carry a
// handle and a title
type HandleEntity struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// CreateHandleEntity validates creation of a simple handle+title entity
// (discipline, degree, gear type, module, competency, ...)
func CreateHandleEntity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(HandleEntity)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Handle = strings.TrimSpace(reqData.Handle)
		reqData.Title = strings.TrimSpace(reqData.Title)

		if reqData.Handle == "" {
			errors["handle"] = "Handle is required!"
		} else if !utils.IsValidHandle(reqData.Handle) {
			errors["handle"] = "Handle must be 3-48 lowercase alphanumeric characters or dashes!"
		}

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEntity", reqData)
		return c.Next()
	}
}

// CreateLocation validates location creation
func CreateLocation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Handle      string `json:"handle"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Website     string `json:"website"`
			Email       string `json:"email"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Handle = strings.TrimSpace(reqData.Handle)
		reqData.Name = strings.TrimSpace(reqData.Name)

		if reqData.Handle == "" {
			errors["handle"] = "Handle is required!"
		} else if !utils.IsValidHandle(reqData.Handle) {
			errors["handle"] = "Handle must be 3-48 lowercase alphanumeric characters or dashes!"
		}

		if reqData.Name == "" {
			errors["name"] = "Name is required!"
		} else if len(reqData.Name) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLocation", reqData)
		return c.Next()
	}
}

// CreateCourse validates course creation
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Handle       string `json:"handle"`
			Title        string `json:"title"`
			Description  string `json:"description"`
			DisciplineID uint   `json:"discipline_id"`
			DegreeID     uint   `json:"degree_id"`
			CategoryID   *uint  `json:"category_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Handle = strings.TrimSpace(reqData.Handle)
		reqData.Title = strings.TrimSpace(reqData.Title)

		if reqData.Handle == "" {
			errors["handle"] = "Handle is required!"
		} else if !utils.IsValidHandle(reqData.Handle) {
			errors["handle"] = "Handle must be 3-48 lowercase alphanumeric characters or dashes!"
		}

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		if reqData.DisciplineID == 0 {
			errors["discipline_id"] = "Discipline is required!"
		}

		if reqData.DegreeID == 0 {
			errors["degree_id"] = "Degree is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CreateCurriculum validates curriculum revision creation
func CreateCurriculum() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID uint   `json:"course_id"`
			Revision string `json:"revision"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Revision = strings.TrimSpace(reqData.Revision)

		if reqData.CourseID == 0 {
			errors["course_id"] = "Course is required!"
		}

		if reqData.Revision == "" {
			errors["revision"] = "Revision is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCurriculum", reqData)
		return c.Next()
	}
}

// AddCurriculumCompetency validates placing a competency in a curriculum module
func AddCurriculumCompetency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ModuleID     uint `json:"module_id"`
			CompetencyID uint `json:"competency_id"`
			IsRequired   bool `json:"is_required"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ModuleID == 0 {
			errors["module_id"] = "Module is required!"
		}
		if reqData.CompetencyID == 0 {
			errors["competency_id"] = "Competency is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCurriculumCompetency", reqData)
		return c.Next()
	}
}
