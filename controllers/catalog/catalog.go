package controllers

import (
	"errors"
	"strconv"

	"nwd/database"
	"nwd/middleware"
	"nwd/models"
	catalogValidator "nwd/validators/catalog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateLocation creates a school location
func CreateLocation(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLocation").(*struct {
		Handle      string `json:"handle"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Website     string `json:"website"`
		Email       string `json:"email"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	location := models.Location{
		Handle:      reqData.Handle,
		Name:        reqData.Name,
		Description: reqData.Description,
		Website:     reqData.Website,
		Email:       reqData.Email,
	}
	if err := database.Database.Db.Create(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A location with this handle already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create location!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Location created successfully!", location)
}

// ListLocations lists all active locations
func ListLocations(c *fiber.Ctx) error {
	var locations []models.Location
	if err := database.Database.Db.Where("is_deleted = false").Order("name asc").Find(&locations).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch locations!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Locations fetched successfully!", locations)
}

// createHandleEntity persists any of the simple handle+title catalog rows
func createHandleEntity(c *fiber.Ctx, build func(handle, title string) interface{}, label string) error {
	reqData, ok := c.Locals("validatedEntity").(*catalogValidator.HandleEntity)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	entity := build(reqData.Handle, reqData.Title)
	if err := database.Database.Db.Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A "+label+" with this handle already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create "+label+"!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Created successfully!", entity)
}

func CreateDiscipline(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.Discipline{Handle: handle, Title: title}
	}, "discipline")
}

func CreateDegree(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.Degree{Handle: handle, Title: title}
	}, "degree")
}

func CreateGearType(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.GearType{Handle: handle, Title: title}
	}, "gear type")
}

func CreateModule(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.Module{Handle: handle, Title: title}
	}, "module")
}

func CreateCompetency(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.Competency{Handle: handle, Title: title}
	}, "competency")
}

func CreateKwalificatieprofiel(c *fiber.Ctx) error {
	return createHandleEntity(c, func(handle, title string) interface{} {
		return &models.Kwalificatieprofiel{Handle: handle, Titel: title}
	}, "kwalificatieprofiel")
}

func ListDisciplines(c *fiber.Ctx) error {
	var rows []models.Discipline
	if err := database.Database.Db.Where("is_deleted = false").Order("weight asc, title asc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch disciplines!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Disciplines fetched successfully!", rows)
}

func ListDegrees(c *fiber.Ctx) error {
	var rows []models.Degree
	if err := database.Database.Db.Where("is_deleted = false").Order("rang asc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch degrees!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Degrees fetched successfully!", rows)
}

func ListGearTypes(c *fiber.Ctx) error {
	var rows []models.GearType
	if err := database.Database.Db.Where("is_deleted = false").Order("title asc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch gear types!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Gear types fetched successfully!", rows)
}

func ListModules(c *fiber.Ctx) error {
	var rows []models.Module
	if err := database.Database.Db.Where("is_deleted = false").Order("weight asc, title asc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", rows)
}

func ListCompetencies(c *fiber.Ctx) error {
	var rows []models.Competency
	if err := database.Database.Db.Where("is_deleted = false").Order("weight asc, title asc").Find(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch competencies!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Competencies fetched successfully!", rows)
}

// CreateCourse creates a course under a discipline and degree
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Handle       string `json:"handle"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		DisciplineID uint   `json:"discipline_id"`
		DegreeID     uint   `json:"degree_id"`
		CategoryID   *uint  `json:"category_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		Handle:       reqData.Handle,
		Title:        reqData.Title,
		Description:  reqData.Description,
		DisciplineID: reqData.DisciplineID,
		DegreeID:     reqData.DegreeID,
		CategoryID:   reqData.CategoryID,
	}
	if err := database.Database.Db.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A course with this handle already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// ListCourses lists courses with their discipline and degree
func ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	err := database.Database.Db.Where("is_deleted = false").
		Preload("Discipline").Preload("Degree").
		Order("title asc").Find(&courses).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// CreateCurriculum creates a new curriculum revision for a course
func CreateCurriculum(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCurriculum").(*struct {
		CourseID uint   `json:"course_id"`
		Revision string `json:"revision"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", reqData.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	curriculum := models.Curriculum{
		CourseID: reqData.CourseID,
		Revision: reqData.Revision,
	}
	if err := database.Database.Db.Create(&curriculum).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "This course already has a curriculum with this revision!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create curriculum!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Curriculum created successfully!", curriculum)
}

// AddCurriculumCompetency places a competency in a module of a curriculum
func AddCurriculumCompetency(c *fiber.Ctx) error {
	curriculumID, err := strconv.Atoi(c.Params("id"))
	if err != nil || curriculumID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid curriculum ID!", nil)
	}

	reqData, ok := c.Locals("validatedCurriculumCompetency").(*struct {
		ModuleID     uint `json:"module_id"`
		CompetencyID uint `json:"competency_id"`
		IsRequired   bool `json:"is_required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var curriculum models.Curriculum
	if err := db.Where("id = ? AND is_deleted = false", curriculumID).First(&curriculum).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Curriculum not found!", nil)
	}

	// Make sure the module is linked to the curriculum (idempotent)
	var link models.CurriculumModule
	err = db.Where("curriculum_id = ? AND module_id = ?", curriculumID, reqData.ModuleID).First(&link).Error
	if err == gorm.ErrRecordNotFound {
		link = models.CurriculumModule{CurriculumID: uint(curriculumID), ModuleID: reqData.ModuleID}
		if err := db.Create(&link).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link module!", nil)
		}
	}

	cc := models.CurriculumCompetency{
		CurriculumID: uint(curriculumID),
		ModuleID:     reqData.ModuleID,
		CompetencyID: reqData.CompetencyID,
		IsRequired:   reqData.IsRequired,
	}
	if err := db.Create(&cc).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add competency!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Competency added to curriculum!", cc)
}

// GetCurriculum returns a curriculum with its modules and competencies
func GetCurriculum(c *fiber.Ctx) error {
	curriculumID, err := strconv.Atoi(c.Params("id"))
	if err != nil || curriculumID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid curriculum ID!", nil)
	}

	db := database.Database.Db

	var curriculum models.Curriculum
	if err := db.Where("id = ? AND is_deleted = false", curriculumID).Preload("Course").First(&curriculum).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Curriculum not found!", nil)
	}

	var moduleLinks []models.CurriculumModule
	db.Where("curriculum_id = ?", curriculumID).Preload("Module").Find(&moduleLinks)

	var competencies []models.CurriculumCompetency
	db.Where("curriculum_id = ?", curriculumID).Preload("Competency").Find(&competencies)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Curriculum fetched successfully!", fiber.Map{
		"curriculum":   curriculum,
		"modules":      moduleLinks,
		"competencies": competencies,
	})
}

// LocationDashboardStats returns headline numbers for a location dashboard
func LocationDashboardStats(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	db := database.Database.Db

	var cohortCount int64
	db.Model(&models.Cohort{}).Where("location_id = ?", locationID).Count(&cohortCount)

	var studentCount int64
	db.Model(&models.Actor{}).Where("location_id = ? AND type = ?", locationID, models.ActorStudent).Count(&studentCount)

	var instructorCount int64
	db.Model(&models.Actor{}).Where("location_id = ? AND type = ?", locationID, models.ActorInstructor).Count(&instructorCount)

	var certificateCount int64
	db.Model(&models.Certificate{}).Where("location_id = ? AND issued_at IS NOT NULL AND withdrawn_at IS NULL", locationID).Count(&certificateCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"cohorts":      cohortCount,
		"students":     studentCount,
		"instructors":  instructorCount,
		"certificates": certificateCount,
	})
}
