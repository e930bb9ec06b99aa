package controllers

import (
	"strconv"
	"time"

	"nwd/database"
	"nwd/middleware"
	"nwd/models"
	"nwd/services/certificate"
	"nwd/services/cohort"
	"nwd/services/progress"

	"github.com/gofiber/fiber/v2"
)

// CreateCohort creates a cohort under a location
func CreateCohort(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	reqData, ok := c.Locals("validatedCohort").(*struct {
		Label           string    `json:"label"`
		Handle          string    `json:"handle"`
		AccessStartTime time.Time `json:"access_start_time"`
		AccessEndTime   time.Time `json:"access_end_time"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	created, err := cohort.Create(database.Database.Db, cohort.CreateInput{
		LocationID:      uint(locationID),
		Label:           reqData.Label,
		Handle:          reqData.Handle,
		AccessStartTime: reqData.AccessStartTime,
		AccessEndTime:   reqData.AccessEndTime,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Cohort created successfully!", created)
}

// ListCohorts lists the cohorts of a location
func ListCohorts(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	var cohorts []models.Cohort
	err = database.Database.Db.Where("location_id = ?", locationID).
		Order("access_start_time desc").Find(&cohorts).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch cohorts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cohorts fetched successfully!", cohorts)
}

// AllocateStudent places a student actor in a cohort
func AllocateStudent(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAllocation").(*struct {
		ActorID             uint     `json:"actor_id"`
		StudentCurriculumID uint     `json:"student_curriculum_id"`
		Tags                []string `json:"tags"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	allocation, err := cohort.AllocateStudent(database.Database.Db, personID, cohort.AllocateInput{
		CohortID:            uint(cohortID),
		ActorID:             reqData.ActorID,
		StudentCurriculumID: reqData.StudentCurriculumID,
		Tags:                reqData.Tags,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student allocated successfully!", allocation)
}

// ListAllocations lists the allocations of a cohort
func ListAllocations(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	var allocations []models.CohortAllocation
	err = database.Database.Db.Where("cohort_id = ?", cohortID).
		Preload("Actor").Preload("StudentCurriculum").
		Order("id asc").Find(&allocations).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch allocations!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Allocations fetched successfully!", allocations)
}

// UpdateAllocationTags replaces the tag list of an allocation
func UpdateAllocationTags(c *fiber.Ctx) error {
	allocationID, err := strconv.Atoi(c.Params("allocationId"))
	if err != nil || allocationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid allocation ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedTags").(*struct {
		Tags []string `json:"tags"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := cohort.UpdateAllocationTags(database.Database.Db, personID, uint(allocationID), reqData.Tags); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tags updated successfully!", nil)
}

// AddCohortRole grants a cohort-scoped role to an actor
func AddCohortRole(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCohortRole").(*struct {
		ActorID    uint   `json:"actor_id"`
		RoleHandle string `json:"role_handle"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	role, err := cohort.AddCohortRole(database.Database.Db, personID, uint(cohortID), reqData.ActorID, reqData.RoleHandle)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Cohort role granted successfully!", role)
}

// RemoveCohortRole revokes a cohort-scoped role from an actor
func RemoveCohortRole(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCohortRole").(*struct {
		ActorID    uint   `json:"actor_id"`
		RoleHandle string `json:"role_handle"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err = cohort.RemoveCohortRole(database.Database.Db, personID, uint(cohortID), reqData.ActorID, reqData.RoleHandle)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cohort role revoked successfully!", nil)
}

// UpdateProgress appends competency progress rows for an allocation
func UpdateProgress(c *fiber.Ctx) error {
	allocationID, err := strconv.Atoi(c.Params("allocationId"))
	if err != nil || allocationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid allocation ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*struct {
		Entries []progress.Entry `json:"entries"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := progress.Update(database.Database.Db, uint(allocationID), personID, reqData.Entries); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded successfully!", nil)
}

// CompleteCoreCompetencies records full progress on every required
// competency of the allocation's curriculum
func CompleteCoreCompetencies(c *fiber.Ctx) error {
	allocationID, err := strconv.Atoi(c.Params("allocationId"))
	if err != nil || allocationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid allocation ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := progress.CompleteAllCoreCompetencies(database.Database.Db, uint(allocationID), personID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Core competencies completed!", nil)
}

// MakeProgressVisible releases an allocation's progress to the student
func MakeProgressVisible(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	allocationID, err := strconv.Atoi(c.Params("allocationId"))
	if err != nil || allocationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid allocation ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := progress.MakeVisible(database.Database.Db, personID, uint(cohortID), uint(allocationID)); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress is now visible to the student!", nil)
}

// GetLatestProgress returns the latest recorded progress per competency
func GetLatestProgress(c *fiber.Ctx) error {
	allocationID, err := strconv.Atoi(c.Params("allocationId"))
	if err != nil || allocationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid allocation ID!", nil)
	}

	latest, err := progress.Latest(database.Database.Db, uint(allocationID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", latest)
}

// IssueCertificates issues certificates for eligible allocations of a cohort
func IssueCertificates(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedIssue").(*struct {
		CohortAllocationIDs []uint     `json:"cohort_allocation_ids"`
		VisibleFrom         *time.Time `json:"visible_from"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	results, err := certificate.IssueInCohort(database.Database.Db, personID, uint(cohortID), reqData.CohortAllocationIDs, reqData.VisibleFrom)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Issuance processed!", results)
}

// WithdrawCertificates withdraws certificates of a cohort as one batch
func WithdrawCertificates(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedWithdraw").(*struct {
		CertificateIDs []uint `json:"certificate_ids"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := certificate.WithdrawInCohort(database.Database.Db, personID, uint(cohortID), reqData.CertificateIDs); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates withdrawn successfully!", nil)
}

// UpdateDefaultVisibleFrom changes a cohort's default certificate
// visibility date and carries it over to certificates that are not
// visible yet
func UpdateDefaultVisibleFrom(c *fiber.Ctx) error {
	cohortID, err := strconv.Atoi(c.Params("cohortId"))
	if err != nil || cohortID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cohort ID!", nil)
	}

	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedVisibleFrom").(*struct {
		VisibleFrom time.Time `json:"visible_from"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := certificate.UpdateDefaultVisibleFrom(database.Database.Db, personID, uint(cohortID), reqData.VisibleFrom); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Default visibility updated successfully!", nil)
}
