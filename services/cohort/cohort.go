package cohort

import (
	"encoding/json"
	"errors"
	"time"

	"nwd/models"
	"nwd/services/apperrors"
	"nwd/services/permission"
	"nwd/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateInput carries the fields for a new cohort. Handle defaults to a
// slug of the label when empty.
type CreateInput struct {
	LocationID      uint
	Label           string
	Handle          string
	AccessStartTime time.Time
	AccessEndTime   time.Time
}

// Create creates a cohort under a location. The handle must be unique per
// location; violating that surfaces as a conflict, not a generic failure.
func Create(db *gorm.DB, input CreateInput) (*models.Cohort, error) {
	handle := input.Handle
	if handle == "" {
		handle = utils.Slugify(input.Label)
	}
	if !utils.IsValidHandle(handle) {
		return nil, apperrors.Validation("Invalid cohort handle!", map[string]string{
			"handle": "Handle must be 3-48 lowercase alphanumeric characters or dashes!",
		})
	}
	if !input.AccessEndTime.After(input.AccessStartTime) {
		return nil, apperrors.Validation("Invalid access window!", map[string]string{
			"access_end_time": "Access end time must be after access start time!",
		})
	}

	var location models.Location
	if err := db.Where("id = ? AND is_deleted = false", input.LocationID).First(&location).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Location not found!")
		}
		return nil, apperrors.Internal("failed to load location", err)
	}

	newCohort := models.Cohort{
		LocationID:      input.LocationID,
		Handle:          handle,
		Label:           input.Label,
		AccessStartTime: input.AccessStartTime,
		AccessEndTime:   input.AccessEndTime,
	}
	if err := db.Create(&newCohort).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("A cohort with this handle already exists at this location!")
		}
		return nil, apperrors.Internal("failed to create cohort", err)
	}
	return &newCohort, nil
}

// AllocateInput enrolls a student actor with a curriculum record into a cohort
type AllocateInput struct {
	CohortID            uint
	ActorID             uint
	StudentCurriculumID uint
	Tags                []string
}

// AllocateStudent creates a cohort allocation. The acting person must hold
// cohort.manage; the actor must be an active student actor and the
// curriculum record must belong to the same person.
func AllocateStudent(db *gorm.DB, actingPersonID uint, input AllocateInput) (*models.CohortAllocation, error) {
	if _, err := permission.RequireForCohort(db, actingPersonID, input.CohortID, "cohort.manage"); err != nil {
		return nil, err
	}

	var studentActor models.Actor
	if err := db.Where("id = ? AND type = ?", input.ActorID, models.ActorStudent).First(&studentActor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Student actor not found!")
		}
		return nil, apperrors.Internal("failed to load actor", err)
	}

	var sc models.StudentCurriculum
	if err := db.Where("id = ? AND is_deleted = false", input.StudentCurriculumID).First(&sc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Student curriculum not found!")
		}
		return nil, apperrors.Internal("failed to load student curriculum", err)
	}
	if sc.PersonID != studentActor.PersonID {
		return nil, apperrors.Validation("Curriculum does not belong to this student!", nil)
	}

	tags, err := encodeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	allocation := models.CohortAllocation{
		CohortID:            input.CohortID,
		ActorID:             input.ActorID,
		StudentCurriculumID: input.StudentCurriculumID,
		Tags:                tags,
	}
	if err := db.Create(&allocation).Error; err != nil {
		return nil, apperrors.Internal("failed to create allocation", err)
	}
	return &allocation, nil
}

// UpdateAllocationTags replaces the free-form tags on an allocation
func UpdateAllocationTags(db *gorm.DB, actingPersonID uint, allocationID uint, tagList []string) error {
	var allocation models.CohortAllocation
	if err := db.Where("id = ? AND is_deleted = false", allocationID).First(&allocation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Allocation not found!")
		}
		return apperrors.Internal("failed to load allocation", err)
	}
	if _, err := permission.RequireForCohort(db, actingPersonID, allocation.CohortID, "cohort.manage"); err != nil {
		return err
	}
	tags, err := encodeTags(tagList)
	if err != nil {
		return err
	}
	if err := db.Model(&allocation).Update("tags", tags).Error; err != nil {
		return apperrors.Internal("failed to update tags", err)
	}
	return nil
}

// AddCohortRole grants a cohort-scoped role to an actor in a cohort. The
// acting person is revalidated against the permission evaluator.
func AddCohortRole(db *gorm.DB, actingPersonID, cohortID, actorID uint, roleHandle string) (*models.CohortRole, error) {
	if _, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.manage"); err != nil {
		return nil, err
	}

	var role models.Role
	if err := db.Where("handle = ? AND type = ?", roleHandle, models.RoleTypeCohort).First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Role not found!")
		}
		return nil, apperrors.Internal("failed to load role", err)
	}

	grant := models.CohortRole{
		CohortID: cohortID,
		ActorID:  actorID,
		RoleID:   role.ID,
	}
	if err := db.Create(&grant).Error; err != nil {
		return nil, apperrors.Internal("failed to grant cohort role", err)
	}
	return &grant, nil
}

// RemoveCohortRole revokes a cohort-scoped role grant. Idempotent; also
// revalidated against the permission evaluator.
func RemoveCohortRole(db *gorm.DB, actingPersonID, cohortID, actorID uint, roleHandle string) error {
	if _, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.manage"); err != nil {
		return err
	}

	var role models.Role
	if err := db.Where("handle = ?", roleHandle).First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Role not found!")
		}
		return apperrors.Internal("failed to load role", err)
	}

	err := db.Where("cohort_id = ? AND actor_id = ? AND role_id = ?", cohortID, actorID, role.ID).
		Delete(&models.CohortRole{}).Error
	if err != nil {
		return apperrors.Internal("failed to revoke cohort role", err)
	}
	return nil
}

func encodeTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, apperrors.Internal("failed to encode tags", err)
	}
	return datatypes.JSON(encoded), nil
}
