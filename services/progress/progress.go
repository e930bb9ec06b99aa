package progress

import (
	"fmt"

	"nwd/models"
	"nwd/services/apperrors"
	"nwd/services/permission"

	"gorm.io/gorm"
)

// Entry is one competency progress value in an update call
type Entry struct {
	CompetencyID uint `json:"competency_id"`
	Progress     int  `json:"progress"`
}

// Update appends one progress row per entry on behalf of createdBy, who
// must hold cohort.manage for the allocation's cohort. Progress is
// insert-only: a later call may record a lower value than an earlier one,
// and reads resolve by most-recent-row, not highest value.
func Update(db *gorm.DB, cohortAllocationID uint, createdBy uint, entries []Entry) error {
	fields := make(map[string]string)
	for i, e := range entries {
		if e.Progress < 0 || e.Progress > 100 {
			fields[fmt.Sprintf("competency_progress[%d].progress", i)] = "Progress must be between 0 and 100!"
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation("Invalid progress values!", fields)
	}

	var allocation models.CohortAllocation
	if err := db.Where("id = ? AND is_deleted = false", cohortAllocationID).First(&allocation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Allocation not found!")
		}
		return apperrors.Internal("failed to load allocation", err)
	}
	if _, err := permission.RequireForCohort(db, createdBy, allocation.CohortID, "cohort.manage"); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			row := models.CompetencyProgress{
				CohortAllocationID: cohortAllocationID,
				CompetencyID:       e.CompetencyID,
				Progress:           e.Progress,
				CreatedBy:          createdBy,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperrors.Internal("failed to record progress", err)
			}
		}
		return nil
	})
}

// CompleteAllCoreCompetencies records progress 100 for every required
// competency of the allocation's curriculum, in one transaction. A
// curriculum with zero required competencies makes this a no-op, not an
// error.
func CompleteAllCoreCompetencies(db *gorm.DB, cohortAllocationID uint, createdBy uint) error {
	var allocation models.CohortAllocation
	err := db.Where("id = ? AND is_deleted = false", cohortAllocationID).
		Preload("StudentCurriculum").
		First(&allocation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Allocation not found!")
		}
		return apperrors.Internal("failed to load allocation", err)
	}
	if _, err := permission.RequireForCohort(db, createdBy, allocation.CohortID, "cohort.manage"); err != nil {
		return err
	}

	var required []models.CurriculumCompetency
	err = db.Where("curriculum_id = ? AND is_required = true", allocation.StudentCurriculum.CurriculumID).
		Find(&required).Error
	if err != nil {
		return apperrors.Internal("failed to load required competencies", err)
	}
	if len(required) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, cc := range required {
			row := models.CompetencyProgress{
				CohortAllocationID: cohortAllocationID,
				CompetencyID:       cc.CompetencyID,
				Progress:           100,
				CreatedBy:          createdBy,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperrors.Internal("failed to record progress", err)
			}
		}
		return nil
	})
}

// MakeVisible flips the progress visibility flag on an allocation.
// Visibility and completion are orthogonal.
func MakeVisible(db *gorm.DB, actingPersonID, cohortID, allocationID uint) error {
	if _, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.manage"); err != nil {
		return err
	}
	var allocation models.CohortAllocation
	err := db.Where("id = ? AND cohort_id = ? AND is_deleted = false", allocationID, cohortID).First(&allocation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Allocation not found in this cohort!")
		}
		return apperrors.Internal("failed to load allocation", err)
	}
	if err := db.Model(&allocation).Update("progress_visible", true).Error; err != nil {
		return apperrors.Internal("failed to update visibility", err)
	}
	return nil
}

// Latest resolves the authoritative progress per competency for an
// allocation: the most recently created row wins, ordered by creation time
// with insertion sequence breaking ties.
func Latest(db *gorm.DB, cohortAllocationID uint) (map[uint]int, error) {
	var rows []models.CompetencyProgress
	err := db.Where("cohort_allocation_id = ?", cohortAllocationID).
		Order("created_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("failed to load progress", err)
	}

	latest := make(map[uint]int)
	for _, row := range rows {
		if _, seen := latest[row.CompetencyID]; !seen {
			latest[row.CompetencyID] = row.Progress
		}
	}
	return latest, nil
}
