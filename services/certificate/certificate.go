package certificate

import (
	"errors"
	"fmt"
	"time"

	"nwd/config"
	"nwd/models"
	"nwd/services/apperrors"
	"nwd/services/permission"
	"nwd/services/progress"
	"nwd/utils"

	"gorm.io/gorm"
)

// IssueResult reports the outcome for one allocation in a bulk issue call.
// Ineligible allocations are skipped and reported, never silently included.
type IssueResult struct {
	CohortAllocationID uint                `json:"cohort_allocation_id"`
	Issued             bool                `json:"issued"`
	Reason             string              `json:"reason,omitempty"`
	Certificate        *models.Certificate `json:"certificate,omitempty"`
}

// IssueInCohort issues certificates for the given allocations of a cohort.
// The acting person must hold cohort.certificate.manage. Eligibility is
// re-derived per allocation: every required competency of the allocation's
// curriculum must be at progress 100. Each certificate's creation plus its
// competency snapshot rows is atomic, but one ineligible or failing
// allocation never blocks the others.
func IssueInCohort(db *gorm.DB, actingPersonID, cohortID uint, allocationIDs []uint, visibleFrom *time.Time) ([]IssueResult, error) {
	target, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.certificate.manage")
	if err != nil {
		return nil, err
	}

	if visibleFrom == nil {
		visibleFrom = target.DefaultCertificateVisibleFrom
	}

	results := make([]IssueResult, 0, len(allocationIDs))
	for _, allocationID := range allocationIDs {
		result := issueOne(db, target, allocationID, visibleFrom)
		results = append(results, result)
	}
	return results, nil
}

func issueOne(db *gorm.DB, target *models.Cohort, allocationID uint, visibleFrom *time.Time) IssueResult {
	result := IssueResult{CohortAllocationID: allocationID}

	var allocation models.CohortAllocation
	err := db.Where("id = ? AND cohort_id = ? AND is_deleted = false", allocationID, target.ID).
		Preload("StudentCurriculum").
		First(&allocation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			result.Reason = "Allocation not found in this cohort!"
		} else {
			result.Reason = "Failed to load allocation!"
		}
		return result
	}

	// A certificate already issued for this allocation must not be duplicated
	var existing int64
	err = db.Model(&models.Certificate{}).
		Where("cohort_allocation_id = ? AND withdrawn_at IS NULL", allocationID).
		Count(&existing).Error
	if err != nil {
		result.Reason = "Failed to check existing certificates!"
		return result
	}
	if existing > 0 {
		result.Reason = "Certificate already issued for this allocation!"
		return result
	}

	var required []models.CurriculumCompetency
	err = db.Where("curriculum_id = ? AND is_required = true", allocation.StudentCurriculum.CurriculumID).
		Find(&required).Error
	if err != nil {
		result.Reason = "Failed to load required competencies!"
		return result
	}
	if len(required) == 0 {
		result.Reason = "Curriculum has no required competencies!"
		return result
	}

	latest, err := progress.Latest(db, allocationID)
	if err != nil {
		result.Reason = "Failed to load competency progress!"
		return result
	}
	for _, cc := range required {
		if latest[cc.CompetencyID] != 100 {
			result.Reason = fmt.Sprintf("Required competency %d is not completed!", cc.CompetencyID)
			return result
		}
	}

	cert, err := createIssued(db, target, &allocation, required, visibleFrom)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	result.Issued = true
	result.Certificate = cert
	return result
}

// createIssued writes the certificate and its competency snapshot rows in
// one transaction. Handle uniqueness is enforced by the database; on a
// duplicate-key error the whole transaction is retried with a fresh handle.
func createIssued(db *gorm.DB, target *models.Cohort, allocation *models.CohortAllocation, required []models.CurriculumCompetency, visibleFrom *time.Time) (*models.Certificate, error) {
	limit := 5
	if config.AppConfig != nil && config.AppConfig.HandleRetryLimit > 0 {
		limit = config.AppConfig.HandleRetryLimit
	}

	for attempt := 0; attempt < limit; attempt++ {
		now := time.Now()
		cert := models.Certificate{
			Handle:              utils.GenerateCertificateHandle(),
			StudentCurriculumID: allocation.StudentCurriculumID,
			CohortAllocationID:  allocation.ID,
			LocationID:          target.LocationID,
			IssuedAt:            &now,
			VisibleFrom:         visibleFrom,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&cert).Error; err != nil {
				return err
			}
			for _, cc := range required {
				link := models.CertificateCompetency{
					CertificateID: cert.ID,
					CompetencyID:  cc.CompetencyID,
					ModuleID:      cc.ModuleID,
					Progress:      100,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return &cert, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Handle collision: regenerate and try again
			continue
		}
		return nil, apperrors.Internal("failed to issue certificate", err)
	}
	return nil, apperrors.Conflict("Could not generate a unique certificate handle!")
}

// WithdrawInCohort marks certificates withdrawn. The acting person must
// hold cohort.certificate.manage. The call refuses entirely when any id
// does not belong to the cohort or is already withdrawn; there is no
// silent partial match.
func WithdrawInCohort(db *gorm.DB, actingPersonID, cohortID uint, certificateIDs []uint) error {
	if _, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.certificate.manage"); err != nil {
		return err
	}
	if len(certificateIDs) == 0 {
		return apperrors.Validation("No certificate ids given!", nil)
	}

	var certs []models.Certificate
	err := db.Joins("JOIN cohort_allocations ON cohort_allocations.id = certificates.cohort_allocation_id").
		Where("certificates.id IN ? AND cohort_allocations.cohort_id = ?", certificateIDs, cohortID).
		Find(&certs).Error
	if err != nil {
		return apperrors.Internal("failed to load certificates", err)
	}
	if len(certs) != len(certificateIDs) {
		return apperrors.NotFound("One or more certificates do not belong to this cohort!")
	}
	for _, cert := range certs {
		if cert.WithdrawnAt != nil {
			return apperrors.Conflict(fmt.Sprintf("Certificate %s is already withdrawn!", cert.Handle))
		}
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Certificate{}).
			Where("id IN ?", certificateIDs).
			Update("withdrawn_at", now).Error
		if err != nil {
			return apperrors.Internal("failed to withdraw certificates", err)
		}
		return nil
	})
}

// UpdateDefaultVisibleFrom batch-updates the cohort's default certificate
// visibility date and applies it to certificates not yet issued. The
// acting person must hold cohort.certificate.manage.
func UpdateDefaultVisibleFrom(db *gorm.DB, actingPersonID, cohortID uint, visibleFrom time.Time) error {
	target, err := permission.RequireForCohort(db, actingPersonID, cohortID, "cohort.certificate.manage")
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Update("default_certificate_visible_from", visibleFrom).Error; err != nil {
			return apperrors.Internal("failed to update cohort", err)
		}
		err := tx.Model(&models.Certificate{}).
			Where("cohort_allocation_id IN (?)",
				tx.Model(&models.CohortAllocation{}).Select("id").Where("cohort_id = ?", cohortID)).
			Where("issued_at IS NULL").
			Update("visible_from", visibleFrom).Error
		if err != nil {
			return apperrors.Internal("failed to update certificates", err)
		}
		return nil
	})
}
