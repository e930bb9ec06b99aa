package permission

import (
	"nwd/models"
	"nwd/services/apperrors"

	"gorm.io/gorm"
)

// CheckPermission reports whether the person holds the given permission at
// the location, optionally scoped to a cohort. location_admin actors
// implicitly hold every privilege; everyone else needs an explicit grant
// through the role/privilege tables. Absence of permission is a normal
// outcome (false, nil), not an error.
func CheckPermission(db *gorm.DB, personID, locationID uint, permission string, cohortID *uint) (bool, error) {
	var actors []models.Actor
	if err := db.Where("person_id = ? AND location_id = ?", personID, locationID).Find(&actors).Error; err != nil {
		return false, apperrors.Internal("failed to load actors", err)
	}
	if len(actors) == 0 {
		return false, nil
	}

	actorIDs := make([]uint, 0, len(actors))
	for _, a := range actors {
		if a.Type == models.ActorLocationAdmin {
			return true, nil
		}
		actorIDs = append(actorIDs, a.ID)
	}

	// Privileges are matched by exact handle equality. An unknown handle is
	// simply a permission nobody holds.
	var privilege models.Privilege
	if err := db.Where("handle = ?", permission).First(&privilege).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, apperrors.Internal("failed to load privilege", err)
	}

	// Location-scoped grants via actor roles
	var locationGrants int64
	err := db.Model(&models.ActorRole{}).
		Joins("JOIN role_privileges ON role_privileges.role_id = actor_roles.role_id AND role_privileges.deleted_at IS NULL").
		Where("actor_roles.actor_id IN ? AND actor_roles.deleted_at IS NULL AND role_privileges.privilege_id = ?", actorIDs, privilege.ID).
		Count(&locationGrants).Error
	if err != nil {
		return false, apperrors.Internal("failed to check location roles", err)
	}
	if locationGrants > 0 {
		return true, nil
	}

	// Cohort-scoped grants only apply when the check names a cohort
	if cohortID == nil {
		return false, nil
	}

	var cohortGrants int64
	err = db.Model(&models.CohortRole{}).
		Joins("JOIN role_privileges ON role_privileges.role_id = cohort_roles.role_id AND role_privileges.deleted_at IS NULL").
		Where("cohort_roles.cohort_id = ? AND cohort_roles.actor_id IN ? AND cohort_roles.deleted_at IS NULL AND role_privileges.privilege_id = ?",
			*cohortID, actorIDs, privilege.ID).
		Count(&cohortGrants).Error
	if err != nil {
		return false, apperrors.Internal("failed to check cohort roles", err)
	}

	return cohortGrants > 0, nil
}

// RequireForCohort loads a cohort and demands the permission at its
// location, scoped to that cohort. Returns the cohort so callers do not
// load it twice.
func RequireForCohort(db *gorm.DB, personID, cohortID uint, permission string) (*models.Cohort, error) {
	var target models.Cohort
	if err := db.First(&target, cohortID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Cohort not found!")
		}
		return nil, apperrors.Internal("failed to load cohort", err)
	}

	allowed, err := CheckPermission(db, personID, target.LocationID, permission, &cohortID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Forbidden("You do not have permission to manage this cohort!")
	}
	return &target, nil
}

// HasActorType reports whether the person has an active actor of one of the
// given types at the location
func HasActorType(db *gorm.DB, personID, locationID uint, types ...string) (bool, error) {
	var count int64
	err := db.Model(&models.Actor{}).
		Where("person_id = ? AND location_id = ? AND type IN ?", personID, locationID, types).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal("failed to check actor types", err)
	}
	return count > 0, nil
}
