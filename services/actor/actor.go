package actor

import (
	"time"

	"nwd/models"
	"nwd/services/apperrors"

	"gorm.io/gorm"
)

// UpsertInput identifies an actor by its (type, person, location) triple
type UpsertInput struct {
	LocationID uint
	PersonID   uint
	Type       string
}

// Upsert creates an actor, or reactivates a previously removed one. The
// unique index on (type, person_id, location_id) covers soft-deleted rows,
// so re-adding clears deleted_at and resets created_at instead of
// inserting a duplicate. Returns the actor id.
func Upsert(db *gorm.DB, input UpsertInput) (uint, error) {
	if !models.IsValidActorType(input.Type) {
		return 0, apperrors.Validation("Invalid actor type!", map[string]string{"type": "Unknown actor type: " + input.Type})
	}

	var existing models.Actor
	err := db.Unscoped().
		Where("type = ? AND person_id = ? AND location_id = ?", input.Type, input.PersonID, input.LocationID).
		First(&existing).Error
	if err == nil {
		if !existing.DeletedAt.Valid {
			// Already active: upsert is a no-op
			return existing.ID, nil
		}
		// Reactivate: clear deleted_at and treat the actor as re-added now
		updates := map[string]interface{}{
			"deleted_at": nil,
			"created_at": time.Now(),
		}
		if err := db.Unscoped().Model(&existing).Updates(updates).Error; err != nil {
			return 0, apperrors.Internal("failed to reactivate actor", err)
		}
		return existing.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, apperrors.Internal("failed to look up actor", err)
	}

	newActor := models.Actor{
		Type:       input.Type,
		PersonID:   input.PersonID,
		LocationID: input.LocationID,
	}
	if err := db.Create(&newActor).Error; err != nil {
		return 0, apperrors.Internal("failed to create actor", err)
	}
	return newActor.ID, nil
}

// Remove soft-deletes the actor identified by the triple. Removing an
// already-removed or unknown actor is a no-op.
func Remove(db *gorm.DB, input UpsertInput) error {
	err := db.Where("type = ? AND person_id = ? AND location_id = ?", input.Type, input.PersonID, input.LocationID).
		Delete(&models.Actor{}).Error
	if err != nil {
		return apperrors.Internal("failed to remove actor", err)
	}
	return nil
}

// RemoveByID soft-deletes one actor by id. Idempotent.
func RemoveByID(db *gorm.DB, actorID uint) error {
	if err := db.Delete(&models.Actor{}, actorID).Error; err != nil {
		return apperrors.Internal("failed to remove actor", err)
	}
	return nil
}

// ListActiveTypesForUser returns the distinct active actor types for the
// person behind an identity-provider account. Only locations with a
// confirmed person-location link are considered, so pending or blocked
// links leak nothing.
func ListActiveTypesForUser(db *gorm.DB, authUserID string) ([]string, error) {
	var types []string
	err := db.Model(&models.Actor{}).
		Distinct("actors.type").
		Joins("JOIN persons ON persons.id = actors.person_id AND persons.deleted_at IS NULL").
		Joins("JOIN person_location_links ON person_location_links.person_id = actors.person_id AND person_location_links.location_id = actors.location_id AND person_location_links.deleted_at IS NULL").
		Where("persons.auth_user_id = ? AND person_location_links.status = ?", authUserID, models.LinkStatusLinked).
		Pluck("actors.type", &types).Error
	if err != nil {
		return nil, apperrors.Internal("failed to list actor types", err)
	}
	return types, nil
}

// ListForLocation returns all active actors at a location, person preloaded
func ListForLocation(db *gorm.DB, locationID uint) ([]models.Actor, error) {
	var actors []models.Actor
	err := db.Where("location_id = ?", locationID).Preload("Person").Order("created_at desc").Find(&actors).Error
	if err != nil {
		return nil, apperrors.Internal("failed to list actors", err)
	}
	return actors, nil
}
