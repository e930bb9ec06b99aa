package models

import "gorm.io/gorm"

// Actor type enum values
const (
	ActorStudent        = "student"
	ActorInstructor     = "instructor"
	ActorLocationAdmin  = "location_admin"
	ActorPvbBeoordelaar = "pvb_beoordelaar"
	ActorSecretariaat   = "secretariaat"
)

// ActorTypes lists every valid actor type
var ActorTypes = []string{
	ActorStudent,
	ActorInstructor,
	ActorLocationAdmin,
	ActorPvbBeoordelaar,
	ActorSecretariaat,
}

// IsValidActorType reports whether t is a known actor type
func IsValidActorType(t string) bool {
	for _, known := range ActorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Actor is a role-typed presence of a person at a location. Rows are never
// hard-deleted: removal sets DeletedAt, and re-adding the same
// (type, person, location) triple reactivates the existing row.
type Actor struct {
	gorm.Model
	Type       string `json:"type" gorm:"not null;type:varchar(20);uniqueIndex:uniq_actor_identity"`
	PersonID   uint   `json:"person_id" gorm:"not null;index;uniqueIndex:uniq_actor_identity"`
	LocationID uint   `json:"location_id" gorm:"not null;index;uniqueIndex:uniq_actor_identity"`

	Person   Person   `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Location Location `gorm:"foreignKey:LocationID" json:"-"`
}

func (Actor) TableName() string {
	return "actors"
}
