package models

import (
	"time"

	"gorm.io/gorm"
)

// PersonLocationLink status enum values
const (
	LinkStatusPending = "pending"
	LinkStatusLinked  = "linked"
	LinkStatusBlocked = "blocked"
)

// Person is a natural person known to the platform. AuthUserID holds the
// subject identifier of the external identity provider account, once linked.
type Person struct {
	gorm.Model
	FirstName      string     `json:"first_name" gorm:"not null"`
	LastNamePrefix string     `json:"last_name_prefix"` // tussenvoegsel
	LastName       string     `json:"last_name" gorm:"not null"`
	Email          string     `json:"email" gorm:"index"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	AuthUserID     *string    `json:"auth_user_id" gorm:"uniqueIndex"`
	IsDeleted      bool       `gorm:"default:false"`
}

func (Person) TableName() string {
	return "persons"
}

// PersonLocationLink ties a person to a location. Only rows with status
// "linked" are considered confirmed; pending and blocked links must not
// leak actor information.
type PersonLocationLink struct {
	gorm.Model
	PersonID   uint   `json:"person_id" gorm:"index;not null;uniqueIndex:uniq_person_location"`
	LocationID uint   `json:"location_id" gorm:"index;not null;uniqueIndex:uniq_person_location"`
	Status     string `json:"status" gorm:"not null;type:varchar(10);default:'pending'"`

	Person   Person   `gorm:"foreignKey:PersonID" json:"-"`
	Location Location `gorm:"foreignKey:LocationID" json:"-"`
}

func (PersonLocationLink) TableName() string {
	return "person_location_links"
}
