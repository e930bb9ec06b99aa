package models

import "gorm.io/gorm"

// Role type enum values
const (
	RoleTypeCohort   = "cohort"
	RoleTypeLocation = "location"
)

// Role is seeded reference data (e.g. cohort_admin). Type determines the
// scope a grant of this role applies to.
type Role struct {
	gorm.Model
	Handle      string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title       string `json:"title" gorm:"not null"`
	Type        string `json:"type" gorm:"not null;type:varchar(10)"` // cohort, location
	Description string `json:"description" gorm:"type:text"`
}

func (Role) TableName() string {
	return "roles"
}

// Privilege is an atomic permission handle (e.g. manage_cohort_certificate)
type Privilege struct {
	gorm.Model
	Handle      string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(64)"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
}

func (Privilege) TableName() string {
	return "privileges"
}

// RolePrivilege joins roles to the privileges they grant
type RolePrivilege struct {
	gorm.Model
	RoleID      uint `json:"role_id" gorm:"not null;index;uniqueIndex:uniq_role_privilege"`
	PrivilegeID uint `json:"privilege_id" gorm:"not null;index;uniqueIndex:uniq_role_privilege"`

	Role      Role      `gorm:"foreignKey:RoleID" json:"-"`
	Privilege Privilege `gorm:"foreignKey:PrivilegeID" json:"-"`
}

func (RolePrivilege) TableName() string {
	return "role_privileges"
}

// ActorRole grants a location-scoped role to an actor. Soft-deleted via
// gorm.Model.DeletedAt so revocation keeps the audit trail.
type ActorRole struct {
	gorm.Model
	ActorID uint `json:"actor_id" gorm:"not null;index"`
	RoleID  uint `json:"role_id" gorm:"not null;index"`

	Actor Actor `gorm:"foreignKey:ActorID" json:"-"`
	Role  Role  `gorm:"foreignKey:RoleID" json:"-"`
}

func (ActorRole) TableName() string {
	return "actor_roles"
}

// CohortRole grants a cohort-scoped role to an actor within one cohort
type CohortRole struct {
	gorm.Model
	CohortID uint `json:"cohort_id" gorm:"not null;index"`
	ActorID  uint `json:"actor_id" gorm:"not null;index"`
	RoleID   uint `json:"role_id" gorm:"not null;index"`

	Actor Actor `gorm:"foreignKey:ActorID" json:"-"`
	Role  Role  `gorm:"foreignKey:RoleID" json:"-"`
}

func (CohortRole) TableName() string {
	return "cohort_roles"
}
