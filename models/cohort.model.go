package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cohort is a time-boxed instructional group at a location
type Cohort struct {
	gorm.Model
	LocationID      uint      `json:"location_id" gorm:"index;not null;uniqueIndex:uniq_location_cohort_handle"`
	Handle          string    `json:"handle" gorm:"not null;type:varchar(48);uniqueIndex:uniq_location_cohort_handle"`
	Label           string    `json:"label" gorm:"not null"`
	AccessStartTime time.Time `json:"access_start_time" gorm:"not null"`
	AccessEndTime   time.Time `json:"access_end_time" gorm:"not null"`

	// Default visibility date applied to certificates issued in this cohort
	// when the issue call does not pass one explicitly.
	DefaultCertificateVisibleFrom *time.Time `json:"default_certificate_visible_from"`

	Location Location `gorm:"foreignKey:LocationID" json:"-"`
}

func (Cohort) TableName() string {
	return "cohorts"
}

// CohortAllocation enrolls a student actor with their curriculum record into
// a cohort. Never hard-deleted; only tags and visibility are mutated after
// creation.
type CohortAllocation struct {
	gorm.Model
	CohortID            uint           `json:"cohort_id" gorm:"index;not null"`
	ActorID             uint           `json:"actor_id" gorm:"index;not null"`
	StudentCurriculumID uint           `json:"student_curriculum_id" gorm:"index;not null"`
	Tags                datatypes.JSON `json:"tags"`
	ProgressVisible     bool           `json:"progress_visible" gorm:"default:false"`
	IsDeleted           bool           `gorm:"default:false"`

	Cohort            Cohort            `gorm:"foreignKey:CohortID" json:"-"`
	Actor             Actor             `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	StudentCurriculum StudentCurriculum `gorm:"foreignKey:StudentCurriculumID" json:"student_curriculum,omitempty"`
}

func (CohortAllocation) TableName() string {
	return "cohort_allocations"
}
