package models

import (
	"time"

	"gorm.io/gorm"
)

// Curriculum is a versioned revision of a course's program of study
type Curriculum struct {
	gorm.Model
	CourseID  uint       `json:"course_id" gorm:"index;not null;uniqueIndex:uniq_course_revision"`
	Revision  string     `json:"revision" gorm:"not null;type:varchar(20);uniqueIndex:uniq_course_revision"`
	StartedAt *time.Time `json:"started_at"` // revision in effect from this date
	IsDeleted bool       `gorm:"default:false"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Curriculum) TableName() string {
	return "curricula"
}

// CurriculumModule links a module into a curriculum revision
type CurriculumModule struct {
	gorm.Model
	CurriculumID uint `json:"curriculum_id" gorm:"index;not null;uniqueIndex:uniq_curriculum_module"`
	ModuleID     uint `json:"module_id" gorm:"index;not null;uniqueIndex:uniq_curriculum_module"`

	Module Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

func (CurriculumModule) TableName() string {
	return "curriculum_modules"
}

// CurriculumCompetency places a competency in a module of a curriculum
// revision. IsRequired competencies drive certificate eligibility.
type CurriculumCompetency struct {
	gorm.Model
	CurriculumID uint `json:"curriculum_id" gorm:"index;not null"`
	ModuleID     uint `json:"module_id" gorm:"index;not null"`
	CompetencyID uint `json:"competency_id" gorm:"index;not null"`
	IsRequired   bool `json:"is_required" gorm:"default:true"`

	Competency Competency `gorm:"foreignKey:CompetencyID" json:"competency,omitempty"`
}

func (CurriculumCompetency) TableName() string {
	return "curriculum_competencies"
}

// StudentCurriculum links a person to a curriculum revision and gear type.
// Created once per student-curriculum combination, immutable afterwards.
type StudentCurriculum struct {
	gorm.Model
	PersonID     uint      `json:"person_id" gorm:"index;not null;uniqueIndex:uniq_student_curriculum"`
	CurriculumID uint      `json:"curriculum_id" gorm:"index;not null;uniqueIndex:uniq_student_curriculum"`
	GearTypeID   uint      `json:"gear_type_id" gorm:"index;not null;uniqueIndex:uniq_student_curriculum"`
	StartedAt    time.Time `json:"started_at" gorm:"not null"`
	IsDeleted    bool      `gorm:"default:false"`

	Person     Person     `gorm:"foreignKey:PersonID" json:"-"`
	Curriculum Curriculum `gorm:"foreignKey:CurriculumID" json:"curriculum,omitempty"`
	GearType   GearType   `gorm:"foreignKey:GearTypeID" json:"gear_type,omitempty"`
}

func (StudentCurriculum) TableName() string {
	return "student_curricula"
}
