package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is an issued (or draft) diploma for a student curriculum.
// IssuedAt nil means draft: competencies can still be linked. Once IssuedAt
// is set the row is immutable except for visibility updates and withdrawal.
type Certificate struct {
	gorm.Model
	Handle              string     `json:"handle" gorm:"uniqueIndex;not null;type:varchar(10)"`
	StudentCurriculumID uint       `json:"student_curriculum_id" gorm:"index;not null"`
	CohortAllocationID  uint       `json:"cohort_allocation_id" gorm:"index;not null"`
	LocationID          uint       `json:"location_id" gorm:"index;not null"`
	IssuedAt            *time.Time `json:"issued_at"`
	VisibleFrom         *time.Time `json:"visible_from"`
	WithdrawnAt         *time.Time `json:"withdrawn_at"`
	NotifiedAt          *time.Time `json:"notified_at"` // set once the issuance email went out

	StudentCurriculum StudentCurriculum `gorm:"foreignKey:StudentCurriculumID" json:"student_curriculum,omitempty"`
	Location          Location          `gorm:"foreignKey:LocationID" json:"-"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateCompetency snapshots a completed competency onto a certificate
// at issuance time
type CertificateCompetency struct {
	gorm.Model
	CertificateID uint `json:"certificate_id" gorm:"index;not null;uniqueIndex:uniq_certificate_competency"`
	CompetencyID  uint `json:"competency_id" gorm:"index;not null;uniqueIndex:uniq_certificate_competency"`
	ModuleID      uint `json:"module_id" gorm:"index;not null"`
	Progress      int  `json:"progress" gorm:"not null"`

	Certificate Certificate `gorm:"foreignKey:CertificateID" json:"-"`
	Competency  Competency  `gorm:"foreignKey:CompetencyID" json:"-"`
}

func (CertificateCompetency) TableName() string {
	return "certificate_competencies"
}
