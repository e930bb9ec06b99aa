package models

import "gorm.io/gorm"

// CompetencyProgress is an append-only record of a student's progress on one
// competency within a cohort allocation. Rows are never updated or deleted;
// for a given (allocation, competency) pair the most recently created row is
// authoritative.
type CompetencyProgress struct {
	gorm.Model
	CohortAllocationID uint `json:"cohort_allocation_id" gorm:"index;not null"`
	CompetencyID       uint `json:"competency_id" gorm:"index;not null"`
	Progress           int  `json:"progress" gorm:"not null"` // 0-100
	CreatedBy          uint `json:"created_by" gorm:"not null"`

	CohortAllocation CohortAllocation `gorm:"foreignKey:CohortAllocationID" json:"-"`
	Competency       Competency       `gorm:"foreignKey:CompetencyID" json:"-"`
}

func (CompetencyProgress) TableName() string {
	return "competency_progress"
}
