package models

import "gorm.io/gorm"

// Course is a program of study within a discipline, at a degree level
type Course struct {
	gorm.Model
	Handle       string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	DisciplineID uint   `json:"discipline_id" gorm:"index;not null"`
	DegreeID     uint   `json:"degree_id" gorm:"index;not null"`
	CategoryID   *uint  `json:"category_id" gorm:"index"`
	IsDeleted    bool   `gorm:"default:false"`

	Discipline Discipline `gorm:"foreignKey:DisciplineID" json:"discipline,omitempty"`
	Degree     Degree     `gorm:"foreignKey:DegreeID" json:"degree,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Module is a teachable unit referenced by curricula
type Module struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title     string `json:"title" gorm:"not null"`
	Weight    int    `json:"weight" gorm:"default:0"`
	IsDeleted bool   `gorm:"default:false"`
}

func (Module) TableName() string {
	return "modules"
}

// Competency is a single skill tracked per student
type Competency struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title     string `json:"title" gorm:"not null"`
	Type      string `json:"type" gorm:"type:varchar(20);default:'skill'"` // skill, knowledge
	Weight    int    `json:"weight" gorm:"default:0"`
	IsDeleted bool   `gorm:"default:false"`
}

func (Competency) TableName() string {
	return "competencies"
}
