package models

import "gorm.io/gorm"

// Discipline is a watersport discipline (e.g. zeilen, windsurfen)
type Discipline struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title     string `json:"title" gorm:"not null"`
	Weight    int    `json:"weight" gorm:"default:0"` // sort order
	IsDeleted bool   `gorm:"default:false"`
}

func (Discipline) TableName() string {
	return "disciplines"
}

// Degree is a level within a discipline (diploma niveau 1..4)
type Degree struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title     string `json:"title" gorm:"not null"`
	Rang      int    `json:"rang" gorm:"not null;default:1"`
	IsDeleted bool   `gorm:"default:false"`
}

func (Degree) TableName() string {
	return "degrees"
}

// Category groups courses for presentation (e.g. jeugd, volwassenen)
type Category struct {
	gorm.Model
	Handle      string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ParentID    *uint  `json:"parent_id" gorm:"index"`
	IsDeleted   bool   `gorm:"default:false"`
}

func (Category) TableName() string {
	return "categories"
}

// GearType is the boat/board type a student trains on
type GearType struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Title     string `json:"title" gorm:"not null"`
	IsDeleted bool   `gorm:"default:false"`
}

func (GearType) TableName() string {
	return "gear_types"
}

// Kwalificatieprofiel is a qualification profile assessed in a PvB onderdeel
type Kwalificatieprofiel struct {
	gorm.Model
	Handle    string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Titel     string `json:"titel" gorm:"not null"`
	Richting  string `json:"richting"` // instructeur, leercoach, pvb_beoordelaar
	Niveau    int    `json:"niveau" gorm:"default:0"`
	IsDeleted bool   `gorm:"default:false"`
}

func (Kwalificatieprofiel) TableName() string {
	return "kwalificatieprofielen"
}
