package models

import "gorm.io/gorm"

// Location is a school location (vaarlocatie) affiliated with the certification body
type Location struct {
	gorm.Model
	Handle      string `json:"handle" gorm:"uniqueIndex;not null;type:varchar(48)"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	IsDeleted   bool   `gorm:"default:false"`
}

func (Location) TableName() string {
	return "locations"
}
