package pvb

import (
	"time"

	"gorm.io/gorm"
)

// Aanvraag status enum values. These strings are persisted; renaming one
// requires a migration.
const (
	StatusConcept            = "concept"
	StatusWachtOpVoorwaarden = "wacht_op_voorwaarden"
	StatusGepland            = "gepland"
	StatusUitgevoerd         = "uitgevoerd"
	StatusGeslaagd           = "geslaagd"
	StatusGezakt             = "gezakt"
	StatusGeannuleerd        = "geannuleerd"
)

// Aanvraag type enum values (assessment level)
const (
	TypeInstructeur1 = "instructeur_1"
	TypeInstructeur2 = "instructeur_2"
	TypeInstructeur3 = "instructeur_3"
	TypeInstructeur4 = "instructeur_4"
	TypeLeercoach3   = "leercoach_3"
	TypeLeercoach4   = "leercoach_4"
	TypeBeoordelaar4 = "beoordelaar_4"
)

// AanvraagTypes lists every valid aanvraag type
var AanvraagTypes = []string{
	TypeInstructeur1,
	TypeInstructeur2,
	TypeInstructeur3,
	TypeInstructeur4,
	TypeLeercoach3,
	TypeLeercoach4,
	TypeBeoordelaar4,
}

// IsValidType reports whether t is a known aanvraag type
func IsValidType(t string) bool {
	for _, known := range AanvraagTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Onderdeel uitslag enum values
const (
	UitslagNogNietBekend = "nog_niet_bekend"
	UitslagBehaald       = "behaald"
	UitslagNietBehaald   = "niet_behaald"
)

// PvbAanvraag is a proof-of-competence assessment request. Status is a
// cached projection of the Gebeurtenis event log; every transition writes
// both in one transaction.
type PvbAanvraag struct {
	gorm.Model
	Handle        string     `json:"handle" gorm:"uniqueIndex;not null;type:varchar(16)"`
	LocationID    uint       `json:"location_id" gorm:"index;not null"`
	KandidaatID   uint       `json:"kandidaat_id" gorm:"index;not null"` // candidate actor
	HoofdcursusID *uint      `json:"hoofdcursus_id" gorm:"index"`        // main course, required before activation
	LeercoachID   *uint      `json:"leercoach_id" gorm:"index"`          // consent-gate actor
	BeoordelaarID *uint      `json:"beoordelaar_id" gorm:"index"`        // assigned assessor actor
	Type          string     `json:"type" gorm:"not null;type:varchar(20)"`
	Status        string     `json:"status" gorm:"not null;type:varchar(25);default:'concept'"`
	Aanvangsdatum *time.Time `json:"aanvangsdatum"`
	Aanvangstijd  *string    `json:"aanvangstijd" gorm:"type:varchar(5)"` // HH:MM

	Onderdelen     []Onderdeel   `gorm:"foreignKey:AanvraagID" json:"onderdelen,omitempty"`
	Gebeurtenissen []Gebeurtenis `gorm:"foreignKey:AanvraagID" json:"gebeurtenissen,omitempty"`
}

func (PvbAanvraag) TableName() string {
	return "pvb_aanvragen"
}

// Onderdeel is a per-qualification-profile sub-part of an aanvraag
type Onderdeel struct {
	gorm.Model
	AanvraagID            uint   `json:"aanvraag_id" gorm:"index;not null"`
	KwalificatieprofielID uint   `json:"kwalificatieprofiel_id" gorm:"index;not null"`
	BeoordelaarID         *uint  `json:"beoordelaar_id" gorm:"index"`
	Uitslag               string `json:"uitslag" gorm:"not null;type:varchar(20);default:'nog_niet_bekend'"`

	Aanvraag PvbAanvraag `gorm:"foreignKey:AanvraagID" json:"-"`
}

func (Onderdeel) TableName() string {
	return "pvb_onderdelen"
}
