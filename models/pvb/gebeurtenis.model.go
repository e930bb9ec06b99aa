package pvb

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gebeurtenis type enum values. The event log is the source of truth for
// what happened and when; the aanvraag status column is derived from it.
const (
	GebeurtenisAanvraagIngediend             = "aanvraag_ingediend"
	GebeurtenisLeercoachToestemmingGevraagd  = "leercoach_toestemming_gevraagd"
	GebeurtenisLeercoachToestemmingGegeven   = "leercoach_toestemming_gegeven"
	GebeurtenisLeercoachToestemmingGeweigerd = "leercoach_toestemming_geweigerd"
	GebeurtenisVoorwaardenVoltooid           = "voorwaarden_voltooid"
	GebeurtenisBeoordelingGestart            = "beoordeling_gestart"
	GebeurtenisBeoordelingAfgerond           = "beoordeling_afgerond"
	GebeurtenisAanvraagIngetrokken           = "aanvraag_ingetrokken"
	GebeurtenisOnderdeelToegevoegd           = "onderdeel_toegevoegd"
	GebeurtenisOnderdeelBeoordelaarGewijzigd = "onderdeel_beoordelaar_gewijzigd"
	GebeurtenisOnderdeelUitslagGewijzigd     = "onderdeel_uitslag_gewijzigd"
)

// Gebeurtenis is the append-only audit log for PvB aanvragen. Rows are
// never updated or deleted.
type Gebeurtenis struct {
	gorm.Model
	AanvraagID      uint           `json:"aanvraag_id" gorm:"index;not null"`
	PvbOnderdeelID  *uint          `json:"pvb_onderdeel_id" gorm:"index"` // scopes the event to a sub-part
	GebeurtenisType string         `json:"gebeurtenis_type" gorm:"not null;type:varchar(40)"`
	ActorID         uint           `json:"actor_id" gorm:"not null"` // person performing the transition
	Reden           string         `json:"reden" gorm:"type:text"`
	Opmerkingen     string         `json:"opmerkingen" gorm:"type:text"`
	Data            datatypes.JSON `json:"data"`

	Aanvraag PvbAanvraag `gorm:"foreignKey:AanvraagID" json:"-"`
}

func (Gebeurtenis) TableName() string {
	return "pvb_gebeurtenissen"
}
