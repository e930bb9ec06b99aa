package pvb

import (
	"encoding/json"

	pvbModels "nwd/models/pvb"
	"nwd/services/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddOnderdeel attaches a qualification profile sub-part to an aanvraag and
// logs an onderdeel_toegevoegd event scoped to the new onderdeel
func AddOnderdeel(db *gorm.DB, aanvraagID uint, actingPersonID uint, kwalificatieprofielID uint, beoordelaarID *uint) (*pvbModels.Onderdeel, error) {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(db, aanvraag, actingPersonID); err != nil {
		return nil, err
	}
	switch aanvraag.Status {
	case pvbModels.StatusConcept, pvbModels.StatusWachtOpVoorwaarden, pvbModels.StatusGepland:
	default:
		return nil, invalidTransition(aanvraag.Status, "onderdeel_toevoegen")
	}

	onderdeel := pvbModels.Onderdeel{
		AanvraagID:            aanvraagID,
		KwalificatieprofielID: kwalificatieprofielID,
		BeoordelaarID:         beoordelaarID,
		Uitslag:               pvbModels.UitslagNogNietBekend,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&onderdeel).Error; err != nil {
			return apperrors.Internal("failed to create onderdeel", err)
		}
		event := pvbModels.Gebeurtenis{
			AanvraagID:      aanvraagID,
			PvbOnderdeelID:  &onderdeel.ID,
			GebeurtenisType: pvbModels.GebeurtenisOnderdeelToegevoegd,
			ActorID:         actingPersonID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return apperrors.Internal("failed to record event", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &onderdeel, nil
}

// UpdateOnderdeelBeoordelaar reassigns the assessor of one onderdeel
func UpdateOnderdeelBeoordelaar(db *gorm.DB, onderdeelID uint, actingPersonID uint, beoordelaarID uint) error {
	onderdeel, aanvraag, err := loadOnderdeel(db, onderdeelID)
	if err != nil {
		return err
	}
	if err := requireManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"previous_beoordelaar_id": onderdeel.BeoordelaarID,
		"beoordelaar_id":          beoordelaarID,
	})
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(onderdeel).Update("beoordelaar_id", beoordelaarID).Error; err != nil {
			return apperrors.Internal("failed to update onderdeel", err)
		}
		event := pvbModels.Gebeurtenis{
			AanvraagID:      onderdeel.AanvraagID,
			PvbOnderdeelID:  &onderdeel.ID,
			GebeurtenisType: pvbModels.GebeurtenisOnderdeelBeoordelaarGewijzigd,
			ActorID:         actingPersonID,
			Data:            datatypes.JSON(payload),
		}
		if err := tx.Create(&event).Error; err != nil {
			return apperrors.Internal("failed to record event", err)
		}
		return nil
	})
}

// UpdateOnderdeelUitslag records a (revised) per-onderdeel result. Only
// meaningful once the assessment is being or has been carried out.
func UpdateOnderdeelUitslag(db *gorm.DB, onderdeelID uint, actingPersonID uint, uitslag string) error {
	switch uitslag {
	case pvbModels.UitslagBehaald, pvbModels.UitslagNietBehaald, pvbModels.UitslagNogNietBekend:
	default:
		return apperrors.Validation("Invalid uitslag!", map[string]string{"uitslag": "Unknown uitslag: " + uitslag})
	}

	onderdeel, aanvraag, err := loadOnderdeel(db, onderdeelID)
	if err != nil {
		return err
	}
	if err := requireBeoordelaarOrManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	switch aanvraag.Status {
	case pvbModels.StatusUitgevoerd, pvbModels.StatusGeslaagd, pvbModels.StatusGezakt:
	default:
		return invalidTransition(aanvraag.Status, "onderdeel_uitslag_wijzigen")
	}

	payload, _ := json.Marshal(map[string]string{
		"previous_uitslag": onderdeel.Uitslag,
		"uitslag":          uitslag,
	})
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(onderdeel).Update("uitslag", uitslag).Error; err != nil {
			return apperrors.Internal("failed to update onderdeel", err)
		}
		event := pvbModels.Gebeurtenis{
			AanvraagID:      onderdeel.AanvraagID,
			PvbOnderdeelID:  &onderdeel.ID,
			GebeurtenisType: pvbModels.GebeurtenisOnderdeelUitslagGewijzigd,
			ActorID:         actingPersonID,
			Data:            datatypes.JSON(payload),
		}
		if err := tx.Create(&event).Error; err != nil {
			return apperrors.Internal("failed to record event", err)
		}
		return nil
	})
}

func loadOnderdeel(db *gorm.DB, onderdeelID uint) (*pvbModels.Onderdeel, *pvbModels.PvbAanvraag, error) {
	var onderdeel pvbModels.Onderdeel
	if err := db.First(&onderdeel, onderdeelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperrors.NotFound("Onderdeel not found!")
		}
		return nil, nil, apperrors.Internal("failed to load onderdeel", err)
	}
	aanvraag, err := load(db, onderdeel.AanvraagID)
	if err != nil {
		return nil, nil, err
	}
	return &onderdeel, aanvraag, nil
}
