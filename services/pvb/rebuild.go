package pvb

import (
	"encoding/json"

	pvbModels "nwd/models/pvb"
	"nwd/services/apperrors"

	"gorm.io/gorm"
)

// RebuildStatus replays the event log of an aanvraag into a status. The
// event log is the source of truth; the status column is a cached
// projection, and this replay exists to verify or repair it.
func RebuildStatus(db *gorm.DB, aanvraagID uint) (string, error) {
	if _, err := load(db, aanvraagID); err != nil {
		return "", err
	}

	var events []pvbModels.Gebeurtenis
	err := db.Where("aanvraag_id = ?", aanvraagID).
		Order("created_at asc, id asc").
		Find(&events).Error
	if err != nil {
		return "", apperrors.Internal("failed to load events", err)
	}

	status := pvbModels.StatusConcept
	for _, event := range events {
		switch event.GebeurtenisType {
		case pvbModels.GebeurtenisAanvraagIngediend:
			status = pvbModels.StatusWachtOpVoorwaarden
		case pvbModels.GebeurtenisVoorwaardenVoltooid:
			status = pvbModels.StatusGepland
		case pvbModels.GebeurtenisBeoordelingGestart:
			status = pvbModels.StatusUitgevoerd
		case pvbModels.GebeurtenisBeoordelingAfgerond:
			status = outcomeFromPayload(event.Data)
		case pvbModels.GebeurtenisAanvraagIngetrokken:
			status = pvbModels.StatusGeannuleerd
		}
	}
	return status, nil
}

// ReconcileStatus rewrites the cached status column from the event log and
// returns the rebuilt status. Intended for recovery, not the API surface.
func ReconcileStatus(db *gorm.DB, aanvraagID uint) (string, error) {
	status, err := RebuildStatus(db, aanvraagID)
	if err != nil {
		return "", err
	}
	err = db.Model(&pvbModels.PvbAanvraag{}).
		Where("id = ?", aanvraagID).
		Update("status", status).Error
	if err != nil {
		return "", apperrors.Internal("failed to update status", err)
	}
	return status, nil
}

func outcomeFromPayload(data []byte) string {
	var payload struct {
		Uitslag string `json:"uitslag"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Uitslag == pvbModels.StatusGeslaagd || payload.Uitslag == pvbModels.StatusGezakt {
			return payload.Uitslag
		}
	}
	return pvbModels.StatusGezakt
}
