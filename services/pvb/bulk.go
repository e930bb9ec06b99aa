package pvb

import (
	"time"

	"gorm.io/gorm"
)

// BulkResult reports the outcome for one aanvraag in a bulk call. A
// failure on one id never blocks the others.
type BulkResult struct {
	AanvraagID uint   `json:"aanvraag_id"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BulkKickOff submits every aanvraag in the list
func BulkKickOff(db *gorm.DB, aanvraagIDs []uint, actingPersonID uint) []BulkResult {
	return forEach(aanvraagIDs, func(id uint) error {
		return Submit(db, id, actingPersonID)
	})
}

// BulkCancel withdraws every aanvraag in the list
func BulkCancel(db *gorm.DB, aanvraagIDs []uint, actingPersonID uint, reden string) []BulkResult {
	return forEach(aanvraagIDs, func(id uint) error {
		return Cancel(db, id, actingPersonID, reden)
	})
}

// BulkUpdateDatetime reschedules every aanvraag in the list
func BulkUpdateDatetime(db *gorm.DB, aanvraagIDs []uint, actingPersonID uint, datum time.Time, tijd string) []BulkResult {
	return forEach(aanvraagIDs, func(id uint) error {
		return UpdateDatetime(db, id, actingPersonID, datum, tijd)
	})
}

// BulkUpdateLeercoach reassigns the leercoach on every aanvraag in the list
func BulkUpdateLeercoach(db *gorm.DB, aanvraagIDs []uint, actingPersonID uint, leercoachActorID uint) []BulkResult {
	return forEach(aanvraagIDs, func(id uint) error {
		return UpdateLeercoach(db, id, actingPersonID, leercoachActorID)
	})
}

func forEach(aanvraagIDs []uint, op func(id uint) error) []BulkResult {
	results := make([]BulkResult, 0, len(aanvraagIDs))
	for _, id := range aanvraagIDs {
		result := BulkResult{AanvraagID: id}
		if err := op(id); err != nil {
			result.Error = err.Error()
		} else {
			result.OK = true
		}
		results = append(results, result)
	}
	return results
}
