package pvb

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nwd/models"
	pvbModels "nwd/models/pvb"
	"nwd/services/apperrors"
	"nwd/services/permission"
	"nwd/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// allowedNext defines the legal status transitions. geannuleerd is reachable
// from every non-terminal state except uitgevoerd: a completed assessment
// cannot be cancelled after the fact.
var allowedNext = map[string][]string{
	pvbModels.StatusConcept:            {pvbModels.StatusWachtOpVoorwaarden, pvbModels.StatusGeannuleerd},
	pvbModels.StatusWachtOpVoorwaarden: {pvbModels.StatusGepland, pvbModels.StatusGeannuleerd},
	pvbModels.StatusGepland:            {pvbModels.StatusUitgevoerd, pvbModels.StatusGeannuleerd},
	pvbModels.StatusUitgevoerd:         {pvbModels.StatusGeslaagd, pvbModels.StatusGezakt},
}

// CanTransition reports whether the status machine allows going from one
// status to another
func CanTransition(from, to string) bool {
	for _, next := range allowedNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateInput carries the fields for a new aanvraag
type CreateInput struct {
	LocationID             uint
	KandidaatID            uint // candidate actor id
	HoofdcursusID          *uint
	LeercoachID            *uint
	BeoordelaarID          *uint
	Type                   string
	KwalificatieprofielIDs []uint
}

// Create creates an aanvraag in concept status with one onderdeel per
// qualification profile. Creation itself is not a transition; the first
// event is written on submit.
func Create(db *gorm.DB, input CreateInput) (*pvbModels.PvbAanvraag, error) {
	if !pvbModels.IsValidType(input.Type) {
		return nil, apperrors.Validation("Invalid aanvraag type!", map[string]string{"type": "Unknown aanvraag type: " + input.Type})
	}

	var kandidaat models.Actor
	if err := db.First(&kandidaat, input.KandidaatID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Kandidaat actor not found!")
		}
		return nil, apperrors.Internal("failed to load kandidaat", err)
	}

	aanvraag := pvbModels.PvbAanvraag{
		LocationID:    input.LocationID,
		KandidaatID:   input.KandidaatID,
		HoofdcursusID: input.HoofdcursusID,
		LeercoachID:   input.LeercoachID,
		BeoordelaarID: input.BeoordelaarID,
		Type:          input.Type,
		Status:        pvbModels.StatusConcept,
	}

	created := false
	for attempt := 0; attempt < 5 && !created; attempt++ {
		aanvraag.Handle = utils.GeneratePvbHandle()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&aanvraag).Error; err != nil {
				return err
			}
			for _, kpID := range input.KwalificatieprofielIDs {
				onderdeel := pvbModels.Onderdeel{
					AanvraagID:            aanvraag.ID,
					KwalificatieprofielID: kpID,
					BeoordelaarID:         input.BeoordelaarID,
					Uitslag:               pvbModels.UitslagNogNietBekend,
				}
				if err := tx.Create(&onderdeel).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			created = true
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Handle collision: regenerate and try again
			aanvraag.ID = 0
			continue
		}
		return nil, apperrors.Internal("failed to create aanvraag", err)
	}
	if !created {
		return nil, apperrors.Conflict("Could not generate a unique aanvraag handle!")
	}
	return &aanvraag, nil
}

// Submit activates an aanvraag: concept -> wacht_op_voorwaarden, event
// aanvraag_ingediend. Activation is a secretariaat call, not a kandidaat
// one. An aanvraag without a hoofdcursus is permanently invalid and is
// rejected before any state change. When the scheduling preconditions are
// already satisfied the aanvraag moves straight through to gepland.
func Submit(db *gorm.DB, aanvraagID uint, actingPersonID uint) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	if aanvraag.HoofdcursusID == nil {
		return apperrors.InvalidState("Aanvraag is missing a main curriculum (hoofdcursus)!")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, aanvraag, pvbModels.StatusWachtOpVoorwaarden, &pvbModels.Gebeurtenis{
			AanvraagID:      aanvraag.ID,
			GebeurtenisType: pvbModels.GebeurtenisAanvraagIngediend,
			ActorID:         actingPersonID,
		}); err != nil {
			return err
		}
		// A set leercoach is asked for consent as part of submission
		if aanvraag.LeercoachID != nil {
			event := pvbModels.Gebeurtenis{
				AanvraagID:      aanvraag.ID,
				GebeurtenisType: pvbModels.GebeurtenisLeercoachToestemmingGevraagd,
				ActorID:         actingPersonID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return apperrors.Internal("failed to record event", err)
			}
		}
		return evaluateVoorwaarden(tx, aanvraag, actingPersonID)
	})
}

// GrantConsent records leercoach consent. Only the assigned leercoach may
// grant it. When every scheduling precondition is met the aanvraag moves
// on to gepland.
func GrantConsent(db *gorm.DB, aanvraagID uint, actingPersonID uint, opmerkingen string) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireLeercoach(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	if aanvraag.Status != pvbModels.StatusWachtOpVoorwaarden {
		return invalidTransition(aanvraag.Status, "leercoach_toestemming_gegeven")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		event := pvbModels.Gebeurtenis{
			AanvraagID:      aanvraag.ID,
			GebeurtenisType: pvbModels.GebeurtenisLeercoachToestemmingGegeven,
			ActorID:         actingPersonID,
			Opmerkingen:     opmerkingen,
		}
		if err := tx.Create(&event).Error; err != nil {
			return apperrors.Internal("failed to record event", err)
		}
		return evaluateVoorwaarden(tx, aanvraag, actingPersonID)
	})
}

// DenyConsent records a leercoach refusal. The aanvraag stays in
// wacht_op_voorwaarden until consent is granted or it is cancelled.
func DenyConsent(db *gorm.DB, aanvraagID uint, actingPersonID uint, reden string) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireLeercoach(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	if aanvraag.Status != pvbModels.StatusWachtOpVoorwaarden {
		return invalidTransition(aanvraag.Status, "leercoach_toestemming_geweigerd")
	}

	event := pvbModels.Gebeurtenis{
		AanvraagID:      aanvraag.ID,
		GebeurtenisType: pvbModels.GebeurtenisLeercoachToestemmingGeweigerd,
		ActorID:         actingPersonID,
		Reden:           reden,
	}
	if err := db.Create(&event).Error; err != nil {
		return apperrors.Internal("failed to record event", err)
	}
	return nil
}

// UpdateDatetime sets the scheduled date and time. No event of its own;
// when the change completes the scheduling preconditions the
// voorwaarden_voltooid transition fires.
func UpdateDatetime(db *gorm.DB, aanvraagID uint, actingPersonID uint, datum time.Time, tijd string) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	switch aanvraag.Status {
	case pvbModels.StatusConcept, pvbModels.StatusWachtOpVoorwaarden, pvbModels.StatusGepland:
	default:
		return invalidTransition(aanvraag.Status, "aanvangsdatum_wijzigen")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"aanvangsdatum": datum,
			"aanvangstijd":  tijd,
		}
		if err := tx.Model(aanvraag).Updates(updates).Error; err != nil {
			return apperrors.Internal("failed to update aanvraag", err)
		}
		aanvraag.Aanvangsdatum = &datum
		aanvraag.Aanvangstijd = &tijd
		if aanvraag.Status == pvbModels.StatusWachtOpVoorwaarden {
			return evaluateVoorwaarden(tx, aanvraag, actingPersonID)
		}
		return nil
	})
}

// UpdateLeercoach assigns a new leercoach. In wacht_op_voorwaarden the new
// leercoach is asked for consent again.
func UpdateLeercoach(db *gorm.DB, aanvraagID uint, actingPersonID uint, leercoachActorID uint) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}
	switch aanvraag.Status {
	case pvbModels.StatusConcept, pvbModels.StatusWachtOpVoorwaarden:
	default:
		return invalidTransition(aanvraag.Status, "leercoach_wijzigen")
	}

	var coach models.Actor
	if err := db.First(&coach, leercoachActorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("Leercoach actor not found!")
		}
		return apperrors.Internal("failed to load leercoach", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(aanvraag).Update("leercoach_id", leercoachActorID).Error; err != nil {
			return apperrors.Internal("failed to update aanvraag", err)
		}
		aanvraag.LeercoachID = &leercoachActorID
		if aanvraag.Status == pvbModels.StatusWachtOpVoorwaarden {
			event := pvbModels.Gebeurtenis{
				AanvraagID:      aanvraag.ID,
				GebeurtenisType: pvbModels.GebeurtenisLeercoachToestemmingGevraagd,
				ActorID:         actingPersonID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return apperrors.Internal("failed to record event", err)
			}
		}
		return nil
	})
}

// StartAssessment marks the assessment as being carried out:
// gepland -> uitgevoerd, event beoordeling_gestart
func StartAssessment(db *gorm.DB, aanvraagID uint, actingPersonID uint) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireBeoordelaarOrManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return transition(tx, aanvraag, pvbModels.StatusUitgevoerd, &pvbModels.Gebeurtenis{
			AanvraagID:      aanvraag.ID,
			GebeurtenisType: pvbModels.GebeurtenisBeoordelingGestart,
			ActorID:         actingPersonID,
		})
	})
}

// Finalize records the assessment outcome: uitgevoerd -> geslaagd or
// gezakt, event beoordeling_afgerond with the uitslag in the payload
func Finalize(db *gorm.DB, aanvraagID uint, actingPersonID uint, geslaagd bool, opmerkingen string) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireBeoordelaarOrManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}

	outcome := pvbModels.StatusGezakt
	if geslaagd {
		outcome = pvbModels.StatusGeslaagd
	}
	payload, _ := json.Marshal(map[string]string{"uitslag": outcome})

	return db.Transaction(func(tx *gorm.DB) error {
		return transition(tx, aanvraag, outcome, &pvbModels.Gebeurtenis{
			AanvraagID:      aanvraag.ID,
			GebeurtenisType: pvbModels.GebeurtenisBeoordelingAfgerond,
			ActorID:         actingPersonID,
			Opmerkingen:     opmerkingen,
			Data:            datatypes.JSON(payload),
		})
	})
}

// Cancel withdraws an aanvraag. Only reachable from concept,
// wacht_op_voorwaarden and gepland; cancelling a carried-out or decided
// assessment is an invalid transition.
func Cancel(db *gorm.DB, aanvraagID uint, actingPersonID uint, reden string) error {
	aanvraag, err := load(db, aanvraagID)
	if err != nil {
		return err
	}
	if err := requireKandidaatOrManager(db, aanvraag, actingPersonID); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return transition(tx, aanvraag, pvbModels.StatusGeannuleerd, &pvbModels.Gebeurtenis{
			AanvraagID:      aanvraag.ID,
			GebeurtenisType: pvbModels.GebeurtenisAanvraagIngetrokken,
			ActorID:         actingPersonID,
			Reden:           reden,
		})
	})
}

// Events returns the full event log for an aanvraag, newest first
func Events(db *gorm.DB, aanvraagID uint) ([]pvbModels.Gebeurtenis, error) {
	if _, err := load(db, aanvraagID); err != nil {
		return nil, err
	}
	var events []pvbModels.Gebeurtenis
	err := db.Where("aanvraag_id = ?", aanvraagID).
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, apperrors.Internal("failed to load events", err)
	}
	return events, nil
}

// evaluateVoorwaarden fires voorwaarden_voltooid and moves the aanvraag to
// gepland once consent is granted (or no leercoach gate is set), a
// beoordelaar is assigned and a start date is scheduled.
func evaluateVoorwaarden(tx *gorm.DB, aanvraag *pvbModels.PvbAanvraag, actingPersonID uint) error {
	if aanvraag.Status != pvbModels.StatusWachtOpVoorwaarden {
		return nil
	}
	if aanvraag.BeoordelaarID == nil || aanvraag.Aanvangsdatum == nil {
		return nil
	}
	if aanvraag.LeercoachID != nil {
		granted, err := hasConsent(tx, aanvraag.ID)
		if err != nil {
			return err
		}
		if !granted {
			return nil
		}
	}
	return transition(tx, aanvraag, pvbModels.StatusGepland, &pvbModels.Gebeurtenis{
		AanvraagID:      aanvraag.ID,
		GebeurtenisType: pvbModels.GebeurtenisVoorwaardenVoltooid,
		ActorID:         actingPersonID,
	})
}

// hasConsent reports whether the most recent consent-related event is a
// grant. A fresh consent request (written when the leercoach changes)
// invalidates an earlier grant.
func hasConsent(db *gorm.DB, aanvraagID uint) (bool, error) {
	var event pvbModels.Gebeurtenis
	err := db.Where("aanvraag_id = ? AND gebeurtenis_type IN ?", aanvraagID, []string{
		pvbModels.GebeurtenisLeercoachToestemmingGevraagd,
		pvbModels.GebeurtenisLeercoachToestemmingGegeven,
		pvbModels.GebeurtenisLeercoachToestemmingGeweigerd,
	}).Order("created_at desc, id desc").First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, apperrors.Internal("failed to load consent events", err)
	}
	return event.GebeurtenisType == pvbModels.GebeurtenisLeercoachToestemmingGegeven, nil
}

// transition validates the target status, appends the event and updates the
// cached status column. Must run inside a transaction.
func transition(tx *gorm.DB, aanvraag *pvbModels.PvbAanvraag, to string, event *pvbModels.Gebeurtenis) error {
	if !CanTransition(aanvraag.Status, to) {
		return invalidTransition(aanvraag.Status, to)
	}
	if err := tx.Create(event).Error; err != nil {
		return apperrors.Internal("failed to record event", err)
	}
	if err := tx.Model(aanvraag).Update("status", to).Error; err != nil {
		return apperrors.Internal("failed to update status", err)
	}
	aanvraag.Status = to
	return nil
}

func invalidTransition(from, to string) error {
	return apperrors.InvalidState(fmt.Sprintf("Transition %s is not allowed from status %s!", to, from))
}

func load(db *gorm.DB, aanvraagID uint) (*pvbModels.PvbAanvraag, error) {
	var aanvraag pvbModels.PvbAanvraag
	if err := db.First(&aanvraag, aanvraagID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Aanvraag not found!")
		}
		return nil, apperrors.Internal("failed to load aanvraag", err)
	}
	return &aanvraag, nil
}

// requireManager allows secretariaat actors and anyone the permission
// evaluator clears for pvb.beheer at the aanvraag's location
// (location_admin included)
func requireManager(db *gorm.DB, aanvraag *pvbModels.PvbAanvraag, personID uint) error {
	isSecretariaat, err := permission.HasActorType(db, personID, aanvraag.LocationID, models.ActorSecretariaat)
	if err != nil {
		return err
	}
	if isSecretariaat {
		return nil
	}
	allowed, err := permission.CheckPermission(db, personID, aanvraag.LocationID, "pvb.beheer", nil)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Forbidden("You do not have permission to manage this aanvraag!")
	}
	return nil
}

func requireKandidaatOrManager(db *gorm.DB, aanvraag *pvbModels.PvbAanvraag, personID uint) error {
	var kandidaat models.Actor
	if err := db.First(&kandidaat, aanvraag.KandidaatID).Error; err == nil && kandidaat.PersonID == personID {
		return nil
	}
	return requireManager(db, aanvraag, personID)
}

// requireLeercoach restricts consent operations to the assigned leercoach
func requireLeercoach(db *gorm.DB, aanvraag *pvbModels.PvbAanvraag, personID uint) error {
	if aanvraag.LeercoachID == nil {
		return apperrors.InvalidState("Aanvraag has no leercoach assigned!")
	}
	var coach models.Actor
	if err := db.First(&coach, *aanvraag.LeercoachID).Error; err != nil {
		return apperrors.Internal("failed to load leercoach", err)
	}
	if coach.PersonID != personID {
		return apperrors.Forbidden("Only the assigned leercoach may respond to the consent request!")
	}
	return nil
}

func requireBeoordelaarOrManager(db *gorm.DB, aanvraag *pvbModels.PvbAanvraag, personID uint) error {
	if aanvraag.BeoordelaarID != nil {
		var beoordelaar models.Actor
		if err := db.First(&beoordelaar, *aanvraag.BeoordelaarID).Error; err == nil && beoordelaar.PersonID == personID {
			return nil
		}
	}
	return requireManager(db, aanvraag, personID)
}
