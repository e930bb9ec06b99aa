package pvb

import (
	"testing"
	"time"

	"nwd/database"
	"nwd/models"
	pvbModels "nwd/models/pvb"
	"nwd/services/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDb(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

type fixture struct {
	location     models.Location
	kandidaat    models.Person
	leercoach    models.Person
	beoordelaar  models.Person
	secretariaat models.Person

	kandidaatActor   models.Actor
	leercoachActor   models.Actor
	beoordelaarActor models.Actor

	hoofdcursus models.Course
	profiel     models.Kwalificatieprofiel
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	f := fixture{}

	f.location = models.Location{Handle: "zeilschool-a", Name: "Zeilschool A"}
	require.NoError(t, db.Create(&f.location).Error)

	f.kandidaat = models.Person{FirstName: "Kees", LastName: "Kandidaat"}
	require.NoError(t, db.Create(&f.kandidaat).Error)
	f.leercoach = models.Person{FirstName: "Loes", LastName: "Leercoach"}
	require.NoError(t, db.Create(&f.leercoach).Error)
	f.beoordelaar = models.Person{FirstName: "Bert", LastName: "Beoordelaar"}
	require.NoError(t, db.Create(&f.beoordelaar).Error)
	f.secretariaat = models.Person{FirstName: "Sanne", LastName: "Secretariaat"}
	require.NoError(t, db.Create(&f.secretariaat).Error)

	f.kandidaatActor = models.Actor{Type: models.ActorStudent, PersonID: f.kandidaat.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&f.kandidaatActor).Error)
	f.leercoachActor = models.Actor{Type: models.ActorInstructor, PersonID: f.leercoach.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&f.leercoachActor).Error)
	f.beoordelaarActor = models.Actor{Type: models.ActorPvbBeoordelaar, PersonID: f.beoordelaar.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&f.beoordelaarActor).Error)
	require.NoError(t, db.Create(&models.Actor{Type: models.ActorSecretariaat, PersonID: f.secretariaat.ID, LocationID: f.location.ID}).Error)

	discipline := models.Discipline{Handle: "zeilen", Title: "Zeilen"}
	require.NoError(t, db.Create(&discipline).Error)
	degree := models.Degree{Handle: "niveau-3", Title: "Niveau 3"}
	require.NoError(t, db.Create(&degree).Error)
	f.hoofdcursus = models.Course{Handle: "instructeur-opleiding", Title: "Instructeur Opleiding", DisciplineID: discipline.ID, DegreeID: degree.ID}
	require.NoError(t, db.Create(&f.hoofdcursus).Error)
	f.profiel = models.Kwalificatieprofiel{Handle: "instructeur-3", Titel: "Instructeur 3"}
	require.NoError(t, db.Create(&f.profiel).Error)

	return f
}

// createAanvraag builds an aanvraag in concept with hoofdcursus, leercoach
// and beoordelaar all set
func createAanvraag(t *testing.T, db *gorm.DB, f fixture) *pvbModels.PvbAanvraag {
	aanvraag, err := Create(db, CreateInput{
		LocationID:             f.location.ID,
		KandidaatID:            f.kandidaatActor.ID,
		HoofdcursusID:          &f.hoofdcursus.ID,
		LeercoachID:            &f.leercoachActor.ID,
		BeoordelaarID:          &f.beoordelaarActor.ID,
		Type:                   pvbModels.TypeInstructeur3,
		KwalificatieprofielIDs: []uint{f.profiel.ID},
	})
	require.NoError(t, err)
	return aanvraag
}

func eventCount(t *testing.T, db *gorm.DB, aanvraagID uint) int64 {
	var count int64
	require.NoError(t, db.Model(&pvbModels.Gebeurtenis{}).Where("aanvraag_id = ?", aanvraagID).Count(&count).Error)
	return count
}

func reload(t *testing.T, db *gorm.DB, aanvraagID uint) pvbModels.PvbAanvraag {
	var aanvraag pvbModels.PvbAanvraag
	require.NoError(t, db.First(&aanvraag, aanvraagID).Error)
	return aanvraag
}

func TestCreateStartsInConceptWithoutEvents(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)

	assert.Equal(t, pvbModels.StatusConcept, aanvraag.Status)
	assert.NotEmpty(t, aanvraag.Handle)
	assert.EqualValues(t, 0, eventCount(t, db, aanvraag.ID), "creation is not a transition")

	var onderdelen []pvbModels.Onderdeel
	require.NoError(t, db.Where("aanvraag_id = ?", aanvraag.ID).Find(&onderdelen).Error)
	require.Len(t, onderdelen, 1)
	assert.Equal(t, pvbModels.UitslagNogNietBekend, onderdelen[0].Uitslag)
}

func TestSubmitWithoutHoofdcursusIsRejectedBeforeAnyWrite(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)

	aanvraag, err := Create(db, CreateInput{
		LocationID:             f.location.ID,
		KandidaatID:            f.kandidaatActor.ID,
		Type:                   pvbModels.TypeInstructeur3,
		KwalificatieprofielIDs: []uint{f.profiel.ID},
	})
	require.NoError(t, err)

	err = Submit(db, aanvraag.ID, f.secretariaat.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	assert.Equal(t, pvbModels.StatusConcept, reload(t, db, aanvraag.ID).Status)
	assert.EqualValues(t, 0, eventCount(t, db, aanvraag.ID), "a rejected submit must leave no trace")
}

func TestSubmitMovesToWachtAndAsksConsent(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)

	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))

	assert.Equal(t, pvbModels.StatusWachtOpVoorwaarden, reload(t, db, aanvraag.ID).Status)

	events, err := Events(db, aanvraag.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first: consent request follows the submission
	assert.Equal(t, pvbModels.GebeurtenisLeercoachToestemmingGevraagd, events[0].GebeurtenisType)
	assert.Equal(t, pvbModels.GebeurtenisAanvraagIngediend, events[1].GebeurtenisType)
}

func TestSubmitOnlyBySecretariaat(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)

	outsider := models.Person{FirstName: "Olaf", LastName: "Outsider"}
	require.NoError(t, db.Create(&outsider).Error)

	err := Submit(db, aanvraag.ID, outsider.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// Activation is a secretariaat call: the kandidaat cannot submit
	// their own aanvraag
	err = Submit(db, aanvraag.ID, f.kandidaat.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, pvbModels.StatusConcept, reload(t, db, aanvraag.ID).Status)
}

func TestSubmitSchedulesWhenPreconditionsAlreadyMet(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)

	// No leercoach, so no consent gate; beoordelaar and start date are
	// set before submission
	aanvraag, err := Create(db, CreateInput{
		LocationID:             f.location.ID,
		KandidaatID:            f.kandidaatActor.ID,
		HoofdcursusID:          &f.hoofdcursus.ID,
		BeoordelaarID:          &f.beoordelaarActor.ID,
		Type:                   pvbModels.TypeInstructeur3,
		KwalificatieprofielIDs: []uint{f.profiel.ID},
	})
	require.NoError(t, err)

	datum := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDatetime(db, aanvraag.ID, f.secretariaat.ID, datum, "10:00"))
	assert.Equal(t, pvbModels.StatusConcept, reload(t, db, aanvraag.ID).Status)

	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))
	assert.Equal(t, pvbModels.StatusGepland, reload(t, db, aanvraag.ID).Status)

	events, err := Events(db, aanvraag.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, pvbModels.GebeurtenisVoorwaardenVoltooid, events[0].GebeurtenisType)
	assert.Equal(t, pvbModels.GebeurtenisAanvraagIngediend, events[1].GebeurtenisType)
}

func TestConsentOnlyByAssignedLeercoach(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)
	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))

	err := GrantConsent(db, aanvraag.ID, f.beoordelaar.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, GrantConsent(db, aanvraag.ID, f.leercoach.ID, "akkoord"))
}

func TestConsentAloneDoesNotSchedule(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)
	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))

	require.NoError(t, GrantConsent(db, aanvraag.ID, f.leercoach.ID, ""))
	assert.Equal(t, pvbModels.StatusWachtOpVoorwaarden, reload(t, db, aanvraag.ID).Status, "no start date yet")

	datum := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDatetime(db, aanvraag.ID, f.secretariaat.ID, datum, "10:00"))
	assert.Equal(t, pvbModels.StatusGepland, reload(t, db, aanvraag.ID).Status)

	events, err := Events(db, aanvraag.ID)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.GebeurtenisVoorwaardenVoltooid, events[0].GebeurtenisType)
}

func TestDeniedConsentBlocksScheduling(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)
	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))

	require.NoError(t, DenyConsent(db, aanvraag.ID, f.leercoach.ID, "nog niet klaar"))

	datum := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDatetime(db, aanvraag.ID, f.secretariaat.ID, datum, "10:00"))
	assert.Equal(t, pvbModels.StatusWachtOpVoorwaarden, reload(t, db, aanvraag.ID).Status, "a refusal keeps the aanvraag waiting")

	// A later grant completes the preconditions
	require.NoError(t, GrantConsent(db, aanvraag.ID, f.leercoach.ID, "alsnog akkoord"))
	assert.Equal(t, pvbModels.StatusGepland, reload(t, db, aanvraag.ID).Status)
}

func planAanvraag(t *testing.T, db *gorm.DB, f fixture) *pvbModels.PvbAanvraag {
	aanvraag := createAanvraag(t, db, f)
	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))
	require.NoError(t, GrantConsent(db, aanvraag.ID, f.leercoach.ID, ""))
	datum := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDatetime(db, aanvraag.ID, f.secretariaat.ID, datum, "10:00"))
	return aanvraag
}

func TestStartAndFinalize(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := planAanvraag(t, db, f)

	require.NoError(t, StartAssessment(db, aanvraag.ID, f.beoordelaar.ID))
	assert.Equal(t, pvbModels.StatusUitgevoerd, reload(t, db, aanvraag.ID).Status)

	require.NoError(t, Finalize(db, aanvraag.ID, f.beoordelaar.ID, true, "uitstekend gedaan"))
	assert.Equal(t, pvbModels.StatusGeslaagd, reload(t, db, aanvraag.ID).Status)

	events, err := Events(db, aanvraag.ID)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.GebeurtenisBeoordelingAfgerond, events[0].GebeurtenisType)
	assert.Contains(t, string(events[0].Data), pvbModels.StatusGeslaagd)
}

func TestCancelFromConceptAppendsExactlyOneEvent(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)

	require.NoError(t, Cancel(db, aanvraag.ID, f.kandidaat.ID, "toch niet"))

	assert.Equal(t, pvbModels.StatusGeannuleerd, reload(t, db, aanvraag.ID).Status)
	assert.EqualValues(t, 1, eventCount(t, db, aanvraag.ID))
}

func TestCancelAfterExecutionIsInvalid(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := planAanvraag(t, db, f)
	require.NoError(t, StartAssessment(db, aanvraag.ID, f.beoordelaar.ID))

	err := Cancel(db, aanvraag.ID, f.secretariaat.ID, "te laat")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
	assert.Equal(t, pvbModels.StatusUitgevoerd, reload(t, db, aanvraag.ID).Status)
}

func TestTerminalStatusesRejectFurtherTransitions(t *testing.T) {
	for _, terminal := range []string{pvbModels.StatusGeslaagd, pvbModels.StatusGezakt, pvbModels.StatusGeannuleerd} {
		assert.Empty(t, allowedNext[terminal], "status %s must be terminal", terminal)
	}
}

func TestRebuildStatusMatchesCachedStatus(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := planAanvraag(t, db, f)
	require.NoError(t, StartAssessment(db, aanvraag.ID, f.beoordelaar.ID))
	require.NoError(t, Finalize(db, aanvraag.ID, f.beoordelaar.ID, false, ""))

	rebuilt, err := RebuildStatus(db, aanvraag.ID)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.StatusGezakt, rebuilt)
	assert.Equal(t, rebuilt, reload(t, db, aanvraag.ID).Status)
}

func TestReconcileStatusRepairsTamperedColumn(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := planAanvraag(t, db, f)

	// Corrupt the cached projection directly
	require.NoError(t, db.Model(&pvbModels.PvbAanvraag{}).Where("id = ?", aanvraag.ID).Update("status", pvbModels.StatusConcept).Error)

	status, err := ReconcileStatus(db, aanvraag.ID)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.StatusGepland, status)
	assert.Equal(t, pvbModels.StatusGepland, reload(t, db, aanvraag.ID).Status)
}

func TestOnderdeelUitslagOnlyDuringOrAfterExecution(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := planAanvraag(t, db, f)

	var onderdeel pvbModels.Onderdeel
	require.NoError(t, db.Where("aanvraag_id = ?", aanvraag.ID).First(&onderdeel).Error)

	err := UpdateOnderdeelUitslag(db, onderdeel.ID, f.beoordelaar.ID, pvbModels.UitslagBehaald)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	require.NoError(t, StartAssessment(db, aanvraag.ID, f.beoordelaar.ID))
	require.NoError(t, UpdateOnderdeelUitslag(db, onderdeel.ID, f.beoordelaar.ID, pvbModels.UitslagBehaald))

	var reloaded pvbModels.Onderdeel
	require.NoError(t, db.First(&reloaded, onderdeel.ID).Error)
	assert.Equal(t, pvbModels.UitslagBehaald, reloaded.Uitslag)

	// The change is logged, scoped to the onderdeel
	var event pvbModels.Gebeurtenis
	require.NoError(t, db.Where("aanvraag_id = ? AND gebeurtenis_type = ?", aanvraag.ID, pvbModels.GebeurtenisOnderdeelUitslagGewijzigd).First(&event).Error)
	require.NotNil(t, event.PvbOnderdeelID)
	assert.Equal(t, onderdeel.ID, *event.PvbOnderdeelID)
}

func TestAddOnderdeelLogsScopedEvent(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)

	extra := models.Kwalificatieprofiel{Handle: "leercoach-3", Titel: "Leercoach 3"}
	require.NoError(t, db.Create(&extra).Error)

	onderdeel, err := AddOnderdeel(db, aanvraag.ID, f.secretariaat.ID, extra.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.UitslagNogNietBekend, onderdeel.Uitslag)

	var event pvbModels.Gebeurtenis
	require.NoError(t, db.Where("aanvraag_id = ? AND gebeurtenis_type = ?", aanvraag.ID, pvbModels.GebeurtenisOnderdeelToegevoegd).First(&event).Error)
	require.NotNil(t, event.PvbOnderdeelID)
	assert.Equal(t, onderdeel.ID, *event.PvbOnderdeelID)
}

func TestBulkKickOffReportsPerItem(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)

	ok := createAanvraag(t, db, f)
	broken, err := Create(db, CreateInput{
		LocationID:             f.location.ID,
		KandidaatID:            f.kandidaatActor.ID,
		Type:                   pvbModels.TypeInstructeur3,
		KwalificatieprofielIDs: []uint{f.profiel.ID},
	})
	require.NoError(t, err)

	results := BulkKickOff(db, []uint{ok.ID, broken.ID}, f.secretariaat.ID)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK, "missing hoofdcursus must fail this item only")
	assert.NotEmpty(t, results[1].Error)

	assert.Equal(t, pvbModels.StatusWachtOpVoorwaarden, reload(t, db, ok.ID).Status)
	assert.Equal(t, pvbModels.StatusConcept, reload(t, db, broken.ID).Status)
}

func TestUpdateLeercoachResetsConsent(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db)
	aanvraag := createAanvraag(t, db, f)
	require.NoError(t, Submit(db, aanvraag.ID, f.secretariaat.ID))
	require.NoError(t, GrantConsent(db, aanvraag.ID, f.leercoach.ID, ""))

	nieuweCoach := models.Person{FirstName: "Nora", LastName: "Nieuw"}
	require.NoError(t, db.Create(&nieuweCoach).Error)
	nieuweActor := models.Actor{Type: models.ActorInstructor, PersonID: nieuweCoach.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&nieuweActor).Error)

	require.NoError(t, UpdateLeercoach(db, aanvraag.ID, f.secretariaat.ID, nieuweActor.ID))

	// The new leercoach is asked for consent again
	events, err := Events(db, aanvraag.ID)
	require.NoError(t, err)
	assert.Equal(t, pvbModels.GebeurtenisLeercoachToestemmingGevraagd, events[0].GebeurtenisType)

	// The old leercoach may no longer respond
	err = GrantConsent(db, aanvraag.ID, f.leercoach.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// The earlier grant no longer counts towards scheduling
	datum := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDatetime(db, aanvraag.ID, f.secretariaat.ID, datum, "10:00"))
	assert.Equal(t, pvbModels.StatusWachtOpVoorwaarden, reload(t, db, aanvraag.ID).Status)

	require.NoError(t, GrantConsent(db, aanvraag.ID, nieuweCoach.ID, ""))
	assert.Equal(t, pvbModels.StatusGepland, reload(t, db, aanvraag.ID).Status)
}
