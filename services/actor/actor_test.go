package actor

import (
	"testing"

	"nwd/database"
	"nwd/models"
	"nwd/services/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDb(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A second connection would see a different in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

func seedPersonAndLocation(t *testing.T, db *gorm.DB) (models.Person, models.Location) {
	person := models.Person{FirstName: "Jan", LastName: "de Vries"}
	require.NoError(t, db.Create(&person).Error)
	location := models.Location{Handle: "zeilschool-a", Name: "Zeilschool A"}
	require.NoError(t, db.Create(&location).Error)
	return person, location
}

func TestUpsertCreatesActor(t *testing.T) {
	db := setupTestDb(t)
	person, location := seedPersonAndLocation(t, db)

	id, err := Upsert(db, UpsertInput{LocationID: location.ID, PersonID: person.ID, Type: models.ActorInstructor})
	require.NoError(t, err)
	assert.NotZero(t, id)

	var found models.Actor
	require.NoError(t, db.First(&found, id).Error)
	assert.Equal(t, models.ActorInstructor, found.Type)
}

func TestUpsertIsIdempotent(t *testing.T) {
	db := setupTestDb(t)
	person, location := seedPersonAndLocation(t, db)

	input := UpsertInput{LocationID: location.ID, PersonID: person.ID, Type: models.ActorStudent}
	first, err := Upsert(db, input)
	require.NoError(t, err)
	second, err := Upsert(db, input)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	db.Model(&models.Actor{}).Where("person_id = ?", person.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertReactivatesRemovedActor(t *testing.T) {
	db := setupTestDb(t)
	person, location := seedPersonAndLocation(t, db)

	input := UpsertInput{LocationID: location.ID, PersonID: person.ID, Type: models.ActorStudent}
	original, err := Upsert(db, input)
	require.NoError(t, err)

	require.NoError(t, Remove(db, input))

	// Soft-deleted rows are invisible to normal queries
	var count int64
	db.Model(&models.Actor{}).Where("person_id = ?", person.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	reactivated, err := Upsert(db, input)
	require.NoError(t, err)
	assert.Equal(t, original, reactivated, "re-adding must revive the same row, not insert a new one")

	var found models.Actor
	require.NoError(t, db.First(&found, reactivated).Error)
	assert.False(t, found.DeletedAt.Valid)
}

func TestUpsertRejectsUnknownType(t *testing.T) {
	db := setupTestDb(t)
	person, location := seedPersonAndLocation(t, db)

	_, err := Upsert(db, UpsertInput{LocationID: location.ID, PersonID: person.ID, Type: "skipper"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRemoveUnknownActorIsNoop(t *testing.T) {
	db := setupTestDb(t)
	_, location := seedPersonAndLocation(t, db)

	err := Remove(db, UpsertInput{LocationID: location.ID, PersonID: 999, Type: models.ActorStudent})
	assert.NoError(t, err)
}

func TestListActiveTypesForUserOnlyConfirmedLinks(t *testing.T) {
	db := setupTestDb(t)
	authID := "b9c7e2f0-0000-4000-8000-000000000001"
	person := models.Person{FirstName: "Sanne", LastName: "Bakker", AuthUserID: &authID}
	require.NoError(t, db.Create(&person).Error)

	linked := models.Location{Handle: "loc-linked", Name: "Linked"}
	pending := models.Location{Handle: "loc-pending", Name: "Pending"}
	require.NoError(t, db.Create(&linked).Error)
	require.NoError(t, db.Create(&pending).Error)

	require.NoError(t, db.Create(&models.PersonLocationLink{PersonID: person.ID, LocationID: linked.ID, Status: models.LinkStatusLinked}).Error)
	require.NoError(t, db.Create(&models.PersonLocationLink{PersonID: person.ID, LocationID: pending.ID, Status: models.LinkStatusPending}).Error)

	_, err := Upsert(db, UpsertInput{LocationID: linked.ID, PersonID: person.ID, Type: models.ActorInstructor})
	require.NoError(t, err)
	_, err = Upsert(db, UpsertInput{LocationID: pending.ID, PersonID: person.ID, Type: models.ActorLocationAdmin})
	require.NoError(t, err)

	types, err := ListActiveTypesForUser(db, authID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ActorInstructor}, types, "pending links must not leak actor types")
}
