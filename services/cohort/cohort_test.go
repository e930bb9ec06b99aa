package cohort

import (
	"encoding/json"
	"testing"
	"time"

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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

func seedLocation(t *testing.T, db *gorm.DB, handle string) models.Location {
	location := models.Location{Handle: handle, Name: handle}
	require.NoError(t, db.Create(&location).Error)
	return location
}

func window() (time.Time, time.Time) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

func TestCreateDerivesHandleFromLabel(t *testing.T) {
	db := setupTestDb(t)
	location := seedLocation(t, db, "zeilschool-a")
	start, end := window()

	created, err := Create(db, CreateInput{
		LocationID:      location.ID,
		Label:           "Zomer Cursus 2026",
		AccessStartTime: start,
		AccessEndTime:   end,
	})
	require.NoError(t, err)
	assert.Equal(t, "zomer-cursus-2026", created.Handle)
}

func TestCreateDuplicateHandleSameLocation(t *testing.T) {
	db := setupTestDb(t)
	location := seedLocation(t, db, "zeilschool-a")
	start, end := window()

	input := CreateInput{LocationID: location.ID, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: end}
	_, err := Create(db, input)
	require.NoError(t, err)

	_, err = Create(db, input)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreateSameHandleDifferentLocation(t *testing.T) {
	db := setupTestDb(t)
	locationA := seedLocation(t, db, "zeilschool-a")
	locationB := seedLocation(t, db, "zeilschool-b")
	start, end := window()

	_, err := Create(db, CreateInput{LocationID: locationA.ID, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: end})
	require.NoError(t, err)

	_, err = Create(db, CreateInput{LocationID: locationB.ID, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: end})
	assert.NoError(t, err, "handle uniqueness is per location")
}

func TestCreateRejectsInvalidAccessWindow(t *testing.T) {
	db := setupTestDb(t)
	location := seedLocation(t, db, "zeilschool-a")
	start, _ := window()

	_, err := Create(db, CreateInput{LocationID: location.ID, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: start})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateUnknownLocation(t *testing.T) {
	db := setupTestDb(t)
	start, end := window()

	_, err := Create(db, CreateInput{LocationID: 999, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: end})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

type allocationFixture struct {
	location   models.Location
	cohort     models.Cohort
	beheerder  models.Person
	student    models.Person
	actor      models.Actor
	curriculum models.Curriculum
	sc         models.StudentCurriculum
}

func seedAllocationFixture(t *testing.T, db *gorm.DB) allocationFixture {
	f := allocationFixture{}
	f.location = seedLocation(t, db, "zeilschool-a")
	start, end := window()

	f.beheerder = models.Person{FirstName: "Ad", LastName: "Min"}
	require.NoError(t, db.Create(&f.beheerder).Error)
	require.NoError(t, db.Create(&models.Actor{Type: models.ActorLocationAdmin, PersonID: f.beheerder.ID, LocationID: f.location.ID}).Error)

	created, err := Create(db, CreateInput{LocationID: f.location.ID, Label: "Zomer", Handle: "zomer", AccessStartTime: start, AccessEndTime: end})
	require.NoError(t, err)
	f.cohort = *created

	f.student = models.Person{FirstName: "Fleur", LastName: "Visser"}
	require.NoError(t, db.Create(&f.student).Error)
	f.actor = models.Actor{Type: models.ActorStudent, PersonID: f.student.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&f.actor).Error)

	discipline := models.Discipline{Handle: "zeilen", Title: "Zeilen"}
	require.NoError(t, db.Create(&discipline).Error)
	degree := models.Degree{Handle: "niveau-2", Title: "Niveau 2"}
	require.NoError(t, db.Create(&degree).Error)
	course := models.Course{Handle: "jeugdzeilen", Title: "Jeugdzeilen", DisciplineID: discipline.ID, DegreeID: degree.ID}
	require.NoError(t, db.Create(&course).Error)
	f.curriculum = models.Curriculum{CourseID: course.ID, Revision: "2026.1"}
	require.NoError(t, db.Create(&f.curriculum).Error)
	gear := models.GearType{Handle: "optimist", Title: "Optimist"}
	require.NoError(t, db.Create(&gear).Error)

	f.sc = models.StudentCurriculum{
		PersonID:     f.student.ID,
		CurriculumID: f.curriculum.ID,
		GearTypeID:   gear.ID,
		StartedAt:    start,
	}
	require.NoError(t, db.Create(&f.sc).Error)
	return f
}

func TestAllocateStudent(t *testing.T) {
	db := setupTestDb(t)
	f := seedAllocationFixture(t, db)

	allocation, err := AllocateStudent(db, f.beheerder.ID, AllocateInput{
		CohortID:            f.cohort.ID,
		ActorID:             f.actor.ID,
		StudentCurriculumID: f.sc.ID,
		Tags:                []string{"beginners"},
	})
	require.NoError(t, err)

	var tags []string
	require.NoError(t, json.Unmarshal(allocation.Tags, &tags))
	assert.Equal(t, []string{"beginners"}, tags)
	assert.False(t, allocation.ProgressVisible)
}

func TestAllocateStudentCurriculumPersonMismatch(t *testing.T) {
	db := setupTestDb(t)
	f := seedAllocationFixture(t, db)

	other := models.Person{FirstName: "Daan", LastName: "Smit"}
	require.NoError(t, db.Create(&other).Error)
	otherActor := models.Actor{Type: models.ActorStudent, PersonID: other.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&otherActor).Error)

	_, err := AllocateStudent(db, f.beheerder.ID, AllocateInput{
		CohortID:            f.cohort.ID,
		ActorID:             otherActor.ID,
		StudentCurriculumID: f.sc.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAllocateStudentRequiresPermission(t *testing.T) {
	db := setupTestDb(t)
	f := seedAllocationFixture(t, db)

	// The student person holds no management permission in this cohort
	_, err := AllocateStudent(db, f.student.ID, AllocateInput{
		CohortID:            f.cohort.ID,
		ActorID:             f.actor.ID,
		StudentCurriculumID: f.sc.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	var count int64
	db.Model(&models.CohortAllocation{}).Where("cohort_id = ?", f.cohort.ID).Count(&count)
	assert.EqualValues(t, 0, count, "a forbidden call must not allocate")
}

func TestUpdateAllocationTagsReplacesList(t *testing.T) {
	db := setupTestDb(t)
	f := seedAllocationFixture(t, db)

	allocation, err := AllocateStudent(db, f.beheerder.ID, AllocateInput{
		CohortID:            f.cohort.ID,
		ActorID:             f.actor.ID,
		StudentCurriculumID: f.sc.ID,
		Tags:                []string{"beginners", "ochtend"},
	})
	require.NoError(t, err)

	// The student may not rewrite their own tag list
	err = UpdateAllocationTags(db, f.student.ID, allocation.ID, []string{"zelfbenoemd"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, UpdateAllocationTags(db, f.beheerder.ID, allocation.ID, []string{"gevorderden"}))

	var reloaded models.CohortAllocation
	require.NoError(t, db.First(&reloaded, allocation.ID).Error)
	var tags []string
	require.NoError(t, json.Unmarshal(reloaded.Tags, &tags))
	assert.Equal(t, []string{"gevorderden"}, tags)
}

func TestAddCohortRoleRequiresPermission(t *testing.T) {
	db := setupTestDb(t)
	f := seedAllocationFixture(t, db)

	role := models.Role{Handle: "cohort-beheerder", Title: "Cohort Beheerder", Type: models.RoleTypeCohort}
	require.NoError(t, db.Create(&role).Error)

	// The student person holds no management permission
	_, err := AddCohortRole(db, f.student.ID, f.cohort.ID, f.actor.ID, "cohort-beheerder")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	grant, err := AddCohortRole(db, f.beheerder.ID, f.cohort.ID, f.actor.ID, "cohort-beheerder")
	require.NoError(t, err)
	assert.Equal(t, f.cohort.ID, grant.CohortID)

	require.NoError(t, RemoveCohortRole(db, f.beheerder.ID, f.cohort.ID, f.actor.ID, "cohort-beheerder"))

	var count int64
	db.Model(&models.CohortRole{}).Where("cohort_id = ?", f.cohort.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}
