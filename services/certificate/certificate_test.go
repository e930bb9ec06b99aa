package certificate

import (
	"strings"
	"testing"
	"time"

	"nwd/database"
	"nwd/models"
	"nwd/services/apperrors"
	"nwd/services/progress"
	"nwd/utils"

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
	location    models.Location
	cohort      models.Cohort
	allocation  models.CohortAllocation
	required    []models.Competency
	student     models.Person
	instructeur models.Person
}

// seedFixture builds one cohort with one allocated student whose curriculum
// has the given number of required competencies
func seedFixture(t *testing.T, db *gorm.DB, requiredCount int) fixture {
	f := fixture{}
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	f.location = models.Location{Handle: "zeilschool-a", Name: "Zeilschool A"}
	require.NoError(t, db.Create(&f.location).Error)
	f.cohort = models.Cohort{LocationID: f.location.ID, Handle: "zomer", Label: "Zomer", AccessStartTime: start, AccessEndTime: start.AddDate(0, 3, 0)}
	require.NoError(t, db.Create(&f.cohort).Error)

	f.student = models.Person{FirstName: "Fleur", LastName: "Visser"}
	require.NoError(t, db.Create(&f.student).Error)
	actor := models.Actor{Type: models.ActorStudent, PersonID: f.student.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&actor).Error)

	// The instructeur's role carries both the progress and the
	// certificate management privileges
	f.instructeur = models.Person{FirstName: "Ins", LastName: "Tructeur"}
	require.NoError(t, db.Create(&f.instructeur).Error)
	instructeurActor := models.Actor{Type: models.ActorInstructor, PersonID: f.instructeur.ID, LocationID: f.location.ID}
	require.NoError(t, db.Create(&instructeurActor).Error)
	role := models.Role{Handle: "hoofdinstructeur", Title: "Hoofdinstructeur", Type: models.RoleTypeLocation}
	require.NoError(t, db.Create(&role).Error)
	for _, handle := range []string{"cohort.manage", "cohort.certificate.manage"} {
		privilege := models.Privilege{Handle: handle, Title: handle}
		require.NoError(t, db.Create(&privilege).Error)
		require.NoError(t, db.Create(&models.RolePrivilege{RoleID: role.ID, PrivilegeID: privilege.ID}).Error)
	}
	require.NoError(t, db.Create(&models.ActorRole{ActorID: instructeurActor.ID, RoleID: role.ID}).Error)

	discipline := models.Discipline{Handle: "zeilen", Title: "Zeilen"}
	require.NoError(t, db.Create(&discipline).Error)
	degree := models.Degree{Handle: "niveau-2", Title: "Niveau 2"}
	require.NoError(t, db.Create(&degree).Error)
	course := models.Course{Handle: "jeugdzeilen", Title: "Jeugdzeilen", DisciplineID: discipline.ID, DegreeID: degree.ID}
	require.NoError(t, db.Create(&course).Error)
	curriculum := models.Curriculum{CourseID: course.ID, Revision: "2026.1"}
	require.NoError(t, db.Create(&curriculum).Error)
	module := models.Module{Handle: "basis", Title: "Basis"}
	require.NoError(t, db.Create(&module).Error)
	gear := models.GearType{Handle: "optimist", Title: "Optimist"}
	require.NoError(t, db.Create(&gear).Error)

	for i := 0; i < requiredCount; i++ {
		competency := models.Competency{Handle: "kern-" + string(rune('a'+i)), Title: "Kern"}
		require.NoError(t, db.Create(&competency).Error)
		f.required = append(f.required, competency)
		require.NoError(t, db.Create(&models.CurriculumCompetency{
			CurriculumID: curriculum.ID,
			ModuleID:     module.ID,
			CompetencyID: competency.ID,
			IsRequired:   true,
		}).Error)
	}

	sc := models.StudentCurriculum{PersonID: f.student.ID, CurriculumID: curriculum.ID, GearTypeID: gear.ID, StartedAt: start}
	require.NoError(t, db.Create(&sc).Error)
	f.allocation = models.CohortAllocation{CohortID: f.cohort.ID, ActorID: actor.ID, StudentCurriculumID: sc.ID}
	require.NoError(t, db.Create(&f.allocation).Error)

	return f
}

func completeAll(t *testing.T, db *gorm.DB, f fixture) {
	require.NoError(t, progress.CompleteAllCoreCompetencies(db, f.allocation.ID, f.instructeur.ID))
}

func TestIssueCertificate(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 2)
	completeAll(t, db, f)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Issued, "reason: %s", results[0].Reason)

	cert := results[0].Certificate
	require.NotNil(t, cert)
	assert.Len(t, cert.Handle, utils.CertificateHandleLength)
	for _, r := range cert.Handle {
		assert.True(t, strings.ContainsRune(utils.CertificateAlphabet, r))
	}
	assert.NotNil(t, cert.IssuedAt)
	assert.Nil(t, cert.WithdrawnAt)

	// One snapshot row per required competency, all at 100
	var snapshot []models.CertificateCompetency
	require.NoError(t, db.Where("certificate_id = ?", cert.ID).Find(&snapshot).Error)
	assert.Len(t, snapshot, 2)
	for _, row := range snapshot {
		assert.Equal(t, 100, row.Progress)
	}
}

func TestIssueUsesCohortDefaultVisibility(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	visibleFrom := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&f.cohort).Update("default_certificate_visible_from", visibleFrom).Error)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Issued)
	require.NotNil(t, results[0].Certificate.VisibleFrom)
	assert.True(t, results[0].Certificate.VisibleFrom.Equal(visibleFrom))
}

func TestIssueSkipsIncompleteAllocation(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 2)

	// Only one of the two required competencies is complete
	require.NoError(t, progress.Update(db, f.allocation.ID, f.instructeur.ID, []progress.Entry{
		{CompetencyID: f.required[0].ID, Progress: 100},
		{CompetencyID: f.required[1].ID, Progress: 50},
	}))

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Issued)
	assert.NotEmpty(t, results[0].Reason)

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestIssueZeroRequiredCompetenciesIsIneligible(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 0)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Issued)
	assert.Contains(t, results[0].Reason, "no required competencies")
}

func TestIssueTwiceIsRefused(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Issued)

	results, err = IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Issued)
	assert.Contains(t, results[0].Reason, "already issued")
}

func TestIssueRequiresCertificatePermission(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	// A linked person without any grant may not issue, not even for an
	// otherwise eligible allocation
	buitenstaander := models.Person{FirstName: "Olaf", LastName: "Outsider"}
	require.NoError(t, db.Create(&buitenstaander).Error)

	for _, personID := range []uint{buitenstaander.ID, f.student.ID} {
		_, err := IssueInCohort(db, personID, f.cohort.ID, []uint{f.allocation.ID}, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	}

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.EqualValues(t, 0, count, "a forbidden call must issue nothing")

	err := WithdrawInCohort(db, f.student.ID, f.cohort.ID, []uint{1})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	err = UpdateDefaultVisibleFrom(db, f.student.ID, f.cohort.ID, time.Now())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestIssueUnknownCohort(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)

	_, err := IssueInCohort(db, f.instructeur.ID, 999, []uint{1}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestWithdrawIsAllOrNothing(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.True(t, results[0].Issued)
	cert := results[0].Certificate

	// One real id plus one that does not belong to the cohort
	err = WithdrawInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{cert.ID, cert.ID + 100})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	var reloaded models.Certificate
	require.NoError(t, db.First(&reloaded, cert.ID).Error)
	assert.Nil(t, reloaded.WithdrawnAt, "a refused batch must withdraw nothing")
}

func TestWithdrawAndRefuseDouble(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	cert := results[0].Certificate

	require.NoError(t, WithdrawInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{cert.ID}))

	var reloaded models.Certificate
	require.NoError(t, db.First(&reloaded, cert.ID).Error)
	require.NotNil(t, reloaded.WithdrawnAt)

	err = WithdrawInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{cert.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestWithdrawnAllocationCanBeReissued(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)
	completeAll(t, db, f)

	results, err := IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	require.NoError(t, WithdrawInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{results[0].Certificate.ID}))

	results, err = IssueInCohort(db, f.instructeur.ID, f.cohort.ID, []uint{f.allocation.ID}, nil)
	require.NoError(t, err)
	assert.True(t, results[0].Issued, "withdrawal frees the allocation for reissue")
}

func TestUpdateDefaultVisibleFrom(t *testing.T) {
	db := setupTestDb(t)
	f := seedFixture(t, db, 1)

	visibleFrom := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateDefaultVisibleFrom(db, f.instructeur.ID, f.cohort.ID, visibleFrom))

	var reloaded models.Cohort
	require.NoError(t, db.First(&reloaded, f.cohort.ID).Error)
	require.NotNil(t, reloaded.DefaultCertificateVisibleFrom)
	assert.True(t, reloaded.DefaultCertificateVisibleFrom.Equal(visibleFrom))
}
