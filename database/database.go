package database

import (
	"fmt"
	"log"
	"os"

	"nwd/config"
	"nwd/models"
	pvbModels "nwd/models/pvb"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	// Build the PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.AppConfig.DBHost,
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBName,
		config.AppConfig.DBPort,
	)

	// Open database connection. TranslateError lets unique-constraint
	// violations surface as gorm.ErrDuplicatedKey, which the certificate
	// handle generator relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	// Run database migrations
	RunMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Location{},
		&models.Person{},
		&models.PersonLocationLink{},
		&models.Actor{},
		&models.Role{},
		&models.Privilege{},
		&models.RolePrivilege{},
		&models.ActorRole{},
		&models.CohortRole{},
		&models.Discipline{},
		&models.Degree{},
		&models.Category{},
		&models.GearType{},
		&models.Kwalificatieprofiel{},
		&models.Course{},
		&models.Module{},
		&models.Competency{},
		&models.Curriculum{},
		&models.CurriculumModule{},
		&models.CurriculumCompetency{},
		&models.StudentCurriculum{},
		&models.Cohort{},
		&models.CohortAllocation{},
		&models.CompetencyProgress{},
		&models.Certificate{},
		&models.CertificateCompetency{},
		&pvbModels.PvbAanvraag{},
		&pvbModels.Onderdeel{},
		&pvbModels.Gebeurtenis{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
