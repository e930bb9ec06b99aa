package utils

import (
	"fmt"
	"log"
	"time"

	"nwd/database"
	"nwd/models"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[CERT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processVisibleCertificates emails students whose certificate became
// visible since the last run. NotifiedAt guards against double sends.
func processVisibleCertificates() {
	db := database.Database.Db
	now := time.Now()

	var certs []models.Certificate
	err := db.Where("issued_at IS NOT NULL AND withdrawn_at IS NULL AND notified_at IS NULL").
		Where("visible_from IS NULL OR visible_from <= ?", now).
		Preload("StudentCurriculum.Person").
		Preload("StudentCurriculum.Curriculum.Course").
		Find(&certs).Error
	if err != nil {
		logScheduler("Error fetching visible certificates: " + err.Error())
		return
	}

	for _, cert := range certs {
		person := cert.StudentCurriculum.Person
		courseTitle := cert.StudentCurriculum.Curriculum.Course.Title

		if person.Email != "" {
			if err := SendCertificateIssuedEmail(person.FirstName, person.Email, cert.Handle, courseTitle); err != nil {
				// Leave NotifiedAt empty so the next run retries
				continue
			}
		}
		if err := db.Model(&cert).Update("notified_at", now).Error; err != nil {
			logScheduler("Error marking certificate notified: " + err.Error())
		}
	}

	if len(certs) > 0 {
		logScheduler(fmt.Sprintf("Processed %d newly visible certificates", len(certs)))
	}
}

// StartCertificateScheduler starts the hourly certificate visibility job
func StartCertificateScheduler() *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@hourly", processVisibleCertificates)
	if err != nil {
		log.Fatalf("Failed to schedule certificate job: %v", err)
	}

	c.Start()
	logScheduler("Certificate scheduler started")
	return c
}
