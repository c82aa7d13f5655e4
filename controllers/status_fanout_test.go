package controllers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"counselign/config"
	"counselign/database"
	"counselign/models"
)

// Cancellations must write a Notification row for the student like every
// other status outcome, falling back to a direct insert when Redis is not
// available.
func TestNotifyAppointmentOutcomeOnCancellation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	origDB, origConfig := database.DB, config.AppConfig
	database.DB = db
	config.AppConfig = &config.Config{}
	t.Cleanup(func() {
		database.DB = origDB
		config.AppConfig = origConfig
		sqlDB.Close()
	})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointment := &models.Appointment{
		BaseModel:     models.BaseModel{ID: 12},
		StudentID:     7,
		PreferredDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		PreferredTime: "9:00 AM-10:00 AM",
		Status:        models.StatusCancelled,
	}
	if err := notifyAppointmentOutcome(appointment, models.StatusCancelled, "schedule conflict"); err != nil {
		t.Fatalf("fan-out failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
