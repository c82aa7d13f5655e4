package seeders

import (
	"github.com/sirupsen/logrus"

	"counselign/database"
	"counselign/models"
	"counselign/utils"
)

// SeedDefaults creates the default admin account if no admin exists yet.
// The password must be changed after first login.
func SeedDefaults() {
	if database.DB == nil {
		logrus.Warn("Database not initialised, skipping seeding")
		return
	}

	var adminCount int64
	database.DB.Model(&models.User{}).Where("role = ?", "admin").Count(&adminCount)
	if adminCount > 0 {
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		logrus.WithError(err).Error("Failed to hash default admin password")
		return
	}

	admin := models.User{
		Username: "admin",
		Password: hashed,
		Email:    "admin@counselign.edu",
		Role:     "admin",
		Status:   "active",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		logrus.WithError(err).Error("Failed to seed default admin account")
		return
	}

	logrus.Info("Seeded default admin account (username: admin)")
}
