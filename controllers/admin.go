package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	"counselign/services/mailer"
	notifsvc "counselign/services/notifications"
	"counselign/utils"
)

type AdminController struct{}

// GetDashboard returns the admin overview counters
func (adc *AdminController) GetDashboard(c *fiber.Ctx) error {
	counts := fiber.Map{}

	type counter struct {
		key   string
		query *gorm.DB
	}
	counters := []counter{
		{"students", database.DB.Model(&models.User{}).Where("role = ? AND status = ?", "student", "active")},
		{"counselors", database.DB.Model(&models.User{}).Where("role = ? AND status = ?", "counselor", "active")},
		{"pending_counselors", database.DB.Model(&models.User{}).Where("role = ? AND status = ?", "counselor", "pending")},
		{"pending_appointments", database.DB.Model(&models.Appointment{}).Where("status = ?", models.StatusPending)},
		{"approved_appointments", database.DB.Model(&models.Appointment{}).Where("status = ?", models.StatusApproved)},
		{"completed_appointments", database.DB.Model(&models.Appointment{}).Where("status = ?", models.StatusCompleted)},
		{"active_follow_ups", database.DB.Model(&models.FollowUpAppointment{}).Where("status IN ?", []string{models.StatusPending, models.StatusApproved})},
		{"announcements", database.DB.Model(&models.Announcement{}).Where("active = ?", true)},
	}
	for _, item := range counters {
		var n int64
		item.query.Count(&n)
		counts[item.key] = n
	}

	return c.JSON(fiber.Map{"dashboard": counts})
}

// GetAllAppointments lists every appointment with filters (admin only)
func (adc *AdminController) GetAllAppointments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Appointment{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("preferred_date = ?", date)
	}
	if cid := c.Query("counselor_id"); cid != "" {
		query = query.Where("counselor_id = ?", cid)
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.Preload("Student").Preload("Counselor").
		Order("preferred_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	dtos := make([]utils.AppointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		dtos = append(dtos, utils.ToAppointmentDTO(a))
	}

	return c.JSON(fiber.Map{
		"appointments": dtos,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// UpdateAppointmentStatus lets an admin move any appointment through the
// workflow, same rules as the counselor endpoint.
func (adc *AdminController) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var appointment models.Appointment
	if err := database.DB.Preload("Student").First(&appointment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}

	return applyAppointmentStatus(c, &appointment, &req, nil)
}

// GetPendingCounselors returns counselor accounts awaiting approval
func (adc *AdminController) GetPendingCounselors(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Preload("Counselor").
		Where("role = ? AND status = ?", "counselor", "pending").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pending counselors",
		})
	}

	return c.JSON(fiber.Map{"counselors": users})
}

// ApproveCounselor activates a pending counselor account
func (adc *AdminController) ApproveCounselor(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := database.DB.Where("id = ? AND role = ? AND status = ?", uint(id), "counselor", "pending").
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending counselor not found"})
	}

	if err := database.DB.Model(&user).Update("status", "active").Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve counselor",
		})
	}

	notif := notifsvc.NewService()
	if err := notif.EnqueueOrCreate([]uint{user.ID},
		notifsvc.Queued("Account Approved", "Your counselor account has been approved. You can now sign in.", "success", nil)); err != nil {
		middleware.LogActivity(c, "NOTIFY_FAILED", "users", user.ID, fiber.Map{"error": err.Error()})
	}
	if user.Email != "" {
		mailer.New().SendAsync(user.Email, "Your counselor account has been approved",
			"Hello "+user.Username+",\n\nYour counselor account has been approved. You can now sign in and set up your weekly availability.\n\nGuidance & Counseling Office")
	}

	middleware.LogActivity(c, "APPROVE", "users", user.ID, fiber.Map{"username": user.Username})

	return c.JSON(fiber.Map{"message": "Counselor approved"})
}

// RejectCounselor removes a pending counselor registration entirely
func (adc *AdminController) RejectCounselor(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := database.DB.Where("id = ? AND role = ? AND status = ?", uint(id), "counselor", "pending").
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending counselor not found"})
	}

	email := user.Email
	username := user.Username

	// Rejected registrations leave no account behind
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Counselor{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reject counselor",
		})
	}

	if email != "" {
		mailer.New().SendAsync(email, "Your counselor registration was not approved",
			"Hello "+username+",\n\nYour counselor registration was reviewed and not approved. Contact the Guidance & Counseling Office for details.\n\nGuidance & Counseling Office")
	}

	middleware.LogActivity(c, "REJECT", "users", uint(id), fiber.Map{"username": username})

	return c.JSON(fiber.Map{"message": "Counselor registration rejected"})
}
