package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	"counselign/services/mailer"
	notifsvc "counselign/services/notifications"
	"counselign/services/scheduling"
	"counselign/utils"
)

type FollowUpController struct{}

// CreateFollowUpRequest schedules a follow-up off a completed appointment
type CreateFollowUpRequest struct {
	AppointmentID    uint   `json:"appointment_id" validate:"required"`
	PreferredDate    string `json:"preferred_date" validate:"required"`
	PreferredTime    string `json:"preferred_time" validate:"required"`
	ConsultationType string `json:"consultation_type" validate:"required,oneof=Individual Group"`
	Description      string `json:"description"`
}

// Create schedules a follow-up session. Counselors only; the parent
// appointment must be completed.
func (fc *FollowUpController) Create(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateFollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse("2006-01-02", req.PreferredDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid preferred_date, expected YYYY-MM-DD",
		})
	}
	if _, _, ok := scheduling.ParseRange(req.PreferredTime); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid preferred_time, expected a range like 9:00 AM-10:00 AM",
		})
	}

	followUp := models.FollowUpAppointment{
		AppointmentID:    req.AppointmentID,
		CounselorID:      profile.ID,
		PreferredDate:    date,
		PreferredTime:    req.PreferredTime,
		ConsultationType: req.ConsultationType,
		Description:      utils.SanitizeString(req.Description),
	}

	resolver := scheduling.NewResolver(database.DB)
	if err := resolver.BookFollowUp(&followUp); err != nil {
		if isSlotConflict(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	database.DB.Preload("Student").Preload("Counselor").First(&followUp, followUp.ID)

	// Tell the student a follow-up was scheduled for them
	notif := notifsvc.NewService()
	id := followUp.ID
	message := fmt.Sprintf("A follow-up session (#%d) has been scheduled for you on %s at %s.",
		followUp.FollowUpSequence, req.PreferredDate, req.PreferredTime)
	if err := notif.EnqueueOrCreate([]uint{followUp.StudentID},
		notifsvc.Queued("Follow-Up Scheduled", message, "info", &id)); err != nil {
		middleware.LogActivity(c, "NOTIFY_FAILED", "follow_ups", followUp.ID, fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CREATE", "follow_ups", followUp.ID, fiber.Map{
		"appointment_id": req.AppointmentID,
		"sequence":       followUp.FollowUpSequence,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Follow-up session scheduled",
		"follow_up": utils.ToFollowUpDTO(followUp),
	})
}

// GetMine lists follow-ups for the current user: students see their own,
// counselors see the ones they scheduled.
func (fc *FollowUpController) GetMine(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	query := database.DB.Preload("Student").Preload("Counselor")
	switch user.Role {
	case "student":
		query = query.Where("student_id = ?", user.ID)
	case "counselor":
		var profile models.Counselor
		if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Counselor profile not found"})
		}
		query = query.Where("counselor_id = ?", profile.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var followUps []models.FollowUpAppointment
	if err := query.Order("preferred_date DESC, follow_up_sequence DESC").
		Find(&followUps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch follow-ups",
		})
	}

	dtos := make([]utils.FollowUpDTO, 0, len(followUps))
	for _, f := range followUps {
		dtos = append(dtos, utils.ToFollowUpDTO(f))
	}

	return c.JSON(fiber.Map{"follow_ups": dtos})
}

// UpdateStatus moves a follow-up through its workflow (counselor only)
func (fc *FollowUpController) UpdateStatus(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid follow-up ID"})
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=approved completed cancelled"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var followUp models.FollowUpAppointment
	if err := database.DB.Preload("Student").
		Where("id = ? AND counselor_id = ?", uint(id), profile.ID).
		First(&followUp).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Follow-up not found"})
	}

	if err := scheduling.CanTransitionFollowUp(followUp.Status, req.Status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if scheduling.RequiresReason(req.Status) && req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A reason is required when cancelling",
		})
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Reason != "" {
		updates["reason"] = utils.SanitizeString(req.Reason)
	}
	if err := database.DB.Model(&followUp).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update follow-up",
		})
	}

	if scheduling.NotifiesStudent(req.Status) {
		date := followUp.PreferredDate.Format("2006-01-02")
		title := fmt.Sprintf("Follow-Up %s", req.Status)
		message := fmt.Sprintf("Your follow-up session #%d on %s (%s) has been %s.",
			followUp.FollowUpSequence, date, followUp.PreferredTime, req.Status)
		if req.Reason != "" {
			message += " Reason: " + req.Reason
		}
		typ := "success"
		if req.Status != models.StatusApproved {
			typ = "warning"
		}

		notif := notifsvc.NewService()
		if err := notif.NotifyAppointmentStatus(followUp.StudentID, followUp.ID, title, message, typ); err != nil {
			middleware.LogActivity(c, "NOTIFY_FAILED", "follow_ups", followUp.ID, fiber.Map{"error": err.Error()})
		}

		if followUp.Student.Email != "" {
			subject, body := mailer.FollowUpStatusEmail(
				followUp.Student.Username, followUp.FollowUpSequence, req.Status, date, followUp.PreferredTime, req.Reason)
			mailer.New().SendAsync(followUp.Student.Email, subject, body)
		}
	}

	middleware.LogActivity(c, "UPDATE_STATUS", "follow_ups", followUp.ID, fiber.Map{
		"status": req.Status,
		"reason": req.Reason,
	})

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Follow-up %s", req.Status),
	})
}
