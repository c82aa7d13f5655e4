package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	"counselign/services/mailer"
	notifsvc "counselign/services/notifications"
	"counselign/services/scheduling"
	"counselign/utils"
)

type CounselorAppointmentController struct{}

// counselorProfile resolves the Counselor row of the current user.
func counselorProfile(c *fiber.Ctx) (*models.Counselor, error) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return nil, err
	}
	var profile models.Counselor
	if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("counselor profile not found")
	}
	return &profile, nil
}

// GetQueue lists appointments assigned to the current counselor plus
// unassigned (no-preference) requests. Defaults to the pending queue.
func (cac *CounselorAppointmentController) GetQueue(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	query := database.DB.Where("(counselor_id = ? OR counselor_id IS NULL)", profile.ID)
	if status := c.Query("status", models.StatusPending); status != "all" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("preferred_date = ?", date)
	}

	var appointments []models.Appointment
	if err := query.Preload("Student").Preload("Counselor").
		Order("preferred_date ASC, created_at ASC").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	dtos := make([]utils.AppointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		dtos = append(dtos, utils.ToAppointmentDTO(a))
	}

	return c.JSON(fiber.Map{"appointments": dtos})
}

// UpdateStatusRequest is shared by the counselor and admin status endpoints
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected cancelled completed"`
	Reason string `json:"reason"`
}

// UpdateStatus moves an appointment through the workflow. Approving a
// request claims it for the acting counselor when no preference was set.
// Approved, rejected and cancelled outcomes notify the student and send a
// best-effort email.
func (cac *CounselorAppointmentController) UpdateStatus(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

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
	if err := database.DB.Preload("Student").
		Where("id = ? AND (counselor_id = ? OR counselor_id IS NULL)", uint(id), profile.ID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}

	return applyAppointmentStatus(c, &appointment, &req, &profile.ID)
}

// applyAppointmentStatus runs the shared workflow validation, persistence and
// fan-out used by the counselor and admin endpoints.
func applyAppointmentStatus(c *fiber.Ctx, appointment *models.Appointment, req *UpdateStatusRequest, claimCounselorID *uint) error {
	if err := scheduling.CanTransitionAppointment(appointment.Status, req.Status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if scheduling.RequiresReason(req.Status) && req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A reason is required when rejecting or cancelling",
		})
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Reason != "" {
		updates["reason"] = utils.SanitizeString(req.Reason)
	}
	// Approving an unassigned request claims it for the acting counselor
	if req.Status == models.StatusApproved && appointment.CounselorID == nil && claimCounselorID != nil {
		updates["counselor_id"] = *claimCounselorID
	}

	if err := database.DB.Model(appointment).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update appointment",
		})
	}

	if scheduling.NotifiesStudent(req.Status) {
		if err := notifyAppointmentOutcome(appointment, req.Status, req.Reason); err != nil {
			middleware.LogActivity(c, "NOTIFY_FAILED", "appointments", appointment.ID, fiber.Map{"error": err.Error()})
		}
	}

	middleware.LogActivity(c, "UPDATE_STATUS", "appointments", appointment.ID, fiber.Map{
		"status": req.Status,
		"reason": req.Reason,
	})

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Appointment %s", req.Status),
	})
}

// notifyAppointmentOutcome records the status-change notification for the
// student and sends the best-effort email. Every transition to approved,
// rejected or cancelled runs through here, including student
// self-cancellation. The appointment must carry a preloaded Student for the
// email to go out.
func notifyAppointmentOutcome(appointment *models.Appointment, status, reason string) error {
	date := appointment.PreferredDate.Format("2006-01-02")
	title := fmt.Sprintf("Appointment %s", status)
	message := fmt.Sprintf("Your counseling appointment on %s (%s) has been %s.",
		date, appointment.PreferredTime, status)
	if reason != "" {
		message += " Reason: " + reason
	}
	typ := "success"
	if status != models.StatusApproved {
		typ = "warning"
	}

	if appointment.Student.Email != "" {
		subject, body := mailer.AppointmentStatusEmail(
			appointment.Student.Username, status, date, appointment.PreferredTime, reason)
		mailer.New().SendAsync(appointment.Student.Email, subject, body)
	}

	return notifsvc.NewService().NotifyAppointmentStatus(appointment.StudentID, appointment.ID, title, message, typ)
}
