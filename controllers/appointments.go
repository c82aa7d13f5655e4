package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	"counselign/services/scheduling"
	"counselign/utils"
)

type AppointmentController struct{}

// BookAppointmentRequest is the student booking form payload
type BookAppointmentRequest struct {
	CounselorID      *uint  `json:"counselor_id"` // omit for no preference
	PreferredDate    string `json:"preferred_date" validate:"required"`
	PreferredTime    string `json:"preferred_time" validate:"required"`
	MethodType       string `json:"method_type" validate:"required,oneof=In-person Online"`
	ConsultationType string `json:"consultation_type" validate:"required,oneof=Individual Group"`
	Purpose          string `json:"purpose" validate:"required"`
}

// isSlotConflict reports whether err is one of the slot eligibility errors,
// which map to 409 rather than 500.
func isSlotConflict(err error) bool {
	return errors.Is(err, scheduling.ErrAlreadyBooked) ||
		errors.Is(err, scheduling.ErrGroupSlotPresent) ||
		errors.Is(err, scheduling.ErrGroupCapacityFull) ||
		errors.Is(err, scheduling.ErrFollowUpConflict)
}

// Book creates a pending appointment after running the slot eligibility rules
func (apc *AppointmentController) Book(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var req BookAppointmentRequest
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
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Preferred date cannot be in the past",
		})
	}

	if _, _, ok := scheduling.ParseRange(req.PreferredTime); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid preferred_time, expected a range like 9:00 AM-10:00 AM",
		})
	}

	resolver := scheduling.NewResolver(database.DB)

	// When a counselor is preferred, the request must fall inside one of
	// their recurring weekly windows.
	if req.CounselorID != nil {
		var counselor models.Counselor
		if err := database.DB.First(&counselor, *req.CounselorID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Counselor not found"})
		}
		available, err := resolver.IsCounselorAvailable(counselor.ID, date, req.PreferredTime)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check counselor availability",
			})
		}
		if !available {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "The counselor is not available at the requested time",
			})
		}
	}

	appointment := models.Appointment{
		StudentID:        student.ID,
		CounselorID:      req.CounselorID,
		PreferredDate:    date,
		PreferredTime:    req.PreferredTime,
		MethodType:       req.MethodType,
		ConsultationType: req.ConsultationType,
		Purpose:          utils.SanitizeString(req.Purpose),
	}

	if err := resolver.BookAppointment(&appointment); err != nil {
		if isSlotConflict(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	database.DB.Preload("Student").Preload("Counselor").First(&appointment, appointment.ID)

	middleware.LogActivity(c, "CREATE", "appointments", appointment.ID, fiber.Map{
		"date":              req.PreferredDate,
		"time":              req.PreferredTime,
		"consultation_type": req.ConsultationType,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment request submitted",
		"appointment": utils.ToAppointmentDTO(appointment),
	})
}

// GetMyAppointments lists the current student's appointments
func (apc *AppointmentController) GetMyAppointments(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	query := database.DB.Where("student_id = ?", student.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Preload("Student").Preload("Counselor").
		Order("preferred_date DESC, created_at DESC").
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

// GetBookedTimes returns slot occupancy for a date so the booking form can
// grey out held time ranges.
func (apc *AppointmentController) GetBookedTimes(c *fiber.Ctx) error {
	dateStr := c.Query("date")
	if dateStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date query parameter is required"})
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	var counselorID *uint
	if cid := c.Query("counselor_id"); cid != "" {
		id, err := strconv.ParseUint(cid, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid counselor_id"})
		}
		v := uint(id)
		counselorID = &v
	}

	resolver := scheduling.NewResolver(database.DB)
	slots, err := resolver.BookedTimes(date, counselorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch booked times",
		})
	}

	return c.JSON(fiber.Map{
		"date":  dateStr,
		"slots": slots,
	})
}

// Cancel lets a student cancel their own pending or approved appointment.
// A reason is mandatory.
func (apc *AppointmentController) Cancel(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var appointment models.Appointment
	if err := database.DB.Preload("Student").
		Where("id = ? AND student_id = ?", uint(id), student.ID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Appointment not found"})
	}

	if err := scheduling.CanStudentCancel(appointment.Status, req.Reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{
		"status": models.StatusCancelled,
		"reason": utils.SanitizeString(req.Reason),
	}
	if err := database.DB.Model(&appointment).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel appointment",
		})
	}

	// Self-cancellation fans out like any other cancellation
	appointment.Status = models.StatusCancelled
	if err := notifyAppointmentOutcome(&appointment, models.StatusCancelled, req.Reason); err != nil {
		middleware.LogActivity(c, "NOTIFY_FAILED", "appointments", appointment.ID, fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CANCEL", "appointments", appointment.ID, fiber.Map{
		"reason": req.Reason,
	})

	return c.JSON(fiber.Map{"message": "Appointment cancelled"})
}
