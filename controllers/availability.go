package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	"counselign/services/scheduling"
	"counselign/utils"
)

type AvailabilityController struct{}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func isValidWeekday(day string) bool {
	for _, d := range weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// groupByWeekday buckets availability rows Monday through Friday, keeping
// every weekday key in the response even when empty.
func groupByWeekday(rows []models.CounselorAvailability) fiber.Map {
	grouped := fiber.Map{}
	for _, day := range weekdays {
		grouped[day] = []string{}
	}
	for _, row := range rows {
		window := "all day"
		if row.TimeScheduled != nil {
			window = *row.TimeScheduled
		}
		if list, ok := grouped[row.Weekday].([]string); ok {
			grouped[row.Weekday] = append(list, window)
		}
	}
	return grouped
}

// GetMine returns the current counselor's weekly windows grouped by weekday
func (avc *AvailabilityController) GetMine(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var rows []models.CounselorAvailability
	if err := database.DB.Where("counselor_id = ?", profile.ID).
		Order("weekday, time_scheduled").
		Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch availability",
		})
	}

	return c.JSON(fiber.Map{"availability": groupByWeekday(rows)})
}

// GetForCounselor returns a counselor's weekly windows (any authenticated user)
func (avc *AvailabilityController) GetForCounselor(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid counselor ID"})
	}

	var counselor models.Counselor
	if err := database.DB.First(&counselor, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Counselor not found"})
	}

	var rows []models.CounselorAvailability
	if err := database.DB.Where("counselor_id = ?", counselor.ID).
		Order("weekday, time_scheduled").
		Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch availability",
		})
	}

	return c.JSON(fiber.Map{
		"counselor":    counselor.FullName,
		"availability": groupByWeekday(rows),
	})
}

// AddAvailabilityRequest adds one weekly window. Omitting both endpoints
// marks the whole day open.
type AddAvailabilityRequest struct {
	Weekday string `json:"weekday" validate:"required"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Add appends a weekly window. Re-posting an identical window is a no-op,
// so the endpoint is safe to call repeatedly from the schedule form.
func (avc *AvailabilityController) Add(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var req AddAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !isValidWeekday(req.Weekday) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Weekday must be Monday through Friday",
		})
	}

	var timeScheduled *string
	if req.From != "" || req.To != "" {
		from := strings.TrimSpace(req.From)
		to := strings.TrimSpace(req.To)
		if !scheduling.IsValidClock12(from) || !scheduling.IsValidClock12(to) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Times must be 12-hour clock values like 9:00 AM",
			})
		}
		fromMin, _ := scheduling.ToMinutes(from)
		toMin, _ := scheduling.ToMinutes(to)
		if fromMin >= toMin {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "The start time must be before the end time",
			})
		}
		window := from + "-" + to
		timeScheduled = &window
	}

	// Idempotent append: skip when an identical window already exists
	query := database.DB.Model(&models.CounselorAvailability{}).
		Where("counselor_id = ? AND weekday = ?", profile.ID, req.Weekday)
	if timeScheduled == nil {
		query = query.Where("time_scheduled IS NULL")
	} else {
		query = query.Where("time_scheduled = ?", *timeScheduled)
	}
	var count int64
	query.Count(&count)
	if count > 0 {
		return c.JSON(fiber.Map{"message": "Availability already recorded"})
	}

	row := models.CounselorAvailability{
		CounselorID:   profile.ID,
		Weekday:       req.Weekday,
		TimeScheduled: timeScheduled,
	}
	if err := database.DB.Create(&row).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save availability",
		})
	}

	middleware.LogActivity(c, "CREATE", "availability", row.ID, fiber.Map{
		"weekday": req.Weekday,
		"window":  timeScheduled,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Availability added",
		"availability": row,
	})
}

// Remove deletes one weekly window by exact weekday and window match
func (avc *AvailabilityController) Remove(c *fiber.Ctx) error {
	profile, err := counselorProfile(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Weekday string `json:"weekday" validate:"required"`
		Window  string `json:"window"` // "9:00 AM-12:00 PM", empty = the all-day row
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !isValidWeekday(req.Weekday) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Weekday must be Monday through Friday",
		})
	}

	query := database.DB.Where("counselor_id = ? AND weekday = ?", profile.ID, req.Weekday)
	if req.Window == "" {
		query = query.Where("time_scheduled IS NULL")
	} else {
		query = query.Where("time_scheduled = ?", req.Window)
	}

	result := query.Delete(&models.CounselorAvailability{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove availability",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No matching availability window"})
	}

	middleware.LogActivity(c, "DELETE", "availability", 0, fiber.Map{
		"weekday": req.Weekday,
		"window":  req.Window,
	})

	return c.JSON(fiber.Map{"message": "Availability removed"})
}
