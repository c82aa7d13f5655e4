package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
)

type ReportsController struct{}

// ExportAppointments streams an XLSX report of appointments in a date range
// (admin only). Defaults to the current month.
func (rc *ReportsController) ExportAppointments(c *fiber.Ctx) error {
	now := time.Now()
	fromStr := c.Query("from", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"))
	toStr := c.Query("to", now.Format("2006-01-02"))

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from date, expected YYYY-MM-DD"})
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to date, expected YYYY-MM-DD"})
	}
	if to.Before(from) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to date must not be before from date"})
	}

	query := database.DB.Preload("Student").Preload("Counselor").
		Where("preferred_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("preferred_date ASC, preferred_time ASC").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Appointments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Student ID", "Counselor", "Date", "Time", "Method", "Type", "Purpose", "Status", "Reason", "Requested At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, a := range appointments {
		counselorName := "No preference"
		if a.Counselor != nil {
			counselorName = a.Counselor.FullName
		}
		values := []interface{}{
			a.ID,
			a.Student.Username,
			a.Student.StudentID,
			counselorName,
			a.PreferredDate.Format("2006-01-02"),
			a.PreferredTime,
			a.MethodType,
			a.ConsultationType,
			a.Purpose,
			a.Status,
			a.Reason,
			a.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	// Summary sheet with per-status counts
	const summary = "Summary"
	f.NewSheet(summary)
	statusCounts := map[string]int{}
	for _, a := range appointments {
		statusCounts[a.Status]++
	}
	f.SetCellValue(summary, "A1", "Status")
	f.SetCellValue(summary, "B1", "Count")
	row := 2
	for _, status := range []string{models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCancelled, models.StatusCompleted} {
		f.SetCellValue(summary, fmt.Sprintf("A%d", row), status)
		f.SetCellValue(summary, fmt.Sprintf("B%d", row), statusCounts[status])
		row++
	}
	f.SetCellValue(summary, fmt.Sprintf("A%d", row), "total")
	f.SetCellValue(summary, fmt.Sprintf("B%d", row), len(appointments))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	middleware.LogActivity(c, "EXPORT", "reports", 0, fiber.Map{
		"from":  fromStr,
		"to":    toStr,
		"count": len(appointments),
	})

	fileName := fmt.Sprintf("appointments_%s_%s.xlsx", fromStr, toStr)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, fileName))
	return c.Send(buf.Bytes())
}
