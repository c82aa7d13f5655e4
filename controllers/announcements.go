package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	notifsvc "counselign/services/notifications"
	"counselign/utils"
)

type AnnouncementController struct{}

// GetAnnouncements lists active announcements (any authenticated user).
// Admins can pass all=true to include deactivated ones.
func (anc *AnnouncementController) GetAnnouncements(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	query := database.DB.Preload("PostedBy").Order("created_at DESC")
	if !(user.Role == "admin" && c.Query("all") == "true") {
		query = query.Where("active = ?", true)
	}

	var announcements []models.Announcement
	if err := query.Find(&announcements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch announcements",
		})
	}

	return c.JSON(fiber.Map{"announcements": announcements})
}

// Create posts an announcement and fans out a notification to all active
// users (admin only).
func (anc *AnnouncementController) Create(c *fiber.Ctx) error {
	admin, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var req struct {
		Title   string `json:"title" validate:"required,max=255"`
		Content string `json:"content" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	announcement := models.Announcement{
		Title:      utils.SanitizeString(req.Title),
		Content:    utils.SanitizeString(req.Content),
		PostedByID: admin.ID,
		Active:     true,
	}
	if err := database.DB.Create(&announcement).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create announcement",
		})
	}

	// Fan out to everyone with an active account
	var userIDs []uint
	database.DB.Model(&models.User{}).Where("status = ?", "active").Pluck("id", &userIDs)
	if len(userIDs) > 0 {
		notif := notifsvc.NewService()
		id := announcement.ID
		if err := notif.EnqueueOrCreate(userIDs,
			notifsvc.Queued(announcement.Title, announcement.Content, "info", &id)); err != nil {
			middleware.LogActivity(c, "NOTIFY_FAILED", "announcements", announcement.ID, fiber.Map{"error": err.Error()})
		}
	}

	middleware.LogActivity(c, "CREATE", "announcements", announcement.ID, fiber.Map{
		"title": announcement.Title,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Announcement posted",
		"announcement": announcement,
	})
}

// Update edits an announcement's title, content or active flag (admin only)
func (anc *AnnouncementController) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid announcement ID"})
	}

	var announcement models.Announcement
	if err := database.DB.First(&announcement, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Active  *bool  `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.Content != "" {
		updates["content"] = utils.SanitizeString(req.Content)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := database.DB.Model(&announcement).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update announcement",
		})
	}

	middleware.LogActivity(c, "UPDATE", "announcements", announcement.ID, updates)

	return c.JSON(fiber.Map{"message": "Announcement updated"})
}

// Delete removes an announcement (admin only)
func (anc *AnnouncementController) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid announcement ID"})
	}

	result := database.DB.Delete(&models.Announcement{}, uint(id))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete announcement",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
	}

	middleware.LogActivity(c, "DELETE", "announcements", uint(id), nil)

	return c.JSON(fiber.Map{"message": "Announcement deleted"})
}
