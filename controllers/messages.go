package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"counselign/database"
	"counselign/middleware"
	"counselign/models"
	notifsvc "counselign/services/notifications"
	"counselign/utils"
)

type MessageController struct{}

// Send delivers a direct message to another user
func (mc *MessageController) Send(c *fiber.Ctx) error {
	sender, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var req struct {
		ReceiverID uint   `json:"receiver_id" validate:"required"`
		Body       string `json:"body" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.ReceiverID == sender.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot message yourself"})
	}

	var receiver models.User
	if err := database.DB.Where("id = ? AND status = ?", req.ReceiverID, "active").First(&receiver).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipient not found"})
	}

	message := models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Body:       utils.SanitizeString(req.Body),
	}
	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send message",
		})
	}

	notif := notifsvc.NewService()
	id := message.ID
	if err := notif.EnqueueOrCreate([]uint{receiver.ID},
		notifsvc.Queued("New Message", "You have a new message from "+sender.Username+".", "info", &id)); err != nil {
		middleware.LogActivity(c, "NOTIFY_FAILED", "messages", message.ID, fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CREATE", "messages", message.ID, fiber.Map{
		"receiver_id": receiver.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
	})
}

// GetConversation returns the message thread between the current user and
// another user, newest last, and marks received messages as read.
func (mc *MessageController) GetConversation(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	otherID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var messages []models.Message
	err = database.DB.Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			user.ID, uint(otherID), uint(otherID), user.ID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch conversation",
		})
	}

	// Opening the thread marks everything addressed to us as read
	now := time.Now()
	database.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND `read` = ?", uint(otherID), user.ID, false).
		Updates(map[string]interface{}{"read": true, "read_at": &now})

	return c.JSON(fiber.Map{"messages": messages})
}

// GetUnreadCount returns the number of unread messages for the current user
func (mc *MessageController) GetUnreadCount(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var count int64
	database.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND `read` = ?", user.ID, false).
		Count(&count)

	return c.JSON(fiber.Map{"unread_count": count})
}
