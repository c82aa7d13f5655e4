package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"counselign/controllers"
	"counselign/middleware"
	"counselign/services"
	"counselign/services/websocket"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub) {
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	appointmentController := &controllers.AppointmentController{}
	counselorAppointmentController := &controllers.CounselorAppointmentController{}
	followUpController := &controllers.FollowUpController{}
	availabilityController := &controllers.AvailabilityController{}
	adminController := &controllers.AdminController{}
	reportsController := &controllers.ReportsController{}
	announcementController := &controllers.AnnouncementController{}
	messageController := &controllers.MessageController{}
	notificationController := &controllers.NotificationController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(services.NewHealthService("Counselign API", "1.0.0"))
	wsController := controllers.NewWebSocketController(wsHub)

	// API group
	api := app.Group("/api")

	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/register/student", authController.RegisterStudent)
	auth.Post("/register/counselor", authController.RegisterCounselor)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile", authController.UpdateProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/profile/photo", userController.UploadProfilePhoto)
	protected.Post("/auth/logout", authController.Logout)

	// Counselor directory and published availability (all roles)
	protected.Get("/counselors", userController.GetCounselors)
	protected.Get("/counselors/:id/availability", availabilityController.GetForCounselor)

	// Slot occupancy for the booking form
	protected.Get("/appointments/booked-times", appointmentController.GetBookedTimes)

	// Student routes
	student := protected.Group("/student", middleware.RequireStudent())
	student.Post("/appointments", appointmentController.Book)
	student.Get("/appointments/booked-times", appointmentController.GetBookedTimes)
	student.Get("/appointments", appointmentController.GetMyAppointments)
	student.Patch("/appointments/:id/cancel", appointmentController.Cancel)
	student.Get("/follow-ups", followUpController.GetMine)

	// Counselor routes
	counselor := protected.Group("/counselor", middleware.RequireCounselor())
	counselor.Get("/appointments", counselorAppointmentController.GetQueue)
	counselor.Patch("/appointments/:id/status", counselorAppointmentController.UpdateStatus)
	counselor.Post("/follow-ups", followUpController.Create)
	counselor.Get("/follow-ups", followUpController.GetMine)
	counselor.Patch("/follow-ups/:id/status", followUpController.UpdateStatus)
	counselor.Get("/availability", availabilityController.GetMine)
	counselor.Post("/availability", availabilityController.Add)
	counselor.Delete("/availability", availabilityController.Remove)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/dashboard", adminController.GetDashboard)
	admin.Get("/appointments", adminController.GetAllAppointments)
	admin.Patch("/appointments/:id/status", adminController.UpdateAppointmentStatus)
	admin.Get("/counselors/pending", adminController.GetPendingCounselors)
	admin.Post("/counselors/:id/approve", adminController.ApproveCounselor)
	admin.Post("/counselors/:id/reject", adminController.RejectCounselor)
	admin.Get("/users", userController.GetUsers)
	admin.Get("/users/:id", userController.GetUser)
	admin.Put("/users/:id", userController.UpdateUser)
	admin.Delete("/users/:id", userController.DeactivateUser)
	admin.Post("/users/:id/photo", userController.UploadProfilePhoto)
	admin.Get("/reports/appointments", reportsController.ExportAppointments)
	admin.Post("/announcements", announcementController.Create)
	admin.Put("/announcements/:id", announcementController.Update)
	admin.Delete("/announcements/:id", announcementController.Delete)
	admin.Get("/logs", logController.GetLogs)
	admin.Post("/logs/flush", logController.FlushCachedLogs)
	admin.Get("/logs/archives", logController.GetArchives)
	admin.Get("/logs/archives/:id/download", logController.DownloadArchive)
	admin.Get("/ws/stats", wsController.GetWebSocketStats)

	// Shared authenticated routes
	protected.Get("/announcements", announcementController.GetAnnouncements)
	protected.Post("/messages", messageController.Send)
	protected.Get("/messages/unread-count", messageController.GetUnreadCount)
	protected.Get("/messages/:id", messageController.GetConversation)
	protected.Get("/notifications", notificationController.GetNotifications)
	protected.Get("/notifications/unread-count", notificationController.GetUnreadCount)
	protected.Patch("/notifications/read-all", notificationController.MarkAllAsRead)
	protected.Patch("/notifications/:id/read", notificationController.MarkAsRead)
	protected.Delete("/notifications/:id", notificationController.DeleteNotification)

	// WebSocket endpoint (JWT passed as token query parameter)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
