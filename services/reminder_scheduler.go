package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"counselign/database"
	"counselign/models"
	"counselign/services/mailer"
	notifsvc "counselign/services/notifications"
)

// ReminderScheduler sends day-of reminders for approved sessions and expires
// pending requests whose preferred date has already passed.
type ReminderScheduler struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewReminderScheduler() *ReminderScheduler {
	return &ReminderScheduler{
		db:   database.GetDB(),
		cron: cron.New(),
	}
}

// Start registers the cron jobs and launches the scheduler.
func (rs *ReminderScheduler) Start() {
	// 07:00 every day: remind students and counselors of today's sessions
	if _, err := rs.cron.AddFunc("0 7 * * *", rs.SendDailyReminders); err != nil {
		logrus.WithError(err).Error("Failed to register daily reminder job")
	}
	// Every hour: expire stale pending requests
	if _, err := rs.cron.AddFunc("0 * * * *", rs.ExpireStalePending); err != nil {
		logrus.WithError(err).Error("Failed to register pending-expiry job")
	}
	rs.cron.Start()
	logrus.Info("Reminder scheduler started")
}

// Stop halts the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.cron.Stop()
}

// SendDailyReminders notifies everyone with an approved appointment or
// follow-up scheduled for today.
func (rs *ReminderScheduler) SendDailyReminders() {
	today := time.Now().Format("2006-01-02")
	notif := notifsvc.NewService()

	var appointments []models.Appointment
	err := rs.db.Preload("Counselor").
		Where("preferred_date = ? AND status = ?", today, models.StatusApproved).
		Find(&appointments).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to load today's appointments for reminders")
		return
	}

	for _, a := range appointments {
		id := a.ID
		message := fmt.Sprintf("Reminder: you have a counseling appointment today at %s.", a.PreferredTime)
		if err := notif.EnqueueOrCreate([]uint{a.StudentID}, notifsvc.Queued("Appointment Reminder", message, "info", &id)); err != nil {
			logrus.WithError(err).WithField("appointment_id", a.ID).Warn("Failed to enqueue student reminder")
		}
		if a.Counselor != nil {
			counselorMsg := fmt.Sprintf("Reminder: you have a counseling session today at %s.", a.PreferredTime)
			if err := notif.EnqueueOrCreate([]uint{a.Counselor.UserID}, notifsvc.Queued("Session Reminder", counselorMsg, "info", &id)); err != nil {
				logrus.WithError(err).WithField("appointment_id", a.ID).Warn("Failed to enqueue counselor reminder")
			}
		}
	}

	var followUps []models.FollowUpAppointment
	err = rs.db.Preload("Counselor").
		Where("preferred_date = ? AND status = ?", today, models.StatusApproved).
		Find(&followUps).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to load today's follow-ups for reminders")
		return
	}

	for _, f := range followUps {
		id := f.ID
		message := fmt.Sprintf("Reminder: you have follow-up session #%d today at %s.", f.FollowUpSequence, f.PreferredTime)
		if err := notif.EnqueueOrCreate([]uint{f.StudentID}, notifsvc.Queued("Follow-Up Reminder", message, "info", &id)); err != nil {
			logrus.WithError(err).WithField("follow_up_id", f.ID).Warn("Failed to enqueue follow-up reminder")
		}
	}

	logrus.WithFields(logrus.Fields{
		"appointments": len(appointments),
		"follow_ups":   len(followUps),
	}).Info("Daily reminders sent")
}

// ExpireStalePending cancels pending requests whose preferred date is in the
// past so that dead requests stop holding slots.
func (rs *ReminderScheduler) ExpireStalePending() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	var stale []models.Appointment
	err := rs.db.Preload("Student").
		Where("preferred_date <= ? AND status = ?", yesterday, models.StatusPending).
		Find(&stale).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to load stale pending appointments")
		return
	}
	if len(stale) == 0 {
		return
	}

	const expiryReason = "Automatically cancelled: the requested date has passed without counselor action."

	notif := notifsvc.NewService()
	for _, a := range stale {
		updates := map[string]interface{}{
			"status": models.StatusCancelled,
			"reason": expiryReason,
		}
		if err := rs.db.Model(&models.Appointment{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
			logrus.WithError(err).WithField("appointment_id", a.ID).Error("Failed to expire pending appointment")
			continue
		}
		id := a.ID
		date := a.PreferredDate.Format("2006-01-02")
		message := fmt.Sprintf("Your appointment request for %s (%s) was cancelled because the date passed before it could be reviewed.",
			date, a.PreferredTime)
		if err := notif.EnqueueOrCreate([]uint{a.StudentID}, notifsvc.Queued("Appointment Expired", message, "warning", &id)); err != nil {
			logrus.WithError(err).WithField("appointment_id", a.ID).Warn("Failed to enqueue expiry notification")
		}
		if a.Student.Email != "" {
			subject, body := mailer.AppointmentStatusEmail(
				a.Student.Username, models.StatusCancelled, date, a.PreferredTime, expiryReason)
			mailer.New().SendAsync(a.Student.Email, subject, body)
		}
	}

	logrus.WithField("expired", len(stale)).Info("Expired stale pending appointments")
}
