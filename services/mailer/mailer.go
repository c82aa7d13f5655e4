package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"counselign/config"
)

// Mailer sends transactional email over plain SMTP. Delivery is best-effort:
// every appointment state transition must succeed even when the mail server
// is down, so callers use SendAsync and failures are only logged.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func New() *Mailer {
	return &Mailer{
		host:     config.AppConfig.SMTPHost,
		port:     config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUsername,
		password: config.AppConfig.SMTPPassword,
		from:     config.AppConfig.SMTPFrom,
	}
}

// Send delivers one message synchronously.
func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" {
		// SMTP not configured (development); log instead of sending.
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// SendAsync fires the message in a goroutine; errors are logged and dropped.
func (m *Mailer) SendAsync(to, subject, body string) {
	if to == "" {
		return
	}
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
			}).Warn("Failed to send email")
		}
	}()
}

// AppointmentStatusEmail renders the standard status-change message.
func AppointmentStatusEmail(studentName, status, date, timeRange, reason string) (subject, body string) {
	subject = fmt.Sprintf("Your counseling appointment has been %s", status)
	body = fmt.Sprintf("Hello %s,\n\nYour counseling appointment on %s (%s) has been %s.",
		studentName, date, timeRange, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nGuidance & Counseling Office"
	return subject, body
}

// FollowUpStatusEmail renders the follow-up status-change message.
func FollowUpStatusEmail(studentName string, sequence int, status, date, timeRange, reason string) (subject, body string) {
	subject = fmt.Sprintf("Your follow-up session #%d has been %s", sequence, status)
	body = fmt.Sprintf("Hello %s,\n\nYour follow-up counseling session #%d on %s (%s) has been %s.",
		studentName, sequence, date, timeRange, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nGuidance & Counseling Office"
	return subject, body
}
