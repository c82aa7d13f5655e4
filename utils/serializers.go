package utils

import (
	"time"

	"counselign/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

type CounselorShort struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Degree   string `json:"degree,omitempty"`
}

type NotificationDTO struct {
	ID        uint       `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	UserID    uint       `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	RelatedID *uint      `json:"related_id,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	User      UserShort  `json:"user"`
}

// ToNotificationDTO maps a models.Notification to the compact DTO.
// Assumes the caller preloaded User where possible.
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		RelatedID: n.RelatedID,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		User:      ToUserShort(n.User),
	}
}

func ToUserShort(u models.User) UserShort {
	return UserShort{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Photo:    u.Photo,
	}
}

type AppointmentDTO struct {
	ID               uint            `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	StudentID        uint            `json:"student_id"`
	PreferredDate    string          `json:"preferred_date"`
	PreferredTime    string          `json:"preferred_time"`
	MethodType       string          `json:"method_type"`
	ConsultationType string          `json:"consultation_type"`
	Purpose          string          `json:"purpose"`
	Status           string          `json:"status"`
	Reason           string          `json:"reason,omitempty"`
	Student          UserShort       `json:"student"`
	Counselor        *CounselorShort `json:"counselor,omitempty"` // nil = no preference
}

// ToAppointmentDTO flattens an appointment row for API responses.
// Dates are formatted as plain YYYY-MM-DD to match the booking inputs.
func ToAppointmentDTO(a models.Appointment) AppointmentDTO {
	dto := AppointmentDTO{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		StudentID:        a.StudentID,
		PreferredDate:    a.PreferredDate.Format("2006-01-02"),
		PreferredTime:    a.PreferredTime,
		MethodType:       a.MethodType,
		ConsultationType: a.ConsultationType,
		Purpose:          a.Purpose,
		Status:           a.Status,
		Reason:           a.Reason,
		Student:          ToUserShort(a.Student),
	}
	if a.Counselor != nil {
		dto.Counselor = &CounselorShort{
			ID:       a.Counselor.ID,
			FullName: a.Counselor.FullName,
			Degree:   a.Counselor.Degree,
		}
	}
	return dto
}

type FollowUpDTO struct {
	ID               uint           `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	AppointmentID    uint           `json:"appointment_id"`
	StudentID        uint           `json:"student_id"`
	PreferredDate    string         `json:"preferred_date"`
	PreferredTime    string         `json:"preferred_time"`
	ConsultationType string         `json:"consultation_type"`
	FollowUpSequence int            `json:"follow_up_sequence"`
	Status           string         `json:"status"`
	Description      string         `json:"description,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	Student          UserShort      `json:"student"`
	Counselor        CounselorShort `json:"counselor"`
}

func ToFollowUpDTO(f models.FollowUpAppointment) FollowUpDTO {
	return FollowUpDTO{
		ID:               f.ID,
		CreatedAt:        f.CreatedAt,
		AppointmentID:    f.AppointmentID,
		StudentID:        f.StudentID,
		PreferredDate:    f.PreferredDate.Format("2006-01-02"),
		PreferredTime:    f.PreferredTime,
		ConsultationType: f.ConsultationType,
		FollowUpSequence: f.FollowUpSequence,
		Status:           f.Status,
		Description:      f.Description,
		Reason:           f.Reason,
		Student:          ToUserShort(f.Student),
		Counselor: CounselorShort{
			ID:       f.Counselor.ID,
			FullName: f.Counselor.FullName,
			Degree:   f.Counselor.Degree,
		},
	}
}
