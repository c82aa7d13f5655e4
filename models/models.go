package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model
type User struct {
	BaseModel
	Username    string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password    string     `json:"-" gorm:"size:255;not null"`
	Email       string     `json:"email" gorm:"size:255;uniqueIndex"`
	Phone       string     `json:"phone" gorm:"size:20"`
	Role        string     `json:"role" gorm:"size:50;not null;default:'student';type:enum('student','counselor','admin')"` // student, counselor, admin
	Status      string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','pending')"` // pending = counselor awaiting admin approval
	Photo       string     `json:"photo" gorm:"size:500"`
	StudentID   string     `json:"student_id" gorm:"size:50"` // university ID number, students only
	Course      string     `json:"course" gorm:"size:100"`
	YearLevel   string     `json:"year_level" gorm:"size:20"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Relationships
	Counselor *Counselor `json:"counselor,omitempty" gorm:"foreignKey:UserID"`
}

// Counselor is the 1:1 profile extension of a user with role=counselor
type Counselor struct {
	BaseModel
	UserID        uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	FullName      string `json:"full_name" gorm:"size:200;not null"`
	Degree        string `json:"degree" gorm:"size:200"`
	ContactNumber string `json:"contact_number" gorm:"size:20"`
	OfficeRoom    string `json:"office_room" gorm:"size:100"`

	// Relationships
	User         User                    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Availability []CounselorAvailability `json:"availability,omitempty" gorm:"foreignKey:CounselorID"`
}

// CounselorAvailability is one recurring weekly window.
// A NULL TimeScheduled means the counselor is available the whole day.
type CounselorAvailability struct {
	BaseModel
	CounselorID   uint    `json:"counselor_id" gorm:"not null;index"`
	Weekday       string  `json:"day_of_week" gorm:"size:20;not null;type:enum('Monday','Tuesday','Wednesday','Thursday','Friday')"`
	TimeScheduled *string `json:"time_scheduled" gorm:"size:100"` // "H:MM AM/PM-H:MM AM/PM" or NULL for all day

	// Relationships
	Counselor Counselor `json:"counselor,omitempty" gorm:"foreignKey:CounselorID"`
}

// Consultation types
const (
	ConsultationIndividual = "Individual"
	ConsultationGroup      = "Group"
)

// Appointment / follow-up statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// GroupSlotCapacity is the maximum number of group consultations sharing one slot.
const GroupSlotCapacity = 5

// Appointment model
type Appointment struct {
	BaseModel
	StudentID        uint      `json:"student_id" gorm:"not null;index"`
	CounselorID      *uint     `json:"counselor_id" gorm:"index"` // NULL = no counselor preference
	PreferredDate    time.Time `json:"preferred_date" gorm:"type:date;not null;index"`
	PreferredTime    string    `json:"preferred_time" gorm:"size:100;not null"` // "H:MM AM/PM-H:MM AM/PM"
	MethodType       string    `json:"method_type" gorm:"size:50;type:enum('In-person','Online')"`
	ConsultationType string    `json:"consultation_type" gorm:"size:50;not null;type:enum('Individual','Group')"`
	Purpose          string    `json:"purpose" gorm:"type:text"`
	Status           string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','approved','rejected','cancelled','completed')"`
	Reason           string    `json:"reason" gorm:"type:text"` // rejection/cancellation reason

	// Relationships
	Student   User                  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Counselor *Counselor            `json:"counselor,omitempty" gorm:"foreignKey:CounselorID"`
	FollowUps []FollowUpAppointment `json:"follow_ups,omitempty" gorm:"foreignKey:AppointmentID"`
}

// FollowUpAppointment chains off a completed parent appointment
type FollowUpAppointment struct {
	BaseModel
	AppointmentID    uint      `json:"appointment_id" gorm:"not null;index"`
	CounselorID      uint      `json:"counselor_id" gorm:"not null;index"`
	StudentID        uint      `json:"student_id" gorm:"not null;index"`
	PreferredDate    time.Time `json:"preferred_date" gorm:"type:date;not null;index"`
	PreferredTime    string    `json:"preferred_time" gorm:"size:100;not null"`
	ConsultationType string    `json:"consultation_type" gorm:"size:50;not null;type:enum('Individual','Group')"`
	FollowUpSequence int       `json:"follow_up_sequence" gorm:"not null;default:1"`
	Status           string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','approved','completed','cancelled')"`
	Description      string    `json:"description" gorm:"type:text"`
	Reason           string    `json:"reason" gorm:"type:text"`

	// Relationships
	Appointment Appointment `json:"appointment,omitempty" gorm:"foreignKey:AppointmentID"`
	Counselor   Counselor   `json:"counselor,omitempty" gorm:"foreignKey:CounselorID"`
	Student     User        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Type      string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"` // info, warning, error, success
	RelatedID *uint      `json:"related_id"` // appointment / follow-up / announcement id
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at"`
	Data      JSON       `json:"data,omitempty" gorm:"type:json"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Message is a direct message between two users
type Message struct {
	BaseModel
	SenderID   uint       `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint       `json:"receiver_id" gorm:"not null;index"`
	Body       string     `json:"body" gorm:"type:text;not null"`
	Read       bool       `json:"read" gorm:"default:false"`
	ReadAt     *time.Time `json:"read_at"`

	// Relationships
	Sender   User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

// Announcement model
type Announcement struct {
	BaseModel
	Title      string `json:"title" gorm:"size:255;not null"`
	Content    string `json:"content" gorm:"type:text;not null"`
	PostedByID uint   `json:"posted_by_id" gorm:"not null"`
	Active     bool   `json:"active" gorm:"default:true"`

	// Relationships
	PostedBy User `json:"posted_by,omitempty" gorm:"foreignKey:PostedByID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
