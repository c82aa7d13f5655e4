package scheduling

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"counselign/models"
)

var (
	slotDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	slotTime = "9:00 AM-10:00 AM"
)

var appointmentColumns = []string{
	"id", "student_id", "counselor_id", "preferred_date", "preferred_time", "consultation_type", "status",
}

func newTestResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewResolver(db), mock
}

func TestBookAppointmentIndividualAlreadyBooked(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(1, 7, nil, slotDate, slotTime, models.ConsultationIndividual, models.StatusPending))
	mock.ExpectRollback()

	appointment := &models.Appointment{
		StudentID:        8,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookAppointment(appointment); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookAppointmentIndividualBlockedByGroup(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(1, 7, nil, slotDate, slotTime, models.ConsultationGroup, models.StatusApproved))
	mock.ExpectRollback()

	appointment := &models.Appointment{
		StudentID:        8,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookAppointment(appointment); !errors.Is(err, ErrGroupSlotPresent) {
		t.Fatalf("expected ErrGroupSlotPresent, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookAppointmentGroupCapacity(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		wantErr  error
	}{
		{"one below capacity", 4, nil},
		{"at capacity", 5, ErrGroupCapacityFull},
		{"over capacity", 6, ErrGroupCapacityFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, mock := newTestResolver(t)

			rows := sqlmock.NewRows(appointmentColumns)
			for i := 0; i < tt.existing; i++ {
				rows.AddRow(uint(i+1), uint(i+10), nil, slotDate, slotTime, models.ConsultationGroup, models.StatusApproved)
			}

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT (.+) FROM `appointments`").WillReturnRows(rows)
			if tt.wantErr == nil {
				mock.ExpectExec("INSERT INTO `appointments`").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			appointment := &models.Appointment{
				StudentID:        99,
				PreferredDate:    slotDate,
				PreferredTime:    slotTime,
				ConsultationType: models.ConsultationGroup,
			}
			err := resolver.BookAppointment(appointment)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && appointment.Status != models.StatusPending {
				t.Errorf("expected pending status on insert, got %q", appointment.Status)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

// Booking the same slot twice must fail on the second attempt once the first
// pending row holds it.
func TestBookAppointmentDuplicateRoundTrip(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns))
	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(1, 7, nil, slotDate, slotTime, models.ConsultationIndividual, models.StatusPending))
	mock.ExpectRollback()

	first := &models.Appointment{
		StudentID:        7,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookAppointment(first); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	second := &models.Appointment{
		StudentID:        8,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookAppointment(second); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("second booking should report already booked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookAppointmentFollowUpConflict(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns))
	mock.ExpectQuery("SELECT count(.+) FROM `follow_up_appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	counselorID := uint(3)
	appointment := &models.Appointment{
		StudentID:        8,
		CounselorID:      &counselorID,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookAppointment(appointment); !errors.Is(err, ErrFollowUpConflict) {
		t.Fatalf("expected ErrFollowUpConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookFollowUpParentMustBeCompleted(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusApproved, models.StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			resolver, mock := newTestResolver(t)

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT (.+) FROM `appointments`").
				WillReturnRows(sqlmock.NewRows(appointmentColumns).
					AddRow(1, 7, 3, slotDate, slotTime, models.ConsultationIndividual, status))
			mock.ExpectRollback()

			followUp := &models.FollowUpAppointment{
				AppointmentID:    1,
				CounselorID:      3,
				PreferredDate:    slotDate,
				PreferredTime:    slotTime,
				ConsultationType: models.ConsultationIndividual,
			}
			err := resolver.BookFollowUp(followUp)
			if err == nil || !strings.Contains(err.Error(), "completed") {
				t.Fatalf("expected completed-parent error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestBookFollowUpAssignsSequenceAndStudent(t *testing.T) {
	resolver, mock := newTestResolver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow(1, 7, 3, slotDate, slotTime, models.ConsultationIndividual, models.StatusCompleted))
	mock.ExpectQuery("SELECT (.+) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows(appointmentColumns))
	mock.ExpectQuery("SELECT count(.+) FROM `follow_up_appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"max_sequence"}).AddRow(2))
	mock.ExpectExec("INSERT INTO `follow_up_appointments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	followUp := &models.FollowUpAppointment{
		AppointmentID:    1,
		CounselorID:      3,
		PreferredDate:    slotDate,
		PreferredTime:    slotTime,
		ConsultationType: models.ConsultationIndividual,
	}
	if err := resolver.BookFollowUp(followUp); err != nil {
		t.Fatalf("expected follow-up to book, got %v", err)
	}
	if followUp.FollowUpSequence != 3 {
		t.Errorf("expected sequence 3, got %d", followUp.FollowUpSequence)
	}
	if followUp.StudentID != 7 {
		t.Errorf("expected student taken from parent, got %d", followUp.StudentID)
	}
	if followUp.Status != models.StatusPending {
		t.Errorf("expected pending status, got %q", followUp.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
