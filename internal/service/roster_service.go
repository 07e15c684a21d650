package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/dto"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
)

type rosterStore interface {
	Bus() models.BusInfo
	Students() []models.Student
	FindStudent(id string) (*models.Student, bool)
	MutateStudent(id string, fn func(*models.Student)) (before, after *models.Student, ok bool)
	SetDriverName(name string)
	SetCurrentLocation(loc models.BusLocation)
}

type attendanceLog interface {
	Insert(rec models.AttendanceRecord)
	List(limit int) []models.AttendanceRecord
}

// RosterService implements the roster operations: attendance toggling,
// student edits, driver rename and payment settlement. Input validation
// lives here, at the caller layer; the underlying store accepts anything.
type RosterService struct {
	roster        rosterStore
	attendance    attendanceLog
	notifications *NotificationService
	events        *EventBus
	validator     *validator.Validate
	logger        *zap.Logger
	billingCycle  time.Duration

	now func() time.Time
}

// NewRosterService constructs a RosterService.
func NewRosterService(
	roster rosterStore,
	attendance attendanceLog,
	notifications *NotificationService,
	events *EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
	billingCycle time.Duration,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if billingCycle <= 0 {
		billingCycle = 30 * 24 * time.Hour
	}
	return &RosterService{
		roster:        roster,
		attendance:    attendance,
		notifications: notifications,
		events:        events,
		validator:     validate,
		logger:        logger,
		billingCycle:  billingCycle,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Bus returns the current bus state.
func (s *RosterService) Bus(ctx context.Context) models.BusInfo {
	return s.roster.Bus()
}

// Students returns the roster.
func (s *RosterService) Students(ctx context.Context) []models.Student {
	return s.roster.Students()
}

// Student looks up a single roster entry.
func (s *RosterService) Student(ctx context.Context, id string) (*models.Student, error) {
	student, ok := s.roster.FindStudent(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not on roster")
	}
	return student, nil
}

// ToggleAttendance flips the student's on-bus state, stamping boardedAt or
// alightedAt for the matching transition only. When a location sample is
// present an attendance record is logged with the student name snapshotted
// at call time; without one the toggle still happens but nothing is logged.
// Notifications are never touched here.
func (s *RosterService) ToggleAttendance(ctx context.Context, id string, sample *models.BusLocation) (*models.Student, error) {
	now := s.now()
	_, after, ok := s.roster.MutateStudent(id, func(st *models.Student) {
		st.OnBus = !st.OnBus
		ts := now
		if st.OnBus {
			st.BoardedAt = &ts
		} else {
			st.AlightedAt = &ts
		}
	})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not on roster")
	}

	if sample != nil {
		action := models.ActionAlighted
		if after.OnBus {
			action = models.ActionBoarded
		}
		s.attendance.Insert(models.AttendanceRecord{
			ID:          uuid.NewString(),
			StudentID:   after.ID,
			StudentName: after.Name,
			Action:      action,
			Timestamp:   now,
			Location:    *sample,
		})
	} else {
		s.logger.Debug("attendance toggle without location fix, event not logged",
			zap.String("student_id", id))
	}

	s.events.Publish(StoreEvent{Type: EventStudentToggled, StudentID: id})
	return after, nil
}

// UpdateStudent shallow-merges the sparse patch into the student, and the
// payment patch into the nested PaymentInfo so omitted sub-fields are
// preserved.
func (s *RosterService) UpdateStudent(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	_, after, ok := s.roster.MutateStudent(id, func(st *models.Student) {
		if req.Name != nil {
			st.Name = *req.Name
		}
		if req.Age != nil {
			st.Age = *req.Age
		}
		if req.Grade != nil {
			st.Grade = *req.Grade
		}
		if req.Address != nil {
			st.Address = *req.Address
		}
		if req.PickupLocation != nil {
			st.PickupLocation = *req.PickupLocation
		}
		if req.DropoffLocation != nil {
			st.DropoffLocation = *req.DropoffLocation
		}
		if req.Payment != nil {
			if req.Payment.MonthlyAmount != nil {
				st.Payment.MonthlyAmount = *req.Payment.MonthlyAmount
			}
			if req.Payment.DueDate != nil {
				st.Payment.DueDate = *req.Payment.DueDate
			}
			if req.Payment.LastPaymentDate != nil {
				st.Payment.LastPaymentDate = req.Payment.LastPaymentDate
			}
			if req.Payment.IsPaid != nil {
				st.Payment.IsPaid = *req.Payment.IsPaid
			}
			if req.Payment.IsOverdue != nil {
				st.Payment.IsOverdue = *req.Payment.IsOverdue
			}
		}
	})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not on roster")
	}

	s.events.Publish(StoreEvent{Type: EventStudentUpdated, StudentID: id})
	return after, nil
}

// UpdateDriverName replaces the driver name unconditionally.
func (s *RosterService) UpdateDriverName(ctx context.Context, req dto.UpdateDriverRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver payload")
	}
	s.roster.SetDriverName(req.Name)
	s.events.Publish(StoreEvent{Type: EventDriverUpdated})
	return nil
}

// MarkPaymentAsPaid settles the student's payment: isPaid=true,
// isOverdue=false, lastPaymentDate=now and a fresh due date one billing
// cycle out. Prior unread overdue notifications for the student flip to
// read, and a system "Payment Received" notification is added using the
// pre-update amount and name. Idempotent on the payment flags.
func (s *RosterService) MarkPaymentAsPaid(ctx context.Context, id string) (*models.Student, error) {
	now := s.now()
	due := now.Add(s.billingCycle)

	before, after, ok := s.roster.MutateStudent(id, func(st *models.Student) {
		st.Payment.IsPaid = true
		st.Payment.IsOverdue = false
		ts := now
		st.Payment.LastPaymentDate = &ts
		st.Payment.DueDate = due
	})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not on roster")
	}

	s.notifications.MarkOverdueRead(id)
	s.notifications.AddItem(
		models.NotificationSystem,
		"Payment Received",
		fmt.Sprintf("Payment of $%s received for %s", formatAmount(before.Payment.MonthlyAmount), before.Name),
		before.ID,
		before.Name,
	)

	s.logger.Info("payment marked as paid",
		zap.String("student_id", id),
		zap.Time("next_due_date", due))
	s.events.Publish(StoreEvent{Type: EventPaymentMarkedPaid, StudentID: id})
	return after, nil
}

// AttendanceHistory returns the newest records up to limit; a non-positive
// limit returns everything.
func (s *RosterService) AttendanceHistory(ctx context.Context, limit int) []models.AttendanceRecord {
	return s.attendance.List(limit)
}

// ApplyLocation records a position sample as the bus's latest known
// location, last delivered wins.
func (s *RosterService) ApplyLocation(loc models.BusLocation) {
	s.roster.SetCurrentLocation(loc)
	s.events.Publish(StoreEvent{Type: EventLocationUpdated})
}
