package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/service/appointment"
	"github.com/schoolhealth/consult-api/internal/service/consultation"
	"github.com/schoolhealth/consult-api/internal/service/notification"
	"github.com/schoolhealth/consult-api/internal/service/schedule"
	"github.com/schoolhealth/consult-api/pkg/apperror"
	"github.com/schoolhealth/consult-api/pkg/keylock"
	"github.com/schoolhealth/consult-api/pkg/metrics"
)

// Service is the single entry point the transport layer calls. It
// serializes mutations per center, student and appointment, so
// concurrent writes to the same key cannot interleave, and maps context
// expiry to a timeout error. Reads take no locks; the repositories hand
// out consistent snapshots.
type Service struct {
	schedules     *schedule.Service
	appointments  *appointment.Service
	consultations *consultation.Service
	notifier      *notification.Service
	locks         *keylock.KeyLock
	metrics       *metrics.Metrics
}

func NewService(
	schedules *schedule.Service,
	appointments *appointment.Service,
	consultations *consultation.Service,
	notifier *notification.Service,
) *Service {
	return &Service{
		schedules:     schedules,
		appointments:  appointments,
		consultations: consultations,
		notifier:      notifier,
		locks:         keylock.New(),
	}
}

// WithMetrics attaches the metric bundle. Without it the service runs
// unmetered, which is what the tests do.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// MutationResult pairs a mutation's outcome with the notices it emitted,
// so callers (and tests) see exactly which events a call produced.
type MutationResult[T any] struct {
	Entity  T
	Notices []*model.Notice
}

func (s *Service) ModifySchedule(ctx context.Context, centerID uuid.UUID, req *model.UpdateScheduleRequest) (*MutationResult[*model.VisitSchedule], error) {
	var result *MutationResult[*model.VisitSchedule]
	err := s.mutate(ctx, "center:"+centerID.String(), func() error {
		updated, notice, err := s.schedules.Update(ctx, centerID, req)
		if err != nil {
			return err
		}
		result = &MutationResult[*model.VisitSchedule]{Entity: updated, Notices: notices(notice)}
		return nil
	})
	if err == nil && s.metrics != nil {
		s.metrics.ScheduleUpdates.Inc()
		s.countNotices(result.Notices)
	}
	return result, err
}

func (s *Service) GetSchedule(ctx context.Context, centerID uuid.UUID) (*model.VisitSchedule, error) {
	schedule, err := s.schedules.Get(ctx, centerID)
	return schedule, s.mapTimeout(ctx, err)
}

func (s *Service) ScheduleHistory(ctx context.Context, centerID uuid.UUID) ([]*model.VisitSchedule, error) {
	history, err := s.schedules.History(ctx, centerID)
	return history, s.mapTimeout(ctx, err)
}

func (s *Service) RequestAppointment(ctx context.Context, centerID, studentID uuid.UUID, startAt time.Time, duration time.Duration, reason string) (*MutationResult[*model.Appointment], error) {
	var result *MutationResult[*model.Appointment]
	// Conflict check and insert run under the center lock, so two
	// requests for the same slot cannot both pass the check.
	err := s.mutate(ctx, "center:"+centerID.String(), func() error {
		created, err := s.appointments.Request(ctx, centerID, studentID, startAt, duration, reason)
		if err != nil {
			return err
		}
		result = &MutationResult[*model.Appointment]{Entity: created}
		return nil
	})
	if s.metrics != nil {
		switch {
		case err == nil:
			s.metrics.AppointmentsRequested.Inc()
		case apperror.IsCode(err, apperror.CodeSlotConflict):
			s.metrics.AppointmentConflicts.Inc()
		}
	}
	return result, err
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status model.AppointmentStatus, cancelReason string) (*MutationResult[*model.Appointment], error) {
	var result *MutationResult[*model.Appointment]
	err := s.mutate(ctx, "appointment:"+appointmentID.String(), func() error {
		updated, notice, err := s.appointments.SetStatus(ctx, appointmentID, status, cancelReason)
		if err != nil {
			return err
		}
		result = &MutationResult[*model.Appointment]{Entity: updated, Notices: notices(notice)}
		return nil
	})
	if err == nil && s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
		s.countNotices(result.Notices)
	}
	return result, err
}

func (s *Service) SwitchAppointmentToRemote(ctx context.Context, appointmentID uuid.UUID) (*MutationResult[*model.Appointment], error) {
	var result *MutationResult[*model.Appointment]
	err := s.mutate(ctx, "appointment:"+appointmentID.String(), func() error {
		updated, notice, err := s.appointments.SwitchToRemote(ctx, appointmentID)
		if err != nil {
			return err
		}
		result = &MutationResult[*model.Appointment]{Entity: updated, Notices: notices(notice)}
		return nil
	})
	if err == nil && s.metrics != nil {
		s.countNotices(result.Notices)
	}
	return result, err
}

func (s *Service) RecordConsultation(ctx context.Context, record *model.ConsultationRecord) (*MutationResult[*model.ConsultationRecord], error) {
	var result *MutationResult[*model.ConsultationRecord]
	err := s.mutate(ctx, "student:"+record.StudentID.String(), func() error {
		stored, err := s.consultations.Record(ctx, record)
		if err != nil {
			return err
		}
		result = &MutationResult[*model.ConsultationRecord]{Entity: stored}
		return nil
	})
	if err == nil && s.metrics != nil {
		s.metrics.ConsultationsRecorded.Inc()
	}
	return result, err
}

func (s *Service) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	return appt, s.mapTimeout(ctx, err)
}

func (s *Service) StudentHistory(ctx context.Context, studentID uuid.UUID) ([]*model.ConsultationRecord, error) {
	history, err := s.consultations.History(ctx, studentID)
	return history, s.mapTimeout(ctx, err)
}

func (s *Service) UpcomingAppointmentsForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListForStudent(ctx, studentID)
	return appointments, s.mapTimeout(ctx, err)
}

func (s *Service) UpcomingAppointmentsForCenter(ctx context.Context, centerID uuid.UUID, dateRange model.DateRange) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListForCenter(ctx, centerID, dateRange)
	return appointments, s.mapTimeout(ctx, err)
}

func (s *Service) Notifications(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) ([]*model.Notice, error) {
	list, err := s.notifier.ListFor(ctx, studentID, centerIDs)
	return list, s.mapTimeout(ctx, err)
}

func (s *Service) UnreadNotifications(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) (int, error) {
	count, err := s.notifier.UnreadCount(ctx, studentID, centerIDs)
	return count, s.mapTimeout(ctx, err)
}

func (s *Service) MarkNotificationRead(ctx context.Context, noticeID uuid.UUID) error {
	return s.mutate(ctx, "notice:"+noticeID.String(), func() error {
		return s.notifier.MarkRead(ctx, noticeID)
	})
}

// mutate runs fn under the per-key lock. A context already expired or
// cancelled aborts before fn touches the store, so no partial write can
// result from a late cancellation.
func (s *Service) mutate(ctx context.Context, key string, fn func() error) error {
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := ctx.Err(); err != nil {
		return s.mapTimeout(ctx, err)
	}
	return s.mapTimeout(ctx, fn())
}

func (s *Service) mapTimeout(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Timeout(err)
	}
	return err
}

func (s *Service) countNotices(list []*model.Notice) {
	for _, n := range list {
		s.metrics.NoticesEmitted.WithLabelValues(string(n.Type)).Inc()
	}
}

func notices(list ...*model.Notice) []*model.Notice {
	out := make([]*model.Notice, 0, len(list))
	for _, n := range list {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
