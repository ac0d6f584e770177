package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
	"github.com/schoolhealth/consult-api/internal/service/notification"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

const (
	MinDuration = 5 * time.Minute
	MaxDuration = 4 * time.Hour
)

// Service tracks appointment requests and their status transitions.
type Service struct {
	repo     repository.AppointmentRepository
	centers  repository.CenterRepository
	notifier *notification.Service
}

func NewService(repo repository.AppointmentRepository, centers repository.CenterRepository, notifier *notification.Service) *Service {
	return &Service{repo: repo, centers: centers, notifier: notifier}
}

// Request books a pending appointment, rejecting slots that overlap a
// non-cancelled appointment at the same center.
func (s *Service) Request(ctx context.Context, centerID, studentID uuid.UUID, startAt time.Time, duration time.Duration, reason string) (*model.Appointment, error) {
	if studentID == uuid.Nil {
		return nil, apperror.Validation("student ID is required")
	}
	if startAt.IsZero() {
		return nil, apperror.Validation("start time is required")
	}
	if duration < MinDuration || duration > MaxDuration {
		return nil, apperror.Validation("duration must be between %v and %v", MinDuration, MaxDuration)
	}
	if reason == "" {
		return nil, apperror.Validation("reason is required")
	}

	if _, err := s.centers.Get(ctx, centerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("center")
		}
		return nil, fmt.Errorf("failed to get center: %w", err)
	}

	endAt := startAt.Add(duration)
	conflicts, err := s.repo.FindOverlapping(ctx, centerID, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, apperror.SlotConflict("slot %s-%s already booked",
			startAt.Format("2006-01-02 15:04"), endAt.Format("15:04"))
	}

	appointment := &model.Appointment{
		CenterID:  centerID,
		StudentID: studentID,
		StartAt:   startAt,
		EndAt:     endAt,
		Reason:    reason,
		Modality:  model.ModalityInPerson,
		Status:    model.AppointmentStatusPending,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appointment, nil
}

// SetStatus applies a status transition. Illegal transitions leave the
// appointment unchanged. Cancellation emits a cancellation notice for
// the student; other transitions emit nothing.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason string) (*model.Appointment, *model.Notice, error) {
	if !status.Valid() {
		return nil, nil, apperror.Validation("unknown status %q", status)
	}

	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !model.CanTransition(appointment.Status, status) {
		return nil, nil, apperror.InvalidTransition(string(appointment.Status), string(status))
	}

	var reasonPtr *string
	if status == model.AppointmentStatusCancelled && cancelReason != "" {
		reasonPtr = &cancelReason
	}
	if err := s.repo.UpdateStatus(ctx, id, status, reasonPtr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.NotFound("appointment")
		}
		return nil, nil, fmt.Errorf("failed to update status: %w", err)
	}
	appointment.Status = status
	appointment.CancelReason = reasonPtr

	var notice *model.Notice
	if status == model.AppointmentStatusCancelled {
		notice, err = s.notifier.Emit(ctx, cancellationNotice(appointment, cancelReason))
		if err != nil {
			return nil, nil, err
		}
	}
	return appointment, notice, nil
}

// SwitchToRemote moves a pending or confirmed appointment to remote
// modality and notifies the student.
func (s *Service) SwitchToRemote(ctx context.Context, id uuid.UUID) (*model.Appointment, *model.Notice, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if appointment.Status.Terminal() {
		return nil, nil, apperror.InvalidTransition(string(appointment.Status), string(appointment.Status))
	}

	if appointment.Modality != model.ModalityRemote {
		if err := s.repo.SetModality(ctx, id, model.ModalityRemote); err != nil {
			return nil, nil, fmt.Errorf("failed to set modality: %w", err)
		}
		appointment.Modality = model.ModalityRemote
	}

	notice, err := s.notifier.Emit(ctx, remoteSwitchNotice(appointment))
	if err != nil {
		return nil, nil, err
	}
	return appointment, notice, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListForCenter(ctx context.Context, centerID uuid.UUID, dateRange model.DateRange) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListForCenter(ctx, centerID, dateRange)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func cancellationNotice(appointment *model.Appointment, reason string) *model.Notice {
	message := fmt.Sprintf("Your consultation on %s was cancelled.",
		appointment.StartAt.Format("2006-01-02 15:04"))
	if reason != "" {
		message += " Reason: " + reason
	}
	return &model.Notice{
		Type:       model.NoticeTypeCancellation,
		CenterID:   appointment.CenterID,
		StudentIDs: []uuid.UUID{appointment.StudentID},
		Title:      "Appointment cancelled",
		Message:    message,
		OccursAt:   appointment.StartAt,
		Actions:    []string{model.ActionRequestAppointment, model.ActionOpenChat},
		DedupeKey:  "cancellation:" + appointment.ID.String(),
	}
}

func remoteSwitchNotice(appointment *model.Appointment) *model.Notice {
	return &model.Notice{
		Type:       model.NoticeTypeRemoteSwitch,
		CenterID:   appointment.CenterID,
		StudentIDs: []uuid.UUID{appointment.StudentID},
		Title:      "Consultation moved online",
		Message: fmt.Sprintf("Your consultation on %s will happen remotely.",
			appointment.StartAt.Format("2006-01-02 15:04")),
		OccursAt:  appointment.StartAt,
		Actions:   []string{model.ActionOpenChat},
		DedupeKey: "remote_switch:" + appointment.ID.String(),
	}
}
