package schedule

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

// Service owns the recurring visit schedule of each center.
type Service struct {
	repo     repository.ScheduleRepository
	centers  repository.CenterRepository
	notifier *notification.Service
}

func NewService(repo repository.ScheduleRepository, centers repository.CenterRepository, notifier *notification.Service) *Service {
	return &Service{repo: repo, centers: centers, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, centerID uuid.UUID) (*model.VisitSchedule, error) {
	schedule, err := s.repo.GetActive(ctx, centerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("schedule")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

// Update replaces the center's active schedule and emits a
// schedule-change notice for the center's students. Applying the same
// payload twice yields the same schedule and a single notice.
func (s *Service) Update(ctx context.Context, centerID uuid.UUID, req *model.UpdateScheduleRequest) (*model.VisitSchedule, *model.Notice, error) {
	if err := validate(req); err != nil {
		return nil, nil, err
	}

	if _, err := s.centers.Get(ctx, centerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.NotFound("center")
		}
		return nil, nil, fmt.Errorf("failed to get center: %w", err)
	}

	current, err := s.repo.GetActive(ctx, centerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	next := &model.VisitSchedule{
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	}

	if current != nil && samePlan(current, next) {
		// Re-emitting under the same dedupe key returns the stored notice.
		notice, err := s.notifier.Emit(ctx, changeNotice(current, req.Reason))
		if err != nil {
			return nil, nil, err
		}
		return current, notice, nil
	}

	if err := s.repo.Supersede(ctx, centerID, next); err != nil {
		return nil, nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	notice, err := s.notifier.Emit(ctx, changeNotice(next, req.Reason))
	if err != nil {
		return nil, nil, err
	}
	return next, notice, nil
}

// History returns the center's schedules newest first, the active one
// included.
func (s *Service) History(ctx context.Context, centerID uuid.UUID) ([]*model.VisitSchedule, error) {
	history, err := s.repo.History(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule history: %w", err)
	}
	return history, nil
}

func validate(req *model.UpdateScheduleRequest) error {
	if !req.Weekday.Valid() {
		return apperror.Validation("weekday must be monday through friday, got %q", req.Weekday)
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return apperror.Validation("invalid start time %q", req.StartTime)
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return apperror.Validation("invalid end time %q", req.EndTime)
	}
	if start >= end {
		return apperror.Validation("start time %s must be before end time %s", req.StartTime, req.EndTime)
	}
	if req.Location == "" {
		return apperror.Validation("location is required")
	}
	return nil
}

func samePlan(a, b *model.VisitSchedule) bool {
	return a.Weekday == b.Weekday &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.Location == b.Location
}

func changeNotice(schedule *model.VisitSchedule, reason string) *model.Notice {
	message := fmt.Sprintf("Consultation visits now run %s.", schedule.NextVisit(time.Now()))
	if reason != "" {
		message += " Reason: " + reason
	}
	// The key is scoped to the installed schedule row, not the plan's
	// content: superseding installs a fresh row, so reverting to an
	// earlier plan still announces itself, while re-applying the active
	// plan reuses the row and dedupes to the existing notice.
	return &model.Notice{
		Type:      model.NoticeTypeScheduleChange,
		CenterID:  schedule.CenterID,
		Title:     "Visit schedule changed",
		Message:   message,
		OccursAt:  time.Now(),
		Actions:   []string{model.ActionRequestAppointment},
		DedupeKey: "schedule_change:" + schedule.ID.String(),
	}
}
