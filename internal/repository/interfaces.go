package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
)

// All repository interfaces in one file. Together they form the narrow
// durable-store surface the services depend on; postgres and memory
// implementations both satisfy them.
type (
	CenterRepository interface {
		Create(ctx context.Context, center *model.Center) error
		Get(ctx context.Context, id uuid.UUID) (*model.Center, error)
		List(ctx context.Context) ([]*model.Center, error)
		EnrollStudent(ctx context.Context, centerID, studentID uuid.UUID) error
	}

	// ScheduleRepository holds each center's recurring visit schedule.
	// Supersede atomically deactivates the current schedule and installs
	// the replacement.
	ScheduleRepository interface {
		GetActive(ctx context.Context, centerID uuid.UUID) (*model.VisitSchedule, error)
		Supersede(ctx context.Context, centerID uuid.UUID, next *model.VisitSchedule) error
		History(ctx context.Context, centerID uuid.UUID) ([]*model.VisitSchedule, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error
		SetModality(ctx context.Context, id uuid.UUID, modality model.Modality) error
		ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Appointment, error)
		ListForCenter(ctx context.Context, centerID uuid.UUID, dateRange model.DateRange) ([]*model.Appointment, error)
		FindOverlapping(ctx context.Context, centerID uuid.UUID, start, end time.Time) ([]*model.Appointment, error)
	}

	ConsultationRepository interface {
		Insert(ctx context.Context, record *model.ConsultationRecord) error
		Amend(ctx context.Context, record *model.ConsultationRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.ConsultationRecord, error)
		ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.ConsultationRecord, error)
	}

	NoticeRepository interface {
		Create(ctx context.Context, notice *model.Notice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notice, error)
		GetByDedupeKey(ctx context.Context, key string) (*model.Notice, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		ListFor(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) ([]*model.Notice, error)
		CountUnread(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) (int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.Profile) error
		GetByIdentifier(ctx context.Context, identifier string) (*model.Profile, error)
	}
)

// ErrNotFound is returned by implementations when a lookup matches
// nothing; services translate it to a not-found application error.
var ErrNotFound = errors.New("not found")
