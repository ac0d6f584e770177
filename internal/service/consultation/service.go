package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

// Service keeps the append-style ledger of consultation outcomes per
// student. Records are never removed; amending rewrites a record in
// place under its original identifier.
type Service struct {
	repo repository.ConsultationRepository
}

func NewService(repo repository.ConsultationRepository) *Service {
	return &Service{repo: repo}
}

// Record stores a consultation outcome. A record carrying the ID of an
// existing entry amends it; any other record is inserted, keeping a
// supplied ID when present.
func (s *Service) Record(ctx context.Context, record *model.ConsultationRecord) (*model.ConsultationRecord, error) {
	if err := validate(record); err != nil {
		return nil, err
	}

	if record.ID != uuid.Nil {
		existing, err := s.repo.Get(ctx, record.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up record: %w", err)
		}
		if existing != nil {
			if existing.StudentID != record.StudentID {
				return nil, apperror.Validation("record %s belongs to another student", record.ID)
			}
			if err := s.repo.Amend(ctx, record); err != nil {
				return nil, fmt.Errorf("failed to amend record: %w", err)
			}
			return record, nil
		}
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}
	return record, nil
}

// History returns the student's consultation records, most recent first.
// Each call re-reads the store, so the sequence restarts from the top.
func (s *Service) History(ctx context.Context, studentID uuid.UUID) ([]*model.ConsultationRecord, error) {
	if studentID == uuid.Nil {
		return nil, apperror.Validation("student ID is required")
	}
	records, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

func validate(record *model.ConsultationRecord) error {
	if record.StudentID == uuid.Nil {
		return apperror.Validation("student ID is required")
	}
	if record.Date.IsZero() {
		return apperror.Validation("date is required")
	}
	if record.StartTime == "" || record.EndTime == "" {
		return apperror.Validation("time range is required")
	}
	start, err := model.ParseClock(record.StartTime)
	if err != nil {
		return apperror.Validation("invalid start time %q", record.StartTime)
	}
	end, err := model.ParseClock(record.EndTime)
	if err != nil {
		return apperror.Validation("invalid end time %q", record.EndTime)
	}
	if start >= end {
		return apperror.Validation("start time %s must be before end time %s", record.StartTime, record.EndTime)
	}
	if !record.Modality.Valid() {
		return apperror.Validation("unknown modality %q", record.Modality)
	}
	return nil
}
