package center

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

// Service manages the center roster. Centers are created at onboarding
// and rarely change afterwards.
type Service struct {
	repo repository.CenterRepository
}

func NewService(repo repository.CenterRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, center *model.Center) (*model.Center, error) {
	if center.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if center.Address == "" {
		return nil, apperror.Validation("address is required")
	}
	if err := s.repo.Create(ctx, center); err != nil {
		return nil, fmt.Errorf("failed to create center: %w", err)
	}
	return center, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Center, error) {
	center, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("center")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get center: %w", err)
	}
	return center, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Center, error) {
	centers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return centers, nil
}

func (s *Service) EnrollStudent(ctx context.Context, centerID, studentID uuid.UUID) error {
	if studentID == uuid.Nil {
		return apperror.Validation("student ID is required")
	}
	err := s.repo.EnrollStudent(ctx, centerID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("center")
	}
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}
