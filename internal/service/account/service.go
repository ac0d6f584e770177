package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

// Service runs the one-shot account provisioning flow: ask the external
// identity provider for an account reference, then persist the profile.
// Credential handling stays entirely on the provider's side.
type Service struct {
	provider IdentityProvider
	profiles repository.ProfileRepository
	centers  repository.CenterRepository
}

func NewService(provider IdentityProvider, profiles repository.ProfileRepository, centers repository.CenterRepository) *Service {
	return &Service{provider: provider, profiles: profiles, centers: centers}
}

func (s *Service) Provision(ctx context.Context, req *model.ProvisionAccountRequest) (*model.Profile, error) {
	if _, err := s.profiles.GetByIdentifier(ctx, req.Identifier); err == nil {
		return nil, apperror.Validation("identifier %q is already provisioned", req.Identifier)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check identifier: %w", err)
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, apperror.Validation("invalid birth date %q", req.BirthDate)
	}

	centerIDs := make([]uuid.UUID, 0, len(req.CenterIDs))
	for _, raw := range req.CenterIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("invalid center ID %q", raw)
		}
		if _, err := s.centers.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.NotFound("center")
			}
			return nil, fmt.Errorf("failed to get center: %w", err)
		}
		centerIDs = append(centerIDs, id)
	}

	accountRef, err := s.provider.Provision(ctx, req.Identifier, req.Credential)
	if err != nil {
		return nil, fmt.Errorf("provisioning failed: %w", err)
	}

	profile := &model.Profile{
		AccountRef:   accountRef,
		Identifier:   req.Identifier,
		DisplayAlias: req.DisplayAlias,
		CenterIDs:    centerIDs,
		Course:       req.Course,
		BirthDate:    birthDate,
		Gender:       req.Gender,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to store profile: %w", err)
	}
	return profile, nil
}

func (s *Service) Lookup(ctx context.Context, identifier string) (*model.Profile, error) {
	profile, err := s.profiles.GetByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
