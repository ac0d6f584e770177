package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*model.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]*model.Profile)}
}

func (r *ProfileRepository) Create(_ context.Context, profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile.CreatedAt = time.Now()
	cp := *profile
	cp.CenterIDs = append([]uuid.UUID(nil), profile.CenterIDs...)
	r.profiles[profile.Identifier] = &cp
	return nil
}

func (r *ProfileRepository) GetByIdentifier(_ context.Context, identifier string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[identifier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *profile
	cp.CenterIDs = append([]uuid.UUID(nil), profile.CenterIDs...)
	return &cp, nil
}
