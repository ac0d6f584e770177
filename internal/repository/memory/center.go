package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
)

type CenterRepository struct {
	mu      sync.RWMutex
	centers map[uuid.UUID]*model.Center
}

func NewCenterRepository() *CenterRepository {
	return &CenterRepository{centers: make(map[uuid.UUID]*model.Center)}
}

func (r *CenterRepository) Create(_ context.Context, center *model.Center) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if center.ID == uuid.Nil {
		center.ID = uuid.New()
	}
	center.CreatedAt = time.Now()
	center.UpdatedAt = center.CreatedAt
	r.centers[center.ID] = cloneCenter(center)
	return nil
}

func (r *CenterRepository) Get(_ context.Context, id uuid.UUID) (*model.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	center, ok := r.centers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCenter(center), nil
}

func (r *CenterRepository) List(_ context.Context) ([]*model.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	centers := make([]*model.Center, 0, len(r.centers))
	for _, c := range r.centers {
		centers = append(centers, cloneCenter(c))
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].Name < centers[j].Name })
	return centers, nil
}

func (r *CenterRepository) EnrollStudent(_ context.Context, centerID, studentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	center, ok := r.centers[centerID]
	if !ok {
		return repository.ErrNotFound
	}
	if !center.HasStudent(studentID) {
		center.StudentIDs = append(center.StudentIDs, studentID)
		center.UpdatedAt = time.Now()
	}
	return nil
}
