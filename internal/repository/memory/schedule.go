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

type ScheduleRepository struct {
	mu sync.RWMutex
	// all schedules per center, newest last; at most one active
	schedules map[uuid.UUID][]*model.VisitSchedule
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{schedules: make(map[uuid.UUID][]*model.VisitSchedule)}
}

func (r *ScheduleRepository) GetActive(_ context.Context, centerID uuid.UUID) (*model.VisitSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.schedules[centerID] {
		if s.Active {
			return cloneSchedule(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ScheduleRepository) Supersede(_ context.Context, centerID uuid.UUID, next *model.VisitSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range r.schedules[centerID] {
		if s.Active {
			s.Active = false
			superseded := now
			s.SupersededAt = &superseded
			s.UpdatedAt = now
		}
	}

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	next.CenterID = centerID
	next.Active = true
	next.CreatedAt = now
	next.UpdatedAt = now
	r.schedules[centerID] = append(r.schedules[centerID], cloneSchedule(next))
	return nil
}

func (r *ScheduleRepository) History(_ context.Context, centerID uuid.UUID) ([]*model.VisitSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]*model.VisitSchedule, 0, len(r.schedules[centerID]))
	for _, s := range r.schedules[centerID] {
		history = append(history, cloneSchedule(s))
	}
	sort.Slice(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })
	return history, nil
}
