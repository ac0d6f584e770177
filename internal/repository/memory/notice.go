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

type NoticeRepository struct {
	mu      sync.RWMutex
	notices map[uuid.UUID]*model.Notice
	byKey   map[string]uuid.UUID
}

func NewNoticeRepository() *NoticeRepository {
	return &NoticeRepository{
		notices: make(map[uuid.UUID]*model.Notice),
		byKey:   make(map[string]uuid.UUID),
	}
}

func (r *NoticeRepository) Create(_ context.Context, notice *model.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notice.ID == uuid.Nil {
		notice.ID = uuid.New()
	}
	notice.CreatedAt = time.Now()
	notice.UpdatedAt = notice.CreatedAt
	r.notices[notice.ID] = cloneNotice(notice)
	if notice.DedupeKey != "" {
		r.byKey[notice.DedupeKey] = notice.ID
	}
	return nil
}

func (r *NoticeRepository) Get(_ context.Context, id uuid.UUID) (*model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notice, ok := r.notices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneNotice(notice), nil
}

func (r *NoticeRepository) GetByDedupeKey(_ context.Context, key string) (*model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneNotice(r.notices[id]), nil
}

func (r *NoticeRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notice, ok := r.notices[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !notice.Read {
		notice.Read = true
		notice.UpdatedAt = time.Now()
	}
	return nil
}

func (r *NoticeRepository) ListFor(_ context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) ([]*model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notices []*model.Notice
	for _, n := range r.notices {
		if r.targets(n, studentID, centerIDs) {
			notices = append(notices, cloneNotice(n))
		}
	}
	sort.Slice(notices, func(i, j int) bool {
		if !notices[i].OccursAt.Equal(notices[j].OccursAt) {
			return notices[i].OccursAt.After(notices[j].OccursAt)
		}
		return notices[i].CreatedAt.After(notices[j].CreatedAt)
	})
	return notices, nil
}

func (r *NoticeRepository) CountUnread(_ context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notices {
		if !n.Read && r.targets(n, studentID, centerIDs) {
			count++
		}
	}
	return count, nil
}

func (r *NoticeRepository) targets(n *model.Notice, studentID uuid.UUID, centerIDs []uuid.UUID) bool {
	if n.CenterWide() {
		for _, centerID := range centerIDs {
			if n.CenterID == centerID {
				return true
			}
		}
		return false
	}
	return n.Targets(studentID)
}
