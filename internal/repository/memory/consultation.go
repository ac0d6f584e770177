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

type ConsultationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*model.ConsultationRecord
}

func NewConsultationRepository() *ConsultationRepository {
	return &ConsultationRepository{records: make(map[uuid.UUID]*model.ConsultationRecord)}
}

func (r *ConsultationRepository) Insert(_ context.Context, record *model.ConsultationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.records[record.ID] = cloneConsultation(record)
	return nil
}

func (r *ConsultationRepository) Amend(_ context.Context, record *model.ConsultationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[record.ID]
	if !ok || existing.StudentID != record.StudentID {
		return repository.ErrNotFound
	}

	now := time.Now()
	record.AmendedAt = &now
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = now
	r.records[record.ID] = cloneConsultation(record)
	return nil
}

func (r *ConsultationRepository) Get(_ context.Context, id uuid.UUID) (*model.ConsultationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneConsultation(record), nil
}

func (r *ConsultationRepository) ListForStudent(_ context.Context, studentID uuid.UUID) ([]*model.ConsultationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.ConsultationRecord
	for _, rec := range r.records {
		if rec.StudentID == studentID {
			records = append(records, cloneConsultation(rec))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
