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

type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*model.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.appointments[appointment.ID] = cloneAppointment(appointment)
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAppointment(appointment), nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	appointment.Status = status
	appointment.CancelReason = cancelReason
	appointment.UpdatedAt = time.Now()
	return nil
}

func (r *AppointmentRepository) SetModality(_ context.Context, id uuid.UUID, modality model.Modality) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	appointment.Modality = modality
	appointment.UpdatedAt = time.Now()
	return nil
}

func (r *AppointmentRepository) ListForStudent(_ context.Context, studentID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var appointments []*model.Appointment
	for _, a := range r.appointments {
		if a.StudentID == studentID {
			appointments = append(appointments, cloneAppointment(a))
		}
	}
	sortByStart(appointments)
	return appointments, nil
}

func (r *AppointmentRepository) ListForCenter(_ context.Context, centerID uuid.UUID, dateRange model.DateRange) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var appointments []*model.Appointment
	for _, a := range r.appointments {
		if a.CenterID == centerID && dateRange.Contains(a.StartAt) {
			appointments = append(appointments, cloneAppointment(a))
		}
	}
	sortByStart(appointments)
	return appointments, nil
}

func (r *AppointmentRepository) FindOverlapping(_ context.Context, centerID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var appointments []*model.Appointment
	for _, a := range r.appointments {
		if a.CenterID == centerID && a.Status != model.AppointmentStatusCancelled && a.Overlaps(start, end) {
			appointments = append(appointments, cloneAppointment(a))
		}
	}
	sortByStart(appointments)
	return appointments, nil
}

func sortByStart(appointments []*model.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartAt.Before(appointments[j].StartAt)
	})
}
