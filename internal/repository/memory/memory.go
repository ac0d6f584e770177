// Package memory provides in-process implementations of the repository
// interfaces. Collections are identifier-indexed maps guarded by a
// read-write mutex; reads hand out copies so callers always observe a
// consistent snapshot. The service tests run against these, and they back
// single-node deployments without postgres.
package memory

import (
	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
)

func cloneCenter(c *model.Center) *model.Center {
	cp := *c
	cp.StudentIDs = append([]uuid.UUID(nil), c.StudentIDs...)
	return &cp
}

func cloneSchedule(s *model.VisitSchedule) *model.VisitSchedule {
	cp := *s
	return &cp
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	cp := *a
	if a.CancelReason != nil {
		reason := *a.CancelReason
		cp.CancelReason = &reason
	}
	return &cp
}

func cloneConsultation(r *model.ConsultationRecord) *model.ConsultationRecord {
	cp := *r
	cp.ReasonTags = append([]string(nil), r.ReasonTags...)
	cp.InterventionTags = append([]string(nil), r.InterventionTags...)
	return &cp
}

func cloneNotice(n *model.Notice) *model.Notice {
	cp := *n
	cp.StudentIDs = append([]uuid.UUID(nil), n.StudentIDs...)
	cp.Actions = append([]string(nil), n.Actions...)
	return &cp
}
