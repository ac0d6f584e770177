package model

import (
	"time"

	"github.com/google/uuid"
)

type Modality string

const (
	ModalityInPerson Modality = "in_person"
	ModalityRemote   Modality = "remote"
)

func (m Modality) Valid() bool {
	return m == ModalityInPerson || m == ModalityRemote
}

// Reason and intervention tags are enumerated categories, stored as text
// so reporting can aggregate without joins.
const (
	ReasonSexuality    = "sexuality"
	ReasonMentalHealth = "mental_health"
	ReasonNutrition    = "nutrition"
	ReasonSubstanceUse = "substance_use"
	ReasonGeneral      = "general"

	InterventionCounselling     = "counselling"
	InterventionReferral        = "referral"
	InterventionFollowUp        = "follow_up_scheduled"
	InterventionGuardianContact = "guardian_contacted"
	InterventionHealthEducation = "health_education"
)

// Demographics is the snapshot captured at consult time; it is not
// re-resolved against the live profile afterwards.
type Demographics struct {
	Age    int    `db:"age" json:"age"`
	Course string `db:"course" json:"course"`
	Gender string `db:"gender" json:"gender"`
}

// ConsultationRecord is the outcome of a completed consultation, part of
// a student's append-only history. Amending keeps the original ID.
type ConsultationRecord struct {
	Base
	StudentID        uuid.UUID    `db:"student_id" json:"student_id"`
	Date             time.Time    `db:"date" json:"date"`
	StartTime        string       `db:"start_time" json:"start_time"`
	EndTime          string       `db:"end_time" json:"end_time"`
	Modality         Modality     `db:"modality" json:"modality"`
	Demographics     Demographics `db:"-" json:"demographics"`
	ReasonTags       []string     `db:"-" json:"reason_tags"`
	InterventionTags []string     `db:"-" json:"intervention_tags"`
	Notes            string       `db:"notes" json:"notes"`
	AmendedAt        *time.Time   `db:"amended_at" json:"amended_at,omitempty"`
}

type RecordConsultationRequest struct {
	ID               string   `json:"id" binding:"omitempty,uuid"`
	StudentID        string   `json:"student_id" binding:"required,uuid"`
	Date             string   `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime        string   `json:"start_time" binding:"required,clock"`
	EndTime          string   `json:"end_time" binding:"required,clock"`
	Modality         Modality `json:"modality" binding:"required,oneof=in_person remote"`
	Age              int      `json:"age" binding:"min=0,max=120"`
	Course           string   `json:"course" binding:"max=100"`
	Gender           string   `json:"gender" binding:"max=50"`
	ReasonTags       []string `json:"reason_tags"`
	InterventionTags []string `json:"intervention_tags"`
	Notes            string   `json:"notes" binding:"max=5000"`
}
