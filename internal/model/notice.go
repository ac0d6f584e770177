package model

import (
	"time"

	"github.com/google/uuid"
)

type NoticeType string

const (
	NoticeTypeReminder       NoticeType = "reminder"
	NoticeTypeScheduleChange NoticeType = "schedule_change"
	NoticeTypeCancellation   NoticeType = "cancellation"
	NoticeTypeRemoteSwitch   NoticeType = "remote_switch"
)

// Suggested actions the client may surface alongside a notice.
const (
	ActionRequestAppointment = "request_appointment"
	ActionOpenChat           = "open_chat"
)

// Notice informs affected students of a schedule or appointment change.
// An empty StudentIDs list addresses every student enrolled at CenterID.
// DedupeKey identifies the originating mutation: emitting twice for the
// same mutation stores a single notice.
type Notice struct {
	Base
	Type       NoticeType  `db:"type" json:"type"`
	CenterID   uuid.UUID   `db:"center_id" json:"center_id"`
	StudentIDs []uuid.UUID `db:"-" json:"student_ids,omitempty"`
	Title      string      `db:"title" json:"title"`
	Message    string      `db:"message" json:"message"`
	OccursAt   time.Time   `db:"occurs_at" json:"occurs_at"`
	Read       bool        `db:"read" json:"read"`
	Actions    []string    `db:"-" json:"actions,omitempty"`
	DedupeKey  string      `db:"dedupe_key" json:"-"`
}

// CenterWide reports whether the notice addresses the whole center.
func (n *Notice) CenterWide() bool {
	return len(n.StudentIDs) == 0
}

func (n *Notice) Targets(studentID uuid.UUID) bool {
	if n.CenterWide() {
		return true
	}
	for _, id := range n.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}
