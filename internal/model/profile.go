package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the provisioning record returned by the external identity
// provider. The scheduling core stores it verbatim and never manages
// credentials or sessions itself.
type Profile struct {
	AccountRef   string      `db:"account_ref" json:"account_ref"`
	Identifier   string      `db:"identifier" json:"identifier"`
	DisplayAlias string      `db:"display_alias" json:"display_alias"`
	CenterIDs    []uuid.UUID `db:"-" json:"center_ids"`
	Course       string      `db:"course" json:"course"`
	BirthDate    time.Time   `db:"birth_date" json:"birth_date"`
	Gender       string      `db:"gender" json:"gender"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

type ProvisionAccountRequest struct {
	Identifier   string   `json:"identifier" binding:"required,max=100"`
	Credential   string   `json:"credential" binding:"required,min=8"`
	DisplayAlias string   `json:"display_alias" binding:"required,max=100"`
	CenterIDs    []string `json:"center_ids" binding:"dive,uuid"`
	Course       string   `json:"course" binding:"max=100"`
	BirthDate    string   `json:"birth_date" binding:"required,datetime=2006-01-02"`
	Gender       string   `json:"gender" binding:"max=50"`
}
