package model

import (
	"github.com/google/uuid"
)

// Center is a school site hosting recurring consultation visits.
type Center struct {
	Base
	Name       string      `db:"name" json:"name"`
	Address    string      `db:"address" json:"address"`
	StudentIDs []uuid.UUID `db:"-" json:"student_ids"`
}

func (c *Center) HasStudent(studentID uuid.UUID) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

type CreateCenterRequest struct {
	Name       string   `json:"name" binding:"required,max=200"`
	Address    string   `json:"address" binding:"required,max=500"`
	StudentIDs []string `json:"student_ids" binding:"dive,uuid"`
}
