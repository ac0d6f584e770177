package notice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/handler"
	"github.com/schoolhealth/consult-api/internal/service/scheduling"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

// List returns the notification feed for a student: notices addressed to
// them directly plus center-wide ones for the centers they attend.
func (h *Handler) List(c *gin.Context) {
	studentID, centerIDs, err := feedParams(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	notices, err := h.service.Notifications(c.Request.Context(), studentID, centerIDs)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, notices)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	studentID, centerIDs, err := feedParams(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	count, err := h.service.UnreadNotifications(c.Request.Context(), studentID, centerIDs)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid notice ID"))
		return
	}

	if err := h.service.MarkNotificationRead(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{"read": true})
}

func feedParams(c *gin.Context) (uuid.UUID, []uuid.UUID, error) {
	studentID, err := uuid.Parse(c.Query("student_id"))
	if err != nil {
		return uuid.Nil, nil, apperror.Validation("invalid student_id")
	}

	raws := c.QueryArray("center_id")
	centerIDs := make([]uuid.UUID, 0, len(raws))
	for _, raw := range raws {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, nil, apperror.Validation("invalid center_id %q", raw)
		}
		centerIDs = append(centerIDs, id)
	}
	return studentID, centerIDs, nil
}
