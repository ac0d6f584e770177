package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolhealth/consult-api/internal/handler"
	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/service/account"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

type Handler struct {
	service *account.Service
}

func NewHandler(service *account.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Provision(c *gin.Context) {
	var req model.ProvisionAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	profile, err := h.service.Provision(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, profile)
}

func (h *Handler) Lookup(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		handler.Error(c, apperror.Validation("identifier is required"))
		return
	}

	profile, err := h.service.Lookup(c.Request.Context(), identifier)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, profile)
}
