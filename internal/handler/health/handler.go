package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolhealth/consult-api/internal/handler"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	Ping() error
}

type Handler struct {
	db Pinger
}

func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Check(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"data":   gin.H{"database": "unreachable"},
		})
		return
	}
	handler.Success(c, http.StatusOK, gin.H{"database": "ok"})
}
