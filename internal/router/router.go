package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schoolhealth/consult-api/internal/handler/account"
	"github.com/schoolhealth/consult-api/internal/handler/appointment"
	"github.com/schoolhealth/consult-api/internal/handler/center"
	"github.com/schoolhealth/consult-api/internal/handler/consultation"
	"github.com/schoolhealth/consult-api/internal/handler/health"
	"github.com/schoolhealth/consult-api/internal/handler/notice"
	"github.com/schoolhealth/consult-api/internal/handler/schedule"
	"github.com/schoolhealth/consult-api/internal/middleware"
)

type Config struct {
	RequestTimeout time.Duration
	AuthSecret     string
	RateLimitRPS   float64
	RateLimitBurst int
	ScheduleTTL    time.Duration
}

type Handlers struct {
	Health       *health.Handler
	Center       *center.Handler
	Schedule     *schedule.Handler
	Appointment  *appointment.Handler
	Consultation *consultation.Handler
	Notice       *notice.Handler
	Account      *account.Handler
}

// New assembles the HTTP surface: global middleware, the unauthenticated
// health and metrics endpoints, and the versioned API.
func New(cfg Config, h Handlers) *gin.Engine {
	registerValidations()

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	scheduleCache := middleware.NewResponseCache(cfg.ScheduleTTL)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Timeout(cfg.RequestTimeout))
	v1.Use(middleware.Auth(cfg.AuthSecret))
	{
		v1.POST("/accounts", h.Account.Provision)
		v1.GET("/accounts/:identifier", h.Account.Lookup)

		v1.POST("/centers", h.Center.Create)
		v1.GET("/centers", h.Center.List)
		v1.GET("/centers/:id", h.Center.Get)
		v1.POST("/centers/:id/students", h.Center.EnrollStudent)

		v1.GET("/centers/:id/schedule", scheduleCache.Middleware(), h.Schedule.Get)
		v1.PUT("/centers/:id/schedule", invalidating(scheduleCache), h.Schedule.Update)
		v1.GET("/centers/:id/schedule/history", h.Schedule.History)

		v1.POST("/appointments", h.Appointment.Request)
		v1.GET("/appointments/:id", h.Appointment.Get)
		v1.PATCH("/appointments/:id/status", h.Appointment.UpdateStatus)
		v1.POST("/appointments/:id/remote", h.Appointment.SwitchToRemote)
		v1.GET("/students/:id/appointments", h.Appointment.ListForStudent)
		v1.GET("/centers/:id/appointments", h.Appointment.ListForCenter)

		v1.POST("/consultations", h.Consultation.Record)
		v1.GET("/students/:id/consultations", h.Consultation.History)

		v1.GET("/notifications", h.Notice.List)
		v1.GET("/notifications/unread-count", h.Notice.UnreadCount)
		v1.POST("/notifications/:id/read", h.Notice.MarkRead)
	}

	return r
}

// invalidating drops cached schedule reads once a mutation succeeds.
func invalidating(cache *middleware.ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < 400 {
			cache.Invalidate()
		}
	}
}
