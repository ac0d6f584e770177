package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/schoolhealth/consult-api/internal/config"
	accounthandler "github.com/schoolhealth/consult-api/internal/handler/account"
	appointmenthandler "github.com/schoolhealth/consult-api/internal/handler/appointment"
	centerhandler "github.com/schoolhealth/consult-api/internal/handler/center"
	consultationhandler "github.com/schoolhealth/consult-api/internal/handler/consultation"
	healthhandler "github.com/schoolhealth/consult-api/internal/handler/health"
	noticehandler "github.com/schoolhealth/consult-api/internal/handler/notice"
	schedulehandler "github.com/schoolhealth/consult-api/internal/handler/schedule"
	"github.com/schoolhealth/consult-api/internal/repository/postgres"
	"github.com/schoolhealth/consult-api/internal/router"
	"github.com/schoolhealth/consult-api/internal/service/account"
	"github.com/schoolhealth/consult-api/internal/service/appointment"
	"github.com/schoolhealth/consult-api/internal/service/center"
	"github.com/schoolhealth/consult-api/internal/service/consultation"
	"github.com/schoolhealth/consult-api/internal/service/notification"
	"github.com/schoolhealth/consult-api/internal/service/schedule"
	"github.com/schoolhealth/consult-api/internal/service/scheduling"
	"github.com/schoolhealth/consult-api/pkg/metrics"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	centerRepo := postgres.NewCenterRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	noticeRepo := postgres.NewNoticeRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	notifier := notification.NewService(noticeRepo, outboxRepo)
	centerSvc := center.NewService(centerRepo)
	scheduleSvc := schedule.NewService(scheduleRepo, centerRepo, notifier)
	appointmentSvc := appointment.NewService(appointmentRepo, centerRepo, notifier)
	consultationSvc := consultation.NewService(consultationRepo)
	scheduler := scheduling.NewService(scheduleSvc, appointmentSvc, consultationSvc, notifier).
		WithMetrics(metrics.NewMetrics("consult", "api"))

	provider := account.NewHTTPProvider(account.ProviderConfig{
		BaseURL: cfg.Auth.ProviderURL,
		APIKey:  cfg.Auth.ProviderKey,
		Timeout: 10 * time.Second,
	})
	accountSvc := account.NewService(provider, profileRepo, centerRepo)

	engine := router.New(router.Config{
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		AuthSecret:     cfg.Auth.TokenSecret,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		ScheduleTTL:    cfg.Server.ScheduleCacheTTL,
	}, router.Handlers{
		Health:       healthhandler.NewHandler(db),
		Center:       centerhandler.NewHandler(centerSvc),
		Schedule:     schedulehandler.NewHandler(scheduler),
		Appointment:  appointmenthandler.NewHandler(scheduler),
		Consultation: consultationhandler.NewHandler(scheduler),
		Notice:       noticehandler.NewHandler(scheduler),
		Account:      accounthandler.NewHandler(accountSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
