// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"estatedesk-service/internal/config"
	"estatedesk-service/internal/db"
	assocHandler "estatedesk-service/internal/handlers/association"
	commissionHandler "estatedesk-service/internal/handlers/commission"
	inventoryHandler "estatedesk-service/internal/handlers/inventory"
	otpHandler "estatedesk-service/internal/handlers/otp"
	pricingHandler "estatedesk-service/internal/handlers/pricing"
	"estatedesk-service/internal/jobs"
	"estatedesk-service/internal/middleware"
	"estatedesk-service/internal/pkg/jwt"
	"estatedesk-service/internal/pkg/ratelimit"
	"estatedesk-service/internal/pkg/sms"
	"estatedesk-service/internal/repository/postgres"
	assocUsecase "estatedesk-service/internal/service/association"
	commissionUsecase "estatedesk-service/internal/service/commission"
	inventoryUsecase "estatedesk-service/internal/service/inventory"
	leadUsecase "estatedesk-service/internal/service/lead"
	otpUsecase "estatedesk-service/internal/service/otp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	assignmentJob *jobs.AssignmentJob
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- JWT Verifier -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- SMS Channel -----
	var channel sms.Channel
	if s.cfg.Twilio.AccountSID != "" {
		channel, err = sms.NewTwilioChannel(s.cfg.Twilio, logger)
		if err != nil {
			return fmt.Errorf("failed to build SMS channel: %w", err)
		}
	} else {
		logger.Warn("no SMS provider configured, all sends degrade to fallback links")
		channel = sms.NoopChannel{}
	}

	// ----- Rate Limiter -----
	limiter := ratelimit.NewLimiter(redisClient, s.cfg.OTPMaxSends, s.cfg.OTPSendWindow)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	assocRepo := postgres.NewAssociationRepository(pool)
	otpRepo := postgres.NewOTPRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	commissionRepo := postgres.NewCommissionRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)

	// ----- Services (Usecases) -----
	leadService := leadUsecase.NewService(leadRepo, logger)
	assocService := assocUsecase.NewService(assocRepo, leadService, logger)
	assigner := assocUsecase.NewAssigner(dbWrapper, assocRepo, projectRepo, logger)
	otpService := otpUsecase.NewService(
		otpRepo,
		assocRepo,
		leadRepo,
		assocService,
		channel,
		limiter,
		otpUsecase.Config{
			Secret:          []byte(s.cfg.OTPSecret),
			Expiry:          s.cfg.OTPExpiry,
			MaxAttempts:     s.cfg.OTPMaxAttempts,
			FallbackBaseURL: s.cfg.FallbackBaseURL,
		},
		logger,
	)
	commissionService := commissionUsecase.NewService(commissionRepo, logger)
	inventoryService := inventoryUsecase.NewService(
		dbWrapper,
		unitRepo,
		bookingRepo,
		commissionRepo,
		assocRepo,
		projectRepo,
		logger,
	)

	// ----- Daily Assignment Job -----
	s.assignmentJob = jobs.NewAssignmentJob(assigner, s.cfg.AssignInterval, logger)
	s.assignmentJob.Start(ctx)

	// ----- Handlers -----
	assocHandlerInst := assocHandler.NewAssociationHandler(assocService)
	otpHandlerInst := otpHandler.NewOTPHandler(otpService)
	inventoryHandlerInst := inventoryHandler.NewInventoryHandler(inventoryService)
	pricingHandlerInst := pricingHandler.NewPricingHandler(inventoryService)
	commissionHandlerInst := commissionHandler.NewCommissionHandler(commissionService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
	)

	// ----- Router -----
	handlers := &Handlers{
		AssociationHandler: assocHandlerInst,
		OTPHandler:         otpHandlerInst,
		InventoryHandler:   inventoryHandlerInst,
		PricingHandler:     pricingHandlerInst,
		CommissionHandler:  commissionHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops the background job. HTTP shutdown is handled by the
// process signal path in main.
func (s *Server) Shutdown() {
	if s.assignmentJob != nil {
		s.assignmentJob.Stop()
	}
}
