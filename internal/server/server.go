package server

import (
	"context"
	"net/http"
	"time"

	"psicanalise/internal/appointment"
	"psicanalise/internal/auth"
	"psicanalise/internal/availability"
	"psicanalise/internal/config"
	"psicanalise/internal/credits"
	"psicanalise/internal/email"
	"psicanalise/internal/provider"
	"psicanalise/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	providerRepo := provider.NewRepository(db)
	providerHandler := provider.NewHandler(providerRepo)

	apptRepo := appointment.NewRepository(db)

	availRepo := availability.NewRepository(db)
	availService := availability.NewService(availRepo, providerRepo, apptRepo, cfg.SlotStepMinutes, cfg.MinLeadHours)
	availHandler := availability.NewHandler(availService)

	var mailer appointment.Mailer
	if emailService != nil {
		mailer = emailService
	}
	apptService := appointment.NewService(apptRepo, providerRepo, userRepo, mailer, cfg.MinLeadHours, cfg.BookingTimeout)
	apptHandler := appointment.NewHandler(apptService)

	creditsRepo := credits.NewRepository(db)
	creditsService := credits.NewService(creditsRepo)
	creditsHandler := credits.NewHandler(creditsService, cfg.PaymentWebhookToken)

	router.GET("/health", Health(db))
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	// slot listing is public: the booking page renders before login
	router.GET("/providers/:providerID/slots", availHandler.GetSlots)

	// payment collaborator, authenticated by shared token
	router.POST("/payments/credits", creditsHandler.AddCredits)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/credits", creditsHandler.ListBalances)

		protected.POST("/appointments", apptHandler.Book)
		protected.GET("/appointments", apptHandler.ListMine)
		protected.POST("/appointments/:appointmentID/cancel", apptHandler.Cancel)
		protected.POST("/appointments/:appointmentID/reschedule", apptHandler.Reschedule)
		protected.POST("/appointments/:appointmentID/complete", apptHandler.Complete)
	}

	providerGroup := router.Group("/provider")
	providerGroup.Use(authMiddleware, auth.RequireRole(auth.RoleProvider))
	{
		providerGroup.GET("/settings", providerHandler.GetSettings)
		providerGroup.PUT("/settings", providerHandler.UpdateSettings)

		providerGroup.GET("/rules", availHandler.ListRules)
		providerGroup.PUT("/rules", availHandler.ReplaceRules)

		providerGroup.GET("/blocks", availHandler.ListBlocks)
		providerGroup.POST("/blocks", availHandler.CreateBlock)
		providerGroup.DELETE("/blocks/:blockID", availHandler.DeleteBlock)

		providerGroup.GET("/calendar", apptHandler.Calendar)
	}

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
