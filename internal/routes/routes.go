package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduler"
)

// Dependencies are the shared services the handlers are built from.
type Dependencies struct {
	DB          *gorm.DB
	Redis       *redis.Client // optional
	Scheduler   *scheduler.Service
	Config      *config.Config
	Log         zerolog.Logger
	AuthLimiter *middleware.RateLimiter
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	authHandler := handlers.NewAuthHandler(deps.DB, cfg, deps.Log)
	userHandler := handlers.NewUserHandler(deps.DB, deps.Log)
	patientHandler := handlers.NewPatientHandler(deps.DB, deps.Log)
	doctorHandler := handlers.NewDoctorHandler(deps.DB, deps.Log)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Scheduler, deps.Log)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)

	router.GET("/health/live", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	// Public routes (no authentication required)
	public := router.Group("/api/auth")
	if deps.AuthLimiter != nil {
		public.Use(middleware.RateLimit(deps.AuthLimiter))
	}
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/refresh-token", authHandler.RefreshToken)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutes := private.Group("/auth")
		{
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/profile", authHandler.GetProfile)
			authRoutes.PUT("/profile", authHandler.UpdateProfile)
		}

		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		editors := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff)
		adminOnly := middleware.RoleAuthMiddleware(models.RoleAdmin)

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatient)
			patientRoutes.POST("", editors, patientHandler.CreatePatient)
			patientRoutes.PUT("/:id", editors, patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", adminOnly, patientHandler.DeletePatient)
		}

		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
			doctorRoutes.POST("", editors, doctorHandler.CreateDoctor)
			doctorRoutes.PUT("/:id", editors, doctorHandler.UpdateDoctor)
			doctorRoutes.DELETE("/:id", adminOnly, doctorHandler.DeleteDoctor)
		}

		// Every signed in role may book and manage appointments.
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.POST("/:id/complete", appointmentHandler.CompleteAppointment)
		}
	}
}
