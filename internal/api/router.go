package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/habitdesk/habitdesk-api/docs"
	"github.com/habitdesk/habitdesk-api/internal/api/handler"
	"github.com/habitdesk/habitdesk-api/internal/api/middleware"
	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/service"
	mongodb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/mongo"
	redisdb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/redis"
	"github.com/habitdesk/habitdesk-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit service.Auditor, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("habitdesk"))

	// --- Dependencies ---
	sessions := redisdb.NewSessionStore(rdb)

	userRepo := mongodb.NewUserRepository(db)
	inviteRepo := mongodb.NewInviteRepository(db)
	typeRepo := mongodb.NewTherapistTypeRepository(db)
	taskTplRepo := mongodb.NewTaskTemplateRepository(db)
	programTplRepo := mongodb.NewProgramTemplateRepository(db)
	patientRepo := mongodb.NewPatientRepository(db)
	programRepo := mongodb.NewProgramRepository(db)
	assignmentRepo := mongodb.NewAssignmentRepository(db)

	authService := service.NewAuthService(userRepo, sessions, cfg.JWTSecret, cfg.TokenTTL, log)
	roleService := service.NewRoleService(userRepo, sessions, audit, log)
	inviteService := service.NewInviteService(inviteRepo, userRepo, sessions, audit, log)
	templateService := service.NewTemplateService(typeRepo, taskTplRepo, programTplRepo, log)
	careService := service.NewCareService(patientRepo, programRepo, assignmentRepo, taskTplRepo, programTplRepo, log)

	authHandler := handler.NewAuthHandler(authService, roleService)
	inviteHandler := handler.NewInviteHandler(inviteService)
	templateHandler := handler.NewTemplateHandler(templateService)
	careHandler := handler.NewCareHandler(careService)

	authMW := middleware.Auth(cfg.JWTSecret, sessions)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	therapistOrAdmin := middleware.RBAC(domain.RoleAdmin, domain.RoleTherapist)

	// --- Auth routes (no token) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMW)

	// Role RPCs. Any authenticated caller may reach them; the service
	// enforces who may actually mutate.
	v1.POST("/roles/set", authHandler.SetUserRole)
	v1.POST("/roles/ensure-default", authHandler.EnsureDefaultRole)

	// Invite claim is open to every authenticated caller.
	v1.POST("/invites/claim", inviteHandler.Claim)

	// Invite administration.
	invites := v1.Group("/invites", adminOnly)
	invites.POST("", inviteHandler.Create)
	invites.GET("", inviteHandler.List)
	invites.POST("/:id/revoke", inviteHandler.Revoke)
	invites.POST("/:id/restore", inviteHandler.Restore)
	invites.DELETE("/:id", inviteHandler.Delete)

	// Sub-type catalog.
	v1.GET("/therapist-types", templateHandler.ListTherapistTypes)
	v1.POST("/therapist-types", templateHandler.CreateTherapistType, adminOnly)
	v1.DELETE("/therapist-types/:id", templateHandler.DeleteTherapistType, adminOnly)

	// Templates.
	templates := v1.Group("/templates", therapistOrAdmin)
	templates.POST("/tasks", templateHandler.CreateTaskTemplate)
	templates.GET("/tasks", templateHandler.ListTaskTemplates)
	templates.GET("/tasks/:id", templateHandler.GetTaskTemplate)
	templates.PUT("/tasks/:id", templateHandler.UpdateTaskTemplate)
	templates.DELETE("/tasks/:id", templateHandler.DeleteTaskTemplate)
	templates.POST("/programs", templateHandler.CreateProgramTemplate)
	templates.GET("/programs", templateHandler.ListProgramTemplates)
	templates.GET("/programs/:id", templateHandler.GetProgramTemplate)
	templates.PUT("/programs/:id", templateHandler.UpdateProgramTemplate)
	templates.DELETE("/programs/:id", templateHandler.DeleteProgramTemplate)

	// Patients and programs.
	care := v1.Group("", therapistOrAdmin)
	care.POST("/patients", careHandler.CreatePatient)
	care.GET("/patients", careHandler.ListPatients)
	care.GET("/patients/:id", careHandler.GetPatient)
	care.PUT("/patients/:id", careHandler.UpdatePatient)
	care.DELETE("/patients/:id", careHandler.DeletePatient)
	care.GET("/patients/:id/assignments", careHandler.ListAssignments)
	care.POST("/programs/assign", careHandler.AssignProgram)
	care.GET("/programs/:id/tasks", careHandler.ListProgramTasks)
	care.PUT("/assignments/:id/status", careHandler.UpdateAssignmentStatus)
	care.POST("/tasks/:id/complete", careHandler.CompleteTask)

	return e
}
