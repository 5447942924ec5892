package routes

import (
	"log"
	"time"

	"planner/backend/assistant"
	"planner/backend/config"
	"planner/backend/controllers"
	"planner/backend/gateway"
	"planner/backend/middleware"
	"planner/backend/sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps — зависимости, разводимые по контроллерам.
type Deps struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Profiles  *sync.Registry
	Gate      *gateway.Gateway
	Loc       *time.Location
	Assistant assistant.Client
	ConvCache *assistant.ConversationCache
	Logger    *log.Logger
}

// SetupRoutes регистрирует все маршруты приложения.
// Возвращает таймерный контроллер, чтобы main мог погасить тики при
// остановке сервера.
func SetupRoutes(app *fiber.App, deps Deps) *controllers.TimerController {
	// Auth routes
	authController := controllers.NewAuthController(deps.DB, deps.Cfg, deps.Profiles)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(deps.Cfg)
	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// Profile routes
	profileController := controllers.NewProfileController(deps.Cfg, deps.Profiles, deps.Gate)
	profile := app.Group("/api/profile", authMiddleware)
	profile.Get("/", profileController.GetProfile)
	profile.Put("/goal", profileController.SetDailyGoal)
	profile.Put("/exams", profileController.SelectExams)
	profile.Put("/settings", profileController.UpdateSettings)
	profile.Post("/reset", profileController.ResetProfile)

	// Metrics routes
	metricsController := controllers.NewMetricsController(deps.Cfg, deps.Profiles, deps.Loc)
	metrics := app.Group("/api/metrics", authMiddleware)
	metrics.Get("/dashboard", metricsController.GetDashboard)
	metrics.Get("/heatmap", metricsController.GetHeatmap)
	metrics.Get("/countdowns", metricsController.GetCountdowns)

	// Syllabus routes
	syllabusController := controllers.NewSyllabusController(deps.Cfg, deps.Profiles, deps.Gate)
	syllabus := app.Group("/api/syllabus", authMiddleware)
	syllabus.Get("/:subject", syllabusController.GetSyllabus)
	syllabus.Post("/:subject/chapters", syllabusController.AddChapter)
	syllabus.Post("/:subject/chapters/:id/toggle", syllabusController.ToggleUnit)
	syllabus.Delete("/:subject/chapters/:id", syllabusController.DeleteChapter)

	// Tasks routes
	tasksController := controllers.NewTasksController(deps.Cfg, deps.Profiles, deps.Gate)
	tasks := app.Group("/api/tasks", authMiddleware)
	tasks.Get("/", tasksController.GetTasks)
	tasks.Post("/", tasksController.AddTask)
	tasks.Post("/:id/toggle", tasksController.ToggleTask)
	tasks.Delete("/:id", tasksController.DeleteTask)

	// Mock test routes
	mocksController := controllers.NewMocksController(deps.Cfg, deps.Profiles, deps.Gate)
	mocks := app.Group("/api/mocks", authMiddleware)
	mocks.Get("/", mocksController.GetMockSeries)
	mocks.Post("/", mocksController.AddMockTest)
	mocks.Delete("/:id", mocksController.DeleteMockTest)

	// Timer routes
	timerController := controllers.NewTimerController(deps.Cfg, deps.Profiles, deps.Gate)
	timerGroup := app.Group("/api/timer", authMiddleware)
	timerGroup.Get("/", timerController.GetStatus)
	timerGroup.Post("/start", timerController.Start)
	timerGroup.Post("/pause", timerController.Pause)
	timerGroup.Post("/resume", timerController.Resume)
	timerGroup.Post("/stop", timerController.Stop)
	timerGroup.Put("/subject", timerController.SetSubject)

	// Assistant routes
	if deps.Assistant != nil && deps.ConvCache != nil {
		assistantController := controllers.NewAssistantController(deps.Cfg, deps.Assistant, deps.ConvCache, deps.Logger)
		assistantGroup := app.Group("/api/assistant", authMiddleware)
		assistantGroup.Get("/", assistantController.GetConversation)
		assistantGroup.Post("/", assistantController.SendMessage)
		assistantGroup.Delete("/", assistantController.ClearConversation)
	}

	return timerController
}
