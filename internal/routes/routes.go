package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/imnotdurnk/internal/debug"
	"github.com/yourorg/imnotdurnk/internal/handlers"
	"github.com/yourorg/imnotdurnk/internal/middleware"
)

// Handlers is every handler the route table points at.
type Handlers struct {
	Calendar *handlers.CalendarHandler
	User     *handlers.UserHandler
	Voice    *handlers.VoiceHandler
	GameLog  *handlers.GameLogHandler
	Transit  *handlers.TransitHandler
	Health   *handlers.HealthHandler
}

// Options toggles the optional surfaces.
type Options struct {
	// LocalFilesDir, when set, is served under /files for the local storage
	// driver.
	LocalFilesDir string
	// RateLimit enables the per-IP limiters.
	RateLimit bool
}

func Register(app *fiber.App, h Handlers, opts Options) {
	authLimit := passThrough
	expensiveLimit := passThrough
	if opts.RateLimit {
		app.Use(middleware.GlobalRateLimiter())
		authLimit = middleware.AuthRateLimiter()
		expensiveLimit = middleware.ExpensiveOperationLimiter()
	}
	app.Use(middleware.DashboardLogger())
	app.Use(middleware.AccessToken())

	// Health check (no limiter)
	app.Get("/health", h.Health.Health)

	// ============================================================================
	// CALENDARS
	// ============================================================================
	// Literal segments are registered before :planId so they win.
	calendars := app.Group("/calendars")
	calendars.Get("/", h.Calendar.GetDiary)
	calendars.Post("/", h.Calendar.AddCalendar)
	calendars.Get("/statistics", h.Calendar.GetCalendarStatistic)
	calendars.Get("/export", h.Calendar.ExportCalendar)
	calendars.Put("/arrival/:datetimestr", h.Calendar.ArrivedHome)
	calendars.Get("/plans/:planId", h.Calendar.GetPlanDetail)
	calendars.Put("/plans/:planId", h.Calendar.UpdateFeedback)
	calendars.Get("/:date/plans", h.Calendar.GetCalendar)
	calendars.Get("/:planId", h.Calendar.UpdateArrivalTime)
	calendars.Delete("/:planId", h.Calendar.DeletePlan)

	// ============================================================================
	// USERS
	// ============================================================================
	users := app.Group("/users")
	users.Post("/signup", authLimit, h.User.SignUp)
	users.Post("/signup/verify", authLimit, h.User.SendVerificationCode)
	users.Post("/signup/verify-code", authLimit, h.User.VerifyCode)
	users.Get("/login", authLimit, h.User.Login)
	users.Get("/login/find-password", authLimit, h.User.SendTemporaryPassword)
	users.Post("/refresh", authLimit, h.User.Refresh)
	users.Get("/profile", h.User.GetProfile)
	users.Put("/profile", h.User.UpdateProfile)
	users.Get("/logout", h.User.Logout)

	// ============================================================================
	// VOICE & GAMES
	// ============================================================================
	voice := app.Group("/voice")
	voice.Post("/", h.Voice.AddVoice)
	voice.Post("/pronounce", expensiveLimit, h.Voice.Pronounce)
	voice.Post("/pronounce/save", h.Voice.SavePronunciation)
	voice.Post("/pronounce/not-save", h.Voice.DiscardPronunciation)
	voice.Get("/:logId", h.Voice.GetVoice)
	voice.Delete("/:logId", h.Voice.DeleteVoice)

	gameLogs := app.Group("/game-logs")
	gameLogs.Post("/", h.GameLog.SaveGameLog)
	gameLogs.Get("/:planId", h.GameLog.ListGameLogs)

	// ============================================================================
	// MAPS
	// ============================================================================
	maps := app.Group("/maps", expensiveLimit)
	maps.Get("/transit", h.Transit.Destinations)
	maps.Get("/transit/segments", h.Transit.Segments)
	maps.Get("/route", h.Transit.RoutePath)

	if opts.LocalFilesDir != "" {
		app.Static("/files", opts.LocalFilesDir)
	}

	// ============================================================================
	// DEBUG DASHBOARD
	// ============================================================================
	if debug.IsEnabled() {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/debug", websocket.New(debug.HandleWebSocket))
	}
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
