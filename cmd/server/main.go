package main

import (
	"log"
	"runtime"
	"time"

	"backend-qms/internal/config"
	"backend-qms/internal/http/handler"
	"backend-qms/internal/http/middleware"
	"backend-qms/internal/models"
	"backend-qms/internal/notify"
	"backend-qms/internal/queue"
	"backend-qms/internal/realtime"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	db := config.InitDB()
	defer db.Close()
	rdb := config.InitRedis()

	hub := realtime.NewHub()
	h := handler.New(
		db,
		queue.NewAllocator(rdb),
		queue.NewEstimator(db),
		hub,
		notify.NewSMSSender(db),
	)

	// Push is a latency optimization; this periodic re-broadcast is the
	// correctness backstop for clients that missed an event.
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("scheduler init failed:", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(func() {
			hub.Publish(realtime.EventQueueUpdated, nil)
		}),
	)
	if err != nil {
		log.Fatal("scheduler job failed:", err)
	}
	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "QMS API running",
		})
	})

	// Public endpoints: kiosk and display need no session.
	app.Post("/api/login", h.Login)
	app.Get("/api/kiosk/services", h.GetKioskServices)
	app.Post("/api/kiosk/tokens", h.CreateToken)
	app.Get("/api/display/tokens", h.GetTokens)

	// WebSocket feed for kiosk, counter and display screens.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/queue", websocket.New(hub.ServeWS))

	// Everything below requires a session.
	api := app.Group("/api", middleware.JWTAuth())

	api.Post("/logout", h.Logout)

	// Queue operations (counter screens)
	api.Get("/tokens", h.GetTokens)
	api.Put("/tokens/:id/status", h.UpdateTokenStatus)

	// Services
	api.Get("/services", h.GetAllServices)
	api.Post("/services", h.CreateService)
	api.Put("/services/:id", h.UpdateService)
	api.Delete("/services/:id", h.DeleteService)

	// Counters
	api.Get("/counters", h.GetCounters)
	api.Post("/counters", h.CreateCounter)
	api.Put("/counters/:id", h.UpdateCounter)
	api.Post("/counters/:id/services", h.AssignService)

	// Settings
	api.Get("/settings", h.GetSettings)
	api.Put("/settings", middleware.RoleAuth(models.RoleAdmin), h.UpdateSetting)

	// Analytics
	api.Get("/analytics", h.GetAnalytics)
	api.Get("/reports", h.GetReports)

	// ===== ADMIN ROUTES =====
	api.Get("/users", middleware.RoleAuth(models.RoleAdmin), h.GetUsers)
	api.Post("/users", middleware.RoleAuth(models.RoleAdmin), h.CreateUser)
	api.Delete("/users/:id", middleware.RoleAuth(models.RoleAdmin), h.DeleteUser)

	addr := config.GetEnv("APP_HOST", "") + ":" + config.GetEnv("APP_PORT", "8080")
	log.Println("Server listening on", addr)
	log.Fatal(app.Listen(addr))
}
