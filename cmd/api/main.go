package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-ombor/internal/config"
	"go-ombor/internal/handler"
	"go-ombor/internal/health"
	applog "go-ombor/internal/log"
	"go-ombor/internal/repository"
	"go-ombor/internal/service"
	"go-ombor/internal/session"
	"go-ombor/internal/ws"
	"go-ombor/pkg/kvstore"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	if cfg.JWTSecret == "" {
		applog.Warn(nil, "jwt_secret_default", map[string]any{"hint": "set JWT_SECRET outside local development"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Store
	store, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Store.Driver, err)
	}
	defer store.Close()
	applog.Info(nil, "store_open", map[string]any{"driver": cfg.Store.Driver})

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx.Done())

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(store)
	txRepo := repository.NewTransactionRepo(store)
	userRepo := repository.NewUserRepo(store)
	if _, err := userRepo.FindAll(ctx); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	sessions := session.NewManager(kvstore.NewMemoryStore(), cfg.SessionTTL)

	services := handler.Services{
		Auth:      service.NewAuthService(userRepo, sessions),
		Users:     service.NewUserService(userRepo),
		Inventory: service.NewInventoryService(productRepo, txRepo, wsHub),
		Dashboard: service.NewDashboardService(productRepo, txRepo),
	}

	checker := health.NewChecker(store)
	go checker.Watch(ctx, 30*time.Second)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "OmborPro v1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				applog.Error(c, "server_error", err, nil)
				return c.Status(code).JSON(fiber.Map{"error": "Internal Server Error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := checker.Probe(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.Clients()})
	})

	// 6. Routes
	handler.RegisterRoutes(app, services)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		grpcServer = checker.NewGRPCServer()
		go func() {
			if err := health.Serve(grpcServer, ":"+cfg.GRPCPort); err != nil {
				applog.Error(nil, "grpc_serve", err, nil)
			}
		}()
	}

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
