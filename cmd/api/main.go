package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go-stationery-inventory/internal/config"
	"go-stationery-inventory/internal/handler"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/service"
	"go-stationery-inventory/internal/ws"
	"go-stationery-inventory/pkg/database"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	// 2. Setup logger
	setupLogger(cfg)
	log.Info().Str("env", cfg.Env).Msg("starting stationery inventory api")

	// 3. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	// Auto migrate keeps dev and test environments in sync; production
	// deployments should run a dedicated migration step instead.
	if err := db.AutoMigrate(
		&model.Product{}, &model.ProductSetItem{}, &model.PriceHistoryEntry{},
		&model.Student{},
		&model.Transaction{}, &model.TransactionItem{},
		&model.TransferBranch{}, &model.BranchStock{},
		&model.StockTransfer{}, &model.StockTransferItem{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto migration failed")
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	studentRepo := repository.NewStudentRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	branchRepo := repository.NewBranchRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	auditRepo := repository.NewAuditLogRepo(db)

	catalogService := service.NewCatalogService(productRepo, studentRepo, wsHub)
	txService := service.NewTransactionService(db, txRepo, studentRepo, wsHub)
	transferService := service.NewTransferService(db, transferRepo, branchRepo, wsHub)
	auditService := service.NewAuditService(db, auditRepo, productRepo, wsHub)

	productHandler := handler.NewProductHandler(catalogService)
	studentHandler := handler.NewStudentHandler(studentRepo)
	txHandler := handler.NewTransactionHandler(txService)
	transferHandler := handler.NewTransferHandler(transferService)
	auditHandler := handler.NewAuditHandler(auditService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stationery Inventory v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// 7. Routes
	api := app.Group("/api/v1")

	// Product Routes
	api.Get("/products", productHandler.GetProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Post("/products", productHandler.CreateProduct)
	api.Put("/products/:id", productHandler.UpdateProduct)
	api.Delete("/products/:id", productHandler.DeleteProduct)

	// Student Routes
	api.Get("/students", studentHandler.GetStudents)
	api.Get("/students/:id", studentHandler.GetStudent)
	api.Post("/students", studentHandler.CreateStudent)
	api.Put("/students/:id", studentHandler.UpdateStudent)

	// Transaction Routes
	api.Get("/transactions", txHandler.GetTransactions)
	api.Get("/transactions/student/:studentId", txHandler.GetTransactionsByStudent)
	api.Get("/transactions/:id", txHandler.GetTransaction)
	api.Post("/transactions", txHandler.CreateTransaction)
	api.Put("/transactions/:id", txHandler.UpdateTransaction)
	api.Delete("/transactions/:id", txHandler.DeleteTransaction)

	// Branch Routes (registered before the transfer :id routes)
	branches := api.Group("/stock-transfers/branches")
	branches.Get("/", transferHandler.GetBranches)
	branches.Post("/", transferHandler.CreateBranch)
	branches.Get("/:id", transferHandler.GetBranch)
	branches.Put("/:id", transferHandler.UpdateBranch)
	branches.Delete("/:id", transferHandler.DeleteBranch)
	branches.Get("/:id/stock", transferHandler.GetBranchStockAll)
	branches.Get("/:id/stock/:productId", transferHandler.GetBranchStock)

	// Stock Transfer Routes
	api.Get("/stock-transfers", transferHandler.GetTransfers)
	api.Post("/stock-transfers", transferHandler.CreateTransfer)
	api.Get("/stock-transfers/:id", transferHandler.GetTransfer)
	api.Put("/stock-transfers/:id", transferHandler.UpdateTransfer)
	api.Post("/stock-transfers/:id/complete", transferHandler.CompleteTransfer)
	api.Delete("/stock-transfers/:id", transferHandler.DeleteTransfer)

	// Audit Log Routes
	api.Get("/audit-logs", auditHandler.GetAuditLogs)
	api.Post("/audit-logs", auditHandler.CreateAuditLog)
	api.Patch("/audit-logs/:id/approve", auditHandler.ApproveAuditLog)
	api.Patch("/audit-logs/:id/reject", auditHandler.RejectAuditLog)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	level := zerolog.InfoLevel
	if cfg.Env != "production" {
		level = zerolog.DebugLevel
	}
	if cfg.LogLevel != "" {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
