package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/foxxcyber/nutri-scan/internal/config"
	"github.com/foxxcyber/nutri-scan/internal/database"
	"github.com/foxxcyber/nutri-scan/internal/handlers"
	"github.com/foxxcyber/nutri-scan/internal/middleware"
	"github.com/foxxcyber/nutri-scan/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize OCR service
	ocrService, err := services.NewOCRService(cfg.OCRLanguage)
	if err != nil {
		log.Fatalf("Failed to initialize OCR service: %v", err)
	}
	defer ocrService.Close()

	// Initialize text-generation provider
	provider, err := services.NewCompleterFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s provider: %v", cfg.LLMProvider, err)
	}

	parser := services.NewReplyParser()
	analyzerOpts := []services.AnalyzerOption{
		services.WithDebugLogging(cfg.IsDevelopment()),
	}

	// Optional label image archive
	var storageService *services.StorageService
	if cfg.S3Enabled {
		if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			log.Println("S3 credentials not configured, label archiving disabled")
		} else {
			storageService, err = services.NewStorageService(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
			if err != nil {
				log.Printf("Warning: Failed to initialize storage service: %v", err)
			} else {
				if err := storageService.EnsureBucket(ctx); err != nil {
					log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
				}
				analyzerOpts = append(analyzerOpts, services.WithArchive(storageService))
				log.Println("Label archiving initialized")
			}
		}
	}

	// Optional analysis audit log: Postgres when DATABASE_URL is set,
	// otherwise a local SQLite file when AUDIT_SQLITE_PATH is set
	var audit auditStore
	switch {
	case cfg.DatabaseURL != "":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Analysis audit log disabled: %v", err)
			break
		}
		defer db.Close()
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		audit = db
	case cfg.AuditSQLitePath != "":
		store, err := database.OpenSQLite(cfg.AuditSQLitePath)
		if err != nil {
			log.Printf("Warning: Analysis audit log disabled: %v", err)
			break
		}
		defer store.Close()
		log.Printf("Analysis audit log stored in %s", cfg.AuditSQLitePath)
		audit = store
	}
	if audit != nil {
		analyzerOpts = append(analyzerOpts, services.WithRecorder(audit, cfg.ImageRetention()))
		go cleanupExpiredAnalyses(audit, storageService)
	}

	analyzer := services.NewAnalyzer(ocrService, provider, parser, analyzerOpts...)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, parser, cfg.MaxUploadBytes())

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadBytes()) + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Content-Type, Authorization",
		AllowMethods: "GET, POST, OPTIONS, DELETE",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")
	api.Post("/analyze", analyzeHandler.Analyze)
	api.Post("/parse", analyzeHandler.ParseReply)

	// Admin routes (only when the audit log is available)
	if audit != nil {
		if cfg.IsProduction() && cfg.JWTSecret == config.DefaultJWTSecret {
			log.Fatal("JWT_SECRET must be set in production")
		}
		authHandler, err := handlers.NewAuthHandler(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize auth handler: %v", err)
		}

		var presigner handlers.ImagePresigner
		if storageService != nil {
			presigner = storageService
		}
		adminHandler := handlers.NewAdminHandler(audit, presigner)

		api.Post("/auth/login", authHandler.Login)

		admin := api.Group("/admin", middleware.AuthRequired(cfg), middleware.AdminRequired())
		admin.Get("/analyses", adminHandler.ListAnalyses)
		admin.Get("/analyses/stats", adminHandler.GetAnalysisStats)
		admin.Get("/analyses/:id/image", adminHandler.GetAnalysisImage)
	}

	// Static files - serve the built client
	app.Static("/", cfg.StaticDir, fiber.Static{
		Index:  "index.html",
		Browse: false,
	})

	// Fallback for SPA-style routing - serve index.html for unmatched routes
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(cfg.StaticDir + "/index.html")
	})

	log.Printf("Server starting on port %s (provider: %s)", cfg.Port, provider.Name())
	log.Fatal(app.Listen(":" + cfg.Port))
}

// auditStore is implemented by both audit log backends
type auditStore interface {
	services.AnalysisRecorder
	handlers.AnalysisStore
	CleanupExpiredAnalyses(ctx context.Context) ([]string, error)
}

// cleanupExpiredAnalyses removes audit rows and archived images past retention
func cleanupExpiredAnalyses(audit auditStore, storage *services.StorageService) {
	ctx := context.Background()
	keys, err := audit.CleanupExpiredAnalyses(ctx)
	if err != nil {
		log.Printf("Warning: Failed to cleanup expired analyses: %v", err)
		return
	}
	if len(keys) == 0 || storage == nil {
		return
	}

	log.Printf("Cleaned up %d expired analyses", len(keys))
	if err := storage.DeleteMultiple(ctx, keys); err != nil {
		log.Printf("Warning: Failed to delete some S3 objects: %v", err)
	} else {
		log.Printf("Deleted %d expired label image(s) from storage", len(keys))
	}
}
