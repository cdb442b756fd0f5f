package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/go-chi/chi/v5"
	"github.com/theratreat/therabook-backend/internal/config"
	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/handlers"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/routes"
	"github.com/theratreat/therabook-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL (audit store)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, cache, rate limiting, booking events)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (domain store)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Ensure indexes. The partial unique slot index is what enforces
	// "at most one active booking per slot", so this must not be skipped.
	if err := services.EnsureIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure MongoDB indexes:", err)
	}
	log.Println("✅ MongoDB indexes ensured")

	// Initialize Cloudinary for verification document uploads
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Document uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Document uploads will not be available")
	}

	// Wire the booking domain
	store := services.NewMongoStore()
	resolver := services.NewTherapistResolver(store)
	availability := services.NewAvailabilityService(resolver, store)
	bookings := services.NewBookingService(resolver, store)
	handlers.InitBookingHandlers(bookings, availability, resolver)

	// Start the shared Redis listener feeding the booking-updates WebSocket
	services.StartRedisBookingSubscriber(context.Background())

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → per-IP + login rate limiting.
	// Non-production: Redis-based rate limit only.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  GET  /api/therapists")
	log.Println("  GET  /api/therapists/{id}/availability")
	log.Println("  POST /api/bookings")
	log.Println("  GET  /api/bookings")
	log.Println("  POST /api/therapist/onboarding")
	log.Println("  GET  /api/admin/therapists/pending")
	log.Println("  GET  /ws/bookings")

	log.Printf("🚀 TheraBook backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
