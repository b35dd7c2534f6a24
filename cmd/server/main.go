package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_analytics/internal/cache"
	"restaurant_analytics/internal/database"
	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/internal/router"
	"restaurant_analytics/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	utils.InitLogger(utils.Getenv("LOG_LEVEL", "info"))

	if err := utils.SetJWTSecret(os.Getenv("JWT_SECRET")); err != nil {
		utils.LogError(err, "JWT_SECRET is required")
		log.Fatalf("invalid configuration: %v", err)
	}

	dbConfig := database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "analytics_user"),
		Password:   utils.Getenv("DB_PASSWORD", "analytics_password"),
		Name:       utils.Getenv("DB_NAME", "restaurant_analytics"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		MaxConns:   utils.GetenvInt("DB_MAX_CONNS", 10),
	}
	if err := database.InitDB(dbConfig); err != nil {
		utils.LogError(err, "Failed to initialize database")
		log.Fatalf("failed to initialize database: %v", err)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbConfig.Host, "name": dbConfig.Name})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		CacheTTL:     time.Duration(utils.GetenvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		QueryTimeout: time.Duration(utils.GetenvInt("QUERY_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	if addr := utils.Getenv("REDIS_ADDR", ""); addr != "" {
		metricCache, err := cache.New(ctx, cache.Config{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       utils.GetenvInt("REDIS_DB", 0),
		})
		if err != nil {
			utils.LogError(err, "Redis unavailable, metric cache disabled", map[string]interface{}{"addr": addr})
		} else {
			opts.Cache = metricCache
			utils.LogInfo("Metric cache enabled", map[string]interface{}{"addr": addr, "ttl": opts.CacheTTL.String()})
		}
	}

	limiter := middleware.NewRateLimiter(float64(utils.GetenvInt("RATE_LIMIT_RPS", 10)), utils.GetenvInt("RATE_LIMIT_BURST", 20))
	limiter.StartCleanup(ctx, time.Minute)
	opts.RateLimiter = limiter

	engine, err := router.NewEngine(router.EngineConfig{
		AllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		TrustedProxies: utils.GetenvList("TRUSTED_PROXIES", nil),
	})
	if err != nil {
		utils.LogError(err, "Invalid TRUSTED_PROXIES")
		log.Fatalf("invalid configuration: %v", err)
	}

	router.Setup(engine, database.GetDB(), opts)

	port := utils.Getenv("PORT", "8080")
	srv := &http.Server{Addr: ":" + port, Handler: engine}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.LogError(err, "Failed to start server")
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server shutdown failed")
	}
	if err := database.GetDB().Close(); err != nil {
		utils.LogError(err, "Closing database failed")
	}
}
