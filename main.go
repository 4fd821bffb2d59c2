package main

import (
	"fmt"
	"os"
	"time"
	"vayro/config"
	"vayro/database"
	"vayro/handlers"
	"vayro/logger"
	"vayro/metrics"
	"vayro/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalw("Failed to register metrics", "error", err)
	}

	// Without a database plans are still generated, they just cannot be saved.
	if err := database.InitDB(cfg.Database); err != nil {
		log.Errorw("Database unavailable, trip plans will not be saved", "error", err)
	}

	services.InitAI(cfg.OpenAI)
	services.InitGoogle(cfg.Google)
	services.InitAmadeus(cfg.Amadeus)

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger())

	// Trusted proxies (hosted behind a proxy)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	allowedOrigins := append([]string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8081"},
		cfg.Server.FrontendURLs...)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(r)

	log.Infow("Vayro backend starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalw("Failed to start server", "error", err)
	}
}
