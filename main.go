package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"squadfinder_server/config"
	"squadfinder_server/logger"
	"squadfinder_server/metrics"
	"squadfinder_server/middleware"
	"squadfinder_server/routes"
	"squadfinder_server/services"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = logger.New(cfg.LogLevel)

	awsCfg, err := services.InitializeAWSConfig(context.Background(), cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}

	dynamoService := services.NewDynamoService(dynamodb.NewFromConfig(awsCfg), log)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var avatars services.AvatarSigner
	if cfg.S3Bucket != "" {
		avatars = services.NewS3Service(awsCfg, cfg.S3Bucket)
	}
	push := services.NewLogPushNotifier(log)

	swipeService := services.NewSwipeService(dynamoService, log)
	matchService := services.NewMatchService(dynamoService, swipeService, push, avatars, collector, log)
	feedService := services.NewFeedService(dynamoService, swipeService, avatars, collector, log, cfg.PassResurfaceAfter)
	messageService := services.NewMessageService(dynamoService, matchService, collector, log)
	chatService := services.NewChatService(messageService, collector, log)
	gameService := services.NewGameService(dynamoService, log)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler(registry)).Methods("GET")

	routes.RegisterFeedRoutes(r, feedService)
	routes.RegisterSwipeRoutes(r, matchService)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterGameRoutes(r, gameService)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	defer rateLimiter.Stop()

	handler := middleware.RequestID(log)(rateLimiter.Middleware()(r))
	handler = cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return
	}
	log.Info().Msg("server stopped gracefully")
}
