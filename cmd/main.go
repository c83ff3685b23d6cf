package main

import (
	"context"
	"net/http"
	"time"

	"motorent/backend/internal/api/handler"
	"motorent/backend/internal/chat"
	"motorent/backend/internal/config"
	"motorent/backend/internal/gateway"
	"motorent/backend/internal/localization"
	"motorent/backend/internal/logging"
	"motorent/backend/internal/metrics"
	"motorent/backend/internal/models"
	"motorent/backend/internal/notify"
	"motorent/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	// 2. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Rental{},
		&models.Chat{},
		&models.Message{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// 3. Redis. Optional: without it push dispatch and presence are skipped.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, presence and push dispatch disabled")
			rdb = nil
		}
	}

	log.Info().Msg("database connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded")
	}

	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting motorent chat backend")

	// 1. Storage
	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	// 2. Push senders
	senders := []notify.Sender{notify.NewRedisSender(s)}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramSender(cfg.TelegramBotToken, s)
		if err != nil {
			log.Warn().Err(err).Msg("telegram sender disabled")
		} else {
			senders = append(senders, tg)
		}
	}
	notifier := notify.NewMultiSender(senders...)

	// 3. Localization for push texts
	localizer, err := localization.NewLocalizer(cfg.LocalesPath)
	if err != nil {
		log.Warn().Err(err).Msg("locales not loaded, push texts fall back to English")
		localizer = nil
	}

	// 4. Chat service and realtime gateway
	chatSvc := chat.NewService(s, notifier, localizer)
	registry := gateway.NewRegistry()
	gw := gateway.NewGateway(registry, chatSvc, s)
	go gw.Run()

	// 5. Gin and routing
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(handler.CORS(cfg.Env))
	r.Use(metrics.GinMiddleware())

	h := handler.NewHandler(chatSvc, s, gw, cfg)

	auth := r.Group("/auth")
	auth.Use(handler.RateLimit(5, 10))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	api := r.Group("/")
	api.Use(h.AuthMiddleware(), handler.RateLimit(20, 40))
	api.GET("/chats", h.MyChats)
	api.GET("/chats/unread-count", h.UnreadCount)
	api.GET("/chats/:id", h.ChatDetail)
	api.GET("/chats/:id/messages", h.ChatMessages)
	api.POST("/chats/:id/messages", h.SendMessage)
	api.POST("/chats/:id/read", h.MarkRead)
	api.POST("/rentals/:id/chat", h.CreateRentalChat)

	r.GET("/ws", h.ServeWs)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", server.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
