package main

import (
	"database/sql"
	"net/http"
	"time"

	"mealdrop-be/internal/config"
	"mealdrop-be/internal/db"
	"mealdrop-be/internal/logger"
	"mealdrop-be/internal/menu"
	"mealdrop-be/internal/notification"
	"mealdrop-be/internal/order"
	"mealdrop-be/internal/refund"
	"mealdrop-be/internal/rest"
	"mealdrop-be/internal/watch"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Seams for tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	handler := newServer(cfg, database)

	addr := ":" + cfg.AppPort
	logger.L().Info("server listening", zap.String("addr", addr))
	return startServerFunc(addr, handler)
}

// newServer wires the repositories, services and transport together.
func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	var cache *menu.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = menu.NewCache(client, 5*time.Minute)
	}

	var publisher notification.Publisher
	if cfg.KafkaBroker != "" {
		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBroker),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		publisher = notification.NewKafkaPublisher(writer)
	}

	menuRepo := menu.NewRepository(database)
	menuSvc := menu.NewService(menuRepo, cache)

	refundRepo := refund.NewRepository(database)
	refundSvc := refund.NewService(refundRepo)

	hub := watch.NewHub()

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, menuSvc, refundSvc, publisher, hub)

	handler := rest.NewHandler(orderSvc, refundSvc)
	return rest.NewRouter(handler)
}
