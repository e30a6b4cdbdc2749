package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luxe-booking/config"
	"luxe-booking/internal/cache"
	"luxe-booking/internal/database"
	"luxe-booking/internal/handler"
	"luxe-booking/internal/monitoring"
	"luxe-booking/internal/queue"
	"luxe-booking/internal/repository"
	"luxe-booking/internal/service"
	"luxe-booking/internal/worker"
	"luxe-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	defer logger.Sync()
	log := logger.WithComponent("server")

	cfg := config.LoadConfig()
	gin.SetMode(cfg.Server.GinMode)
	// 金額以數字輸出
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	reservationQueue, err := newReservationQueue(ctx, cfg.Queue, rdb)
	if err != nil {
		log.Fatal("Failed to initialize reservation queue", zap.Error(err))
	}

	events := repository.NewEventRepository(pool)
	offerings := repository.NewOfferingRepository(pool)
	tiers := repository.NewVIPTierRepository(pool)
	reservations := repository.NewReservationRepository(pool)
	inventory := cache.NewInventoryManager(rdb)

	catalogService := service.NewCatalogService(events, offerings, tiers, inventory,
		service.WithDefaultMaxPerOrder(cfg.Booking.DefaultMaxPerOrder),
	)
	reservationService := service.NewReservationService(pool, events, offerings, tiers, reservations, inventory, reservationQueue,
		service.WithMaxVIPGuests(cfg.Booking.MaxVIPGuests),
	)

	if err := worker.NewReservationWorker(reservationService, reservationQueue).Start(ctx); err != nil {
		log.Fatal("Failed to start reservation worker", zap.Error(err))
	}
	if cfg.Queue.Driver != "memory" {
		go monitoring.NewStreamMonitor(rdb, queue.StreamKey, 15*time.Second).Run(ctx)
	}

	router := gin.New()
	router.Use(gin.Recovery(), monitoring.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(monitoring.Handler()))
	handler.NewCatalogHandler(catalogService).RegisterRoutes(router)
	handler.NewReservationHandler(reservationService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("queue", cfg.Queue.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newReservationQueue memory 只適用單一實例
func newReservationQueue(ctx context.Context, cfg config.QueueConfig, rdb *redis.Client) (queue.ReservationQueue, error) {
	if cfg.Driver == "memory" {
		return queue.NewReservationQueue(1000), nil
	}
	return queue.NewRedisStreamReservationQueue(ctx, rdb, cfg.ConsumerID, &queue.RedisStreamConfig{
		ClaimMinIdleTime:   cfg.ClaimMinIdleTime,
		MaxRetryCount:      cfg.MaxRetryCount,
		ReadGroupBlockTime: cfg.ReadGroupBlockTime,
	})
}
