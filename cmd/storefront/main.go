package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/auth"
	"github.com/iyhunko/hifi-storefront/internal/config"
	httpAPI "github.com/iyhunko/hifi-storefront/internal/http"
	"github.com/iyhunko/hifi-storefront/internal/http/controller"
	"github.com/iyhunko/hifi-storefront/internal/http/middleware"
	"github.com/iyhunko/hifi-storefront/internal/kvstore/backend"
	"github.com/iyhunko/hifi-storefront/internal/logger"
	"github.com/iyhunko/hifi-storefront/internal/media"
	"github.com/iyhunko/hifi-storefront/internal/metrics"
	"github.com/iyhunko/hifi-storefront/internal/repository"
	"github.com/iyhunko/hifi-storefront/internal/repository/kv"
	"github.com/iyhunko/hifi-storefront/internal/service"
	"github.com/iyhunko/hifi-storefront/internal/session"
	sqspkg "github.com/iyhunko/hifi-storefront/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := backend.Open(ctx, conf.Store)
	handleErr("opening store", err)
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close store", slog.Any("err", err))
		}
	}()
	slog.Info("Store opened", slog.String("driver", conf.Store.Driver))

	var opts []kv.Option
	if conf.Store.LenientDecode {
		opts = append(opts, kv.WithLenientDecode())
	}
	repos := kv.New(store, opts...)

	// Events are only recorded when there is a queue to publish them to.
	var events repository.EventRepository
	var outboxWorker *service.OutboxWorker
	if conf.EventsEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		handleErr("creating SQS client", err)

		events = repos.Events
		outboxWorker = service.NewOutboxWorker(repos.Events, sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL), conf.AWS.OutboxInterval)
		go outboxWorker.Start(ctx)
	}

	gate := session.NewGate(store, auth.NewClient(conf.Auth))
	catalog := service.NewCatalogService(repos.Products, repos.Orders, events)

	router := httpAPI.InitRouter(gin.New(), middleware.New(gate), httpAPI.Controllers{
		General:  controller.New(),
		Sessions: controller.NewSessionController(gate),
		Products: controller.NewProductController(catalog),
		Orders:   controller.NewOrderController(catalog),
		Images:   controller.NewImageController(media.NewLocalPicker(conf.ImageDir)),
	})

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error while listening to HTTP requests", slog.Any("err", err))
			cancel()
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	if outboxWorker != nil {
		outboxWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop HTTP server", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop metrics server", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
