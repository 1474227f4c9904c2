package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ds124wfegd/railway-reservation/config"
	repository "github.com/ds124wfegd/railway-reservation/internal/database/memory"
	"github.com/ds124wfegd/railway-reservation/internal/service"
	"github.com/ds124wfegd/railway-reservation/internal/transport"
	"github.com/ds124wfegd/railway-reservation/internal/worker"

	"github.com/ds124wfegd/railway-reservation/pkg/queue"
	"github.com/ds124wfegd/railway-reservation/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler, log *logrus.Logger) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          logrusErrorLog(log),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Application holds the wired components of the reservation service.
type Application struct {
	Router       *gin.Engine
	Trains       service.TrainService
	Reservations service.ReservationService
	AuditWorker  *worker.InventoryAuditWorker

	eventQueue queue.Queue
}

// NewApplication wires repositories, services, the optional event feed and
// the HTTP router. Event feed failures are logged and the service runs without events.
func NewApplication(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Initialize repositories
	trainRepo := repository.NewTrainRepository()
	bookingRepo := repository.NewBookingRepository()

	app := &Application{}

	var publisher service.EventPublisher
	var checks []transport.HealthCheck

	eventQueue, err := newEventQueue(ctx, cfg)
	switch {
	case err != nil:
		log.Errorf("Failed to initialize %s event feed: %v. Continuing without event feed...", cfg.Events.Driver, err)
	case eventQueue == nil:
		log.Info("Event feed disabled, reservation events are not published")
	default:
		app.eventQueue = eventQueue
		publisher = service.NewQueueAdapter(eventQueue, cfg.Events.PublishRetries)
		checks = append(checks, transport.HealthCheck{Name: "event_feed", Check: eventQueue.HealthCheck})
		log.WithField("driver", cfg.Events.Driver).Info("Event feed enabled")
	}

	// Initialize services
	app.Trains = service.NewTrainService(trainRepo, log)
	app.Reservations = service.NewReservationService(trainRepo, bookingRepo, publisher, log)
	app.AuditWorker = worker.NewInventoryAuditWorker(app.Reservations, cfg.Worker.AuditInterval, log)

	// Initialize handlers
	trainHandler := transport.NewTrainHandler(app.Trains)
	bookingHandler := transport.NewBookingHandler(app.Reservations)

	setGinMode(&cfg.Server)
	app.Router = transport.InitRoutes(&cfg.Server, log, trainHandler, bookingHandler, checks...)

	return app, nil
}

// newEventQueue connects the backend chosen by events.driver. It returns a
// nil queue when the feed is disabled.
func newEventQueue(ctx context.Context, cfg *config.Config) (queue.Queue, error) {
	retryManager := queue.NewRetryManager(cfg.Events.PublishRetries, cfg.Events.PublishBaseDelay)

	switch cfg.Events.Driver {
	case config.EventDriverRedis:
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisQueue(redisClient, cfg.Redis.EventKey, retryManager), nil
	case config.EventDriverRabbitMQ:
		rabbitQueue, err := queue.NewRabbitQueue(queue.RabbitQueueConfig{
			URL:         cfg.Events.RabbitMQ.URL,
			QueueName:   cfg.Events.RabbitMQ.QueueName,
			DialTimeout: cfg.Events.RabbitMQ.DialTimeout,
		}, retryManager)
		if err != nil {
			return nil, err
		}
		return rabbitQueue, nil
	case config.EventDriverKafka:
		kafkaQueue, err := queue.NewKafkaQueue(ctx, queue.KafkaQueueConfig{
			Brokers:      cfg.Events.Kafka.Brokers,
			Topic:        cfg.Events.Kafka.Topic,
			WriteTimeout: cfg.Events.Kafka.WriteTimeout,
		}, retryManager)
		if err != nil {
			return nil, err
		}
		return kafkaQueue, nil
	case config.EventDriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event driver %q", cfg.Events.Driver)
	}
}

// Close releases the event feed connection, if any.
func (a *Application) Close() error {
	if a.eventQueue == nil {
		return nil
	}
	return a.eventQueue.Close()
}

func NewServer(cfg *config.Config) {
	log := logrus.StandardLogger()
	if err := ConfigureLogger(log, &cfg.Log); err != nil {
		log.Fatalf("Invalid log configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Errorf("error occured on closing event feed: %s", err.Error())
		}
	}()

	go app.AuditWorker.Start(ctx)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, app.Router, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	log.WithFields(logrus.Fields{
		"address": cfg.Address(),
		"version": cfg.Server.AppVersion,
	}).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

// ConfigureLogger applies the level and format from cfg to log.
func ConfigureLogger(log *logrus.Logger, cfg *config.LogConfig) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return nil
}

func setGinMode(cfg *config.ServerConfig) {
	switch {
	case cfg.Mode == gin.ReleaseMode || cfg.Env == "production":
		gin.SetMode(gin.ReleaseMode)
	case cfg.Mode == gin.TestMode:
		gin.SetMode(gin.TestMode)
	case cfg.Mode == gin.DebugMode:
		gin.SetMode(gin.DebugMode)
	}
}
