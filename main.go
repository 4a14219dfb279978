package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"booking-service/internal/config"
	"booking-service/internal/handlers"
	"booking-service/internal/kafka"
	"booking-service/internal/logger"
	"booking-service/internal/middleware"
	"booking-service/internal/notify"
	rediswrap "booking-service/internal/redis"
	"booking-service/internal/services"
	"booking-service/internal/storage"
)

var log *logger.Logger

func main() {
	envFlag := flag.String("env", "dev", "Environment (dev, test, prod)")
	envFileFlag := flag.String("env-file", "", "Path to .env file")
	migrateFlag := flag.Bool("migrate", false, "Apply the MySQL schema and exit")
	flag.Parse()

	loadEnv(*envFlag, *envFileFlag)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log = logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	defer log.Close()

	log.LogProcess("STARTUP", "Booking service starting up...")
	log.Info("CONFIG", "Configuration loaded successfully")

	if *migrateFlag {
		runMigration(cfg)
		return
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store := openStore(cfg)
	defer store.Close()

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer producer.Close()

	notifier, closeNotifier := newNotifier(ctx, cfg, producer)
	defer closeNotifier()

	gateway := newGateway(cfg)

	bookingService := services.NewBookingService(store, gateway, notifier, producer, cfg.Booking, log)
	log.LogProcess("SERVICE", "Booking service initialized")

	bookingHandler := handlers.NewBookingHandler(bookingService, log)
	healthHandler := handlers.NewHealthHandler(store, log)

	routerCfg := handlers.RouterConfig{
		Auth:        cfg.Auth,
		RateLimit:   cfg.RateLimit,
		Idempotency: newIdempotencyStore(ctx, cfg),
	}
	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(routerCfg, bookingHandler, healthHandler, log)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on port "+cfg.Server.Port)
		log.Info("STARTUP", "Health check available at: http://localhost"+cfg.Server.Port+"/health")
		log.Info("STARTUP", "Booking API available at: http://localhost"+cfg.Server.Port+"/api/v1/bookings")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "Server failed to start: "+err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}

	log.Info("SHUTDOWN", "Booking service shutdown completed")
}

func loadEnv(env string, envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			fmt.Printf("Loaded environment from %s\n", envFile)
			return
		}
	}

	envSpecificFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envSpecificFile); err == nil {
		fmt.Printf("Loaded environment from %s\n", envSpecificFile)
		return
	}

	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
		return
	}

	fmt.Println("No .env file found, using default or system environment variables")
}

func runMigration(cfg *config.Config) {
	store, err := storage.NewMySQLStore(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", "Failed to connect to MySQL: "+err.Error())
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		log.Fatal("DATABASE", "Migration failed: "+err.Error())
	}
	log.LogProcess("MIGRATION", "Migration completed successfully")
}

func openStore(cfg *config.Config) storage.Store {
	switch cfg.StoreDriver {
	case "memory":
		mem := storage.NewInMemoryStore()
		mem.SeedDemo(time.Now().UTC())
		log.Warn("DATABASE", "Using in-memory store with demo data; nothing is persisted")
		return mem
	case "mysql":
		log.LogProcess("DATABASE", "Initializing MySQL database...")
		store, err := storage.NewMySQLStore(cfg.Database, log)
		if err != nil {
			log.Fatal("DATABASE", "Failed to initialize MySQL: "+err.Error())
		}
		log.LogDatabase("INIT", "mysql", "MySQL storage initialized successfully")
		return store
	default:
		log.Fatal("CONFIG", "Unknown STORE_DRIVER: "+cfg.StoreDriver)
		return nil
	}
}

// newNotifier picks how approval notifications leave the service. With SMTP
// and a real broker, mail is relayed through the notification topic and sent
// by the consumer; with SMTP alone it is sent inline; otherwise it is logged.
func newNotifier(ctx context.Context, cfg *config.Config, producer *kafka.Producer) (services.Notifier, func()) {
	if !cfg.SMTP.Enabled() {
		log.Warn("NOTIFY", "SMTP not configured, notifications are only logged")
		return notify.NewLogSender(log), func() {}
	}

	email := notify.NewEmailSender(cfg.SMTP, log)
	if cfg.Kafka.MockMode {
		return email, func() {}
	}

	consumer, err := kafka.NewNotificationConsumer(cfg.Kafka, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create notification consumer: "+err.Error())
	}

	go func() {
		log.LogKafka("START", cfg.Kafka.NotificationTopic, "Starting notification consumer")
		if err := consumer.Consume(ctx, email.HandleEvent); err != nil && ctx.Err() == nil {
			log.Error("KAFKA", "Consumer error: "+err.Error())
		}
	}()

	return notify.NewKafkaRelay(producer), func() {
		if err := consumer.Close(); err != nil {
			log.Error("KAFKA", "Failed to close consumer: "+err.Error())
		}
	}
}

func newGateway(cfg *config.Config) services.PaymentGateway {
	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE", "STRIPE_SECRET_KEY not set, using sandbox gateway (every order is paid)")
		return services.NewSandboxGateway(true, log)
	}

	gateway, err := services.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency, log)
	if err != nil {
		log.Fatal("STRIPE", "Failed to initialize Stripe gateway: "+err.Error())
	}
	log.LogProcess("STRIPE", "Stripe gateway initialized")
	return gateway
}

// newIdempotencyStore returns nil when Redis is unreachable, which turns
// Idempotency-Key handling off.
func newIdempotencyStore(ctx context.Context, cfg *config.Config) middleware.IdempotencyStore {
	client := rediswrap.NewClient(cfg.Redis)
	store := rediswrap.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis at %s unavailable, Idempotency-Key disabled: %v", cfg.Redis.Addr, err))
		client.Close()
		return nil
	}

	log.LogProcess("REDIS", "Redis connection successful")
	return store
}
