package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderbot/cmd"
	"orderbot/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := openDatabase(configs, logger)

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := run(ctx, app, configs.Port(), logger); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config := cmd.Config{
		HTTPPort:              os.Getenv("HTTP_PORT"),
		DBHost:                os.Getenv("DB_HOST"),
		DBPort:                os.Getenv("DB_PORT"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                os.Getenv("DB_NAME"),
		DBSslMode:             os.Getenv("DB_SSLMODE"),
		Storage:               os.Getenv("STORAGE"),
		BaseURL:               os.Getenv("BASE_URL"),
		Timezone:              os.Getenv("TIMEZONE"),
		WhatsAppAccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppVerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppRatePerSecond: os.Getenv("WHATSAPP_RATE_PER_SECOND"),
		UPIID:                 os.Getenv("UPI_ID"),
		UPIMerchantName:       os.Getenv("UPI_MERCHANT_NAME"),
		CloudinaryURL:         os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder:      os.Getenv("CLOUDINARY_FOLDER"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		GoogleSheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		GoogleSheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		DeliveryAreas:         os.Getenv("DELIVERY_AREAS"),
		DeliveryFee:           os.Getenv("DELIVERY_FEE"),
		AdminToken:            os.Getenv("ADMIN_TOKEN"),
		WebhookWorkers:        os.Getenv("WEBHOOK_WORKERS"),
		SheetSyncSchedule:     os.Getenv("SHEET_SYNC_SCHEDULE"),
	}
	return config
}

// openDatabase connects and migrates PostgreSQL, or returns nil for STORAGE=memory.
func openDatabase(configs cmd.Config, logger *slog.Logger) *gorm.DB {
	if configs.StorageKind() == cmd.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return nil
	}

	gormDB, err := gorm.Open(postgresdriver.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := gormDB.AutoMigrate(postgres.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return gormDB
}

func run(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) error {
	server, err := app.CreateServer()
	if err != nil {
		return err
	}
	// runs after Shutdown, so no new events can arrive while the queue drains
	defer server.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	server.Register(e)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := e.Start(fmt.Sprintf("0.0.0.0:%s", port))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
