package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/appointments"
	"salonpro-gateway/cache"
	"salonpro-gateway/config"
	"salonpro-gateway/controllers"
	"salonpro-gateway/models"
	"salonpro-gateway/routes"
	"salonpro-gateway/services"
	"salonpro-gateway/session"
	"salonpro-gateway/store"
	"salonpro-gateway/utils"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	shutdownTracing := config.SetupTracing(cfg.ServiceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	backend, closeBackend := openBackend(cfg)
	defer closeBackend()

	var notifier appointments.Notifier
	notifications := controllers.NotificationController{Notifications: noHistory{}}
	if twilio := (services.NotificationConfig{
		AccountSID:     cfg.TwilioAccountSID,
		AuthToken:      cfg.TwilioAuthToken,
		PhoneNumber:    cfg.TwilioPhoneNumber,
		WhatsAppNumber: cfg.TwilioWhatsAppNumber,
	}); twilio.Enabled() {
		svc := services.NewNotificationService(config.DB, twilio, logger)
		notifier = svc
		notifications.Notifications = svc
	} else {
		log.Println("Twilio not configured, client notifications disabled")
	}

	api := apiclient.New(cfg.APIBaseURL, &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)

	sessions := session.NewManager(session.Deps{
		API:      api,
		Backend:  backend,
		Notifier: notifier,
		Logger:   logger,
	}, cfg.SessionIdle)
	defer sessions.Close()

	poller, err := cache.NewPoller(cache.New(logger), cfg.SlotsRefetch, 0, logger)
	if err != nil {
		log.Fatalf("poller: %v", err)
	}
	poller.Start()
	defer poller.Stop()

	scheduler, err := utils.StartScheduler(logger, utils.Job{
		Name: "evict-idle-sessions",
		Spec: "@every 1m",
		Run:  func() { sessions.Evict() },
	})
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer scheduler.Stop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.SetupRouter(routes.Deps{
		Sessions:      sessions,
		Cookie:        utils.CookieOptions{MaxAge: cfg.SessionTTL, Secure: cfg.CookieSecure},
		CORSOrigins:   cfg.CORSOrigins,
		Public:        controllers.PublicController{API: api, Poller: poller},
		Notifications: notifications,
		Logger:        logger,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("salonpro-gateway listening on :%s, API %s", cfg.Port, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openBackend picks where session values persist. SESSION_SECRET seals
// them at rest whatever the backend.
func openBackend(cfg config.Config) (store.Backend, func()) {
	var backend store.Backend
	closeFn := func() {}

	switch cfg.StoreBackend {
	case "postgres":
		db, err := config.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		backend = store.GormBackend{DB: db}
	case "redis":
		client, err := config.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		backend = store.RedisBackend{Client: client, TTL: cfg.SessionTTL}
		closeFn = func() {
			if err := client.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}
	default:
		backend = store.NewMemoryBackend()
	}

	// Notification history lives in Postgres whichever backend holds
	// sessions.
	if config.DB == nil && cfg.DatabaseURL != "" {
		if _, err := config.ConnectDB(cfg.DatabaseURL); err != nil {
			log.Printf("notification log database unavailable: %v", err)
		}
	}

	if cfg.SessionSecret != "" {
		backend = store.NewSealed(backend, cfg.SessionSecret)
	} else if cfg.StoreBackend != "memory" {
		log.Println("SESSION_SECRET not set, session tokens are stored unencrypted")
	}
	return backend, closeFn
}

// noHistory answers when notifications are disabled.
type noHistory struct{}

func (noHistory) History(context.Context, models.ID) ([]models.NotificationLog, error) {
	return []models.NotificationLog{}, nil
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
