package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-resale/config"
	"ticket-resale/handlers"
	"ticket-resale/monitoring"
	"ticket-resale/security"
	"ticket-resale/services"
	"ticket-resale/services/extract"
	"ticket-resale/services/gateway"
	"ticket-resale/services/notify"
	"ticket-resale/store"
	"ticket-resale/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pocketbase/dbx"
	"github.com/labstack/echo/v5"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.LoadConfig()

	db, err := store.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Out-of-band dispatch goes through PubNub when keys are configured,
	// otherwise codes and settlement events land in the process log.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		notifier = notify.NewPubNubNotifier(pubnub.NewPubNub(pnConfig))
	}

	provider := gateway.Provider(cfg.GatewayProvider)
	if cfg.Environment == "development" && cfg.GatewayKeyID == "" {
		provider = gateway.ProviderSandbox
	}
	gw, err := gateway.New(gateway.Config{
		Provider: provider,
		BaseURL:  cfg.GatewayBaseURL,
		KeyID:    cfg.GatewayKeyID,
		Secret:   cfg.GatewaySecret,
		Timeout:  cfg.GatewayTimeout,
	})
	if err != nil {
		return err
	}

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	validate := validator.New()

	ticketStore := store.NewTicketStore(db)
	userStore := store.NewUserStore(db)
	catalogStore := store.NewCatalogStore(db)
	challengeStore := store.NewChallengeStore(redisClient)

	filterService := services.NewFilterService(redisClient, ticketStore)
	authService := services.NewAuthService(userStore, challengeStore, tokens, notifier, services.AuthOptions{
		OTPExpiry:  cfg.OTPExpiry,
		TestPhone:  cfg.OTPTestPhone,
		TestCode:   cfg.OTPTestCode,
		TestExpiry: cfg.OTPTestExpiry,
		Production: cfg.Environment == "production",
	})
	listingService := services.NewListingService(ticketStore, filterService)
	checkoutService := services.NewCheckoutService(ticketStore, gw, filterService, notifier, cfg.Currency)
	intakeService := services.NewIntakeService(
		ticketStore,
		userStore,
		catalogStore,
		filterService,
		extract.NewTesseract(cfg.TesseractPath, cfg.ExtractTimeout),
		extract.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ExtractTimeout),
	)

	authHandler := handlers.NewAuthHandler(authService, validate)
	ticketHandler := handlers.NewTicketHandler(listingService, intakeService, filterService, catalogStore, validate)
	uploadHandler := handlers.NewUploadHandler(intakeService, cfg.UploadDir, cfg.MaxUpload)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	profileHandler := handlers.NewProfileHandler(userStore)
	adminHandler := handlers.NewAdminHandler(ticketStore, intakeService, filterService, validate)

	rateLimiter := security.NewRateLimiter(redisClient)

	e := echo.New()
	if cfg.EnableMetrics {
		e.Use(monitoring.HTTPMetrics())
		go monitoring.Serve(cfg.MetricsPort)
	}

	registerRoutes(e, cfg, db, redisClient, tokens, rateLimiter,
		authHandler, ticketHandler, uploadHandler, checkoutHandler, profileHandler, adminHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func registerRoutes(
	e *echo.Echo,
	cfg *config.Config,
	db *dbx.DB,
	redisClient *redis.Client,
	tokens *security.TokenManager,
	rateLimiter *security.RateLimiter,
	auth *handlers.AuthHandler,
	tickets *handlers.TicketHandler,
	uploads *handlers.UploadHandler,
	checkout *handlers.CheckoutHandler,
	profile *handlers.ProfileHandler,
	admin *handlers.AdminHandler,
) {
	// Public surface
	e.POST("/request-otp", auth.RequestOTP, rateLimiter.OTPRateLimit(cfg.OTPRequestsPerMinute))
	e.POST("/signup", auth.Signup)
	e.POST("/login", auth.Login)
	e.GET("/tickets", tickets.Browse)
	e.GET("/active-filters", tickets.ActiveFilters)
	e.GET("/cinema-data", tickets.CinemaData)
	e.POST("/tickets/:id/report", tickets.Report)
	e.Static("/uploads", cfg.UploadDir)

	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		if err := db.DB().PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Authenticated surface
	user := e.Group("", security.RequireUser(tokens))
	user.GET("/ticket/:id", tickets.Detail)
	user.POST("/tickets", tickets.Create)
	user.GET("/my-tickets", tickets.Mine)
	user.GET("/bought-tickets", tickets.Bought)
	user.PATCH("/my-tickets/:id/price", tickets.UpdatePrice)
	user.DELETE("/my-tickets/:id", tickets.Delete)
	user.POST("/upload", uploads.Upload)
	user.POST("/upload2", uploads.Intake)
	user.POST("/create-order/:id", checkout.CreateOrder)
	user.POST("/verify-payment", checkout.VerifyPayment)
	user.GET("/profile", profile.Profile)
	user.PUT("/edit-profile", profile.EditProfile)

	// Admin surface
	adm := e.Group("/admin", security.RequireAdmin(tokens))
	adm.GET("/tickets", admin.ListTickets)
	adm.POST("/tickets", admin.CreateTicket)
	adm.DELETE("/tickets/:id", admin.DeleteTicket)
}
