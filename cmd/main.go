package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	createBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_booking"
	getActiveBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_active_booking"
	getBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_booking"
	getCurrentUserHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_current_user"
	getDashboardHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_dashboard"
	getParkingMapHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_parking_map"
	getProfitsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_profits"
	listBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_bookings"
	listEventsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_events"
	loginHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/login"
	logoutHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/logout"
	registerHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/register"
	streamEventsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/stream_events"
	updateBookingStatusHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
	"github.com/m04kA/SMC-ParkingService/internal/infra/broker"
	"github.com/m04kA/SMC-ParkingService/internal/infra/cache/idempotency"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	eventRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/event"
	profitRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/profit"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	userRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/user"
	bookingsService "github.com/m04kA/SMC-ParkingService/internal/service/bookings"
	dashboardService "github.com/m04kA/SMC-ParkingService/internal/service/dashboard"
	identityService "github.com/m04kA/SMC-ParkingService/internal/service/identity"
	profitsService "github.com/m04kA/SMC-ParkingService/internal/service/profits"
	createBookingUC "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
	getParkingMapUC "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_map"
	"github.com/m04kA/SMC-ParkingService/internal/worker/expiry"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	// sweepTimeout ограничение одного прохода по истекшим бронированиям
	sweepTimeout = 30 * time.Second

	// txRetryDelay начальная задержка между повторами транзакции
	txRetryDelay = 20 * time.Millisecond
)

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from %s (timezone=%s, hourly_rate=%d)",
		configPath, cfg.Parking.Location, cfg.Parking.HourlyRate)

	// Инициализируем метрики (если включены). nil *Metrics - метрики выключены.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB, txmanager.WithRetry(cfg.Database.TxMaxAttempts, txRetryDelay))

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	slotRepository := slotRepo.NewRepository(wrappedDB)
	profitRepository := profitRepo.NewRepository(wrappedDB)
	eventRepository := eventRepo.NewRepository(wrappedDB)
	userRepository := userRepo.NewRepository(wrappedDB)

	// Заполняем справочник мест по разметке из конфига (существующие места не трогаются)
	layout, err := cfg.Parking.Layout()
	if err != nil {
		log.Fatal("Invalid parking layout: %v", err)
	}
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	inserted, err := slotRepository.Seed(seedCtx, layout.AllSlots())
	seedCancel()
	if err != nil {
		log.Fatal("Failed to seed parking slots: %v", err)
	}
	log.Info("Parking slots seeded: inserted=%d, partitions=%d", inserted, len(layout.Partitions))

	// Рассылка событий: websocket хаб и (опционально) RabbitMQ
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := events.NewHub(log)
	go hub.Run(hubCtx)

	var (
		publisher *broker.Publisher
		eventSink events.Publisher
	)
	if cfg.RabbitMQ.URL != "" {
		publisher = broker.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		eventSink = publisher
		log.Info("RabbitMQ publishing enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	notifier := events.NewNotifier(hub, eventSink, metricsCollector, log)

	// Idempotency-Key хранится в redis (опционально)
	var (
		redisClient *redis.Client
		idemStore   middleware.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// middleware пропускает запросы без идемпотентности, пока redis недоступен
			log.Warn("Redis is not reachable at %s: %v", cfg.Redis.Addr, err)
		}
		pingCancel()
		idemStore = idempotency.NewStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTL)*time.Second)
		log.Info("Idempotency keys enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.IdempotencyTTL)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		profitRepository,
		eventRepository,
		userRepository,
		txMgr,
		notifier,
		metricsCollector,
		cfg.Parking.Location,
		cfg.Sweep.BatchSize,
		log,
	)
	identitySvc := identityService.NewService(
		userRepository,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL(),
		cfg.Auth.BcryptCost,
		cfg.Auth.AllowAdminRegistration,
		log,
	)
	profitsSvc := profitsService.NewService(profitRepository, txMgr, cfg.Parking.Location, log)
	dashboardSvc := dashboardService.NewService(
		slotRepository,
		bookingRepository,
		profitRepository,
		userRepository,
		txMgr,
		cfg.Parking.Location,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		userRepository,
		eventRepository,
		txMgr,
		notifier,
		cfg.Parking.HourlyRate,
		cfg.Parking.Location,
		log,
	)
	getParkingMapUseCase := getParkingMapUC.NewUseCase(slotRepository, txMgr, log)

	// Фоновое завершение истекших бронирований
	var sweeper *expiry.Sweeper
	if !cfg.Sweep.Disabled {
		sweeper, err = expiry.NewSweeper(bookingSvc, cfg.Sweep.Schedule, sweepTimeout, log)
		if err != nil {
			log.Fatal("Failed to create expiry sweeper: %v", err)
		}
		sweeper.Start()
		log.Info("Expiry sweeper started (schedule=%s, batch=%d)", cfg.Sweep.Schedule, cfg.Sweep.BatchSize)
	}

	// Инициализируем handlers
	register := registerHandler.NewHandler(identitySvc, log)
	login := loginHandler.NewHandler(identitySvc, log)
	logout := logoutHandler.NewHandler(identitySvc, log)
	getCurrentUser := getCurrentUserHandler.NewHandler(identitySvc, log)
	getParkingMap := getParkingMapHandler.NewHandler(getParkingMapUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getActiveBooking := getActiveBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	approveBooking := updateBookingStatusHandler.NewHandler("approve", bookingSvc.Approve, log)
	declineBooking := updateBookingStatusHandler.NewHandler("decline", bookingSvc.Decline, log)
	payBooking := updateBookingStatusHandler.NewHandler("pay", bookingSvc.MarkPaid, log)
	unpayBooking := updateBookingStatusHandler.NewHandler("unpay", bookingSvc.MarkUnpaid, log)
	checkoutBooking := updateBookingStatusHandler.NewHandler("checkout", bookingSvc.Checkout, log)
	getProfits := getProfitsHandler.NewHandler(profitsSvc, log)
	getDashboard := getDashboardHandler.NewHandler(dashboardSvc, log)
	listEvents := listEventsHandler.NewHandler(bookingSvc, log)
	streamEvents := streamEventsHandler.NewHandler(hub, cfg.CORS.AllowedOrigins, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Timeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.Run(limiterCtx)
		api.Use(limiter.Limit)
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/auth/register", register.Handle).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", login.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют Authorization: Bearer <token>)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(identitySvc, log))
	protected.Use(middleware.Idempotency(idemStore, log))

	protected.HandleFunc("/auth/logout", logout.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/me", getCurrentUser.Handle).Methods(http.MethodGet)

	// --- Карта парковки ---
	protected.HandleFunc("/areas/{area}/slots", getParkingMap.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	// /bookings/active регистрируется раньше /bookings/{bookingId}
	protected.HandleFunc("/bookings/active", getActiveBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// --- События ---
	protected.HandleFunc("/events", listEvents.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/events/stream", streamEvents.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES
	// ============================================================

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireRole(domain.RoleAdmin))

	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/decline", declineBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/pay", payBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/unpay", unpayBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/checkout", checkoutBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/profits", getProfits.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", getDashboard.Handle).Methods(http.MethodGet)

	// CORS для браузерного клиента
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"Retry-After", "Idempotent-Replayed"},
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем sweep до закрытия БД
	if sweeper != nil {
		sweeper.Stop(shutdownCtx)
	}

	// Отключаем websocket клиентов и чистку rate limiter
	stopHub()
	stopLimiter()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn("Failed to close RabbitMQ connection: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
