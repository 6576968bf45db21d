package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staykeeper/internal/app/commands"
	availabilityapp "staykeeper/internal/app/handlers/availability"
	bookingapp "staykeeper/internal/app/handlers/booking"
	checkoutapp "staykeeper/internal/app/handlers/checkout"
	paymentsapp "staykeeper/internal/app/handlers/payments"
	"staykeeper/internal/app/middleware"
	appoutbox "staykeeper/internal/app/outbox"
	"staykeeper/internal/app/policies"
	"staykeeper/internal/app/queries"
	"staykeeper/internal/app/uow"
	"staykeeper/internal/domain/shared/money"
	domainunit "staykeeper/internal/domain/unit"
	"staykeeper/internal/infra/broker/kafka"
	"staykeeper/internal/infra/config"
	mongodb "staykeeper/internal/infra/db/mongo"
	ginserver "staykeeper/internal/infra/http/gin"
	"staykeeper/internal/infra/obs"
	infraoutbox "staykeeper/internal/infra/outbox"
	"staykeeper/internal/infra/storage/memory"
	"staykeeper/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	if cfg.StorageMode == "memory" {
		fixturesPath := os.Getenv("UNIT_FIXTURES")
		if fixturesPath != "" {
			if err := app.loadUnitFixtures(ctx, fixturesPath, cfg.DefaultCurrency, logger); err != nil {
				logger.Warn("unit fixtures load failed", "error", err, "path", fixturesPath)
			}
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	units    domainunit.Repository
	ready    func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory uow.UoWFactory
		outboxPort appoutbox.Outbox
		worker     *infraoutbox.Worker
		unitsRepo  domainunit.Repository
		ready      = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		factory := mongodb.NewFactory(client.DB)
		uowFactory = factory
		unitsRepo = factory.UnitsRepo
		store := infraoutbox.NewStore(client.DB)
		outboxPort = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "staykeeper",
				Backoff:     cfg.RetryBackoff,
			}
		}
	default:
		factory := memory.NewFactory()
		uowFactory = factory
		unitsRepo = factory.UnitsRepo
		outboxPort = memory.NewOutbox()
	}

	idStore := memory.NewIdempotencyStore()
	locks := middleware.NewKeyedLocks()
	clock := policies.SystemClock()
	encoder := appoutbox.JSONEventEncoder{}

	var receipts policies.ReceiptStore = s3.NoopReceiptStore{}
	if cfg.S3Endpoint != "" {
		store, err := s3.NewReceiptStore(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("receipt store unavailable", "error", err)
		} else {
			receipts = store
		}
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		Outbox:     outboxPort,
		Encoder:    encoder,
	})
	transitions := &bookingapp.TransitionHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		Outbox:     outboxPort,
		Encoder:    encoder,
	}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.ConfirmBookingCommand, *bookingapp.TransitionResult](transitions.HandleConfirm))
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckInCommand, *bookingapp.TransitionResult](transitions.HandleCheckIn))
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CancelBookingCommand, *bookingapp.TransitionResult](transitions.HandleCancel))
	commands.RegisterHandler(commandBus, paymentsapp.RecordPaymentCommand{}.Key(), &paymentsapp.RecordPaymentHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		Outbox:     outboxPort,
		Encoder:    encoder,
		Receipts:   receipts,
	})
	commands.RegisterHandler(commandBus, checkoutapp.PostChargeCommand{}.Key(), &checkoutapp.PostChargeHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		Outbox:     outboxPort,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, checkoutapp.CompleteCheckoutCommand{}.Key(), &checkoutapp.CompleteCheckoutHandler{
		UoWFactory: uowFactory,
		Clock:      clock,
		Outbox:     outboxPort,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.QuoteStayQuery{}.Key(), &bookingapp.QuoteStayHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, paymentsapp.FolioSummaryQuery{}.Key(), &paymentsapp.FolioSummaryHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, checkoutapp.PreviewQuery{}.Key(), &checkoutapp.PreviewHandler{UoWFactory: uowFactory, Clock: clock})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Serialize(locks),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxPort),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
			Payment:      ginserver.PaymentHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Checkout:     ginserver.CheckoutHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		},
		worker: worker,
		units:  unitsRepo,
		ready:  ready,
	}, nil
}

type unitFixture struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	BasePrice string `json:"base_price"`
	Promo     *struct {
		Kind    string `json:"kind"`
		Percent int    `json:"percent"`
		Nightly string `json:"nightly"`
		Start   string `json:"start"`
		End     string `json:"end"`
		Label   string `json:"label"`
	} `json:"promo,omitempty"`
}

func (a application) loadUnitFixtures(ctx context.Context, path, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("unit fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []unitFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		base, err := money.Parse(fx.BasePrice, currency)
		if err != nil {
			logger.Error("fixture invalid", "unit_id", fx.ID, "error", err)
			continue
		}
		var promo *domainunit.PromotionalRate
		if fx.Promo != nil {
			start, errStart := time.Parse("2006-01-02", fx.Promo.Start)
			end, errEnd := time.Parse("2006-01-02", fx.Promo.End)
			if errStart != nil || errEnd != nil {
				logger.Error("fixture promo dates invalid", "unit_id", fx.ID)
				continue
			}
			nightly := money.Zero(currency)
			if fx.Promo.Nightly != "" {
				nightly, err = money.Parse(fx.Promo.Nightly, currency)
				if err != nil {
					logger.Error("fixture promo rate invalid", "unit_id", fx.ID, "error", err)
					continue
				}
			}
			promo = &domainunit.PromotionalRate{
				Kind:    domainunit.PromoKind(fx.Promo.Kind),
				Percent: fx.Promo.Percent,
				Nightly: nightly,
				Start:   start,
				End:     end,
				Label:   fx.Promo.Label,
			}
		}
		u, err := domainunit.New(domainunit.UnitID(fx.ID), fx.TenantID, fx.Name, fx.Capacity, base, promo)
		if err != nil {
			logger.Error("fixture invalid", "unit_id", fx.ID, "error", err)
			continue
		}
		if err := a.units.Save(ctx, u); err != nil {
			return fmt.Errorf("save fixture %s: %w", fx.ID, err)
		}
		logger.Info("unit fixture loaded", "unit_id", fx.ID, "name", fx.Name)
	}
	return nil
}
