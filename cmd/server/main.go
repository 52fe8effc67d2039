package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/config"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/auth"
	delivery "github.com/vogiaan1904/ticketbottle-ledger/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/infra/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/service"
	pkgLog "github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.New(cfg.Log.Level, cfg.Log.Encoding)
	defer func() { _ = l.Sync() }()

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redis.Disconnect(redisCli)

	eventRepo := repo.NewRedisEventRepository(redisCli, l)
	ticketRepo := repo.NewRedisTicketRepository(redisCli, l)
	walletRepo := repo.NewRedisWalletRepository(redisCli, l)
	pendingRepo := repo.NewRedisPendingMintRepository(redisCli, l)

	var prod kafka.Producer
	var cons kafka.Consumer
	if cfg.Kafka.Enabled {
		prod, err = kafka.NewProducer(cfg.Kafka.Brokers, nil, l)
		if err != nil {
			l.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		defer func() { _ = prod.Close() }()

		handler := kafka.NewPaymentEventHandler(walletRepo, l)
		cons, err = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID, handler, l)
		if err != nil {
			l.Fatal("Failed to initialize Kafka consumer", "error", err)
		}
		defer func() { _ = cons.Close() }()
	}

	eventSvc := service.NewEventService(eventRepo, prod, l)
	reservationSvc := service.NewReservationService(eventRepo, cfg.Ledger.MaxTicketsPerBuyer, l)
	mintSvc := service.NewMintService(eventRepo, ticketRepo, l)
	issuanceSvc := service.NewIssuanceService(reservationSvc, mintSvc, pendingRepo, prod, l)
	resaleSvc := service.NewResaleService(ticketRepo, eventRepo, cfg.Ledger.ResaleHoldingPeriod, prod, l)
	walletSvc := service.NewWalletService(walletRepo, l)

	reconciler := service.NewReconciler(
		pendingRepo, mintSvc, prod,
		cfg.Ledger.ReconcileInterval, cfg.Ledger.ReconcileBatch, l,
	)

	signer := auth.NewSigner(cfg.JWT.Secret, cfg.JWT.Expiry)
	h := delivery.NewHandler(eventSvc, issuanceSvc, resaleSvc, walletSvc, signer, l)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := reconciler.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reconciler: %w", err)
		}
		return nil
	})

	if cons != nil {
		if err := cons.Start(gCtx); err != nil {
			l.Fatal("Failed to start Kafka consumer", "error", err)
		}
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-gCtx.Done():
			return nil
		case sig := <-quit:
			l.Info("Server shutting down...", "signal", sig.String())
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("Server exited with error", "error", err)
		return
	}

	l.Info("Server exited")
}
