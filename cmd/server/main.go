package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apponboarding "invest-checkout/internal/application/service/onboarding"
	appwizard "invest-checkout/internal/application/service/wizard"
	"invest-checkout/internal/config"
	"invest-checkout/internal/domain/entity/offering"
	"invest-checkout/internal/domain/interfaces"
	"invest-checkout/internal/infrastructure/dealmaker"
	"invest-checkout/internal/infrastructure/events"
	infrahttp "invest-checkout/internal/interfaces/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	off, err := buildOffering(cfg.Offering)
	if err != nil {
		logger.Fatalf("failed to build offering: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var publisher interfaces.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		pub, err := events.NewPublisher(cfg.RabbitMQ, logger)
		if err != nil {
			logger.Fatalf("failed to init event publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	client := dealmaker.NewClient(cfg.DealMaker, logger)
	if !client.Configured() || cfg.DealMaker.DealID == "" {
		logger.Warn("dealmaker credentials missing, onboarding operations will be unavailable")
	}

	onboardingService := apponboarding.NewService(client, publisher, cfg.DealMaker.DealID, logger)
	wizardService := appwizard.NewService(off, onboardingService, logger)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	handler := infrahttp.NewHandler(wizardService, onboardingService, redisClient, cacheTTL, logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ttl := time.Duration(cfg.Sessions.TTLSeconds) * time.Second
		ticker := time.NewTicker(time.Duration(cfg.Sessions.ReapIntervalSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				wizardService.Reap(ttl)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("server stopped with error: %v", err)
	}
	logger.Info("server stopped")
}

func buildOffering(cfg config.OfferingConfig) (*offering.Offering, error) {
	tiers, err := offering.ParseBonusTiers(cfg.BonusTiers)
	if err != nil {
		return nil, err
	}

	off := &offering.Offering{
		SharePrice:    decimal.NewFromFloat(cfg.SharePrice),
		MinInvestment: decimal.NewFromFloat(cfg.MinInvestment),
		SecurityType:  cfg.SecurityType,
		BonusTiers:    tiers,
	}
	if cfg.MaxInvestment > 0 {
		max := decimal.NewFromFloat(cfg.MaxInvestment)
		off.MaxInvestment = &max
	}
	return off, nil
}
