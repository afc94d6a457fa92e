// Package main is the entry point for the squash booking bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"squash-booking-bot/internal/booking"
	"squash-booking-bot/internal/bot"
	"squash-booking-bot/internal/config"
	"squash-booking-bot/internal/pkg/db"
	"squash-booking-bot/internal/repository"
	"squash-booking-bot/internal/service"
	"squash-booking-bot/internal/usc"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().
		Int("members", len(cfg.Facility.Members)).
		Int("aliases", len(cfg.Facility.Aliases)).
		Bool("history", cfg.History.Enabled).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := make([]booking.Member, len(cfg.Facility.Members))
	for i, m := range cfg.Facility.Members {
		members[i] = booking.Member{Username: m.Username, Password: m.Password}
	}

	// One fresh session per booking group.
	factory := func() service.Client {
		return usc.NewClient(cfg.Facility.BaseURL)
	}

	deps := &bot.Dependencies{Config: cfg}

	var recorder service.Recorder
	if cfg.History.Enabled {
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := repository.Migrate(ctx, pool.Pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		repo := repository.NewBookingRepository(pool.Pool)
		recorder = repo
		deps.History = repo
	}

	deps.Booking = service.NewBookingService(factory, members, recorder)

	squashBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		squashBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	squashBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
