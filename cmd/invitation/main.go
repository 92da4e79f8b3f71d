package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/api"
	"wedding-invitation/internal/cache"
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/handler"
	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/logging"
	"wedding-invitation/internal/metrics"
	"wedding-invitation/internal/notify"
	"wedding-invitation/internal/rsvp"
	"wedding-invitation/internal/server"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage. A store that is down at boot is dialed in the
	// background; until then guests see the placeholder and an empty board.
	store := storage.NewReconnecting(storage.Config{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseURL,
		DataDir: cfg.DataDir,
	}, storage.Open, log)
	defer store.Close()

	m := metrics.New()
	formatter := locale.New(cfg.Locale, cfg.Location)

	resolverOpts := []guest.Option{guest.WithMetrics(m), guest.WithPlaceholder(cfg.GuestPlaceholder)}
	if cfg.RedisURL != "" {
		client, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Guest cache disabled")
		} else {
			defer client.Close()
			resolverOpts = append(resolverOpts, guest.WithCache(cache.NewGuestCache(client, cfg.GuestCacheTTL)))
		}
	}
	resolver := guest.NewResolver(store, log, resolverOpts...)

	board := rsvp.NewManager(store, m, log)
	if err := store.Start(ctx); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		log.Warn().Err(err).Msg("Record store unreachable, retrying in background")
		go loadWhenReady(ctx, store, board, log)
	} else if _, err := board.LoadAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Starting with an empty RSVP board")
	}

	registry := guest.NewRegistry(store, cfg.BaseURL, whatsapp.Normalizer(cfg.CountryCode))

	var (
		inv inviter
		wa  *whatsapp.Service
	)
	if cfg.WhatsAppEnabled {
		service, h, cleanup, err := startWhatsApp(ctx, cfg, store, board, formatter, log)
		if err != nil {
			return err
		}
		defer cleanup()
		wa, inv = service, h

		if cfg.RedisURL != "" && len(cfg.CouplePhones) > 0 {
			stopNotify, err := startNotifications(cfg, wa, board, formatter, log)
			if err != nil {
				return err
			}
			defer stopNotify()
			defer board.Wait()
		}
	}

	srv := server.New(server.Config{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, log, store, m.Handler())
	if wa != nil {
		srv.AddReadinessCheck("whatsapp", wa)
	}
	api.NewRouter(
		api.NewGuestController(resolver, cfg.RequestTimeout),
		api.NewSubmissionController(board, formatter, cfg.RequestTimeout),
		api.NewInvitationController(api.Event{
			BrideName: cfg.BrideName,
			GroomName: cfg.GroomName,
			Date:      cfg.WeddingDate,
			Location:  cfg.WeddingLocation,
			Gallery:   cfg.Gallery,
		}, formatter, time.Now, api.OriginPatterns(cfg.AllowedOrigins), log),
	).Register(srv.Echo())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Start interactive CLI
	if cfg.AdminCLI {
		go func() {
			newCLI(os.Stdin, os.Stdout, registry, board, inv, formatter).Run(ctx)
			stop()
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadWhenReady fills the board once a store that was down at boot connects.
func loadWhenReady(ctx context.Context, store *storage.Reconnecting, board *rsvp.Manager, log zerolog.Logger) {
	select {
	case <-store.Ready():
	case <-ctx.Done():
		return
	}
	list, err := board.LoadAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Error loading RSVP board after reconnect")
		return
	}
	log.Info().Int("count", len(list)).Msg("RSVP board loaded")
}

func startWhatsApp(ctx context.Context, cfg *config.Config, store storage.RecordStore, board *rsvp.Manager, formatter *locale.Formatter, log zerolog.Logger) (*whatsapp.Service, *handler.RSVPHandler, func(), error) {
	wa, err := whatsapp.NewService(ctx, whatsapp.Config{
		DataDir:     cfg.WhatsAppDataDir,
		CountryCode: cfg.CountryCode,
	}, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}

	h := handler.NewRSVPHandler(wa, store, board, formatter, handler.Config{
		WeddingDate:     cfg.WeddingDate,
		WeddingLocation: cfg.WeddingLocation,
		BrideName:       cfg.BrideName,
		GroomName:       cfg.GroomName,
		CountryCode:     cfg.CountryCode,
	}, log)
	wa.SetMessageHandler(h.HandleMessage)

	log.Info().Msg("Connecting to WhatsApp")
	if err := wa.Connect(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}
	return wa, h, wa.Disconnect, nil
}

func startNotifications(cfg *config.Config, sender notify.Sender, board *rsvp.Manager, formatter *locale.Formatter, log zerolog.Logger) (func(), error) {
	queue, err := notify.NewQueue(cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}
	worker, err := notify.NewWorker(cfg.RedisURL, sender, cfg.CouplePhones, formatter, log)
	if err != nil {
		_ = queue.Close()
		return nil, err
	}
	if err := worker.Start(); err != nil {
		_ = queue.Close()
		return nil, err
	}
	board.OnSubmit(queue.Listener())

	return func() {
		worker.Shutdown()
		_ = queue.Close()
	}, nil
}
