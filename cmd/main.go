package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/arunika/satellite/adapters"
	"github.com/satriahrh/arunika/satellite/adapters/microphone"
	"github.com/satriahrh/arunika/satellite/adapters/player"
	"github.com/satriahrh/arunika/satellite/adapters/settings"
	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/api"
	"github.com/satriahrh/arunika/satellite/internal/audio"
	"github.com/satriahrh/arunika/satellite/internal/auth"
	"github.com/satriahrh/arunika/satellite/internal/config"
	"github.com/satriahrh/arunika/satellite/internal/entity"
	"github.com/satriahrh/arunika/satellite/internal/metrics"
	"github.com/satriahrh/arunika/satellite/internal/satellite"
	"github.com/satriahrh/arunika/satellite/internal/server"
	"github.com/satriahrh/arunika/satellite/internal/wakeword"
	"github.com/satriahrh/arunika/satellite/internal/websocket"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	featureStepMs   = 10
	tokenTTL        = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load(zap.NewNop())
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(cfg, os.Args[2:]); err != nil {
			logger.Fatal("Failed to generate token", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Satellite failed", zap.Error(err))
	}
	logger.Info("Satellite exited")
}

// printToken prints a diagnostics token for the client named by args.
func printToken(cfg config.Config, args []string) error {
	validator, err := auth.NewValidator(cfg.DiagJWTSecret)
	if err != nil {
		return err
	}
	clientID := "diagnostics"
	if len(args) > 0 {
		clientID = args[0]
	}
	token, err := validator.GenerateToken(clientID, auth.RoleViewer, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	collector := metrics.NewCollector(logger)

	store, watchSettings, err := openSettings(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize adapters
	mic, closeMic, err := newMicrophone(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMic()

	ttsPlayer, err := player.NewCommandPlayer(cfg.PlayerCommand, logger)
	if err != nil {
		return fmt.Errorf("create speech player: %w", err)
	}
	mediaPlayer, err := player.NewCommandPlayer(cfg.PlayerCommand, logger)
	if err != nil {
		return fmt.Errorf("create media player: %w", err)
	}

	detector := wakeword.NewDetector(
		loadManifests(cfg.WakeWordDir, logger),
		loadManifests(cfg.StopWordDir, logger),
		wakeword.NoInferenceLoader{},
		wakeword.NewEnergyFrontend(featureStepMs),
		collector,
		logger,
	)
	defer detector.Close()

	satPlayer := satellite.NewPlayer(ttsPlayer, mediaPlayer, store.Settings(), logger)
	defer satPlayer.Close()

	input := audio.NewInput(mic, detector, collector, logger, audio.WithDebugWAVDir(cfg.DebugWAVDir))
	srv := server.NewServer(logger, collector)

	sat := satellite.New(satellite.Options{
		Transport: srv,
		Input:     input,
		Player:    satPlayer,
		Entities:  entity.NewRegistry(entity.NewMediaPlayer(mediaPlayer, satPlayer, logger)),
		Settings:  store,
		WakeWords: detector,
		Metrics:   collector,
		Info:      satellite.DefaultDeviceInfo(version),
	}, logger)

	g, ctx := errgroup.WithContext(ctx)

	messages, err := srv.Start(ctx, cfg.Port)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Close()

	connected, cancelConnected := srv.Connected()
	defer cancelConnected()

	sat.Start(ctx, satellite.Inputs{
		Messages:  messages,
		Connected: connected,
		Audio:     input.Run(ctx),
	})
	defer sat.Close()

	// the satellite and its session live until shutdown or until another
	// member of the group fails
	g.Go(func() error {
		<-ctx.Done()
		sat.Close()
		return srv.Close()
	})

	if watchSettings != nil {
		g.Go(func() error {
			return watchSettings(ctx)
		})
	}

	if cfg.DiagAddr != "" {
		if err := startDiagnostics(ctx, g, cfg, sat, collector, logger); err != nil {
			return err
		}
	}

	logger.Info("Satellite started",
		zap.String("name", store.Settings().Name),
		zap.Int("port", cfg.Port),
		zap.String("version", version))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Satellite is shutting down...")
	return nil
}

func startDiagnostics(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Config,
	sat *satellite.Satellite,
	collector *metrics.Collector,
	logger *zap.Logger,
) error {
	var validator *auth.Validator
	if cfg.DiagJWTSecret != "" {
		v, err := auth.NewValidator(cfg.DiagJWTSecret)
		if err != nil {
			return err
		}
		validator = v
	} else {
		logger.Warn("Diagnostics API is not protected, set DIAG_JWT_SECRET to require tokens")
	}

	hub := websocket.NewHub(logger)
	g.Go(func() error {
		hub.Run(ctx, sat)
		return nil
	})

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, api.Deps{
		Satellite: sat,
		Hub:       hub,
		Validator: validator,
		Gatherer:  collector.Gatherer(),
		Version:   version,
		Logger:    logger,
	})

	g.Go(func() error {
		logger.Info("Diagnostics API listening", zap.String("addr", cfg.DiagAddr))
		if err := e.Start(cfg.DiagAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("diagnostics API: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return nil
}

// openSettings returns the settings provider and, for file-backed settings,
// the function watching the file for edits.
func openSettings(cfg config.Config, logger *zap.Logger) (repositories.SettingsProvider, func(context.Context) error, error) {
	if cfg.StateFile == "" {
		logger.Warn("No state file configured, settings are kept in memory")
		return adapters.NewMemorySettings(cfg.Settings()), nil, nil
	}
	store, err := settings.Open(cfg.StateFile, cfg.Settings(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open settings: %w", err)
	}
	return store, store.Watch, nil
}

func newMicrophone(cfg config.Config, logger *zap.Logger) (repositories.Microphone, func(), error) {
	if cfg.MicCommand != "" {
		mic, err := microphone.NewCommandMicrophone(cfg.MicCommand, microphone.DefaultFrameBytes, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create microphone: %w", err)
		}
		return mic, func() {}, nil
	}

	logger.Info("Reading microphone audio from stdin")
	mic := microphone.NewReaderMicrophone(os.Stdin)
	return mic, func() { closeQuietly(mic, logger) }, nil
}

func loadManifests(dir string, logger *zap.Logger) []entities.WakeWord {
	// invalid manifests are skipped, the valid ones are still returned
	manifests, err := wakeword.LoadManifests(dir)
	if err != nil {
		logger.Warn("Failed to load some wake word manifests", zap.String("dir", dir), zap.Error(err))
	}
	logger.Info("Loaded wake word manifests", zap.String("dir", dir), zap.Int("count", len(manifests)))
	return manifests
}

func closeQuietly(c io.Closer, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("Close failed", zap.Error(err))
	}
}
