package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wardflow/wardflow/internal/config"
	"github.com/wardflow/wardflow/internal/domain/care"
	"github.com/wardflow/wardflow/internal/domain/directory"
	"github.com/wardflow/wardflow/internal/platform/auth"
	"github.com/wardflow/wardflow/internal/platform/eventbus"
	"github.com/wardflow/wardflow/internal/platform/middleware"
	"github.com/wardflow/wardflow/internal/platform/snapshot"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wardflow-server",
		Short: "Hospital ward workflow API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(routesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ward workflow API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the registered HTTP routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e, _, err := buildServer(cfg, zerolog.Nop(), nil, nil)
			if err != nil {
				return err
			}
			routes := e.Routes()
			sort.Slice(routes, func(i, j int) bool {
				if routes[i].Path != routes[j].Path {
					return routes[i].Path < routes[j].Path
				}
				return routes[i].Method < routes[j].Method
			})
			for _, r := range routes {
				fmt.Printf("%-7s %s\n", r.Method, r.Path)
			}
			return nil
		},
	}
}

// buildServer wires the echo instance: middleware, auth, domain handlers.
// The snapshot store and event publisher may be nil for route listing.
func buildServer(cfg *config.Config, logger zerolog.Logger, snaps snapshot.Store, bus *eventbus.Publisher) (*echo.Echo, *care.Service, error) {
	roster := directory.NewRoster(directory.Seed())
	store := care.NewStore()
	svc := care.NewService(store, directory.NewRandomPicker(roster))
	svc.Rounds().SetWindow(cfg.MedResetWindow)
	if bus != nil {
		svc.OnEvent(bus.Publish)
	}

	// Restore the last snapshot or seed a fresh ward.
	ctx := context.Background()
	var st *care.State
	if snaps != nil {
		loaded, err := snaps.Load(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading snapshot: %w", err)
		}
		st = loaded
	}
	if st == nil {
		st = &care.State{Rooms: care.SeedRooms()}
		logger.Info().Msg("no snapshot found, seeding fresh ward state")
	} else {
		logger.Info().
			Int("patients", len(st.Patients)).
			Int("events", len(st.Timeline)).
			Msg("restored ward state from snapshot")
	}
	svc.Restore(st)

	secret := cfg.JWTSecret
	if secret == "" {
		// Validate() only allows this in development.
		secret = "wardflow-dev-secret"
		logger.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	tokens := auth.NewTokens(secret, cfg.SessionTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	public := e.Group("/api/v1")
	api := e.Group("/api/v1", auth.SessionMiddleware(tokens))

	dirHandler := directory.NewHandler(roster, tokens)
	dirHandler.RegisterRoutes(public, api)

	careHandler := care.NewHandler(svc, snaps, logger)
	careHandler.RegisterRoutes(api)

	return e, svc, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()

	// Snapshot backend
	var snaps snapshot.Store
	switch cfg.SnapshotBackend {
	case "postgres":
		pool, err := snapshot.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		pg := snapshot.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare snapshot schema")
		}
		snaps = pg
		logger.Info().Msg("using postgres snapshot backend")
	default:
		snaps = snapshot.NewFileStore(cfg.SnapshotPath)
		logger.Info().Str("path", cfg.SnapshotPath).Msg("using file snapshot backend")
	}

	// Optional Kafka mirror of the timeline
	bus := eventbus.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if bus != nil {
		defer bus.Close()
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("timeline events mirrored to kafka")
	}

	e, svc, err := buildServer(cfg, logger, snaps, bus)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	// Medication rounds sweeper
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()
	go svc.Rounds().Run(sweepCtx, cfg.MedSweepEvery)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}

	// Final snapshot so nothing since the last write-through is lost.
	if err := snaps.Save(shutdownCtx, svc.State()); err != nil {
		logger.Error().Err(err).Msg("final snapshot save failed")
	}
	return nil
}
