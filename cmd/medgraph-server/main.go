package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medgraph/medgraph/internal/config"
	"github.com/medgraph/medgraph/internal/export"
	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/platform/db"
	"github.com/medgraph/medgraph/internal/platform/middleware"
	"github.com/medgraph/medgraph/internal/record"
	"github.com/medgraph/medgraph/internal/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medgraph-server",
		Short: "Personal medical record graph server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(graphCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the medical record graph API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	records := record.NewRepo(pool)
	edges := record.NewEdgeRepo(pool)
	runner := db.NewPoolRunner(pool)

	recSvc := record.NewService(records, edges, runner)
	graphSvc := graph.NewService(records, edges, runner, logger)
	importer := export.NewImporter(recSvc)
	seeder := seed.NewSeeder(records, edges, runner, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	record.NewHandler(recSvc, edges).RegisterRoutes(apiV1)
	graph.NewHandler(graphSvc).RegisterRoutes(apiV1)
	export.NewHandler(records, graphSvc, importer).RegisterRoutes(apiV1)
	apiV1.POST("/seed", func(c echo.Context) error {
		summary, err := seeder.Run(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, summary)
	})

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demonstration dataset (clears existing data)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			records := record.NewRepo(pool)
			edges := record.NewEdgeRepo(pool)
			seeder := seed.NewSeeder(records, edges, db.NewPoolRunner(pool), logger)

			summary, err := seeder.Run(ctx)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			for _, t := range record.AllTypes {
				fmt.Printf("%-14s %d\n", t, summary.Records[t])
			}
			fmt.Printf("%-14s %d\n", "edges", summary.Edges)
			fmt.Printf("Total records: %d\n", summary.Total())
			return nil
		},
	}
}

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Graph maintenance commands",
	}

	withService := func(run func(ctx context.Context, svc *graph.Service) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := graph.NewService(record.NewRepo(pool), record.NewEdgeRepo(pool), db.NewPoolRunner(pool), logger)
			return run(ctx, svc)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Rebuild all graph edges from the record collections",
		RunE: withService(func(ctx context.Context, svc *graph.Service) error {
			count, err := svc.SyncAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d edge(s).\n", count)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check graph referential integrity",
		RunE: withService(func(ctx context.Context, svc *graph.Service) error {
			report, err := svc.Validate(ctx)
			if err != nil {
				return err
			}
			if report.Valid {
				fmt.Println("Graph is valid.")
				return nil
			}
			fmt.Printf("Found %d issue(s):\n", len(report.Issues))
			for _, issue := range report.Issues {
				fmt.Println(" -", issue)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Delete orphaned graph edges",
		RunE: withService(func(ctx context.Context, svc *graph.Service) error {
			deleted, err := svc.CleanOrphaned(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d orphaned edge(s).\n", deleted)
			return nil
		}),
	})

	return cmd
}
