package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"threadboard/internal/auth"
	"threadboard/internal/config"
	"threadboard/internal/db"
	"threadboard/internal/logging"
	"threadboard/internal/router"
	"threadboard/internal/voting"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg              *config.Config
	reconcileWorkers int
	skipMigrate      bool
)

var rootCmd = &cobra.Command{
	Use:           "threadboard",
	Short:         "Discussion board API with votes and reactions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !config.LoadDotEnv() {
			logging.Logger.Info("No .env file found, finding env vars from system")
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logging.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB(!skipMigrate)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), gdb)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := openDB(true)
		return err
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every like/dislike counter from the vote ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB(false)
		if err != nil {
			return err
		}
		start := time.Now()
		n, err := voting.NewService(gdb).Maintainer().ReconcileAll(cmd.Context(), gdb, reconcileWorkers)
		if err != nil {
			return err
		}
		logging.Logger.Info("Reconcile finished", "targets", n, "duration", time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema before serving")
	reconcileCmd.Flags().IntVar(&reconcileWorkers, "workers", 4, "Number of targets recomputed in parallel")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func openDB(migrate bool) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(gdb); err != nil {
			return nil, err
		}
	}
	return gdb, nil
}

func serve(ctx context.Context, gdb *gorm.DB) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	clock := clockwork.NewRealClock()
	engine, err := router.New(router.Options{
		DB:            gdb,
		Votes:         voting.NewService(gdb),
		Tokens:        auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, clock),
		Clock:         clock,
		SessionSecret: cfg.SessionSecret,
		SecureCookie:  cfg.IsProduction(),
		CacheSize:     cfg.CacheSize,
		CacheTTL:      cfg.CacheTTL,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Info("Server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
