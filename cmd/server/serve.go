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

	"astro_consult/internal/config"
	"astro_consult/internal/logger"
	"astro_consult/internal/repository"
	"astro_consult/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// store is an opened backend plus the function that releases it
type store struct {
	repos *repository.Repositories
	close func()
}

// openStore connects to the configured backend and applies migrations when asked
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := config.ConnectDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := config.AutoMigrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info("postgres migrations applied")
		}
		return &store{repos: repository.NewPostgresRepositories(pool), close: pool.Close}, nil

	case config.DriverMongo:
		client, err := config.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if migrate {
			if err := config.EnsureMongoIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
			log.Info("mongo indexes ensured")
		}
		return &store{
			repos: repository.NewMongoRepositories(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return &store{repos: repository.NewMemoryRepositories(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(cmd.Context(), cfg, log, cfg.AutoMigrate)
	if err != nil {
		log.Error("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer st.close()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, log, st.repos),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		log.Error("listen failed", zap.Error(err))
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exiting")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.StoreDriver == config.DriverMemory {
		log.Info("memory store has nothing to migrate")
		return nil
	}

	st, err := openStore(cmd.Context(), cfg, log, true)
	if err != nil {
		return err
	}
	st.close()
	return nil
}
