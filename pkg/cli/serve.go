package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/db"
	"github.com/yumyai/uniref90/pkg/handler"
	"github.com/yumyai/uniref90/pkg/middle"
)

const (
	dbFlag   = "db"
	addrFlag = "addr"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a sqlite cluster export over HTTP",
		Long: `Serve a cluster store written by "export --format sqlite" over HTTP.

Routes: /api/v1/health, /api/v1/cluster/{cluster_id}, /api/v1/clusters,
/api/v1/stats, /api/v1/runs, /sequence/by-cluster, /cluster/{cluster_id} and /metrics.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindFlags(cmd.Flags(), dbFlag, addrFlag)
		},
		RunE: runServe,
	}

	cmd.Flags().String(dbFlag, "clusters.db", "sqlite cluster store")
	cmd.Flags().String(addrFlag, "0.0.0.0:8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	path := viper.GetString(dbFlag)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cluster store: %w", err)
	}

	store, err := db.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return err
	}

	mwLogger := middle.CreateMiddlewareLogger(logger.ParseLevel(viper.GetString(logLevelFlag)))
	defer mwLogger.Sync()

	mux := handler.NewRouter(&handler.DBContext{Store: store})
	srv := &http.Server{
		Addr:              viper.GetString(addrFlag),
		Handler:           middle.Chain(mux, middle.RequestIDMiddleware(mwLogger), middle.LoggingMiddleware(mwLogger)),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.L()),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server shutdown", zap.Error(err))
		}
	}()

	logger.Info("Open database on", zap.String("DB_LOC", path))
	logger.Info("Server starting", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
