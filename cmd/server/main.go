package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/vncsmyrnk/livepoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/livepoll/internal/config"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const shutdownTimeout = 30 * time.Second

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "livepoll-server",
	Short: "Serve the livepoll voting backend",
	Long: `Serve a single poll over the Connect JSON protocol. Votes are kept in
memory by default or in postgres with --store postgres.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg, err := config.NewServerConfig(v)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	rootCmd.Flags().String(config.KeyAddr, "0.0.0.0:8080", "listen address")
	rootCmd.Flags().String(config.KeyStore, config.StoreMemory, "vote store: memory or postgres")
	rootCmd.Flags().String(config.KeyPostgresDSN, "", "postgres connection string")
	rootCmd.Flags().String(config.KeyTopic, config.DefaultTopic, "poll topic")
	rootCmd.Flags().StringSlice(config.KeyOptions, config.DefaultOptions, "poll options as id=text")
	rootCmd.Flags().StringSlice(config.KeyAllowedOrigins, []string{"*"}, "origins allowed by CORS")
	rootCmd.Flags().Bool(config.KeyDebug, false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ServerConfig) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := repo.SeedOptions(ctx, cfg.Options); err != nil {
		return fmt.Errorf("failed to seed options: %w", err)
	}

	svc := services.NewVotingService(cfg.Topic, repo, logger)
	votingHandler := http.NewVotingHandler(svc, logger)
	handler := http.NewHandler(votingHandler, cfg.AllowedOrigins)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "store", cfg.Store, "procedures", ports.ServiceName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.ServerConfig) (ports.VoteRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewVoteStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	return postgres.NewVoteRepository(db), func() { db.Close() }, nil
}
