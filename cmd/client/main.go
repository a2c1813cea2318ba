package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/livepoll/internal/adapters/rpc"
	"github.com/vncsmyrnk/livepoll/internal/adapters/terminal"
	"github.com/vncsmyrnk/livepoll/internal/config"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

var errSessionFailed = errors.New("session ended in an error state")

var (
	cfgFile      string
	votingClient ports.VotingService
	logger       = slog.Default()
	renderer     = terminal.NewRenderer()
)

var rootCmd = &cobra.Command{
	Use:   "livepoll",
	Short: "Vote in a live poll from the terminal",
	Long: `livepoll connects to a voting backend, shows the poll topic and its
options, lets you cast a vote and follows the results as they come in.
Run without a subcommand for the interactive mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg, err := config.NewClientConfig(v)
		if err != nil {
			return err
		}
		logger, votingClient = newVotingClient(cfg)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), newSession(votingClient))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file")
	rootCmd.PersistentFlags().String(config.KeyServer, "http://localhost:8080", "voting backend base URL")
	rootCmd.PersistentFlags().Duration(config.KeyTimeout, 0, "per-request timeout, 0 disables it")
	rootCmd.PersistentFlags().Bool(config.KeyDebug, false, "enable debug logging")
}

func newVotingClient(cfg *config.ClientConfig) (*slog.Logger, ports.VotingService) {
	level := pterm.LogLevelError
	if cfg.Debug {
		level = pterm.LogLevelDebug
	}
	logger := slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)))

	transport := rpc.NewHTTPTransport(cfg.ServerURL,
		rpc.WithTimeout(cfg.Timeout),
		rpc.WithTransportLogger(logger),
	)
	return logger, rpc.NewClient(transport)
}

func newSession(client ports.VotingService, opts ...services.SessionOption) *services.Session {
	return services.NewSession(client, append([]services.SessionOption{services.WithLogger(logger)}, opts...)...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSessionFailed) {
			pterm.Error.Println(err)
		}
		stop()
		os.Exit(1)
	}
}
