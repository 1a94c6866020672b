package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/outfitlens/backend/config"
	httpDelivery "github.com/outfitlens/backend/internal/delivery/http"
	"github.com/outfitlens/backend/internal/logging"
)

const version = "1.0.0"

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "outfitlens",
		Short:         "OutfitLens outfit recommendation backend",
		Long:          "OutfitLens turns a shopper's free-text request into ranked outfit recommendations drawn from a product catalog.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(newServeCmd(&cfgFile), newRecommendCmd(&cfgFile))
	return rootCmd
}

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(*cfgFile, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runServer(ctx, cfg)
		},
	}
}

func newRecommendCmd(cfgFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend [message]",
		Short: "Print outfit recommendations for one message as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so stdout carries only the JSON document
			cfg, err := loadConfig(*cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message must not be blank")
			}

			ctx := log.Logger.WithContext(cmd.Context())
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.service.Recommend(ctx, message, limit)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(httpDelivery.RecommendResponse{
				Outfits:  result.Outfits,
				Keywords: result.Keywords,
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of outfits (0 uses the configured default)")
	return cmd
}

// loadConfig reads configuration and sets up logging on out
func loadConfig(cfgFile string, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.SetupWriter(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, out); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServer serves the API until ctx is cancelled, then drains in-flight requests
func runServer(ctx context.Context, cfg *config.Config) error {
	ctx = log.Logger.WithContext(ctx)

	log.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("llm_provider", cfg.LLM.Provider).
		Msg("starting OutfitLens backend")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := httpDelivery.NewHandler(a.service)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
