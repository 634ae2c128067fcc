package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/api"
	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evaluator and capability backend as a REST API service",
	Long: `Serve the evaluation API under /api/v1. The same process answers
/inbound/check-reality, so another reality-check instance can point
--backend-url at it and use it as its trusted capability backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		if viper.IsSet("serve.auth_token") {
			setStringFlagIfUnset(cmd.Flags(), "auth-token", viper.GetString("serve.auth_token"))
		}

		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")
		maxBatch, _ := cmd.Flags().GetInt("max-batch")
		batchTimeout, _ := cmd.Flags().GetDuration("batch-timeout")

		logger := zap.NewNop()
		if appCtx != nil && appCtx.Logger != nil {
			logger = appCtx.Logger
		}

		comps, err := appComponents(appCtx)
		if err != nil {
			return err
		}

		server := api.NewServer(api.Config{
			Evaluator:    comps.evaluator,
			Capability:   comps.capability,
			Health:       &healthAPIService{comps: comps},
			Runner:       comps.runner,
			AuthToken:    authToken,
			Logger:       logger.Named("api"),
			CORSOrigins:  corsOrigins,
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
			MaxBatch:     maxBatch,
			BatchTimeout: batchTimeout,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeoutFor(comps.evaluator.Deadline(), batchTimeout),
			IdleTimeout:  120 * time.Second,
		}

		out := cmd.OutOrStdout()

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			fmt.Fprintf(out, "%s API server listening on %s (capability backend: %s)\n", colorInfo("→"), addr, comps.backendLabel())
			fmt.Fprintf(out, "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		// Channel to listen for interrupt signals
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Block until we receive a signal or an error
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(out, "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			// Create context with timeout for shutdown
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			// Attempt graceful shutdown
			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Fprintf(out, "%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address for the API server")
	serveCmd.Flags().String("auth-token", "", "Optional shared secret for API requests (X-Auth-Token or Bearer)")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().Int("rate-limit", 10, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().Int("rate-burst", 20, "Rate limit burst size")
	serveCmd.Flags().Int("max-batch", consts.MaxBatchDomains, "Maximum domains per batch request")
	serveCmd.Flags().Duration("batch-timeout", consts.DefaultBatchTimeout, "Overall time budget for one batch request")
	registerBatchFlags(serveCmd.Flags(), cliConfig)
	rootCmd.AddCommand(serveCmd)
}

// writeTimeoutFor leaves room after the longest handler, a single evaluation
// or a whole batch, to write its response.
func writeTimeoutFor(deadline, batchTimeout time.Duration) time.Duration {
	longest := deadline
	if batchTimeout <= 0 {
		batchTimeout = consts.DefaultBatchTimeout
	}
	if batchTimeout > longest {
		longest = batchTimeout
	}
	timeout := longest + 15*time.Second
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	return timeout
}

type healthAPIService struct {
	comps *components
}

func (s *healthAPIService) Check(ctx context.Context) error {
	if s.comps == nil || s.comps.evaluator == nil {
		return fmt.Errorf("evaluator not configured")
	}
	if s.comps.resolver != nil && len(s.comps.resolver.Servers) == 0 {
		return fmt.Errorf("resolver has no nameservers")
	}
	return nil
}
