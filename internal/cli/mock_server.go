package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/notehub/internal/notehubtest"
	"github.com/example/notehub/internal/wire"
)

// MockServerCmd returns the mock-server command
func MockServerCmd() *cobra.Command {
	var (
		addr  string
		token string
		seed  int
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory note service for local development",
		Long: `Serve the note REST API from memory under /api. Data is lost on exit.

Examples:
  notehub mock-server --addr :8080 --token dev --seed 20
  NOTEHUB_API_BASE_URL=http://localhost:8080/api NOTEHUB_TOKEN=dev notehub browse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			svc := notehubtest.NewService(token)
			svc.Seed(notehubtest.Samples(seed, time.Now().Add(-time.Duration(seed)*time.Minute))...)

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %d notes at http://%s/api\n", seed, ln.Addr())
			return serveMock(cmd.Context(), ln, svc, wire.Logger().Named("mock"))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "required bearer token (empty accepts any)")
	cmd.Flags().IntVar(&seed, "seed", 12, "number of sample notes")

	return cmd
}

func mockRouter(svc *notehubtest.Service, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("served",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(req.Context())))
		})
	})
	r.Mount("/api", svc.Routes())
	return r
}

func serveMock(ctx context.Context, ln net.Listener, svc *notehubtest.Service, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	srv := &http.Server{
		Handler:           mockRouter(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
