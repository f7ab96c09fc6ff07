package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/internal/api/handlers"
	"github.com/linskybing/regscan/internal/api/middleware"
	"github.com/linskybing/regscan/internal/api/routes"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP API over svc.
func NewRouter(svc *application.Services, bus *progress.Bus, defaultProfile string, origins []string) (*gin.Engine, *handlers.Handlers) {
	router := gin.New()
	// Repository names contain slashes and arrive percent-encoded.
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(origins))
	router.Use(middleware.LoggingMiddleware())

	h := handlers.New(svc, bus, defaultProfile, router)
	routes.RegisterRoutes(router, h)
	return router, h
}

func (a *app) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory API, scan progress websocket and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == "" {
				port = a.cfg.ServerPort
			}
			gin.SetMode(gin.ReleaseMode)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withServices(func(svc *application.Services, bus *progress.Bus) error {
				router, h := NewRouter(svc, bus, a.cfg.AWSProfile, a.cfg.CORSOrigins)
				srv := &http.Server{Addr: ":" + port, Handler: router}

				errCh := make(chan error, 1)
				go func() {
					klog.Infof("Starting API server on :%s", port)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
					close(errCh)
				}()

				var serveErr error
				select {
				case <-ctx.Done():
					klog.Info("Shutting down API server")
				case serveErr = <-errCh:
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					klog.Errorf("Server shutdown: %v", err)
				}
				h.Hub.Close()
				svc.Scan.Shutdown()
				return serveErr
			})
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (defaults to SERVER_PORT)")
	return cmd
}
