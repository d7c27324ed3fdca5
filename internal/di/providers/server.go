package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/api"
	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/ratelimit"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

// LoginLimiterHandle wraps the login rate limiter with shutdown capability.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-IP login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &LoginLimiterHandle{
		KeyedRateLimiter: ratelimit.PerMinute(cfg.Auth.LoginRatePerMinute),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	loginLimiter := do.MustInvoke[*LoginLimiterHandle](i)

	services := &api.Services{
		Auth:   do.MustInvoke[*service.AuthService](i),
		Recipe: do.MustInvoke[*service.RecipeService](i),
		Label:  do.MustInvoke[*service.LabelService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, loginLimiter.KeyedRateLimiter, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
