// Package di provides dependency injection configuration for the cookbook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	"github.com/cookbookapp/cookbook-server/internal/config"
	"github.com/cookbookapp/cookbook-server/internal/di/providers"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideLabelService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideLoginLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once everything is running.
// This triggers lazy initialization of each provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*service.LabelService](injector)

	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
