// Package di provides dependency injection configuration for the ReadMate server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/readmateapp/readmate-server/internal/auth"
	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/readmateapp/readmate-server/internal/config"
	"github.com/readmateapp/readmate-server/internal/di/providers"
	"github.com/readmateapp/readmate-server/internal/insight"
	"github.com/readmateapp/readmate-server/internal/logger"
	"github.com/readmateapp/readmate-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Command-line flags are injected so tests can build containers without
// touching the global flag set.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(flags))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// External catalog
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideAggregator)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideInsightService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once every provider has
// run. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*insight.Aggregator](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*service.InsightService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
