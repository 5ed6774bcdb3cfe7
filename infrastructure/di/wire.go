//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"composer-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStorage,
	ProvideFlowRepository,
	ProvideNodeRepository,
	ProvideEdgeRepository,
	ProvideUnitOfWork,
	ProvideEventBus,
	ProvideMetrics,
	ProvideJWTValidator,
	ProvideInMemoryCache,
	ProvideDeletionService,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
