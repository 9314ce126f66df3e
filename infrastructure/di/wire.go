//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/hoangngo-sudo/the-morytale/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideS3Client,
	ProvideItemRepository,
	ProvideNodeRepository,
	ProvideTrackRepository,
	ProvideObjectStore,
	ProvideStoryGenerator,
	ProvideEventPublisher,
	ProvideQuotaService,
	ProvideConclusionEngine,
	ProvideTrackService,
	ProvideSubmissionService,
	ProvideJWTValidator,
	ProvideErrorHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
