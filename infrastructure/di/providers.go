package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/application/services"
	domainconfig "github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/config"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/generator"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/messaging/eventbridge"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/persistence/dynamodb"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/storage/s3"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// ProvideLogger creates the application logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideDomainConfig loads the environment-appropriate domain limits
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideAWSConfig creates the shared AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client, pointed at a custom endpoint when
// the bucket lives on an S3-compatible service
func ProvideS3Client(awsCfg aws.Config, cfg *config.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
			o.UsePathStyle = true
		}
	})
}

// ProvideItemRepository creates the item repository
func ProvideItemRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ItemRepository {
	return dynamodb.NewItemRepository(client, cfg.DynamoDBTable, cfg.IDIndexName, logger)
}

// ProvideNodeRepository creates the node repository
func ProvideNodeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NodeRepository {
	return dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, cfg.IDIndexName, logger)
}

// ProvideTrackRepository creates the track repository
func ProvideTrackRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TrackRepository {
	return dynamodb.NewTrackRepository(client, cfg.DynamoDBTable, cfg.WeekIndexName, cfg.IDIndexName, logger)
}

// ProvideObjectStore creates the media object store
func ProvideObjectStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ObjectStore {
	return s3.NewObjectStore(client, cfg.StorageBucket, cfg.StoragePublicURL, logger)
}

// ProvideStoryGenerator creates the narrative generator client
func ProvideStoryGenerator(cfg *config.Config, logger *zap.Logger) ports.StoryGenerator {
	return generator.NewClient(cfg.GeneratorBaseURL, cfg.GeneratorTimeout, logger)
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideQuotaService creates the daily quota service
func ProvideQuotaService(items ports.ItemRepository, cfg *domainconfig.DomainConfig, logger *zap.Logger) *services.QuotaService {
	return services.NewQuotaService(items, cfg, logger)
}

// ProvideConclusionEngine creates the track conclusion engine
func ProvideConclusionEngine(
	tracks ports.TrackRepository,
	gen ports.StoryGenerator,
	publisher ports.EventPublisher,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.ConclusionEngine {
	return services.NewConclusionEngine(tracks, gen, publisher, cfg, logger)
}

// ProvideTrackService creates the track lifecycle service
func ProvideTrackService(
	tracks ports.TrackRepository,
	engine *services.ConclusionEngine,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.TrackService {
	return services.NewTrackService(tracks, engine, cfg, logger)
}

// ProvideSubmissionService creates the submission pipeline service
func ProvideSubmissionService(
	items ports.ItemRepository,
	nodes ports.NodeRepository,
	tracks ports.TrackRepository,
	store ports.ObjectStore,
	gen ports.StoryGenerator,
	publisher ports.EventPublisher,
	quota *services.QuotaService,
	trackSvc *services.TrackService,
	logger *zap.Logger,
) *services.SubmissionService {
	return services.NewSubmissionService(items, nodes, tracks, store, gen, publisher, quota, trackSvc, logger)
}

// ProvideJWTValidator creates the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}
