package di

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/commands/bus"
	commands_handlers "composer-backend/application/commands/handlers"
	"composer-backend/application/ports"
	"composer-backend/application/queries"
	querybus "composer-backend/application/queries/bus"
	queries_handlers "composer-backend/application/queries/handlers"
	"composer-backend/application/services"
	domainconfig "composer-backend/domain/config"
	"composer-backend/infrastructure/config"
	"composer-backend/infrastructure/messaging/eventbridge"
	"composer-backend/infrastructure/persistence/dynamodb"
	"composer-backend/infrastructure/persistence/memory"
	"composer-backend/pkg/auth"
	"composer-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig creates the domain rule configuration
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideAWSConfig creates AWS configuration
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

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// Storage bundles the repositories and unit of work for one backend, so
// the driver switch happens in exactly one place
type Storage struct {
	FlowRepo   ports.FlowRepository
	NodeRepo   ports.NodeRepository
	EdgeRepo   ports.EdgeRepository
	UnitOfWork ports.UnitOfWork
}

// ProvideStorage selects the storage backend from configuration
func ProvideStorage(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		uow := dynamodb.NewUnitOfWork(client, logger)
		return &Storage{
			FlowRepo:   dynamodb.NewFlowRepository(client, cfg.DynamoDBTable, cfg.IndexName, uow, logger),
			NodeRepo:   dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, cfg.IndexName, uow, logger),
			EdgeRepo:   dynamodb.NewEdgeRepository(client, cfg.DynamoDBTable, cfg.IndexName, uow, logger),
			UnitOfWork: uow,
		}, nil
	case config.StorageMemory:
		store := memory.NewStore()
		return &Storage{
			FlowRepo:   memory.NewFlowRepository(store),
			NodeRepo:   memory.NewNodeRepository(store),
			EdgeRepo:   memory.NewEdgeRepository(store),
			UnitOfWork: memory.NewUnitOfWork(store),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ProvideFlowRepository exposes the storage bundle's flow repository
func ProvideFlowRepository(storage *Storage) ports.FlowRepository {
	return storage.FlowRepo
}

// ProvideNodeRepository exposes the storage bundle's node repository
func ProvideNodeRepository(storage *Storage) ports.NodeRepository {
	return storage.NodeRepo
}

// ProvideEdgeRepository exposes the storage bundle's edge repository
func ProvideEdgeRepository(storage *Storage) ports.EdgeRepository {
	return storage.EdgeRepo
}

// ProvideUnitOfWork exposes the storage bundle's unit of work
func ProvideUnitOfWork(storage *Storage) ports.UnitOfWork {
	return storage.UnitOfWork
}

// ProvideEventBus creates an event bus. Remote publishing only runs
// against the DynamoDB backend; otherwise events stay in-process.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.StorageDriver != config.StorageDynamoDB {
		client = nil
	}
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates a metrics publisher
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		client = nil
	}
	return observability.NewMetrics(client, logger)
}

// ProvideJWTValidator creates a token validator. Without a configured
// secret (development only) authentication is disabled and this returns
// nil; config validation rejects that in production.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideInMemoryCache creates a simple in-memory cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideDeletionService creates the cascade deletion service
func ProvideDeletionService(
	storage *Storage,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.DeletionService {
	return services.NewDeletionService(
		storage.UnitOfWork,
		storage.FlowRepo,
		storage.NodeRepo,
		storage.EdgeRepo,
		eventBus,
		logger,
	)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// commandMetricsMiddleware records per-command latency and failure counts
func commandMetricsMiddleware(metrics *observability.Metrics) bus.Middleware {
	return func(next bus.CommandHandler) bus.CommandHandler {
		return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			metrics.RecordCommand(reflect.TypeOf(cmd).Name(), time.Since(start), err != nil)
			return err
		})
	}
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	storage *Storage,
	eventBus ports.EventBus,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	instrument := commandMetricsMiddleware(metrics)

	createFlowHandler := commands_handlers.NewCreateFlowHandler(storage.FlowRepo, eventBus, domainCfg, logger)
	commandBus.Register(commands.CreateFlowCommand{}, instrument(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateFlowCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createFlowHandler.Handle(ctx, createCmd)
		},
	}))

	createNodeHandler := commands_handlers.NewCreateNodeHandler(
		storage.UnitOfWork, storage.FlowRepo, storage.NodeRepo, eventBus, domainCfg, logger)
	commandBus.Register(commands.CreateNodeCommand{}, instrument(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createNodeHandler.Handle(ctx, createCmd)
		},
	}))

	updateNodeHandler := commands_handlers.NewUpdateNodeHandler(
		storage.UnitOfWork, storage.FlowRepo, storage.NodeRepo, eventBus, domainCfg, logger)
	commandBus.Register(commands.UpdateNodeCommand{}, instrument(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateNodeHandler.Handle(ctx, updateCmd)
		},
	}))

	connectHandler := commands_handlers.NewConnectNodesHandler(
		storage.UnitOfWork, storage.FlowRepo, storage.NodeRepo, storage.EdgeRepo, eventBus, domainCfg, logger)
	commandBus.Register(commands.ConnectNodesCommand{}, instrument(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			connectCmd, ok := cmd.(commands.ConnectNodesCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return connectHandler.Handle(ctx, connectCmd)
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	storage *Storage,
	cache ports.Cache,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getFlowHandler := queries_handlers.NewGetFlowHandler(storage.FlowRepo, storage.NodeRepo, storage.EdgeRepo, logger)
	queryBus.Register(queries.GetFlowQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetFlowQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getFlowHandler.Handle(ctx, getQuery)
		},
	})

	listFlowsHandler := queries_handlers.NewListFlowsHandler(storage.FlowRepo, cache, logger)
	queryBus.Register(queries.ListFlowsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListFlowsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listFlowsHandler.Handle(ctx, listQuery)
		},
	})

	getGraphHandler := queries_handlers.NewGetFlowGraphHandler(storage.FlowRepo, storage.NodeRepo, storage.EdgeRepo, logger)
	queryBus.Register(queries.GetFlowGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			graphQuery, ok := query.(queries.GetFlowGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getGraphHandler.Handle(ctx, graphQuery)
		},
	})

	return queryBus
}
