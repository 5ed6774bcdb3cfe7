package di

import (
	"go.uber.org/zap"

	"composer-backend/application/commands/bus"
	"composer-backend/application/ports"
	querybus "composer-backend/application/queries/bus"
	"composer-backend/application/services"
	domainconfig "composer-backend/domain/config"
	"composer-backend/infrastructure/config"
	"composer-backend/pkg/auth"
	"composer-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	DomainConfig    *domainconfig.DomainConfig
	Logger          *zap.Logger
	Storage         *Storage
	FlowRepo        ports.FlowRepository
	NodeRepo        ports.NodeRepository
	EdgeRepo        ports.EdgeRepository
	UnitOfWork      ports.UnitOfWork
	EventBus        ports.EventBus
	CommandBus      *bus.CommandBus
	QueryBus        *querybus.QueryBus
	DeletionService *services.DeletionService
	Cache           ports.Cache
	Metrics         *observability.Metrics
	JWTValidator    *auth.JWTValidator
}
