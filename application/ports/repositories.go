package ports

import (
	"context"

	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/events"
)

// FlowRepository defines the interface for flow persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type FlowRepository interface {
	// Save persists a flow's metadata (create or update)
	Save(ctx context.Context, flow *aggregates.Flow) error

	// GetByID retrieves a flow by its ID, without its nodes and edges.
	// A missing flow yields a not-found error.
	GetByID(ctx context.Context, id valueobjects.FlowID) (*aggregates.Flow, error)

	// List retrieves metadata for all flows
	List(ctx context.Context) ([]*aggregates.Flow, error)

	// Delete removes a flow's metadata record
	Delete(ctx context.Context, id valueobjects.FlowID) error
}

// NodeRepository defines the interface for node persistence
type NodeRepository interface {
	// Save persists a node (create or update)
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node by its ID
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// GetByIDs retrieves the nodes matching the given identifier set.
	// Unknown identifiers are skipped, not errors.
	GetByIDs(ctx context.Context, ids []valueobjects.NodeID) ([]*entities.Node, error)

	// GetByFlowID retrieves all nodes owned by a flow
	GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Node, error)

	// Delete removes a node
	Delete(ctx context.Context, id valueobjects.NodeID) error

	// DeleteBatch removes multiple nodes in a batch operation
	DeleteBatch(ctx context.Context, ids []valueobjects.NodeID) error
}

// EdgeRepository defines the interface for edge persistence
type EdgeRepository interface {
	// Save persists an edge (create or update)
	Save(ctx context.Context, edge *entities.Edge) error

	// GetByID retrieves an edge by its ID
	GetByID(ctx context.Context, id valueobjects.EdgeID) (*entities.Edge, error)

	// GetByIDs retrieves the edges matching the given identifier set
	GetByIDs(ctx context.Context, ids []valueobjects.EdgeID) ([]*entities.Edge, error)

	// GetByFlowID retrieves all edges owned by a flow
	GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Edge, error)

	// GetByNodeIDs retrieves all edges touching any of the given nodes
	GetByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) ([]*entities.Edge, error)

	// Delete removes an edge
	Delete(ctx context.Context, id valueobjects.EdgeID) error

	// DeleteBatch removes multiple edges in a batch operation
	DeleteBatch(ctx context.Context, ids []valueobjects.EdgeID) error

	// DeleteByNodeIDs removes every edge touching any of the given nodes
	DeleteByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) error
}

// UnitOfWork defines a transaction boundary for aggregate operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction; a no-op after a successful commit
	Rollback() error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// EventBus defines the interface for publishing and subscribing to domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
