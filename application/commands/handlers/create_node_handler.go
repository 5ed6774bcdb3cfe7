package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/ports"
	"composer-backend/domain/config"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
)

// CreateNodeHandler handles node creation commands. The node is validated
// against the owning flow's invariants before anything is written, and the
// flow's content timestamp advances in the same transaction.
type CreateNodeHandler struct {
	uow      ports.UnitOfWork
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	eventBus ports.EventBus
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewCreateNodeHandler creates a new create node handler
func NewCreateNodeHandler(
	uow ports.UnitOfWork,
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	eventBus ports.EventBus,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateNodeHandler {
	return &CreateNodeHandler{
		uow:      uow,
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the create node command
func (h *CreateNodeHandler) Handle(ctx context.Context, cmd commands.CreateNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}
	flowID, err := valueobjects.NewFlowIDFromString(cmd.FlowID)
	if err != nil {
		return fmt.Errorf("invalid flow ID: %w", err)
	}
	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}

	flow, err := h.loadFlow(ctx, flowID)
	if err != nil {
		return err
	}

	node, err := entities.NewNodeWithID(nodeID, flowID, schema.NodeType(cmd.NodeType), position, cmd.Label, cmd.Payload, h.cfg)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	if err := flow.AddNode(node); err != nil {
		return err
	}

	if err := h.uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer h.uow.Rollback()

	if err := h.nodeRepo.Save(ctx, node); err != nil {
		return fmt.Errorf("failed to save node: %w", err)
	}
	if err := h.flowRepo.Save(ctx, flow); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	h.publishEvents(ctx, flow)

	h.logger.Info("Node created",
		zap.String("nodeID", node.ID().String()),
		zap.String("flowID", flowID.String()),
		zap.String("nodeType", string(node.Type())),
	)
	return nil
}

// loadFlow reconstructs the flow with its current node set so the
// aggregate can enforce membership and capacity invariants
func (h *CreateNodeHandler) loadFlow(ctx context.Context, flowID valueobjects.FlowID) (*aggregates.Flow, error) {
	flow, err := h.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	nodes, err := h.nodeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow nodes: %w", err)
	}
	for _, n := range nodes {
		flow.AttachNode(n)
	}
	return flow, nil
}

func (h *CreateNodeHandler) publishEvents(ctx context.Context, flow *aggregates.Flow) {
	events := flow.GetUncommittedEvents()
	if len(events) == 0 {
		return
	}
	if err := h.eventBus.PublishBatch(ctx, events); err != nil {
		h.logger.Warn("Failed to publish events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
		return
	}
	flow.MarkEventsAsCommitted()
}
