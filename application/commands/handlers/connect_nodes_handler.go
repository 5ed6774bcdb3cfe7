package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/ports"
	"composer-backend/domain/config"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/valueobjects"
)

// ConnectNodesHandler handles edge creation commands. The aggregate is the
// compatibility gate: no edge reaches storage unless both handles resolve
// and their port data types match.
type ConnectNodesHandler struct {
	uow      ports.UnitOfWork
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	eventBus ports.EventBus
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewConnectNodesHandler creates a new connect nodes handler
func NewConnectNodesHandler(
	uow ports.UnitOfWork,
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	eventBus ports.EventBus,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ConnectNodesHandler {
	return &ConnectNodesHandler{
		uow:      uow,
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the connect nodes command
func (h *ConnectNodesHandler) Handle(ctx context.Context, cmd commands.ConnectNodesCommand) error {
	flowID, err := valueobjects.NewFlowIDFromString(cmd.FlowID)
	if err != nil {
		return fmt.Errorf("invalid flow ID: %w", err)
	}
	sourceID, err := valueobjects.NewNodeIDFromString(cmd.SourceID)
	if err != nil {
		return fmt.Errorf("invalid source node ID: %w", err)
	}
	targetID, err := valueobjects.NewNodeIDFromString(cmd.TargetID)
	if err != nil {
		return fmt.Errorf("invalid target node ID: %w", err)
	}

	flow, err := h.loadFlow(ctx, flowID, sourceID, targetID)
	if err != nil {
		return err
	}

	edge, err := flow.ConnectNodes(sourceID, targetID, cmd.SourceHandle, cmd.TargetHandle)
	if err != nil {
		return err
	}

	if err := h.uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer h.uow.Rollback()

	if err := h.edgeRepo.Save(ctx, edge); err != nil {
		return fmt.Errorf("failed to save edge: %w", err)
	}
	if err := h.flowRepo.Save(ctx, flow); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	h.publishEvents(ctx, flow)

	h.logger.Info("Nodes connected",
		zap.String("flowID", flowID.String()),
		zap.String("edgeID", edge.ID().String()),
		zap.String("sourceHandle", cmd.SourceHandle),
		zap.String("targetHandle", cmd.TargetHandle),
		zap.String("dataType", string(edge.DataType())),
	)
	return nil
}

// loadFlow reconstructs the flow with the endpoint nodes and the current
// edge set, enough state for duplicate and capacity checks
func (h *ConnectNodesHandler) loadFlow(ctx context.Context, flowID valueobjects.FlowID, nodeIDs ...valueobjects.NodeID) (*aggregates.Flow, error) {
	flow, err := h.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	nodes, err := h.nodeRepo.GetByIDs(ctx, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	for _, n := range nodes {
		if n.FlowID().Equals(flowID) {
			flow.AttachNode(n)
		}
	}

	edges, err := h.edgeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	for _, e := range edges {
		flow.AttachEdge(e)
	}
	return flow, nil
}

func (h *ConnectNodesHandler) publishEvents(ctx context.Context, flow *aggregates.Flow) {
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
