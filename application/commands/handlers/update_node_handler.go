package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/application/ports"
	"composer-backend/domain/config"
	"composer-backend/domain/core/valueobjects"
)

// UpdateNodeHandler handles node update commands
type UpdateNodeHandler struct {
	uow      ports.UnitOfWork
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	eventBus ports.EventBus
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewUpdateNodeHandler creates a new update node handler
func NewUpdateNodeHandler(
	uow ports.UnitOfWork,
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	eventBus ports.EventBus,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *UpdateNodeHandler {
	return &UpdateNodeHandler{
		uow:      uow,
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the update node command
func (h *UpdateNodeHandler) Handle(ctx context.Context, cmd commands.UpdateNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}

	if cmd.Label != nil {
		if err := node.RenameWithConfig(*cmd.Label, h.cfg); err != nil {
			return err
		}
	}
	if cmd.X != nil && cmd.Y != nil {
		position, err := valueobjects.NewPosition(*cmd.X, *cmd.Y)
		if err != nil {
			return fmt.Errorf("invalid position: %w", err)
		}
		if err := node.MoveTo(position); err != nil {
			return err
		}
	}
	if cmd.Payload != nil {
		if err := node.UpdatePayloadWithConfig(cmd.Payload, h.cfg); err != nil {
			return err
		}
	}

	flow, err := h.flowRepo.GetByID(ctx, node.FlowID())
	if err != nil {
		return err
	}
	flow.Touch()

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

	for _, event := range node.GetUncommittedEvents() {
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish event", zap.Error(err))
		}
	}
	node.MarkEventsAsCommitted()

	h.logger.Info("Node updated", zap.String("nodeID", cmd.NodeID))
	return nil
}
