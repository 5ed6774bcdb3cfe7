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

// CreateFlowHandler handles flow creation commands
type CreateFlowHandler struct {
	flowRepo ports.FlowRepository
	eventBus ports.EventBus
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewCreateFlowHandler creates a new create flow handler
func NewCreateFlowHandler(
	flowRepo ports.FlowRepository,
	eventBus ports.EventBus,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateFlowHandler {
	return &CreateFlowHandler{
		flowRepo: flowRepo,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the create flow command
func (h *CreateFlowHandler) Handle(ctx context.Context, cmd commands.CreateFlowCommand) error {
	flowID, err := valueobjects.NewFlowIDFromString(cmd.FlowID)
	if err != nil {
		return fmt.Errorf("invalid flow ID: %w", err)
	}

	flow, err := aggregates.NewFlowWithID(flowID, cmd.Name, cmd.Description, h.cfg)
	if err != nil {
		return fmt.Errorf("failed to create flow: %w", err)
	}

	if err := h.flowRepo.Save(ctx, flow); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	h.publishEvents(ctx, flow)

	h.logger.Info("Flow created",
		zap.String("flowID", flow.ID().String()),
		zap.String("name", flow.Name()),
	)
	return nil
}

func (h *CreateFlowHandler) publishEvents(ctx context.Context, flow *aggregates.Flow) {
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
