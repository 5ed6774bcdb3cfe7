package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/application/queries"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/pkg/utils"
)

// GetFlowHandler handles single-flow metadata queries
type GetFlowHandler struct {
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	logger   *zap.Logger
}

// NewGetFlowHandler creates a new get flow handler
func NewGetFlowHandler(
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	logger *zap.Logger,
) *GetFlowHandler {
	return &GetFlowHandler{
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		logger:   logger,
	}
}

// Handle executes the get flow query
func (h *GetFlowHandler) Handle(ctx context.Context, query queries.GetFlowQuery) (*queries.FlowView, error) {
	flowID, err := valueobjects.NewFlowIDFromString(query.FlowID)
	if err != nil {
		return nil, fmt.Errorf("invalid flow ID: %w", err)
	}

	flow, err := h.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	nodes, err := h.nodeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to count flow nodes: %w", err)
	}
	edges, err := h.edgeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to count flow edges: %w", err)
	}

	view := flowView(flow)
	view.NodeCount = len(nodes)
	view.EdgeCount = len(edges)
	return &view, nil
}

// flowView converts a flow aggregate to its read model
func flowView(flow *aggregates.Flow) queries.FlowView {
	return queries.FlowView{
		ID:          flow.ID().String(),
		Name:        flow.Name(),
		Description: flow.Description(),
		CreatedAt:   utils.FormatRFC3339(flow.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(flow.UpdatedAt()),
	}
}
