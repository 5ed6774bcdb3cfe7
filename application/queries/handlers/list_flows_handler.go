package handlers

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/application/queries"
	"composer-backend/pkg/common"
)

const listFlowsCacheKey = "flows:list"

// ListFlowsHandler handles flow listing queries. The unpaginated listing
// is cached briefly since the flow picker polls it.
type ListFlowsHandler struct {
	flowRepo ports.FlowRepository
	cache    ports.Cache
	logger   *zap.Logger
}

// NewListFlowsHandler creates a new list flows handler
func NewListFlowsHandler(
	flowRepo ports.FlowRepository,
	cache ports.Cache,
	logger *zap.Logger,
) *ListFlowsHandler {
	return &ListFlowsHandler{
		flowRepo: flowRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Handle executes the list flows query
func (h *ListFlowsHandler) Handle(ctx context.Context, query queries.ListFlowsQuery) (*queries.ListFlowsResult, error) {
	views, err := h.allFlows(ctx)
	if err != nil {
		return nil, err
	}

	params := common.PaginationParams{Page: query.Page, PageSize: query.PageSize}
	params.Normalize()
	start, end := params.Slice(len(views))

	return &queries.ListFlowsResult{
		Flows: views[start:end],
		Total: len(views),
	}, nil
}

// allFlows returns every flow's read model, newest first
func (h *ListFlowsHandler) allFlows(ctx context.Context) ([]queries.FlowView, error) {
	if cached, ok := h.cache.Get(ctx, listFlowsCacheKey); ok {
		if views, ok := cached.([]queries.FlowView); ok {
			return views, nil
		}
	}

	flows, err := h.flowRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].UpdatedAt().After(flows[j].UpdatedAt())
	})

	views := make([]queries.FlowView, 0, len(flows))
	for _, flow := range flows {
		views = append(views, flowView(flow))
	}

	if err := h.cache.Set(ctx, listFlowsCacheKey, views, 5); err != nil {
		h.logger.Debug("Failed to cache flow listing", zap.Error(err))
	}
	return views, nil
}
