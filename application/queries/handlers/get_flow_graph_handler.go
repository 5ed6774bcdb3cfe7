package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/application/queries"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	"composer-backend/pkg/utils"
)

// GetFlowGraphHandler handles full canvas state queries. Dangling edges
// are counted but never returned: the active topology only contains edges
// whose endpoints both resolve to live nodes.
type GetFlowGraphHandler struct {
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	logger   *zap.Logger
}

// NewGetFlowGraphHandler creates a new flow graph handler
func NewGetFlowGraphHandler(
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	logger *zap.Logger,
) *GetFlowGraphHandler {
	return &GetFlowGraphHandler{
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		logger:   logger,
	}
}

// Handle executes the flow graph query
func (h *GetFlowGraphHandler) Handle(ctx context.Context, query queries.GetFlowGraphQuery) (*queries.GetFlowGraphResult, error) {
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
		return nil, fmt.Errorf("failed to load flow nodes: %w", err)
	}
	edges, err := h.edgeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow edges: %w", err)
	}

	live := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, n := range nodes {
		live[n.ID()] = true
	}

	result := &queries.GetFlowGraphResult{
		Flow:  flowView(flow),
		Nodes: make([]queries.FlowNodeView, 0, len(nodes)),
		Edges: make([]queries.FlowEdgeView, 0, len(edges)),
	}

	for _, node := range nodes {
		result.Nodes = append(result.Nodes, nodeView(node))
	}

	dangling := 0
	for _, edge := range edges {
		if !edge.IsValid() || !live[edge.SourceID()] || !live[edge.TargetID()] {
			dangling++
			continue
		}
		result.Edges = append(result.Edges, queries.FlowEdgeView{
			ID:           edge.ID().String(),
			SourceID:     edge.SourceID().String(),
			TargetID:     edge.TargetID().String(),
			SourceHandle: edge.SourceHandle(),
			TargetHandle: edge.TargetHandle(),
			DataType:     string(edge.DataType()),
			CreatedAt:    utils.FormatRFC3339(edge.CreatedAt()),
		})
	}

	result.Flow.NodeCount = len(result.Nodes)
	result.Flow.EdgeCount = len(result.Edges)
	result.Stats = queries.FlowGraphStats{
		NodeCount:     len(result.Nodes),
		EdgeCount:     len(result.Edges),
		DanglingEdges: dangling,
	}

	if dangling > 0 {
		h.logger.Debug("Excluded dangling edges from canvas state",
			zap.String("flowID", flowID.String()),
			zap.Int("dangling", dangling),
		)
	}
	return result, nil
}

// nodeView converts a node entity to its read model, deriving port lists
// from the node type
func nodeView(node *entities.Node) queries.FlowNodeView {
	pos := node.Position()
	return queries.FlowNodeView{
		ID:          node.ID().String(),
		Type:        string(node.Type()),
		Label:       node.Label(),
		X:           pos.X(),
		Y:           pos.Y(),
		Payload:     json.RawMessage(node.Payload()),
		InputPorts:  portViews(node.InputPorts()),
		OutputPorts: portViews(node.OutputPorts()),
		CreatedAt:   utils.FormatRFC3339(node.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(node.UpdatedAt()),
	}
}

func portViews(ports []schema.PortDefinition) []queries.PortView {
	views := make([]queries.PortView, len(ports))
	for i, p := range ports {
		views[i] = queries.PortView{
			Handle:   p.Handle,
			Label:    p.Label,
			Type:     string(p.Type),
			Required: p.Required,
		}
	}
	return views
}
