package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/events"
	pkgerrors "composer-backend/pkg/errors"
)

// DeletionService implements cascade deletion for flows, nodes and edges.
// Deleting a node always removes every edge touching it in the same
// transaction, so storage never accumulates edges whose endpoints are gone.
// Unknown identifiers in bulk requests are skipped rather than failing the
// whole operation.
type DeletionService struct {
	uow      ports.UnitOfWork
	flowRepo ports.FlowRepository
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewDeletionService creates a new deletion service
func NewDeletionService(
	uow ports.UnitOfWork,
	flowRepo ports.FlowRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeletionService {
	return &DeletionService{
		uow:      uow,
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// DeleteFlow deletes a flow and everything it owns. Returns false without
// error when the flow does not exist, so callers can treat repeated deletes
// as idempotent.
func (s *DeletionService) DeleteFlow(ctx context.Context, flowIDStr string) (bool, error) {
	flowID, err := valueobjects.NewFlowIDFromString(flowIDStr)
	if err != nil {
		return false, fmt.Errorf("invalid flow ID: %w", err)
	}

	if _, err := s.flowRepo.GetByID(ctx, flowID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	nodes, err := s.nodeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return false, fmt.Errorf("failed to load flow nodes: %w", err)
	}
	edges, err := s.edgeRepo.GetByFlowID(ctx, flowID)
	if err != nil {
		return false, fmt.Errorf("failed to load flow edges: %w", err)
	}

	if err := s.uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.uow.Rollback()

	edgeIDs := make([]valueobjects.EdgeID, len(edges))
	for i, e := range edges {
		edgeIDs[i] = e.ID()
	}
	if err := s.edgeRepo.DeleteBatch(ctx, edgeIDs); err != nil {
		return false, fmt.Errorf("failed to delete flow edges: %w", err)
	}

	nodeIDs := make([]valueobjects.NodeID, len(nodes))
	for i, n := range nodes {
		nodeIDs[i] = n.ID()
	}
	if err := s.nodeRepo.DeleteBatch(ctx, nodeIDs); err != nil {
		return false, fmt.Errorf("failed to delete flow nodes: %w", err)
	}

	if err := s.flowRepo.Delete(ctx, flowID); err != nil {
		return false, fmt.Errorf("failed to delete flow: %w", err)
	}

	if err := s.uow.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, events.NewFlowDeleted(flowID, len(nodes), len(edges), time.Now()))

	s.logger.Info("Flow deleted",
		zap.String("flowID", flowID.String()),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
	)
	return true, nil
}

// DeleteNodes deletes the given nodes from a flow along with every edge
// touching any of them, and returns the labels of the nodes actually
// removed. Identifiers that are malformed, unknown, or belong to another
// flow are skipped. An empty effective set is a no-op that leaves the
// flow untouched.
func (s *DeletionService) DeleteNodes(ctx context.Context, flowIDStr string, nodeIDStrs []string) ([]string, error) {
	flowID, err := valueobjects.NewFlowIDFromString(flowIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid flow ID: %w", err)
	}

	flow, err := s.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	nodeIDs := make([]valueobjects.NodeID, 0, len(nodeIDStrs))
	for _, raw := range nodeIDStrs {
		nodeID, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			s.logger.Debug("Skipping malformed node ID", zap.String("nodeID", raw))
			continue
		}
		nodeIDs = append(nodeIDs, nodeID)
	}

	nodes, err := s.nodeRepo.GetByIDs(ctx, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}

	deleteIDs := make([]valueobjects.NodeID, 0, len(nodes))
	labels := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !n.FlowID().Equals(flowID) {
			s.logger.Debug("Skipping node from another flow", zap.String("nodeID", n.ID().String()))
			continue
		}
		deleteIDs = append(deleteIDs, n.ID())
		labels = append(labels, n.Label())
	}

	if len(deleteIDs) == 0 {
		return []string{}, nil
	}

	touching, err := s.edgeRepo.GetByNodeIDs(ctx, flowID, deleteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load touching edges: %w", err)
	}

	if err := s.uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.uow.Rollback()

	if err := s.edgeRepo.DeleteByNodeIDs(ctx, flowID, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete touching edges: %w", err)
	}
	if err := s.nodeRepo.DeleteBatch(ctx, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete nodes: %w", err)
	}

	flow.Touch()
	if err := s.flowRepo.Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}

	if err := s.uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, events.NewNodesDeleted(flowID, labels, flow.UpdatedAt()))
	if len(touching) > 0 {
		s.publish(ctx, events.NewEdgesDeleted(flowID, len(touching), flow.UpdatedAt()))
	}

	s.logger.Info("Nodes deleted",
		zap.String("flowID", flowID.String()),
		zap.Int("requested", len(nodeIDStrs)),
		zap.Int("deleted", len(deleteIDs)),
		zap.Int("cascadedEdges", len(touching)),
	)
	return labels, nil
}

// DeleteEdges deletes the given edges from a flow and returns the number
// actually removed. Unknown identifiers and edges from other flows are
// skipped. An empty effective set leaves the flow untouched.
func (s *DeletionService) DeleteEdges(ctx context.Context, flowIDStr string, edgeIDStrs []string) (int, error) {
	flowID, err := valueobjects.NewFlowIDFromString(flowIDStr)
	if err != nil {
		return 0, fmt.Errorf("invalid flow ID: %w", err)
	}

	flow, err := s.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return 0, err
	}

	edgeIDs := make([]valueobjects.EdgeID, 0, len(edgeIDStrs))
	for _, raw := range edgeIDStrs {
		edgeID, err := valueobjects.NewEdgeIDFromString(raw)
		if err != nil {
			s.logger.Debug("Skipping malformed edge ID", zap.String("edgeID", raw))
			continue
		}
		edgeIDs = append(edgeIDs, edgeID)
	}

	edges, err := s.edgeRepo.GetByIDs(ctx, edgeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load edges: %w", err)
	}

	deleteIDs := make([]valueobjects.EdgeID, 0, len(edges))
	for _, e := range edges {
		if !e.FlowID().Equals(flowID) {
			s.logger.Debug("Skipping edge from another flow", zap.String("edgeID", e.ID().String()))
			continue
		}
		deleteIDs = append(deleteIDs, e.ID())
	}

	if len(deleteIDs) == 0 {
		return 0, nil
	}

	if err := s.uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.uow.Rollback()

	if err := s.edgeRepo.DeleteBatch(ctx, deleteIDs); err != nil {
		return 0, fmt.Errorf("failed to delete edges: %w", err)
	}

	flow.Touch()
	if err := s.flowRepo.Save(ctx, flow); err != nil {
		return 0, fmt.Errorf("failed to save flow: %w", err)
	}

	if err := s.uow.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, events.NewEdgesDeleted(flowID, len(deleteIDs), flow.UpdatedAt()))

	s.logger.Info("Edges deleted",
		zap.String("flowID", flowID.String()),
		zap.Int("requested", len(edgeIDStrs)),
		zap.Int("deleted", len(deleteIDs)),
	)
	return len(deleteIDs), nil
}

func (s *DeletionService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
