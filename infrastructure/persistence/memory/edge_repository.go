package memory

import (
	"context"

	"composer-backend/application/ports"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
	"composer-backend/pkg/utils"
)

// EdgeRepository is the in-memory implementation of ports.EdgeRepository
type EdgeRepository struct {
	store *Store
}

// NewEdgeRepository creates an edge repository backed by a store
func NewEdgeRepository(store *Store) *EdgeRepository {
	return &EdgeRepository{store: store}
}

var _ ports.EdgeRepository = (*EdgeRepository)(nil)

// Save persists an edge
func (r *EdgeRepository) Save(ctx context.Context, edge *entities.Edge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.edges[edge.ID().String()] = edgeRecord{
		ID:           edge.ID().String(),
		FlowID:       edge.FlowID().String(),
		SourceID:     edge.SourceID().String(),
		TargetID:     edge.TargetID().String(),
		SourceHandle: edge.SourceHandle(),
		TargetHandle: edge.TargetHandle(),
		DataType:     string(edge.DataType()),
		CreatedAt:    utils.FormatRFC3339(edge.CreatedAt()),
	}
	return nil
}

// GetByID retrieves an edge by its ID
func (r *EdgeRepository) GetByID(ctx context.Context, id valueobjects.EdgeID) (*entities.Edge, error) {
	r.store.mu.RLock()
	record, exists := r.store.edges[id.String()]
	r.store.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	edge, err := reconstructEdge(record)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	return edge, nil
}

// GetByIDs retrieves the edges matching the given identifier set, skipping
// unknown identifiers
func (r *EdgeRepository) GetByIDs(ctx context.Context, ids []valueobjects.EdgeID) ([]*entities.Edge, error) {
	r.store.mu.RLock()
	records := make([]edgeRecord, 0, len(ids))
	for _, id := range ids {
		if record, exists := r.store.edges[id.String()]; exists {
			records = append(records, record)
		}
	}
	r.store.mu.RUnlock()

	return reconstructEdges(records), nil
}

// GetByFlowID retrieves all edges owned by a flow
func (r *EdgeRepository) GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Edge, error) {
	r.store.mu.RLock()
	records := make([]edgeRecord, 0)
	for _, record := range r.store.edges {
		if record.FlowID == flowID.String() {
			records = append(records, record)
		}
	}
	r.store.mu.RUnlock()

	return reconstructEdges(records), nil
}

// GetByNodeIDs retrieves all edges touching any of the given nodes
func (r *EdgeRepository) GetByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) ([]*entities.Edge, error) {
	touched := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		touched[id.String()] = true
	}

	r.store.mu.RLock()
	records := make([]edgeRecord, 0)
	for _, record := range r.store.edges {
		if record.FlowID != flowID.String() {
			continue
		}
		if touched[record.SourceID] || touched[record.TargetID] {
			records = append(records, record)
		}
	}
	r.store.mu.RUnlock()

	return reconstructEdges(records), nil
}

// Delete removes an edge
func (r *EdgeRepository) Delete(ctx context.Context, id valueobjects.EdgeID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.edges, id.String())
	return nil
}

// DeleteBatch removes multiple edges
func (r *EdgeRepository) DeleteBatch(ctx context.Context, ids []valueobjects.EdgeID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		delete(r.store.edges, id.String())
	}
	return nil
}

// DeleteByNodeIDs removes every edge touching any of the given nodes
func (r *EdgeRepository) DeleteByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) error {
	touched := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		touched[id.String()] = true
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, record := range r.store.edges {
		if record.FlowID != flowID.String() {
			continue
		}
		if touched[record.SourceID] || touched[record.TargetID] {
			delete(r.store.edges, key)
		}
	}
	return nil
}

func reconstructEdges(records []edgeRecord) []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(records))
	for _, record := range records {
		edge, err := reconstructEdge(record)
		if err != nil {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

func reconstructEdge(record edgeRecord) (*entities.Edge, error) {
	id, err := valueobjects.NewEdgeIDFromString(record.ID)
	if err != nil {
		return nil, err
	}
	flowID, err := valueobjects.NewFlowIDFromString(record.FlowID)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(record.CreatedAt)
	if err != nil {
		return nil, err
	}

	// Endpoint references may be empty on records that outlived a node
	// type's port schema. They reconstruct as dangling edges.
	var sourceID, targetID valueobjects.NodeID
	if record.SourceID != "" {
		if sourceID, err = valueobjects.NewNodeIDFromString(record.SourceID); err != nil {
			return nil, err
		}
	}
	if record.TargetID != "" {
		if targetID, err = valueobjects.NewNodeIDFromString(record.TargetID); err != nil {
			return nil, err
		}
	}

	return entities.ReconstructEdge(
		id, flowID, sourceID, targetID,
		record.SourceHandle, record.TargetHandle,
		schema.DataType(record.DataType), createdAt,
	)
}
