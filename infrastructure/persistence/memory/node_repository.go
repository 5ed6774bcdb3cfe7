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

// NodeRepository is the in-memory implementation of ports.NodeRepository
type NodeRepository struct {
	store *Store
}

// NewNodeRepository creates a node repository backed by a store
func NewNodeRepository(store *Store) *NodeRepository {
	return &NodeRepository{store: store}
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// Save persists a node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pos := node.Position()
	r.store.nodes[node.ID().String()] = nodeRecord{
		ID:        node.ID().String(),
		FlowID:    node.FlowID().String(),
		NodeType:  string(node.Type()),
		Label:     node.Label(),
		X:         pos.X(),
		Y:         pos.Y(),
		Payload:   node.Payload(),
		CreatedAt: utils.FormatRFC3339(node.CreatedAt()),
		UpdatedAt: utils.FormatRFC3339(node.UpdatedAt()),
	}
	return nil
}

// GetByID retrieves a node by its ID
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	r.store.mu.RLock()
	record, exists := r.store.nodes[id.String()]
	r.store.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	node, err := reconstructNode(record)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// GetByIDs retrieves the nodes matching the given identifier set, skipping
// unknown identifiers
func (r *NodeRepository) GetByIDs(ctx context.Context, ids []valueobjects.NodeID) ([]*entities.Node, error) {
	r.store.mu.RLock()
	records := make([]nodeRecord, 0, len(ids))
	for _, id := range ids {
		if record, exists := r.store.nodes[id.String()]; exists {
			records = append(records, record)
		}
	}
	r.store.mu.RUnlock()

	return reconstructNodes(records), nil
}

// GetByFlowID retrieves all nodes owned by a flow
func (r *NodeRepository) GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Node, error) {
	r.store.mu.RLock()
	records := make([]nodeRecord, 0)
	for _, record := range r.store.nodes {
		if record.FlowID == flowID.String() {
			records = append(records, record)
		}
	}
	r.store.mu.RUnlock()

	return reconstructNodes(records), nil
}

// Delete removes a node
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.nodes, id.String())
	return nil
}

// DeleteBatch removes multiple nodes
func (r *NodeRepository) DeleteBatch(ctx context.Context, ids []valueobjects.NodeID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		delete(r.store.nodes, id.String())
	}
	return nil
}

func reconstructNodes(records []nodeRecord) []*entities.Node {
	nodes := make([]*entities.Node, 0, len(records))
	for _, record := range records {
		node, err := reconstructNode(record)
		if err != nil {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func reconstructNode(record nodeRecord) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(record.ID)
	if err != nil {
		return nil, err
	}
	flowID, err := valueobjects.NewFlowIDFromString(record.FlowID)
	if err != nil {
		return nil, err
	}
	position, err := valueobjects.NewPosition(record.X, record.Y)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(record.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := utils.ParseRFC3339(record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNode(
		id, flowID, schema.NodeType(record.NodeType),
		position, record.Label, record.Payload,
		createdAt, updatedAt,
	)
}
