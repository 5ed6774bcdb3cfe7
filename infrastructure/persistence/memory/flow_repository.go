package memory

import (
	"context"

	"composer-backend/application/ports"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/valueobjects"
	pkgerrors "composer-backend/pkg/errors"
	"composer-backend/pkg/utils"
)

// FlowRepository is the in-memory implementation of ports.FlowRepository
type FlowRepository struct {
	store *Store
}

// NewFlowRepository creates a flow repository backed by a store
func NewFlowRepository(store *Store) *FlowRepository {
	return &FlowRepository{store: store}
}

var _ ports.FlowRepository = (*FlowRepository)(nil)

// Save persists a flow's metadata
func (r *FlowRepository) Save(ctx context.Context, flow *aggregates.Flow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.flows[flow.ID().String()] = flowRecord{
		ID:          flow.ID().String(),
		Name:        flow.Name(),
		Description: flow.Description(),
		CreatedAt:   utils.FormatRFC3339(flow.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(flow.UpdatedAt()),
	}
	return nil
}

// GetByID retrieves a flow's metadata. Records that fail to reconstruct
// are reported as not found rather than surfacing storage details.
func (r *FlowRepository) GetByID(ctx context.Context, id valueobjects.FlowID) (*aggregates.Flow, error) {
	r.store.mu.RLock()
	record, exists := r.store.flows[id.String()]
	r.store.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewNotFoundError("flow")
	}
	flow, err := reconstructFlow(record)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("flow")
	}
	return flow, nil
}

// List retrieves metadata for all flows
func (r *FlowRepository) List(ctx context.Context) ([]*aggregates.Flow, error) {
	r.store.mu.RLock()
	records := make([]flowRecord, 0, len(r.store.flows))
	for _, record := range r.store.flows {
		records = append(records, record)
	}
	r.store.mu.RUnlock()

	flows := make([]*aggregates.Flow, 0, len(records))
	for _, record := range records {
		flow, err := reconstructFlow(record)
		if err != nil {
			continue
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

// Delete removes a flow's metadata record
func (r *FlowRepository) Delete(ctx context.Context, id valueobjects.FlowID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.flows, id.String())
	return nil
}

func reconstructFlow(record flowRecord) (*aggregates.Flow, error) {
	id, err := valueobjects.NewFlowIDFromString(record.ID)
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
	return aggregates.ReconstructFlow(id, record.Name, record.Description, createdAt, updatedAt)
}
