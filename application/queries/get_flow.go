package queries

import "errors"

// GetFlowQuery represents a query for a single flow's metadata
type GetFlowQuery struct {
	FlowID string `json:"flow_id"`
}

// Validate validates the query
func (q GetFlowQuery) Validate() error {
	if q.FlowID == "" {
		return errors.New("flow ID is required")
	}
	return nil
}

// FlowView is the read model for flow metadata
type FlowView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	NodeCount   int    `json:"node_count"`
	EdgeCount   int    `json:"edge_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
