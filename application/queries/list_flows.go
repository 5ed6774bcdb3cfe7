package queries

import "errors"

// ListFlowsQuery represents a query for flow metadata listings
type ListFlowsQuery struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Validate validates the query
func (q ListFlowsQuery) Validate() error {
	if q.Page < 0 || q.PageSize < 0 {
		return errors.New("pagination values cannot be negative")
	}
	return nil
}

// ListFlowsResult represents a page of flow metadata
type ListFlowsResult struct {
	Flows []FlowView `json:"flows"`
	Total int        `json:"total"`
}
