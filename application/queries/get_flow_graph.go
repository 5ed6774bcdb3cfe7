package queries

import (
	"encoding/json"
	"errors"
)

// GetFlowGraphQuery represents a query for a flow's full canvas state:
// every node with its derived ports, plus the active edge topology.
type GetFlowGraphQuery struct {
	FlowID string `json:"flow_id"`
}

// Validate validates the query
func (q GetFlowGraphQuery) Validate() error {
	if q.FlowID == "" {
		return errors.New("flow ID is required")
	}
	return nil
}

// GetFlowGraphResult represents the complete canvas state for rendering
type GetFlowGraphResult struct {
	Flow  FlowView       `json:"flow"`
	Nodes []FlowNodeView `json:"nodes"`
	Edges []FlowEdgeView `json:"edges"`
	Stats FlowGraphStats `json:"stats"`
}

// FlowNodeView is the read model for a node on the canvas. Ports are
// derived from the node type at read time, never stored.
type FlowNodeView struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	InputPorts  []PortView      `json:"input_ports"`
	OutputPorts []PortView      `json:"output_ports"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// PortView is the read model for a port definition
type PortView struct {
	Handle   string `json:"handle"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FlowEdgeView is the read model for an active edge
type FlowEdgeView struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	SourceHandle string `json:"source_handle"`
	TargetHandle string `json:"target_handle"`
	DataType     string `json:"data_type"`
	CreatedAt    string `json:"created_at"`
}

// FlowGraphStats summarizes the canvas topology. DanglingEdges counts
// stored edges excluded from the active topology because an endpoint
// reference no longer resolves.
type FlowGraphStats struct {
	NodeCount     int `json:"node_count"`
	EdgeCount     int `json:"edge_count"`
	DanglingEdges int `json:"dangling_edges"`
}
