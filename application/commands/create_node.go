package commands

import (
	"encoding/json"
	"errors"

	"composer-backend/domain/schema"
)

// CreateNodeCommand represents the command to place a node on a flow canvas
type CreateNodeCommand struct {
	NodeID   string          `json:"node_id"`
	FlowID   string          `json:"flow_id"`
	NodeType string          `json:"node_type"`
	Label    string          `json:"label"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Validate validates the command
func (cmd CreateNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.FlowID == "" {
		return errors.New("flow ID is required")
	}
	if !schema.NodeType(cmd.NodeType).IsValid() {
		return errors.New("unknown node type")
	}
	return nil
}
