package commands

import (
	"encoding/json"
	"errors"
)

// UpdateNodeCommand represents the command to mutate a node's label,
// position or payload. Nil fields are left unchanged.
type UpdateNodeCommand struct {
	NodeID  string          `json:"node_id"`
	Label   *string         `json:"label,omitempty"`
	X       *float64        `json:"x,omitempty"`
	Y       *float64        `json:"y,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate validates the command
func (cmd UpdateNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.Label == nil && cmd.X == nil && cmd.Y == nil && cmd.Payload == nil {
		return errors.New("nothing to update")
	}
	if (cmd.X == nil) != (cmd.Y == nil) {
		return errors.New("x and y must be updated together")
	}
	return nil
}
