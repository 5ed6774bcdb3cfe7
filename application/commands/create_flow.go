package commands

import "errors"

// CreateFlowCommand represents the command to create a new flow
type CreateFlowCommand struct {
	FlowID      string `json:"flow_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the command
func (cmd CreateFlowCommand) Validate() error {
	if cmd.FlowID == "" {
		return errors.New("flow ID is required")
	}
	if len(cmd.Name) > MaxFlowNameLength {
		return errors.New("flow name exceeds maximum length")
	}
	if len(cmd.Description) > MaxDescriptionLength {
		return errors.New("flow description exceeds maximum length")
	}
	return nil
}

const (
	MaxFlowNameLength    = 120
	MaxDescriptionLength = 2000
)
