package commands

import "errors"

// ConnectNodesCommand represents the command to create an edge between a
// source node's output port and a target node's input port
type ConnectNodesCommand struct {
	FlowID       string `json:"flow_id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	SourceHandle string `json:"source_handle"`
	TargetHandle string `json:"target_handle"`
}

// Validate validates the command
func (cmd ConnectNodesCommand) Validate() error {
	if cmd.FlowID == "" {
		return errors.New("flow ID is required")
	}
	if cmd.SourceID == "" || cmd.TargetID == "" {
		return errors.New("source and target node IDs are required")
	}
	if cmd.SourceHandle == "" || cmd.TargetHandle == "" {
		return errors.New("source and target port handles are required")
	}
	return nil
}
