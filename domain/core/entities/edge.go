package entities

import (
	"fmt"
	"time"

	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
)

// Edge is a directed, typed connection from one node's output port to
// another node's input port. Node references are plain identifiers; an
// edge whose source or target reference is empty is dangling and is not
// part of the active graph topology.
type Edge struct {
	id           valueobjects.EdgeID
	flowID       valueobjects.FlowID
	sourceID     valueobjects.NodeID
	targetID     valueobjects.NodeID
	sourceHandle string
	targetHandle string
	dataType     schema.DataType
	createdAt    time.Time
}

// NewEdge creates an edge between two nodes after checking port
// compatibility. This is the single gate every caller goes through before
// an edge is materialized: the handles must resolve against the endpoint
// node types and the port data types must match exactly.
func NewEdge(source, target *Node, sourceHandle, targetHandle string) (*Edge, error) {
	if source == nil || target == nil {
		return nil, pkgerrors.NewValidationError("source and target nodes are required")
	}
	if !source.FlowID().Equals(target.FlowID()) {
		return nil, pkgerrors.NewValidationError("cannot connect nodes from different flows")
	}

	sourcePort, ok := schema.FindOutputPort(source.Type(), sourceHandle)
	if !ok {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("node type %q has no output port %q", source.Type(), sourceHandle))
	}
	targetPort, ok := schema.FindInputPort(target.Type(), targetHandle)
	if !ok {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("node type %q has no input port %q", target.Type(), targetHandle))
	}

	if !schema.CanConnect(sourcePort.Type, targetPort.Type) {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf(
			"incompatible ports: %q produces %s, %q accepts %s",
			sourceHandle, sourcePort.Type, targetHandle, targetPort.Type,
		))
	}

	return &Edge{
		id:           valueobjects.NewEdgeID(),
		flowID:       source.FlowID(),
		sourceID:     source.ID(),
		targetID:     target.ID(),
		sourceHandle: sourceHandle,
		targetHandle: targetHandle,
		dataType:     sourcePort.Type,
		createdAt:    time.Now(),
	}, nil
}

// ReconstructEdge reconstructs an edge from repository data. Node
// references may be empty here: a saved edge can outlive its endpoints if
// a port handle was retired, and such edges are reported as invalid rather
// than rejected.
func ReconstructEdge(
	id valueobjects.EdgeID,
	flowID valueobjects.FlowID,
	sourceID, targetID valueobjects.NodeID,
	sourceHandle, targetHandle string,
	dataType schema.DataType,
	createdAt time.Time,
) (*Edge, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	return &Edge{
		id:           id,
		flowID:       flowID,
		sourceID:     sourceID,
		targetID:     targetID,
		sourceHandle: sourceHandle,
		targetHandle: targetHandle,
		dataType:     dataType,
		createdAt:    createdAt,
	}, nil
}

// ID returns the edge's unique identifier
func (e *Edge) ID() valueobjects.EdgeID {
	return e.id
}

// FlowID returns the owning flow's identifier
func (e *Edge) FlowID() valueobjects.FlowID {
	return e.flowID
}

// SourceID returns the source node reference (may be zero for a dangling edge)
func (e *Edge) SourceID() valueobjects.NodeID {
	return e.sourceID
}

// TargetID returns the target node reference (may be zero for a dangling edge)
func (e *Edge) TargetID() valueobjects.NodeID {
	return e.targetID
}

// SourceHandle returns the handle into the source node's output port schema
func (e *Edge) SourceHandle() string {
	return e.sourceHandle
}

// TargetHandle returns the handle into the target node's input port schema
func (e *Edge) TargetHandle() string {
	return e.targetHandle
}

// DataType returns the data type carried by this edge
func (e *Edge) DataType() schema.DataType {
	return e.dataType
}

// CreatedAt returns when the edge was created
func (e *Edge) CreatedAt() time.Time {
	return e.createdAt
}

// IsValid reports whether both node references are present. Invalid edges
// are excluded from the active topology.
func (e *Edge) IsValid() bool {
	return !e.sourceID.IsZero() && !e.targetID.IsZero()
}

// Touches reports whether the edge references the given node on either end
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.sourceID.Equals(nodeID) || e.targetID.Equals(nodeID)
}
