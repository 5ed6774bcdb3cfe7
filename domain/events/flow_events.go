package events

import (
	"time"

	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
)

// Flow events

// FlowCreated is raised when a new flow is created
type FlowCreated struct {
	BaseEvent
	FlowID valueobjects.FlowID `json:"flow_id"`
	Name   string              `json:"name"`
}

// NewFlowCreated creates a FlowCreated event
func NewFlowCreated(flowID valueobjects.FlowID, name string, timestamp time.Time) FlowCreated {
	return FlowCreated{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID: flowID,
		Name:   name,
	}
}

// FlowDeleted is raised when a flow and its contents are deleted
type FlowDeleted struct {
	BaseEvent
	FlowID       valueobjects.FlowID `json:"flow_id"`
	NodesDeleted int                 `json:"nodes_deleted"`
	EdgesDeleted int                 `json:"edges_deleted"`
}

// NewFlowDeleted creates a FlowDeleted event
func NewFlowDeleted(flowID valueobjects.FlowID, nodesDeleted, edgesDeleted int, timestamp time.Time) FlowDeleted {
	return FlowDeleted{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID:       flowID,
		NodesDeleted: nodesDeleted,
		EdgesDeleted: edgesDeleted,
	}
}

// Node events

// NodeAdded is raised when a node is placed on a flow canvas
type NodeAdded struct {
	BaseEvent
	FlowID   valueobjects.FlowID `json:"flow_id"`
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType schema.NodeType     `json:"node_type"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(flowID valueobjects.FlowID, nodeID valueobjects.NodeID, nodeType schema.NodeType, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.node_added",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID:   flowID,
		NodeID:   nodeID,
		NodeType: nodeType,
	}
}

// NodeMoved is raised when a node is dragged to a new position
type NodeMoved struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	X      float64             `json:"x"`
	Y      float64             `json:"y"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(nodeID valueobjects.NodeID, pos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		X:      pos.X(),
		Y:      pos.Y(),
	}
}

// NodePayloadUpdated is raised when a node's payload blob changes
type NodePayloadUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodePayloadUpdated creates a NodePayloadUpdated event
func NewNodePayloadUpdated(nodeID valueobjects.NodeID, timestamp time.Time) NodePayloadUpdated {
	return NodePayloadUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.payload_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
	}
}

// NodesDeleted is raised after a bulk node deletion
type NodesDeleted struct {
	BaseEvent
	FlowID valueobjects.FlowID `json:"flow_id"`
	Labels []string            `json:"labels"`
}

// NewNodesDeleted creates a NodesDeleted event
func NewNodesDeleted(flowID valueobjects.FlowID, labels []string, timestamp time.Time) NodesDeleted {
	return NodesDeleted{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.nodes_deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID: flowID,
		Labels: labels,
	}
}

// Edge events

// NodesConnected is raised when an edge is created between two ports
type NodesConnected struct {
	BaseEvent
	FlowID       valueobjects.FlowID `json:"flow_id"`
	EdgeID       valueobjects.EdgeID `json:"edge_id"`
	SourceID     valueobjects.NodeID `json:"source_id"`
	TargetID     valueobjects.NodeID `json:"target_id"`
	SourceHandle string              `json:"source_handle"`
	TargetHandle string              `json:"target_handle"`
	DataType     schema.DataType     `json:"data_type"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(flowID valueobjects.FlowID, edgeID valueobjects.EdgeID, sourceID, targetID valueobjects.NodeID, sourceHandle, targetHandle string, dataType schema.DataType, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.nodes_connected",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID:       flowID,
		EdgeID:       edgeID,
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		DataType:     dataType,
	}
}

// EdgesDeleted is raised after a bulk edge deletion
type EdgesDeleted struct {
	BaseEvent
	FlowID valueobjects.FlowID `json:"flow_id"`
	Count  int                 `json:"count"`
}

// NewEdgesDeleted creates an EdgesDeleted event
func NewEdgesDeleted(flowID valueobjects.FlowID, count int, timestamp time.Time) EdgesDeleted {
	return EdgesDeleted{
		BaseEvent: BaseEvent{
			AggregateID: flowID.String(),
			EventType:   "flow.edges_deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		FlowID: flowID,
		Count:  count,
	}
}
