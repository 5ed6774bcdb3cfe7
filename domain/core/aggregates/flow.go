package aggregates

import (
	"time"

	"composer-backend/domain/config"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/events"
	pkgerrors "composer-backend/pkg/errors"
)

// Flow is the aggregate root for one workflow graph. It owns its nodes and
// edges: removing a node cascades to every edge touching it, and deleting
// the flow deletes everything it owns.
type Flow struct {
	id          valueobjects.FlowID
	name        string
	description string
	nodes       map[valueobjects.NodeID]*entities.Node
	edges       map[valueobjects.EdgeID]*entities.Edge
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	cfg         *config.DomainConfig
	events      []events.DomainEvent
}

// NewFlow creates a new flow aggregate
func NewFlow(name, description string) (*Flow, error) {
	return NewFlowWithConfig(name, description, config.DefaultDomainConfig())
}

// NewFlowWithConfig creates a new flow aggregate with configuration
func NewFlowWithConfig(name, description string, cfg *config.DomainConfig) (*Flow, error) {
	return NewFlowWithID(valueobjects.NewFlowID(), name, description, cfg)
}

// NewFlowWithID creates a flow with a caller-supplied identifier, used when
// the API layer allocates the ID up front
func NewFlowWithID(id valueobjects.FlowID, name, description string, cfg *config.DomainConfig) (*Flow, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("flow ID cannot be empty")
	}
	if name == "" {
		name = cfg.DefaultFlowName
	}

	now := time.Now()
	flow := &Flow{
		id:          id,
		name:        name,
		description: description,
		nodes:       make(map[valueobjects.NodeID]*entities.Node),
		edges:       make(map[valueobjects.EdgeID]*entities.Edge),
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		cfg:         cfg,
		events:      []events.DomainEvent{},
	}

	flow.addEvent(events.NewFlowCreated(flow.id, name, now))
	return flow, nil
}

// ReconstructFlow recreates a flow from stored data. Nodes and edges are
// attached afterwards via AttachNode/AttachEdge.
func ReconstructFlow(
	id valueobjects.FlowID,
	name, description string,
	createdAt, updatedAt time.Time,
) (*Flow, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("flow ID cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("flow name cannot be empty")
	}

	return &Flow{
		id:          id,
		name:        name,
		description: description,
		nodes:       make(map[valueobjects.NodeID]*entities.Node),
		edges:       make(map[valueobjects.EdgeID]*entities.Edge),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     1,
		cfg:         config.DefaultDomainConfig(),
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the flow's unique identifier
func (f *Flow) ID() valueobjects.FlowID {
	return f.id
}

// Name returns the flow's name
func (f *Flow) Name() string {
	return f.name
}

// Description returns the flow's description
func (f *Flow) Description() string {
	return f.description
}

// CreatedAt returns when the flow was created
func (f *Flow) CreatedAt() time.Time {
	return f.createdAt
}

// UpdatedAt returns when the flow's content last changed
func (f *Flow) UpdatedAt() time.Time {
	return f.updatedAt
}

// Version returns the flow's version for optimistic locking
func (f *Flow) Version() int {
	return f.version
}

// Rename changes the flow's name and description
func (f *Flow) Rename(name, description string) error {
	if name == "" {
		return pkgerrors.NewValidationError("flow name cannot be empty")
	}
	f.name = name
	f.description = description
	f.Touch()
	return nil
}

// Touch records that the flow's content changed. The timestamp is
// guaranteed to strictly increase even when the clock has not advanced,
// since the UI uses it as the sole change signal.
func (f *Flow) Touch() {
	now := time.Now()
	if !now.After(f.updatedAt) {
		now = f.updatedAt.Add(time.Nanosecond)
	}
	f.updatedAt = now
	f.version++
}

// AddNode adds a node to the flow
func (f *Flow) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if !node.FlowID().Equals(f.id) {
		return pkgerrors.NewValidationError("node belongs to a different flow")
	}
	if _, exists := f.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already exists in flow")
	}
	if len(f.nodes) >= f.cfg.MaxNodesPerFlow {
		return pkgerrors.NewValidationError("maximum nodes reached")
	}

	f.nodes[node.ID()] = node
	f.Touch()

	f.addEvent(events.NewNodeAdded(f.id, node.ID(), node.Type(), f.updatedAt))
	return nil
}

// AttachNode attaches a persisted node during reconstruction without
// touching timestamps or raising events
func (f *Flow) AttachNode(node *entities.Node) {
	if node != nil {
		f.nodes[node.ID()] = node
	}
}

// AttachEdge attaches a persisted edge during reconstruction
func (f *Flow) AttachEdge(edge *entities.Edge) {
	if edge != nil {
		f.edges[edge.ID()] = edge
	}
}

// ConnectNodes creates an edge between two ports after the compatibility
// gate. Both nodes must already be part of the flow.
func (f *Flow) ConnectNodes(sourceID, targetID valueobjects.NodeID, sourceHandle, targetHandle string) (*entities.Edge, error) {
	source, sourceExists := f.nodes[sourceID]
	target, targetExists := f.nodes[targetID]
	if !sourceExists || !targetExists {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	if !f.cfg.AllowSelfConnections && sourceID.Equals(targetID) {
		return nil, pkgerrors.NewValidationError("cannot connect node to itself")
	}

	if !f.cfg.AllowDuplicateEdges {
		for _, existing := range f.edges {
			if existing.SourceID().Equals(sourceID) &&
				existing.TargetID().Equals(targetID) &&
				existing.SourceHandle() == sourceHandle &&
				existing.TargetHandle() == targetHandle {
				return nil, pkgerrors.NewConflictError("connection already exists")
			}
		}
	}

	if len(f.edges) >= f.cfg.MaxEdgesPerFlow {
		return nil, pkgerrors.NewValidationError("maximum edges reached")
	}

	edge, err := entities.NewEdge(source, target, sourceHandle, targetHandle)
	if err != nil {
		return nil, err
	}

	f.edges[edge.ID()] = edge
	f.Touch()

	f.addEvent(events.NewNodesConnected(
		f.id, edge.ID(), sourceID, targetID,
		sourceHandle, targetHandle, edge.DataType(), f.updatedAt,
	))
	return edge, nil
}

// RemoveNode removes a node and, by cascade, every edge touching it
func (f *Flow) RemoveNode(nodeID valueobjects.NodeID) error {
	if _, exists := f.nodes[nodeID]; !exists {
		return pkgerrors.NewNotFoundError("node")
	}

	for id, edge := range f.edges {
		if edge.Touches(nodeID) {
			delete(f.edges, id)
		}
	}

	delete(f.nodes, nodeID)
	f.Touch()
	return nil
}

// RemoveEdge removes a single edge
func (f *Flow) RemoveEdge(edgeID valueobjects.EdgeID) error {
	if _, exists := f.edges[edgeID]; !exists {
		return pkgerrors.NewNotFoundError("edge")
	}
	delete(f.edges, edgeID)
	f.Touch()
	return nil
}

// GetNode retrieves a node by ID
func (f *Flow) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	node, exists := f.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// HasNode checks if a node exists in the flow
func (f *Flow) HasNode(nodeID valueobjects.NodeID) bool {
	_, exists := f.nodes[nodeID]
	return exists
}

// Nodes returns all nodes in the flow
func (f *Flow) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(f.nodes))
	for _, node := range f.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// Edges returns all edges in the flow, dangling ones included
func (f *Flow) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(f.edges))
	for _, edge := range f.edges {
		edges = append(edges, edge)
	}
	return edges
}

// ValidEdges returns only the edges whose endpoint references both resolve
// to nodes in this flow
func (f *Flow) ValidEdges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(f.edges))
	for _, edge := range f.edges {
		if !edge.IsValid() {
			continue
		}
		if !f.HasNode(edge.SourceID()) || !f.HasNode(edge.TargetID()) {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

// NodeCount returns the number of nodes
func (f *Flow) NodeCount() int {
	return len(f.nodes)
}

// EdgeCount returns the number of edges
func (f *Flow) EdgeCount() int {
	return len(f.edges)
}

// Validate ensures flow invariants: no edge in the active topology may
// reference a node outside the flow
func (f *Flow) Validate() error {
	for _, edge := range f.edges {
		if !edge.IsValid() {
			continue // dangling edges are tolerated, not active
		}
		if !f.HasNode(edge.SourceID()) {
			return pkgerrors.NewValidationError("edge references a source node outside the flow")
		}
		if !f.HasNode(edge.TargetID()) {
			return pkgerrors.NewValidationError("edge references a target node outside the flow")
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events, including
// those raised by owned nodes
func (f *Flow) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(f.events))
	copy(all, f.events)
	for _, node := range f.nodes {
		all = append(all, node.GetUncommittedEvents()...)
	}
	return all
}

// MarkEventsAsCommitted clears all uncommitted events
func (f *Flow) MarkEventsAsCommitted() {
	f.events = []events.DomainEvent{}
	for _, node := range f.nodes {
		node.MarkEventsAsCommitted()
	}
}

func (f *Flow) addEvent(event events.DomainEvent) {
	f.events = append(f.events, event)
}
