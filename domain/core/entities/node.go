package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"composer-backend/domain/config"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/events"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
)

// Node is a vertex on a flow canvas: a typed processing step with a
// position, a display label and a node-type-specific payload blob.
// Its port lists are a pure function of the node type and are never
// persisted.
type Node struct {
	// Private fields ensure encapsulation
	id        valueobjects.NodeID
	flowID    valueobjects.FlowID
	nodeType  schema.NodeType
	position  valueobjects.Position
	label     string
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// NewNode creates a new node with business rule validation
func NewNode(flowID valueobjects.FlowID, nodeType schema.NodeType, position valueobjects.Position, label string, payload []byte) (*Node, error) {
	return NewNodeWithConfig(flowID, nodeType, position, label, payload, config.DefaultDomainConfig())
}

// NewNodeWithConfig creates a new node with business rule validation and configuration
func NewNodeWithConfig(flowID valueobjects.FlowID, nodeType schema.NodeType, position valueobjects.Position, label string, payload []byte, cfg *config.DomainConfig) (*Node, error) {
	return NewNodeWithID(valueobjects.NewNodeID(), flowID, nodeType, position, label, payload, cfg)
}

// NewNodeWithID creates a node with a caller-supplied identifier, used when
// the API layer allocates the ID up front
func NewNodeWithID(id valueobjects.NodeID, flowID valueobjects.FlowID, nodeType schema.NodeType, position valueobjects.Position, label string, payload []byte, cfg *config.DomainConfig) (*Node, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if flowID.IsZero() {
		return nil, pkgerrors.NewValidationError("flowID cannot be empty")
	}
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", nodeType))
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultLabel(nodeType)
	}
	if utf8.RuneCountInString(label) > cfg.MaxLabelLength {
		return nil, fmt.Errorf("label exceeds maximum length of %d characters", cfg.MaxLabelLength)
	}
	if len(payload) > cfg.MaxPayloadBytes {
		return nil, fmt.Errorf("payload exceeds maximum size of %d bytes", cfg.MaxPayloadBytes)
	}

	now := time.Now()
	return &Node{
		id:        id,
		flowID:    flowID,
		nodeType:  nodeType,
		position:  position,
		label:     label,
		payload:   payload,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ReconstructNode reconstructs a node from repository data with preserved timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	flowID valueobjects.FlowID,
	nodeType schema.NodeType,
	position valueobjects.Position,
	label string,
	payload []byte,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", nodeType))
	}

	return &Node{
		id:        id,
		flowID:    flowID,
		nodeType:  nodeType,
		position:  position,
		label:     label,
		payload:   payload,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// FlowID returns the owning flow's identifier
func (n *Node) FlowID() valueobjects.FlowID {
	return n.flowID
}

// Type returns the node's type
func (n *Node) Type() schema.NodeType {
	return n.nodeType
}

// Position returns the node's canvas position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Label returns the node's display label
func (n *Node) Label() string {
	return n.label
}

// Payload returns a copy of the node's payload blob
func (n *Node) Payload() []byte {
	if n.payload == nil {
		return nil
	}
	out := make([]byte, len(n.payload))
	copy(out, n.payload)
	return out
}

// InputPorts returns the node's input ports, derived from its type
func (n *Node) InputPorts() []schema.PortDefinition {
	return schema.InputPorts(n.nodeType)
}

// OutputPorts returns the node's output ports, derived from its type
func (n *Node) OutputPorts() []schema.PortDefinition {
	return schema.OutputPorts(n.nodeType)
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Version returns the node's version for optimistic locking
func (n *Node) Version() int {
	return n.version
}

// MoveTo moves the node to a new canvas position
func (n *Node) MoveTo(position valueobjects.Position) error {
	if position.Equals(n.position) {
		return nil // No movement needed
	}

	n.position = position
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodeMoved(n.id, position, n.updatedAt))
	return nil
}

// Rename changes the node's display label
func (n *Node) Rename(label string) error {
	return n.RenameWithConfig(label, config.DefaultDomainConfig())
}

// RenameWithConfig changes the node's display label with configuration
func (n *Node) RenameWithConfig(label string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return pkgerrors.NewValidationError("label cannot be empty")
	}
	if utf8.RuneCountInString(label) > cfg.MaxLabelLength {
		return fmt.Errorf("label exceeds maximum length of %d characters", cfg.MaxLabelLength)
	}
	if label == n.label {
		return nil
	}

	n.label = label
	n.updatedAt = time.Now()
	n.version++
	return nil
}

// UpdatePayload replaces the node's payload blob
func (n *Node) UpdatePayload(payload []byte) error {
	return n.UpdatePayloadWithConfig(payload, config.DefaultDomainConfig())
}

// UpdatePayloadWithConfig replaces the node's payload blob with configuration
func (n *Node) UpdatePayloadWithConfig(payload []byte, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if len(payload) > cfg.MaxPayloadBytes {
		return fmt.Errorf("payload exceeds maximum size of %d bytes", cfg.MaxPayloadBytes)
	}

	n.payload = payload
	n.updatedAt = time.Now()
	n.version++

	n.addEvent(events.NewNodePayloadUpdated(n.id, n.updatedAt))
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}

// defaultLabel derives a display label from the node type
func defaultLabel(t schema.NodeType) string {
	parts := strings.Split(string(t), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
