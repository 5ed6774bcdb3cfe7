// Package memory provides an in-process storage backend used for local
// development and tests. Records are stored in serialized form, the same
// shape the DynamoDB backend persists, so reconstruction paths are
// exercised identically across drivers.
package memory

import "sync"

// flowRecord is the serialized form of a flow's metadata
type flowRecord struct {
	ID          string
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// nodeRecord is the serialized form of a node
type nodeRecord struct {
	ID        string
	FlowID    string
	NodeType  string
	Label     string
	X         float64
	Y         float64
	Payload   []byte
	CreatedAt string
	UpdatedAt string
}

// edgeRecord is the serialized form of an edge
type edgeRecord struct {
	ID           string
	FlowID       string
	SourceID     string
	TargetID     string
	SourceHandle string
	TargetHandle string
	DataType     string
	CreatedAt    string
}

// Store holds all records behind a single lock. The unit of work
// snapshots and restores the maps wholesale, which is plenty for a
// single-process backend.
type Store struct {
	mu    sync.RWMutex
	flows map[string]flowRecord
	nodes map[string]nodeRecord
	edges map[string]edgeRecord
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		flows: make(map[string]flowRecord),
		nodes: make(map[string]nodeRecord),
		edges: make(map[string]edgeRecord),
	}
}

func (s *Store) snapshot() (map[string]flowRecord, map[string]nodeRecord, map[string]edgeRecord) {
	flows := make(map[string]flowRecord, len(s.flows))
	for k, v := range s.flows {
		flows[k] = v
	}
	nodes := make(map[string]nodeRecord, len(s.nodes))
	for k, v := range s.nodes {
		nodes[k] = v
	}
	edges := make(map[string]edgeRecord, len(s.edges))
	for k, v := range s.edges {
		edges[k] = v
	}
	return flows, nodes, edges
}

func (s *Store) restore(flows map[string]flowRecord, nodes map[string]nodeRecord, edges map[string]edgeRecord) {
	s.flows = flows
	s.nodes = nodes
	s.edges = edges
}
