package schema

// NodeType identifies the kind of a flow node. The set is closed: every
// variant has an entry in the port registry.
type NodeType string

const (
	NodeTypeTextInput       NodeType = "text_input"
	NodeTypeTextGeneration  NodeType = "text_generation"
	NodeTypeImageGeneration NodeType = "image_generation"
	NodeTypeSpeechSynthesis NodeType = "speech_synthesis"
	NodeTypeTrigger         NodeType = "trigger"
	NodeTypePreviewOutput   NodeType = "preview_output"
)

// AllNodeTypes returns every known node type
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeTextInput,
		NodeTypeTextGeneration,
		NodeTypeImageGeneration,
		NodeTypeSpeechSynthesis,
		NodeTypeTrigger,
		NodeTypePreviewOutput,
	}
}

// IsValid checks whether the node type is a known variant
func (t NodeType) IsValid() bool {
	_, ok := registry[t]
	return ok
}

// DataType is the type tag carried by ports and edges
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeImage  DataType = "image"
	DataTypeAudio  DataType = "audio"
	DataTypePulse  DataType = "pulse"
)

// IsValid checks whether the data type is a known variant
func (d DataType) IsValid() bool {
	switch d {
	case DataTypeString, DataTypeImage, DataTypeAudio, DataTypePulse:
		return true
	default:
		return false
	}
}

// PortDefinition describes one connection point on a node type.
// Handles are stable contracts: an edge persists the handle string, not a
// structural reference, so a released handle must never be reused for a
// semantically different port.
type PortDefinition struct {
	Handle   string   `json:"handle"`
	Label    string   `json:"label"`
	Type     DataType `json:"type"`
	Required bool     `json:"required"`
}

// CanConnect reports whether an output port of type source may feed an input
// port of type target. Current policy is exact type match. Required/optional
// status, fan-in limits and cycle checks are the caller's concern.
func CanConnect(source, target DataType) bool {
	return source.IsValid() && source == target
}
