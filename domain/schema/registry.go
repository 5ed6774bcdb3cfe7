package schema

import "fmt"

// portSet holds the ordered input and output port lists for one node type
type portSet struct {
	inputs  []PortDefinition
	outputs []PortDefinition
}

// registry maps every node type to its port schema. Handles are prefixed
// with the node type and direction, which keeps them unique across the
// whole registry.
var registry = map[NodeType]portSet{
	NodeTypeTextInput: {
		outputs: []PortDefinition{
			{Handle: "text_input.out.text", Label: "Text", Type: DataTypeString},
		},
	},
	NodeTypeTextGeneration: {
		inputs: []PortDefinition{
			{Handle: "text_generation.in.prompt", Label: "Prompt", Type: DataTypeString, Required: true},
			{Handle: "text_generation.in.context", Label: "Context", Type: DataTypeString},
			{Handle: "text_generation.in.trigger", Label: "Trigger", Type: DataTypePulse},
		},
		outputs: []PortDefinition{
			{Handle: "text_generation.out.text", Label: "Generated Text", Type: DataTypeString},
		},
	},
	NodeTypeImageGeneration: {
		inputs: []PortDefinition{
			{Handle: "image_generation.in.prompt", Label: "Prompt", Type: DataTypeString, Required: true},
		},
		outputs: []PortDefinition{
			{Handle: "image_generation.out.image", Label: "Image", Type: DataTypeImage},
		},
	},
	NodeTypeSpeechSynthesis: {
		inputs: []PortDefinition{
			{Handle: "speech_synthesis.in.text", Label: "Text", Type: DataTypeString, Required: true},
		},
		outputs: []PortDefinition{
			{Handle: "speech_synthesis.out.audio", Label: "Audio", Type: DataTypeAudio},
		},
	},
	NodeTypeTrigger: {
		outputs: []PortDefinition{
			{Handle: "trigger.out.pulse", Label: "Pulse", Type: DataTypePulse},
		},
	},
	NodeTypePreviewOutput: {
		inputs: []PortDefinition{
			{Handle: "preview_output.in.text", Label: "Text", Type: DataTypeString},
			{Handle: "preview_output.in.image", Label: "Image", Type: DataTypeImage},
			{Handle: "preview_output.in.audio", Label: "Audio", Type: DataTypeAudio},
		},
	},
}

func init() {
	if err := validateRegistry(); err != nil {
		panic(err)
	}
}

// validateRegistry enforces the registry contracts at startup: every node
// type has an entry, every handle is globally unique, every port has a
// valid data type.
func validateRegistry() error {
	seen := make(map[string]NodeType)
	for _, t := range AllNodeTypes() {
		set, ok := registry[t]
		if !ok {
			return fmt.Errorf("schema: node type %q has no registry entry", t)
		}
		for _, def := range append(append([]PortDefinition{}, set.inputs...), set.outputs...) {
			if def.Handle == "" {
				return fmt.Errorf("schema: node type %q has a port with an empty handle", t)
			}
			if owner, dup := seen[def.Handle]; dup {
				return fmt.Errorf("schema: handle %q is declared by both %q and %q", def.Handle, owner, t)
			}
			seen[def.Handle] = t
			if !def.Type.IsValid() {
				return fmt.Errorf("schema: port %q has unknown data type %q", def.Handle, def.Type)
			}
		}
	}
	return nil
}

// InputPorts returns the ordered input port list for a node type.
// The result is a copy; the registry itself is immutable.
func InputPorts(t NodeType) []PortDefinition {
	set := registry[t]
	out := make([]PortDefinition, len(set.inputs))
	copy(out, set.inputs)
	return out
}

// OutputPorts returns the ordered output port list for a node type
func OutputPorts(t NodeType) []PortDefinition {
	set := registry[t]
	out := make([]PortDefinition, len(set.outputs))
	copy(out, set.outputs)
	return out
}

// FindInputPort resolves an input port handle on a node type
func FindInputPort(t NodeType, handle string) (PortDefinition, bool) {
	for _, def := range registry[t].inputs {
		if def.Handle == handle {
			return def, true
		}
	}
	return PortDefinition{}, false
}

// FindOutputPort resolves an output port handle on a node type
func FindOutputPort(t NodeType, handle string) (PortDefinition, bool) {
	for _, def := range registry[t].outputs {
		if def.Handle == handle {
			return def, true
		}
	}
	return PortDefinition{}, false
}
