package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsTotal(t *testing.T) {
	for _, nodeType := range AllNodeTypes() {
		assert.True(t, nodeType.IsValid(), "node type %q missing from registry", nodeType)

		// Both lists must be defined, even if empty
		assert.NotNil(t, InputPorts(nodeType))
		assert.NotNil(t, OutputPorts(nodeType))
	}
}

func TestHandlesAreGloballyUnique(t *testing.T) {
	seen := make(map[string]NodeType)
	for _, nodeType := range AllNodeTypes() {
		all := append(InputPorts(nodeType), OutputPorts(nodeType)...)
		for _, def := range all {
			owner, dup := seen[def.Handle]
			require.False(t, dup, "handle %q declared by both %q and %q", def.Handle, owner, nodeType)
			seen[def.Handle] = nodeType
		}
	}
}

func TestValidateRegistry(t *testing.T) {
	require.NoError(t, validateRegistry())
}

func TestCanConnectReflexive(t *testing.T) {
	for _, dt := range []DataType{DataTypeString, DataTypeImage, DataTypeAudio, DataTypePulse} {
		assert.True(t, CanConnect(dt, dt), "expected %q to connect to itself", dt)
	}
}

func TestCanConnectSymmetric(t *testing.T) {
	types := []DataType{DataTypeString, DataTypeImage, DataTypeAudio, DataTypePulse}
	for _, a := range types {
		for _, b := range types {
			assert.Equal(t, CanConnect(a, b), CanConnect(b, a))
		}
	}
}

func TestCanConnectRejectsMismatch(t *testing.T) {
	assert.False(t, CanConnect(DataTypeString, DataTypeImage))
	assert.False(t, CanConnect(DataTypePulse, DataTypeAudio))
	assert.False(t, CanConnect(DataType("bogus"), DataType("bogus")))
}

func TestFindPortsByHandle(t *testing.T) {
	def, ok := FindOutputPort(NodeTypeTextInput, "text_input.out.text")
	require.True(t, ok)
	assert.Equal(t, DataTypeString, def.Type)

	def, ok = FindInputPort(NodeTypeTextGeneration, "text_generation.in.prompt")
	require.True(t, ok)
	assert.True(t, def.Required)

	_, ok = FindInputPort(NodeTypeTextInput, "text_input.out.text")
	assert.False(t, ok, "output handle must not resolve as an input")

	_, ok = FindOutputPort(NodeTypePreviewOutput, "preview_output.out.anything")
	assert.False(t, ok)
}

func TestPortListsAreCopies(t *testing.T) {
	ports := OutputPorts(NodeTypeTextInput)
	require.NotEmpty(t, ports)
	ports[0].Handle = "mutated"

	fresh := OutputPorts(NodeTypeTextInput)
	assert.Equal(t, "text_input.out.text", fresh[0].Handle)
}
