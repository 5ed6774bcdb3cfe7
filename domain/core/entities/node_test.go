package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer-backend/domain/config"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
)

func newTestNode(t *testing.T, nodeType schema.NodeType, label string) *Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(100, 200)
	require.NoError(t, err)
	node, err := NewNode(valueobjects.NewFlowID(), nodeType, pos, label, nil)
	require.NoError(t, err)
	return node
}

func TestNewNodeRejectsUnknownType(t *testing.T) {
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	_, err = NewNode(valueobjects.NewFlowID(), schema.NodeType("markdown"), pos, "", nil)
	assert.Error(t, err)
}

func TestNewNodeDerivesDefaultLabel(t *testing.T) {
	node := newTestNode(t, schema.NodeTypeTextGeneration, "")
	assert.Equal(t, "Text Generation", node.Label())

	node = newTestNode(t, schema.NodeTypeTrigger, "  ")
	assert.Equal(t, "Trigger", node.Label())

	node = newTestNode(t, schema.NodeTypeTextInput, "My Prompt")
	assert.Equal(t, "My Prompt", node.Label())
}

func TestNewNodeEnforcesLimits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	longLabel := strings.Repeat("x", cfg.MaxLabelLength+1)
	_, err = NewNodeWithConfig(valueobjects.NewFlowID(), schema.NodeTypeTextInput, pos, longLabel, nil, cfg)
	assert.Error(t, err)

	bigPayload := make([]byte, cfg.MaxPayloadBytes+1)
	_, err = NewNodeWithConfig(valueobjects.NewFlowID(), schema.NodeTypeTextInput, pos, "", bigPayload, cfg)
	assert.Error(t, err)
}

func TestPortsDerivedFromType(t *testing.T) {
	node := newTestNode(t, schema.NodeTypeTextGeneration, "")

	assert.Len(t, node.InputPorts(), 3)
	assert.Len(t, node.OutputPorts(), 1)
	assert.Equal(t, "text_generation.out.text", node.OutputPorts()[0].Handle)
}

func TestMoveToSamePositionIsNoop(t *testing.T) {
	node := newTestNode(t, schema.NodeTypeTextInput, "")
	before := node.UpdatedAt()

	require.NoError(t, node.MoveTo(node.Position()))
	assert.Equal(t, before, node.UpdatedAt())
	assert.Empty(t, node.GetUncommittedEvents())
}

func TestMoveToRaisesEvent(t *testing.T) {
	node := newTestNode(t, schema.NodeTypeTextInput, "")

	pos, err := valueobjects.NewPosition(5, 5)
	require.NoError(t, err)
	require.NoError(t, node.MoveTo(pos))

	events := node.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "node.moved", events[0].GetEventType())
}

func TestPayloadReturnsCopy(t *testing.T) {
	node := newTestNode(t, schema.NodeTypeTextInput, "")
	require.NoError(t, node.UpdatePayload([]byte(`{"text":"hello"}`)))

	payload := node.Payload()
	payload[0] = 'X'
	assert.Equal(t, byte('{'), node.Payload()[0])
}

func TestEdgeCompatibilityGate(t *testing.T) {
	flowID := valueobjects.NewFlowID()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	trigger, err := NewNode(flowID, schema.NodeTypeTrigger, pos, "", nil)
	require.NoError(t, err)
	gen, err := NewNode(flowID, schema.NodeTypeTextGeneration, pos, "", nil)
	require.NoError(t, err)

	// pulse -> pulse is fine
	edge, err := NewEdge(trigger, gen, "trigger.out.pulse", "text_generation.in.trigger")
	require.NoError(t, err)
	assert.Equal(t, schema.DataTypePulse, edge.DataType())
	assert.True(t, edge.IsValid())

	// pulse -> string is not
	_, err = NewEdge(trigger, gen, "trigger.out.pulse", "text_generation.in.prompt")
	assert.Error(t, err)
}

func TestEdgeRejectsCrossFlowConnection(t *testing.T) {
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	a, err := NewNode(valueobjects.NewFlowID(), schema.NodeTypeTextInput, pos, "", nil)
	require.NoError(t, err)
	b, err := NewNode(valueobjects.NewFlowID(), schema.NodeTypePreviewOutput, pos, "", nil)
	require.NoError(t, err)

	_, err = NewEdge(a, b, "text_input.out.text", "preview_output.in.text")
	assert.Error(t, err)
}

func TestEdgeTouches(t *testing.T) {
	flowID := valueobjects.NewFlowID()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	source, err := NewNode(flowID, schema.NodeTypeTextInput, pos, "", nil)
	require.NoError(t, err)
	target, err := NewNode(flowID, schema.NodeTypePreviewOutput, pos, "", nil)
	require.NoError(t, err)

	edge, err := NewEdge(source, target, "text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	assert.True(t, edge.Touches(source.ID()))
	assert.True(t, edge.Touches(target.ID()))
	assert.False(t, edge.Touches(valueobjects.NewNodeID()))
}
