package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer-backend/domain/config"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
)

func newTestFlow(t *testing.T) *Flow {
	t.Helper()
	flow, err := NewFlow("Test Flow", "")
	require.NoError(t, err)
	return flow
}

func addNode(t *testing.T, flow *Flow, nodeType schema.NodeType) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	node, err := entities.NewNode(flow.ID(), nodeType, pos, "", nil)
	require.NoError(t, err)
	require.NoError(t, flow.AddNode(node))
	return node
}

func TestNewFlowDefaultsName(t *testing.T) {
	flow, err := NewFlow("", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDomainConfig().DefaultFlowName, flow.Name())
}

func TestAddNodeRejectsForeignNode(t *testing.T) {
	flow := newTestFlow(t)
	other := newTestFlow(t)

	pos, err := valueobjects.NewPosition(10, 20)
	require.NoError(t, err)
	node, err := entities.NewNode(other.ID(), schema.NodeTypeTextInput, pos, "", nil)
	require.NoError(t, err)

	err = flow.AddNode(node)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAddNodeRejectsDuplicate(t *testing.T) {
	flow := newTestFlow(t)
	node := addNode(t, flow, schema.NodeTypeTextInput)

	err := flow.AddNode(node)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 1, flow.NodeCount())
}

func TestConnectNodesCompatiblePorts(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	edge, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	assert.Equal(t, schema.DataTypeString, edge.DataType())
	assert.Equal(t, source.ID(), edge.SourceID())
	assert.Equal(t, target.ID(), edge.TargetID())
	assert.Equal(t, 1, flow.EdgeCount())
}

func TestConnectNodesRejectsIncompatiblePorts(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeImageGeneration)
	target := addNode(t, flow, schema.NodeTypeSpeechSynthesis)

	// image output into a text input
	_, err := flow.ConnectNodes(source.ID(), target.ID(),
		"image_generation.out.image", "speech_synthesis.in.text")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, 0, flow.EdgeCount())
}

func TestConnectNodesRejectsUnknownHandle(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	_, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.nope", "preview_output.in.text")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestConnectNodesRejectsMissingEndpoint(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)

	_, err := flow.ConnectNodes(source.ID(), valueobjects.NewNodeID(),
		"text_input.out.text", "preview_output.in.text")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConnectNodesRejectsDuplicateConnection(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	_, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	_, err = flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestRemoveNodeCascadesToTouchingEdges(t *testing.T) {
	flow := newTestFlow(t)
	input := addNode(t, flow, schema.NodeTypeTextInput)
	gen := addNode(t, flow, schema.NodeTypeTextGeneration)
	preview := addNode(t, flow, schema.NodeTypePreviewOutput)

	_, err := flow.ConnectNodes(input.ID(), gen.ID(),
		"text_input.out.text", "text_generation.in.prompt")
	require.NoError(t, err)
	survivor, err := flow.ConnectNodes(gen.ID(), preview.ID(),
		"text_generation.out.text", "preview_output.in.text")
	require.NoError(t, err)
	require.Equal(t, 2, flow.EdgeCount())

	require.NoError(t, flow.RemoveNode(input.ID()))

	assert.False(t, flow.HasNode(input.ID()))
	assert.Equal(t, 1, flow.EdgeCount())
	assert.Equal(t, survivor.ID(), flow.Edges()[0].ID())
}

func TestRemoveNodeUnknownID(t *testing.T) {
	flow := newTestFlow(t)
	err := flow.RemoveNode(valueobjects.NewNodeID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTouchStrictlyIncreases(t *testing.T) {
	flow := newTestFlow(t)

	prev := flow.UpdatedAt()
	for i := 0; i < 1000; i++ {
		flow.Touch()
		assert.True(t, flow.UpdatedAt().After(prev),
			"updatedAt must strictly increase on every touch")
		prev = flow.UpdatedAt()
	}
}

func TestValidEdgesExcludesDangling(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	live, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	// A stored edge whose source reference was lost
	dangling, err := entities.ReconstructEdge(
		valueobjects.NewEdgeID(), flow.ID(),
		valueobjects.NodeID{}, target.ID(),
		"text_input.out.text", "preview_output.in.text",
		schema.DataTypeString, flow.CreatedAt(),
	)
	require.NoError(t, err)
	flow.AttachEdge(dangling)

	assert.Equal(t, 2, flow.EdgeCount())
	valid := flow.ValidEdges()
	require.Len(t, valid, 1)
	assert.Equal(t, live.ID(), valid[0].ID())

	// Dangling edges don't fail aggregate validation either
	assert.NoError(t, flow.Validate())
}

func TestValidateRejectsEdgeWithForeignEndpoint(t *testing.T) {
	flow := newTestFlow(t)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	stray, err := entities.ReconstructEdge(
		valueobjects.NewEdgeID(), flow.ID(),
		valueobjects.NewNodeID(), target.ID(),
		"text_input.out.text", "preview_output.in.text",
		schema.DataTypeString, flow.CreatedAt(),
	)
	require.NoError(t, err)
	flow.AttachEdge(stray)

	assert.Error(t, flow.Validate())
}

func TestUncommittedEventsAccumulateAndClear(t *testing.T) {
	flow := newTestFlow(t)
	source := addNode(t, flow, schema.NodeTypeTextInput)
	target := addNode(t, flow, schema.NodeTypePreviewOutput)

	_, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	// flow.created + 2x node_added + nodes_connected
	assert.Len(t, flow.GetUncommittedEvents(), 4)

	flow.MarkEventsAsCommitted()
	assert.Empty(t, flow.GetUncommittedEvents())
}
