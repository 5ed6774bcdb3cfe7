package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"composer-backend/application/queries"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	"composer-backend/infrastructure/persistence/memory"
	pkgerrors "composer-backend/pkg/errors"
)

type graphFixture struct {
	handler  *GetFlowGraphHandler
	edgeRepo *memory.EdgeRepository
	flow     *aggregates.Flow
	source   *entities.Node
	target   *entities.Node
	edge     *entities.Edge
}

func newGraphFixture(t *testing.T) *graphFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	flowRepo := memory.NewFlowRepository(store)
	nodeRepo := memory.NewNodeRepository(store)
	edgeRepo := memory.NewEdgeRepository(store)

	flow, err := aggregates.NewFlow("Graph Test", "")
	require.NoError(t, err)

	pos, err := valueobjects.NewPosition(10, 20)
	require.NoError(t, err)
	source, err := entities.NewNode(flow.ID(), schema.NodeTypeTextInput, pos, "", []byte(`{"text":"hi"}`))
	require.NoError(t, err)
	target, err := entities.NewNode(flow.ID(), schema.NodeTypePreviewOutput, pos, "", nil)
	require.NoError(t, err)
	require.NoError(t, flow.AddNode(source))
	require.NoError(t, flow.AddNode(target))

	edge, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	require.NoError(t, flowRepo.Save(ctx, flow))
	require.NoError(t, nodeRepo.Save(ctx, source))
	require.NoError(t, nodeRepo.Save(ctx, target))
	require.NoError(t, edgeRepo.Save(ctx, edge))

	return &graphFixture{
		handler:  NewGetFlowGraphHandler(flowRepo, nodeRepo, edgeRepo, zap.NewNop()),
		edgeRepo: edgeRepo,
		flow:     flow,
		source:   source,
		target:   target,
		edge:     edge,
	}
}

func TestGetFlowGraphReturnsFullCanvasState(t *testing.T) {
	f := newGraphFixture(t)

	result, err := f.handler.Handle(context.Background(), queries.GetFlowGraphQuery{
		FlowID: f.flow.ID().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, f.flow.ID().String(), result.Flow.ID)
	assert.Len(t, result.Nodes, 2)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, f.edge.ID().String(), result.Edges[0].ID)
	assert.Equal(t, "string", result.Edges[0].DataType)
	assert.Zero(t, result.Stats.DanglingEdges)

	// Port lists come from the type registry, not storage
	for _, node := range result.Nodes {
		switch node.Type {
		case "text_input":
			assert.Empty(t, node.InputPorts)
			require.Len(t, node.OutputPorts, 1)
			assert.Equal(t, "text_input.out.text", node.OutputPorts[0].Handle)
		case "preview_output":
			assert.Len(t, node.InputPorts, 3)
			assert.Empty(t, node.OutputPorts)
		}
	}
}

func TestGetFlowGraphExcludesDanglingEdges(t *testing.T) {
	f := newGraphFixture(t)
	ctx := context.Background()

	// An edge whose source reference was lost
	halfDangling, err := entities.ReconstructEdge(
		valueobjects.NewEdgeID(), f.flow.ID(),
		valueobjects.NodeID{}, f.target.ID(),
		"text_input.out.text", "preview_output.in.text",
		schema.DataTypeString, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, f.edgeRepo.Save(ctx, halfDangling))

	// An edge whose source node no longer exists in storage
	stray, err := entities.ReconstructEdge(
		valueobjects.NewEdgeID(), f.flow.ID(),
		valueobjects.NewNodeID(), f.target.ID(),
		"text_input.out.text", "preview_output.in.text",
		schema.DataTypeString, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, f.edgeRepo.Save(ctx, stray))

	result, err := f.handler.Handle(ctx, queries.GetFlowGraphQuery{
		FlowID: f.flow.ID().String(),
	})
	require.NoError(t, err)

	require.Len(t, result.Edges, 1)
	assert.Equal(t, f.edge.ID().String(), result.Edges[0].ID)
	assert.Equal(t, 2, result.Stats.DanglingEdges)
	assert.Equal(t, 1, result.Stats.EdgeCount)
}

func TestGetFlowGraphUnknownFlow(t *testing.T) {
	f := newGraphFixture(t)

	_, err := f.handler.Handle(context.Background(), queries.GetFlowGraphQuery{
		FlowID: valueobjects.NewFlowID().String(),
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}
