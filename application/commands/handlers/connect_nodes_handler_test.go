package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"composer-backend/application/commands"
	"composer-backend/domain/config"
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	"composer-backend/infrastructure/messaging/eventbridge"
	"composer-backend/infrastructure/persistence/memory"
	pkgerrors "composer-backend/pkg/errors"
)

type connectFixture struct {
	handler  *ConnectNodesHandler
	flowRepo *memory.FlowRepository
	nodeRepo *memory.NodeRepository
	edgeRepo *memory.EdgeRepository
	flow     *aggregates.Flow
	source   *entities.Node
	target   *entities.Node
}

func newConnectFixture(t *testing.T) *connectFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	flowRepo := memory.NewFlowRepository(store)
	nodeRepo := memory.NewNodeRepository(store)
	edgeRepo := memory.NewEdgeRepository(store)
	uow := memory.NewUnitOfWork(store)
	eventBus := eventbridge.NewEventBridgePublisher(nil, "", zap.NewNop())

	flow, err := aggregates.NewFlow("Connect Test", "")
	require.NoError(t, err)

	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	source, err := entities.NewNode(flow.ID(), schema.NodeTypeTextInput, pos, "", nil)
	require.NoError(t, err)
	target, err := entities.NewNode(flow.ID(), schema.NodeTypeTextGeneration, pos, "", nil)
	require.NoError(t, err)

	require.NoError(t, flowRepo.Save(ctx, flow))
	require.NoError(t, nodeRepo.Save(ctx, source))
	require.NoError(t, nodeRepo.Save(ctx, target))

	return &connectFixture{
		handler: NewConnectNodesHandler(
			uow, flowRepo, nodeRepo, edgeRepo, eventBus,
			config.DefaultDomainConfig(), zap.NewNop(),
		),
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		flow:     flow,
		source:   source,
		target:   target,
	}
}

func (f *connectFixture) command() commands.ConnectNodesCommand {
	return commands.ConnectNodesCommand{
		FlowID:       f.flow.ID().String(),
		SourceID:     f.source.ID().String(),
		TargetID:     f.target.ID().String(),
		SourceHandle: "text_input.out.text",
		TargetHandle: "text_generation.in.prompt",
	}
}

func TestConnectNodesPersistsEdgeAndTouchesFlow(t *testing.T) {
	f := newConnectFixture(t)
	ctx := context.Background()

	before, err := f.flowRepo.GetByID(ctx, f.flow.ID())
	require.NoError(t, err)

	require.NoError(t, f.handler.Handle(ctx, f.command()))

	edges, err := f.edgeRepo.GetByFlowID(ctx, f.flow.ID())
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, schema.DataTypeString, edges[0].DataType())
	assert.Equal(t, f.source.ID(), edges[0].SourceID())
	assert.Equal(t, f.target.ID(), edges[0].TargetID())

	after, err := f.flowRepo.GetByID(ctx, f.flow.ID())
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt().After(before.UpdatedAt()))
}

func TestConnectNodesRejectsIncompatiblePorts(t *testing.T) {
	f := newConnectFixture(t)
	ctx := context.Background()

	cmd := f.command()
	cmd.TargetHandle = "text_generation.in.trigger" // pulse input, string output

	err := f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	edges, err := f.edgeRepo.GetByFlowID(ctx, f.flow.ID())
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestConnectNodesRejectsDuplicate(t *testing.T) {
	f := newConnectFixture(t)
	ctx := context.Background()

	require.NoError(t, f.handler.Handle(ctx, f.command()))

	err := f.handler.Handle(ctx, f.command())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	edges, err := f.edgeRepo.GetByFlowID(ctx, f.flow.ID())
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestConnectNodesUnknownFlow(t *testing.T) {
	f := newConnectFixture(t)

	cmd := f.command()
	cmd.FlowID = valueobjects.NewFlowID().String()

	err := f.handler.Handle(context.Background(), cmd)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConnectNodesUnknownEndpoint(t *testing.T) {
	f := newConnectFixture(t)

	cmd := f.command()
	cmd.TargetID = valueobjects.NewNodeID().String()

	err := f.handler.Handle(context.Background(), cmd)
	assert.True(t, pkgerrors.IsNotFound(err))
}
