package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	"composer-backend/infrastructure/messaging/eventbridge"
	"composer-backend/infrastructure/persistence/memory"
	pkgerrors "composer-backend/pkg/errors"
)

type deletionFixture struct {
	service  *DeletionService
	flowRepo *memory.FlowRepository
	nodeRepo *memory.NodeRepository
	edgeRepo *memory.EdgeRepository
}

func newDeletionFixture(t *testing.T) *deletionFixture {
	t.Helper()
	store := memory.NewStore()
	flowRepo := memory.NewFlowRepository(store)
	nodeRepo := memory.NewNodeRepository(store)
	edgeRepo := memory.NewEdgeRepository(store)
	uow := memory.NewUnitOfWork(store)
	eventBus := eventbridge.NewEventBridgePublisher(nil, "", zap.NewNop())

	return &deletionFixture{
		service:  NewDeletionService(uow, flowRepo, nodeRepo, edgeRepo, eventBus, zap.NewNop()),
		flowRepo: flowRepo,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
	}
}

// seedFlow persists a flow containing text_input -> preview_output with one
// string edge between them
func (f *deletionFixture) seedFlow(t *testing.T) (*aggregates.Flow, *entities.Node, *entities.Node, *entities.Edge) {
	t.Helper()
	ctx := context.Background()

	flow, err := aggregates.NewFlow("Seeded", "")
	require.NoError(t, err)

	pos, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	source, err := entities.NewNode(flow.ID(), schema.NodeTypeTextInput, pos, "Input A", nil)
	require.NoError(t, err)
	target, err := entities.NewNode(flow.ID(), schema.NodeTypePreviewOutput, pos, "Preview B", nil)
	require.NoError(t, err)
	require.NoError(t, flow.AddNode(source))
	require.NoError(t, flow.AddNode(target))

	edge, err := flow.ConnectNodes(source.ID(), target.ID(),
		"text_input.out.text", "preview_output.in.text")
	require.NoError(t, err)

	require.NoError(t, f.flowRepo.Save(ctx, flow))
	require.NoError(t, f.nodeRepo.Save(ctx, source))
	require.NoError(t, f.nodeRepo.Save(ctx, target))
	require.NoError(t, f.edgeRepo.Save(ctx, edge))
	return flow, source, target, edge
}

func TestDeleteFlowCascades(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, source, _, edge := f.seedFlow(t)

	deleted, err := f.service.DeleteFlow(ctx, flow.ID().String())
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.flowRepo.GetByID(ctx, flow.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = f.nodeRepo.GetByID(ctx, source.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = f.edgeRepo.GetByID(ctx, edge.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteFlowAbsentIsIdempotent(t *testing.T) {
	f := newDeletionFixture(t)

	deleted, err := f.service.DeleteFlow(context.Background(), valueobjects.NewFlowID().String())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteFlowRejectsMalformedID(t *testing.T) {
	f := newDeletionFixture(t)

	_, err := f.service.DeleteFlow(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestDeleteNodesCascadesToTouchingEdges(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, source, target, edge := f.seedFlow(t)

	before, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)

	labels, err := f.service.DeleteNodes(ctx, flow.ID().String(), []string{source.ID().String()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Input A"}, labels)

	// The node and the edge touching it are gone
	_, err = f.nodeRepo.GetByID(ctx, source.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = f.edgeRepo.GetByID(ctx, edge.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	// The other node and the flow survive, and the flow was touched
	_, err = f.nodeRepo.GetByID(ctx, target.ID())
	require.NoError(t, err)
	after, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt().After(before.UpdatedAt()))
}

func TestDeleteNodesSkipsUnknownAndMalformedIDs(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, source, _, _ := f.seedFlow(t)

	labels, err := f.service.DeleteNodes(ctx, flow.ID().String(), []string{
		"garbage",
		valueobjects.NewNodeID().String(),
		source.ID().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Input A"}, labels)
}

func TestDeleteNodesEmptyEffectiveSetIsNoop(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, _, _, _ := f.seedFlow(t)

	before, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)

	labels, err := f.service.DeleteNodes(ctx, flow.ID().String(), []string{
		valueobjects.NewNodeID().String(),
	})
	require.NoError(t, err)
	assert.Empty(t, labels)

	// No-op must not touch the flow
	after, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt(), after.UpdatedAt())
}

func TestDeleteNodesSkipsNodesFromOtherFlows(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, _, _, _ := f.seedFlow(t)
	_, otherNode, _, _ := f.seedFlow(t)

	labels, err := f.service.DeleteNodes(ctx, flow.ID().String(), []string{otherNode.ID().String()})
	require.NoError(t, err)
	assert.Empty(t, labels)

	// The node still exists under its own flow
	_, err = f.nodeRepo.GetByID(ctx, otherNode.ID())
	require.NoError(t, err)
}

func TestDeleteNodesUnknownFlow(t *testing.T) {
	f := newDeletionFixture(t)

	_, err := f.service.DeleteNodes(context.Background(),
		valueobjects.NewFlowID().String(), []string{valueobjects.NewNodeID().String()})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteEdgesCountsOnlyRemoved(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, source, target, edge := f.seedFlow(t)

	count, err := f.service.DeleteEdges(ctx, flow.ID().String(), []string{
		edge.ID().String(),
		valueobjects.NewEdgeID().String(),
		"garbage",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.edgeRepo.GetByID(ctx, edge.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	// Endpoints are untouched
	_, err = f.nodeRepo.GetByID(ctx, source.ID())
	require.NoError(t, err)
	_, err = f.nodeRepo.GetByID(ctx, target.ID())
	require.NoError(t, err)
}

func TestDeleteEdgesEmptyEffectiveSetIsNoop(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	flow, _, _, _ := f.seedFlow(t)

	before, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)

	count, err := f.service.DeleteEdges(ctx, flow.ID().String(), []string{
		valueobjects.NewEdgeID().String(),
	})
	require.NoError(t, err)
	assert.Zero(t, count)

	after, err := f.flowRepo.GetByID(ctx, flow.ID())
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt(), after.UpdatedAt())
}
