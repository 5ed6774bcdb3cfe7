package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
)

func seedStore(t *testing.T, store *Store) (*aggregates.Flow, *entities.Node) {
	t.Helper()
	ctx := context.Background()

	flow, err := aggregates.NewFlow("UoW Test", "")
	require.NoError(t, err)

	pos, err := valueobjects.NewPosition(1, 2)
	require.NoError(t, err)
	node, err := entities.NewNode(flow.ID(), schema.NodeTypeTextInput, pos, "", nil)
	require.NoError(t, err)

	require.NoError(t, NewFlowRepository(store).Save(ctx, flow))
	require.NoError(t, NewNodeRepository(store).Save(ctx, node))
	return flow, node
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	flow, node := seedStore(t, store)

	uow := NewUnitOfWork(store)
	nodeRepo := NewNodeRepository(store)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, nodeRepo.Delete(ctx, node.ID()))
	require.NoError(t, NewFlowRepository(store).Delete(ctx, flow.ID()))
	require.NoError(t, uow.Rollback())

	// Everything written since Begin is undone
	_, err := nodeRepo.GetByID(ctx, node.ID())
	require.NoError(t, err)
	_, err = NewFlowRepository(store).GetByID(ctx, flow.ID())
	require.NoError(t, err)
}

func TestCommitKeepsWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, node := seedStore(t, store)

	uow := NewUnitOfWork(store)
	nodeRepo := NewNodeRepository(store)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, nodeRepo.Delete(ctx, node.ID()))
	require.NoError(t, uow.Commit(ctx))

	// Rollback after commit is a no-op
	require.NoError(t, uow.Rollback())

	_, err := nodeRepo.GetByID(ctx, node.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBeginTwiceFails(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := NewUnitOfWork(store)
	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
}

func TestCommitWithoutBeginFails(t *testing.T) {
	store := NewStore()
	uow := NewUnitOfWork(store)
	assert.Error(t, uow.Commit(context.Background()))
}

func TestCorruptRecordsCollapseToNotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	id := valueobjects.NewFlowID()
	store.flows[id.String()] = flowRecord{
		ID:        id.String(),
		Name:      "Corrupt",
		CreatedAt: "not-a-timestamp",
		UpdatedAt: "not-a-timestamp",
	}

	_, err := NewFlowRepository(store).GetByID(ctx, id)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDanglingEdgeRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	edgeRepo := NewEdgeRepository(store)

	flowID := valueobjects.NewFlowID()
	edge, err := entities.ReconstructEdge(
		valueobjects.NewEdgeID(), flowID,
		valueobjects.NodeID{}, valueobjects.NewNodeID(),
		"text_input.out.text", "preview_output.in.text",
		schema.DataTypeString, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, edgeRepo.Save(ctx, edge))

	loaded, err := edgeRepo.GetByID(ctx, edge.ID())
	require.NoError(t, err)
	assert.False(t, loaded.IsValid())
	assert.True(t, loaded.SourceID().IsZero())
	assert.False(t, loaded.TargetID().IsZero())
}
