package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"composer-backend/application/ports"
	"composer-backend/domain/core/entities"
	"composer-backend/domain/core/valueobjects"
	"composer-backend/domain/schema"
	pkgerrors "composer-backend/pkg/errors"
	"composer-backend/pkg/utils"
)

// EdgeRepository implements ports.EdgeRepository using DynamoDB
type EdgeRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	uow       *UnitOfWork
	logger    *zap.Logger
}

// NewEdgeRepository creates a new DynamoDB edge repository
func NewEdgeRepository(client *dynamodb.Client, tableName, indexName string, uow *UnitOfWork, logger *zap.Logger) *EdgeRepository {
	return &EdgeRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		uow:       uow,
		logger:    logger,
	}
}

var _ ports.EdgeRepository = (*EdgeRepository)(nil)

// edgeItem represents the DynamoDB item structure for an edge
type edgeItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	EntityType   string `dynamodbav:"EntityType"`
	EdgeID       string `dynamodbav:"EdgeID"`
	FlowID       string `dynamodbav:"FlowID"`
	SourceID     string `dynamodbav:"SourceID"`
	TargetID     string `dynamodbav:"TargetID"`
	SourceHandle string `dynamodbav:"SourceHandle"`
	TargetHandle string `dynamodbav:"TargetHandle"`
	DataType     string `dynamodbav:"DataType"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

func edgeSK(id string) string    { return fmt.Sprintf("EDGE#%s", id) }
func edgeGSIPK(id string) string { return fmt.Sprintf("EDGE#%s", id) }

// Save persists an edge
func (r *EdgeRepository) Save(ctx context.Context, edge *entities.Edge) error {
	item := edgeItem{
		PK:           flowPK(edge.FlowID().String()),
		SK:           edgeSK(edge.ID().String()),
		GSI1PK:       edgeGSIPK(edge.ID().String()),
		GSI1SK:       skMetadata,
		EntityType:   "EDGE",
		EdgeID:       edge.ID().String(),
		FlowID:       edge.FlowID().String(),
		SourceID:     edge.SourceID().String(),
		TargetID:     edge.TargetID().String(),
		SourceHandle: edge.SourceHandle(),
		TargetHandle: edge.TargetHandle(),
		DataType:     string(edge.DataType()),
		CreatedAt:    utils.FormatRFC3339(edge.CreatedAt()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}

	if r.uow.enlist(types.TransactWriteItem{
		Put: &types.Put{TableName: aws.String(r.tableName), Item: av},
	}) {
		return nil
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("Failed to save edge",
			zap.String("edgeID", edge.ID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save edge: %w", err)
	}
	return nil
}

// GetByID retrieves an edge by its ID via GSI1
func (r *EdgeRepository) GetByID(ctx context.Context, id valueobjects.EdgeID) (*entities.Edge, error) {
	item, err := r.lookupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	edge, err := reconstructEdgeItem(item)
	if err != nil {
		r.logger.Warn("Edge record failed to reconstruct",
			zap.String("edgeID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	return edge, nil
}

// GetByIDs retrieves the edges matching the given identifier set, skipping
// unknown identifiers
func (r *EdgeRepository) GetByIDs(ctx context.Context, ids []valueobjects.EdgeID) ([]*entities.Edge, error) {
	edges := make([]*entities.Edge, 0, len(ids))
	for _, id := range ids {
		edge, err := r.GetByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// GetByFlowID retrieves all edges owned by a flow
func (r *EdgeRepository) GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Edge, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(flowPK(flowID.String()))).
		And(expression.Key("SK").BeginsWith("EDGE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	edges := make([]*entities.Edge, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query flow edges: %w", err)
		}

		for _, item := range out.Items {
			edge, err := reconstructEdgeItem(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable edge record", zap.Error(err))
				continue
			}
			edges = append(edges, edge)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return edges, nil
}

// GetByNodeIDs retrieves all edges touching any of the given nodes. Edges
// live in the flow's partition, so one partition query covers them all.
func (r *EdgeRepository) GetByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) ([]*entities.Edge, error) {
	all, err := r.GetByFlowID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	touched := make(map[valueobjects.NodeID]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		touched[id] = true
	}

	edges := make([]*entities.Edge, 0)
	for _, edge := range all {
		if touched[edge.SourceID()] || touched[edge.TargetID()] {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// Delete removes an edge
func (r *EdgeRepository) Delete(ctx context.Context, id valueobjects.EdgeID) error {
	return r.DeleteBatch(ctx, []valueobjects.EdgeID{id})
}

// DeleteBatch removes multiple edges. Identifiers that no longer resolve
// are skipped.
func (r *EdgeRepository) DeleteBatch(ctx context.Context, ids []valueobjects.EdgeID) error {
	for _, id := range ids {
		item, err := r.lookupByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return err
		}
		if err := r.deleteItem(ctx, item); err != nil {
			return fmt.Errorf("failed to delete edge %s: %w", id.String(), err)
		}
	}
	return nil
}

// DeleteByNodeIDs removes every edge touching any of the given nodes
func (r *EdgeRepository) DeleteByNodeIDs(ctx context.Context, flowID valueobjects.FlowID, nodeIDs []valueobjects.NodeID) error {
	edges, err := r.GetByNodeIDs(ctx, flowID, nodeIDs)
	if err != nil {
		return err
	}

	for _, edge := range edges {
		key := map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: flowPK(flowID.String())},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(edge.ID().String())},
		}
		if r.uow.enlist(types.TransactWriteItem{
			Delete: &types.Delete{TableName: aws.String(r.tableName), Key: key},
		}) {
			continue
		}
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       key,
		})
		if err != nil {
			return fmt.Errorf("failed to delete edge %s: %w", edge.ID().String(), err)
		}
	}
	return nil
}

func (r *EdgeRepository) deleteItem(ctx context.Context, item map[string]types.AttributeValue) error {
	key := map[string]types.AttributeValue{
		"PK": item["PK"],
		"SK": item["SK"],
	}
	if r.uow.enlist(types.TransactWriteItem{
		Delete: &types.Delete{TableName: aws.String(r.tableName), Key: key},
	}) {
		return nil
	}
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	return err
}

// lookupByID finds an edge's raw item through GSI1
func (r *EdgeRepository) lookupByID(ctx context.Context, id valueobjects.EdgeID) (map[string]types.AttributeValue, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(edgeGSIPK(id.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		r.logger.Warn("Edge fetch failed",
			zap.String("edgeID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("edge")
	}
	return out.Items[0], nil
}

func reconstructEdgeItem(av map[string]types.AttributeValue) (*entities.Edge, error) {
	var item edgeItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge item: %w", err)
	}

	id, err := valueobjects.NewEdgeIDFromString(item.EdgeID)
	if err != nil {
		return nil, err
	}
	flowID, err := valueobjects.NewFlowIDFromString(item.FlowID)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, err
	}

	// Endpoint references may be empty on records that outlived their
	// endpoints. They reconstruct as dangling edges.
	var sourceID, targetID valueobjects.NodeID
	if item.SourceID != "" {
		if sourceID, err = valueobjects.NewNodeIDFromString(item.SourceID); err != nil {
			return nil, err
		}
	}
	if item.TargetID != "" {
		if targetID, err = valueobjects.NewNodeIDFromString(item.TargetID); err != nil {
			return nil, err
		}
	}

	return entities.ReconstructEdge(
		id, flowID, sourceID, targetID,
		item.SourceHandle, item.TargetHandle,
		schema.DataType(item.DataType), createdAt,
	)
}
