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

// NodeRepository implements ports.NodeRepository using DynamoDB
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	uow       *UnitOfWork
	logger    *zap.Logger
}

// NewNodeRepository creates a new DynamoDB node repository
func NewNodeRepository(client *dynamodb.Client, tableName, indexName string, uow *UnitOfWork, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		uow:       uow,
		logger:    logger,
	}
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// nodeItem represents the DynamoDB item structure for a node. The port
// lists are never stored: they derive from NodeType at read time.
type nodeItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	GSI1PK     string  `dynamodbav:"GSI1PK"`
	GSI1SK     string  `dynamodbav:"GSI1SK"`
	EntityType string  `dynamodbav:"EntityType"`
	NodeID     string  `dynamodbav:"NodeID"`
	FlowID     string  `dynamodbav:"FlowID"`
	NodeType   string  `dynamodbav:"NodeType"`
	Label      string  `dynamodbav:"Label"`
	X          float64 `dynamodbav:"X"`
	Y          float64 `dynamodbav:"Y"`
	Payload    []byte  `dynamodbav:"Payload,omitempty"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
	Version    int     `dynamodbav:"Version"`
}

func nodeSK(id string) string    { return fmt.Sprintf("NODE#%s", id) }
func nodeGSIPK(id string) string { return fmt.Sprintf("NODE#%s", id) }

// Save persists a node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	pos := node.Position()
	item := nodeItem{
		PK:         flowPK(node.FlowID().String()),
		SK:         nodeSK(node.ID().String()),
		GSI1PK:     nodeGSIPK(node.ID().String()),
		GSI1SK:     skMetadata,
		EntityType: "NODE",
		NodeID:     node.ID().String(),
		FlowID:     node.FlowID().String(),
		NodeType:   string(node.Type()),
		Label:      node.Label(),
		X:          pos.X(),
		Y:          pos.Y(),
		Payload:    node.Payload(),
		CreatedAt:  utils.FormatRFC3339(node.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(node.UpdatedAt()),
		Version:    node.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
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
		r.logger.Error("Failed to save node",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save node: %w", err)
	}
	return nil
}

// GetByID retrieves a node by its ID via GSI1
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	item, err := r.lookupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	node, err := reconstructNodeItem(item)
	if err != nil {
		r.logger.Warn("Node record failed to reconstruct",
			zap.String("nodeID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// GetByIDs retrieves the nodes matching the given identifier set, skipping
// unknown identifiers
func (r *NodeRepository) GetByIDs(ctx context.Context, ids []valueobjects.NodeID) ([]*entities.Node, error) {
	nodes := make([]*entities.Node, 0, len(ids))
	for _, id := range ids {
		node, err := r.GetByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetByFlowID retrieves all nodes owned by a flow
func (r *NodeRepository) GetByFlowID(ctx context.Context, flowID valueobjects.FlowID) ([]*entities.Node, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(flowPK(flowID.String()))).
		And(expression.Key("SK").BeginsWith("NODE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	nodes := make([]*entities.Node, 0)
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
			return nil, fmt.Errorf("failed to query flow nodes: %w", err)
		}

		for _, item := range out.Items {
			node, err := reconstructNodeItem(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable node record", zap.Error(err))
				continue
			}
			nodes = append(nodes, node)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return nodes, nil
}

// Delete removes a node
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	return r.DeleteBatch(ctx, []valueobjects.NodeID{id})
}

// DeleteBatch removes multiple nodes. Identifiers that no longer resolve
// are skipped.
func (r *NodeRepository) DeleteBatch(ctx context.Context, ids []valueobjects.NodeID) error {
	for _, id := range ids {
		item, err := r.lookupByID(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return err
		}

		key := map[string]types.AttributeValue{
			"PK": item["PK"],
			"SK": item["SK"],
		}
		if r.uow.enlist(types.TransactWriteItem{
			Delete: &types.Delete{TableName: aws.String(r.tableName), Key: key},
		}) {
			continue
		}

		_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       key,
		})
		if err != nil {
			return fmt.Errorf("failed to delete node %s: %w", id.String(), err)
		}
	}
	return nil
}

// lookupByID finds a node's raw item through GSI1
func (r *NodeRepository) lookupByID(ctx context.Context, id valueobjects.NodeID) (map[string]types.AttributeValue, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(nodeGSIPK(id.String())))
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
		r.logger.Warn("Node fetch failed",
			zap.String("nodeID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("node")
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return out.Items[0], nil
}

func reconstructNodeItem(av map[string]types.AttributeValue) (*entities.Node, error) {
	var item nodeItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node item: %w", err)
	}

	id, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, err
	}
	flowID, err := valueobjects.NewFlowIDFromString(item.FlowID)
	if err != nil {
		return nil, err
	}
	position, err := valueobjects.NewPosition(item.X, item.Y)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNode(
		id, flowID, schema.NodeType(item.NodeType),
		position, item.Label, item.Payload,
		createdAt, updatedAt,
	)
}
