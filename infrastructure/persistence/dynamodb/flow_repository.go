// Package dynamodb persists flows, nodes and edges in a single DynamoDB
// table. Items are keyed PK=FLOW#<flowID> with SK discriminating the item
// kind (METADATA, NODE#<id>, EDGE#<id>), so a whole flow lives in one
// partition. GSI1 inverts the layout for direct node and edge ID lookups.
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
	"composer-backend/domain/core/aggregates"
	"composer-backend/domain/core/valueobjects"
	pkgerrors "composer-backend/pkg/errors"
	"composer-backend/pkg/utils"
)

// FlowRepository implements ports.FlowRepository using DynamoDB
type FlowRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	uow       *UnitOfWork
	logger    *zap.Logger
}

// NewFlowRepository creates a new DynamoDB flow repository
func NewFlowRepository(client *dynamodb.Client, tableName, indexName string, uow *UnitOfWork, logger *zap.Logger) *FlowRepository {
	return &FlowRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		uow:       uow,
		logger:    logger,
	}
}

var _ ports.FlowRepository = (*FlowRepository)(nil)

// flowItem represents the DynamoDB item structure for flow metadata
type flowItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	FlowID      string `dynamodbav:"FlowID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
	Version     int    `dynamodbav:"Version"`
}

func flowPK(id string) string { return fmt.Sprintf("FLOW#%s", id) }

const (
	skMetadata  = "METADATA"
	gsiAllFlows = "FLOW"
)

// Save persists a flow's metadata
func (r *FlowRepository) Save(ctx context.Context, flow *aggregates.Flow) error {
	item := flowItem{
		PK:          flowPK(flow.ID().String()),
		SK:          skMetadata,
		GSI1PK:      gsiAllFlows,
		GSI1SK:      flow.ID().String(),
		EntityType:  "FLOW",
		FlowID:      flow.ID().String(),
		Name:        flow.Name(),
		Description: flow.Description(),
		CreatedAt:   utils.FormatRFC3339(flow.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(flow.UpdatedAt()),
		Version:     flow.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
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
		r.logger.Error("Failed to save flow",
			zap.String("flowID", flow.ID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

// GetByID retrieves a flow's metadata. Anything that prevents producing a
// valid aggregate, including storage faults, is reported as not found; the
// underlying cause is logged here.
func (r *FlowRepository) GetByID(ctx context.Context, id valueobjects.FlowID) (*aggregates.Flow, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: flowPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		r.logger.Warn("Flow fetch failed",
			zap.String("flowID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("flow")
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("flow")
	}

	flow, err := unmarshalFlow(out.Item)
	if err != nil {
		r.logger.Warn("Flow record failed to reconstruct",
			zap.String("flowID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewNotFoundError("flow")
	}
	return flow, nil
}

// List retrieves metadata for all flows via GSI1
func (r *FlowRepository) List(ctx context.Context) ([]*aggregates.Flow, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(gsiAllFlows))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	flows := make([]*aggregates.Flow, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}

		for _, item := range out.Items {
			flow, err := unmarshalFlow(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable flow record", zap.Error(err))
				continue
			}
			flows = append(flows, flow)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return flows, nil
}

// Delete removes a flow's metadata record
func (r *FlowRepository) Delete(ctx context.Context, id valueobjects.FlowID) error {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: flowPK(id.String())},
		"SK": &types.AttributeValueMemberS{Value: skMetadata},
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
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

func unmarshalFlow(av map[string]types.AttributeValue) (*aggregates.Flow, error) {
	var item flowItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow item: %w", err)
	}

	id, err := valueobjects.NewFlowIDFromString(item.FlowID)
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
	return aggregates.ReconstructFlow(id, item.Name, item.Description, createdAt, updatedAt)
}
