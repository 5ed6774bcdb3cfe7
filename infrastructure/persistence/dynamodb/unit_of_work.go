package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDB caps a single TransactWriteItems call at 100 items
const maxTransactItems = 100

// UnitOfWork implements transactional writes over DynamoDB. While a
// transaction is active the repositories enlist their writes here instead
// of executing them, and Commit flushes everything in TransactWriteItems
// batches. A flow-plus-cascade deletion therefore lands atomically per
// batch rather than item by item.
type UnitOfWork struct {
	client *dynamodb.Client
	logger *zap.Logger

	mu     sync.Mutex
	active bool
	items  []types.TransactWriteItem
}

// NewUnitOfWork creates a unit of work bound to a DynamoDB client
func NewUnitOfWork(client *dynamodb.Client, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{
		client: client,
		logger: logger,
	}
}

// Begin starts buffering writes
func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return errors.New("transaction already active")
	}
	u.active = true
	u.items = u.items[:0]
	return nil
}

// Commit flushes all buffered writes
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return errors.New("no active transaction")
	}

	items := u.items
	u.items = nil
	u.active = false

	for start := 0; start < len(items); start += maxTransactItems {
		end := start + maxTransactItems
		if end > len(items) {
			end = len(items)
		}
		_, err := u.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		})
		if err != nil {
			u.logger.Error("Transaction batch failed",
				zap.Int("batchStart", start),
				zap.Int("batchSize", end-start),
				zap.Error(err),
			)
			return fmt.Errorf("failed to commit transaction batch: %w", err)
		}
	}

	if len(items) > 0 {
		u.logger.Debug("Transaction committed", zap.Int("items", len(items)))
	}
	return nil
}

// Rollback discards buffered writes. A no-op after a successful commit.
func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return nil
	}
	u.items = nil
	u.active = false
	return nil
}

// enlist buffers a write if a transaction is active. Returns false when
// no transaction is running, in which case the caller writes directly.
func (u *UnitOfWork) enlist(item types.TransactWriteItem) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return false
	}
	u.items = append(u.items, item)
	return true
}
