package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// DynamoAPI is the storage surface the services depend on. The production
// implementation is DynamoService; tests use an in-memory fake.
type DynamoAPI interface {
	// GetItem returns the item for key, or models.ErrItemNotFound.
	GetItem(ctx context.Context, table string, key map[string]types.AttributeValue, consistent bool) (map[string]types.AttributeValue, error)
	// PutItem writes the item, overwriting any existing one.
	PutItem(ctx context.Context, table string, item interface{}) error
	// PutItemIfAbsent writes the item only if no item with the same primary
	// key exists, otherwise models.ErrConditionalCheckFailed. This is the
	// atomic check-and-create the match engine relies on.
	PutItemIfAbsent(ctx context.Context, table string, item interface{}, keyAttr string) error
	// QueryByPartition returns every item under one partition key.
	QueryByPartition(ctx context.Context, table, keyAttr, keyValue string, consistent bool) ([]map[string]types.AttributeValue, error)
	// QueryByIndex queries a GSI by its partition key.
	QueryByIndex(ctx context.Context, table, index, keyAttr, keyValue string) ([]map[string]types.AttributeValue, error)
	// QuerySince returns items under pkValue with numeric sort key > after,
	// in ascending sort-key order.
	QuerySince(ctx context.Context, table, pkAttr, pkValue, skAttr string, after int64, consistent bool) ([]map[string]types.AttributeValue, error)
	// IncrementCounter atomically adds one to a numeric attribute of an
	// existing item and returns the new value. Fails with
	// models.ErrConditionalCheckFailed if the item or attribute is missing.
	IncrementCounter(ctx context.Context, table string, key map[string]types.AttributeValue, attr string) (int64, error)
	// ScanAll returns every item in the table, following pagination.
	ScanAll(ctx context.Context, table string) ([]map[string]types.AttributeValue, error)
}

const (
	maxAttempts  = 3
	retryBackoff = 100 * time.Millisecond
)

// DynamoService wraps the DynamoDB client with bounded retries for transient
// failures and a circuit breaker. Conditional-check failures and missing
// items are outcomes, not faults: they are never retried and never trip the
// breaker.
type DynamoService struct {
	Client  *dynamodb.Client
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// InitializeAWSConfig loads the shared AWS configuration for the region.
func InitializeAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// NewDynamoService builds the production DynamoAPI implementation.
func NewDynamoService(client *dynamodb.Client, logger zerolog.Logger) *DynamoService {
	settings := gobreaker.Settings{
		Name:    "dynamodb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, models.ErrConditionalCheckFailed) ||
				errors.Is(err, models.ErrItemNotFound)
		},
	}

	return &DynamoService{
		Client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// execute runs fn through the breaker, retrying transient failures a bounded
// number of times.
func (ds *DynamoService) execute(ctx context.Context, op string, fn func() error) error {
	_, err := ds.breaker.Execute(func() (interface{}, error) {
		var err error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err = fn()
			if err == nil || !isTransient(err) {
				return nil, err
			}
			ds.logger.Warn().
				Err(err).
				Str("op", op).
				Int("attempt", attempt).
				Msg("transient storage failure")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		return nil, fmt.Errorf("%w: %s failed after %d attempts: %s", models.ErrStorageUnavailable, op, maxAttempts, err)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", models.ErrStorageUnavailable)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, models.ErrItemNotFound) || errors.Is(err, models.ErrConditionalCheckFailed) {
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return false
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func conditionalFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// GetItem retrieves a single item, with a strongly consistent read when
// consistent is true.
func (ds *DynamoService) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue, consistent bool) (map[string]types.AttributeValue, error) {
	var out map[string]types.AttributeValue
	err := ds.execute(ctx, "GetItem", func() error {
		resp, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(table),
			Key:            key,
			ConsistentRead: aws.Bool(consistent),
		})
		if err != nil {
			return fmt.Errorf("failed to get item from table '%s': %w", table, err)
		}
		if resp.Item == nil {
			return models.ErrItemNotFound
		}
		out = resp.Item
		return nil
	})
	return out, err
}

// PutItem marshals and writes an item, overwriting any existing one.
func (ds *DynamoService) PutItem(ctx context.Context, table string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", table, err)
	}

	return ds.execute(ctx, "PutItem", func() error {
		_, err := ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(table),
			Item:      marshaled,
		})
		if err != nil {
			return fmt.Errorf("failed to put item in table '%s': %w", table, err)
		}
		return nil
	})
}

// PutItemIfAbsent writes an item guarded by attribute_not_exists on the key
// attribute, so exactly one of any set of concurrent writers wins.
func (ds *DynamoService) PutItemIfAbsent(ctx context.Context, table string, item interface{}, keyAttr string) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", table, err)
	}

	condition := fmt.Sprintf("attribute_not_exists(%s)", keyAttr)

	return ds.execute(ctx, "PutItemIfAbsent", func() error {
		_, err := ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(table),
			Item:                marshaled,
			ConditionExpression: aws.String(condition),
		})
		if err != nil {
			if conditionalFailed(err) {
				return models.ErrConditionalCheckFailed
			}
			return fmt.Errorf("failed to conditionally put item in table '%s': %w", table, err)
		}
		return nil
	})
}

// QueryByPartition returns all items under a partition key, following
// pagination so no item is skipped.
func (ds *DynamoService) QueryByPartition(ctx context.Context, table, keyAttr, keyValue string, consistent bool) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	err := ds.execute(ctx, "QueryByPartition", func() error {
		items = items[:0]
		input := &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": keyAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: keyValue},
			},
			ConsistentRead: aws.Bool(consistent),
		}
		for {
			resp, err := ds.Client.Query(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to query table '%s': %w", table, err)
			}
			items = append(items, resp.Items...)
			if resp.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = resp.LastEvaluatedKey
		}
	})
	return items, err
}

// QueryByIndex queries a GSI by its partition key. GSI reads are eventually
// consistent by DynamoDB's design; callers must not use them for
// invariant-bearing checks.
func (ds *DynamoService) QueryByIndex(ctx context.Context, table, index, keyAttr, keyValue string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	err := ds.execute(ctx, "QueryByIndex", func() error {
		items = items[:0]
		input := &dynamodb.QueryInput{
			TableName:              aws.String(table),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": keyAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: keyValue},
			},
		}
		for {
			resp, err := ds.Client.Query(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to query GSI '%s' on table '%s': %w", index, table, err)
			}
			items = append(items, resp.Items...)
			if resp.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = resp.LastEvaluatedKey
		}
	})
	return items, err
}

// QuerySince returns items with sort key strictly greater than after, in
// ascending order.
func (ds *DynamoService) QuerySince(ctx context.Context, table, pkAttr, pkValue, skAttr string, after int64, consistent bool) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	err := ds.execute(ctx, "QuerySince", func() error {
		items = items[:0]
		input := &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("#pk = :pk AND #sk > :after"),
			ExpressionAttributeNames: map[string]string{
				"#pk": pkAttr,
				"#sk": skAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":    &types.AttributeValueMemberS{Value: pkValue},
				":after": &types.AttributeValueMemberN{Value: strconv.FormatInt(after, 10)},
			},
			ScanIndexForward: aws.Bool(true),
			ConsistentRead:   aws.Bool(consistent),
		}
		for {
			resp, err := ds.Client.Query(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to query table '%s' since %d: %w", table, after, err)
			}
			items = append(items, resp.Items...)
			if resp.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = resp.LastEvaluatedKey
		}
	})
	return items, err
}

// IncrementCounter atomically bumps a numeric attribute of an existing item
// and returns the new value.
func (ds *DynamoService) IncrementCounter(ctx context.Context, table string, key map[string]types.AttributeValue, attr string) (int64, error) {
	update := fmt.Sprintf("SET %s = %s + :one", attr, attr)
	condition := fmt.Sprintf("attribute_exists(%s)", attr)

	var value int64
	err := ds.execute(ctx, "IncrementCounter", func() error {
		resp, err := ds.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(table),
			Key:                 key,
			UpdateExpression:    aws.String(update),
			ConditionExpression: aws.String(condition),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one": &types.AttributeValueMemberN{Value: "1"},
			},
			ReturnValues: types.ReturnValueUpdatedNew,
		})
		if err != nil {
			if conditionalFailed(err) {
				return models.ErrConditionalCheckFailed
			}
			return fmt.Errorf("failed to increment %s in table '%s': %w", attr, table, err)
		}

		n, ok := resp.Attributes[attr].(*types.AttributeValueMemberN)
		if !ok {
			return fmt.Errorf("counter %s in table '%s' is not numeric", attr, table)
		}
		parsed, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse counter %s: %w", attr, err)
		}
		value = parsed
		return nil
	})
	return value, err
}

// ScanAll returns every item in a table, following pagination.
func (ds *DynamoService) ScanAll(ctx context.Context, table string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	err := ds.execute(ctx, "ScanAll", func() error {
		items = items[:0]
		input := &dynamodb.ScanInput{
			TableName: aws.String(table),
		}
		for {
			resp, err := ds.Client.Scan(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to scan table '%s': %w", table, err)
			}
			items = append(items, resp.Items...)
			if resp.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = resp.LastEvaluatedKey
		}
	})
	return items, err
}
