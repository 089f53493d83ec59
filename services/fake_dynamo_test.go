package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoAPI. Every operation holds one mutex, so
// the conditional put and the counter are atomic exactly like their DynamoDB
// counterparts, and all reads are trivially linearizable. That makes the
// concurrency tests exercise the real interleavings the services must
// survive.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// failPutTable makes the next put on that table fail once.
	failPutTable string
	failPutErr   error

	// putHook, when set, runs at the start of every put, outside the store
	// lock. Tests use it to hold a write in flight or to interleave another
	// operation at that point.
	putHook func(table string)
}

var fakeKeySchema = map[string][]string{
	models.UsersTable:       {"userId"},
	models.GamesTable:       {"gameId"},
	models.SwipesTable:      {"swiperId", "targetId"},
	models.SwipeEventsTable: {"eventId"},
	models.MatchesTable:     {"pairKey"},
	models.MessagesTable:    {"conversationKey", "seq"},
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return fmt.Sprintf("%v", av)
	}
}

func (f *fakeDynamo) itemKey(table string, item map[string]types.AttributeValue) string {
	parts := make([]string, 0, 2)
	for _, attr := range fakeKeySchema[table] {
		parts = append(parts, attrString(item[attr]))
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue, consistent bool) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.table(table)[f.itemKey(table, key)]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, table string, item interface{}) error {
	if f.putHook != nil {
		f.putHook(table)
	}

	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPutTable == table && f.failPutErr != nil {
		err := f.failPutErr
		f.failPutTable, f.failPutErr = "", nil
		return err
	}

	f.table(table)[f.itemKey(table, marshaled)] = marshaled
	return nil
}

func (f *fakeDynamo) PutItemIfAbsent(ctx context.Context, table string, item interface{}, keyAttr string) error {
	if f.putHook != nil {
		f.putHook(table)
	}

	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPutTable == table && f.failPutErr != nil {
		err := f.failPutErr
		f.failPutTable, f.failPutErr = "", nil
		return err
	}

	t := f.table(table)
	key := f.itemKey(table, marshaled)
	if _, exists := t[key]; exists {
		return models.ErrConditionalCheckFailed
	}
	t[key] = marshaled
	return nil
}

func (f *fakeDynamo) QueryByPartition(ctx context.Context, table, keyAttr, keyValue string, consistent bool) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]types.AttributeValue
	for _, item := range f.table(table) {
		if attrString(item[keyAttr]) == keyValue {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeDynamo) QueryByIndex(ctx context.Context, table, index, keyAttr, keyValue string) ([]map[string]types.AttributeValue, error) {
	return f.QueryByPartition(ctx, table, keyAttr, keyValue, false)
}

func (f *fakeDynamo) QuerySince(ctx context.Context, table, pkAttr, pkValue, skAttr string, after int64, consistent bool) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]types.AttributeValue
	for _, item := range f.table(table) {
		if attrString(item[pkAttr]) != pkValue {
			continue
		}
		sk, err := strconv.ParseInt(attrString(item[skAttr]), 10, 64)
		if err != nil {
			return nil, err
		}
		if sk > after {
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseInt(attrString(out[i][skAttr]), 10, 64)
		b, _ := strconv.ParseInt(attrString(out[j][skAttr]), 10, 64)
		return a < b
	})
	return out, nil
}

func (f *fakeDynamo) IncrementCounter(ctx context.Context, table string, key map[string]types.AttributeValue, attr string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.table(table)[f.itemKey(table, key)]
	if !ok {
		return 0, models.ErrConditionalCheckFailed
	}
	current, ok := item[attr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, models.ErrConditionalCheckFailed
	}

	value, err := strconv.ParseInt(current.Value, 10, 64)
	if err != nil {
		return 0, err
	}
	value++
	item[attr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)}
	return value, nil
}

func (f *fakeDynamo) ScanAll(ctx context.Context, table string) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]types.AttributeValue
	for _, item := range f.table(table) {
		out = append(out, item)
	}
	return out, nil
}

// count returns the number of items in a table.
func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.table(table))
}
