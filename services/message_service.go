package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"squadfinder_server/metrics"
	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxMessageLength = 2000

// MessageService is the message store. Sequence numbers are allocated by
// atomically incrementing the counter on the Match item, then the message is
// written with a conditional put. Appends within one conversation are
// serialized: a higher sequence can only become visible once every lower one
// is either committed or has permanently failed. Without that, a slow write
// could commit sequence N after a reader already advanced its cursor past N,
// and the message would never be delivered. A failed write still leaves a
// gap, but the consumed number is never exposed to readers, which is exactly
// the gap tolerance the ordering contract permits.
type MessageService struct {
	Dynamo  DynamoAPI
	Matches *MatchService
	Metrics metrics.Recorder
	Logger  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMessageService builds the message store.
func NewMessageService(dynamo DynamoAPI, matches *MatchService, rec metrics.Recorder, logger zerolog.Logger) *MessageService {
	return &MessageService{
		Dynamo:  dynamo,
		Matches: matches,
		Metrics: rec,
		Logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// conversationLock returns the lock serializing appends to one conversation.
func (ms *MessageService) conversationLock(conversationKey string) *sync.Mutex {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	l, ok := ms.locks[conversationKey]
	if !ok {
		l = &sync.Mutex{}
		ms.locks[conversationKey] = l
	}
	return l
}

// authorize verifies the conversation exists (a match for the pair) and that
// the caller is one of its two sides.
func (ms *MessageService) authorize(ctx context.Context, conversationKey, callerID string) (models.Match, error) {
	match, err := ms.Matches.GetMatch(ctx, conversationKey)
	if errors.Is(err, models.ErrItemNotFound) {
		return models.Match{}, models.NewAuthorizationError("no conversation for pair %s", conversationKey)
	}
	if err != nil {
		return models.Match{}, err
	}
	if !match.Contains(callerID) {
		return models.Match{}, models.NewAuthorizationError("user %s is not part of conversation %s", callerID, conversationKey)
	}
	return match, nil
}

// Append validates the conversation, allocates the next sequence number and
// stores the message. The returned message carries the assigned sequence.
func (ms *MessageService) Append(ctx context.Context, conversationKey, senderID, body string) (models.Message, error) {
	if conversationKey == "" || senderID == "" {
		return models.Message{}, models.NewValidationError("conversation key and sender_id are required")
	}
	if body == "" {
		return models.Message{}, models.NewValidationError("message body must not be empty")
	}
	if len(body) > maxMessageLength {
		return models.Message{}, models.NewValidationError("message body exceeds %d bytes", maxMessageLength)
	}

	if _, err := ms.authorize(ctx, conversationKey, senderID); err != nil {
		return models.Message{}, err
	}

	// Allocation and commit happen under the conversation lock so no later
	// append can expose a higher sequence while this one is in flight.
	lock := ms.conversationLock(conversationKey)
	lock.Lock()
	defer lock.Unlock()

	seq, err := ms.Dynamo.IncrementCounter(ctx, models.MatchesTable, matchKey(conversationKey), "messageSeq")
	if err != nil {
		if errors.Is(err, models.ErrConditionalCheckFailed) {
			// Backstop: the conditional increment is the authoritative
			// existence check even if the match read above raced something.
			return models.Message{}, models.NewAuthorizationError("no conversation for pair %s", conversationKey)
		}
		return models.Message{}, fmt.Errorf("failed to allocate sequence: %w", err)
	}

	message := models.Message{
		ConversationKey: conversationKey,
		Seq:             seq,
		MessageID:       uuid.NewString(),
		SenderID:        senderID,
		Body:            body,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	// Conditional on key absence: the allocated sequence can never be
	// silently overwritten, and a failed put never half-commits.
	if err := ms.Dynamo.PutItemIfAbsent(ctx, models.MessagesTable, message, "conversationKey"); err != nil {
		return models.Message{}, fmt.Errorf("failed to store message %d in %s: %w", seq, conversationKey, err)
	}

	ms.Metrics.RecordMessageSent()
	ms.Logger.Debug().
		Str("conversation_key", conversationKey).
		Int64("seq", seq).
		Msg("message appended")

	return message, nil
}

// ReadSince returns every committed message with sequence strictly greater
// than after, in ascending sequence order. Repeated calls with the same
// cursor return the same set plus anything newly committed.
func (ms *MessageService) ReadSince(ctx context.Context, conversationKey, callerID string, after int64) ([]models.Message, error) {
	if conversationKey == "" || callerID == "" {
		return nil, models.NewValidationError("conversation key and caller id are required")
	}
	if after < 0 {
		return nil, models.NewValidationError("cursor must not be negative")
	}

	if _, err := ms.authorize(ctx, conversationKey, callerID); err != nil {
		return nil, err
	}

	items, err := ms.Dynamo.QuerySince(ctx, models.MessagesTable, "conversationKey", conversationKey, "seq", after, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages since %d: %w", after, err)
	}

	messages := make([]models.Message, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}
