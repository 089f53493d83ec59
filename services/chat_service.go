package services

import (
	"context"

	"squadfinder_server/metrics"
	"squadfinder_server/models"

	"github.com/rs/zerolog"
)

// ChatService is the polling facade over the message store. It is stateless
// between polls: the only state is the cursor the client presents, so a
// client can re-poll on any interval from any device.
type ChatService struct {
	Messages *MessageService
	Metrics  metrics.Recorder
	Logger   zerolog.Logger
}

// NewChatService builds the chat facade.
func NewChatService(messages *MessageService, rec metrics.Recorder, logger zerolog.Logger) *ChatService {
	return &ChatService{Messages: messages, Metrics: rec, Logger: logger}
}

func validatePair(senderID, receiverID string) error {
	if senderID == "" || receiverID == "" {
		return models.NewValidationError("sender_id and receiver_id are required")
	}
	if senderID == receiverID {
		return models.NewValidationError("sender and receiver must differ")
	}
	return nil
}

// Send appends a message to the conversation of the (sender, receiver) pair.
// The conversation key is inferred from the canonical pair.
func (cs *ChatService) Send(ctx context.Context, senderID, receiverID, body string) (models.Message, error) {
	if err := validatePair(senderID, receiverID); err != nil {
		return models.Message{}, err
	}
	return cs.Messages.Append(ctx, models.PairKey(senderID, receiverID), senderID, body)
}

// Poll returns all messages after the cursor plus the cursor to present next
// time. With nothing new, the cursor comes back unchanged and repeated polls
// return identical results.
func (cs *ChatService) Poll(ctx context.Context, senderID, receiverID string, cursor int64) (models.PollResult, error) {
	if err := validatePair(senderID, receiverID); err != nil {
		return models.PollResult{}, err
	}

	messages, err := cs.Messages.ReadSince(ctx, models.PairKey(senderID, receiverID), senderID, cursor)
	if err != nil {
		return models.PollResult{}, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	next := cursor
	if len(messages) > 0 {
		next = messages[len(messages)-1].Seq
	}

	cs.Metrics.RecordPoll()
	return models.PollResult{Messages: messages, Cursor: next}, nil
}
