package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SwipeService is the swipe store. Every swipe appends an audit event; the
// effective decision for an ordered (swiper, target) pair is a single item
// that a later swipe overwrites. Effective reads are strongly consistent so
// the reciprocity check in the match engine never sees stale data.
type SwipeService struct {
	Dynamo DynamoAPI
	Logger zerolog.Logger
}

// NewSwipeService builds the swipe store.
func NewSwipeService(dynamo DynamoAPI, logger zerolog.Logger) *SwipeService {
	return &SwipeService{Dynamo: dynamo, Logger: logger}
}

func swipeKey(swiperID, targetID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"swiperId": &types.AttributeValueMemberS{Value: swiperID},
		"targetId": &types.AttributeValueMemberS{Value: targetID},
	}
}

// RecordDecision appends an audit event and overwrites the effective
// decision for the ordered pair.
func (s *SwipeService) RecordDecision(ctx context.Context, swiperID, targetID, decision string) error {
	if err := s.RecordEvent(ctx, swiperID, targetID, decision); err != nil {
		return err
	}
	if err := s.WriteEffective(ctx, swiperID, targetID, decision); err != nil {
		return err
	}

	s.Logger.Debug().
		Str("swiper_id", swiperID).
		Str("target_id", targetID).
		Str("decision", decision).
		Msg("swipe recorded")
	return nil
}

// WriteEffective overwrites only the effective decision, without an audit
// event. The match engine uses it to put a like back when a pass lands in
// the window between match creation and its own existence check.
func (s *SwipeService) WriteEffective(ctx context.Context, swiperID, targetID, decision string) error {
	swipe := models.Swipe{
		SwiperID:  swiperID,
		TargetID:  targetID,
		Decision:  decision,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.SwipesTable, swipe); err != nil {
		return fmt.Errorf("failed to store effective decision: %w", err)
	}
	return nil
}

// RecordEvent appends only the audit entry. Used on its own once a match
// exists, when the effective decision is frozen.
func (s *SwipeService) RecordEvent(ctx context.Context, swiperID, targetID, decision string) error {
	event := models.SwipeEvent{
		EventID:   uuid.NewString(),
		SwiperID:  swiperID,
		TargetID:  targetID,
		Decision:  decision,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.SwipeEventsTable, event); err != nil {
		return fmt.Errorf("failed to append swipe event: %w", err)
	}
	return nil
}

// EffectiveDecision returns the most recent decision for the ordered pair,
// or "" when the swiper has never acted on the target. The read is strongly
// consistent relative to prior appends.
func (s *SwipeService) EffectiveDecision(ctx context.Context, swiperID, targetID string) (string, error) {
	item, err := s.Dynamo.GetItem(ctx, models.SwipesTable, swipeKey(swiperID, targetID), true)
	if errors.Is(err, models.ErrItemNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read effective decision: %w", err)
	}

	var swipe models.Swipe
	if err := attributevalue.UnmarshalMap(item, &swipe); err != nil {
		return "", fmt.Errorf("failed to parse swipe: %w", err)
	}
	return swipe.Decision, nil
}

// Swipes returns every effective decision made by the swiper, for feed
// exclusion.
func (s *SwipeService) Swipes(ctx context.Context, swiperID string) ([]models.Swipe, error) {
	items, err := s.Dynamo.QueryByPartition(ctx, models.SwipesTable, "swiperId", swiperID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query swipes for %s: %w", swiperID, err)
	}

	var swipes []models.Swipe
	if err := attributevalue.UnmarshalListOfMaps(items, &swipes); err != nil {
		return nil, fmt.Errorf("failed to parse swipes: %w", err)
	}
	return swipes, nil
}
