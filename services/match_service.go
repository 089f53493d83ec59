package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"squadfinder_server/metrics"
	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// MatchService is the match engine. RecordSwipe appends the swipe, checks
// reciprocity against the swipe store and, on a mutual like, creates the
// match with a single conditional put on the canonical pair key. That
// conditional put is the only serialization point: when both users like each
// other at nearly the same instant, exactly one of the two calls wins the
// creation and reports matched=true.
type MatchService struct {
	Dynamo  DynamoAPI
	Swipes  *SwipeService
	Push    PushNotifier
	Avatars AvatarSigner
	Metrics metrics.Recorder
	Logger  zerolog.Logger
}

// NewMatchService builds the match engine. Push and Avatars may be nil.
func NewMatchService(dynamo DynamoAPI, swipes *SwipeService, push PushNotifier, avatars AvatarSigner, rec metrics.Recorder, logger zerolog.Logger) *MatchService {
	return &MatchService{
		Dynamo:  dynamo,
		Swipes:  swipes,
		Push:    push,
		Avatars: avatars,
		Metrics: rec,
		Logger:  logger,
	}
}

func matchKey(pairKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	}
}

// RecordSwipe appends the swipe decision and evaluates reciprocity.
// Exactly one of two concurrent mutual likes gets Matched=true; the loser
// sees the match already present and reports Matched=false, which is not an
// error — both sides discover the match through the match list.
func (ms *MatchService) RecordSwipe(ctx context.Context, swiperID, targetID, decision string) (models.SwipeResult, error) {
	if swiperID == "" || targetID == "" {
		return models.SwipeResult{}, models.NewValidationError("swiper_id and target_id are required")
	}
	if swiperID == targetID {
		return models.SwipeResult{}, models.NewValidationError("cannot swipe on yourself")
	}
	if !models.ValidDecision(decision) {
		return models.SwipeResult{}, models.NewValidationError("unknown action %q", decision)
	}

	pairKey := models.PairKey(swiperID, targetID)

	// Once a match exists the effective decision is frozen: keep the audit
	// trail but never supersede, and never attempt a second creation.
	_, err := ms.GetMatch(ctx, pairKey)
	switch {
	case err == nil:
		if err := ms.Swipes.RecordEvent(ctx, swiperID, targetID, decision); err != nil {
			return models.SwipeResult{}, err
		}
		ms.Metrics.RecordSwipe(decision)
		return models.SwipeResult{Matched: false, PairKey: pairKey}, nil
	case errors.Is(err, models.ErrItemNotFound):
		// No match yet, continue.
	default:
		return models.SwipeResult{}, err
	}

	if err := ms.Swipes.RecordDecision(ctx, swiperID, targetID, decision); err != nil {
		return models.SwipeResult{}, err
	}
	ms.Metrics.RecordSwipe(decision)

	if decision != models.DecisionLike {
		// The pre-check and the overwrite are not atomic: the other side's
		// like can complete a match in between, built on this user's earlier
		// like. If that happened, restore the like so the effective decision
		// stays frozen at its value when the match was created.
		_, err := ms.GetMatch(ctx, pairKey)
		switch {
		case err == nil:
			if err := ms.Swipes.WriteEffective(ctx, swiperID, targetID, models.DecisionLike); err != nil {
				return models.SwipeResult{}, err
			}
		case errors.Is(err, models.ErrItemNotFound):
			// Normal case, nothing raced the pass.
		default:
			return models.SwipeResult{}, err
		}
		return models.SwipeResult{Matched: false, PairKey: pairKey}, nil
	}

	reverse, err := ms.Swipes.EffectiveDecision(ctx, targetID, swiperID)
	if err != nil {
		return models.SwipeResult{}, err
	}
	if reverse != models.DecisionLike {
		return models.SwipeResult{Matched: false, PairKey: pairKey}, nil
	}

	match := models.NewMatch(swiperID, targetID)
	err = ms.Dynamo.PutItemIfAbsent(ctx, models.MatchesTable, match, "pairKey")
	if errors.Is(err, models.ErrConditionalCheckFailed) {
		// Lost the creation race; the winning call reports the match.
		return models.SwipeResult{Matched: false, PairKey: pairKey}, nil
	}
	if err != nil {
		return models.SwipeResult{}, fmt.Errorf("failed to create match: %w", err)
	}

	ms.Metrics.RecordMatchCreated()
	ms.Logger.Info().
		Str("match_id", match.MatchID).
		Str("pair_key", match.PairKey).
		Msg("match created")

	if ms.Push != nil {
		// Best-effort, outside the transactional guarantee.
		go ms.Push.NotifyMatch(context.WithoutCancel(ctx), match.UserAID, match.UserBID, match.MatchID)
	}

	return models.SwipeResult{Matched: true, MatchID: match.MatchID, PairKey: pairKey}, nil
}

// GetMatch returns the match for a canonical pair key, or
// models.ErrItemNotFound. The read is strongly consistent so a conversation
// is usable immediately after creation.
func (ms *MatchService) GetMatch(ctx context.Context, pairKey string) (models.Match, error) {
	item, err := ms.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(pairKey), true)
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			return models.Match{}, err
		}
		return models.Match{}, fmt.Errorf("failed to read match %s: %w", pairKey, err)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return models.Match{}, fmt.Errorf("failed to parse match: %w", err)
	}
	return match, nil
}

// GetMatchesForUser lists the user's matches enriched with the other
// player's profile. Profiles that fail to load are skipped rather than
// failing the whole list.
func (ms *MatchService) GetMatchesForUser(ctx context.Context, userID string) ([]models.MatchSummary, error) {
	if userID == "" {
		return nil, models.NewValidationError("user_id is required")
	}

	itemsA, err := ms.Dynamo.QueryByIndex(ctx, models.MatchesTable, models.MatchesUserAIndex, "userAId", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for %s: %w", userID, err)
	}
	itemsB, err := ms.Dynamo.QueryByIndex(ctx, models.MatchesTable, models.MatchesUserBIndex, "userBId", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for %s: %w", userID, err)
	}

	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(append(itemsA, itemsB...), &matches); err != nil {
		return nil, fmt.Errorf("failed to parse matches: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].PairKey < matches[j].PairKey })

	summaries := make([]models.MatchSummary, 0, len(matches))
	for _, match := range matches {
		otherID := match.Other(userID)
		profile, err := ms.getUser(ctx, otherID)
		if err != nil {
			ms.Logger.Warn().
				Err(err).
				Str("user_id", otherID).
				Msg("skipping match with unloadable profile")
			continue
		}

		summary := models.MatchSummary{
			MatchID:     match.MatchID,
			OtherUserID: otherID,
			Username:    profile.Username,
			GameName:    profile.GameName,
			RankTier:    profile.RankTier,
			Role:        profile.Role,
		}
		if ms.Avatars != nil && profile.AvatarKey != "" {
			if url, err := ms.Avatars.ReadURL(ctx, profile.AvatarKey); err == nil {
				summary.AvatarRef = url
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (ms *MatchService) getUser(ctx context.Context, userID string) (models.User, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := ms.Dynamo.GetItem(ctx, models.UsersTable, key, false)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to parse user: %w", err)
	}
	return user, nil
}
