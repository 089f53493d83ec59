package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"squadfinder_server/metrics"
	"squadfinder_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/rs/zerolog"
)

// FeedService computes the candidate feed for a user: every other player,
// minus anyone the user already swiped on, optionally narrowed to one game.
// The feed is recomputed from current state on every call — there is no
// server-side cursor, so two devices of the same user always agree.
type FeedService struct {
	Dynamo  DynamoAPI
	Swipes  *SwipeService
	Avatars AvatarSigner
	Metrics metrics.Recorder
	Logger  zerolog.Logger

	// PassResurfaceAfter > 0 lets a "pass" older than the window re-surface
	// its target. Zero keeps passes excluded forever. Likes never re-surface.
	PassResurfaceAfter time.Duration
}

// NewFeedService builds the feed generator. Avatars may be nil.
func NewFeedService(dynamo DynamoAPI, swipes *SwipeService, avatars AvatarSigner, rec metrics.Recorder, logger zerolog.Logger, passResurfaceAfter time.Duration) *FeedService {
	return &FeedService{
		Dynamo:             dynamo,
		Swipes:             swipes,
		Avatars:            avatars,
		Metrics:            rec,
		Logger:             logger,
		PassResurfaceAfter: passResurfaceAfter,
	}
}

// GetFeed returns candidate summaries for the user, sorted by user id so the
// order is deterministic for a fixed snapshot. An empty result is not an
// error: it means no more candidates right now.
func (fs *FeedService) GetFeed(ctx context.Context, userID, gameID string) ([]models.UserSummary, error) {
	if userID == "" {
		return nil, models.NewValidationError("user_id is required")
	}

	excluded, err := fs.excludedTargets(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := fs.Dynamo.ScanAll(ctx, models.UsersTable)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	var users []models.User
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}

	filterByGame := gameID != "" && gameID != "0"

	candidates := users[:0]
	for _, user := range users {
		if _, skip := excluded[user.UserID]; skip {
			continue
		}
		if filterByGame && user.GameID != gameID {
			continue
		}
		candidates = append(candidates, user)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].UserID < candidates[j].UserID })

	summaries := make([]models.UserSummary, 0, len(candidates))
	for _, user := range candidates {
		summary := models.UserSummary{
			UserID:   user.UserID,
			Username: user.Username,
			RankTier: user.RankTier,
			Role:     user.Role,
			GameName: user.GameName,
			Bio:      user.Bio,
		}
		if fs.Avatars != nil && user.AvatarKey != "" {
			if url, err := fs.Avatars.ReadURL(ctx, user.AvatarKey); err == nil {
				summary.AvatarRef = url
			} else {
				fs.Logger.Warn().Err(err).Str("user_id", user.UserID).Msg("failed to sign avatar url")
			}
		}
		summaries = append(summaries, summary)
	}

	fs.Metrics.RecordFeedRequest()
	fs.Logger.Debug().
		Str("user_id", userID).
		Str("game_id", gameID).
		Int("candidates", len(summaries)).
		Msg("feed computed")

	return summaries, nil
}

// excludedTargets is the requester plus everyone they already swiped on,
// with the configurable pass re-surface window applied.
func (fs *FeedService) excludedTargets(ctx context.Context, userID string) (map[string]struct{}, error) {
	swipes, err := fs.Swipes.Swipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	excluded := map[string]struct{}{userID: {}}
	now := time.Now().UTC()
	for _, swipe := range swipes {
		if swipe.Decision == models.DecisionPass && fs.PassResurfaceAfter > 0 {
			swipedAt, err := time.Parse(time.RFC3339, swipe.UpdatedAt)
			if err == nil && now.Sub(swipedAt) > fs.PassResurfaceAfter {
				continue
			}
		}
		excluded[swipe.TargetID] = struct{}{}
	}
	return excluded, nil
}
