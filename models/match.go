package models

import (
	"time"

	"github.com/google/uuid"
)

// Match is the single record for an unordered user pair. The pair key is the
// canonical ordering of the two ids, so at most one item can ever exist per
// pair (enforced by a conditional put on PairKey). MessageSeq is the
// per-conversation sequence counter; it starts at 0 and is only ever
// incremented.
type Match struct {
	PairKey    string `dynamodbav:"pairKey" json:"pair_key"`
	MatchID    string `dynamodbav:"matchId" json:"match_id"`
	UserAID    string `dynamodbav:"userAId" json:"user_a_id"`
	UserBID    string `dynamodbav:"userBId" json:"user_b_id"`
	MessageSeq int64  `dynamodbav:"messageSeq" json:"-"`
	CreatedAt  string `dynamodbav:"createdAt" json:"created_at"`
}

// MatchSummary is one row of a user's match list, enriched with the other
// player's profile.
type MatchSummary struct {
	MatchID     string `json:"match_id"`
	OtherUserID string `json:"other_user_id"`
	Username    string `json:"username"`
	GameName    string `json:"game_name"`
	RankTier    string `json:"rank_tier"`
	Role        string `json:"role"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

// CanonicalPair orders two user ids deterministically. Ids are opaque
// strings, so lexicographic order is the canonical order.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// PairKey builds the canonical pair key used for Matches and as the
// conversation key for Messages.
func PairKey(a, b string) string {
	lo, hi := CanonicalPair(a, b)
	return lo + "#" + hi
}

// NewMatch builds a match record for the canonical pair of the two ids.
func NewMatch(a, b string) Match {
	lo, hi := CanonicalPair(a, b)
	return Match{
		PairKey:   lo + "#" + hi,
		MatchID:   uuid.NewString(),
		UserAID:   lo,
		UserBID:   hi,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Contains reports whether the given user is one side of the match.
func (m Match) Contains(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Other returns the id of the match partner of userID.
func (m Match) Other(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"

// GSI names for listing a user's matches from either side of the pair
const (
	MatchesUserAIndex = "userA-index"
	MatchesUserBIndex = "userB-index"
)
