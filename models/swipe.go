package models

// Swipe is the effective (most recent) decision for an ordered
// (swiper, target) pair. A later swipe on the same pair overwrites this item;
// the full history lives in SwipeEvents.
type Swipe struct {
	SwiperID  string `dynamodbav:"swiperId" json:"swiper_id"`
	TargetID  string `dynamodbav:"targetId" json:"target_id"`
	Decision  string `dynamodbav:"decision" json:"decision"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updated_at"`
}

// SwipeEvent is one entry of the append-only swipe audit log. Every swipe
// call appends one, including superseded and post-match swipes.
type SwipeEvent struct {
	EventID   string `dynamodbav:"eventId" json:"event_id"`
	SwiperID  string `dynamodbav:"swiperId" json:"swiper_id"`
	TargetID  string `dynamodbav:"targetId" json:"target_id"`
	Decision  string `dynamodbav:"decision" json:"decision"`
	CreatedAt string `dynamodbav:"createdAt" json:"created_at"`
}

// SwipeResult is what RecordSwipe reports back to the caller. Matched is true
// on exactly one of the two calls that complete a mutual like.
type SwipeResult struct {
	Matched bool   `json:"matched"`
	MatchID string `json:"match_id,omitempty"`
	PairKey string `json:"-"`
}

// SwipesTable holds effective decisions keyed by (swiperId, targetId)
const SwipesTable = "Swipes"

// SwipeEventsTable holds the append-only audit log keyed by eventId
const SwipeEventsTable = "SwipeEvents"
