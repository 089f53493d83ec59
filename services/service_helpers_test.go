package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"squadfinder_server/metrics"
	"squadfinder_server/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakePush records match notifications so tests can assert exactly-once
// delivery.
type fakePush struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakePush) NotifyMatch(ctx context.Context, userAID, userBID, matchID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, matchID)
}

func (p *fakePush) notified() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// countingMetrics counts swipe recordings.
type countingMetrics struct {
	mu     sync.Mutex
	swipes int
}

func (m *countingMetrics) RecordSwipe(string) {
	m.mu.Lock()
	m.swipes++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordMatchCreated() {}
func (m *countingMetrics) RecordMessageSent()  {}
func (m *countingMetrics) RecordFeedRequest()  {}
func (m *countingMetrics) RecordPoll()         {}

func (m *countingMetrics) swipeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.swipes
}

// testEnv wires the full service graph onto one in-memory store.
type testEnv struct {
	dynamo   *fakeDynamo
	push     *fakePush
	swipes   *SwipeService
	matches  *MatchService
	feed     *FeedService
	messages *MessageService
	chat     *ChatService
	games    *GameService
}

func newTestEnv() *testEnv {
	log := zerolog.Nop()
	dynamo := newFakeDynamo()
	push := &fakePush{}

	swipes := NewSwipeService(dynamo, log)
	matches := NewMatchService(dynamo, swipes, push, nil, metrics.Nop{}, log)
	messages := NewMessageService(dynamo, matches, metrics.Nop{}, log)

	return &testEnv{
		dynamo:   dynamo,
		push:     push,
		swipes:   swipes,
		matches:  matches,
		feed:     NewFeedService(dynamo, swipes, nil, metrics.Nop{}, log, 0),
		messages: messages,
		chat:     NewChatService(messages, metrics.Nop{}, log),
		games:    NewGameService(dynamo, log),
	}
}

func (e *testEnv) seedUser(t *testing.T, user models.User) {
	t.Helper()
	require.NoError(t, e.dynamo.PutItem(context.Background(), models.UsersTable, user))
}

func (e *testEnv) seedMatch(t *testing.T, a, b string) models.Match {
	t.Helper()
	match := models.NewMatch(a, b)
	require.NoError(t, e.dynamo.PutItem(context.Background(), models.MatchesTable, match))
	return match
}

func (e *testEnv) seedSwipe(t *testing.T, swiperID, targetID, decision string, at time.Time) {
	t.Helper()
	swipe := models.Swipe{
		SwiperID:  swiperID,
		TargetID:  targetID,
		Decision:  decision,
		UpdatedAt: at.UTC().Format(time.RFC3339),
	}
	require.NoError(t, e.dynamo.PutItem(context.Background(), models.SwipesTable, swipe))
}
