package services

import (
	"context"

	"github.com/rs/zerolog"
)

// PushNotifier is the external push-notification collaborator. Delivery is
// best-effort and happens outside the match-creation atomic section; token
// registration and the actual provider live in another service.
type PushNotifier interface {
	NotifyMatch(ctx context.Context, userAID, userBID, matchID string)
}

// LogPushNotifier only logs the notification. It stands in until a real
// provider is wired behind the interface.
type LogPushNotifier struct {
	Logger zerolog.Logger
}

// NewLogPushNotifier builds the log-only notifier.
func NewLogPushNotifier(logger zerolog.Logger) *LogPushNotifier {
	return &LogPushNotifier{Logger: logger}
}

// NotifyMatch records that both users would have been notified.
func (p *LogPushNotifier) NotifyMatch(ctx context.Context, userAID, userBID, matchID string) {
	p.Logger.Info().
		Str("match_id", matchID).
		Str("user_a", userAID).
		Str("user_b", userBID).
		Msg("match notification dispatched")
}
