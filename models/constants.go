package models

// Swipe decisions
const (
	DecisionLike = "like"
	DecisionPass = "pass"
)

// ValidDecision reports whether the given action is a known swipe decision.
func ValidDecision(d string) bool {
	return d == DecisionLike || d == DecisionPass
}
