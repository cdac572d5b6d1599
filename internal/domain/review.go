package domain

import (
	"time"
)

// Status is the moderation status of a review. Only approved reviews are
// countable toward aggregates; rejected and hidden reviews are retained for
// audit but excluded everywhere.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusHidden   Status = "hidden"
)

// Moderation actions accepted by the status endpoint.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionHide    = "hide"
)

// Review is one user's evaluation of one solar provider, scored along the
// fixed criteria set. A review belongs to exactly one parent: either the
// provider directly, or one of the provider's solutions (SolutionID set).
// ProviderID always carries the owning provider either way.
type Review struct {
	ID             string         `json:"id"`
	ProviderID     string         `json:"provider_id"`
	SolutionID     *string        `json:"solution_id,omitempty"`
	UserID         string         `json:"user_id"`
	OverallScore   float64        `json:"overall_score"`
	CriteriaScores CriteriaScores `json:"criteria_scores,omitempty"`
	Title          *string        `json:"title,omitempty"`
	Comment        string         `json:"comment"`
	Status         Status         `json:"status"`
	Featured       bool           `json:"featured"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsCountable reports whether the review participates in aggregates.
func (r *Review) IsCountable() bool {
	return r.Status == StatusApproved
}

// ValidStatuses returns all valid review statuses.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusHidden}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status Status) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which moderation transitions are valid.
// Rejected and hidden are terminal; nothing re-enters pending.
func AllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected, StatusHidden},
		StatusApproved: {StatusHidden},
		StatusRejected: {},
		StatusHidden:   {},
	}
}

// CanTransitionTo checks if the review can move to the target status.
func (r *Review) CanTransitionTo(target Status) bool {
	allowed, ok := AllowedTransitions()[r.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// StatusForAction maps a moderation action to its target status.
func StatusForAction(action string) (Status, bool) {
	switch action {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	case ActionHide:
		return StatusHidden, true
	default:
		return "", false
	}
}
