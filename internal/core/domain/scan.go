package domain

import (
	"errors"
	"time"
)

// ScanStatus represents the lifecycle state of a scan.
type ScanStatus string

const (
	StatusPending    ScanStatus = "pending"
	StatusProcessing ScanStatus = "processing"
	StatusCompleted  ScanStatus = "completed"
	StatusFailed     ScanStatus = "failed"
)

// validTransitions defines the allowed state machine transitions.
// completed and failed are terminal: nothing transitions out of them.
var validTransitions = map[ScanStatus][]ScanStatus{
	StatusPending:    {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ScanStatus) CanTransitionTo(next ScanStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is a terminal state.
func (s ScanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Website is created once per distinct URL and is immutable thereafter.
type Website struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	URL       string    `json:"url" bson:"url"`
	Domain    string    `json:"domain" bson:"domain"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Scan is the core aggregate root: one full pipeline run against a URL.
//
// Exactly one of UserID/SessionID identifies the owner at creation time.
// When an anonymous scan is claimed by an authenticated user, UserID is set
// and SessionID is retained for audit.
type Scan struct {
	ID               string      `json:"id" bson:"_id,omitempty"`
	WebsiteID        string      `json:"website_id" bson:"website_id"`
	UserID           string      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	SessionID        string      `json:"session_id,omitempty" bson:"session_id,omitempty"`
	Status           ScanStatus  `json:"status" bson:"status"`
	ScanData         *ScanResult `json:"scan_data,omitempty" bson:"scan_data,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty" bson:"error_message,omitempty"`
	ProcessingTimeMS int64       `json:"processing_time_ms,omitempty" bson:"processing_time_ms,omitempty"`
	CreatedAt        time.Time   `json:"created_at" bson:"created_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// AccessibleBy reports whether the given identity owns this scan.
// Authenticated callers match by user_id equality; anonymous callers match
// by exact session_id equality. No partial or prefix matching.
func (s *Scan) AccessibleBy(id Identity) bool {
	if id.Authenticated() {
		return s.UserID != "" && s.UserID == id.UserID
	}
	// A claimed scan belongs to its user even though session_id is retained.
	if s.UserID != "" {
		return false
	}
	return s.SessionID != "" && s.SessionID == id.SessionID
}
