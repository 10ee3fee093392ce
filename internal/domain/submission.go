package domain

import (
	"context"
	"time"
)

// Submission status constants
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRejected = "rejected"
)

// Submission represents a developer's application: profile, artifacts and review outcome
type Submission struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	PhoneNumber       string    `json:"phone_number"`
	Location          string    `json:"location"`
	Hobbies           string    `json:"hobbies"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	SourceCodeURL     string    `json:"source_code_url"`
	Status            string    `json:"status"` // pending → accepted / rejected (terminal)
	Feedback          *string   `json:"feedback,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// IsDecided reports whether the submission has reached a terminal status.
func (s *Submission) IsDecided() bool {
	return s.Status == SubmissionStatusAccepted || s.Status == SubmissionStatusRejected
}

// SubmissionProfile holds the required profile fields of a new submission.
// All fields are immutable after creation.
type SubmissionProfile struct {
	FullName    string `json:"full_name" validate:"required,valid_name"`
	PhoneNumber string `json:"phone_number" validate:"required,valid_phone"`
	Location    string `json:"location" validate:"required"`
	Hobbies     string `json:"hobbies" validate:"required"`
}

// Artifact is an uploaded binary blob (profile picture or source archive).
type Artifact struct {
	Filename string
	Data     []byte
}

// SubmissionFilter narrows the evaluator list view. Status and Search
// are combined with AND; Search matches name/email/location
// case-insensitively.
type SubmissionFilter struct {
	Status string
	Search string
}

// SubmissionStatusView is the developer-facing projection of their own submission
type SubmissionStatusView struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Feedback *string `json:"feedback,omitempty"`
}

// Submission change event kinds carried over the realtime channel
const (
	SubmissionEventCreated = "created"
	SubmissionEventUpdated = "updated"
)

// SubmissionEvent notifies connected clients about a committed insert
// or update. It is a push notification, not a transaction log: payloads
// always carry the full row and clients apply the latest one they see.
type SubmissionEvent struct {
	Kind       string      `json:"type"`
	Submission *Submission `json:"submission"`
}

// SubmissionBroadcaster fans committed change events out to subscribed
// clients. Delivery is best effort.
type SubmissionBroadcaster interface {
	Broadcast(ev SubmissionEvent)
}

// DecisionNotifier sends the decision email to the developer.
type DecisionNotifier interface {
	SendDecision(ctx context.Context, email, decision, feedback, fullName string) error
}

// ArtifactStore persists binary artifacts and issues public URLs.
type ArtifactStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// SubmissionRepository defines data access methods for submissions
type SubmissionRepository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	GetByUserID(ctx context.Context, userID string) (*Submission, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	// Decide sets status and feedback in a single conditional write
	// guarded by status = 'pending'. When the guard matches no row the
	// repository returns ErrAlreadyDecided for a row that already has a
	// terminal status and ErrNotFound for an unknown id.
	Decide(ctx context.Context, id, status, feedback string) (*Submission, error)
}

// SubmissionUsecase defines business logic for submissions
type SubmissionUsecase interface {
	// Developer operations
	Submit(ctx context.Context, userID, email string, profile SubmissionProfile, picture, archive Artifact) (*Submission, error)
	MyStatus(ctx context.Context, userID string) (*SubmissionStatusView, error)

	// Evaluator operations
	Decide(ctx context.Context, submissionID, evaluatorID, decision, feedback string) (*Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
}

// NotificationUsecase sends (or resends) the decision email for a
// submission. It never mutates review state.
type NotificationUsecase interface {
	NotifyDecision(ctx context.Context, submissionID, action, feedback string) error
}
