package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a job position from the reference dataset
type Role struct {
	RoleID          int    `json:"role_id"`
	RoleDescription string `json:"role_description"`
}

// CoreCompetency groups competencies for display and progress purposes
type CoreCompetency struct {
	CoreCompetencyID          int    `json:"core_competency_id"`
	CoreCompetencyDescription string `json:"core_competency_description"`
}

// Competency is a skill statement tied to a role, pre-joined with its
// role and core-competency labels as shipped in the reference dataset
type Competency struct {
	CompetencyID              int    `json:"competency_id"`
	CompetencyDescription     string `json:"competency_description"`
	RoleID                    int    `json:"role_id"`
	RoleDescription           string `json:"role_description"`
	CoreCompetencyID          int    `json:"core_competency_id"`
	CoreCompetencyDescription string `json:"core_competency_description"`
}

// AssessmentLevel is one point on the fixed rating scale
type AssessmentLevel struct {
	AssessmentLevel       int    `json:"assessment_level"`
	Assessment            string `json:"assessment"`
	AssessmentDescription string `json:"assessment_description"`
}

// Response is a user's rating and notes for one competency.
// Both fields are optional; a response is complete when the level is set
// and the notes are non-blank after trimming.
type Response struct {
	AssessmentLevel *int   `json:"assessment_level,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// User is an authenticated identity issued by the passwordless login flow
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// LoginToken is a single-use magic-link token; only the bcrypt hash of
// the secret half is stored
type LoginToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	SecretHash string     `json:"-" db:"secret_hash"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// UserResponse is the persisted form of a Response, keyed by
// (user_id, role_id, competency_id)
type UserResponse struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	RoleID          int       `json:"role_id" db:"role_id"`
	CompetencyID    int       `json:"competency_id" db:"competency_id"`
	AssessmentLevel *int      `json:"assessment_level,omitempty" db:"assessment_level"`
	Notes           string    `json:"notes,omitempty" db:"notes"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Share is a one-directional request from an owner to a collaborator to
// review a snapshot of the owner's ratings
type Share struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	OriginalUserID      uuid.UUID  `json:"original_user_id" db:"original_user_id"`
	OriginalUserEmail   string     `json:"original_user_email" db:"original_user_email"`
	CollaboratorEmail   string     `json:"collaborator_email" db:"collaborator_email"`
	RoleID              int        `json:"role_id" db:"role_id"`
	SharedAt            time.Time  `json:"shared_at" db:"shared_at"`
	FeedbackSubmitted   bool       `json:"feedback_submitted" db:"feedback_submitted"`
	FeedbackSubmittedAt *time.Time `json:"feedback_submitted_at,omitempty" db:"feedback_submitted_at"`
	ShareToken          string     `json:"share_token" db:"share_token"`
}

// ShareSnapshot is the frozen copy of one response at share-creation time
type ShareSnapshot struct {
	ShareID         uuid.UUID `json:"share_id" db:"share_id"`
	CompetencyID    int       `json:"competency_id" db:"competency_id"`
	AssessmentLevel *int      `json:"assessment_level,omitempty" db:"assessment_level"`
	Notes           string    `json:"notes,omitempty" db:"notes"`
}

// CollaboratorFeedback is the collaborator's rating and notes for one
// competency of a share, mutable until the share is submitted
type CollaboratorFeedback struct {
	ID                          uuid.UUID `json:"id" db:"id"`
	ShareID                     uuid.UUID `json:"share_id" db:"share_id"`
	CompetencyID                int       `json:"competency_id" db:"competency_id"`
	CollaboratorAssessmentLevel *int      `json:"collaborator_assessment_level,omitempty" db:"collaborator_assessment_level"`
	CollaboratorNotes           string    `json:"collaborator_notes,omitempty" db:"collaborator_notes"`
	UpdatedAt                   time.Time `json:"updated_at" db:"updated_at"`
}

// ShareDetails bundles everything a feedback view needs in one fetch.
// Share is nil when the id no longer exists (callers treat that as
// "share deleted").
type ShareDetails struct {
	Share     *Share                       `json:"share"`
	Snapshots map[int]ShareSnapshot        `json:"snapshots"`
	Feedback  map[int]CollaboratorFeedback `json:"feedback"`
}

// RoleProgress is the completion status of a user's ratings for one role
type RoleProgress struct {
	TotalCompetencies     int     `json:"total_competencies"`
	CompletedCompetencies int     `json:"completed_competencies"`
	PercentComplete       float64 `json:"percent_complete"`
	IsComplete            bool    `json:"is_complete"`
}
