package service

import "errors"

var (
	// ErrShareNotFound is returned when a share id or token does not resolve
	ErrShareNotFound = errors.New("share not found")

	// ErrNotShareOwner is returned when a user acts on a share they did not create
	ErrNotShareOwner = errors.New("share belongs to another user")

	// ErrDuplicateShare is returned when an identical snapshot has already
	// been shared with the same collaborator
	ErrDuplicateShare = errors.New("an identical share already exists for this collaborator")

	// ErrFeedbackSubmitted is returned when feedback is edited after submission
	ErrFeedbackSubmitted = errors.New("feedback has already been submitted")

	// ErrFeedbackStarted is returned when a share with in-progress feedback
	// is deleted
	ErrFeedbackStarted = errors.New("feedback has already been started on this share")

	// ErrIncompleteFeedback is returned when feedback is submitted before
	// every competency has a rating and notes
	ErrIncompleteFeedback = errors.New("feedback is incomplete")

	// ErrInvalidEmail is returned when a magic link is requested for a
	// malformed email address
	ErrInvalidEmail = errors.New("a valid email address is required")

	// ErrInvalidLoginToken is returned for unknown, expired, or consumed
	// magic-link tokens
	ErrInvalidLoginToken = errors.New("invalid or expired login token")

	// ErrUnknownRole is returned for role ids outside the reference dataset
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownCompetency is returned when a competency does not belong
	// to the given role
	ErrUnknownCompetency = errors.New("unknown competency for role")

	// ErrInvalidAssessmentLevel is returned for ratings outside the scale
	ErrInvalidAssessmentLevel = errors.New("invalid assessment level")
)
