package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"idp-tool/internal/autosave"
	"idp-tool/internal/dataset"
	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

// feedbackKey identifies one competency of one share in the autosave queue
type feedbackKey struct {
	ShareID      uuid.UUID
	CompetencyID int
}

// FeedbackService handles business logic for collaborator feedback
type FeedbackService struct {
	shareRepo    *repository.ShareRepository
	feedbackRepo *repository.FeedbackRepository
	data         *dataset.Dataset
	debouncer    *autosave.Debouncer[feedbackKey, models.Response]
}

// NewFeedbackService creates a new feedback service. Queued autosaves
// are written once quietPeriod has passed without another edit of the
// same competency.
func NewFeedbackService(
	shareRepo *repository.ShareRepository,
	feedbackRepo *repository.FeedbackRepository,
	data *dataset.Dataset,
	quietPeriod time.Duration,
) *FeedbackService {
	s := &FeedbackService{
		shareRepo:    shareRepo,
		feedbackRepo: feedbackRepo,
		data:         data,
	}
	s.debouncer = autosave.New(quietPeriod, func(key feedbackKey, value models.Response) {
		if err := s.SaveFeedback(key.ShareID, key.CompetencyID, value); err != nil {
			slog.Error("Autosave of feedback failed",
				"share_id", key.ShareID,
				"competency_id", key.CompetencyID,
				"error", err,
			)
		}
	})
	return s
}

// CanUserProvideFeedback reports whether an email is the collaborator
// of a share. The comparison ignores case; a nil share always denies.
func (s *FeedbackService) CanUserProvideFeedback(share *models.Share, email string) bool {
	if share == nil {
		return false
	}
	return strings.EqualFold(share.CollaboratorEmail, email)
}

// SaveFeedback writes the collaborator's rating and notes for one
// competency. Editing is rejected once the share has been submitted.
func (s *FeedbackService) SaveFeedback(shareID uuid.UUID, competencyID int, response models.Response) error {
	share, err := s.shareRepo.GetByID(shareID)
	if err != nil {
		return fmt.Errorf("failed to load share: %w", err)
	}
	if share == nil {
		return ErrShareNotFound
	}
	if share.FeedbackSubmitted {
		return ErrFeedbackSubmitted
	}

	if err := s.validate(share.RoleID, competencyID, response.AssessmentLevel); err != nil {
		return err
	}

	feedback := &models.CollaboratorFeedback{
		ShareID:                     shareID,
		CompetencyID:                competencyID,
		CollaboratorAssessmentLevel: response.AssessmentLevel,
		CollaboratorNotes:           response.Notes,
	}
	if err := s.feedbackRepo.Upsert(feedback); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return nil
}

// QueueFeedback schedules a debounced write of the collaborator's
// latest input for one competency
func (s *FeedbackService) QueueFeedback(shareID uuid.UUID, competencyID int, response models.Response) {
	s.debouncer.Queue(feedbackKey{ShareID: shareID, CompetencyID: competencyID}, response)
}

// SubmitFeedback finalizes the feedback on a share. Every competency of
// the shared role must carry a rating and non-blank notes.
func (s *FeedbackService) SubmitFeedback(shareID uuid.UUID) error {
	// Write out anything still sitting in the autosave queue first
	s.debouncer.Flush()

	share, err := s.shareRepo.GetByID(shareID)
	if err != nil {
		return fmt.Errorf("failed to load share: %w", err)
	}
	if share == nil {
		return ErrShareNotFound
	}
	if share.FeedbackSubmitted {
		return ErrFeedbackSubmitted
	}

	feedback, err := s.feedbackRepo.GetByShare(shareID)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}

	competencies := s.data.CompetenciesByRole(share.RoleID)
	if len(competencies) == 0 {
		return ErrIncompleteFeedback
	}
	for _, competency := range competencies {
		row, ok := feedback[competency.CompetencyID]
		if !ok || row.CollaboratorAssessmentLevel == nil || strings.TrimSpace(row.CollaboratorNotes) == "" {
			return ErrIncompleteFeedback
		}
	}

	if err := s.shareRepo.MarkFeedbackSubmitted(shareID); err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}

	return nil
}

// Flush writes all pending autosaves immediately
func (s *FeedbackService) Flush() {
	s.debouncer.Flush()
}

// Close flushes pending autosaves and stops accepting new ones
func (s *FeedbackService) Close() {
	s.debouncer.Close()
}

func (s *FeedbackService) validate(roleID, competencyID int, level *int) error {
	found := false
	for _, competency := range s.data.CompetenciesByRole(roleID) {
		if competency.CompetencyID == competencyID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownCompetency
	}

	if level != nil && s.data.AssessmentByLevel(*level) == nil {
		return ErrInvalidAssessmentLevel
	}

	return nil
}
