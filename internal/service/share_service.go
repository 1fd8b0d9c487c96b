package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"idp-tool/internal/auth"
	"idp-tool/internal/dataset"
	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

// ShareNotifier sends the collaborator-facing share notification
type ShareNotifier interface {
	SendShareNotification(to, ownerEmail, roleName, link string) error
}

// ShareService handles business logic for sharing assessments
type ShareService struct {
	shareRepo    *repository.ShareRepository
	snapshotRepo *repository.SnapshotRepository
	feedbackRepo *repository.FeedbackRepository
	responseRepo *repository.ResponseRepository
	data         *dataset.Dataset
	notifier     ShareNotifier
	appBaseURL   string
}

// NewShareService creates a new share service
func NewShareService(
	shareRepo *repository.ShareRepository,
	snapshotRepo *repository.SnapshotRepository,
	feedbackRepo *repository.FeedbackRepository,
	responseRepo *repository.ResponseRepository,
	data *dataset.Dataset,
	notifier ShareNotifier,
	appBaseURL string,
) *ShareService {
	return &ShareService{
		shareRepo:    shareRepo,
		snapshotRepo: snapshotRepo,
		feedbackRepo: feedbackRepo,
		responseRepo: responseRepo,
		data:         data,
		notifier:     notifier,
		appBaseURL:   appBaseURL,
	}
}

// CreateShare freezes the owner's current responses for a role and
// shares them with a collaborator. An identical pending snapshot for the
// same collaborator and role is rejected as a duplicate. The
// notification email is best-effort; a snapshot write failure rolls the
// share back.
func (s *ShareService) CreateShare(owner *models.User, collaboratorEmail string, roleID int) (*models.Share, error) {
	collaboratorEmail = strings.ToLower(strings.TrimSpace(collaboratorEmail))
	if collaboratorEmail == "" {
		return nil, fmt.Errorf("collaborator email is required")
	}

	role := s.data.RoleByID(roleID)
	if role == nil {
		return nil, ErrUnknownRole
	}

	responses, err := s.responseRepo.GetByUserAndRole(owner.ID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	duplicate, err := s.hasIdenticalShare(owner.ID, collaboratorEmail, roleID, responses)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateShare
	}

	token, err := auth.GenerateRandomToken(24)
	if err != nil {
		return nil, fmt.Errorf("failed to generate share token: %w", err)
	}

	share := &models.Share{
		ID:                uuid.New(),
		OriginalUserID:    owner.ID,
		OriginalUserEmail: owner.Email,
		CollaboratorEmail: collaboratorEmail,
		RoleID:            roleID,
		ShareToken:        token,
	}

	if err := s.shareRepo.Create(share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	// The share is usable without the email, so a send failure only logs
	if s.notifier != nil {
		link := fmt.Sprintf("%s/collaborate/%s", strings.TrimRight(s.appBaseURL, "/"), share.ShareToken)
		if err := s.notifier.SendShareNotification(collaboratorEmail, owner.Email, role.RoleDescription, link); err != nil {
			slog.Warn("Failed to send share notification", "share_id", share.ID, "error", err)
		}
	}

	snapshots := make([]models.ShareSnapshot, 0, len(responses))
	for competencyID, response := range responses {
		snapshots = append(snapshots, models.ShareSnapshot{
			ShareID:         share.ID,
			CompetencyID:    competencyID,
			AssessmentLevel: response.AssessmentLevel,
			Notes:           response.Notes,
		})
	}

	if err := s.snapshotRepo.CreateAll(snapshots); err != nil {
		// A share without its snapshot is unusable, remove it again
		if delErr := s.shareRepo.Delete(share.ID); delErr != nil {
			slog.Error("Failed to roll back share after snapshot failure", "share_id", share.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to snapshot responses: %w", err)
	}

	return share, nil
}

// hasIdenticalShare reports whether any existing share to the same
// collaborator for the same role froze exactly the same responses:
// the same competency set with equal levels and equal trimmed notes
func (s *ShareService) hasIdenticalShare(ownerID uuid.UUID, collaboratorEmail string, roleID int, responses map[int]models.Response) (bool, error) {
	ids, err := s.shareRepo.ListIDsByOwnerCollaboratorRole(ownerID, collaboratorEmail, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to list existing shares: %w", err)
	}

	for _, id := range ids {
		snapshots, err := s.snapshotRepo.GetByShare(id)
		if err != nil {
			return false, fmt.Errorf("failed to load snapshots: %w", err)
		}
		if snapshotsEqual(snapshots, responses) {
			return true, nil
		}
	}

	return false, nil
}

func snapshotsEqual(snapshots map[int]models.ShareSnapshot, responses map[int]models.Response) bool {
	if len(snapshots) != len(responses) {
		return false
	}
	for competencyID, response := range responses {
		snapshot, ok := snapshots[competencyID]
		if !ok {
			return false
		}
		if !levelsEqual(snapshot.AssessmentLevel, response.AssessmentLevel) {
			return false
		}
		if strings.TrimSpace(snapshot.Notes) != strings.TrimSpace(response.Notes) {
			return false
		}
	}
	return true
}

func levelsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// GetShareDetails loads a share with its snapshots and feedback.
// A nil Share inside the result means the share no longer exists.
func (s *ShareService) GetShareDetails(shareID uuid.UUID) (*models.ShareDetails, error) {
	share, err := s.shareRepo.GetByID(shareID)
	if err != nil {
		return nil, fmt.Errorf("failed to load share: %w", err)
	}

	details := &models.ShareDetails{
		Share:     share,
		Snapshots: map[int]models.ShareSnapshot{},
		Feedback:  map[int]models.CollaboratorFeedback{},
	}
	if share == nil {
		return details, nil
	}

	if details.Snapshots, err = s.snapshotRepo.GetByShare(share.ID); err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	if details.Feedback, err = s.feedbackRepo.GetByShare(share.ID); err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	return details, nil
}

// GetShareByToken resolves a collaborate token, or nil if unknown
func (s *ShareService) GetShareByToken(token string) (*models.Share, error) {
	share, err := s.shareRepo.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve share token: %w", err)
	}
	return share, nil
}

// ListMine returns the shares a user has created
func (s *ShareService) ListMine(ownerID uuid.UUID) ([]models.Share, error) {
	return s.shareRepo.ListByOwner(ownerID)
}

// ListSharedWithMe returns the shares addressed to a user's email
func (s *ShareService) ListSharedWithMe(email string) ([]models.Share, error) {
	return s.shareRepo.ListByCollaborator(email)
}

// HasFeedbackStarted reports whether a collaborator has entered any
// rating or non-blank notes on a share
func (s *ShareService) HasFeedbackStarted(shareID uuid.UUID) (bool, error) {
	return s.feedbackRepo.HasAnyContent(shareID)
}

// DeleteShare removes a share with its snapshots and feedback. Only the
// owner may delete, and only while no feedback has been entered.
func (s *ShareService) DeleteShare(ownerID, shareID uuid.UUID) error {
	share, err := s.shareRepo.GetByID(shareID)
	if err != nil {
		return fmt.Errorf("failed to load share: %w", err)
	}
	if share == nil {
		return ErrShareNotFound
	}
	if share.OriginalUserID != ownerID {
		return ErrNotShareOwner
	}

	started, err := s.feedbackRepo.HasAnyContent(shareID)
	if err != nil {
		return fmt.Errorf("failed to check feedback: %w", err)
	}
	if started {
		return ErrFeedbackStarted
	}

	// Children before the share itself
	if err := s.feedbackRepo.DeleteByShare(shareID); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if err := s.snapshotRepo.DeleteByShare(shareID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	if err := s.shareRepo.Delete(shareID); err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}

	return nil
}
