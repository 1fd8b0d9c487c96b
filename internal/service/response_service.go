package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"idp-tool/internal/dataset"
	"idp-tool/internal/localcache"
	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

// ResponseService handles business logic for a user's own assessment
// responses. When the primary database is down, reads and writes fall
// back to the local cache so no input is lost.
type ResponseService struct {
	responseRepo *repository.ResponseRepository
	cache        *localcache.Store
	data         *dataset.Dataset
}

// NewResponseService creates a new response service. The cache may be
// nil, in which case database failures surface directly.
func NewResponseService(responseRepo *repository.ResponseRepository, cache *localcache.Store, data *dataset.Dataset) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		cache:        cache,
		data:         data,
	}
}

// LoadResponses returns the user's responses for one role, keyed by
// competency id, falling back to the local cache when the database
// is unreachable
func (s *ResponseService) LoadResponses(user *models.User, roleID int) (map[int]models.Response, error) {
	if s.data.RoleByID(roleID) == nil {
		return nil, ErrUnknownRole
	}

	responses, err := s.responseRepo.GetByUserAndRole(user.ID, roleID)
	if err == nil {
		return responses, nil
	}

	if s.cache == nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	slog.Warn("Loading responses from local cache", "user_id", user.ID, "role_id", roleID, "error", err)
	cached, cacheErr := s.cache.GetBucket(context.Background(), user.Email, roleID)
	if cacheErr != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	return cached, nil
}

// SaveResponse validates and persists one response, falling back to the
// local cache when the database is unreachable
func (s *ResponseService) SaveResponse(user *models.User, roleID, competencyID int, response models.Response) error {
	if err := s.validate(roleID, competencyID, response.AssessmentLevel); err != nil {
		return err
	}

	record := &models.UserResponse{
		UserID:          user.ID,
		RoleID:          roleID,
		CompetencyID:    competencyID,
		AssessmentLevel: response.AssessmentLevel,
		Notes:           response.Notes,
	}

	err := s.responseRepo.Upsert(record)
	if err == nil {
		return nil
	}

	if s.cache == nil {
		return fmt.Errorf("failed to save response: %w", err)
	}

	slog.Warn("Saving response to local cache", "user_id", user.ID, "role_id", roleID, "competency_id", competencyID, "error", err)
	if cacheErr := s.cache.SaveResponse(context.Background(), user.Email, roleID, competencyID, response); cacheErr != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}

	return nil
}

// DeleteResponse removes one response
func (s *ResponseService) DeleteResponse(user *models.User, roleID, competencyID int) error {
	if err := s.responseRepo.Delete(user.ID, roleID, competencyID); err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	return nil
}

// MigrateLocalData replays the user's locally cached responses into the
// database. A bucket is only cleared once every one of its entries has
// been written; partial buckets stay cached for the next attempt.
func (s *ResponseService) MigrateLocalData(user *models.User) error {
	if s.cache == nil {
		return nil
	}

	ctx := context.Background()
	buckets, err := s.cache.Buckets(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to list cached responses: %w", err)
	}

	for _, bucket := range buckets {
		responses, err := s.cache.GetBucket(ctx, bucket.Email, bucket.RoleID)
		if err != nil {
			return fmt.Errorf("failed to read cached responses: %w", err)
		}

		replayed := true
		for competencyID, response := range responses {
			record := &models.UserResponse{
				UserID:          user.ID,
				RoleID:          bucket.RoleID,
				CompetencyID:    competencyID,
				AssessmentLevel: response.AssessmentLevel,
				Notes:           response.Notes,
			}
			if err := s.responseRepo.Upsert(record); err != nil {
				slog.Warn("Failed to replay cached response", "role_id", bucket.RoleID, "competency_id", competencyID, "error", err)
				replayed = false
			}
		}

		if replayed {
			if err := s.cache.DeleteBucket(ctx, bucket.Email, bucket.RoleID); err != nil {
				slog.Warn("Failed to clear cached responses", "role_id", bucket.RoleID, "error", err)
			}
		}
	}

	return nil
}

// CompletedCount returns how many responses carry both a rating and
// non-blank notes
func CompletedCount(responses map[int]models.Response) int {
	count := 0
	for _, response := range responses {
		if response.AssessmentLevel != nil && strings.TrimSpace(response.Notes) != "" {
			count++
		}
	}
	return count
}

// Progress computes the completion status of a user's responses for one role
func (s *ResponseService) Progress(user *models.User, roleID int) (*models.RoleProgress, error) {
	responses, err := s.LoadResponses(user, roleID)
	if err != nil {
		return nil, err
	}

	competencies := s.data.CompetenciesByRole(roleID)
	total := len(competencies)

	completed := 0
	for _, competency := range competencies {
		response, ok := responses[competency.CompetencyID]
		if ok && response.AssessmentLevel != nil && strings.TrimSpace(response.Notes) != "" {
			completed++
		}
	}

	progress := &models.RoleProgress{
		TotalCompetencies:     total,
		CompletedCompetencies: completed,
		IsComplete:            total > 0 && completed == total,
	}
	if total > 0 {
		progress.PercentComplete = float64(completed) / float64(total) * 100
	}

	return progress, nil
}

func (s *ResponseService) validate(roleID, competencyID int, level *int) error {
	if s.data.RoleByID(roleID) == nil {
		return ErrUnknownRole
	}

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
