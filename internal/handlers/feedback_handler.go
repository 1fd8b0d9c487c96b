package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"idp-tool/internal/models"
	"idp-tool/internal/service"
)

// FeedbackHandler handles the collaborator-facing feedback flow,
// reached through a share's collaborate token
type FeedbackHandler struct {
	shareService    *service.ShareService
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(shareService *service.ShareService, feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		shareService:    shareService,
		feedbackService: feedbackService,
	}
}

// resolveShare loads the share behind a collaborate token and verifies
// that the authenticated user is its collaborator. The access check
// runs before any share data is written to the response.
func (h *FeedbackHandler) resolveShare(w http.ResponseWriter, r *http.Request) *models.Share {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return nil
	}

	share, err := h.shareService.GetShareByToken(r.PathValue("token"))
	if err != nil {
		respondServiceError(w, err)
		return nil
	}

	if !h.feedbackService.CanUserProvideFeedback(share, user.Email) {
		respondError(w, http.StatusForbidden, "You are not the collaborator of this share")
		return nil
	}

	return share
}

// GetCollaboration returns the share a collaborate token points at,
// with its snapshots and any feedback so far
// @Summary Open a collaboration
// @Tags Feedback
// @Security BearerAuth
// @Param token path string true "Collaborate token"
// @Success 200 {object} models.ShareDetails
// @Failure 403 {object} map[string]string "Not the collaborator"
// @Router /collaborate/{token} [get]
func (h *FeedbackHandler) GetCollaboration(w http.ResponseWriter, r *http.Request) {
	share := h.resolveShare(w, r)
	if share == nil {
		return
	}

	details, err := h.shareService.GetShareDetails(share.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// SaveFeedback stores the collaborator's rating and notes for one competency
// @Summary Save feedback
// @Tags Feedback
// @Security BearerAuth
// @Accept json
// @Param token path string true "Collaborate token"
// @Param competencyId path int true "Competency ID"
// @Param request body models.Response true "Rating and notes"
// @Success 204
// @Failure 409 {object} map[string]string "Feedback already submitted"
// @Router /collaborate/{token}/feedback/{competencyId} [put]
func (h *FeedbackHandler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	share := h.resolveShare(w, r)
	if share == nil {
		return
	}

	competencyID, err := strconv.Atoi(r.PathValue("competencyId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid competency ID")
		return
	}

	var response models.Response
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.feedbackService.SaveFeedback(share.ID, competencyID, response); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AutosaveFeedback queues a debounced save of the collaborator's input.
// The write happens once the quiet period passes without another edit.
// @Summary Autosave feedback
// @Tags Feedback
// @Security BearerAuth
// @Accept json
// @Param token path string true "Collaborate token"
// @Param competencyId path int true "Competency ID"
// @Param request body models.Response true "Rating and notes"
// @Success 202
// @Router /collaborate/{token}/feedback/{competencyId}/autosave [post]
func (h *FeedbackHandler) AutosaveFeedback(w http.ResponseWriter, r *http.Request) {
	share := h.resolveShare(w, r)
	if share == nil {
		return
	}

	if share.FeedbackSubmitted {
		respondError(w, http.StatusConflict, service.ErrFeedbackSubmitted.Error())
		return
	}

	competencyID, err := strconv.Atoi(r.PathValue("competencyId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid competency ID")
		return
	}

	var response models.Response
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.feedbackService.QueueFeedback(share.ID, competencyID, response)
	w.WriteHeader(http.StatusAccepted)
}

// SubmitFeedback finalizes the feedback on a share
// @Summary Submit feedback
// @Tags Feedback
// @Security BearerAuth
// @Param token path string true "Collaborate token"
// @Success 204
// @Failure 400 {object} map[string]string "Feedback incomplete"
// @Failure 409 {object} map[string]string "Already submitted"
// @Router /collaborate/{token}/submit [post]
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	share := h.resolveShare(w, r)
	if share == nil {
		return
	}

	if err := h.feedbackService.SubmitFeedback(share.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
