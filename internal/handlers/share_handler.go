package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"idp-tool/internal/service"
)

// ShareHandler handles HTTP requests for sharing assessments
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

type createShareRequest struct {
	CollaboratorEmail string `json:"collaborator_email"`
	RoleID            int    `json:"role_id"`
}

// CreateShare shares the user's current responses with a collaborator
// @Summary Create a share
// @Description Freeze the current responses for a role and invite a collaborator to review them
// @Tags Shares
// @Security BearerAuth
// @Accept json
// @Param request body createShareRequest true "Collaborator and role"
// @Success 201 {object} models.Share
// @Failure 409 {object} map[string]string "Identical share already exists"
// @Router /shares [post]
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	share, err := h.shareService.CreateShare(user, req.CollaboratorEmail, req.RoleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, share)
}

// ListMine returns the shares the user has created
// @Summary List own shares
// @Tags Shares
// @Security BearerAuth
// @Success 200 {array} models.Share
// @Router /shares/mine [get]
func (h *ShareHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	shares, err := h.shareService.ListMine(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shares)
}

// ListSharedWithMe returns the shares addressed to the user
// @Summary List shares received
// @Tags Shares
// @Security BearerAuth
// @Success 200 {array} models.Share
// @Router /shares/shared-with-me [get]
func (h *ShareHandler) ListSharedWithMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	shares, err := h.shareService.ListSharedWithMe(user.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shares)
}

// GetShare returns one share with its snapshots and feedback. Only the
// owner or the collaborator may read it.
// @Summary Get a share
// @Tags Shares
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 200 {object} models.ShareDetails
// @Failure 403 {object} map[string]string "Not involved in this share"
// @Failure 404 {object} map[string]string "Share not found"
// @Router /shares/{id} [get]
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	shareID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid share ID")
		return
	}

	details, err := h.shareService.GetShareDetails(shareID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if details.Share == nil {
		respondError(w, http.StatusNotFound, service.ErrShareNotFound.Error())
		return
	}

	if details.Share.OriginalUserID != user.ID && !strings.EqualFold(details.Share.CollaboratorEmail, user.Email) {
		respondError(w, http.StatusForbidden, "You are not involved in this share")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// DeleteShare removes a share the user created
// @Summary Delete a share
// @Tags Shares
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 409 {object} map[string]string "Feedback already started"
// @Router /shares/{id} [delete]
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	shareID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid share ID")
		return
	}

	if err := h.shareService.DeleteShare(user.ID, shareID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
