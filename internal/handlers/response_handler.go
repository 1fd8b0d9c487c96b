package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"idp-tool/internal/middleware"
	"idp-tool/internal/models"
	"idp-tool/internal/service"
)

// ResponseHandler handles HTTP requests for a user's own responses
type ResponseHandler struct {
	responseService *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseService *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
	}
}

// currentUser builds the acting user from the authenticated request
func currentUser(r *http.Request) (*models.User, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		return nil, false
	}
	email, ok := middleware.GetUserEmail(r)
	if !ok {
		return nil, false
	}
	return &models.User{ID: userID, Email: email}, true
}

func rolePathValue(r *http.Request) (int, bool) {
	roleID, err := strconv.Atoi(r.PathValue("roleId"))
	return roleID, err == nil
}

// GetResponses returns the user's responses for a role, keyed by competency id
// @Summary Get own responses
// @Tags Responses
// @Security BearerAuth
// @Param roleId path int true "Role ID"
// @Success 200 {object} map[int]models.Response
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /roles/{roleId}/responses [get]
func (h *ResponseHandler) GetResponses(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	roleID, ok := rolePathValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid role ID")
		return
	}

	responses, err := h.responseService.LoadResponses(user, roleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, responses)
}

// SaveResponse stores the user's rating and notes for one competency
// @Summary Save a response
// @Tags Responses
// @Security BearerAuth
// @Accept json
// @Param roleId path int true "Role ID"
// @Param competencyId path int true "Competency ID"
// @Param request body models.Response true "Rating and notes"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /roles/{roleId}/responses/{competencyId} [put]
func (h *ResponseHandler) SaveResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	roleID, ok := rolePathValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid role ID")
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

	if err := h.responseService.SaveResponse(user, roleID, competencyID, response); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteResponse clears the user's rating and notes for one competency
// @Summary Delete a response
// @Tags Responses
// @Security BearerAuth
// @Param roleId path int true "Role ID"
// @Param competencyId path int true "Competency ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /roles/{roleId}/responses/{competencyId} [delete]
func (h *ResponseHandler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	roleID, ok := rolePathValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid role ID")
		return
	}

	competencyID, err := strconv.Atoi(r.PathValue("competencyId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid competency ID")
		return
	}

	if err := h.responseService.DeleteResponse(user, roleID, competencyID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProgress returns the completion status for a role
// @Summary Get completion progress
// @Tags Responses
// @Security BearerAuth
// @Param roleId path int true "Role ID"
// @Success 200 {object} models.RoleProgress
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /roles/{roleId}/progress [get]
func (h *ResponseHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	roleID, ok := rolePathValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid role ID")
		return
	}

	progress, err := h.responseService.Progress(user, roleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}
