package handlers

import (
	"fmt"
	"net/http"
	"time"

	"idp-tool/internal/service"
)

// ExportHandler serves the CSV download of a user's responses
type ExportHandler struct {
	responseService *service.ResponseService
	exportService   *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(responseService *service.ResponseService, exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		responseService: responseService,
		exportService:   exportService,
	}
}

// Export downloads the user's responses for a role as CSV
// @Summary Export responses as CSV
// @Tags Responses
// @Security BearerAuth
// @Produce text/csv
// @Param roleId path int true "Role ID"
// @Success 200 {string} string "CSV content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /roles/{roleId}/export [get]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.exportService.BuildRows(roleID, responses)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := h.exportService.Filename(user.Email, time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write([]byte(h.exportService.ToCSV(rows)))
}
