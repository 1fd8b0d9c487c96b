package handlers

import (
	"net/http"
	"strconv"

	"idp-tool/internal/dataset"
)

// DatasetHandler serves the read-only reference data
type DatasetHandler struct {
	data *dataset.Dataset
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(data *dataset.Dataset) *DatasetHandler {
	return &DatasetHandler{data: data}
}

// GetRoles returns all roles
// @Summary List roles
// @Tags Reference
// @Success 200 {array} models.Role
// @Router /reference/roles [get]
func (h *DatasetHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.data.Roles())
}

// GetAssessments returns the rating scale
// @Summary List assessment levels
// @Tags Reference
// @Success 200 {array} models.AssessmentLevel
// @Router /reference/assessments [get]
func (h *DatasetHandler) GetAssessments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.data.Assessments())
}

// GetRoleCompetencies returns the competencies of one role
// @Summary List competencies for a role
// @Tags Reference
// @Param roleId path int true "Role ID"
// @Success 200 {array} models.Competency
// @Failure 404 {object} map[string]string "Unknown role"
// @Router /roles/{roleId}/competencies [get]
func (h *DatasetHandler) GetRoleCompetencies(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.Atoi(r.PathValue("roleId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid role ID")
		return
	}

	if h.data.RoleByID(roleID) == nil {
		respondError(w, http.StatusNotFound, "Unknown role")
		return
	}

	respondJSON(w, http.StatusOK, h.data.CompetenciesByRole(roleID))
}
