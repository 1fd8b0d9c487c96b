package service

import (
	"idp-tool/internal/dataset"
	"idp-tool/internal/models"
)

func intPtr(v int) *int { return &v }

// testDataset returns a small reference dataset: one role with two
// competencies on a three-point scale
func testDataset() *dataset.Dataset {
	roles := []models.Role{
		{RoleID: 1, RoleDescription: "Software Engineer"},
	}
	cores := []models.CoreCompetency{
		{CoreCompetencyID: 1, CoreCompetencyDescription: "Technical Execution"},
		{CoreCompetencyID: 2, CoreCompetencyDescription: "Communication"},
	}
	assessments := []models.AssessmentLevel{
		{AssessmentLevel: 1, Assessment: "Novice"},
		{AssessmentLevel: 2, Assessment: "Proficient"},
		{AssessmentLevel: 3, Assessment: "Expert"},
	}
	competencies := []models.Competency{
		{CompetencyID: 101, CompetencyDescription: "Writes maintainable code", RoleID: 1, RoleDescription: "Software Engineer", CoreCompetencyID: 1, CoreCompetencyDescription: "Technical Execution"},
		{CompetencyID: 102, CompetencyDescription: "Communicates clearly", RoleID: 1, RoleDescription: "Software Engineer", CoreCompetencyID: 2, CoreCompetencyDescription: "Communication"},
	}
	return dataset.New(roles, cores, assessments, competencies)
}
