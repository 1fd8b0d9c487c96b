package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"idp-tool/internal/models"
)

// Dataset holds the read-only reference data the tool is built around:
// roles, core competencies, assessment levels, and the competency lists
// per role. Loaded once at startup.
type Dataset struct {
	roles            []models.Role
	coreCompetencies []models.CoreCompetency
	assessments      []models.AssessmentLevel
	byRole           map[int][]models.Competency
}

// Load reads the reference JSON files from dir
func Load(dir string) (*Dataset, error) {
	var roles []models.Role
	if err := readJSON(filepath.Join(dir, "roles.json"), &roles); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	var cores []models.CoreCompetency
	if err := readJSON(filepath.Join(dir, "core_competencies.json"), &cores); err != nil {
		return nil, fmt.Errorf("failed to load core competencies: %w", err)
	}

	var assessments []models.AssessmentLevel
	if err := readJSON(filepath.Join(dir, "assessments.json"), &assessments); err != nil {
		return nil, fmt.Errorf("failed to load assessments: %w", err)
	}

	var competencies []models.Competency
	if err := readJSON(filepath.Join(dir, "competencies.json"), &competencies); err != nil {
		return nil, fmt.Errorf("failed to load competencies: %w", err)
	}

	return New(roles, cores, assessments, competencies), nil
}

// New builds a Dataset from already-parsed reference data
func New(roles []models.Role, cores []models.CoreCompetency, assessments []models.AssessmentLevel, competencies []models.Competency) *Dataset {
	byRole := make(map[int][]models.Competency)
	for _, c := range competencies {
		byRole[c.RoleID] = append(byRole[c.RoleID], c)
	}

	// Stable display order: core competency first, then competency id
	for _, list := range byRole {
		sort.Slice(list, func(i, j int) bool {
			if list[i].CoreCompetencyID != list[j].CoreCompetencyID {
				return list[i].CoreCompetencyID < list[j].CoreCompetencyID
			}
			return list[i].CompetencyID < list[j].CompetencyID
		})
	}

	sort.Slice(assessments, func(i, j int) bool {
		return assessments[i].AssessmentLevel < assessments[j].AssessmentLevel
	})

	return &Dataset{
		roles:            roles,
		coreCompetencies: cores,
		assessments:      assessments,
		byRole:           byRole,
	}
}

// Roles returns all roles
func (d *Dataset) Roles() []models.Role {
	return d.roles
}

// RoleByID returns the role with the given id, or nil if unknown
func (d *Dataset) RoleByID(roleID int) *models.Role {
	for i := range d.roles {
		if d.roles[i].RoleID == roleID {
			return &d.roles[i]
		}
	}
	return nil
}

// CoreCompetencies returns all core competency groups
func (d *Dataset) CoreCompetencies() []models.CoreCompetency {
	return d.coreCompetencies
}

// Assessments returns the rating scale in ascending level order
func (d *Dataset) Assessments() []models.AssessmentLevel {
	return d.assessments
}

// AssessmentByLevel returns the scale entry for a level, or nil if unknown
func (d *Dataset) AssessmentByLevel(level int) *models.AssessmentLevel {
	for i := range d.assessments {
		if d.assessments[i].AssessmentLevel == level {
			return &d.assessments[i]
		}
	}
	return nil
}

// CompetenciesByRole returns the ordered competency list for a role.
// Unknown roles yield an empty slice, not nil.
func (d *Dataset) CompetenciesByRole(roleID int) []models.Competency {
	if list, ok := d.byRole[roleID]; ok {
		return list
	}
	return []models.Competency{}
}

func readJSON(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}
