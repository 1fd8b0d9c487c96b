package service

import (
	"fmt"
	"strings"
	"time"

	"idp-tool/internal/dataset"
	"idp-tool/internal/models"
)

// ExportService renders a user's responses as a CSV download
type ExportService struct {
	data *dataset.Dataset
}

// NewExportService creates a new export service
func NewExportService(data *dataset.Dataset) *ExportService {
	return &ExportService{data: data}
}

// BuildRows produces the export table for one role: a header row
// followed by one row per competency in display order. The assessment
// column reads "<level> - <label>"; unanswered cells stay empty. Notes
// are flattened to a single trimmed line.
func (s *ExportService) BuildRows(roleID int, responses map[int]models.Response) ([][]string, error) {
	role := s.data.RoleByID(roleID)
	if role == nil {
		return nil, ErrUnknownRole
	}

	rows := [][]string{
		{"Role", "Core Competency", "Competency", "Assessment", "Notes"},
	}

	for _, competency := range s.data.CompetenciesByRole(roleID) {
		response := responses[competency.CompetencyID]

		assessment := ""
		if response.AssessmentLevel != nil {
			label := ""
			if entry := s.data.AssessmentByLevel(*response.AssessmentLevel); entry != nil {
				label = entry.Assessment
			}
			assessment = fmt.Sprintf("%d - %s", *response.AssessmentLevel, label)
		}

		rows = append(rows, []string{
			competency.RoleDescription,
			competency.CoreCompetencyDescription,
			competency.CompetencyDescription,
			assessment,
			flattenNotes(response.Notes),
		})
	}

	return rows, nil
}

// ToCSV renders rows as CSV text. Every field is quoted, embedded
// quotes are doubled, and newlines inside fields collapse to spaces so
// each record stays on one line.
func (s *ExportService) ToCSV(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(escapeCSVField(field))
			b.WriteByte('"')
		}
		b.WriteString("\r\n")
	}
	return b.String()
}

// flattenNotes collapses newlines to spaces and trims the result so a
// note always occupies one tidy cell
func flattenNotes(notes string) string {
	notes = strings.ReplaceAll(notes, "\r\n", " ")
	notes = strings.ReplaceAll(notes, "\n", " ")
	notes = strings.ReplaceAll(notes, "\r", " ")
	return strings.TrimSpace(notes)
}

func escapeCSVField(field string) string {
	field = strings.ReplaceAll(field, "\r\n", " ")
	field = strings.ReplaceAll(field, "\n", " ")
	field = strings.ReplaceAll(field, "\r", " ")
	return strings.ReplaceAll(field, `"`, `""`)
}

// Filename builds the download name for an export, dated MM-DD-YYYY
func (s *ExportService) Filename(email string, now time.Time) string {
	return fmt.Sprintf("%s_idp_%s.csv", now.Format("01-02-2006"), email)
}
