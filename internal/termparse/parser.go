// Package termparse extracts a court term schedule from pasted or OCR text. The
// extraction is a best-effort regular expression scrape; its output is a preview
// that a person reviews before anything is stored.
package termparse

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

// Parser turns term text into a TermImportData preview.
type Parser struct {
	now func() time.Time
}

// New constructs a Parser.
func New() *Parser {
	return &Parser{now: time.Now}
}

// WithClock overrides the clock used for placeholder dates.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

// Parse never fails: anything it cannot extract is reported as a warning.
func (p *Parser) Parse(text string, mode models.ImportMode) models.TermImportData {
	lines := normalizeLines(text)
	h := extractHeader(lines)

	headerIdx := findTableHeader(lines)
	resolved := mode
	switch mode {
	case models.ImportModeTable, models.ImportModeList:
	default:
		resolved = models.ImportModeList
		if headerIdx >= 0 {
			resolved = models.ImportModeTable
		}
	}

	var assignments []models.ImportAssignment
	var warnings []string
	if resolved == models.ImportModeTable {
		if headerIdx >= 0 {
			assignments = parseTable(lines, headerIdx)
		} else {
			warnings = append(warnings, "no table header with PART and JUSTICE columns found; falling back to list extraction")
			resolved = models.ImportModeList
			assignments = parseList(lines)
		}
	} else {
		assignments = parseList(lines)
	}
	for i := range assignments {
		if assignments[i].ClerkNames == nil {
			assignments[i].ClerkNames = []string{}
		}
	}

	data := models.TermImportData{
		Term: models.ImportTerm{
			TermNumber: h.termNumber,
			TermName:   h.termName,
			Location:   h.location,
		},
		Assignments: assignments,
		Personnel:   derivePersonnel(lines, assignments),
		Mode:        resolved,
		NeedsReview: true,
	}
	if !h.start.IsZero() {
		data.Term.StartDate = h.start.Format(models.DateLayout)
		data.Term.EndDate = h.end.Format(models.DateLayout)
	}

	warnings = append(warnings, headerWarnings(h)...)
	warnings = append(warnings, assignmentWarnings(assignments)...)

	if h.termNumber == "" && h.start.IsZero() && len(assignments) == 0 {
		today := p.now().UTC().Format(models.DateLayout)
		data.Placeholder = true
		data.Term.StartDate = today
		data.Term.EndDate = today
		warnings = append(warnings, "no term information could be extracted; complete the term manually")
	}

	if data.Assignments == nil {
		data.Assignments = []models.ImportAssignment{}
	}
	if data.Personnel == nil {
		data.Personnel = []models.ImportPersonnel{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	data.Warnings = warnings
	data.Confidence = confidence(h, assignments)
	return data
}

func normalizeLines(text string) []string {
	replacer := strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u2013", "-",
		"\u2014", "-",
		"\u00a0", " ",
		"\u2019", "'",
	)
	raw := strings.Split(replacer.Replace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func headerWarnings(h header) []string {
	var warnings []string
	if h.termNumber == "" {
		warnings = append(warnings, "term number not found")
	}
	if h.start.IsZero() {
		warnings = append(warnings, "date range not found")
	} else if h.end.Before(h.start) {
		warnings = append(warnings, "end date is before start date")
	}
	if h.location == "" {
		warnings = append(warnings, "location not found")
	}
	return warnings
}

func assignmentWarnings(assignments []models.ImportAssignment) []string {
	if len(assignments) == 0 {
		return []string{"no part assignments found"}
	}
	var warnings []string
	for i, a := range assignments {
		label := a.PartCode
		if label == "" {
			label = a.JusticeName
			warnings = append(warnings, fmt.Sprintf("assignment %d (%s) has no part code", i+1, label))
		}
		if a.JusticeName == "" {
			warnings = append(warnings, fmt.Sprintf("assignment %d (%s) has no justice", i+1, label))
		}
		if a.RoomNumber == "" {
			warnings = append(warnings, fmt.Sprintf("assignment %d (%s) has no room", i+1, label))
		}
	}
	return warnings
}

// confidence weighs header completeness at one half, having assignments at three
// tenths and room coverage at one fifth.
func confidence(h header, assignments []models.ImportAssignment) float64 {
	found := 0
	if h.termNumber != "" {
		found++
	}
	if !h.start.IsZero() {
		found += 2
	}
	if h.location != "" {
		found++
	}
	score := float64(found) / 4 * 0.5
	if len(assignments) > 0 {
		score += 0.3
		withRoom := 0
		for _, a := range assignments {
			if a.RoomNumber != "" {
				withRoom++
			}
		}
		score += 0.2 * float64(withRoom) / float64(len(assignments))
	}
	return math.Round(score*100) / 100
}
