package termparse

import "github.com/noah-isme/court-facilities-api/internal/models"

// parseList walks the lines in order. A line naming a part, or a justice when the
// current assignment already has one, starts a new assignment; every other line
// enriches the current one.
func parseList(lines []string) []models.ImportAssignment {
	var (
		result  []models.ImportAssignment
		current *models.ImportAssignment
	)
	flush := func() {
		if current != nil && (current.PartCode != "" || current.JusticeName != "") {
			result = append(result, *current)
		}
		current = nil
	}

	for _, line := range lines {
		if adminJudgeRe.MatchString(line) || chiefClerkRe.MatchString(line) {
			continue
		}
		part := matchPart(line)
		justice := matchJustice(line)

		switch {
		case part != "" && current != nil && current.PartCode == "" && current.JusticeName != "" && justice == "":
			current.PartCode = part
		case part != "" || (justice != "" && (current == nil || current.JusticeName != "")):
			flush()
			current = &models.ImportAssignment{PartCode: part, JusticeName: justice}
		case justice != "" && current != nil:
			current.JusticeName = justice
		}
		if current == nil {
			continue
		}
		enrich(current, line)
	}
	flush()
	return result
}
