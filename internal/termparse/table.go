package termparse

import (
	"regexp"
	"strings"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

type column int

const (
	colUnknown column = iota
	colPart
	colJustice
	colRoom
	colPhone
	colFax
	colExtension
	colSergeant
	colClerks
)

var (
	wideSpaceRe  = regexp.MustCompile(`\s{2,}`)
	separatorRe  = regexp.MustCompile(`^[\s|+\-=_:]*$`)
	justiceTrim  = regexp.MustCompile(`(?i)^hon(?:orable)?\.?\s+|,?\s*j\.?\s?s\.?\s?c\.?$`)
	extensionOne = regexp.MustCompile(`^\d{4,5}$`)
)

// findTableHeader returns the index of the first line that reads like a column
// header naming both a part and a justice, or -1.
func findTableHeader(lines []string) int {
	for i, line := range lines {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "PART") && (strings.Contains(upper, "JUSTICE") || strings.Contains(upper, "JUDGE")) {
			if len(splitRow(line, isBordered(line))) >= 2 {
				return i
			}
		}
	}
	return -1
}

// splitRow splits a table line into cells. Bordered tables start and end each
// row with a pipe; those outer pipes are dropped before splitting.
func splitRow(line string, bordered bool) []string {
	var cells []string
	switch {
	case strings.Contains(line, "|"):
		if bordered {
			line = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(line), "|"), "|")
		}
		cells = strings.Split(line, "|")
	case strings.Contains(line, "\t"):
		cells = strings.Split(line, "\t")
	default:
		cells = wideSpaceRe.Split(strings.TrimSpace(line), -1)
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isBordered(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func classifyHeader(cell string) column {
	upper := strings.ToUpper(cell)
	switch {
	case strings.Contains(upper, "PART"):
		return colPart
	case strings.Contains(upper, "JUSTICE"), strings.Contains(upper, "JUDGE"):
		return colJustice
	case strings.Contains(upper, "ROOM"), upper == "RM", upper == "RM.":
		return colRoom
	case strings.Contains(upper, "FAX"):
		return colFax
	case strings.Contains(upper, "EXT"), strings.Contains(upper, "TEL"):
		return colExtension
	case strings.Contains(upper, "PHONE"):
		return colPhone
	case strings.Contains(upper, "SGT"), strings.Contains(upper, "SERGEANT"):
		return colSergeant
	case strings.Contains(upper, "CLERK"):
		return colClerks
	default:
		return colUnknown
	}
}

func parseTable(lines []string, headerIdx int) []models.ImportAssignment {
	bordered := isBordered(lines[headerIdx])
	headerCells := splitRow(lines[headerIdx], bordered)
	columns := make([]column, len(headerCells))
	for i, cell := range headerCells {
		columns[i] = classifyHeader(cell)
	}

	var result []models.ImportAssignment
	for _, line := range lines[headerIdx+1:] {
		if separatorRe.MatchString(line) {
			continue
		}
		cells := splitRow(line, bordered)
		if len(cells) == 0 {
			continue
		}

		var row models.ImportAssignment
		for i, cell := range cells {
			if i >= len(columns) || cell == "" {
				continue
			}
			applyCell(&row, columns[i], cell)
		}
		if len(cells) < len(columns) {
			enrich(&row, line)
		}

		if row.PartCode == "" && row.JusticeName == "" {
			if len(result) > 0 {
				mergeContinuation(&result[len(result)-1], row)
			}
			continue
		}
		result = append(result, row)
	}
	return result
}

func applyCell(row *models.ImportAssignment, col column, cell string) {
	switch col {
	case colPart:
		if part := matchPart("Part " + strings.TrimPrefix(strings.TrimPrefix(cell, "Part "), "PART ")); part != "" {
			row.PartCode = part
		} else {
			row.PartCode = strings.ToUpper(collapseSpaces(cell))
		}
	case colJustice:
		row.JusticeName = collapseSpaces(justiceTrim.ReplaceAllString(cell, ""))
	case colRoom:
		if room := matchRoom("Room " + cell); room != "" {
			row.RoomNumber = room
		} else {
			row.RoomNumber = strings.ToUpper(collapseSpaces(cell))
		}
	case colPhone:
		row.Phone = cell
	case colFax:
		row.Fax = cell
	case colExtension:
		if extensionOne.MatchString(cell) {
			row.TelExtension = cell
		} else {
			row.Phone = cell
		}
	case colSergeant:
		row.SergeantName = cleanName(strings.TrimPrefix(strings.TrimPrefix(cell, "Sgt. "), "Sgt "))
	case colClerks:
		row.ClerkNames = appendUnique(row.ClerkNames, splitNames(cell)...)
	}
}

func mergeContinuation(prev *models.ImportAssignment, row models.ImportAssignment) {
	if prev.RoomNumber == "" {
		prev.RoomNumber = row.RoomNumber
	}
	if prev.Phone == "" {
		prev.Phone = row.Phone
	}
	if prev.Fax == "" {
		prev.Fax = row.Fax
	}
	if prev.TelExtension == "" {
		prev.TelExtension = row.TelExtension
	}
	if prev.SergeantName == "" {
		prev.SergeantName = row.SergeantName
	}
	prev.ClerkNames = appendUnique(prev.ClerkNames, row.ClerkNames...)
}
