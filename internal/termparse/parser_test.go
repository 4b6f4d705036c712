package termparse

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const listText = `SUPREME COURT OF THE STATE OF NEW YORK
TERM IV
January 6 – January 31, 2025
60 Centre Street, New York, NY 10007

Administrative Judge: Hon. Adam Silvera
Part 12 Hon. John A. Smith Room 300
Clerks: Jane Doe, Mark Lee
Sgt. Brown  Tel: 646-386-3200  Fax: 212-401-9000  Ext. 3321
Part IA-5 Hon. Mary Jones, Rm. 1234A
Clerk: Ann Park
`

const tableText = `TERM 4
Dec 29 - Jan 23, 2026
Supreme Court, Civil Branch
PART | JUSTICE | ROOM | EXT | CLERKS
-----|---------|------|-----|-------
12 | Hon. John Smith | 300 | 3321 | Jane Doe, Mark Lee
IA-5 | Mary Jones, J.S.C. | Rm 1234A | 4410 | Ann Park
     |                 |      |      | Tom Ray
`

func TestParseListMode(t *testing.T) {
	data := New().Parse(listText, models.ImportModeAuto)

	assert.Equal(t, models.ImportModeList, data.Mode)
	assert.Equal(t, models.ImportTerm{
		TermNumber: "IV",
		TermName:   "TERM IV",
		StartDate:  "2025-01-06",
		EndDate:    "2025-01-31",
		Location:   "60 Centre Street, New York, NY 10007",
	}, data.Term)

	want := []models.ImportAssignment{
		{
			PartCode:     "12",
			JusticeName:  "John A. Smith",
			RoomNumber:   "300",
			ClerkNames:   []string{"Jane Doe", "Mark Lee"},
			SergeantName: "Brown",
			Phone:        "646-386-3200",
			Fax:          "212-401-9000",
			TelExtension: "3321",
		},
		{
			PartCode:    "IA-5",
			JusticeName: "Mary Jones",
			RoomNumber:  "1234A",
			ClerkNames:  []string{"Ann Park"},
		},
	}
	if diff := cmp.Diff(want, data.Assignments); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}

	wantPersonnel := []models.ImportPersonnel{
		{Name: "Adam Silvera", Role: models.PersonnelRoleAdministrativeJudge},
		{Name: "John A. Smith", Role: models.PersonnelRoleJustice, Phone: "646-386-3200", RoomNumber: "300"},
		{Name: "Jane Doe", Role: models.PersonnelRoleClerk, Extension: "3321", RoomNumber: "300"},
		{Name: "Mark Lee", Role: models.PersonnelRoleClerk, Extension: "3321", RoomNumber: "300"},
		{Name: "Brown", Role: models.PersonnelRoleSergeant, RoomNumber: "300"},
		{Name: "Mary Jones", Role: models.PersonnelRoleJustice, RoomNumber: "1234A"},
		{Name: "Ann Park", Role: models.PersonnelRoleClerk, RoomNumber: "1234A"},
	}
	if diff := cmp.Diff(wantPersonnel, data.Personnel); diff != "" {
		t.Fatalf("personnel mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, data.NeedsReview)
	assert.False(t, data.Placeholder)
	assert.Empty(t, data.Warnings)
	assert.Equal(t, 1.0, data.Confidence)
}

func TestParseTableMode(t *testing.T) {
	data := New().Parse(tableText, models.ImportModeAuto)

	assert.Equal(t, models.ImportModeTable, data.Mode)
	assert.Equal(t, "IV", data.Term.TermNumber)
	assert.Equal(t, "2025-12-29", data.Term.StartDate)
	assert.Equal(t, "2026-01-23", data.Term.EndDate)
	assert.Equal(t, "Supreme Court, Civil Branch", data.Term.Location)

	want := []models.ImportAssignment{
		{PartCode: "12", JusticeName: "John Smith", RoomNumber: "300", TelExtension: "3321", ClerkNames: []string{"Jane Doe", "Mark Lee"}},
		{PartCode: "IA-5", JusticeName: "Mary Jones", RoomNumber: "1234A", TelExtension: "4410", ClerkNames: []string{"Ann Park", "Tom Ray"}},
	}
	if diff := cmp.Diff(want, data.Assignments); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, data.Personnel, 6)
	assert.Empty(t, data.Warnings)
}

func TestParseTableModeWithoutHeaderFallsBack(t *testing.T) {
	data := New().Parse("Part 40 Hon. Alice Grant Room 522", models.ImportModeTable)

	assert.Equal(t, models.ImportModeList, data.Mode)
	require.Len(t, data.Assignments, 1)
	assert.Equal(t, "40", data.Assignments[0].PartCode)
	assert.Contains(t, data.Warnings, "no table header with PART and JUSTICE columns found; falling back to list extraction")
}

func TestParseJusticeBeforePart(t *testing.T) {
	data := New().Parse("Hon. Alice Grant\nPart 40\nRoom 522", models.ImportModeList)

	want := []models.ImportAssignment{{PartCode: "40", JusticeName: "Alice Grant", RoomNumber: "522", ClerkNames: []string{}}}
	if diff := cmp.Diff(want, data.Assignments); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyTextProducesPlaceholder(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC) }
	data := New().WithClock(clock).Parse("  \n\n", models.ImportModeAuto)

	assert.True(t, data.Placeholder)
	assert.True(t, data.NeedsReview)
	assert.Equal(t, "", data.Term.TermNumber)
	assert.Equal(t, "2025-03-04", data.Term.StartDate)
	assert.Equal(t, "2025-03-04", data.Term.EndDate)
	assert.Empty(t, data.Assignments)
	assert.NotNil(t, data.Assignments)
	assert.Equal(t, 0.0, data.Confidence)
	assert.Equal(t, []string{
		"term number not found",
		"date range not found",
		"location not found",
		"no part assignments found",
		"no term information could be extracted; complete the term manually",
	}, data.Warnings)
}

func TestParseNumericDatesAndInversion(t *testing.T) {
	data := New().Parse("Term No. 2\n02/10/2025 - 01/31/25\nPart 3 Hon. Kim Lo", models.ImportModeList)

	assert.Equal(t, "II", data.Term.TermNumber)
	assert.Equal(t, "2025-02-10", data.Term.StartDate)
	assert.Equal(t, "2025-01-31", data.Term.EndDate)
	assert.Contains(t, data.Warnings, "end date is before start date")
	assert.Contains(t, data.Warnings, "assignment 1 (3) has no room")
}

func TestMatchTermNumber(t *testing.T) {
	cases := map[string]string{
		"TERM IV":             "IV",
		"Term 4":              "IV",
		"Term #12":            "XII",
		"TERM CIVIL CALENDAR": "",
		"Term 2025":           "",
		"no term here":        "",
		"term iv":             "IV",
		"TERM L":              "L",
		"Term xlii":           "XLII",
		"Term 45":             "XLV",
	}
	for line, want := range cases {
		assert.Equal(t, want, matchTermNumber(line), line)
	}
}

func TestMatchDateRangeSameMonth(t *testing.T) {
	start, end, ok := matchDateRange("January 6 - 31, 2025")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), end)

	_, _, ok = matchDateRange("February 30 - March 2, 2025")
	assert.False(t, ok)
}

func TestSplitRow(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, splitRow("| A | B | C |", true))
	assert.Equal(t, []string{"", "B"}, splitRow("   | B", false))
	assert.Equal(t, []string{"A", "B"}, splitRow("A\tB", false))
	assert.Equal(t, []string{"Part 1", "Hon. X Y"}, splitRow("  Part 1    Hon. X Y  ", false))
}

func TestParseCourtroomWording(t *testing.T) {
	data := New().Parse("TERM IV\nPart 12 Hon. John Smith Courtroom 300\nPart 3 Hon. Ann Lee Ctrm. 1234A", models.ImportModeAuto)

	assert.Equal(t, models.ImportModeList, data.Mode)
	want := []models.ImportAssignment{
		{PartCode: "12", JusticeName: "John Smith", RoomNumber: "300", ClerkNames: []string{}},
		{PartCode: "3", JusticeName: "Ann Lee", RoomNumber: "1234A", ClerkNames: []string{}},
	}
	if diff := cmp.Diff(want, data.Assignments); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, data.Warnings, "assignment 1 (12) has no room")
}

func TestParseIgnoresHeadingsAndProse(t *testing.T) {
	texts := map[string]string{
		"heading": "SUPREME COURT JUSTICE ASSIGNMENTS\nTERM IV\nPart 12 Hon. John Smith Room 300",
		"prose":   "TERM IV\nThis schedule is part of the annual plan.\nPART OF THE ANNUAL PLAN\nPart 12 Hon. John Smith Room 300",
	}
	want := []models.ImportAssignment{
		{PartCode: "12", JusticeName: "John Smith", RoomNumber: "300", ClerkNames: []string{}},
	}
	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			data := New().Parse(text, models.ImportModeAuto)
			if diff := cmp.Diff(want, data.Assignments); diff != "" {
				t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
			}
			assert.Empty(t, data.Term.Location)
		})
	}
}

func TestMatchPart(t *testing.T) {
	cases := map[string]string{
		"Part 12":          "12",
		"part 40B":         "40B",
		"Part IA-5":        "IA-5",
		"Part TAP":         "TAP",
		"part of the plan": "",
		"PART OF THE PLAN": "",
		"IA-7 Hon. X":      "IA-7",
	}
	for line, want := range cases {
		assert.Equal(t, want, matchPart(line), line)
	}
}

func TestMatchJusticeRejectsHeadings(t *testing.T) {
	assert.Equal(t, "", matchJustice("SUPREME COURT JUSTICE ASSIGNMENTS"))
	assert.Equal(t, "", matchJustice("Justice: SMITH"))
	assert.Equal(t, "Mary Jones", matchJustice("Justice Mary Jones"))
	assert.Equal(t, "Mary Jones", matchJustice("Hon. Mary Jones Calendar"))
}
