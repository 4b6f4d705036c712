package termparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var (
	termNumberRe = regexp.MustCompile(`\b(?i:term)\s*(?:(?i:no\.?|number|#)\s*)?((?i:[ivxlc]{1,7})|\d{1,2})\b`)
	termLineRe   = regexp.MustCompile(`(?i)\bterm\b`)
	yearRe       = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// "January 6 - January 31, 2025", "Dec. 29, 2025 through Jan 23, 2026"
	longRangeRe = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\s*(?:-|to|through|thru)\s*` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{4})\b`)
	// "January 6 - 31, 2025"
	sameMonthRangeRe = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?\s*(?:-|to|through|thru)\s*(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{4})\b`)
	// "01/06/2025 - 01/31/2025"
	numericRangeRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\s*(?:-|(?i:to|through|thru))\s*(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)

	addressRe    = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9.' ]+?\s(?:street|st\.?|avenue|ave\.?|boulevard|blvd\.?|place|pl\.?|road|rd\.?|plaza|square|sq\.?)(?:\s|,|$)`)
	courthouseRe = regexp.MustCompile(`(?i)\b(?:supreme court|courthouse|court house|county court|civil court|criminal court|family court)\b`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

type header struct {
	termNumber string
	termName   string
	start      time.Time
	end        time.Time
	location   string
}

func extractHeader(lines []string) header {
	var h header
	for _, line := range lines {
		if h.termNumber == "" {
			if number := matchTermNumber(line); number != "" {
				h.termNumber = number
				if len(line) <= 80 {
					h.termName = collapseSpaces(line)
				}
			}
		}
		if h.start.IsZero() {
			if start, end, ok := matchDateRange(line); ok {
				h.start, h.end = start, end
			}
		}
	}
	h.location = extractLocation(lines)

	if h.termName == "" {
		for _, line := range lines {
			if termLineRe.MatchString(line) && len(line) <= 80 {
				h.termName = collapseSpaces(line)
				break
			}
		}
	}
	if h.termName == "" && h.termNumber != "" {
		h.termName = "Term " + h.termNumber
		if !h.start.IsZero() {
			h.termName = fmt.Sprintf("%s %d", h.termName, h.start.Year())
		}
	}
	return h
}

// matchTermNumber returns the term number as an upper-case roman numeral.
func matchTermNumber(line string) string {
	for _, m := range termNumberRe.FindAllStringSubmatch(line, -1) {
		raw := m[1]
		if n, err := strconv.Atoi(raw); err == nil {
			if n > 0 {
				return toRoman(n)
			}
			continue
		}
		raw = strings.ToUpper(raw)
		if n := fromRoman(raw); n > 0 && toRoman(n) == raw {
			return raw
		}
	}
	return ""
}

func matchDateRange(line string) (time.Time, time.Time, bool) {
	if m := longRangeRe.FindStringSubmatch(line); m != nil {
		endYear, _ := strconv.Atoi(m[6])
		end, ok := buildDate(endYear, m[4], m[5])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		startYear := endYear
		explicit := m[3] != ""
		if explicit {
			startYear, _ = strconv.Atoi(m[3])
		}
		start, ok := buildDate(startYear, m[1], m[2])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		if !explicit && start.After(end) {
			start = start.AddDate(-1, 0, 0)
		}
		return start, end, true
	}
	if m := sameMonthRangeRe.FindStringSubmatch(line); m != nil {
		year, _ := strconv.Atoi(m[4])
		start, ok := buildDate(year, m[1], m[2])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		end, ok := buildDate(year, m[1], m[3])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}
	if m := numericRangeRe.FindStringSubmatch(line); m != nil {
		start, ok := buildNumericDate(m[1], m[2], m[3])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		end, ok := buildNumericDate(m[4], m[5], m[6])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

func buildDate(year int, monthName, dayRaw string) (time.Time, bool) {
	key := strings.ToLower(monthName)
	if len(key) > 3 {
		key = key[:3]
	}
	month, ok := monthIndex[key]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayRaw)
	if err != nil {
		return time.Time{}, false
	}
	return validDate(year, month, day)
}

func buildNumericDate(monthRaw, dayRaw, yearRaw string) (time.Time, bool) {
	month, err := strconv.Atoi(monthRaw)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayRaw)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearRaw)
	if err != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	return validDate(year, time.Month(month), day)
}

func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func extractLocation(lines []string) string {
	for _, line := range lines {
		if addressRe.MatchString(line) {
			return collapseSpaces(line)
		}
	}
	for _, line := range lines {
		if courthouseRe.MatchString(line) && !termNumberRe.MatchString(line) && !isHeadingLine(line) {
			return collapseSpaces(line)
		}
	}
	return ""
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String()
}

func fromRoman(s string) int {
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := values[s[i]]
		if !ok {
			return 0
		}
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}
