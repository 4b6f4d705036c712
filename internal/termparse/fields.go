package termparse

import (
	"regexp"
	"strings"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

const (
	namePattern     = `[A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*){0,3}`
	letterPartCodes = `IA|TAP|DDP|SCP|ATP|MOT|GAP`
	roomKeyword     = `courtroom|crtrm|ctrm|room|rm`
)

var (
	// Part values are upper case and carry a digit unless they are a known letter code.
	partKeywordRe = regexp.MustCompile(`\b(?i:part)\s+([A-Z]{0,4}-?\d{1,3}[A-Z]?|` + letterPartCodes + `)\b`)
	partLeadingRe = regexp.MustCompile(`^\s*([A-Z]{1,4}-\d{1,3}[A-Z]?)\b`)

	justiceRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:hon(?:orable)?)\.?\s+(` + namePattern + `)`),
		regexp.MustCompile(`\b(?i:justice|judge)\s*:?\s+(` + namePattern + `)`),
		regexp.MustCompile(`(` + namePattern + `),\s*J\.?\s?S\.?\s?C\.?`),
	}

	roomRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:` + roomKeyword + `)\.?\s*(?:no\.?\s*)?#?\s*(\d{1,4}\s?-?[A-Z]?)\b`),
		regexp.MustCompile(`#\s*(\d{2,4}[A-Za-z]?)\b`),
	}

	faxRe       = regexp.MustCompile(`(?i)\bfax\.?\s*[:#]?\s*(\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}|\d{3}[\s.-]?\d{4}|\d{4,5})\b`)
	extensionRe = regexp.MustCompile(`(?i)\b(?:tel|ext|extension)\.?\s*[:#]?\s*(\d{4,5})\b`)
	phoneRe     = regexp.MustCompile(`\(?\b\d{3}\)?[\s.-]?\d{3}[-.]\d{4}\b`)
	sergeantRe  = regexp.MustCompile(`\b(?i:sgt|sergeant)\.?\s*:?\s+([A-Z][A-Za-z'\-]+(?:\s+[A-Z][A-Za-z'\-]+)?)`)
	clerksRe    = regexp.MustCompile(`\b(?i:clerks?)\s*[:\-]?\s+(.+)$`)
	clerkStopRe = regexp.MustCompile(`(?i)\b(?:sgt|sergeant|fax|tel|ext|phone|` + roomKeyword + `)\b`)
	clerkSplit  = regexp.MustCompile(`\s*(?:,|/|;|&|\band\b)\s*`)

	adminJudgeRe = regexp.MustCompile(`(?i)^\s*administrative\s+judge\s*[:\-]\s*(?:hon(?:orable)?\.?\s+)?(.+)$`)
	chiefClerkRe = regexp.MustCompile(`(?i)^\s*chief\s+clerk\s*[:\-]\s*(.+)$`)
)

var nameStopWords = map[string]struct{}{
	"room": {}, "rm": {}, "rm.": {}, "courtroom": {}, "ctrm": {}, "ctrm.": {}, "crtrm": {}, "crtrm.": {}, "part": {}, "fax": {}, "tel": {}, "tel.": {}, "ext": {}, "ext.": {},
	"sgt": {}, "sgt.": {}, "sergeant": {}, "clerk": {}, "clerks": {}, "phone": {}, "j.s.c.": {}, "jsc": {},
}

func matchPart(line string) string {
	if m := partKeywordRe.FindStringSubmatch(line); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := partLeadingRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// Words that mark a heading rather than a person, as in "SUPREME COURT JUSTICE ASSIGNMENTS".
var headingWords = map[string]struct{}{
	"assignment": {}, "assignments": {}, "schedule": {}, "schedules": {}, "calendar": {},
	"roster": {}, "parts": {},
}

func matchJustice(line string) string {
	for i, re := range justiceRes {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := cutAtHeading(cleanName(m[1]))
		if name == "" {
			continue
		}
		// after a bare "justice" or "judge" a lone upper-case word is a heading
		if i == 1 && !strings.Contains(name, " ") && name == strings.ToUpper(name) {
			continue
		}
		return name
	}
	return ""
}

func cutAtHeading(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if _, ok := headingWords[strings.ToLower(strings.Trim(w, ".,:;"))]; ok {
			return strings.TrimRight(strings.Join(words[:i], " "), " ,;:")
		}
	}
	return name
}

func isHeadingLine(line string) bool {
	for _, w := range strings.Fields(line) {
		if _, ok := headingWords[strings.ToLower(strings.Trim(w, ".,:;"))]; ok {
			return true
		}
	}
	return false
}

// cleanName cuts a captured name at the first field keyword.
func cleanName(raw string) string {
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := nameStopWords[strings.ToLower(strings.TrimRight(w, ",:;"))]; stop {
			break
		}
		kept = append(kept, w)
	}
	name := strings.TrimRight(strings.Join(kept, " "), " ,;:")
	if strings.HasSuffix(name, ".") {
		last := kept[len(kept)-1]
		if len(last) > 2 {
			name = strings.TrimSuffix(name, ".")
		}
	}
	return name
}

func matchRoom(line string) string {
	for _, re := range roomRes {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.ToUpper(strings.Join(strings.Fields(m[1]), ""))
		}
	}
	return ""
}

func matchClerks(line string) []string {
	m := clerksRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	rest := m[1]
	if loc := clerkStopRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return splitNames(rest)
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range clerkSplit.Split(raw, -1) {
		name := cleanName(strings.TrimSpace(part))
		if name == "" || !startsUpper(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// enrich fills empty fields of the assignment from the line.
func enrich(a *models.ImportAssignment, line string) {
	rest := line
	if a.Fax == "" {
		if loc := faxRe.FindStringSubmatchIndex(rest); loc != nil {
			a.Fax = strings.TrimSpace(rest[loc[2]:loc[3]])
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
		}
	} else if loc := faxRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
	}
	if a.TelExtension == "" {
		if m := extensionRe.FindStringSubmatch(rest); m != nil {
			a.TelExtension = m[1]
		}
	}
	if a.Phone == "" {
		if m := phoneRe.FindString(rest); m != "" {
			a.Phone = strings.TrimSpace(m)
		}
	}
	if a.RoomNumber == "" {
		a.RoomNumber = matchRoom(line)
	}
	if a.SergeantName == "" {
		if m := sergeantRe.FindStringSubmatch(line); m != nil {
			a.SergeantName = cleanName(m[1])
		}
	}
	a.ClerkNames = appendUnique(a.ClerkNames, matchClerks(line)...)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if strings.EqualFold(existing, v) {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

func startsUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
