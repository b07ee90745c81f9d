package timeline

import (
	"regexp"
	"strings"
)

type field int

const (
	fieldNone field = iota
	fieldCaseNumber
	fieldCaseTitle
	fieldClient
	fieldAttorney
	fieldParalegal
	fieldCaseType
	fieldOpened
	fieldStatus
)

var fieldLabels = map[string]field{
	"case #":                  fieldCaseNumber,
	"case#":                   fieldCaseNumber,
	"case no":                 fieldCaseNumber,
	"case number":             fieldCaseNumber,
	"matter #":                fieldCaseNumber,
	"matter number":           fieldCaseNumber,
	"file #":                  fieldCaseNumber,
	"file number":             fieldCaseNumber,
	"case":                    fieldCaseTitle,
	"case name":               fieldCaseTitle,
	"matter":                  fieldCaseTitle,
	"matter name":             fieldCaseTitle,
	"activities & timeline":   fieldCaseTitle,
	"activities and timeline": fieldCaseTitle,
	"timeline & activities":   fieldCaseTitle,
	"client":                  fieldClient,
	"client name":             fieldClient,
	"represented party":       fieldClient,
	"attorney":                fieldAttorney,
	"responsible attorney":    fieldAttorney,
	"lead attorney":           fieldAttorney,
	"assigned attorney":       fieldAttorney,
	"paralegal":               fieldParalegal,
	"case manager":            fieldParalegal,
	"case type":               fieldCaseType,
	"matter type":             fieldCaseType,
	"practice area":           fieldCaseType,
	"opened":                  fieldOpened,
	"date opened":             fieldOpened,
	"open date":               fieldOpened,
	"opened on":               fieldOpened,
	"status":                  fieldStatus,
	"case status":             fieldStatus,
}

var (
	bareCaseNumber = regexp.MustCompile(`(?i)^case\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]*)$`)
	titleActivity  = regexp.MustCompile(`(?i)^(.+?)\s+[-–—]\s+activit(?:y|ies)\b`)
	partySplit     = regexp.MustCompile(`\s+[-–—]\s+|\s*\(`)
)

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimSuffix(s, ".")
}

// splitLabel separates "Label: value". The label must be short so that
// sentences containing a colon are not mistaken for fields.
func splitLabel(line string) (field, string, bool) {
	i := strings.IndexByte(line, ':')
	if i <= 0 || i > 32 {
		if f, ok := fieldLabels[normalizeLabel(line)]; ok {
			return f, "", true
		}
		return fieldNone, "", false
	}

	f, ok := fieldLabels[normalizeLabel(line[:i])]
	if !ok {
		return fieldNone, "", false
	}
	return f, strings.TrimSpace(line[i+1:]), true
}

// extractMetadata scans header lines for label/value pairs. A label on a
// line of its own takes its value from the next non-empty line. The
// first occurrence of each field wins.
func extractMetadata(lines []string) Metadata {
	var md Metadata
	var client string
	seen := make(map[field]bool)

	set := func(f field, value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[f] {
			return
		}
		seen[f] = true

		switch f {
		case fieldCaseNumber:
			md.CaseNumber = &value
		case fieldCaseTitle:
			md.CaseTitle = &value
		case fieldClient:
			client = value
		case fieldAttorney:
			md.Attorney = &value
		case fieldParalegal:
			md.Paralegal = &value
		case fieldCaseType:
			md.CaseType = &value
		case fieldOpened:
			if token, _, ok := matchDate(value); ok {
				md.Opened = parseDate(token)
			}
		case fieldStatus:
			status := NormalizeStatus(value)
			md.Status = &status
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if _, _, dated := matchDate(line); dated {
			continue
		}

		if m := bareCaseNumber.FindStringSubmatch(line); m != nil {
			set(fieldCaseNumber, m[1])
			continue
		}

		f, value, ok := splitLabel(line)
		if !ok {
			if m := titleActivity.FindStringSubmatch(line); m != nil {
				set(fieldCaseTitle, m[1])
			}
			continue
		}

		if value == "" {
			if j := nextNonEmpty(lines, i+1); j >= 0 {
				if _, _, isLabel := splitLabel(strings.TrimSpace(lines[j])); !isLabel {
					value = lines[j]
					i = j
				}
			}
		}
		set(f, value)
	}

	if client != "" {
		md.ClientName = client
	} else if md.CaseTitle != nil {
		md.ClientName = partyFromTitle(*md.CaseTitle)
	}

	return md
}

func nextNonEmpty(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

// partyFromTitle takes the party portion of a case title such as
// "Sarah Johnson - I-485 Adjustment".
func partyFromTitle(title string) string {
	parts := partySplit.Split(title, 2)
	return strings.TrimSpace(parts[0])
}
