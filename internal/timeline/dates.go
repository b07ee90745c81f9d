package timeline

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

const monthNames = `jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec`

var dateAnchor = regexp.MustCompile(
	`^\s*(?:[-*•]\s*)?` +
		`(\d{1,2}/\d{1,2}/\d{2,4}` +
		`|\d{4}-\d{1,2}-\d{1,2}` +
		`|\d{1,2}-\d{1,2}-\d{4}` +
		`|(?i:(?:` + monthNames + `)[a-z]*\.?)\s+\d{1,2},?\s+\d{4})` +
		`(\s*(?:at\s+)?\d{1,2}:\d{2}(?::\d{2})?\s*(?i:[ap]\.?m\.?)?)?`,
)

// Slash dates are read month-first; dash dates with a trailing year are
// read day-first.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-1-2",
	"2-1-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// matchDate reports the date token at the start of line, the raw token
// text, and the byte offset where the remainder of the line begins.
func matchDate(line string) (token string, rest int, ok bool) {
	m := dateAnchor.FindStringSubmatchIndex(line)
	if m == nil {
		return "", 0, false
	}

	end := m[1]
	if end < len(line) {
		next := rune(line[end])
		if unicode.IsDigit(next) || unicode.IsLetter(next) {
			return "", 0, false
		}
	}

	return line[m[2]:m[3]], end, true
}

// parseDate tries each supported layout and returns nil when none fits.
func parseDate(token string) *time.Time {
	token = normalizeDateToken(token)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return &t
		}
	}
	return nil
}

func normalizeDateToken(token string) string {
	token = strings.Join(strings.Fields(token), " ")
	if i := strings.IndexByte(token, ' '); i > 0 {
		month := strings.TrimSuffix(token[:i], ".")
		month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
		if month == "Sept" {
			month = "Sep"
		}
		token = month + token[i:]
	}
	return token
}
