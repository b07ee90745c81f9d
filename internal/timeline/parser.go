package timeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	timelineHeader = regexp.MustCompile(`(?i)^(?:activities\s*(?:&|and)\s*timeline|timeline\s*(?:&|and)\s*activities|(?:case\s+)?timeline|activity\s+(?:log|history|feed|timeline)|case\s+(?:activity|activities|history)|activities|history\s+of\s+activity)\s*:?$`)
	closingHeader  = regexp.MustCompile(`(?i)^(?:documents|contacts|tasks|custom\s+fields|related\s+(?:cases|contacts)|attachments|end\s+of\s+(?:report|document|timeline))\s*:?$`)
	pageMarker     = regexp.MustCompile(`(?i)^page\s+\d+(?:\s+of\s+\d+)?$`)
	columnHeader   = regexp.MustCompile(`(?i)^date\b[\s|,]+(?:time\b[\s|,]+)?(?:user|by|actor|type|activity|description)\b`)
	leadSeparator  = regexp.MustCompile(`^[\s|:\-–—]+`)
	timeCell       = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}(?::\d{2})?\s*(?:[ap]\.?m\.?)?$`)

	actorName   = `([A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*){0,3})`
	kindByActor = regexp.MustCompile(`^(?:([A-Za-z][A-Za-z ]{0,30}?)\s+)?[Bb]y:?\s+` + actorName + `\s*[:\-–—]\s*`)
	kindFrom    = regexp.MustCompile(`(?i:^((?:e-?mail|phone\s+call|call|text(?:\s+message)?|message|voicemail|letter)(?:\s+received)?)\s+from\s+)` + actorName + `\s*[:\-–—]\s*`)
	inlineBy    = regexp.MustCompile(`\b[Bb]y:\s*` + actorName)
	actorCell   = regexp.MustCompile(`^` + actorName + `$`)
)

var sectionHeaders = []struct {
	pattern  *regexp.Regexp
	category Category
}{
	{regexp.MustCompile(`(?i)^(?:communications?|messages?|e-?mails?|phone\s+calls?|calls?|text\s+messages?|correspondence)\s*:?$`), CategoryCommunication},
	{regexp.MustCompile(`(?i)^(?:billing(?:\s+(?:history|activity))?|invoices?|payments?|trust\s+(?:account|activity)|time\s+entries|accounts?\s+receivable)\s*:?$`), CategoryBilling},
	{regexp.MustCompile(`(?i)^(?:filings?|court\s+(?:filings?|dates?|activity)|hearings?|deadlines?)\s*:?$`), CategoryFiling},
	{regexp.MustCompile(`(?i)^(?:notes?|case\s+notes?|internal\s+notes?|staff\s+notes?)\s*:?$`), CategoryNote},
}

var kindCategories = []struct {
	words    []string
	category Category
}{
	{[]string{"note"}, CategoryNote},
	{[]string{"invoice", "payment", "billing", "charge", "retainer", "statement", "trust"}, CategoryBilling},
	{[]string{"filing", "filed", "motion", "hearing", "court"}, CategoryFiling},
	{[]string{"mail", "call", "phone", "text", "message", "voicemail", "letter", "meeting", "communication"}, CategoryCommunication},
}

// Parser turns RawDocuments into Cases. It holds no per-document state
// and is safe for concurrent use.
type Parser struct {
	cfg Config
}

// NewParser creates a Parser from a finalized Config.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse extracts metadata and events from doc. Parsing the same document
// twice yields identical results.
func (p *Parser) Parse(doc RawDocument) (*Case, error) {
	text := doc.Text()
	if !utf8.ValidString(text) || replacementHeavy(text) {
		return nil, extractionError(doc.ID, ErrEncoding)
	}

	text = normalizeText(text)
	if strings.TrimSpace(text) == "" {
		return nil, extractionError(doc.ID, ErrNoText)
	}

	lines := strings.Split(text, "\n")

	var header, region []string
	if start := findTimelineHeader(lines); start >= 0 {
		header = lines[:start]
		region = lines[start+1:]
	} else {
		first := firstDatedLine(lines)
		if first < 0 {
			return nil, extractionError(doc.ID, ErrNoTimeline)
		}
		header = lines[:min(first, p.cfg.HeaderScanLines)]
		region = lines[first:]
	}

	md := extractMetadata(header)
	if md.ClientName == "" {
		md.ClientName = nameFromDocument(doc.ID)
	}

	return &Case{
		DocumentID: doc.ID,
		Metadata:   md,
		Events:     p.events(region),
	}, nil
}

func normalizeText(s string) string {
	return strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u00a0", " ",
		"\t", " ",
		"\ufeff", "",
	).Replace(s)
}

// replacementHeavy reports text where more than a tenth of the runes are
// U+FFFD, the usual result of decoding with the wrong character set.
func replacementHeavy(s string) bool {
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return false
	}
	return strings.Count(s, "\uFFFD")*10 > total
}

func findTimelineHeader(lines []string) int {
	for i, line := range lines {
		if timelineHeader.MatchString(strings.TrimSpace(line)) {
			return i
		}
	}
	return -1
}

func firstDatedLine(lines []string) int {
	for i, line := range lines {
		if _, _, ok := matchDate(line); ok {
			return i
		}
	}
	return -1
}

type block struct {
	rawDate  string
	lines    []string
	category Category
}

// events splits the timeline region into date-anchored blocks. Text
// before the first date becomes an undated event so nothing is lost.
func (p *Parser) events(region []string) []Event {
	var blocks []*block
	var current *block
	category := CategoryGeneral

	for _, raw := range region {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case closingHeader.MatchString(line):
			return p.build(blocks)
		case pageMarker.MatchString(line), columnHeader.MatchString(line):
			continue
		}

		if c, ok := sectionCategory(line); ok {
			category = c
			current = nil
			continue
		}

		if token, rest, ok := matchDate(line); ok {
			current = &block{rawDate: token, category: category}
			if remainder := strings.TrimSpace(line[rest:]); remainder != "" {
				current.lines = append(current.lines, remainder)
			}
			blocks = append(blocks, current)
			continue
		}

		if current == nil {
			current = &block{category: category}
			blocks = append(blocks, current)
		}
		current.lines = append(current.lines, line)
	}

	return p.build(blocks)
}

func sectionCategory(line string) (Category, bool) {
	for _, h := range sectionHeaders {
		if h.pattern.MatchString(line) {
			return h.category, true
		}
	}
	return "", false
}

func (p *Parser) build(blocks []*block) []Event {
	events := make([]Event, 0, len(blocks))
	for _, b := range blocks {
		content := leadSeparator.ReplaceAllString(strings.Join(b.lines, " "), "")
		actor, kind, content := splitActor(content)

		category := b.category
		if c, ok := kindCategory(kind); ok {
			category = c
		}

		ev := Event{
			Index:    len(events),
			RawDate:  b.rawDate,
			Actor:    actor,
			Category: category,
			Content:  strings.TrimSpace(content),
		}
		if b.rawDate != "" {
			ev.Date = parseDate(b.rawDate)
		}
		ev.Content, ev.Truncated = p.truncate(ev.Content)

		events = append(events, ev)
	}
	return events
}

// splitActor removes a recognizable actor prefix from content and returns
// the actor, the entry kind that accompanied it, and the remaining text.
// A line is a pipe row when it has three or more cells, or two cells the
// first of which is a name; any other "|" is part of the prose.
func splitActor(content string) (actor *string, kind, rest string) {
	if strings.Contains(content, "|") {
		var parts []string
		for part := range strings.SplitSeq(content, "|") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 1 && timeCell.MatchString(parts[0]) {
			parts = parts[1:]
		}
		switch {
		case len(parts) >= 3:
			return &parts[0], parts[1], strings.Join(parts[2:], " | ")
		case len(parts) == 2 && actorCell.MatchString(parts[0]):
			return &parts[0], "", parts[1]
		case len(parts) == 1:
			return nil, "", parts[0]
		}
	}

	if m := kindByActor.FindStringSubmatch(content); m != nil {
		name := m[2]
		return &name, m[1], content[len(m[0]):]
	}

	if m := kindFrom.FindStringSubmatch(content); m != nil {
		name := m[2]
		return &name, m[1], content[len(m[0]):]
	}

	if m := inlineBy.FindStringSubmatch(content); m != nil {
		name := m[1]
		return &name, "", content
	}

	return nil, "", content
}

func kindCategory(kind string) (Category, bool) {
	kind = strings.ToLower(kind)
	if kind == "" {
		return "", false
	}
	for _, k := range kindCategories {
		for _, w := range k.words {
			if strings.Contains(kind, w) {
				return k.category, true
			}
		}
	}
	return "", false
}

func (p *Parser) truncate(content string) (string, bool) {
	if p.cfg.MaxContentLength <= 0 {
		return content, false
	}
	limit := max(p.cfg.MaxContentLength, p.cfg.MinContentLength)
	if utf8.RuneCountInString(content) <= limit {
		return content, false
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:limit])), true
}
