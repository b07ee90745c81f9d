package signals

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JaimeStill/auditor/internal/timeline"
)

type marker struct {
	term    string
	pattern *regexp.Regexp
}

func compileMarker(m string) (marker, error) {
	if expr, ok := strings.CutPrefix(m, "re:"); ok {
		re, err := regexp.Compile(`(?i)` + expr)
		if err != nil {
			return marker{}, err
		}
		return marker{term: expr, pattern: re}, nil
	}

	words := strings.Fields(m)
	if len(words) == 0 {
		return marker{}, errEmptyMarker
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	trimmed := strings.TrimSpace(m)
	first, _ := utf8.DecodeRuneInString(trimmed)
	last, _ := utf8.DecodeLastRuneInString(trimmed)

	phrase := strings.Join(words, `\s+`)
	if isWord(first) {
		phrase = `\b` + phrase
	}
	if isWord(last) {
		phrase += `\b`
	}

	re, err := regexp.Compile(`(?i)` + phrase)
	if err != nil {
		return marker{}, err
	}
	return marker{term: strings.ToLower(strings.Join(strings.Fields(m), " ")), pattern: re}, nil
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

var (
	billingVocabulary = regexp.MustCompile(`(?i)\b(?:invoice|balance|payment|paid|billing|retainer|owe[sd]?|owing|finance|account)\b`)

	amount      = `\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d{2}))?`
	dueBefore   = regexp.MustCompile(`(?i)\b(?:past[\s-]due|overdue|outstanding|unpaid|delinquent)\b(?:\s+(?:balance|amount))?(?:\s+(?:of|is|was|now|at|remains))*\s*[:=]?\s*\(?` + amount)
	dueAfter    = regexp.MustCompile(`(?i)` + amount + `\)?\s+(?:(?:is|was|now|remains|still)\s+)*(?:past[\s-]due|overdue|outstanding|unpaid)\b`)
	balanceOwed = regexp.MustCompile(`(?i)\b(?:balance\s+(?:due|owed)|owes|owed|owing)(?:\s+(?:of|is|was|now|at))*\s*[:=]?\s*\(?` + amount)
)

// Extractor applies compiled marker families to case timelines. It is
// immutable after construction and safe for concurrent use.
type Extractor struct {
	families map[Family][]marker
}

// New compiles the markers in cfg. Call cfg.Finalize first to load
// defaults.
func New(cfg Config) (*Extractor, error) {
	x := &Extractor{families: make(map[Family][]marker, len(Families))}
	for _, f := range Families {
		for _, m := range *cfg.markers(f) {
			compiled, err := compileMarker(m)
			if err != nil {
				return nil, err
			}
			x.families[f] = append(x.families[f], compiled)
		}
	}
	return x, nil
}

// Extract computes the signal summary for c.
func (x *Extractor) Extract(c *timeline.Case) Summary {
	var s Summary
	hits := make(map[Family]map[string]bool, len(Families))

	var (
		balance     *Amount
		balanceAt   = -1
		zeroBalance = make(map[int]bool)
	)

	for i, ev := range c.Events {
		if billingRelated(ev) {
			if amt, ok := extractBalance(ev.Content); ok {
				if amt == 0 {
					zeroBalance[i] = true
				}
				if balanceAt < 0 || later(c.Events[balanceAt], ev) {
					balance = &amt
					balanceAt = i
				}
			}
		}

		for _, f := range Families {
			if f == Delinquency && zeroBalance[i] {
				continue
			}
			matched := false
			for _, m := range x.families[f] {
				if m.pattern.MatchString(ev.Content) {
					matched = true
					if hits[f] == nil {
						hits[f] = make(map[string]bool)
					}
					hits[f][m.term] = true
				}
			}
			if matched {
				sig := s.Signal(f)
				sig.Count++
				sig.Events = append(sig.Events, ev.Index)
			}
		}
	}

	for _, f := range Families {
		sig := s.Signal(f)
		for _, m := range x.families[f] {
			if hits[f][m.term] && !slices.Contains(sig.Terms, m.term) {
				sig.Terms = append(sig.Terms, m.term)
			}
		}
		if sig.Events == nil {
			sig.Events = []int{}
		}
		sig.Present = sig.Count > 0
	}

	if balance != nil {
		idx := c.Events[balanceAt].Index
		s.PastDueBalance = balance
		s.BalanceEvent = &idx
		x.applyBalance(&s, c.Events, balanceAt)
	}

	return s
}

// applyBalance folds the latest balance into the delinquency signal. A
// nonzero balance sets the flag on its own; a zero balance recorded after
// every lexical hit means the account was brought current, and the
// superseded hits are dropped with the flag.
func (x *Extractor) applyBalance(s *Summary, events []timeline.Event, at int) {
	sig := &s.Delinquency
	if *s.PastDueBalance > 0 {
		sig.Present = true
		if pos, found := slices.BinarySearch(sig.Events, events[at].Index); !found {
			sig.Count++
			sig.Events = slices.Insert(sig.Events, pos, events[at].Index)
		}
		return
	}

	for _, idx := range sig.Events {
		if !later(events[idx], events[at]) {
			return
		}
	}
	*sig = Signal{Events: []int{}}
}

func billingRelated(ev timeline.Event) bool {
	return ev.Category == timeline.CategoryBilling || billingVocabulary.MatchString(ev.Content)
}

// extractBalance returns the last labeled past-due amount in content.
func extractBalance(content string) (Amount, bool) {
	var last []string
	lastAt := -1
	for _, re := range []*regexp.Regexp{dueBefore, dueAfter, balanceOwed} {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			if loc[0] > lastAt {
				lastAt = loc[0]
				last = submatches(content, loc)
			}
		}
	}
	if last == nil {
		return 0, false
	}
	return parseAmount(last[1], last[2]), true
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func parseAmount(dollars, cents string) Amount {
	d, _ := strconv.ParseInt(strings.ReplaceAll(dollars, ",", ""), 10, 64)
	c, _ := strconv.ParseInt(cents, 10, 64)
	return Amount(d*100 + c)
}

// later reports whether b comes after a. Dated events compare by date
// with source order breaking ties; otherwise source order decides.
func later(a, b timeline.Event) bool {
	if a.Date != nil && b.Date != nil && !a.Date.Equal(*b.Date) {
		return b.Date.After(*a.Date)
	}
	return b.Index > a.Index
}
