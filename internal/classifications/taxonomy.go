// Package classifications implements the classification engine. It sends
// a parsed case, its signal summary, and the policy text to a reasoning
// service, then validates the answer against the closed taxonomy and the
// deterministic guardrails before producing a Result.
package classifications

import (
	"fmt"
	"slices"
	"strings"
)

// Label is a taxonomy label describing the represented party.
type Label string

const (
	LabelNormal            Label = "Normal"
	LabelSpecial           Label = "Special"
	LabelESpecial          Label = "E-Special"
	LabelDelinquent        Label = "Delinquent"
	LabelDelinquentSpecial Label = "Delinquent+Special"
)

// Labels lists the taxonomy in reporting order.
var Labels = []Label{LabelNormal, LabelSpecial, LabelESpecial, LabelDelinquent, LabelDelinquentSpecial}

var labelForms = map[string]Label{
	"normal":             LabelNormal,
	"special":            LabelSpecial,
	"especial":           LabelESpecial,
	"excessivelyspecial": LabelESpecial,
	"extremelyspecial":   LabelESpecial,
	"delinquent":         LabelDelinquent,
	"delinquent+special": LabelDelinquentSpecial,
	"special+delinquent": LabelDelinquentSpecial,
	"delinquentspecial":  LabelDelinquentSpecial,
}

// ParseLabel accepts the canonical labels and the spellings services
// commonly produce, such as "Delinquent + Special" or "E-Special Client".
func ParseLabel(s string) (Label, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, " client")
	key = strings.NewReplacer(" and ", "+", "&", "+", "(", "", ")", "").Replace(key)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	if l, ok := labelForms[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
}

// Delinquent reports whether the label includes the delinquent state.
func (l Label) Delinquent() bool {
	return l == LabelDelinquent || l == LabelDelinquentSpecial
}

// Recommendation is the action recommended for a case.
type Recommendation string

const (
	RecommendContinue        Recommendation = "Continue"
	RecommendCure            Recommendation = "Cure"
	RecommendTerminate       Recommendation = "Terminate"
	RecommendExecutiveReview Recommendation = "ExecutiveReview"
)

// Recommendations lists the actions from least to most severe.
var Recommendations = []Recommendation{RecommendContinue, RecommendCure, RecommendExecutiveReview, RecommendTerminate}

// ParseRecommendation accepts canonical values and phrasings such as
// "Send Notice to Cure" or "Executive Review Required".
func ParseRecommendation(s string) (Recommendation, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch {
	case key == "":
	case strings.Contains(key, "executive"):
		return RecommendExecutiveReview, nil
	case strings.Contains(key, "terminat"):
		return RecommendTerminate, nil
	case strings.Contains(key, "cure"):
		return RecommendCure, nil
	case strings.Contains(key, "continue"):
		return RecommendContinue, nil
	}
	return "", fmt.Errorf("%w: unrecognized recommendation %q", ErrMalformed, s)
}

func (r Recommendation) severity() int {
	return slices.Index(Recommendations, r)
}

// NoticeType is the formal notice associated with a case.
type NoticeType string

const (
	NoticeCure         NoticeType = "Cure"
	NoticeTermination  NoticeType = "Termination"
	NoticeNone         NoticeType = "None"
	NoticeUndetermined NoticeType = "Undetermined"
)

// NoticeTypes lists every notice type in reporting order.
var NoticeTypes = []NoticeType{NoticeCure, NoticeTermination, NoticeNone, NoticeUndetermined}

// ParseNoticeType maps service phrasings onto the closed set. The second
// result is false when the value was not recognized. A leading negation
// wins over the notice keywords, so "No cure notice sent" is None.
func ParseNoticeType(s string) (NoticeType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch first := leadingWord(key); {
	case strings.Contains(key, "cannot"), strings.Contains(key, "undetermined"),
		strings.Contains(key, "unclear"), strings.Contains(key, "unknown"):
		return NoticeUndetermined, true
	case first == "no", first == "none", first == "not":
		return NoticeNone, true
	case strings.Contains(key, "terminat"):
		return NoticeTermination, true
	case strings.Contains(key, "cure"):
		return NoticeCure, true
	}
	return NoticeUndetermined, false
}

// FirmFault is the tri-state assessment of the firm's own contribution.
type FirmFault string

const (
	FaultYes     FirmFault = "Yes"
	FaultNo      FirmFault = "No"
	FaultUnclear FirmFault = "Unclear"
)

// FirmFaults lists every firm-fault value in reporting order.
var FirmFaults = []FirmFault{FaultYes, FaultNo, FaultUnclear}

// ParseFirmFault reads the leading word of a firm-fault answer, so "No
// firm fault identified" is No and "Unclear from records" is Unclear.
func ParseFirmFault(s string) (FirmFault, bool) {
	switch leadingWord(strings.ToLower(s)) {
	case "":
		return FaultUnclear, false
	case "yes":
		return FaultYes, true
	case "no":
		return FaultNo, true
	case "unclear", "unknown", "undetermined", "cannot":
		return FaultUnclear, true
	}
	return FaultUnclear, false
}

func leadingWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ':' || r == ';' || r == '-'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
