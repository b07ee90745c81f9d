package classifications

import (
	"fmt"
	"slices"
	"strings"
)

// Consistent reports whether r satisfies the fixed taxonomy invariants
// for l: E-Special never continues, and Normal always continues. Normal
// survives validation only when no delinquency signal is present, since
// the delinquency override relabels it first.
func Consistent(l Label, r Recommendation) bool {
	switch l {
	case LabelESpecial:
		return r != RecommendContinue
	case LabelNormal:
		return r == RecommendContinue
	}
	return true
}

// Rules decides which recommendations are allowed per label. The fixed
// invariants always apply; a policy may narrow any label further.
type Rules struct {
	allowed map[Label][]Recommendation
}

// NewRules builds Rules from a policy recommendation table keyed by
// label. Entries use the same tolerant spellings as service answers.
func NewRules(table map[string][]string) (Rules, error) {
	rules := Rules{allowed: make(map[Label][]Recommendation, len(table))}

	for rawLabel, rawRecs := range table {
		l, err := ParseLabel(rawLabel)
		if err != nil {
			return Rules{}, fmt.Errorf("%w: %w", ErrPolicyRules, err)
		}
		if _, dup := rules.allowed[l]; dup {
			return Rules{}, fmt.Errorf("%w: %s listed twice", ErrPolicyRules, l)
		}

		recs := make([]Recommendation, 0, len(rawRecs))
		for _, raw := range rawRecs {
			r, err := ParseRecommendation(raw)
			if err != nil {
				return Rules{}, fmt.Errorf("%w: %s: %w", ErrPolicyRules, l, err)
			}
			if !Consistent(l, r) {
				return Rules{}, fmt.Errorf("%w: %s cannot allow %s", ErrPolicyRules, l, r)
			}
			if !slices.Contains(recs, r) {
				recs = append(recs, r)
			}
		}
		if len(recs) == 0 {
			return Rules{}, fmt.Errorf("%w: %s allows no recommendation", ErrPolicyRules, l)
		}

		slices.SortFunc(recs, func(a, b Recommendation) int { return a.severity() - b.severity() })
		rules.allowed[l] = recs
	}

	return rules, nil
}

// Allows reports whether r is an allowed recommendation for l.
func (rs Rules) Allows(l Label, r Recommendation) bool {
	if !Consistent(l, r) {
		return false
	}
	if recs, ok := rs.allowed[l]; ok {
		return slices.Contains(recs, r)
	}
	return true
}

// Describe renders the policy table for the reasoning prompt. It is
// empty when the policy restricts no label.
func (rs Rules) Describe() string {
	var sb strings.Builder
	for _, l := range Labels {
		recs, ok := rs.allowed[l]
		if !ok {
			continue
		}
		names := make([]string, len(recs))
		for i, r := range recs {
			names[i] = string(r)
		}
		fmt.Fprintf(&sb, "- %s: %s\n", l, strings.Join(names, ", "))
	}
	return sb.String()
}

// escalate returns the least severe recommendation allowed for l that is
// at least as severe as r, or the most severe allowed one.
func (rs Rules) escalate(l Label, r Recommendation) Recommendation {
	var allowed []Recommendation
	for _, candidate := range Recommendations {
		if rs.Allows(l, candidate) {
			allowed = append(allowed, candidate)
		}
	}
	for _, candidate := range allowed {
		if candidate.severity() >= r.severity() {
			return candidate
		}
	}
	return allowed[len(allowed)-1]
}
