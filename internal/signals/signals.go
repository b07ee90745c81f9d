// Package signals derives deterministic conduct and payment indicators
// from a parsed case timeline. Extraction is pure: the same case always
// yields the same Summary and no external services are consulted.
package signals

import (
	"fmt"
	"strconv"
	"strings"
)

// Family names an independent group of markers.
type Family string

const (
	Hostility      Family = "hostility"
	Threat         Family = "threat"
	Delinquency    Family = "delinquency"
	ScopeExpansion Family = "scope_expansion"
	Friction       Family = "friction"
)

// Families lists every marker family in reporting order.
var Families = []Family{Hostility, Threat, Delinquency, ScopeExpansion, Friction}

// Signal is the result of one family over a timeline. Events holds the
// indices of triggering events in ascending order and Terms the markers
// that matched, in marker order. Present is true exactly when Count is
// nonzero.
type Signal struct {
	Present bool     `json:"present"`
	Count   int      `json:"count"`
	Events  []int    `json:"events"`
	Terms   []string `json:"terms,omitempty"`
}

// Amount is a currency amount in cents.
type Amount int64

// String formats the amount as dollars, e.g. "$1,200.00".
func (a Amount) String() string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}

	whole := strconv.FormatInt(int64(a)/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), int64(a)%100)
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Summary is the per-case signal set.
type Summary struct {
	Hostility      Signal `json:"hostility"`
	Threat         Signal `json:"threat"`
	Delinquency    Signal `json:"delinquency"`
	ScopeExpansion Signal `json:"scope_expansion"`
	Friction       Signal `json:"friction"`

	// PastDueBalance is the latest past-due balance found in a
	// billing-related event, and BalanceEvent the index of that event.
	PastDueBalance *Amount `json:"past_due_balance,omitempty"`
	BalanceEvent   *int    `json:"balance_event,omitempty"`
}

// Signal returns the signal for f, or nil for an unknown family.
func (s *Summary) Signal(f Family) *Signal {
	switch f {
	case Hostility:
		return &s.Hostility
	case Threat:
		return &s.Threat
	case Delinquency:
		return &s.Delinquency
	case ScopeExpansion:
		return &s.ScopeExpansion
	case Friction:
		return &s.Friction
	}
	return nil
}

// Flagged lists the families whose signal is present.
func (s *Summary) Flagged() []Family {
	var out []Family
	for _, f := range Families {
		if s.Signal(f).Present {
			out = append(out, f)
		}
	}
	return out
}
