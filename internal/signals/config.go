package signals

import (
	"fmt"
	"slices"
)

// Config holds the marker list of each family. A marker is either a plain
// phrase, matched case-insensitively on word boundaries, or a regular
// expression prefixed with "re:". A nil list keeps the default markers.
type Config struct {
	Hostility      []string `toml:"hostility"`
	Threat         []string `toml:"threat"`
	Delinquency    []string `toml:"delinquency"`
	ScopeExpansion []string `toml:"scope_expansion"`
	Friction       []string `toml:"friction"`
}

// Finalize fills unset families with default markers and checks that
// every marker compiles.
func (c *Config) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Merge replaces each family whose overlay list is set.
func (c *Config) Merge(overlay *Config) {
	for _, f := range Families {
		if src := overlay.markers(f); *src != nil {
			*c.markers(f) = slices.Clone(*src)
		}
	}
}

func (c *Config) markers(f Family) *[]string {
	switch f {
	case Hostility:
		return &c.Hostility
	case Threat:
		return &c.Threat
	case Delinquency:
		return &c.Delinquency
	case ScopeExpansion:
		return &c.ScopeExpansion
	case Friction:
		return &c.Friction
	}
	return nil
}

func (c *Config) loadDefaults() {
	for _, f := range Families {
		if dst := c.markers(f); *dst == nil {
			*dst = slices.Clone(defaultMarkers[f])
		}
	}
}

func (c *Config) validate() error {
	for _, f := range Families {
		for _, m := range *c.markers(f) {
			if _, err := compileMarker(m); err != nil {
				return fmt.Errorf("%s marker %q: %w", f, m, err)
			}
		}
	}
	return nil
}

var defaultMarkers = map[Family][]string{
	Hostility: {
		`re:\b(?:yell|scream|shout)(?:s|ed|ing)?\b`,
		"raised voice",
		`re:\b(?:fuck\w*|shit\w*|damn|bitch\w*|asshole\w*)\b`,
		"profanity",
		"cursing",
		"vulgar",
		`re:\b(?:fraud|theft|steal(?:ing)?|stole|criminal|scam(?:mer|ming)?|con artist)\b`,
		`re:\b(?:pound|slam)(?:s|ed|ing|med|ming)?\b`,
		"aggressive",
		"intimidating",
		"hostile",
		"only speak to",
		"only talk to",
		`re:\brefus(?:e|ed|es|ing) to speak\b`,
		`re:\b(?:hung up on|hanging up)\b`,
	},
	Threat: {
		"lawsuit",
		`re:\bsu(?:e|ed|ing)\b`,
		"legal action",
		"taking you to court",
		"state bar",
		"bar complaint",
		"report you",
		`re:\breport(?:s|ed|ing)?\s+(?:the\s+)?firm\b`,
		`re:\bfile\s+(?:a\s+)?complaint\b`,
		"physical harm",
		`re:\b(?:hurt|harm|beat)\s+(?:you|him|her|them|staff|someone)\b`,
		"violence",
		"bad review",
		"yelp",
		"google review",
		"destroy your reputation",
	},
	Delinquency: {
		`re:\bpast[\s-]due\b`,
		"overdue",
		"delinquent",
		"unpaid",
		"outstanding balance",
		`re:\bmissed\s+(?:\w+\s+)?payment\b`,
		`re:\bpayment\s+(?:\w+\s+)?missed\b`,
		`re:\bpayment\s+(?:still\s+)?not\s+received\b`,
		"returned payment",
		`re:\b(?:card|payment)\s+declined\b`,
	},
	ScopeExpansion: {
		"also need",
		"in addition",
		"can you also",
		"outside of contract",
		`re:\b(?:outside|beyond|out of)\s+(?:the\s+)?scope\b`,
	},
	Friction: {
		`re:\bcall(?:s|ed|ing)?\s+(?:again|multiple times|repeatedly|daily|constantly)\b`,
		"excessive contact",
		`re:\b(?:dissatisfied|unhappy|frustrated|concerned|worried|not satisfied)\b`,
		"anything happening",
		"any update",
		"what's going on",
		"when will",
		`re:\bcomplain(?:s|t|ts|ed|ing)?\b`,
		"not happy with",
		"issue with service",
		`re:\b(?:speak|talk)\s+(?:with|to)\s+(?:a\s+|the\s+)?(?:manager|attorney|supervisor)\b`,
		"escalate",
		"someone in charge",
	},
}
