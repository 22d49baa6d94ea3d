package hazard

import (
	"fmt"
	"strings"
)

// Alert is one hazard notice from the upstream source. The evaluator treats
// it as immutable input.
//
// Timestamps are kept as the raw ISO-8601 strings the source sent. Parsing
// happens inside the time-window filter so that a malformed value degrades
// to "active" for that one record instead of failing the whole batch decode.
type Alert struct {
	// Event is the free-text event name, e.g. "High Surf Warning". It is
	// matched by substring containment against the configured keyword lists.
	Event string

	// Onset is when the alert begins being active; may be empty.
	Onset string

	// Effective is the alternate start marker, used when Onset is empty.
	Effective string

	// Expires is when the alert stops being active; may be empty.
	Expires string

	// Display pass-through; never consulted by classification.
	Headline    string
	Description string
	Instruction string
}

// Config is the event-name-to-severity mapping. Build it once and treat it
// as immutable; hot-reloads must swap in a new value.
type Config struct {
	// HighKeywords are event substrings that imply LevelHigh,
	// e.g. "High Surf Warning", "Coastal Flood Warning".
	HighKeywords []string `yaml:"high_keywords"`

	// MediumKeywords are event substrings that imply LevelMedium,
	// e.g. "Rip Current Statement", "Beach Hazards Statement".
	MediumKeywords []string `yaml:"medium_keywords"`

	// CaseInsensitive lowers both the event name and the keywords before
	// matching. Off by default: the NWS event field uses stable title case.
	CaseInsensitive bool `yaml:"case_insensitive"`
}

// DefaultConfig returns the stock coastal keyword mapping. Deployments with
// different hazards override the lists in their config file.
func DefaultConfig() Config {
	return Config{
		HighKeywords: []string{
			"High Surf Warning",
			"Coastal Flood Warning",
			"Storm Warning",
			"Hurricane Warning",
		},
		MediumKeywords: []string{
			"High Surf Advisory",
			"Beach Hazards Statement",
			"Coastal Flood Advisory",
			"Special Weather Statement",
			"Rip Current Statement",
		},
	}
}

// Validate checks the keyword configuration. A bad config is a deployment
// error and must be fatal at startup, not deferred into the poll loop.
func (c Config) Validate() error {
	if len(c.HighKeywords) == 0 {
		return fmt.Errorf("hazard config: high_keywords must not be empty")
	}
	for i, kw := range c.HighKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("hazard config: high_keywords[%d] is blank", i)
		}
	}
	for i, kw := range c.MediumKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("hazard config: medium_keywords[%d] is blank", i)
		}
	}
	return nil
}

// Classify maps an event name to its severity tier. High keywords are tested
// before medium ones, so an event matching both lists contributes HIGH only.
// An event matching neither list is TierNone — not an error, just irrelevant.
func (c Config) Classify(event string) Tier {
	if c.CaseInsensitive {
		event = strings.ToLower(event)
	}
	if c.containsAny(event, c.HighKeywords) {
		return TierHigh
	}
	if c.containsAny(event, c.MediumKeywords) {
		return TierMedium
	}
	return TierNone
}

func (c Config) containsAny(event string, keywords []string) bool {
	for _, kw := range keywords {
		if c.CaseInsensitive {
			kw = strings.ToLower(kw)
		}
		if strings.Contains(event, kw) {
			return true
		}
	}
	return false
}
