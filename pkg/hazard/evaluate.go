package hazard

import "time"

// Evaluate reduces a batch of alerts to one Level at the instant now.
//
// Inactive alerts are excluded before classification. The remaining tiers are
// max-reduced over the order TierNone < TierMedium < TierHigh, so the result
// is independent of input order. An empty batch, or one with no active
// tiered alerts, yields LevelNormal.
//
// Every record is scanned even after a HIGH match so the outcome stays
// deterministic and MEDIUM bookkeeping is complete for diagnostics.
//
// Evaluate never fails: bad per-record data degrades per the Active rules.
// Callers that could not obtain a batch at all must not call Evaluate — they
// default to LevelMedium at the boundary instead.
func Evaluate(alerts []Alert, cfg Config, now time.Time) Level {
	if len(alerts) == 0 {
		return LevelNormal
	}

	var foundHigh, foundMedium bool
	for _, a := range alerts {
		if !Active(a, now) {
			continue
		}
		switch cfg.Classify(a.Event) {
		case TierHigh:
			foundHigh = true
		case TierMedium:
			foundMedium = true
		}
	}

	switch {
	case foundHigh:
		return LevelHigh
	case foundMedium:
		return LevelMedium
	default:
		return LevelNormal
	}
}
