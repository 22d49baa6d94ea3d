package hazard

import "time"

// Active reports whether a is inside its effective time window at now.
//
// The start marker is Onset, falling back to Effective when Onset is empty.
// When both start and expiry are present and parse, the window is inclusive
// on both ends: start <= now <= expires. A missing or unparsable bound makes
// the alert count as active — the system prefers to over-warn rather than
// suppress a real hazard because of a formatting problem upstream.
//
// Comparisons happen on absolute instants; the offsets carried by the source
// strings are honoured, so any local-time rendering is purely presentational.
func Active(a Alert, now time.Time) bool {
	startStr := a.Onset
	if startStr == "" {
		startStr = a.Effective
	}
	if startStr == "" || a.Expires == "" {
		return true
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return true
	}
	expires, err := time.Parse(time.RFC3339, a.Expires)
	if err != nil {
		return true
	}

	return !now.Before(start) && !now.After(expires)
}
