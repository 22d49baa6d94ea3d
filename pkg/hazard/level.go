package hazard

import "fmt"

// Level is the single reduced output of the evaluator for one poll cycle.
// The zero value is LevelNormal, the bottom of the order.
type Level int

const (
	LevelNormal Level = iota
	LevelMedium
	LevelHigh
)

// DeviceCode renders l in the vocabulary used by device-side call sites.
func (l Level) DeviceCode() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelMedium:
		return "MEDIUM"
	default:
		return "NORMAL"
	}
}

// ServiceCode renders l in the vocabulary used by the HTTP service API.
func (l Level) ServiceCode() string {
	switch l {
	case LevelHigh:
		return "DANGER"
	case LevelMedium:
		return "CAUTION"
	default:
		return "SAFE"
	}
}

// LEDColor returns the sign color associated with l.
func (l Level) LEDColor() string {
	switch l {
	case LevelHigh:
		return "RED"
	case LevelMedium:
		return "YELLOW"
	default:
		return "GREEN"
	}
}

func (l Level) String() string { return l.DeviceCode() }

// ParseDeviceCode parses the NORMAL|MEDIUM|HIGH vocabulary.
func ParseDeviceCode(s string) (Level, error) {
	switch s {
	case "NORMAL":
		return LevelNormal, nil
	case "MEDIUM":
		return LevelMedium, nil
	case "HIGH":
		return LevelHigh, nil
	}
	return LevelNormal, fmt.Errorf("hazard: unknown device level %q", s)
}

// ParseServiceCode parses the SAFE|CAUTION|DANGER vocabulary.
func ParseServiceCode(s string) (Level, error) {
	switch s {
	case "SAFE":
		return LevelNormal, nil
	case "CAUTION":
		return LevelMedium, nil
	case "DANGER":
		return LevelHigh, nil
	}
	return LevelNormal, fmt.Errorf("hazard: unknown service level %q", s)
}

// Tier is the severity contribution of a single alert: TierNone < TierMedium < TierHigh.
type Tier int

const (
	TierNone Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	default:
		return "NONE"
	}
}

// Level converts a tier to the alert level it implies on its own.
func (t Tier) Level() Level {
	switch t {
	case TierHigh:
		return LevelHigh
	case TierMedium:
		return LevelMedium
	default:
		return LevelNormal
	}
}
