package hazard

import "testing"

func testConfig() Config {
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

func TestClassify(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		event string
		want  Tier
	}{
		{"High Surf Warning", TierHigh},
		{"Coastal Flood Warning", TierHigh},
		{"Rip Current Statement", TierMedium},
		{"Beach Hazards Statement", TierMedium},
		{"Winter Storm Watch", TierNone},
		{"", TierNone},
	}
	for _, c := range cases {
		if got := cfg.Classify(c.event); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.event, got, c.want)
		}
	}
}

func TestClassify_SubstringContainment(t *testing.T) {
	cfg := testConfig()
	// Upstream event names carry qualifiers; the keyword only needs to be
	// contained, not equal.
	if got := cfg.Classify("High Surf Warning for Northern Coastline"); got != TierHigh {
		t.Errorf("qualified event: got %v, want TierHigh", got)
	}
}

func TestClassify_HighBeatsMedium(t *testing.T) {
	cfg := Config{
		HighKeywords:   []string{"Surf"},
		MediumKeywords: []string{"High Surf Advisory"},
	}
	// The event matches both lists; high is tested first and wins.
	if got := cfg.Classify("High Surf Advisory"); got != TierHigh {
		t.Errorf("overlapping keywords: got %v, want TierHigh", got)
	}
}

func TestClassify_CaseSensitiveByDefault(t *testing.T) {
	cfg := testConfig()
	if got := cfg.Classify("HIGH SURF WARNING"); got != TierNone {
		t.Errorf("default matching is case-sensitive: got %v, want TierNone", got)
	}
}

func TestClassify_CaseInsensitiveToggle(t *testing.T) {
	cfg := testConfig()
	cfg.CaseInsensitive = true
	if got := cfg.Classify("HIGH SURF WARNING"); got != TierHigh {
		t.Errorf("case_insensitive: got %v, want TierHigh", got)
	}
	if got := cfg.Classify("rip current statement"); got != TierMedium {
		t.Errorf("case_insensitive: got %v, want TierMedium", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	if err := (Config{}).Validate(); err == nil {
		t.Error("empty high_keywords should be rejected")
	}

	bad := testConfig()
	bad.MediumKeywords = append(bad.MediumKeywords, "   ")
	if err := bad.Validate(); err == nil {
		t.Error("blank keyword should be rejected")
	}
}
