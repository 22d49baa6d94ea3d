package hazard

import "testing"

func TestLevelVocabularies(t *testing.T) {
	cases := []struct {
		level   Level
		device  string
		service string
		led     string
	}{
		{LevelNormal, "NORMAL", "SAFE", "GREEN"},
		{LevelMedium, "MEDIUM", "CAUTION", "YELLOW"},
		{LevelHigh, "HIGH", "DANGER", "RED"},
	}
	for _, c := range cases {
		if got := c.level.DeviceCode(); got != c.device {
			t.Errorf("%v.DeviceCode() = %q, want %q", c.level, got, c.device)
		}
		if got := c.level.ServiceCode(); got != c.service {
			t.Errorf("%v.ServiceCode() = %q, want %q", c.level, got, c.service)
		}
		if got := c.level.LEDColor(); got != c.led {
			t.Errorf("%v.LEDColor() = %q, want %q", c.level, got, c.led)
		}
	}
}

func TestParseDeviceCode_RoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNormal, LevelMedium, LevelHigh} {
		got, err := ParseDeviceCode(l.DeviceCode())
		if err != nil {
			t.Fatalf("ParseDeviceCode(%q): %v", l.DeviceCode(), err)
		}
		if got != l {
			t.Errorf("ParseDeviceCode(%q) = %v, want %v", l.DeviceCode(), got, l)
		}
	}
}

func TestParseServiceCode_RoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNormal, LevelMedium, LevelHigh} {
		got, err := ParseServiceCode(l.ServiceCode())
		if err != nil {
			t.Fatalf("ParseServiceCode(%q): %v", l.ServiceCode(), err)
		}
		if got != l {
			t.Errorf("ParseServiceCode(%q) = %v, want %v", l.ServiceCode(), got, l)
		}
	}
}

func TestParse_Unknown(t *testing.T) {
	if _, err := ParseDeviceCode("SAFE"); err == nil {
		t.Error("ParseDeviceCode(SAFE): expected error — SAFE belongs to the service vocabulary")
	}
	if _, err := ParseServiceCode("NORMAL"); err == nil {
		t.Error("ParseServiceCode(NORMAL): expected error — NORMAL belongs to the device vocabulary")
	}
}

func TestTierLevel(t *testing.T) {
	if TierNone.Level() != LevelNormal {
		t.Error("TierNone should map to LevelNormal")
	}
	if TierMedium.Level() != LevelMedium {
		t.Error("TierMedium should map to LevelMedium")
	}
	if TierHigh.Level() != LevelHigh {
		t.Error("TierHigh should map to LevelHigh")
	}
}
