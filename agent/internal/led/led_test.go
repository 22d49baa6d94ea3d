package led

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

func readControl(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read control file: %v", err)
	}
	return string(data)
}

func TestFileController_Patterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_control")
	c := NewFileController(path)

	cases := []struct {
		level hazard.Level
		want  string
	}{
		{hazard.LevelNormal, "PATTERN:GREEN\n"},
		{hazard.LevelMedium, "PATTERN:YELLOW\n"},
		{hazard.LevelHigh, "PATTERN:RED_BLINK\n"},
	}
	for _, tc := range cases {
		if err := c.SetLevel(tc.level); err != nil {
			t.Fatalf("SetLevel(%v): %v", tc.level, err)
		}
		if got := readControl(t, path); got != tc.want {
			t.Errorf("SetLevel(%v) wrote %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestFileController_Off(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_control")
	c := NewFileController(path)

	if err := c.Off(); err != nil {
		t.Fatalf("Off: %v", err)
	}
	if got := readControl(t, path); got != "PATTERN:OFF\n" {
		t.Errorf("Off wrote %q", got)
	}
}

func TestFileController_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "led_control")
	c := NewFileController(path)

	if err := c.SetLevel(hazard.LevelHigh); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLevel(hazard.LevelNormal); err != nil {
		t.Fatal(err)
	}
	// The manager reads whole-file state, so only the last pattern survives.
	if got := readControl(t, path); got != "PATTERN:GREEN\n" {
		t.Errorf("control file = %q", got)
	}
}

func TestFileController_BadPath(t *testing.T) {
	c := NewFileController(filepath.Join(t.TempDir(), "missing", "led_control"))
	if err := c.SetLevel(hazard.LevelNormal); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestConsoleController(t *testing.T) {
	c := NewConsoleController(nil)
	if err := c.SetLevel(hazard.LevelMedium); err != nil {
		t.Errorf("SetLevel: %v", err)
	}
	if err := c.Off(); err != nil {
		t.Errorf("Off: %v", err)
	}
}
