// Package led drives the appliance's indicator light. The production path
// writes pattern commands to a control file consumed by the failsafe LED
// manager, which holds its last pattern if this process dies.
package led

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

// Pattern commands understood by the LED manager.
const (
	PatternGreen    = "PATTERN:GREEN"
	PatternYellow   = "PATTERN:YELLOW"
	PatternRedBlink = "PATTERN:RED_BLINK"
	PatternOff      = "PATTERN:OFF"
)

// Controller sets the indicator light state.
type Controller interface {
	SetLevel(level hazard.Level) error
	Off() error
}

// patternFor maps a level to its LED manager command. DANGER blinks.
func patternFor(level hazard.Level) string {
	switch level {
	case hazard.LevelHigh:
		return PatternRedBlink
	case hazard.LevelMedium:
		return PatternYellow
	default:
		return PatternGreen
	}
}

// FileController writes pattern commands to the LED manager's control file.
type FileController struct {
	path string
}

// NewFileController returns a Controller writing to the control file at path.
func NewFileController(path string) *FileController {
	return &FileController{path: path}
}

func (c *FileController) SetLevel(level hazard.Level) error {
	return c.write(patternFor(level))
}

func (c *FileController) Off() error {
	return c.write(PatternOff)
}

func (c *FileController) write(pattern string) error {
	if err := os.WriteFile(c.path, []byte(pattern+"\n"), 0o644); err != nil {
		return fmt.Errorf("led: write %q: %w", c.path, err)
	}
	return nil
}

// ConsoleController logs pattern changes instead of driving hardware. Used on
// bench setups without the LED manager.
type ConsoleController struct {
	logger *slog.Logger
}

// NewConsoleController returns a logging Controller.
func NewConsoleController(logger *slog.Logger) *ConsoleController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleController{logger: logger}
}

func (c *ConsoleController) SetLevel(level hazard.Level) error {
	c.logger.Info("led pattern", "pattern", patternFor(level), "level", level.DeviceCode())
	return nil
}

func (c *ConsoleController) Off() error {
	c.logger.Info("led pattern", "pattern", PatternOff)
	return nil
}
