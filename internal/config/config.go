package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all configurable paths and compositing settings.
type Config struct {
	// Paths
	BaseDir       string `json:"base_dir"`
	Recording     string `json:"recording"`
	Background    string `json:"background"`
	Calibration   string `json:"calibration"`
	OutputDir     string `json:"output_dir"`
	ScreenshotDir string `json:"screenshot_dir"`
	Preview       string `json:"preview"`

	// Compositing settings
	FallbackColor    string `json:"fallback_color"`
	ScreenshotFormat string `json:"screenshot_format"`
	PreviewInterval  string `json:"preview_interval"`
	Paced            bool   `json:"paced"`
	Workers          int    `json:"workers"`
	LogLevel         string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir    string
	Recording  string
	Background string
	OutputDir  string
	Format     string
	Workers    int
	LogLevel   string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.Recording != "" {
		c.Recording = flags.Recording
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.ScreenshotFormat = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	c.Recording = c.abs(c.Recording)
	c.Background = c.abs(c.Background)
	c.Calibration = c.abs(c.Calibration)

	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "renders")
	} else {
		c.OutputDir = c.abs(c.OutputDir)
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = picturesDir(c.OutputDir)
	} else {
		c.ScreenshotDir = c.abs(c.ScreenshotDir)
	}
	if c.Preview != "" {
		c.Preview = c.abs(c.Preview)
	}

	// Defaults for settings
	if c.FallbackColor == "" {
		c.FallbackColor = "#00ff00"
	}
	if c.ScreenshotFormat == "" {
		c.ScreenshotFormat = "bmp"
	}
	if c.PreviewInterval == "" {
		c.PreviewInterval = "1s"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// PreviewEvery parses PreviewInterval.
func (c *Config) PreviewEvery() (time.Duration, error) {
	d, err := time.ParseDuration(c.PreviewInterval)
	if err != nil {
		return 0, fmt.Errorf("config: preview_interval %q: %w", c.PreviewInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: preview_interval %q is negative", c.PreviewInterval)
	}
	return d, nil
}

// Logger builds a logrus logger at the configured level.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log_level: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// picturesDir prefers the user's Pictures folder, then the output dir.
func picturesDir(fallback string) string {
	home, err := os.UserHomeDir()
	if err == nil {
		pics := filepath.Join(home, "Pictures")
		if info, err := os.Stat(pics); err == nil && info.IsDir() {
			return pics
		}
	}
	return fallback
}
