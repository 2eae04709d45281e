// Package config holds the emotimeter application settings.
//
// Every field is bound to a command-line flag and an EMOTIMETER_* environment
// variable by the CLI; this package only knows defaults and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teslashibe/go-emotimeter/pkg/detection"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// EnvPrefix is the prefix of every environment variable.
const EnvPrefix = "EMOTIMETER"

// Config holds all runtime settings.
type Config struct {
	// === Game rules ===
	Reward        int
	HoldThreshold int           // Frames
	Cooldown      time.Duration // Pause after a won round
	Playable      []string      // Target emotions
	AutoStart     bool          // Start the first round without a keypress

	// === Camera ===
	Device       string // Camera index ("0") or video file / stream URL
	Width        int
	Height       int
	Framerate    int
	CameraPreset string // Named resolution; overrides Width and Height

	// === Detection ===
	Detector      string // "cascade" or "yunet"
	CascadePath   string
	YuNetPath     string
	MinFaceSize   int
	PrimaryPolicy string // "first" or "best"

	// === Classification ===
	Classifier   string // "ferplus" or "gemini"
	FERPlusPath  string
	GeminiAPIKey string
	GeminiModel  string

	// === Display ===
	AssetsDir   string
	WindowTitle string
	Headless    bool // No window; use with AutoStart and the dashboard

	// === Dashboard ===
	DashboardPort string // Empty disables the dashboard
	CameraFPS     int    // Max JPEG frames per second sent to spectators

	// === Logging ===
	LogLevel      string
	Debug         bool
	DebugTracking bool
}

// DefaultConfig returns the settings the game ships with.
func DefaultConfig() Config {
	return Config{
		Reward:        10,
		HoldThreshold: 10,
		Cooldown:      2 * time.Second,
		Playable:      []string{"happy", "sad", "surprise"},

		Device:    "0",
		Width:     640,
		Height:    480,
		Framerate: 30,

		Detector:      "cascade",
		CascadePath:   "models/haarcascade_frontalface_default.xml",
		YuNetPath:     "models/face_detection_yunet.onnx",
		MinFaceSize:   30,
		PrimaryPolicy: "first",

		Classifier:  "ferplus",
		FERPlusPath: "models/emotion-ferplus-8.onnx",
		GeminiModel: "gemini-2.0-flash",

		AssetsDir:   "assets",
		WindowTitle: `Emotion-Meter Game (Press "s" to start, "q" to quit)`,

		DashboardPort: "",
		CameraFPS:     5,

		LogLevel: "info",
	}
}

// Validate checks settings that can be verified before opening devices.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Reward <= 0 {
		errors = append(errors, "reward must be positive")
	}
	if c.HoldThreshold < 1 {
		errors = append(errors, "hold-frames must be at least 1")
	}
	if c.Cooldown < 0 {
		errors = append(errors, "cooldown must not be negative")
	}
	if _, err := emotion.ParseList(c.Playable); err != nil {
		errors = append(errors, fmt.Sprintf("targets: %v", err))
	} else if len(c.Playable) == 0 {
		errors = append(errors, "targets must name at least one emotion")
	}

	if c.Device == "" {
		errors = append(errors, "device must not be empty")
	}
	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "width and height must not be negative")
	}
	if c.Framerate < 0 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 0 (device default) and 120")
	}

	switch c.Detector {
	case "cascade", "yunet":
	default:
		errors = append(errors, "detector must be cascade or yunet")
	}
	if c.MinFaceSize < 0 {
		errors = append(errors, "min-face must not be negative")
	}
	if _, err := detection.ParsePolicy(c.PrimaryPolicy); err != nil {
		errors = append(errors, err.Error())
	}

	switch c.Classifier {
	case "ferplus":
	case "gemini":
		if c.GeminiAPIKey == "" {
			errors = append(errors, "gemini classifier requires an API key (GOOGLE_API_KEY)")
		}
	default:
		errors = append(errors, "classifier must be ferplus or gemini")
	}

	if c.Headless && c.DashboardPort == "" && !c.AutoStart {
		errors = append(errors, "headless mode needs --autostart (there is no window to press 's' in)")
	}
	if c.CameraFPS < 0 {
		errors = append(errors, "camera-fps must not be negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, "log-level must be debug, info, warn or error")
	}

	return errors
}

// ModelPaths returns the model files the selected backends need.
func (c *Config) ModelPaths() []string {
	var paths []string
	if c.Detector == "yunet" {
		paths = append(paths, c.YuNetPath)
	} else {
		paths = append(paths, c.CascadePath)
	}
	if c.Classifier == "ferplus" {
		paths = append(paths, c.FERPlusPath)
	}
	return paths
}

// MissingModels returns the model files that do not exist on disk.
func (c *Config) MissingModels() []string {
	var missing []string
	for _, p := range c.ModelPaths() {
		if _, err := os.Stat(filepath.Clean(p)); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

// DashboardAddr returns the listen address for the dashboard, or "" when
// it is disabled.
func (c *Config) DashboardAddr() string {
	if c.DashboardPort == "" || strings.Contains(c.DashboardPort, ":") {
		return c.DashboardPort
	}
	return ":" + c.DashboardPort
}

// GeminiKeyFromEnv returns the first Gemini key found in the environment.
func GeminiKeyFromEnv() string {
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
