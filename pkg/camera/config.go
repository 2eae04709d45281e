// Package camera opens the webcam (or a video file) as the game's frame source.
package camera

import (
	"fmt"
	"strconv"
)

// Config holds the capture settings.
type Config struct {
	// Device is a camera index ("0") or a video file / stream URL.
	Device string `json:"device"`

	// === Resolution ===
	// Zero leaves the device default.
	Width     int `json:"width"`
	Height    int `json:"height"`
	Framerate int `json:"framerate"`
}

// Capture limits.
const (
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns 640x480 at 30 FPS from the first camera.
// Higher resolutions slow the face locator without helping the classifier,
// which works on small face crops.
func DefaultConfig() Config {
	return Config{
		Device:    "0",
		Width:     640,
		Height:    480,
		Framerate: 30,
	}
}

// DeviceID returns the device as an int when it is a camera index, or the
// string otherwise.
func (c Config) DeviceID() any {
	if id, err := strconv.Atoi(c.Device); err == nil {
		return id
	}
	return c.Device
}

// IsFile reports whether the device is a file or URL rather than a camera.
func (c Config) IsFile() bool {
	_, isIndex := c.DeviceID().(int)
	return !isIndex
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device must not be empty")
	}
	if c.Width != 0 && (c.Width < 160 || c.Width > MaxWidth) {
		errors = append(errors, fmt.Sprintf("width must be 0 or between 160 and %d", MaxWidth))
	}
	if c.Height != 0 && (c.Height < 120 || c.Height > MaxHeight) {
		errors = append(errors, fmt.Sprintf("height must be 0 or between 120 and %d", MaxHeight))
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 0 and %d", MaxFramerate))
	}

	return errors
}
