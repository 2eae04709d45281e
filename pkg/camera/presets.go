package camera

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetLow:     LowConfig(),
		Preset720p:    HD720Config(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetDefault, PresetLow, Preset720p}
}

// ApplyPreset returns cfg with the preset's resolution and framerate,
// keeping the device. Unknown names return ok=false.
func ApplyPreset(cfg Config, name string) (Config, bool) {
	p, ok := Presets()[name]
	if !ok {
		return cfg, false
	}
	cfg.Width = p.Width
	cfg.Height = p.Height
	cfg.Framerate = p.Framerate
	return cfg, true
}

// LowConfig returns 320x240 for slow machines.
// Faces must be closer to the camera to be located.
func LowConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	return cfg
}

// HD720Config returns 720p for players far from the camera.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}
