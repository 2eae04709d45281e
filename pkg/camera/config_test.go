package camera

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Fatalf("default config invalid: %v", errs)
	}
	if cfg.IsFile() {
		t.Error("default device should be a camera index")
	}
	if id, ok := cfg.DeviceID().(int); !ok || id != 0 {
		t.Errorf("DeviceID = %v, want 0", cfg.DeviceID())
	}
}

func TestDeviceID_File(t *testing.T) {
	cfg := Config{Device: "testdata/smile.mp4"}
	if !cfg.IsFile() {
		t.Error("path should be treated as a file")
	}
	if s, ok := cfg.DeviceID().(string); !ok || s != "testdata/smile.mp4" {
		t.Errorf("DeviceID = %v", cfg.DeviceID())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errors int
	}{
		{name: "device defaults", cfg: Config{Device: "1"}, errors: 0},
		{name: "empty device", cfg: Config{}, errors: 1},
		{name: "tiny width", cfg: Config{Device: "0", Width: 100}, errors: 1},
		{name: "huge height", cfg: Config{Device: "0", Height: 5000}, errors: 1},
		{name: "negative fps", cfg: Config{Device: "0", Framerate: -1}, errors: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if errs := tc.cfg.Validate(); len(errs) != tc.errors {
				t.Errorf("Validate: got %v, want %d errors", errs, tc.errors)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Config{Device: "2"}
	got, ok := ApplyPreset(cfg, Preset720p)
	if !ok {
		t.Fatal("720p preset missing")
	}
	if got.Device != "2" || got.Width != 1280 || got.Height != 720 {
		t.Errorf("ApplyPreset = %+v", got)
	}

	if _, ok := ApplyPreset(cfg, "4k"); ok {
		t.Error("unknown preset should not apply")
	}

	for _, name := range PresetNames() {
		p := Presets()[name]
		if errs := p.Validate(); len(errs) > 0 {
			t.Errorf("preset %s invalid: %v", name, errs)
		}
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(Config{Device: "/nonexistent/video.mp4"})
	if err == nil {
		t.Error("expected error opening a missing file")
	}
}
