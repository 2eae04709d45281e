package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-emotimeter/internal/config"
	"github.com/teslashibe/go-emotimeter/pkg/camera"
)

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "emotimeter",
		Short:   "Show the emotion the game asks for and hold it to score.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Classifier == "gemini" && cfg.GeminiAPIKey == "" {
				cfg.GeminiAPIKey = config.GeminiKeyFromEnv()
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
			}
			return run(cmd.Context(), *cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	d := config.DefaultConfig()

	// Game rules
	fs.IntVar(&cfg.Reward, "reward", d.Reward, "points per won round (env: EMOTIMETER_REWARD)")
	fs.IntVar(&cfg.HoldThreshold, "hold-frames", d.HoldThreshold, "consecutive matching frames needed to win (env: EMOTIMETER_HOLD_FRAMES)")
	fs.DurationVar(&cfg.Cooldown, "cooldown", d.Cooldown, "pause after a won round (env: EMOTIMETER_COOLDOWN)")
	fs.StringSliceVar(&cfg.Playable, "targets", d.Playable, "emotions that can be requested (env: EMOTIMETER_TARGETS)")
	fs.BoolVar(&cfg.AutoStart, "autostart", d.AutoStart, "start the first round without pressing 's' (env: EMOTIMETER_AUTOSTART)")

	// Camera
	fs.StringVarP(&cfg.Device, "device", "d", d.Device, "camera index or video file (env: EMOTIMETER_DEVICE)")
	fs.IntVar(&cfg.Width, "width", d.Width, "capture width, 0 for device default (env: EMOTIMETER_WIDTH)")
	fs.IntVar(&cfg.Height, "height", d.Height, "capture height, 0 for device default (env: EMOTIMETER_HEIGHT)")
	fs.IntVar(&cfg.Framerate, "fps", d.Framerate, "capture framerate, 0 for device default (env: EMOTIMETER_FPS)")
	fs.StringVar(&cfg.CameraPreset, "preset", d.CameraPreset,
		fmt.Sprintf("camera preset: %s (env: EMOTIMETER_PRESET)", strings.Join(camera.PresetNames(), ", ")))

	// Detection
	fs.StringVar(&cfg.Detector, "detector", d.Detector, "face locator: cascade or yunet (env: EMOTIMETER_DETECTOR)")
	fs.StringVar(&cfg.CascadePath, "cascade", d.CascadePath, "Haar cascade XML (env: EMOTIMETER_CASCADE)")
	fs.StringVar(&cfg.YuNetPath, "yunet-model", d.YuNetPath, "YuNet ONNX model (env: EMOTIMETER_YUNET_MODEL)")
	fs.IntVar(&cfg.MinFaceSize, "min-face", d.MinFaceSize, "smallest face in pixels, cascade only (env: EMOTIMETER_MIN_FACE)")
	fs.StringVar(&cfg.PrimaryPolicy, "primary", d.PrimaryPolicy, "face that scores: first or best (env: EMOTIMETER_PRIMARY)")

	// Classification
	fs.StringVar(&cfg.Classifier, "classifier", d.Classifier, "emotion classifier: ferplus or gemini (env: EMOTIMETER_CLASSIFIER)")
	fs.StringVar(&cfg.FERPlusPath, "ferplus-model", d.FERPlusPath, "FER+ ONNX model (env: EMOTIMETER_FERPLUS_MODEL)")
	fs.StringVar(&cfg.GeminiAPIKey, "gemini-key", d.GeminiAPIKey, "Gemini API key, defaults to GOOGLE_API_KEY (env: EMOTIMETER_GEMINI_KEY)")
	fs.StringVar(&cfg.GeminiModel, "gemini-model", d.GeminiModel, "Gemini model (env: EMOTIMETER_GEMINI_MODEL)")

	// Display
	fs.StringVar(&cfg.AssetsDir, "assets", d.AssetsDir, "emoticon directory (env: EMOTIMETER_ASSETS)")
	fs.StringVar(&cfg.WindowTitle, "title", d.WindowTitle, "window title (env: EMOTIMETER_TITLE)")
	fs.BoolVar(&cfg.Headless, "headless", d.Headless, "no window; drive the game from the dashboard (env: EMOTIMETER_HEADLESS)")

	// Dashboard
	fs.StringVarP(&cfg.DashboardPort, "port", "p", d.DashboardPort, "dashboard port, empty to disable (env: EMOTIMETER_PORT)")
	fs.IntVar(&cfg.CameraFPS, "stream-fps", d.CameraFPS, "max frames per second sent to spectators (env: EMOTIMETER_STREAM_FPS)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error (env: EMOTIMETER_LOG_LEVEL)")
	fs.BoolVar(&cfg.Debug, "debug", d.Debug, "verbose logging (env: EMOTIMETER_DEBUG)")
	fs.BoolVar(&cfg.DebugTracking, "debug-tracking", d.DebugTracking, "log every tick (env: EMOTIMETER_DEBUG_TRACKING)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, envValue(v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("emotimeter v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// envValue renders a viper value for pflag.Set. Slices arrive from the
// environment as strings already; from config they may be []string.
func envValue(v any) string {
	if s, ok := v.([]string); ok {
		return strings.Join(s, ",")
	}
	return fmt.Sprintf("%v", v)
}
