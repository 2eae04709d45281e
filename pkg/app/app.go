// Package app assembles the emotimeter components from a config and owns
// their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teslashibe/go-emotimeter/internal/config"
	"github.com/teslashibe/go-emotimeter/internal/log"
	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/debug"
	"github.com/teslashibe/go-emotimeter/pkg/detection"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
	"github.com/teslashibe/go-emotimeter/pkg/game"
	"github.com/teslashibe/go-emotimeter/pkg/metrics"
	"github.com/teslashibe/go-emotimeter/pkg/overlay"
	"github.com/teslashibe/go-emotimeter/pkg/render"
	"github.com/teslashibe/go-emotimeter/pkg/session"
	"github.com/teslashibe/go-emotimeter/pkg/vision"
	"github.com/teslashibe/go-emotimeter/pkg/web"
)

// closer is any component holding native resources.
type closer interface {
	Close() error
}

// App is the emotimeter application orchestrator.
type App struct {
	config config.Config
	rules  game.Config
	camCfg camera.Config
	policy detection.Policy

	// Game loop
	engine     *game.Engine
	capture    *camera.Capture
	locator    session.Locator[camera.Frame]
	classifier session.Classifier[camera.Frame]
	overlays   *overlay.Set
	window     *render.Window
	pipeline   *session.Pipeline[camera.Frame]

	// Spectators
	metrics   *metrics.Metrics
	webServer *web.Server

	// Released in reverse order by Shutdown.
	closers []closer
}

// New validates cfg and prepares an App. Nothing is opened yet.
func New(cfg config.Config) (*App, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}

	playable, err := emotion.ParseList(cfg.Playable)
	if err != nil {
		return nil, err
	}
	rules := game.Config{
		Reward:        cfg.Reward,
		HoldThreshold: cfg.HoldThreshold,
		Cooldown:      cfg.Cooldown,
		Playable:      playable,
	}

	camCfg := camera.Config{
		Device:    cfg.Device,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Framerate: cfg.Framerate,
	}
	if cfg.CameraPreset != "" {
		var ok bool
		if camCfg, ok = camera.ApplyPreset(camCfg, cfg.CameraPreset); !ok {
			return nil, fmt.Errorf("unknown camera preset %q (have %s)", cfg.CameraPreset, strings.Join(camera.PresetNames(), ", "))
		}
	}
	if errs := camCfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %s", strings.Join(errs, "; "))
	}

	policy, err := detection.ParsePolicy(cfg.PrimaryPolicy)
	if err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Tracking = cfg.DebugTracking

	return &App{
		config: cfg,
		rules:  rules,
		camCfg: camCfg,
		policy: policy,
	}, nil
}

// Init opens the camera, loads models and assets, and starts the dashboard.
// Call this after New() and before Run(). On error, Shutdown releases
// whatever was opened.
func (a *App) Init() error {
	engine, err := game.NewEngine(a.rules, nil)
	if err != nil {
		return err
	}
	a.engine = engine

	if missing := a.config.MissingModels(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", vision.ErrModelNotFound, strings.Join(missing, ", "))
	}

	if err := a.initLocator(); err != nil {
		return fmt.Errorf("face locator: %w", err)
	}
	if err := a.initClassifier(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	overlays, err := overlay.Load(overlay.DefaultAssets(a.config.AssetsDir))
	if overlays != nil {
		a.overlays = overlays
		a.closers = append(a.closers, overlays)
	}
	if err != nil {
		// Warned per asset already; the game runs without those images.
		log.Debug("some emoticons missing", "error", err)
	}

	renderers := []session.Renderer[camera.Frame]{render.NewHUD(a.overlays)}
	keys := session.MultiKeys{}

	if !a.config.Headless {
		a.window = render.NewWindow(a.config.WindowTitle)
		a.closers = append(a.closers, a.window)
		renderers = append(renderers, a.window)
		keys = append(keys, a.window)
	}

	a.metrics = metrics.New()
	observers := []session.Observer{a.metrics}

	if addr := a.config.DashboardAddr(); addr != "" {
		a.webServer = web.NewServer(addr, a.metrics.Registry)
		a.webServer.StartAsync()
		renderers = append(renderers, render.NewJPEGTap(a.webServer, a.config.CameraFPS))
		keys = append(keys, a.webServer)
		observers = append(observers, a.webServer)
	}

	capture, err := camera.Open(a.camCfg)
	if err != nil {
		return err
	}
	a.capture = capture

	a.pipeline = &session.Pipeline[camera.Frame]{
		Source:     capture,
		Locator:    a.locator,
		Classifier: a.classifier,
		Renderers:  renderers,
		Keys:       keys,
		Observers:  observers,
		Engine:     engine,
		Policy:     a.policy,
		AutoStart:  a.config.AutoStart,
	}

	log.Info("emotimeter ready",
		"detector", a.config.Detector,
		"classifier", a.config.Classifier,
		"emoticons", a.overlays.Len(),
		"headless", a.config.Headless,
		"dashboard", a.config.DashboardAddr(),
	)
	return nil
}

func (a *App) initLocator() error {
	switch a.config.Detector {
	case "yunet":
		cfg := vision.DefaultYuNetConfig()
		cfg.ModelPath = a.config.YuNetPath
		y, err := vision.NewYuNet(cfg)
		if err != nil {
			return err
		}
		a.locator = y
		a.closers = append(a.closers, y)
	default:
		c, err := vision.NewCascade(a.config.CascadePath, a.config.MinFaceSize)
		if err != nil {
			return err
		}
		a.locator = c
		a.closers = append(a.closers, c)
	}
	return nil
}

func (a *App) initClassifier() error {
	switch a.config.Classifier {
	case "gemini":
		cfg := vision.DefaultGeminiConfig()
		cfg.APIKey = a.config.GeminiAPIKey
		cfg.Model = a.config.GeminiModel
		g, err := vision.NewGemini(cfg)
		if err != nil {
			return err
		}
		log.Warn("gemini classifier makes one API call per face per frame; consider lowering --hold-frames")
		a.classifier = g
	default:
		f, err := vision.NewFERPlus(a.config.FERPlusPath)
		if err != nil {
			return err
		}
		a.classifier = f
		a.closers = append(a.closers, f)
	}
	return nil
}

// Run plays until the player quits, the camera stops or ctx is cancelled.
// Cancellation is not an error.
func (a *App) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return errors.New("app not initialized")
	}

	if a.config.AutoStart {
		log.Info("game starting")
	} else if a.window != nil {
		log.Info("press 's' in the game window to start, 'q' to quit")
	} else {
		log.Info("waiting for POST /api/command/start")
	}

	// The pipeline closes the capture on return.
	err := a.pipeline.Run(ctx)
	a.capture = nil

	final := a.engine.State()
	log.Info("game over", "score", final.Score, "rounds", final.Round.Number)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown releases everything Init opened.
func (a *App) Shutdown() {
	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			log.Warn("dashboard shutdown", "error", err)
		}
	}
	if a.capture != nil {
		a.capture.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn("release failed", "error", err)
		}
	}
	a.closers = nil
}

// State returns the current game state, for tests and diagnostics.
func (a *App) State() game.State {
	if a.engine == nil {
		return game.NewState()
	}
	return a.engine.State()
}
