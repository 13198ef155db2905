package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/config"
	"portalscene/internal/utils"
)

func init() {
	// GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", config.DefaultFile, "Path to the TOML config file")
	assetsDir := flag.String("assets", "", "Asset directory (overrides assets.dir)")
	bundle := flag.String("bundle", "", "Asset bundle (.pkg) to extract before loading")
	shaderDir := flag.String("shaders", "", "Directory with GLSL overrides")
	watchShaders := flag.Bool("watch-shaders", false, "Reload shaders when files in the override directory change")
	forceClass := flag.String("force-class", "", "Pin the device class: desktop or mobile")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	noPanel := flag.Bool("no-panel", false, "Hide the debug panel at startup")
	decode := flag.String("decode", "", "Convert a .tex file, or every .tex under a directory, to PNG and exit")
	decodeOut := flag.String("out", "test_out", "Output directory for -decode, or bundle path for -pack")
	pack := flag.String("pack", "", "Pack a directory into a .pkg bundle written to -out and exit")
	writeConfig := flag.Bool("write-config", false, "Write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}

	if *assetsDir != "" {
		cfg.Assets.Dir = *assetsDir
	}
	if *bundle != "" {
		cfg.Assets.Bundle = *bundle
	}
	if *shaderDir != "" {
		cfg.Assets.Shaders = *shaderDir
	}
	if *watchShaders {
		cfg.Assets.WatchShader = true
	}
	if *forceClass != "" {
		cfg.Viewport.Force = *forceClass
	}
	if *logLevel != "" {
		cfg.Debug.LogLevel = *logLevel
	}
	if *noPanel {
		cfg.Debug.Panel = false
	}

	if err := cfg.Validate(); err != nil {
		utils.Error("Invalid configuration:\n%v", err)
		os.Exit(1)
	}

	utils.CurrentLevel, _ = utils.ParseLevel(cfg.Debug.LogLevel)
	utils.ShowRaylibInfo = cfg.Debug.RaylibLog
	if *debugFlag {
		utils.DebugMode = true
		utils.CurrentLevel = utils.LevelDebug
	}

	if *writeConfig {
		if err := config.Save(cfg, *configPath); err != nil {
			utils.Error("Failed to write config: %v", err)
			os.Exit(1)
		}
		utils.Info("Config written to %s", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *decode != "" {
		if err := runDecode(ctx, *decode, *decodeOut); err != nil {
			utils.Error("Decode failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if *pack != "" {
		if err := runPack(ctx, *pack, *decodeOut); err != nil {
			utils.Error("Pack failed: %v", err)
			os.Exit(1)
		}
		return
	}

	utils.AssetsDir = config.DiscoverAssets(cfg.Assets.Dir)

	utils.Info("--- Portal Scene Start ---")

	rl.SetTraceLogCallback(utils.RaylibLogCallback)

	var flags uint32 = rl.FlagWindowResizable
	if cfg.Window.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	if cfg.Window.VSync {
		flags |= rl.FlagVsyncHint
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Window.TargetFPS))
	rl.SetExitKey(0)

	window := NewWindow(ctx, cfg, pixelRatioSource())
	defer window.Close()

	utils.Info("Starting frame loop...")
	if err := window.Run(ctx); err != nil && ctx.Err() == nil {
		utils.Error("Frame loop error: %v", err)
	}
	utils.Info("Shutting down")
}

// pixelRatioSource probes the X server once for the physical screen density
// and returns a function reporting the current host pixel ratio. A content
// scale from raylib other than 1 wins, since it follows the monitor the
// window is on.
func pixelRatioSource() func() float64 {
	screenRatio := 1.0
	display, err := utils.ProbeDisplay()
	switch {
	case err != nil:
		utils.Debug("X11 display probe failed: %v", err)
	case display.DPI() > 0:
		utils.Debug("Display %dx%d px, %.0f DPI", display.WidthPx, display.HeightPx, display.DPI())
		screenRatio = display.PixelRatio()
	}

	return func() float64 {
		if scale := rl.GetWindowScaleDPI(); scale.X > 0 && scale.X != 1 {
			return float64(scale.X)
		}
		return screenRatio
	}
}
