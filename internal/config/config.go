// Package config loads the renderer settings from a TOML file layered over
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"portalscene/internal/engine3D/viewport"
	"portalscene/internal/params"
	"portalscene/internal/utils"
)

const DefaultFile = "~/.config/portalscene/config.toml"

type Config struct {
	Window   Window   `toml:"window"`
	Assets   Assets   `toml:"assets"`
	Nodes    Nodes    `toml:"nodes"`
	Scene    Scene    `toml:"scene"`
	Viewport Viewport `toml:"viewport"`
	Params   Params   `toml:"params"`
	Debug    Debug    `toml:"debug"`
}

type Window struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	TargetFPS int    `toml:"target_fps"`
	MSAA      bool   `toml:"msaa"`
	VSync     bool   `toml:"vsync"`
}

type Assets struct {
	// Dir is the asset root; empty runs discovery.
	Dir string `toml:"dir"`
	// Bundle is an optional .pkg extracted into CacheDir before loading.
	Bundle   string `toml:"bundle"`
	CacheDir string `toml:"cache_dir"`
	Texture  string `toml:"texture"`
	Model    string `toml:"model"`
	// FallbackModel is an uncompressed export loaded when Model is
	// Draco-compressed.
	FallbackModel string `toml:"fallback_model"`
	// Shaders overrides the embedded GLSL when set.
	Shaders     string `toml:"shaders"`
	WatchShader bool   `toml:"watch_shaders"`
}

type Nodes struct {
	Baked      string   `toml:"baked"`
	Portal     string   `toml:"portal"`
	PoleLights []string `toml:"pole_lights"`
}

type Scene struct {
	FOV                 float32    `toml:"fov"`
	Near                float32    `toml:"near"`
	Far                 float32    `toml:"far"`
	FireflyMin          [3]float32 `toml:"firefly_min"`
	FireflyMax          [3]float32 `toml:"firefly_max"`
	Seed                int64      `toml:"seed"`
	PoleLightColor      string     `toml:"pole_light_color"`
	PortalFallbackColor string     `toml:"portal_fallback_color"`
}

type Preset struct {
	Camera        [3]float32 `toml:"camera"`
	Target        [3]float32 `toml:"target"`
	Fireflies     int        `toml:"fireflies"`
	PixelRatioCap float64    `toml:"pixel_ratio_cap"`
}

type Viewport struct {
	MobileMinWidth int `toml:"mobile_min_width"`
	MobileMaxWidth int `toml:"mobile_max_width"`
	// Force is "", "desktop" or "mobile".
	Force   string `toml:"force"`
	Desktop Preset `toml:"desktop"`
	Mobile  Preset `toml:"mobile"`
}

type Params struct {
	FireflySize      float64 `toml:"firefly_size"`
	PortalColorStart string  `toml:"portal_color_start"`
	PortalColorEnd   string  `toml:"portal_color_end"`
	ClearColor       string  `toml:"clear_color"`
}

type Debug struct {
	Panel         bool   `toml:"panel"`
	LogLevel      string `toml:"log_level"`
	RaylibLog     bool   `toml:"raylib_log"`
	BoundingBoxes bool   `toml:"bounding_boxes"`
}

func presetFrom(p viewport.Preset) Preset {
	return Preset{
		Camera:        p.CameraPosition,
		Target:        p.CameraTarget,
		Fireflies:     p.FireflyCount,
		PixelRatioCap: p.PixelRatioCap,
	}
}

func (p Preset) viewport() viewport.Preset {
	return viewport.Preset{
		CameraPosition: mgl32.Vec3(p.Camera),
		CameraTarget:   mgl32.Vec3(p.Target),
		FireflyCount:   p.Fireflies,
		PixelRatioCap:  p.PixelRatioCap,
	}
}

func Default() Config {
	vp := viewport.DefaultConfig()
	pd := params.Defaults()
	return Config{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "Portal",
			TargetFPS: 60,
			MSAA:      true,
			VSync:     true,
		},
		Assets: Assets{
			Texture: "baked.jpg",
			Model:   "baked.glb",
		},
		Nodes: Nodes{
			Baked:      "baked",
			Portal:     "Circle",
			PoleLights: []string{"Cube011", "Cube031"},
		},
		Scene: Scene{
			FOV:                 45,
			Near:                0.1,
			Far:                 100,
			FireflyMin:          [3]float32{-2, 0, -2},
			FireflyMax:          [3]float32{2, 1.5, 2},
			PoleLightColor:      "#ffa828",
			PortalFallbackColor: "#4041ff",
		},
		Viewport: Viewport{
			MobileMinWidth: vp.MobileMinWidth,
			MobileMaxWidth: vp.MobileMaxWidth,
			Desktop:        presetFrom(vp.Desktop),
			Mobile:         presetFrom(vp.Mobile),
		},
		Params: Params{
			FireflySize:      pd.FireflySize,
			PortalColorStart: pd.PortalColorStart,
			PortalColorEnd:   pd.PortalColorEnd,
			ClearColor:       pd.ClearColor,
		},
		Debug: Debug{
			Panel:    true,
			LogLevel: "info",
		},
	}
}

// DefaultPath returns the expanded location of the user config file.
func DefaultPath() (string, error) {
	return homedir.Expand(DefaultFile)
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// surface instead of being silently ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, err
	}

	// Slices replace rather than merge, so clear the ones a file may set.
	cfg.Nodes.PoleLights = nil
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config %s: %s", expanded, strict.String())
		}
		return cfg, fmt.Errorf("config %s: %w", expanded, err)
	}
	if cfg.Nodes.PoleLights == nil {
		cfg.Nodes.PoleLights = Default().Nodes.PoleLights
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file is absent.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		utils.Debug("Config: %s not found, using defaults", path)
		return Default(), nil
	}
	return cfg, err
}

// Save writes cfg as TOML, creating parent directories.
func Save(cfg Config, path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0644)
}

// Validate reports every impossible value at once.
func (c Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TargetFPS < 0 {
		errs = append(errs, fmt.Errorf("target_fps %d must not be negative", c.Window.TargetFPS))
	}
	if c.Assets.Texture == "" || c.Assets.Model == "" {
		errs = append(errs, errors.New("assets.texture and assets.model are required"))
	}
	if c.Nodes.Baked == "" || c.Nodes.Portal == "" {
		errs = append(errs, errors.New("nodes.baked and nodes.portal are required"))
	}
	if c.Scene.FOV <= 0 || c.Scene.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov %.1f out of (0, 180)", c.Scene.FOV))
	}
	if c.Scene.Near <= 0 || c.Scene.Far <= c.Scene.Near {
		errs = append(errs, fmt.Errorf("clip range [%g, %g] invalid", c.Scene.Near, c.Scene.Far))
	}
	for i := range 3 {
		if c.Scene.FireflyMax[i] < c.Scene.FireflyMin[i] {
			errs = append(errs, fmt.Errorf("firefly box axis %d: max below min", i))
		}
	}
	if c.Viewport.MobileMinWidth < 0 || c.Viewport.MobileMaxWidth < c.Viewport.MobileMinWidth {
		errs = append(errs, fmt.Errorf("mobile width band [%d, %d) invalid", c.Viewport.MobileMinWidth, c.Viewport.MobileMaxWidth))
	}
	if _, err := parseClass(c.Viewport.Force); err != nil {
		errs = append(errs, err)
	}
	for name, p := range map[string]Preset{"desktop": c.Viewport.Desktop, "mobile": c.Viewport.Mobile} {
		if p.Fireflies < 0 {
			errs = append(errs, fmt.Errorf("%s fireflies %d must not be negative", name, p.Fireflies))
		}
		if p.PixelRatioCap < 1 {
			errs = append(errs, fmt.Errorf("%s pixel_ratio_cap %g must be at least 1", name, p.PixelRatioCap))
		}
	}
	if c.Params.FireflySize < params.MinFireflySize || c.Params.FireflySize > params.MaxFireflySize {
		errs = append(errs, fmt.Errorf("firefly_size %g out of [%d, %d]", c.Params.FireflySize, params.MinFireflySize, params.MaxFireflySize))
	}
	for _, hex := range []string{
		c.Params.PortalColorStart, c.Params.PortalColorEnd, c.Params.ClearColor,
		c.Scene.PoleLightColor, c.Scene.PortalFallbackColor,
	} {
		if _, err := params.ParseHex(hex); err != nil {
			errs = append(errs, err)
		}
	}
	if _, ok := utils.ParseLevel(c.Debug.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.Debug.LogLevel))
	}

	return errors.Join(errs...)
}

func parseClass(s string) (*viewport.DeviceClass, error) {
	var class viewport.DeviceClass
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "desktop":
		class = viewport.Desktop
	case "mobile":
		class = viewport.Mobile
	default:
		return nil, fmt.Errorf("unknown viewport.force %q", s)
	}
	return &class, nil
}

// ViewportConfig converts the viewport section. An invalid force value is ignored.
func (c Config) ViewportConfig() viewport.Config {
	force, _ := parseClass(c.Viewport.Force)
	return viewport.Config{
		MobileMinWidth: c.Viewport.MobileMinWidth,
		MobileMaxWidth: c.Viewport.MobileMaxWidth,
		Desktop:        c.Viewport.Desktop.viewport(),
		Mobile:         c.Viewport.Mobile.viewport(),
		Force:          force,
	}
}

func (c Config) ParamsValues() params.Params {
	return params.Params{
		FireflySize:      c.Params.FireflySize,
		PortalColorStart: c.Params.PortalColorStart,
		PortalColorEnd:   c.Params.PortalColorEnd,
		ClearColor:       c.Params.ClearColor,
	}
}

// DiscoverAssets picks the asset root: the custom path when it exists, else
// the first existing well-known location. It returns "" when nothing is found.
func DiscoverAssets(customPath string) string {
	if customPath != "" {
		expanded, err := homedir.Expand(customPath)
		if err == nil {
			if info, err := os.Stat(expanded); err == nil && info.IsDir() {
				utils.Info("Using custom assets path: %s", expanded)
				return expanded
			}
		}
		utils.Warn("Custom assets path NOT FOUND: %s", customPath)
		utils.Info("Falling back to automatic discovery...")
	}

	possiblePaths := []string{"assets", "static"}
	if home, err := homedir.Dir(); err == nil {
		possiblePaths = append(possiblePaths,
			filepath.Join(home, ".local/share/portalscene/assets"),
			filepath.Join(home, ".config/portalscene/assets"),
		)
	}
	possiblePaths = append(possiblePaths, "/usr/share/portalscene/assets")

	for _, p := range possiblePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			utils.Info("Discovered assets at: %s", p)
			return p
		}
	}

	utils.Warn("Could not find an assets folder in any of the expected locations.")
	return ""
}
