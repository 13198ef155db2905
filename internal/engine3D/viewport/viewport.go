package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type DeviceClass int

const (
	Desktop DeviceClass = iota
	Mobile
)

func (c DeviceClass) String() string {
	switch c {
	case Desktop:
		return "desktop"
	case Mobile:
		return "mobile"
	}
	return "unknown"
}

// Touch reports whether the class is operated by touch rather than keyboard.
func (c DeviceClass) Touch() bool {
	return c == Mobile
}

// Preset holds the values a device class selects.
type Preset struct {
	CameraPosition mgl32.Vec3
	CameraTarget   mgl32.Vec3
	FireflyCount   int
	PixelRatioCap  float64
}

type Config struct {
	// Widths in [MobileMinWidth, MobileMaxWidth) classify as Mobile.
	MobileMinWidth int
	MobileMaxWidth int
	Desktop        Preset
	Mobile         Preset
	// Force pins the class regardless of width when non-nil.
	Force *DeviceClass
}

func DefaultConfig() Config {
	return Config{
		MobileMinWidth: 320,
		MobileMaxWidth: 768,
		Desktop: Preset{
			CameraPosition: mgl32.Vec3{-7, 6, 4},
			CameraTarget:   mgl32.Vec3{0, 1, 0},
			FireflyCount:   30,
			PixelRatioCap:  2,
		},
		Mobile: Preset{
			CameraPosition: mgl32.Vec3{-10, 8, 6},
			CameraTarget:   mgl32.Vec3{0, 1, 0},
			FireflyCount:   15,
			PixelRatioCap:  1.5,
		},
	}
}

// Sizes mirrors the window dimensions and the derived drawing-buffer values.
type Sizes struct {
	Width        int
	Height       int
	PixelRatio   float64
	Aspect       float64
	BufferWidth  int
	BufferHeight int
}

// Change is the outcome of a resize.
type Change struct {
	Sizes        Sizes
	Class        DeviceClass
	ClassChanged bool
	Preset       Preset
}

// Viewport tracks the current sizes and device class across resizes.
type Viewport struct {
	cfg         Config
	sizes       Sizes
	class       DeviceClass
	initialized bool
}

func New(cfg Config) *Viewport {
	return &Viewport{cfg: cfg}
}

// Classify returns the device class for a viewport width.
func Classify(width int, cfg Config) DeviceClass {
	if cfg.Force != nil {
		return *cfg.Force
	}
	if width >= cfg.MobileMinWidth && width < cfg.MobileMaxWidth {
		return Mobile
	}
	return Desktop
}

// PresetFor returns the preset selected by class.
func (cfg Config) PresetFor(class DeviceClass) Preset {
	if class == Mobile {
		return cfg.Mobile
	}
	return cfg.Desktop
}

// CapPixelRatio clamps the host-reported ratio to max. Non-positive host
// ratios count as 1.
func CapPixelRatio(host, max float64) float64 {
	if host <= 0 || math.IsNaN(host) {
		host = 1
	}
	if max > 0 && host > max {
		return max
	}
	return host
}

// Resize recomputes the sizes for a new window size. The first call always
// reports ClassChanged so the caller applies the initial preset.
func (v *Viewport) Resize(width, height int, hostPixelRatio float64) Change {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	class := Classify(width, v.cfg)
	preset := v.cfg.PresetFor(class)
	ratio := CapPixelRatio(hostPixelRatio, preset.PixelRatioCap)

	v.sizes = Sizes{
		Width:        width,
		Height:       height,
		PixelRatio:   ratio,
		Aspect:       float64(width) / float64(height),
		BufferWidth:  int(math.Round(float64(width) * ratio)),
		BufferHeight: int(math.Round(float64(height) * ratio)),
	}

	changed := !v.initialized || class != v.class
	v.class = class
	v.initialized = true

	return Change{
		Sizes:        v.sizes,
		Class:        class,
		ClassChanged: changed,
		Preset:       preset,
	}
}

func (v *Viewport) Sizes() Sizes {
	return v.sizes
}

func (v *Viewport) Class() DeviceClass {
	return v.class
}

func (v *Viewport) Config() Config {
	return v.cfg
}
