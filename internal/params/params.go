// Package params holds the values exposed on the debug panel and pushes
// edits into the shader uniforms that consume them.
package params

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"portalscene/internal/engine3D/uniform"
)

// Uniform names written by the bindings.
const (
	UniformSize       = "uSize"
	UniformColorStart = "uColorStart"
	UniformColorEnd   = "uColorEnd"
)

const (
	MinFireflySize = 0
	MaxFireflySize = 500
)

var ErrInvalidColor = errors.New("invalid color")

// Params are the debug-panel tweakables.
type Params struct {
	FireflySize      float64
	PortalColorStart string
	PortalColorEnd   string
	ClearColor       string
}

func Defaults() Params {
	return Params{
		FireflySize:      100,
		PortalColorStart: "#b91fac",
		PortalColorEnd:   "#ffebf3",
		ClearColor:       "#201919",
	}
}

// ParseHex parses #rgb, #rrggbb and #rrggbbaa. Alpha is ignored.
func ParseHex(s string) (colorful.Color, error) {
	hex := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	switch len(hex) {
	case 4, 7, 9:
	default:
		return colorful.Color{}, fmt.Errorf("%w %q: want 3, 6 or 8 hex digits", ErrInvalidColor, s)
	}
	for _, r := range hex[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return colorful.Color{}, fmt.Errorf("%w %q: bad digit %q", ErrInvalidColor, s, r)
		}
	}
	if len(hex) == 9 {
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	return c, nil
}

// LinearColor converts an sRGB hex literal into linear RGB components.
func LinearColor(s string) ([3]float32, error) {
	c, err := ParseHex(s)
	if err != nil {
		return [3]float32{}, err
	}
	r, g, b := c.LinearRgb()
	return [3]float32{float32(r), float32(g), float32(b)}, nil
}

// RGBA converts an sRGB hex literal into an opaque 8-bit color.
func RGBA(s string) (color.RGBA, error) {
	c, err := ParseHex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats an 8-bit color as #rrggbb.
func Hex(c color.RGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// Binding owns the current parameters and the uniform sets they feed.
type Binding struct {
	params    Params
	fireflies *uniform.Set
	portal    *uniform.Set
}

// Bind validates p and writes its initial values into both uniform sets.
func Bind(p Params, fireflies, portal *uniform.Set) (*Binding, error) {
	b := &Binding{fireflies: fireflies, portal: portal}
	b.SetFireflySize(p.FireflySize)
	if err := b.SetPortalColorStart(p.PortalColorStart); err != nil {
		return nil, err
	}
	if err := b.SetPortalColorEnd(p.PortalColorEnd); err != nil {
		return nil, err
	}
	if err := b.SetClearColor(p.ClearColor); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Binding) Params() Params {
	return b.params
}

// SetFireflySize clamps v to the slider range and updates uSize.
func (b *Binding) SetFireflySize(v float64) float64 {
	if math.IsNaN(v) {
		v = MinFireflySize
	}
	v = math.Max(MinFireflySize, math.Min(MaxFireflySize, v))
	b.params.FireflySize = v
	b.fireflies.SetFloat(UniformSize, float32(v))
	return v
}

func (b *Binding) SetPortalColorStart(hex string) error {
	return b.setPortalColor(UniformColorStart, &b.params.PortalColorStart, hex)
}

func (b *Binding) SetPortalColorEnd(hex string) error {
	return b.setPortalColor(UniformColorEnd, &b.params.PortalColorEnd, hex)
}

func (b *Binding) setPortalColor(name string, field *string, hex string) error {
	linear, err := LinearColor(hex)
	if err != nil {
		return err
	}
	*field = hex
	b.portal.SetVec3(name, linear)
	return nil
}

// SetClearColor changes the background; it feeds no uniform.
func (b *Binding) SetClearColor(hex string) error {
	if _, err := ParseHex(hex); err != nil {
		return err
	}
	b.params.ClearColor = hex
	return nil
}

// ClearRGBA returns the background color, falling back to black.
func (b *Binding) ClearRGBA() color.RGBA {
	c, err := RGBA(b.params.ClearColor)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return c
}
