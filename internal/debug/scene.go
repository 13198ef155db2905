package debug

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/params"
)

var (
	colorOK   = rl.NewColor(120, 230, 120, 255)
	colorWarn = rl.NewColor(255, 200, 80, 255)
	colorErr  = rl.NewColor(255, 100, 100, 255)
)

func mustRGBA(hex string) color.RGBA {
	c, err := params.RGBA(hex)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return c
}

func (d *DebugOverlay) drawScene(info SceneInfo, startY int) {
	ui := d.newUI(startY)

	d.drawBoundingBoxToggle(ui)
	ui.Separator()

	ui.Header("Assets:")
	switch {
	case info.Loading:
		ui.ColorLabel("Loading...", 10, colorWarn)
	case info.LoadErr == nil:
		ui.ColorLabel("Loaded", 10, colorOK)
	default:
		ui.ColorLabel("Loaded with errors", 10, colorErr)
	}
	if info.TexturePath != "" {
		ui.IndentLabel("Texture: "+filepath.Base(info.TexturePath), 10)
	}
	if info.ModelPath != "" {
		ui.IndentLabel("Model: "+filepath.Base(info.ModelPath), 10)
	}
	if info.LoadErr != nil {
		for _, line := range strings.Split(info.LoadErr.Error(), "\n") {
			ui.ColorLabel(line, 10, colorErr)
		}
	}
	ui.Separator()

	ui.Header("Bindings:")
	if len(info.Bindings) == 0 && !info.Loading {
		ui.IndentLabel("none", 10)
	}
	for _, b := range info.Bindings {
		ui.IndentLabel(fmt.Sprintf("%s: %s (meshes %v)", b.Role, b.Node, b.Meshes), 10)
	}
	ui.Separator()

	ui.Header("Shaders:")
	if info.Status.PortalShader {
		ui.ColorLabel("Portal: animated", 10, colorOK)
	} else {
		ui.ColorLabel("Portal: flat fallback", 10, colorWarn)
	}
	if info.Status.FireflyShader {
		ui.ColorLabel("Fireflies: active", 10, colorOK)
	} else {
		ui.ColorLabel("Fireflies: disabled", 10, colorWarn)
	}
	names := make([]string, 0, len(info.Shaders))
	for name := range info.Shaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ui.IndentLabel(fmt.Sprintf("%s from %s", name, info.Shaders[name]), 20)
	}
	ui.Separator()

	ui.Header("Renderer:")
	ui.IndentLabel(fmt.Sprintf("Meshes: %d (%d bound)", info.Status.Meshes, info.Status.BoundMeshes), 10)
	ui.IndentLabel(fmt.Sprintf("Fireflies: %d", info.Status.Fireflies), 10)
	if info.Status.Texture[0] > 0 {
		ui.IndentLabel(fmt.Sprintf("Baked texture: %dx%d", info.Status.Texture[0], info.Status.Texture[1]), 10)
	}
}
