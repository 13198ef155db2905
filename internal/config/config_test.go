package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalscene/internal/engine3D/viewport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 800

[nodes]
portal = "Disc"

[viewport]
force = "mobile"

[viewport.mobile]
fireflies = 8

[params]
portal_color_start = "#ff0000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "Disc", cfg.Nodes.Portal)
	assert.Equal(t, []string{"Cube011", "Cube031"}, cfg.Nodes.PoleLights)
	assert.Equal(t, "#ff0000", cfg.Params.PortalColorStart)
	assert.Equal(t, "#ffebf3", cfg.Params.PortalColorEnd)
	assert.Equal(t, 8, cfg.Viewport.Mobile.Fireflies)
	assert.Equal(t, 1.5, cfg.Viewport.Mobile.PixelRatioCap)
	require.NoError(t, cfg.Validate())

	vp := cfg.ViewportConfig()
	require.NotNil(t, vp.Force)
	assert.Equal(t, viewport.Mobile, *vp.Force)
	assert.Equal(t, 8, vp.Mobile.FireflyCount)
	assert.Equal(t, mgl32.Vec3{-10, 8, 6}, vp.Mobile.CameraPosition)
}

func TestLoad_ReplacesPoleLights(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[nodes]
pole_lights = ["PoleA"]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"PoleA"}, cfg.Nodes.PoleLights)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `
[window]
widht = 800
`))
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Params.FireflySize = 250
	cfg.Viewport.Force = "desktop"
	cfg.Scene.Seed = 42

	require.NoError(t, Save(cfg, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Params.FireflySize = 600
	cfg.Params.ClearColor = "#nothex"
	cfg.Viewport.Force = "tablet"
	cfg.Debug.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "firefly_size", "nothex", "tablet", "loud"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDiscoverAssets_CustomPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, DiscoverAssets(dir))
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "config.toml", filepath.Base(path))
}

func TestLoad_FallbackModel(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[assets]
model = "portal.glb"
fallback_model = "portal-raw.glb"
`))
	require.NoError(t, err)
	assert.Equal(t, "portal.glb", cfg.Assets.Model)
	assert.Equal(t, "portal-raw.glb", cfg.Assets.FallbackModel)
	assert.Equal(t, "baked.jpg", cfg.Assets.Texture)
}
