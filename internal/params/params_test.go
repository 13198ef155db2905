package params

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalscene/internal/engine3D/uniform"
)

func newBinding(t *testing.T) (*Binding, *uniform.Set, *uniform.Set) {
	t.Helper()
	fireflies, portal := uniform.NewSet(), uniform.NewSet()
	b, err := Bind(Defaults(), fireflies, portal)
	require.NoError(t, err)
	fireflies.ClearDirty()
	portal.ClearDirty()
	return b, fireflies, portal
}

func snapshot(s *uniform.Set) map[string]uniform.Value {
	out := make(map[string]uniform.Value)
	s.Each(func(name string, v uniform.Value) { out[name] = v })
	return out
}

func TestSetPortalColorStart_UpdatesOnlyItsUniform(t *testing.T) {
	b, fireflies, portal := newBinding(t)
	beforePortal := snapshot(portal)
	beforeFireflies := snapshot(fireflies)

	require.NoError(t, b.SetPortalColorStart("#ff0000"))

	assert.Equal(t, []string{UniformColorStart}, portal.Dirty())
	assert.Empty(t, fireflies.Dirty())

	v, ok := portal.Get(UniformColorStart)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0, 0}, v.Floats())

	after := snapshot(portal)
	assert.Equal(t, beforePortal[UniformColorEnd], after[UniformColorEnd])
	assert.Equal(t, beforeFireflies, snapshot(fireflies))
	assert.Equal(t, "#ff0000", b.Params().PortalColorStart)
}

func TestSetPortalColorEnd_LinearConversion(t *testing.T) {
	b, _, portal := newBinding(t)
	require.NoError(t, b.SetPortalColorEnd("#808080"))

	assert.Equal(t, []string{UniformColorEnd}, portal.Dirty())
	v, _ := portal.Get(UniformColorEnd)
	for _, c := range v.Floats() {
		assert.InDelta(t, 0.2158605, c, 1e-4)
	}
}

func TestSetPortalColor_InvalidLeavesState(t *testing.T) {
	b, _, portal := newBinding(t)
	before := snapshot(portal)

	err := b.SetPortalColorStart("not-a-color")
	require.ErrorIs(t, err, ErrInvalidColor)
	assert.Empty(t, portal.Dirty())
	assert.Equal(t, before, snapshot(portal))
	assert.Equal(t, Defaults().PortalColorStart, b.Params().PortalColorStart)
}

func TestSetClearColor_TouchesNoUniform(t *testing.T) {
	b, fireflies, portal := newBinding(t)
	require.NoError(t, b.SetClearColor("#102030"))

	assert.Empty(t, portal.Dirty())
	assert.Empty(t, fireflies.Dirty())
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}, b.ClearRGBA())
}

func TestSetFireflySize_Clamped(t *testing.T) {
	b, fireflies, portal := newBinding(t)

	assert.Equal(t, 250.0, b.SetFireflySize(250))
	assert.Equal(t, []string{UniformSize}, fireflies.Dirty())
	assert.Empty(t, portal.Dirty())

	assert.Equal(t, float64(MaxFireflySize), b.SetFireflySize(9000))
	assert.Equal(t, float64(MinFireflySize), b.SetFireflySize(-1))

	v, _ := fireflies.Get(UniformSize)
	assert.Equal(t, []float32{0}, v.Floats())
}

func TestParseHex_Forms(t *testing.T) {
	for _, in := range []string{"#ff0000", "#F00", "#FF0000FF", "ff0000"} {
		c, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, "#ff0000", c.Hex(), in)
	}
	for _, in := range []string{"#12", "#12345", "#1234567", "#ff00001", "#ff0000zz", "#ff0000garbage", "#ggg", ""} {
		_, err := ParseHex(in)
		assert.ErrorIs(t, err, ErrInvalidColor, in)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c, err := RGBA("#FFA828")
	require.NoError(t, err)
	assert.Equal(t, "#ffa828", Hex(c))
}

func TestBind_RejectsInvalidDefaults(t *testing.T) {
	p := Defaults()
	p.PortalColorEnd = "#zzzzzz"
	_, err := Bind(p, uniform.NewSet(), uniform.NewSet())
	assert.ErrorIs(t, err, ErrInvalidColor)
}
