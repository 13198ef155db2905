package stage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalscene/internal/engine3D/particle"
	"portalscene/internal/engine3D/viewport"
)

func TestNew_SpawnsPresetCount(t *testing.T) {
	cfg := viewport.DefaultConfig()
	s := New(cfg.Desktop, particle.DefaultBox, rand.New(rand.NewSource(1)))

	assert.Equal(t, cfg.Desktop.FireflyCount, s.Field().Len())
	assert.Equal(t, cfg.Desktop.CameraPosition, s.Orbit.Position())
}

func TestApply_ClassChangeKeepsFireflies(t *testing.T) {
	cfg := viewport.DefaultConfig()
	v := viewport.New(cfg)
	s := New(cfg.Desktop, particle.DefaultBox, rand.New(rand.NewSource(7)))

	first := v.Resize(1024, 768, 1)
	s.Apply(first)
	before := s.Field()
	require.Equal(t, cfg.Desktop.FireflyCount, before.Len())

	change := v.Resize(700, 900, 1)
	require.True(t, change.ClassChanged)
	require.Equal(t, viewport.Mobile, change.Class)

	assert.True(t, s.Apply(change))
	after := s.Field()
	assert.Equal(t, before.Len(), after.Len())
	assert.Equal(t, before.Positions, after.Positions)
	assert.Equal(t, before.Scales, after.Scales)

	assert.Equal(t, cfg.Mobile.CameraPosition, s.Orbit.Position())
	assert.Equal(t, cfg.Mobile.CameraTarget, s.Orbit.Target())
}

func TestApply_SameClassLeavesCamera(t *testing.T) {
	cfg := viewport.DefaultConfig()
	v := viewport.New(cfg)
	s := New(cfg.Desktop, particle.DefaultBox, rand.New(rand.NewSource(3)))
	s.Apply(v.Resize(1280, 720, 1))

	s.Orbit.Rotate(200, 0, 720)
	for i := 0; i < 50; i++ {
		s.Orbit.Update()
	}
	moved := s.Orbit.Position()

	assert.False(t, s.Apply(v.Resize(1600, 900, 1)))
	assert.Equal(t, moved, s.Orbit.Position())
}
