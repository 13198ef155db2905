package stage

import (
	"math/rand"

	"portalscene/internal/engine3D/controls"
	"portalscene/internal/engine3D/particle"
	"portalscene/internal/engine3D/viewport"
)

// Stage owns the camera controls and the firefly field across resizes.
// The field is generated once from the starting preset and never rebuilt;
// a device class change only moves the camera.
type Stage struct {
	Orbit *controls.Orbit
	field particle.Field
}

// New places the camera at the preset pose and spawns preset.FireflyCount
// fireflies inside box.
func New(preset viewport.Preset, box particle.Box, rng *rand.Rand) *Stage {
	return &Stage{
		Orbit: controls.NewOrbit(preset.CameraPosition, preset.CameraTarget),
		field: particle.Generate(preset.FireflyCount, box, rng),
	}
}

func (s *Stage) Field() particle.Field {
	return s.field
}

// Apply reacts to a viewport change and reports whether the camera moved.
func (s *Stage) Apply(change viewport.Change) bool {
	if !change.ClassChanged {
		return false
	}
	s.Orbit.Reset(change.Preset.CameraPosition, change.Preset.CameraTarget)
	return true
}
