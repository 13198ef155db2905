package engine3D

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/engine3D/particle"
	"portalscene/internal/scene"
)

var (
	boundsUnbound   = rl.NewColor(0, 255, 0, 255)
	boundsBaked     = rl.NewColor(0, 255, 255, 150)
	boundsPortal    = rl.NewColor(255, 0, 255, 255)
	boundsPoleLight = rl.NewColor(255, 255, 0, 255)
	boundsFireflies = rl.NewColor(255, 80, 80, 200)
)

func boundsColor(role scene.Role, bound bool) rl.Color {
	if !bound {
		return boundsUnbound
	}
	switch role {
	case scene.RoleBaked:
		return boundsBaked
	case scene.RolePortal:
		return boundsPortal
	case scene.RolePoleLight:
		return boundsPoleLight
	}
	return boundsUnbound
}

// drawSceneBoundingBoxes outlines every mesh, colored by role, plus the
// firefly spawn volume.
func (r *Renderer) drawSceneBoundingBoxes() {
	for i := range r.meshes {
		if !r.meshes[i].uploaded {
			continue
		}
		role, bound := r.roles[i]
		rl.DrawBoundingBox(r.meshes[i].bounds, boundsColor(role, bound))
	}
	drawFireflyBox(r.fireflyBox)
}

func drawFireflyBox(box particle.Box) {
	rl.DrawBoundingBox(rl.BoundingBox{Min: toVector3(box.Min), Max: toVector3(box.Max)}, boundsFireflies)
}
