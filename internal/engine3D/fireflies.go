package engine3D

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/engine3D/particle"
	"portalscene/internal/engine3D/shader"
)

var quadCorners = [4][2]float32{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// drawFireflies emits one camera-facing quad per firefly. All four vertices
// carry the firefly center; the vertex shader spreads them using the corner
// texcoord, and the per-firefly scale travels in the color alpha.
func drawFireflies(field particle.Field, program *shader.Program) {
	if field.Len() == 0 || !program.Valid() {
		return
	}

	rl.BeginShaderMode(program.Shader)
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()

	rl.Begin(rl.Quads)
	for i := 0; i < field.Len(); i++ {
		pos, scale := field.At(i)
		rl.Color4ub(255, 255, 255, uint8(scale*255))
		for _, c := range quadCorners {
			rl.TexCoord2f(c[0], c[1])
			rl.Vertex3f(pos.X(), pos.Y(), pos.Z())
		}
	}
	rl.End()

	// Flush while the depth mask is still off.
	rl.DrawRenderBatchActive()

	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
	rl.EndBlendMode()
	rl.EndShaderMode()
}
