package engine3D

import (
	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Camera is a y-up perspective camera with explicit clip planes.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	FovY     float32 // degrees
	Near     float32
	Far      float32
	Aspect   float32
}

func (c Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, mgl32.Vec3{0, 1, 0})
}

// Begin enters 3D mode with this camera's matrices. Pair with rl.EndMode3D.
func (c Camera) Begin() {
	rl.DrawRenderBatchActive()

	proj := c.Projection()
	rl.MatrixMode(rl.Projection)
	rl.PushMatrix()
	rl.LoadIdentity()
	rl.MultMatrixf(proj[:])

	view := c.View()
	rl.MatrixMode(rl.Modelview)
	rl.LoadIdentity()
	rl.MultMatrixf(view[:])

	rl.EnableDepthTest()
}

func toVector3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}
