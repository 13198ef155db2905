package controls

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	polarEpsilon = 1e-6
	moveEpsilon  = 1e-4
)

// Orbit rotates a camera around a target on a sphere, y-up. Input accumulates
// deltas; Update applies them and, with damping, lets them decay over frames.
type Orbit struct {
	EnableDamping bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
	PanSpeed      float64
	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64

	position mgl32.Vec3
	target   mgl32.Vec3

	deltaTheta float64
	deltaPhi   float64
	scale      float64
	panOffset  mgl32.Vec3
}

func NewOrbit(position, target mgl32.Vec3) *Orbit {
	return &Orbit{
		EnableDamping: true,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		position:      position,
		target:        target,
		scale:         1,
	}
}

func (o *Orbit) Position() mgl32.Vec3 { return o.position }
func (o *Orbit) Target() mgl32.Vec3   { return o.target }

// Reset moves the camera to a new pose and drops pending motion.
func (o *Orbit) Reset(position, target mgl32.Vec3) {
	o.position = position
	o.target = target
	o.deltaTheta = 0
	o.deltaPhi = 0
	o.scale = 1
	o.panOffset = mgl32.Vec3{}
}

// Rotate accumulates a drag of dx, dy pixels. A drag across the full viewport
// height turns the camera once around.
func (o *Orbit) Rotate(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	h := float64(viewportHeight)
	o.deltaTheta -= 2 * math.Pi * float64(dx) / h * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * float64(dy) / h * o.RotateSpeed
}

// Zoom accumulates wheel movement; positive values dolly in.
func (o *Orbit) Zoom(wheel float32) {
	if wheel == 0 {
		return
	}
	step := math.Pow(0.95, o.ZoomSpeed)
	if wheel > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// Pan accumulates a screen-space drag that moves the target and camera together.
func (o *Orbit) Pan(dx, dy float32, viewportHeight int, fovY float64) {
	if viewportHeight <= 0 {
		return
	}
	distance := float64(o.position.Sub(o.target).Len())
	world := 2 * distance * math.Tan(fovY/2) / float64(viewportHeight) * o.PanSpeed

	right, up := o.Basis()
	offset := right.Mul(float32(-float64(dx) * world)).Add(up.Mul(float32(float64(dy) * world)))
	o.panOffset = o.panOffset.Add(offset)
}

// Update applies pending motion. It reports whether the camera moved.
func (o *Orbit) Update() bool {
	offset := o.position.Sub(o.target)
	radius, theta, phi := toSpherical(offset)

	if o.EnableDamping {
		theta += o.deltaTheta * o.DampingFactor
		phi += o.deltaPhi * o.DampingFactor
	} else {
		theta += o.deltaTheta
		phi += o.deltaPhi
	}

	phi = clamp(phi, math.Max(o.MinPolarAngle, polarEpsilon), math.Min(o.MaxPolarAngle, math.Pi-polarEpsilon))
	radius = clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	if o.EnableDamping {
		o.target = o.target.Add(o.panOffset.Mul(float32(o.DampingFactor)))
	} else {
		o.target = o.target.Add(o.panOffset)
	}

	previous := o.position
	o.position = o.target.Add(fromSpherical(radius, theta, phi))

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
		o.panOffset = o.panOffset.Mul(float32(1 - o.DampingFactor))
	} else {
		o.deltaTheta = 0
		o.deltaPhi = 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1

	return previous.Sub(o.position).Len() > moveEpsilon
}

// Basis returns the camera's right and up vectors in world space.
func (o *Orbit) Basis() (right, up mgl32.Vec3) {
	forward := o.target.Sub(o.position)
	if forward.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	}
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = right.Cross(forward).Normalize()
	return right, up
}

func toSpherical(v mgl32.Vec3) (radius, theta, phi float64) {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	radius = math.Sqrt(x*x + y*y + z*z)
	if radius == 0 {
		return 0, 0, 0
	}
	theta = math.Atan2(x, z)
	phi = math.Acos(clamp(y/radius, -1, 1))
	return radius, theta, phi
}

func fromSpherical(radius, theta, phi float64) mgl32.Vec3 {
	sinPhiRadius := math.Sin(phi) * radius
	return mgl32.Vec3{
		float32(sinPhiRadius * math.Sin(theta)),
		float32(math.Cos(phi) * radius),
		float32(sinPhiRadius * math.Cos(theta)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
