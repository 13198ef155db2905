package particle

import "github.com/go-gl/mathgl/mgl32"

// Box is an axis-aligned spawn volume, inclusive of Min and exclusive of Max.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// DefaultBox is the volume above the portal scene's ground plane.
var DefaultBox = Box{
	Min: mgl32.Vec3{-2, 0, -2},
	Max: mgl32.Vec3{2, 1.5, 2},
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// Field is an immutable point cloud. Positions holds x, y, z per particle and
// Scales one size multiplier per particle.
type Field struct {
	Positions []float32
	Scales    []float32
}

// Len returns the particle count.
func (f Field) Len() int {
	return len(f.Scales)
}

// At returns the position and scale of particle i.
func (f Field) At(i int) (mgl32.Vec3, float32) {
	return mgl32.Vec3{f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2]}, f.Scales[i]
}
