package particle

import (
	"math/rand"
	"time"
)

// Generate fills a field of n fireflies uniformly distributed in box, with
// scales uniform in [0,1). A nil rng seeds a new source from the clock.
func Generate(n int, box Box, rng *rand.Rand) Field {
	if n <= 0 {
		return Field{Positions: []float32{}, Scales: []float32{}}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	field := Field{
		Positions: make([]float32, n*3),
		Scales:    make([]float32, n),
	}

	for i := 0; i < n; i++ {
		for axis := 0; axis < 3; axis++ {
			span := box.Max[axis] - box.Min[axis]
			v := box.Min[axis] + rng.Float32()*span
			// float32 rounding can land exactly on Max for wide spans
			if v >= box.Max[axis] && span > 0 {
				v = box.Min[axis]
			}
			field.Positions[i*3+axis] = v
		}
		field.Scales[i] = rng.Float32()
	}

	return field
}
