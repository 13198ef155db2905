package particle

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Counts(t *testing.T) {
	for _, n := range []int{1, 30, 500} {
		field := Generate(n, DefaultBox, rand.New(rand.NewSource(int64(n))))
		assert.Len(t, field.Positions, 3*n)
		assert.Len(t, field.Scales, n)
		assert.Equal(t, n, field.Len())
	}
}

func TestGenerate_Bounds(t *testing.T) {
	box := Box{Min: mgl32.Vec3{-1, 2, -3}, Max: mgl32.Vec3{1, 4, 3}}
	field := Generate(2000, box, rand.New(rand.NewSource(7)))

	for i := 0; i < field.Len(); i++ {
		pos, scale := field.At(i)
		require.Truef(t, box.Contains(pos), "particle %d at %v outside %v", i, pos, box)
		require.GreaterOrEqual(t, scale, float32(0))
		require.Less(t, scale, float32(1))
	}
}

func TestGenerate_Empty(t *testing.T) {
	field := Generate(0, DefaultBox, nil)
	assert.Equal(t, 0, field.Len())
	assert.Empty(t, field.Positions)

	field = Generate(-4, DefaultBox, nil)
	assert.Equal(t, 0, field.Len())
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(16, DefaultBox, rand.New(rand.NewSource(42)))
	b := Generate(16, DefaultBox, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}
