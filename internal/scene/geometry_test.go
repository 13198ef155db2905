package scene

import (
	"image/color"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var triangle = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

// triangleDoc holds one indexed triangle under a translated child of a
// scaled root.
func triangleDoc(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, triangle)
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0.5, 0, 1}},
	}}
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
		Mode:       gltf.PrimitiveTriangles,
		Indices:    gltf.Index(idx),
		Material:   gltf.Index(0),
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos, gltf.NORMAL: nrm, gltf.TEXCOORD_0: uv},
	}}}}
	doc.Nodes = []*gltf.Node{
		{Name: "root", Children: []int{1}, Scale: [3]float64{2, 2, 2}},
		{Name: "baked", Mesh: gltf.Index(0), Translation: [3]float64{0, 1, 0}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	return doc
}

func TestBuildMeshes_AppliesWorldTransform(t *testing.T) {
	meshes, err := BuildMeshes(triangleDoc(t))
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, 1, m.Node)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	want := [][3]float32{{0, 2, 0}, {2, 2, 0}, {0, 4, 0}}
	for i := range want {
		assert.InDeltaSlice(t, want[i][:], m.Positions[i][:], 1e-5)
	}
	require.Len(t, m.Normals, 3)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, m.Normals[0][:], 1e-5)
	assert.Equal(t, [2]float32{1, 0}, m.TexCoords[1])
	assert.Equal(t, [4]float32{1, 0.5, 0, 1}, m.BaseColor)

	lo, hi := m.Bounds()
	assert.Equal(t, [3]float32{0, 2, 0}, lo)
	assert.Equal(t, [3]float32{2, 4, 0}, hi)
}

func TestBuildMeshes_UnindexedPrimitive(t *testing.T) {
	doc := triangleDoc(t)
	doc.Meshes[0].Primitives[0].Indices = nil

	meshes, err := BuildMeshes(doc)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, meshes[0].Indices)
}

func TestBuildMeshes_KeepsIndicesAligned(t *testing.T) {
	doc := portalDoc()
	meshes, err := BuildMeshes(doc)

	assert.ErrorIs(t, err, ErrBadGeometry)
	assert.Len(t, meshes, MeshCount(doc))
	for node, idx := range MeshIndices(doc) {
		for _, i := range idx {
			assert.Equal(t, node, meshes[i].Node)
			assert.True(t, meshes[i].Empty())
		}
	}
}

func TestBuildMeshes_IndexOutOfRange(t *testing.T) {
	doc := triangleDoc(t)
	bad := modeler.WriteIndices(doc, []uint16{0, 1, 7})
	doc.Meshes[0].Primitives[0].Indices = gltf.Index(bad)

	meshes, err := BuildMeshes(doc)
	assert.ErrorIs(t, err, ErrBadGeometry)
	require.Len(t, meshes, 1)
	assert.True(t, meshes[0].Empty())
}

func TestBuildMeshes_OversizedAccessor(t *testing.T) {
	doc := triangleDoc(t)
	pos := doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION]
	doc.Accessors[pos].Count = 1 << 40

	require.NotPanics(t, func() {
		_, err := BuildMeshes(doc)
		assert.ErrorIs(t, err, ErrBadGeometry)
	})
}

func TestBuildMeshes_DracoPrimitive(t *testing.T) {
	doc := triangleDoc(t)
	doc.Meshes[0].Primitives[0].Extensions = gltf.Extensions{dracoExtension: map[string]any{"bufferView": 0}}

	meshes, err := BuildMeshes(doc)
	assert.ErrorIs(t, err, ErrCompressedMesh)
	require.Len(t, meshes, 1)
	assert.True(t, meshes[0].Empty())
	assert.True(t, Compressed(doc))
}

func TestMesh_Unindexed(t *testing.T) {
	m := Mesh{
		Positions: triangle,
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
		Indices:   []uint32{2, 1, 0, 0, 1, 2},
	}
	out := m.Unindexed()

	require.Len(t, out.Positions, 6)
	assert.Equal(t, triangle[2], out.Positions[0])
	assert.Equal(t, [2]float32{0, 1}, out.TexCoords[0])
	assert.Nil(t, out.Normals)
	assert.Nil(t, out.Indices)
}

func TestWorldTransforms_Cycle(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "a", Children: []int{1}, Translation: [3]float64{1, 0, 0}},
		{Name: "b", Children: []int{0}, Translation: [3]float64{0, 1, 0}},
	}}
	require.NotPanics(t, func() {
		world := WorldTransforms(doc)
		assert.Len(t, world, 2)
	})
}

func TestMesh_Arrays(t *testing.T) {
	m := Mesh{
		Positions: triangle,
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
	vertices, normals, texcoords, indices := m.Arrays()

	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, vertices)
	assert.Len(t, normals, 9)
	assert.Nil(t, texcoords)
	assert.Equal(t, []uint16{0, 1, 2}, indices)
}

func TestMesh_ArraysPastSixteenBitIndices(t *testing.T) {
	n := math.MaxUint16 + 2
	m := Mesh{Positions: make([][3]float32, n), Indices: []uint32{0, uint32(n - 1), 1}}
	m.Positions[n-1] = [3]float32{5, 6, 7}

	vertices, _, _, indices := m.Arrays()
	assert.Nil(t, indices)
	require.Len(t, vertices, 9)
	assert.Equal(t, []float32{5, 6, 7}, vertices[3:6])
}

func TestMesh_Color(t *testing.T) {
	m := Mesh{BaseColor: [4]float32{1, 0.5, -1, 0.2}}
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, m.Color())
}
