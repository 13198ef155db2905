package scene

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prims(n int) []*gltf.Primitive {
	out := make([]*gltf.Primitive, n)
	for i := range out {
		out[i] = &gltf.Primitive{Mode: gltf.PrimitiveTriangles, Attributes: gltf.PrimitiveAttributes{gltf.POSITION: 0}}
	}
	return out
}

// portalDoc mirrors the portal asset: four named roots plus filler nodes.
func portalDoc() *gltf.Document {
	lines := &gltf.Primitive{Mode: gltf.PrimitiveLines, Attributes: gltf.PrimitiveAttributes{gltf.POSITION: 0}}
	return &gltf.Document{
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Nodes: []int{0, 1, 2, 3, 4, 5}}},
		Nodes: []*gltf.Node{
			{Name: "baked", Mesh: gltf.Index(0)},
			{Name: "Circle", Mesh: gltf.Index(1)},
			{Name: "Empty"},
			{Name: "Cube011", Mesh: gltf.Index(2)},
			{Name: "Group", Children: []int{6}},
			{Name: "Cube031", Mesh: gltf.Index(3)},
			{Name: "Nested", Mesh: gltf.Index(1)},
		},
		Meshes: []*gltf.Mesh{
			{Name: "baked", Primitives: prims(2)},
			{Name: "portal", Primitives: prims(1)},
			{Name: "pole", Primitives: append(prims(1), lines, prims(1)[0])},
			{Name: "pole2", Primitives: prims(1)},
		},
	}
}

func TestMeshIndices_FollowsRaylibOrder(t *testing.T) {
	doc := portalDoc()
	idx := MeshIndices(doc)

	assert.Equal(t, []int{0, 1}, idx[0])
	assert.Equal(t, []int{2}, idx[1])
	assert.Empty(t, idx[2])
	assert.Equal(t, []int{3, 4}, idx[3], "line primitives are skipped")
	assert.Equal(t, []int{5}, idx[5])
	assert.Equal(t, []int{6}, idx[6])
	assert.Equal(t, 7, MeshCount(doc))
}

func TestBind_AllFound(t *testing.T) {
	bindings, err := Bind(portalDoc(), DefaultNodeNames())
	require.NoError(t, err)
	require.Len(t, bindings, 4)

	assert.Equal(t, Binding{Role: RoleBaked, Node: "baked", NodeIndex: 0, Meshes: []int{0, 1}}, bindings[0])
	assert.Equal(t, RolePortal, bindings[1].Role)
	assert.Equal(t, []int{2}, bindings[1].Meshes)

	roles := RoleOfMesh(bindings)
	assert.Equal(t, RolePoleLight, roles[3])
	assert.Equal(t, RolePoleLight, roles[5])
	_, bound := roles[6]
	assert.False(t, bound)
}

func TestBind_MissingPortalIsRecoverable(t *testing.T) {
	doc := portalDoc()
	doc.Nodes[1].Name = "Disc"

	bindings, err := Bind(doc, DefaultNodeNames())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	var nodeErr *NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "Circle", nodeErr.Name)
	assert.Equal(t, RolePortal, nodeErr.Role)

	require.Len(t, bindings, 3)
	for _, b := range bindings {
		assert.NotEqual(t, RolePortal, b.Role)
	}
}

func TestBind_OnlySearchesRoots(t *testing.T) {
	names := DefaultNodeNames()
	names.Portal = "Nested"
	_, err := Bind(portalDoc(), names)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestBind_MeshlessNode(t *testing.T) {
	names := DefaultNodeNames()
	names.PoleLights = []string{"Empty"}
	bindings, err := Bind(portalDoc(), names)
	assert.ErrorIs(t, err, ErrNodeHasNoMesh)
	assert.Len(t, bindings, 2)
}

func TestBind_JoinsEveryMiss(t *testing.T) {
	doc := &gltf.Document{Scenes: []*gltf.Scene{{}}}
	bindings, err := Bind(doc, DefaultNodeNames())
	assert.Empty(t, bindings)
	for _, name := range []string{"baked", "Circle", "Cube011", "Cube031"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestBind_DracoStillBinds(t *testing.T) {
	doc := portalDoc()
	doc.ExtensionsRequired = []string{"KHR_draco_mesh_compression"}
	require.True(t, Compressed(doc))

	bindings, err := Bind(doc, DefaultNodeNames())
	require.NoError(t, err)
	assert.Len(t, bindings, 4)
}

func TestRootNodes_WithoutScenes(t *testing.T) {
	doc := portalDoc()
	doc.Scenes = nil
	doc.Scene = nil
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, RootNodes(doc))
}

// minimalGLTF carries one embedded triangle shared by every primitive.
const minimalGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]}],
  "scene": 0,
  "scenes": [{"nodes": [0, 1, 2, 3]}],
  "nodes": [
    {"name": "baked", "mesh": 0},
    {"name": "Circle", "mesh": 1},
    {"name": "Cube011", "mesh": 1},
    {"name": "Cube031", "mesh": 1}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}}, {"attributes": {"POSITION": 0}}]},
    {"primitives": [{"attributes": {"POSITION": 0}}]}
  ]
}`

func writeAssets(t *testing.T, gltfBody string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "baked.gltf"), []byte(gltfBody), 0644))

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	f, err := os.Create(filepath.Join(dir, "baked.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return dir
}

func TestDecodeMinimalDocument(t *testing.T) {
	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(strings.NewReader(minimalGLTF)).Decode(&doc))

	bindings, err := Bind(&doc, DefaultNodeNames())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, bindings[0].Meshes)
	assert.Equal(t, []int{4}, bindings[3].Meshes)
}

func TestLoad_Completes(t *testing.T) {
	dir := writeAssets(t, minimalGLTF)
	task := Load(context.Background(), Request{
		Texture: filepath.Join(dir, "baked.png"),
		Model:   filepath.Join(dir, "baked.gltf"),
		Names:   DefaultNodeNames(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NoError(t, err)

	require.NotNil(t, res.Texture)
	assert.Equal(t, image.Rect(0, 0, 8, 4), res.Texture.Bounds())
	assert.Len(t, res.Bindings, 4)
	assert.Equal(t, 5, res.MeshCount)
	require.Len(t, res.Meshes, 5)
	for _, m := range res.Meshes {
		assert.False(t, m.Empty())
		assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	}

	select {
	case <-task.Done():
	default:
		t.Fatal("Done should be closed after Wait")
	}
	again, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, res.ModelPath, again.ModelPath)
}

func TestLoad_ReduceHalvesTexture(t *testing.T) {
	dir := writeAssets(t, minimalGLTF)
	res, err := Load(context.Background(), Request{
		Texture: filepath.Join(dir, "baked.jpg"),
		Model:   filepath.Join(dir, "baked.gltf"),
		Names:   DefaultNodeNames(),
		Reduce:  true,
	}).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), res.Texture.Bounds())
	px := res.Texture.RGBAAt(1, 1)
	for _, c := range []uint8{px.R, px.G, px.B, px.A} {
		assert.InDelta(t, 0x80, c, 1)
	}
}

func TestLoad_MissingPortalNode(t *testing.T) {
	dir := writeAssets(t, strings.Replace(minimalGLTF, `"Circle"`, `"Disc"`, 1))
	res, err := Load(context.Background(), Request{
		Texture: filepath.Join(dir, "baked.png"),
		Model:   filepath.Join(dir, "baked.gltf"),
		Names:   DefaultNodeNames(),
	}).Wait(context.Background())

	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.NotNil(t, res.Document)
	assert.NotNil(t, res.Texture)
	assert.Len(t, res.Bindings, 3)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	res, err := Load(context.Background(), Request{
		Texture: filepath.Join(dir, "nope.jpg"),
		Model:   filepath.Join(dir, "nope.glb"),
		Names:   DefaultNodeNames(),
	}).Wait(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "texture")
	assert.Contains(t, err.Error(), "model")
	assert.Nil(t, res.Document)
	assert.Nil(t, res.Texture)
}

func TestTask_ResultPending(t *testing.T) {
	task := &Task{done: make(chan struct{})}
	_, err := task.Result()
	assert.ErrorIs(t, err, ErrPending)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHalve_NeverEmpty(t *testing.T) {
	out := Halve(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.Equal(t, image.Rect(0, 0, 1, 1), out.Bounds())
}

// dracoGLTF keeps the node tree but moves the geometry into the Draco
// extension, the way compressed exports look to a plain glTF reader.
var dracoGLTF = strings.NewReplacer(
	`"asset": {"version": "2.0"},`, `"asset": {"version": "2.0"}, "extensionsRequired": ["KHR_draco_mesh_compression"],`,
	`{"attributes": {"POSITION": 0}}`, `{"attributes": {"POSITION": 0}, "extensions": {"KHR_draco_mesh_compression": {"bufferView": 0, "attributes": {"POSITION": 0}}}}`,
).Replace(minimalGLTF)

func TestLoad_DracoWithoutFallback(t *testing.T) {
	dir := writeAssets(t, dracoGLTF)
	res, err := Load(context.Background(), Request{
		Texture: filepath.Join(dir, "baked.png"),
		Model:   filepath.Join(dir, "baked.gltf"),
		Names:   DefaultNodeNames(),
	}).Wait(context.Background())

	assert.ErrorIs(t, err, ErrCompressedMesh)
	assert.NotNil(t, res.Texture)
	assert.Len(t, res.Bindings, 4)
	require.Len(t, res.Meshes, 5)
	for _, m := range res.Meshes {
		assert.True(t, m.Empty())
	}
}

func TestLoad_DracoUsesFallback(t *testing.T) {
	dir := writeAssets(t, dracoGLTF)
	fallback := filepath.Join(dir, "baked-raw.gltf")
	require.NoError(t, os.WriteFile(fallback, []byte(minimalGLTF), 0644))

	res, err := Load(context.Background(), Request{
		Texture:       filepath.Join(dir, "baked.png"),
		Model:         filepath.Join(dir, "baked.gltf"),
		FallbackModel: fallback,
		Names:         DefaultNodeNames(),
	}).Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fallback, res.ModelPath)
	require.Len(t, res.Meshes, 5)
	assert.False(t, res.Meshes[0].Empty())
}

func TestLoad_FallbackIgnoredForPlainModel(t *testing.T) {
	dir := writeAssets(t, minimalGLTF)
	res, err := Load(context.Background(), Request{
		Texture:       filepath.Join(dir, "baked.png"),
		Model:         filepath.Join(dir, "baked.gltf"),
		FallbackModel: filepath.Join(dir, "absent.gltf"),
		Names:         DefaultNodeNames(),
	}).Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "baked.gltf"), res.ModelPath)
}
