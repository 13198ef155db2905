package engine3D

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/scene"
)

// gpuMesh is an uploaded scene mesh. raylib keeps pointers into the Go
// slices held here, so they live as long as the mesh does.
type gpuMesh struct {
	mesh     rl.Mesh
	uploaded bool
	color    color.RGBA
	bounds   rl.BoundingBox

	vertices  []float32
	normals   []float32
	texcoords []float32
	indices   []uint16
}

func uploadMesh(m scene.Mesh) gpuMesh {
	g := gpuMesh{color: m.Color()}
	if m.Empty() {
		return g
	}

	lo, hi := m.Bounds()
	g.bounds = rl.NewBoundingBox(rl.NewVector3(lo[0], lo[1], lo[2]), rl.NewVector3(hi[0], hi[1], hi[2]))

	g.vertices, g.normals, g.texcoords, g.indices = m.Arrays()
	g.mesh.VertexCount = int32(len(g.vertices) / 3)
	g.mesh.Vertices = &g.vertices[0]
	if len(g.normals) > 0 {
		g.mesh.Normals = &g.normals[0]
	}
	if len(g.texcoords) > 0 {
		g.mesh.Texcoords = &g.texcoords[0]
	}
	if len(g.indices) > 0 {
		g.mesh.TriangleCount = int32(len(g.indices) / 3)
		g.mesh.Indices = &g.indices[0]
	} else {
		g.mesh.TriangleCount = g.mesh.VertexCount / 3
	}

	rl.UploadMesh(&g.mesh, false)
	g.uploaded = true
	return g
}

func (g *gpuMesh) unload() {
	if !g.uploaded {
		return
	}
	rl.UnloadMesh(&g.mesh)
	g.uploaded = false
}
