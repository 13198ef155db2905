package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var ErrBadGeometry = errors.New("malformed geometry")

// Mesh is one triangle primitive with its node transform applied, ready to
// upload. Normals and TexCoords are either empty or one per position.
type Mesh struct {
	Node      int
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Indices   []uint32
	BaseColor [4]float32
}

func (m Mesh) Empty() bool {
	return len(m.Positions) == 0 || len(m.Indices) < 3
}

// Bounds returns the axis-aligned box around the positions.
func (m Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Positions) == 0 {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = min(lo[axis], p[axis])
			hi[axis] = max(hi[axis], p[axis])
		}
	}
	return lo, hi
}

// Unindexed expands the mesh so every triangle corner has its own vertex.
// Used when the vertex count does not fit 16-bit indices.
func (m Mesh) Unindexed() Mesh {
	out := Mesh{Node: m.Node, BaseColor: m.BaseColor}
	out.Positions = make([][3]float32, len(m.Indices))
	if len(m.Normals) > 0 {
		out.Normals = make([][3]float32, len(m.Indices))
	}
	if len(m.TexCoords) > 0 {
		out.TexCoords = make([][2]float32, len(m.Indices))
	}
	for i, idx := range m.Indices {
		out.Positions[i] = m.Positions[idx]
		if out.Normals != nil {
			out.Normals[i] = m.Normals[idx]
		}
		if out.TexCoords != nil {
			out.TexCoords[i] = m.TexCoords[idx]
		}
	}
	return out
}

// Arrays flattens the mesh into separate vertex arrays and 16-bit indices,
// the layout raylib uploads. Meshes with more vertices than 16-bit indices can address come
// back unindexed.
func (m Mesh) Arrays() (vertices, normals, texcoords []float32, indices []uint16) {
	if len(m.Positions) > math.MaxUint16+1 {
		m = m.Unindexed()
	}

	vertices = make([]float32, 0, len(m.Positions)*3)
	for _, p := range m.Positions {
		vertices = append(vertices, p[0], p[1], p[2])
	}
	if len(m.Normals) > 0 {
		normals = make([]float32, 0, len(m.Normals)*3)
		for _, n := range m.Normals {
			normals = append(normals, n[0], n[1], n[2])
		}
	}
	if len(m.TexCoords) > 0 {
		texcoords = make([]float32, 0, len(m.TexCoords)*2)
		for _, uv := range m.TexCoords {
			texcoords = append(texcoords, uv[0], uv[1])
		}
	}
	if len(m.Indices) > 0 {
		indices = make([]uint16, len(m.Indices))
		for i, idx := range m.Indices {
			indices[i] = uint16(idx)
		}
	}
	return vertices, normals, texcoords, indices
}

// Color is the opaque 8-bit form of BaseColor.
func (m Mesh) Color() color.RGBA {
	to8 := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return color.RGBA{R: to8(m.BaseColor[0]), G: to8(m.BaseColor[1]), B: to8(m.BaseColor[2]), A: 255}
}

// eachPrimitive visits the triangle primitives in the order they become
// meshes: nodes in document order, primitives in mesh order.
func eachPrimitive(doc *gltf.Document, fn func(node int, p *gltf.Primitive)) {
	for i, node := range doc.Nodes {
		if node == nil || node.Mesh == nil {
			continue
		}
		mi := *node.Mesh
		if mi < 0 || mi >= len(doc.Meshes) || doc.Meshes[mi] == nil {
			continue
		}
		for _, p := range doc.Meshes[mi].Primitives {
			if p == nil || p.Mode != gltf.PrimitiveTriangles {
				continue
			}
			fn(i, p)
		}
	}
}

// BuildMeshes reads every triangle primitive into a Mesh, in the order of
// MeshIndices. A primitive that cannot be read stays in the slice as an
// empty Mesh so indices keep lining up; its error is joined into the result.
func BuildMeshes(doc *gltf.Document) ([]Mesh, error) {
	world := WorldTransforms(doc)

	var meshes []Mesh
	var errs []error
	eachPrimitive(doc, func(node int, p *gltf.Primitive) {
		m, err := readPrimitive(doc, p, world[node])
		m.Node = node
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %d (node %q): %w", len(meshes), doc.Nodes[node].Name, err))
			m = Mesh{Node: node, BaseColor: m.BaseColor}
		}
		meshes = append(meshes, m)
	})
	return meshes, errors.Join(errs...)
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive, world mgl32.Mat4) (Mesh, error) {
	m := Mesh{BaseColor: baseColor(doc, p.Material)}
	if _, ok := p.Extensions[dracoExtension]; ok {
		return m, ErrCompressedMesh
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return m, fmt.Errorf("%w: no POSITION attribute", ErrBadGeometry)
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return m, fmt.Errorf("POSITION: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return m, fmt.Errorf("POSITION: %w", err)
	}

	if p.Indices != nil {
		acr, err := accessor(doc, *p.Indices)
		if err != nil {
			return m, fmt.Errorf("indices: %w", err)
		}
		if m.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return m, fmt.Errorf("indices: %w", err)
		}
	} else {
		m.Indices = make([]uint32, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}
	m.Indices = m.Indices[:len(m.Indices)/3*3]
	for _, idx := range m.Indices {
		if int(idx) >= len(positions) {
			return m, fmt.Errorf("%w: index %d beyond %d vertices", ErrBadGeometry, idx, len(positions))
		}
	}

	m.Positions = make([][3]float32, len(positions))
	for i, v := range positions {
		m.Positions[i] = world.Mul4x1(mgl32.Vec3(v).Vec4(1)).Vec3()
	}

	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err := accessor(doc, idx); err == nil && acr.Count == len(positions) {
			if normals, err := modeler.ReadNormal(doc, acr, nil); err == nil {
				m.Normals = transformNormals(normals, world)
			}
		}
	}
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err := accessor(doc, idx); err == nil && acr.Count == len(positions) {
			if uv, err := modeler.ReadTextureCoord(doc, acr, nil); err == nil {
				m.TexCoords = uv
			}
		}
	}
	return m, nil
}

// accessor returns accessor i once its buffer view and offset are known to
// be in range.
func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
		return nil, fmt.Errorf("%w: accessor %d missing", ErrBadGeometry, i)
	}
	acr := doc.Accessors[i]
	if acr.BufferView == nil {
		return nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrBadGeometry, i)
	}
	bv := *acr.BufferView
	if bv < 0 || bv >= len(doc.BufferViews) || doc.BufferViews[bv] == nil {
		return nil, fmt.Errorf("%w: accessor %d buffer view %d missing", ErrBadGeometry, i, bv)
	}
	view := doc.BufferViews[bv]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) || doc.Buffers[view.Buffer] == nil {
		return nil, fmt.Errorf("%w: buffer view %d buffer missing", ErrBadGeometry, bv)
	}
	if acr.ByteOffset < 0 || acr.ByteOffset > view.ByteLength {
		return nil, fmt.Errorf("%w: accessor %d offset %d past view length %d", ErrBadGeometry, i, acr.ByteOffset, view.ByteLength)
	}
	if size := gltf.SizeOfElement(acr.ComponentType, acr.Type); size == 0 || acr.Count < 0 || acr.Count > (view.ByteLength-acr.ByteOffset)/size {
		return nil, fmt.Errorf("%w: accessor %d count %d does not fit its view", ErrBadGeometry, i, acr.Count)
	}
	return acr, nil
}

func transformNormals(normals [][3]float32, world mgl32.Mat4) [][3]float32 {
	basis := world.Mat3()
	if basis.Det() != 0 {
		basis = basis.Inv().Transpose()
	}
	out := make([][3]float32, len(normals))
	for i, n := range normals {
		v := basis.Mul3x1(mgl32.Vec3(n))
		if v.Len() > 0 {
			v = v.Normalize()
		}
		out[i] = v
	}
	return out
}

func baseColor(doc *gltf.Document, material *int) [4]float32 {
	c := [4]float32{1, 1, 1, 1}
	if material == nil || *material < 0 || *material >= len(doc.Materials) {
		return c
	}
	mat := doc.Materials[*material]
	if mat == nil || mat.PBRMetallicRoughness == nil {
		return c
	}
	f := mat.PBRMetallicRoughness.BaseColorFactorOrDefault()
	return [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
}

// LocalTransform returns a node's matrix, or T*R*S when it has none.
func LocalTransform(n *gltf.Node) mgl32.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// WorldTransforms composes each node's transform with its ancestors'. Nodes
// reached through a parent cycle keep their local transform.
func WorldTransforms(doc *gltf.Document) []mgl32.Mat4 {
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for i, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if c >= 0 && c < len(parent) && c != i && parent[c] < 0 {
				parent[c] = i
			}
		}
	}

	world := make([]mgl32.Mat4, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			world[i] = mgl32.Ident4()
			continue
		}
		m := LocalTransform(n)
		seen := map[int]bool{i: true}
		for p := parent[i]; p >= 0 && !seen[p]; p = parent[p] {
			seen[p] = true
			if doc.Nodes[p] != nil {
				m = LocalTransform(doc.Nodes[p]).Mul4(m)
			}
		}
		world[i] = m
	}
	return world
}
