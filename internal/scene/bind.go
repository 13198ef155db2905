// Package scene loads the portal assets off the render thread, flattens the
// glTF geometry into uploadable meshes and maps the named nodes onto them.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/qmuntal/gltf"
)

const dracoExtension = "KHR_draco_mesh_compression"

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrNodeHasNoMesh  = errors.New("node has no mesh")
	ErrCompressedMesh = errors.New("cannot decode Draco-compressed geometry")
)

type Role int

const (
	RoleBaked Role = iota
	RolePortal
	RolePoleLight
)

func (r Role) String() string {
	switch r {
	case RoleBaked:
		return "baked"
	case RolePortal:
		return "portal"
	case RolePoleLight:
		return "pole light"
	}
	return "unknown"
}

// NodeNames are the exact node names looked up among the scene's roots.
type NodeNames struct {
	Baked      string
	Portal     string
	PoleLights []string
}

func DefaultNodeNames() NodeNames {
	return NodeNames{
		Baked:      "baked",
		Portal:     "Circle",
		PoleLights: []string{"Cube011", "Cube031"},
	}
}

// Binding ties a role to a node and the meshes it produced.
type Binding struct {
	Role      Role
	Node      string
	NodeIndex int
	Meshes    []int
}

type NodeError struct {
	Role Role
	Name string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s node %q: %v", e.Role, e.Name, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Compressed reports whether doc relies on Draco geometry compression.
func Compressed(doc *gltf.Document) bool {
	if slices.Contains(doc.ExtensionsRequired, dracoExtension) {
		return true
	}
	for _, m := range doc.Meshes {
		if m == nil {
			continue
		}
		for _, p := range m.Primitives {
			if p == nil {
				continue
			}
			if _, ok := p.Extensions[dracoExtension]; ok {
				return true
			}
		}
	}
	return false
}

// MeshIndices maps node index to the indices of the meshes BuildMeshes
// produces for it: one per triangle primitive, nodes in document order.
func MeshIndices(doc *gltf.Document) map[int][]int {
	out := make(map[int][]int)
	next := 0
	eachPrimitive(doc, func(node int, _ *gltf.Primitive) {
		out[node] = append(out[node], next)
		next++
	})
	return out
}

// MeshCount is the number of meshes BuildMeshes returns for doc.
func MeshCount(doc *gltf.Document) int {
	n := 0
	for _, idx := range MeshIndices(doc) {
		n += len(idx)
	}
	return n
}

// RootNodes returns the node indices at the root of the default scene. A
// document without scenes falls back to every node no other node parents.
func RootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			si = *doc.Scene
		}
		if s := doc.Scenes[si]; s != nil {
			return s.Nodes
		}
		return nil
	}

	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

// Bind resolves every named node. Nodes that are missing or meshless produce
// a *NodeError; all of them are joined into the returned error while the
// bindings that did resolve are still returned. Binding only looks at the
// node tree, so compressed documents bind like any other.
func Bind(doc *gltf.Document, names NodeNames) ([]Binding, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	roots := RootNodes(doc)
	meshes := MeshIndices(doc)

	find := func(name string) (int, bool) {
		for _, i := range roots {
			if i >= 0 && i < len(doc.Nodes) && doc.Nodes[i] != nil && doc.Nodes[i].Name == name {
				return i, true
			}
		}
		return -1, false
	}

	type want struct {
		role Role
		name string
	}
	wants := []want{{RoleBaked, names.Baked}, {RolePortal, names.Portal}}
	for _, n := range names.PoleLights {
		wants = append(wants, want{RolePoleLight, n})
	}

	var bindings []Binding
	var errs []error
	for _, w := range wants {
		idx, ok := find(w.name)
		if !ok {
			errs = append(errs, &NodeError{Role: w.role, Name: w.name, Err: ErrNodeNotFound})
			continue
		}
		if len(meshes[idx]) == 0 {
			errs = append(errs, &NodeError{Role: w.role, Name: w.name, Err: ErrNodeHasNoMesh})
			continue
		}
		bindings = append(bindings, Binding{
			Role:      w.role,
			Node:      w.name,
			NodeIndex: idx,
			Meshes:    meshes[idx],
		})
	}
	return bindings, errors.Join(errs...)
}

// RoleOfMesh returns a lookup from mesh index to bound role.
func RoleOfMesh(bindings []Binding) map[int]Role {
	out := make(map[int]Role)
	for _, b := range bindings {
		for _, m := range b.Meshes {
			out[m] = b.Role
		}
	}
	return out
}
