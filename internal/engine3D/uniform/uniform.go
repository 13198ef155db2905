package uniform

import "fmt"

type Kind int

const (
	Float Kind = iota + 1
	Vec2
	Vec3
	Vec4
)

// Components returns the number of floats a value of this kind carries.
func (k Kind) Components() int {
	switch k {
	case Float:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Value struct {
	Kind Kind
	Data [4]float32
}

// Floats returns the meaningful components of the value.
func (v Value) Floats() []float32 {
	return v.Data[:v.Kind.Components()]
}

// Set is an ordered collection of named uniform values for one program.
type Set struct {
	order  []string
	values map[string]Value
	dirty  map[string]bool
}

func NewSet() *Set {
	return &Set{
		values: make(map[string]Value),
		dirty:  make(map[string]bool),
	}
}

func (s *Set) put(name string, v Value) {
	old, ok := s.values[name]
	if !ok {
		s.order = append(s.order, name)
	} else if old == v {
		return
	}
	s.values[name] = v
	s.dirty[name] = true
}

func (s *Set) SetFloat(name string, f float32) {
	s.put(name, Value{Kind: Float, Data: [4]float32{f}})
}

func (s *Set) SetVec2(name string, v [2]float32) {
	s.put(name, Value{Kind: Vec2, Data: [4]float32{v[0], v[1]}})
}

func (s *Set) SetVec3(name string, v [3]float32) {
	s.put(name, Value{Kind: Vec3, Data: [4]float32{v[0], v[1], v[2]}})
}

func (s *Set) SetVec4(name string, v [4]float32) {
	s.put(name, Value{Kind: Vec4, Data: v})
}

func (s *Set) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns uniform names in first-set order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Each visits every uniform in first-set order.
func (s *Set) Each(fn func(name string, v Value)) {
	for _, name := range s.order {
		fn(name, s.values[name])
	}
}

// Dirty returns the names changed since the last ClearDirty, in order.
func (s *Set) Dirty() []string {
	var names []string
	for _, name := range s.order {
		if s.dirty[name] {
			names = append(names, name)
		}
	}
	return names
}

func (s *Set) ClearDirty() {
	for name := range s.dirty {
		delete(s.dirty, name)
	}
}
