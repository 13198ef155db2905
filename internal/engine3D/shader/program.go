package shader

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/engine3D/glsl"
	"portalscene/internal/engine3D/uniform"
	"portalscene/internal/utils"
)

// Program is a compiled shader plus its cached uniform locations.
type Program struct {
	Name   string
	Origin string
	Shader rl.Shader

	locations map[string]int32
	valid     bool
}

// Compile builds src. A program whose required uniform does not resolve is
// returned but reports !Valid so callers can fall back.
func Compile(src glsl.Source) *Program {
	sh := rl.LoadShaderFromMemory(src.Vertex, src.Fragment)
	p := &Program{
		Name:      src.Name,
		Origin:    src.Origin,
		Shader:    sh,
		locations: make(map[string]int32),
	}

	for _, name := range glsl.Uniforms(src.Name) {
		loc := rl.GetShaderLocation(sh, name)
		p.locations[name] = loc
		if loc == -1 {
			utils.Debug("Shader %s: uniform %s not active", src.Name, name)
		}
	}
	p.valid = sh.ID != 0 && p.locations[glsl.RequiredUniform] != -1

	if p.valid {
		utils.Debug("Shader %s compiled from %s (id %d)", src.Name, src.Origin, sh.ID)
	} else {
		utils.Warn("Shader %s from %s failed to compile or lacks %s", src.Name, src.Origin, glsl.RequiredUniform)
	}
	return p
}

// Load resolves name through lib and compiles it.
func Load(lib glsl.Library, name string) (*Program, error) {
	src, err := lib.Load(name)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return Compile(src), nil
}

func (p *Program) Valid() bool {
	return p != nil && p.valid
}

// Location returns the cached location, resolving unknown names lazily.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := rl.GetShaderLocation(p.Shader, name)
	p.locations[name] = loc
	return loc
}

// Apply pushes values from set. With all unset only dirty names are sent;
// GL keeps earlier values on the program.
func (p *Program) Apply(set *uniform.Set, all bool) {
	if !p.Valid() {
		return
	}
	send := func(name string, v uniform.Value) {
		loc := p.Location(name)
		if loc == -1 {
			return
		}
		rl.SetShaderValue(p.Shader, loc, v.Floats(), uniformType(v.Kind))
	}

	if all {
		set.Each(send)
		return
	}
	for _, name := range set.Dirty() {
		if v, ok := set.Get(name); ok {
			send(name, v)
		}
	}
}

func uniformType(k uniform.Kind) rl.ShaderUniformDataType {
	switch k {
	case uniform.Vec2:
		return rl.ShaderUniformVec2
	case uniform.Vec3:
		return rl.ShaderUniformVec3
	case uniform.Vec4:
		return rl.ShaderUniformVec4
	}
	return rl.ShaderUniformFloat
}

// Reload compiles a fresh copy from lib. On success the old program is
// unloaded and the new one returned; otherwise p is kept.
func (p *Program) Reload(lib glsl.Library) *Program {
	next, err := Load(lib, p.Name)
	if err != nil {
		utils.Error("Shader reload: %v", err)
		return p
	}
	if !next.Valid() {
		next.Unload()
		utils.Warn("Shader reload: keeping previous %s", p.Name)
		return p
	}
	p.Unload()
	utils.Info("Shader %s reloaded from %s", next.Name, next.Origin)
	return next
}

func (p *Program) Unload() {
	if p == nil || p.Shader.ID == 0 {
		return
	}
	rl.UnloadShader(p.Shader)
	p.Shader = rl.Shader{}
	p.valid = false
}
