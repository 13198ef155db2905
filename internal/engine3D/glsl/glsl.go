// Package glsl provides the scene's shader sources: embedded defaults, an
// optional on-disk override directory and a watcher for hot reload.
package glsl

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed shaders/*.vs shaders/*.fs
var embedded embed.FS

const (
	Fireflies = "fireflies"
	Portal    = "portal"
)

const (
	vertexExt   = ".vs"
	fragmentExt = ".fs"
)

var ErrUnknownProgram = errors.New("unknown shader program")

// uniforms lists what each program reads. uTime is required by both.
var uniforms = map[string][]string{
	Fireflies: {"uTime", "uPixelRatio", "uSize", "uResolution"},
	Portal:    {"uTime", "uColorStart", "uColorEnd"},
}

// RequiredUniform must resolve for a compiled program to count as valid.
const RequiredUniform = "uTime"

// Source is a vertex/fragment pair ready for compilation.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
	// Origin is "embedded" or the override file paths joined by a comma.
	Origin string
}

func Names() []string {
	return []string{Fireflies, Portal}
}

// Uniforms returns the uniform names program name consumes.
func Uniforms(name string) []string {
	return append([]string(nil), uniforms[name]...)
}

func Embedded(name string) (Source, error) {
	if _, ok := uniforms[name]; !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
	}
	vs, err := embedded.ReadFile("shaders/" + name + vertexExt)
	if err != nil {
		return Source{}, err
	}
	fs, err := embedded.ReadFile("shaders/" + name + fragmentExt)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: name, Vertex: string(vs), Fragment: string(fs), Origin: "embedded"}, nil
}

// Library resolves sources, preferring files in Dir over the embedded ones.
// Each stage is overridden independently.
type Library struct {
	Dir string
}

func (l Library) Load(name string) (Source, error) {
	src, err := Embedded(name)
	if err != nil || l.Dir == "" {
		return src, err
	}

	var origins []string
	for _, stage := range []struct {
		ext string
		dst *string
	}{
		{vertexExt, &src.Vertex},
		{fragmentExt, &src.Fragment},
	} {
		path := filepath.Join(l.Dir, name+stage.ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Source{}, fmt.Errorf("read %s: %w", path, err)
		}
		*stage.dst = string(data)
		origins = append(origins, path)
	}
	if len(origins) > 0 {
		src.Origin = strings.Join(origins, ",")
	}
	return src, nil
}

// programFor maps a shader file name to its program, or "" if unrelated.
func programFor(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != vertexExt && ext != fragmentExt {
		return ""
	}
	name := strings.TrimSuffix(base, ext)
	if _, ok := uniforms[name]; !ok {
		return ""
	}
	return name
}
