package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"golang.org/x/image/draw"

	"portalscene/internal/convert"
	"portalscene/internal/utils"
)

var ErrPending = errors.New("asset task still running")

// Request describes one asset load.
type Request struct {
	Texture string
	Model   string
	// FallbackModel replaces Model when Model is Draco-compressed.
	FallbackModel string
	// Bundle, when set, is extracted into CacheDir and searched first.
	Bundle   string
	CacheDir string
	Names    NodeNames
	// Reduce halves the texture resolution.
	Reduce bool
}

// Result carries everything decoded off the render thread. Fields are left
// zero for the parts that failed; the task error explains which.
type Result struct {
	Texture     *image.RGBA
	TexturePath string
	ModelPath   string
	Document    *gltf.Document
	Meshes      []Mesh
	Bindings    []Binding
	MeshCount   int
}

// Task is an in-flight Load. Done closes when the result is final.
type Task struct {
	done   chan struct{}
	result Result
	err    error
}

// Load starts decoding on a new goroutine and returns immediately.
func Load(ctx context.Context, req Request) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = load(ctx, req)
	}()
	return t
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome without blocking, or ErrPending.
func (t *Task) Result() (Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	default:
		return Result{}, ErrPending
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func load(ctx context.Context, req Request) (Result, error) {
	var res Result
	var errs []error

	baseDir := ""
	if req.Bundle != "" {
		dir, err := extractBundle(ctx, req.Bundle, req.CacheDir)
		if err != nil {
			return res, fmt.Errorf("bundle: %w", err)
		}
		baseDir = dir
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	texPath := resolve(baseDir, req.Texture, true)
	if img, err := loadTexture(texPath, req.Reduce); err != nil {
		errs = append(errs, fmt.Errorf("texture: %w", err))
	} else {
		res.Texture = img
		res.TexturePath = texPath
		utils.Debug("Scene: texture %s decoded (%dx%d)", texPath, img.Rect.Dx(), img.Rect.Dy())
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	modelPath := resolve(baseDir, req.Model, false)
	doc, err := gltf.Open(modelPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("model %s: %w", modelPath, err))
		return res, errors.Join(errs...)
	}

	if Compressed(doc) && req.FallbackModel != "" {
		doc, modelPath = openFallback(doc, modelPath, resolve(baseDir, req.FallbackModel, false))
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	bindings, err := Bind(doc, req.Names)
	if err != nil {
		errs = append(errs, err)
	}
	meshes, err := BuildMeshes(doc)
	if err != nil {
		errs = append(errs, fmt.Errorf("model %s: %w", modelPath, err))
	}

	res.Document = doc
	res.ModelPath = modelPath
	res.Meshes = meshes
	res.Bindings = bindings
	res.MeshCount = len(meshes)
	utils.Debug("Scene: model %s parsed, %d nodes, %d meshes, %d bindings", modelPath, len(doc.Nodes), res.MeshCount, len(bindings))

	return res, errors.Join(errs...)
}

// openFallback swaps a compressed document for an uncompressed export of the
// same scene. The original is kept when the fallback is unusable.
func openFallback(doc *gltf.Document, path, fallback string) (*gltf.Document, string) {
	alt, err := gltf.Open(fallback)
	switch {
	case err != nil:
		utils.Warn("Scene: %s is Draco-compressed and fallback %s failed: %v", path, fallback, err)
		return doc, path
	case Compressed(alt):
		utils.Warn("Scene: fallback %s is Draco-compressed too", fallback)
		return doc, path
	}
	utils.Info("Scene: %s is Draco-compressed, loading %s instead", path, fallback)
	return alt, fallback
}

func extractBundle(ctx context.Context, bundle, cacheDir string) (string, error) {
	bundle = utils.ResolveAssetPath(bundle)
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = filepath.Join(dir, "portalscene")
	}
	out := filepath.Join(cacheDir, strings.TrimSuffix(filepath.Base(bundle), filepath.Ext(bundle)))
	if err := convert.ExtractBundle(ctx, bundle, out); err != nil {
		return "", err
	}
	utils.Info("Scene: extracted %s to %s", bundle, out)
	return out, nil
}

// resolve prefers baseDir, then the usual asset lookup. Textures may be found
// under any supported extension.
func resolve(baseDir, name string, texture bool) string {
	if baseDir != "" && !filepath.IsAbs(name) {
		p := filepath.Join(baseDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		if texture {
			base := strings.TrimSuffix(p, filepath.Ext(p))
			for _, ext := range []string{".tex", ".png", ".jpg", ".jpeg", ".webp"} {
				if _, err := os.Stat(base + ext); err == nil {
					return base + ext
				}
			}
		}
	}
	if texture {
		if p := utils.FindTextureFile(name); p != "" {
			return p
		}
	}
	return utils.ResolveAssetPath(name)
}

func loadTexture(path string, reduce bool) (*image.RGBA, error) {
	src, err := convert.LoadImageFile(path)
	if err != nil {
		return nil, err
	}
	if reduce {
		return Halve(src), nil
	}
	return ToRGBA(src), nil
}

// ToRGBA copies img into a zero-origin RGBA image.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Halve scales img to half its size, never below 1x1.
func Halve(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := max(b.Dx()/2, 1), max(b.Dy()/2, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
