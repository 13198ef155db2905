package engine3D

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/engine3D/glsl"
	"portalscene/internal/engine3D/particle"
	"portalscene/internal/engine3D/shader"
	"portalscene/internal/engine3D/uniform"
	"portalscene/internal/engine3D/viewport"
	"portalscene/internal/params"
	"portalscene/internal/scene"
	"portalscene/internal/utils"
)

// Uniform names owned by the renderer rather than the debug parameters.
const (
	UniformTime       = "uTime"
	UniformPixelRatio = "uPixelRatio"
	UniformResolution = "uResolution"
)

type Options struct {
	FovY, Near, Far     float32
	PoleLightColor      color.RGBA
	PortalFallbackColor color.RGBA
	Shaders             glsl.Library
	FireflyBox          particle.Box
}

// Renderer draws the portal scene into an offscreen buffer sized to the
// drawing buffer and scales it onto the window.
type Renderer struct {
	Camera     Camera
	ClearColor color.RGBA
	ShowBounds bool

	// Uniform sets shared with the parameter bindings.
	FireflyUniforms *uniform.Set
	PortalUniforms  *uniform.Set

	shaders   glsl.Library
	fireflies *shader.Program
	portal    *shader.Program

	target       rl.RenderTexture2D
	targetWidth  int
	targetHeight int

	meshes         []gpuMesh
	bakedTexture   rl.Texture2D
	hasTexture     bool
	bakedMaterial  rl.Material
	poleMaterial   rl.Material
	portalMaterial rl.Material
	flatMaterial   rl.Material
	// Unbound meshes draw flat in their glTF base color.
	colorMaterials map[color.RGBA]rl.Material

	roles map[int]scene.Role

	field      particle.Field
	fireflyBox particle.Box
}

func flatMaterial(c color.RGBA) rl.Material {
	mat := rl.LoadMaterialDefault()
	mat.GetMap(rl.MapDiffuse).Color = rl.NewColor(c.R, c.G, c.B, c.A)
	return mat
}

// NewRenderer compiles both programs and builds the fixed materials. It must
// run on the thread owning the GL context.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		Camera: Camera{
			FovY: opts.FovY,
			Near: opts.Near,
			Far:  opts.Far,
		},
		FireflyUniforms: uniform.NewSet(),
		PortalUniforms:  uniform.NewSet(),
		shaders:         opts.Shaders,
		roles:           make(map[int]scene.Role),
		colorMaterials:  make(map[color.RGBA]rl.Material),
		fireflyBox:      opts.FireflyBox,
		poleMaterial:    flatMaterial(opts.PoleLightColor),
		flatMaterial:    flatMaterial(opts.PortalFallbackColor),
		bakedMaterial:   rl.LoadMaterialDefault(),
		portalMaterial:  rl.LoadMaterialDefault(),
	}

	r.FireflyUniforms.SetFloat(UniformTime, 0)
	r.FireflyUniforms.SetFloat(UniformPixelRatio, 1)
	r.FireflyUniforms.SetVec2(UniformResolution, [2]float32{1, 1})
	r.PortalUniforms.SetFloat(UniformTime, 0)

	r.fireflies = r.loadProgram(glsl.Fireflies)
	r.portal = r.loadProgram(glsl.Portal)
	r.portalMaterial.Shader = r.portal.Shader
	return r
}

func (r *Renderer) loadProgram(name string) *shader.Program {
	p, err := shader.Load(r.shaders, name)
	if err != nil {
		utils.Error("Renderer: %v", err)
		return &shader.Program{Name: name}
	}
	return p
}

// PortalShaderActive reports whether the disc uses the animated shader
// rather than the flat fallback color.
func (r *Renderer) PortalShaderActive() bool {
	return r.portal.Valid()
}

func (r *Renderer) FirefliesActive() bool {
	return r.fireflies.Valid()
}

// ShaderOrigins maps each program to where its source came from.
func (r *Renderer) ShaderOrigins() map[string]string {
	return map[string]string{
		glsl.Fireflies: r.fireflies.Origin,
		glsl.Portal:    r.portal.Origin,
	}
}

// ReloadShader recompiles one program from the shader library.
func (r *Renderer) ReloadShader(name string) {
	switch name {
	case glsl.Fireflies:
		r.fireflies = r.fireflies.Reload(r.shaders)
		r.fireflies.Apply(r.FireflyUniforms, true)
	case glsl.Portal:
		r.portal = r.portal.Reload(r.shaders)
		r.portalMaterial.Shader = r.portal.Shader
		r.portal.Apply(r.PortalUniforms, true)
	}
}

// Resize applies new sizes: camera aspect, buffer resolution uniforms and
// the offscreen target.
func (r *Renderer) Resize(s viewport.Sizes) {
	r.Camera.Aspect = float32(s.Aspect)
	r.FireflyUniforms.SetFloat(UniformPixelRatio, float32(s.PixelRatio))
	r.FireflyUniforms.SetVec2(UniformResolution, [2]float32{float32(s.BufferWidth), float32(s.BufferHeight)})

	if s.BufferWidth == r.targetWidth && s.BufferHeight == r.targetHeight {
		return
	}
	if r.targetWidth > 0 {
		rl.UnloadRenderTexture(r.target)
	}
	r.target = rl.LoadRenderTexture(int32(s.BufferWidth), int32(s.BufferHeight))
	rl.SetTextureFilter(r.target.Texture, rl.FilterBilinear)
	r.targetWidth, r.targetHeight = s.BufferWidth, s.BufferHeight
	utils.Debug("Renderer: drawing buffer %dx%d", s.BufferWidth, s.BufferHeight)
}

func (r *Renderer) SetCamera(position, target mgl32.Vec3) {
	r.Camera.Position = position
	r.Camera.Target = target
}

// SetFireflies replaces the firefly field.
func (r *Renderer) SetFireflies(field particle.Field) {
	r.field = field
}

func (r *Renderer) FireflyCount() int {
	return r.field.Len()
}

// AttachAssets uploads a finished asset load and binds materials by role.
// Partial results are accepted: whatever is present gets drawn.
func (r *Renderer) AttachAssets(res scene.Result) error {
	if res.Texture != nil {
		img := rl.NewImageFromImage(res.Texture)
		r.bakedTexture = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		rl.SetTextureFilter(r.bakedTexture, rl.FilterBilinear)
		rl.SetMaterialTexture(&r.bakedMaterial, rl.MapDiffuse, r.bakedTexture)
		r.hasTexture = true
	}

	if len(res.Meshes) == 0 {
		return nil
	}

	r.unloadMeshes()
	r.meshes = make([]gpuMesh, len(res.Meshes))
	uploaded := 0
	for i, m := range res.Meshes {
		r.meshes[i] = uploadMesh(m)
		if r.meshes[i].uploaded {
			uploaded++
		}
	}

	for mesh, role := range scene.RoleOfMesh(res.Bindings) {
		if mesh < len(r.meshes) {
			r.roles[mesh] = role
		}
	}
	utils.Info("Renderer: model %s attached, %d/%d meshes uploaded, %d bound", res.ModelPath, uploaded, len(r.meshes), len(r.roles))
	if uploaded == 0 {
		return fmt.Errorf("%s has no drawable meshes", res.ModelPath)
	}
	return nil
}

func (r *Renderer) unloadMeshes() {
	for i := range r.meshes {
		r.meshes[i].unload()
	}
	r.meshes = nil
	clear(r.roles)
}

func (r *Renderer) colorMaterial(c color.RGBA) rl.Material {
	mat, ok := r.colorMaterials[c]
	if !ok {
		mat = flatMaterial(c)
		r.colorMaterials[c] = mat
	}
	return mat
}

func (r *Renderer) materialFor(mesh int) rl.Material {
	role, bound := r.roles[mesh]
	if !bound {
		return r.colorMaterial(r.meshes[mesh].color)
	}
	switch role {
	case scene.RoleBaked:
		if r.hasTexture {
			return r.bakedMaterial
		}
	case scene.RolePortal:
		if r.portal.Valid() {
			return r.portalMaterial
		}
		return r.flatMaterial
	case scene.RolePoleLight:
		return r.poleMaterial
	}
	return r.colorMaterial(r.meshes[mesh].color)
}

// Draw renders the frame into the offscreen target and blits it to the
// window at screen size.
func (r *Renderer) Draw(screenWidth, screenHeight int) {
	if r.targetWidth == 0 {
		return
	}

	r.fireflies.Apply(r.FireflyUniforms, false)
	r.portal.Apply(r.PortalUniforms, false)
	r.FireflyUniforms.ClearDirty()
	r.PortalUniforms.ClearDirty()

	rl.BeginTextureMode(r.target)
	rl.ClearBackground(rl.NewColor(r.ClearColor.R, r.ClearColor.G, r.ClearColor.B, 255))

	r.Camera.Begin()
	identity := rl.MatrixIdentity()
	for i := range r.meshes {
		if r.meshes[i].uploaded {
			rl.DrawMesh(r.meshes[i].mesh, r.materialFor(i), identity)
		}
	}
	if r.ShowBounds {
		r.drawSceneBoundingBoxes()
	}
	drawFireflies(r.field, r.fireflies)
	rl.EndMode3D()

	rl.EndTextureMode()

	source := rl.NewRectangle(0, 0, float32(r.targetWidth), -float32(r.targetHeight))
	dest := rl.NewRectangle(0, 0, float32(screenWidth), float32(screenHeight))
	rl.DrawTexturePro(r.target.Texture, source, dest, rl.NewVector2(0, 0), 0, rl.White)
}

// Status summarizes what the renderer is drawing for the debug panel.
type Status struct {
	Meshes        int
	BoundMeshes   int
	Fireflies     int
	PortalShader  bool
	FireflyShader bool
	Buffer        [2]int
	Texture       [2]int
}

func (r *Renderer) Status() Status {
	s := Status{
		Meshes:        len(r.meshes),
		BoundMeshes:   len(r.roles),
		Fireflies:     r.field.Len(),
		PortalShader:  r.portal.Valid(),
		FireflyShader: r.fireflies.Valid(),
		Buffer:        [2]int{r.targetWidth, r.targetHeight},
	}
	if r.hasTexture {
		s.Texture = [2]int{int(r.bakedTexture.Width), int(r.bakedTexture.Height)}
	}
	return s
}

// Unload releases GPU resources owned by the renderer.
func (r *Renderer) Unload() {
	if r.targetWidth > 0 {
		rl.UnloadRenderTexture(r.target)
		r.targetWidth, r.targetHeight = 0, 0
	}
	r.unloadMeshes()
	for c, mat := range r.colorMaterials {
		rl.UnloadMaterial(mat)
		delete(r.colorMaterials, c)
	}
	if r.hasTexture {
		rl.UnloadTexture(r.bakedTexture)
		r.hasTexture = false
	}
	r.fireflies.Unload()
	r.portal.Unload()
}

// ParamsColor converts a hex literal for raylib, logging and falling back
// to white on error.
func ParamsColor(hex string) color.RGBA {
	c, err := params.RGBA(hex)
	if err != nil {
		utils.Warn("Renderer: %v", err)
		return color.RGBA{255, 255, 255, 255}
	}
	return c
}
