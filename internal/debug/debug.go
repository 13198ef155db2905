package debug

import (
	"os"
	"runtime"
	"time"

	"github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/debug/panel"
	"portalscene/internal/engine3D"
	"portalscene/internal/engine3D/viewport"
	"portalscene/internal/params"
	"portalscene/internal/scene"
)

// SceneInfo is what the Scene tab reports about asset loading and binding.
type SceneInfo struct {
	Loading     bool
	LoadErr     error
	TexturePath string
	ModelPath   string
	Bindings    []scene.Binding
	Shaders     map[string]string
	Status      engine3D.Status
}

// FrameInfo is what the Performance tab reports about the viewport.
type FrameInfo struct {
	Sizes   viewport.Sizes
	Class   viewport.DeviceClass
	Elapsed time.Duration
}

type DebugOverlay struct {
	ActiveTab         panel.Tab
	ShowBoundingBoxes bool

	visibility panel.Visibility
	layout     panel.Layout

	// Input State
	prevLeftMouseButton bool
	mouseX              int
	mouseY              int
	clicked             bool

	// Rendering
	uiBuffer          rl.RenderTexture2D
	font              rl.Font
	cachedWidth       int
	cachedHeight      int
	monitorWidth      int
	monitorHeight     int
	bufferInitialized bool

	// Performance Monitoring
	lastUpdateTime time.Time
	frameCount     int
	fps            float64
	memStats       runtime.MemStats
}

var fontPaths = []string{
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
}

// NewDebugOverlay creates the panel. visible is the configured default;
// touch devices start hidden regardless.
func NewDebugOverlay(visible bool, class viewport.DeviceClass) *DebugOverlay {
	monitor := rl.GetCurrentMonitor()

	d := &DebugOverlay{
		ActiveTab:      panel.TabTweaks,
		visibility:     panel.NewVisibility(visible, class.Touch()),
		monitorWidth:   rl.GetMonitorWidth(monitor),
		monitorHeight:  rl.GetMonitorHeight(monitor),
		lastUpdateTime: time.Now(),
	}
	d.updateLayout()

	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			d.font = rl.LoadFontEx(path, 64, nil, 0)
			rl.SetTextureFilter(d.font.Texture, rl.FilterBilinear)
			raygui.SetFont(d.font)
			break
		}
	}

	return d
}

func (d *DebugOverlay) updateLayout() {
	d.layout = panel.NewLayout(d.monitorHeight, rl.GetScreenWidth())
}

func (d *DebugOverlay) Visible() bool {
	return d.visibility.Visible()
}

// SetClass follows device-class changes; switching to touch hides the panel.
func (d *DebugOverlay) SetClass(class viewport.DeviceClass) {
	d.visibility.SetTouch(class.Touch())
}

// CapturesMouse reports whether the pointer is over the panel or the toggle
// button, so scene controls can ignore it.
func (d *DebugOverlay) CapturesMouse() bool {
	if d.visibility.ShowsButton() && d.overButton() {
		return true
	}
	return d.visibility.Visible() && d.mouseX < d.layout.SidebarWidth
}

func (d *DebugOverlay) overButton() bool {
	x, y, w, h := d.layout.ButtonRect(rl.GetScreenWidth())
	return d.mouseX >= x && d.mouseX < x+w && d.mouseY >= y && d.mouseY < y+h
}

func (d *DebugOverlay) Update() {
	d.updateLayout()

	d.frameCount++
	now := time.Now()
	if now.Sub(d.lastUpdateTime) >= time.Second {
		d.fps = float64(d.frameCount) / now.Sub(d.lastUpdateTime).Seconds()
		d.frameCount = 0
		d.lastUpdateTime = now
		runtime.ReadMemStats(&d.memStats)
	}

	if rl.IsKeyPressed(rl.KeyF8) {
		d.visibility.ToggleKey()
	}

	mPos := rl.GetMousePosition()
	d.mouseX = int(mPos.X)
	d.mouseY = int(mPos.Y)

	leftPressed := rl.IsMouseButtonDown(rl.MouseLeftButton)
	d.clicked = leftPressed && !d.prevLeftMouseButton
	d.prevLeftMouseButton = leftPressed

	if d.clicked && d.visibility.Visible() {
		if tab, ok := d.layout.TabAt(d.mouseX, d.mouseY); ok {
			d.ActiveTab = tab
		}
	}
}

func (d *DebugOverlay) Draw(binding *params.Binding, info SceneInfo, frame FrameInfo) {
	if d.visibility.ShowsButton() {
		d.drawToggleButton()
	}
	if !d.visibility.Visible() {
		return
	}

	sh := rl.GetScreenHeight()
	if d.cachedWidth != d.layout.SidebarWidth || d.cachedHeight != sh {
		if d.bufferInitialized {
			rl.UnloadRenderTexture(d.uiBuffer)
		}
		d.uiBuffer = rl.LoadRenderTexture(int32(d.layout.SidebarWidth), int32(sh))
		d.bufferInitialized = true
		d.cachedWidth = d.layout.SidebarWidth
		d.cachedHeight = sh
	}

	rl.BeginTextureMode(d.uiBuffer)
	rl.ClearBackground(rl.Blank)

	rl.DrawRectangle(0, 0, int32(d.layout.SidebarWidth), int32(sh), rl.NewColor(0, 0, 0, 200))
	d.drawTabs()

	contentY := d.layout.ContentTop()
	switch d.ActiveTab {
	case panel.TabTweaks:
		d.drawTweaks(binding, contentY)
	case panel.TabScene:
		d.drawScene(info, contentY)
	case panel.TabPerformance:
		d.drawPerformance(frame, contentY)
	}

	rl.EndTextureMode()

	sourceRec := rl.NewRectangle(0, 0, float32(d.layout.SidebarWidth), -float32(sh))
	destRec := rl.NewRectangle(0, 0, float32(d.layout.SidebarWidth), float32(sh))
	rl.DrawTexturePro(d.uiBuffer.Texture, sourceRec, destRec, rl.NewVector2(0, 0), 0, rl.White)
}

func (d *DebugOverlay) drawToggleButton() {
	x, y, w, h := d.layout.ButtonRect(rl.GetScreenWidth())
	label := "Debug"
	if d.visibility.Visible() {
		label = "Close"
	}
	if raygui.Button(rl.NewRectangle(float32(x), float32(y), float32(w), float32(h)), label) {
		d.visibility.ToggleButton()
	}
}

func (d *DebugOverlay) drawTabs() {
	tabs := panel.Tabs()
	tabWidth := d.layout.SidebarWidth / len(tabs)

	for i, tab := range tabs {
		color := rl.NewColor(100, 100, 100, 255)
		if d.ActiveTab == tab {
			color = rl.NewColor(150, 150, 150, 255)
		}

		x := int32(i * tabWidth)
		rl.DrawRectangle(x, 0, int32(tabWidth), int32(d.layout.TabHeight), color)
		d.DrawText(tab.String(), x+10, int32(float64(d.layout.TabHeight)*0.3), int32(d.layout.FontHeight), rl.White)
	}
}

func (d *DebugOverlay) DrawText(text string, x, y int32, fontSize int32, color rl.Color) {
	if d.font.BaseSize > 0 {
		rl.DrawTextEx(d.font, text, rl.NewVector2(float32(x), float32(y)), float32(fontSize), 1, color)
	} else {
		rl.DrawText(text, x, y, fontSize, color)
	}
}

func (d *DebugOverlay) newUI(startY int) *UIContext {
	return NewUIContext(10, startY, d.layout.SidebarWidth-20, d.layout.LineHeight, d.layout.FontHeight, d.font)
}

func (d *DebugOverlay) Unload() {
	if d.bufferInitialized {
		rl.UnloadRenderTexture(d.uiBuffer)
		d.bufferInitialized = false
	}
	if d.font.BaseSize > 0 {
		rl.UnloadFont(d.font)
	}
}
