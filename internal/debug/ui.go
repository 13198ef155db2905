package debug

import (
	"fmt"
	"image/color"

	"github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/debug/panel"
)

// UIContext lays out widgets top to bottom inside the sidebar.
type UIContext struct {
	X, Y       int
	BaseX      int
	Width      int
	LineHeight int
	FontHeight int
	Font       rl.Font
}

func NewUIContext(x, y, width, lineHeight, fontHeight int, font rl.Font) *UIContext {
	return &UIContext{
		X:          x,
		Y:          y,
		BaseX:      x,
		Width:      width,
		LineHeight: lineHeight,
		FontHeight: fontHeight,
		Font:       font,
	}
}

func (ui *UIContext) drawText(text string, x, y int32, c rl.Color) {
	if ui.Font.BaseSize > 0 {
		rl.DrawTextEx(ui.Font, text, rl.NewVector2(float32(x), float32(y)), float32(ui.FontHeight), 1, c)
	} else {
		rl.DrawText(text, x, y, int32(ui.FontHeight), c)
	}
}

func (ui *UIContext) Label(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.White)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) IndentLabel(text string, indent int) {
	ui.drawText(text, int32(ui.X+indent), int32(ui.Y), rl.White)
	ui.Y += ui.LineHeight
}

// ColorLabel draws a line in c, used for warnings and errors.
func (ui *UIContext) ColorLabel(text string, indent int, c rl.Color) {
	ui.drawText(text, int32(ui.X+indent), int32(ui.Y), c)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) Separator() {
	ui.Y += ui.LineHeight / 2
}

func (ui *UIContext) Header(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.NewColor(200, 200, 255, 255))
	ui.Y += ui.LineHeight
}

func (ui *UIContext) Checkbox(label string, checked bool) bool {
	boxSize := float32(ui.FontHeight) * 1.2
	bounds := rl.NewRectangle(float32(ui.X+5), float32(ui.Y), boxSize, boxSize)
	checked = raygui.CheckBox(bounds, label, checked)
	ui.Y += ui.LineHeight
	return checked
}

// Slider draws a labeled slider and returns the possibly edited value.
func (ui *UIContext) Slider(label string, value, min, max float32) float32 {
	ui.Label(label)
	bounds := rl.NewRectangle(float32(ui.X+5), float32(ui.Y), float32(ui.Width-90), float32(ui.FontHeight))
	value = raygui.Slider(bounds, "", fmt.Sprintf("%.0f", value), value, min, max)
	ui.Y += ui.LineHeight
	return value
}

// ColorPicker draws a labeled picker and reports whether c was edited. The
// picked color only counts while the left button is held over the picker.
func (ui *UIContext) ColorPicker(label string, c color.RGBA, size int) (color.RGBA, bool) {
	ui.Label(label)
	x, y := ui.X+5, ui.Y
	bounds := rl.NewRectangle(float32(x), float32(y), float32(size), float32(size))
	picked := raygui.ColorPicker(bounds, "", rl.NewColor(c.R, c.G, c.B, 255))
	ui.Y += size + ui.LineHeight/2

	mouse := rl.GetMousePosition()
	if !panel.PickerEdits(int(mouse.X), int(mouse.Y), rl.IsMouseButtonDown(rl.MouseLeftButton), x, y, size) {
		return c, false
	}
	out := color.RGBA{R: picked.R, G: picked.G, B: picked.B, A: 255}
	return out, out != c
}
