// Package panel holds the debug panel's state and layout, independent of
// the drawing backend.
package panel

import (
	"fmt"
	"math"
)

type Tab int

const (
	TabTweaks Tab = iota
	TabScene
	TabPerformance
)

func Tabs() []Tab {
	return []Tab{TabTweaks, TabScene, TabPerformance}
}

func (t Tab) String() string {
	switch t {
	case TabTweaks:
		return "Tweaks"
	case TabScene:
		return "Scene"
	case TabPerformance:
		return "Performance"
	}
	return "Unknown"
}

// Visibility decides whether the panel is shown. Keyboard devices toggle it
// with a key; touch devices get an on-screen button and start hidden.
type Visibility struct {
	visible bool
	touch   bool
}

func NewVisibility(visible, touch bool) Visibility {
	return Visibility{visible: visible && !touch, touch: touch}
}

func (v Visibility) Visible() bool { return v.visible }

// ShowsButton reports whether the on-screen toggle button is drawn.
func (v Visibility) ShowsButton() bool { return v.touch }

// ToggleKey handles the keyboard shortcut. It has no effect on touch devices.
func (v *Visibility) ToggleKey() {
	if !v.touch {
		v.visible = !v.visible
	}
}

// ToggleButton handles the on-screen button, which only exists on touch devices.
func (v *Visibility) ToggleButton() {
	if v.touch {
		v.visible = !v.visible
	}
}

// SetTouch records a device-class change. Switching to touch hides the panel.
func (v *Visibility) SetTouch(touch bool) {
	if touch && !v.touch {
		v.visible = false
	}
	v.touch = touch
}

// Layout sizes the sidebar relative to a 1080-line monitor.
type Layout struct {
	Scale        float64
	FontHeight   int
	LineHeight   int
	TabHeight    int
	SidebarWidth int
	ButtonSize   int
}

func NewLayout(monitorHeight, screenWidth int) Layout {
	scale := math.Max(1.0, float64(monitorHeight)/1080.0)
	l := Layout{
		Scale:        scale,
		FontHeight:   int(16 * scale),
		LineHeight:   int(28 * scale),
		TabHeight:    int(40 * scale),
		SidebarWidth: int(420 * scale),
		ButtonSize:   int(48 * scale),
	}
	if screenWidth > 0 && l.SidebarWidth > screenWidth {
		l.SidebarWidth = screenWidth
	}
	return l
}

// TabAt maps a click to a tab header.
func (l Layout) TabAt(x, y int) (Tab, bool) {
	tabs := Tabs()
	if x < 0 || y < 0 || y >= l.TabHeight || x >= l.SidebarWidth || l.SidebarWidth == 0 {
		return 0, false
	}
	tabWidth := l.SidebarWidth / len(tabs)
	i := x / tabWidth
	if i >= len(tabs) {
		i = len(tabs) - 1
	}
	return tabs[i], true
}

// ContentTop is the y coordinate where tab content starts.
func (l Layout) ContentTop() int {
	return l.TabHeight + int(float64(l.TabHeight)*0.5)
}

// ButtonRect places the touch toggle in the top-right corner.
func (l Layout) ButtonRect(screenWidth int) (x, y, w, h int) {
	margin := l.ButtonSize / 4
	return screenWidth - l.ButtonSize - margin, margin, l.ButtonSize, l.ButtonSize
}

// PickerHueBar is the strip raygui draws right of a color picker square:
// the hue bar plus its padding.
const PickerHueBar = 24

// PickerEdits reports whether a color picker square of side size at x, y is
// being edited: the left button is held over the square or its hue bar.
// Pickers return a color every frame, so anything else is not an edit.
func PickerEdits(mouseX, mouseY int, leftDown bool, x, y, size int) bool {
	if !leftDown || size <= 0 {
		return false
	}
	return mouseX >= x && mouseX < x+size+PickerHueBar && mouseY >= y && mouseY < y+size
}

// FormatMB renders a byte count in mebibytes.
func FormatMB(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}
