package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/debug/panel"
)

func (d *DebugOverlay) drawPerformance(frame FrameInfo, startY int) {
	ui := d.newUI(startY)

	ui.Header("Timing:")
	ui.IndentLabel(fmt.Sprintf("FPS: %.1f", d.fps), 10)
	ui.IndentLabel(fmt.Sprintf("Frame Time: %.2f ms", rl.GetFrameTime()*1000), 10)
	ui.IndentLabel(fmt.Sprintf("Elapsed: %.1f s", frame.Elapsed.Seconds()), 10)

	monitor := rl.GetCurrentMonitor()
	ui.IndentLabel(fmt.Sprintf("Refresh Rate: %d Hz", rl.GetMonitorRefreshRate(monitor)), 10)

	ui.Separator()

	ui.Header("Memory Usage:")
	ui.IndentLabel("Allocated: "+panel.FormatMB(d.memStats.Alloc), 10)
	ui.IndentLabel("Heap Alloc: "+panel.FormatMB(d.memStats.HeapAlloc), 10)
	ui.IndentLabel("Process Total: "+panel.FormatMB(d.memStats.Sys), 10)

	ui.Separator()

	ui.Header("System:")
	ui.IndentLabel(fmt.Sprintf("Cores: %d", runtime.NumCPU()), 10)
	ui.IndentLabel(fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()), 10)
	ui.IndentLabel(fmt.Sprintf("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH), 10)

	ui.Separator()

	ui.Header("Viewport:")
	ui.IndentLabel(fmt.Sprintf("Monitor: %s (%dx%d)", rl.GetMonitorName(monitor), d.monitorWidth, d.monitorHeight), 10)
	ui.IndentLabel(fmt.Sprintf("Window: %dx%d", frame.Sizes.Width, frame.Sizes.Height), 10)
	ui.IndentLabel(fmt.Sprintf("Drawing Buffer: %dx%d", frame.Sizes.BufferWidth, frame.Sizes.BufferHeight), 10)
	ui.IndentLabel(fmt.Sprintf("Pixel Ratio: %.2f", frame.Sizes.PixelRatio), 10)
	ui.IndentLabel(fmt.Sprintf("Device Class: %s", frame.Class), 10)

	fs := "No"
	if rl.IsWindowFullscreen() {
		fs = "Yes"
	}
	ui.IndentLabel(fmt.Sprintf("Fullscreen: %s", fs), 10)
	ui.IndentLabel(fmt.Sprintf("UI Scale: %.2fx", d.layout.Scale), 10)
}
