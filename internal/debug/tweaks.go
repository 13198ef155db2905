package debug

import (
	"portalscene/internal/params"
	"portalscene/internal/utils"
)

func (d *DebugOverlay) drawTweaks(binding *params.Binding, startY int) {
	ui := d.newUI(startY)
	if binding == nil {
		ui.Label("No parameters bound")
		return
	}
	p := binding.Params()

	ui.Header("Fireflies")
	size := ui.Slider("Size", float32(p.FireflySize), params.MinFireflySize, params.MaxFireflySize)
	if float64(size) != p.FireflySize {
		binding.SetFireflySize(float64(size))
	}
	ui.Separator()

	pickerSize := int(110 * d.layout.Scale)

	ui.Header("Portal")
	if c, changed := ui.ColorPicker("Color start "+p.PortalColorStart, mustRGBA(p.PortalColorStart), pickerSize); changed {
		if err := binding.SetPortalColorStart(params.Hex(c)); err != nil {
			utils.Warn("Debug: %v", err)
		}
	}
	if c, changed := ui.ColorPicker("Color end "+p.PortalColorEnd, mustRGBA(p.PortalColorEnd), pickerSize); changed {
		if err := binding.SetPortalColorEnd(params.Hex(c)); err != nil {
			utils.Warn("Debug: %v", err)
		}
	}

	ui.Header("Background")
	if c, changed := ui.ColorPicker("Clear color "+p.ClearColor, binding.ClearRGBA(), pickerSize); changed {
		if err := binding.SetClearColor(params.Hex(c)); err != nil {
			utils.Warn("Debug: %v", err)
		}
	}
}
