package debug

// drawBoundingBoxToggle draws the checkbox that switches the renderer's
// mesh and firefly-volume outlines.
func (d *DebugOverlay) drawBoundingBoxToggle(ui *UIContext) {
	d.ShowBoundingBoxes = ui.Checkbox("Show Bounding Boxes", d.ShowBoundingBoxes)
}
