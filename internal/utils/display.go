package utils

import (
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Display describes the default X11 screen.
type Display struct {
	WidthPx  int
	HeightPx int
	WidthMM  int
	HeightMM int
}

// ProbeDisplay queries the default screen of the X server named by $DISPLAY.
func ProbeDisplay() (Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return Display{}, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return Display{
		WidthPx:  int(screen.WidthInPixels),
		HeightPx: int(screen.HeightInPixels),
		WidthMM:  int(screen.WidthInMillimeters),
		HeightMM: int(screen.HeightInMillimeters),
	}, nil
}

// DPI returns the horizontal dots per inch, or 0 when the server reports no
// physical size.
func (d Display) DPI() float64 {
	if d.WidthMM <= 0 || d.WidthPx <= 0 {
		return 0
	}
	return float64(d.WidthPx) / (float64(d.WidthMM) / 25.4)
}

// PixelRatio maps DPI onto a device pixel ratio relative to 96 DPI, snapped to
// quarter steps and never below 1.
func (d Display) PixelRatio() float64 {
	dpi := d.DPI()
	if dpi <= 0 {
		return 1
	}
	ratio := math.Round(dpi/96*4) / 4
	if ratio < 1 {
		return 1
	}
	return ratio
}
