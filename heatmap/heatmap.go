// Package heatmap maintains the persistent activity accumulator: a
// grayscale raster the size of the frame that brightens wherever
// motion boxes land and geometrically decays on a fixed cadence.
package heatmap

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/types"
)

// Accumulator is the decaying activity raster. It lives for the whole
// run and is only reset by process restart.
type Accumulator struct {
	mat    gocv.Mat
	bounds image.Rectangle
	cfg    types.DisplayConfig
	frames int
}

// New returns a zeroed accumulator of the given size.
func New(width, height int, cfg types.DisplayConfig) *Accumulator {
	return &Accumulator{
		mat:    gocv.Zeros(height, width, gocv.MatTypeCV8U),
		bounds: image.Rect(0, 0, width, height),
		cfg:    cfg,
	}
}

// Update advances the accumulator by one frame. Every HeatmapInterval
// frames it darkens the whole raster and brightens the regions under
// the given boxes; other frames leave it untouched. Values saturate at
// the uint8 bounds, they never wrap.
func (a *Accumulator) Update(boxes []image.Rectangle) {
	if a.frames%a.cfg.HeatmapInterval == 0 {
		a.darken()
		a.brighten(boxes)
	}
	a.frames++
}

func (a *Accumulator) darken() {
	black := gocv.Zeros(a.mat.Rows(), a.mat.Cols(), gocv.MatTypeCV8U)
	defer black.Close()
	gocv.AddWeighted(a.mat, a.cfg.DarkenWeight, black, a.cfg.DarkenOverlay, 0, &a.mat)
}

func (a *Accumulator) brighten(boxes []image.Rectangle) {
	for _, box := range boxes {
		box = box.Intersect(a.bounds)
		if box.Empty() {
			continue
		}
		region := a.mat.Region(box)
		white := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(255, 0, 0, 0), region.Rows(), region.Cols(), gocv.MatTypeCV8U)
		gocv.AddWeighted(region, 1, white, a.cfg.BrightenWeight, 0, &region)
		white.Close()
		region.Close()
	}
}

// Render converts the accumulator to BGR for composition next to the
// color frame.
func (a *Accumulator) Render(dst *gocv.Mat) {
	gocv.CvtColor(a.mat, dst, gocv.ColorGrayToBGR)
}

// Mat exposes the underlying raster.
func (a *Accumulator) Mat() gocv.Mat {
	return a.mat
}

// Close releases the accumulator raster.
func (a *Accumulator) Close() error {
	return a.mat.Close()
}
