package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/geometry"
	"github.com/fortym2/HumanCount/types"
)

// DiffMotionDetector finds moving objects by differencing the
// grayscale frame against a background model and extracting contours
// from the thresholded difference. The model is either the frozen
// reference image or, in adaptive mode, the continuously updated MOG2
// estimate. Switching to adaptive mode is one-way: the first Apply
// permanently replaces the static reference.
type DiffMotionDetector struct {
	cfg       types.DetectorConfig
	extractor *ContourExtractor

	background gocv.Mat
	subtractor gocv.BackgroundSubtractorMOG2
	adaptive   bool

	baseline []image.Rectangle

	// persistent scratch mats, also served to the preview windows
	diff       gocv.Mat
	canvas     gocv.Mat
	keepCanvas bool
}

// NewDiffMotionDetector builds a motion detector around a clone of the
// given grayscale background reference and the baseline contour boxes
// extracted from it at startup.
func NewDiffMotionDetector(background gocv.Mat, baseline []image.Rectangle, adaptive bool, keepCanvas bool, cfg types.DetectorConfig) *DiffMotionDetector {
	d := &DiffMotionDetector{
		cfg:        cfg,
		extractor:  NewContourExtractor(cfg.DiffThreshold, cfg.MaxValue, cfg.ShadowValue),
		background: background.Clone(),
		adaptive:   adaptive,
		baseline:   baseline,
		diff:       gocv.NewMat(),
		canvas:     gocv.NewMat(),
		keepCanvas: keepCanvas,
	}
	if adaptive {
		d.subtractor = gocv.NewBackgroundSubtractorMOG2WithParams(
			cfg.MOG2History, cfg.MOG2VarThreshold, true)
	}
	return d
}

// Detect returns the normalized moving-object boxes for the frame.
func (d *DiffMotionDetector) Detect(gray gocv.Mat) ([]image.Rectangle, error) {
	if gray.Empty() {
		return nil, fmt.Errorf("detect: empty frame")
	}

	if d.adaptive {
		// The model output overwrites the background each frame; the
		// early frames before it stabilizes just produce oversized
		// foreground regions that normalization absorbs.
		if err := d.subtractor.Apply(gray, &d.background); err != nil {
			return nil, fmt.Errorf("detect: background model update: %w", err)
		}
	}

	gocv.AbsDiff(gray, d.background, &d.diff)

	var canvas *gocv.Mat
	if d.keepCanvas {
		canvas = &d.canvas
	}
	boxes, err := d.extractor.Extract(d.diff, ContourOptions{
		Mode:          gocv.RetrievalExternal,
		RemoveShadows: d.adaptive,
	}, canvas)
	if err != nil {
		return nil, err
	}

	boxes = d.excludeBaseline(boxes)

	return geometry.NormalizeBoxes(boxes, d.cfg.MinBoxArea), nil
}

// excludeBaseline suppresses boxes that mostly coincide with static
// background texture, so standing fixtures do not register as motion.
func (d *DiffMotionDetector) excludeBaseline(boxes []image.Rectangle) []image.Rectangle {
	if len(d.baseline) == 0 {
		return boxes
	}
	kept := boxes[:0]
	for _, b := range boxes {
		matched := false
		for _, bg := range d.baseline {
			if geometry.OverlapRatio(b, bg) > d.cfg.BaselineOverlap {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, b)
		}
	}
	return kept
}

// Diff exposes the last difference image for the preview windows.
func (d *DiffMotionDetector) Diff() gocv.Mat {
	return d.diff
}

// Canvas exposes the last contour canvas for the preview windows.
func (d *DiffMotionDetector) Canvas() gocv.Mat {
	return d.canvas
}

// Close releases all native resources held by the detector.
func (d *DiffMotionDetector) Close() error {
	var first error
	for _, m := range []*gocv.Mat{&d.background, &d.diff, &d.canvas} {
		if err := m.Close(); err != nil && first == nil {
			first = err
		}
	}
	if d.adaptive {
		if err := d.subtractor.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
