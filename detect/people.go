package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/types"
)

// HOGPeopleDetector runs the pretrained HOG+SVM pedestrian classifier
// as a multi-scale sliding window with fixed stride, scale and padding.
type HOGPeopleDetector struct {
	hog gocv.HOGDescriptor
	cfg types.DetectorConfig
}

// NewHOGPeopleDetector builds the detector with the default people
// weights loaded into the SVM.
func NewHOGPeopleDetector(cfg types.DetectorConfig) (*HOGPeopleDetector, error) {
	hog := gocv.NewHOGDescriptor()
	if err := hog.SetSVMDetector(gocv.HOGDefaultPeopleDetector()); err != nil {
		_ = hog.Close()
		return nil, fmt.Errorf("detect: could not load people detector weights: %w", err)
	}
	return &HOGPeopleDetector{hog: hog, cfg: cfg}, nil
}

// Detect returns one box per detected person on the given color frame.
func (d *HOGPeopleDetector) Detect(frame gocv.Mat) ([]image.Rectangle, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("detect: empty frame")
	}
	boxes := d.hog.DetectMultiScaleWithParams(frame, 0,
		d.cfg.WinStride, d.cfg.Padding, d.cfg.Scale, 2.0, false)
	return boxes, nil
}

// Close releases the native detector.
func (d *HOGPeopleDetector) Close() error {
	return d.hog.Close()
}
