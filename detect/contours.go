package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// ContourOptions selects the retrieval mode and shadow handling for a
// single extraction.
type ContourOptions struct {
	Mode gocv.RetrievalMode
	// RemoveShadows drops pixels carrying the background model's
	// shadow label so shadows never become contours.
	RemoveShadows bool
}

// ContourExtractor thresholds a grayscale image and extracts the
// bounding rectangles of its foreground contours.
type ContourExtractor struct {
	threshold   float32
	maxValue    float32
	shadowValue uint8
}

// NewContourExtractor returns an extractor with the given binary
// threshold level and saturation value.
func NewContourExtractor(threshold, maxValue float32, shadowValue uint8) *ContourExtractor {
	return &ContourExtractor{threshold: threshold, maxValue: maxValue, shadowValue: shadowValue}
}

// Extract thresholds img and returns the bounding rectangle of every
// contour found. When canvas is non-nil it receives the thresholded
// image with the contours drawn, for the intermediate preview windows.
func (c *ContourExtractor) Extract(img gocv.Mat, opts ContourOptions, canvas *gocv.Mat) ([]image.Rectangle, error) {
	if img.Empty() {
		return nil, fmt.Errorf("detect: empty image for contour extraction")
	}

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(img, &thresh, c.threshold, c.maxValue, gocv.ThresholdBinary)

	if opts.RemoveShadows {
		shadow := gocv.NewScalar(float64(c.shadowValue), 0, 0, 0)
		shadowMask := gocv.NewMat()
		gocv.InRangeWithScalar(img, shadow, shadow, &shadowMask)
		gocv.Subtract(thresh, shadowMask, &thresh)
		shadowMask.Close()
	}

	contours := gocv.FindContours(thresh, opts.Mode, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		boxes = append(boxes, gocv.BoundingRect(contours.At(i)))
	}

	if canvas != nil {
		gocv.CvtColor(thresh, canvas, gocv.ColorGrayToBGR)
		for i := 0; i < contours.Size(); i++ {
			gocv.DrawContours(canvas, contours, i, color.RGBA{R: 255}, 1)
		}
	}

	return boxes, nil
}
