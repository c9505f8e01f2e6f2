// Package detect wraps the vision backend behind small interfaces so
// the pipeline can run against deterministic fakes in tests.
package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// PeopleDetector maps a color frame to people bounding boxes.
type PeopleDetector interface {
	Detect(frame gocv.Mat) ([]image.Rectangle, error)
}

// MotionDetector maps a grayscale frame to moving-object bounding
// boxes, maintaining whatever background model it needs across calls.
type MotionDetector interface {
	Detect(gray gocv.Mat) ([]image.Rectangle, error)
}
