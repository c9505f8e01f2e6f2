// Package pipeline runs the per-frame detection sequence over an
// explicit Frame value, keeping the loop body free of ambient state.
package pipeline

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/config"
	"github.com/fortym2/HumanCount/detect"
	"github.com/fortym2/HumanCount/geometry"
	"github.com/fortym2/HumanCount/types"
)

// Frame carries everything produced for one capture frame. The Mats
// are owned by the caller; the box slices are discarded with it.
type Frame struct {
	Index int
	Color gocv.Mat
	Gray  gocv.Mat

	PeopleBoxes   []image.Rectangle
	MotionBoxes   []image.Rectangle
	FilteredBoxes []image.Rectangle
	DistanceBoxes []geometry.DistanceBox
	Distances     []float64
}

// Pipeline fuses the people and motion detectors and annotates their
// boxes with real-world geometry.
type Pipeline struct {
	people detect.PeopleDetector
	motion detect.MotionDetector
	camera config.CameraConfig
	cfg    types.DetectorConfig
}

// New builds a pipeline over the given detectors.
func New(people detect.PeopleDetector, motion detect.MotionDetector, camera config.CameraConfig, cfg types.DetectorConfig) *Pipeline {
	return &Pipeline{people: people, motion: motion, camera: camera, cfg: cfg}
}

// Process fills in the detection and geometry fields of the frame:
// people boxes, motion boxes, the fused set, per-box distances and all
// pairwise separations. Detector failures abort the frame.
func (p *Pipeline) Process(f *Frame) error {
	var err error

	f.PeopleBoxes, err = p.people.Detect(f.Color)
	if err != nil {
		return fmt.Errorf("pipeline: people detection on frame %d: %w", f.Index, err)
	}

	f.MotionBoxes, err = p.motion.Detect(f.Gray)
	if err != nil {
		return fmt.Errorf("pipeline: motion detection on frame %d: %w", f.Index, err)
	}

	f.FilteredBoxes = geometry.FilterBoxes(f.PeopleBoxes, f.MotionBoxes, p.cfg.FilterTolerance)
	f.DistanceBoxes = geometry.EstimateDistances(
		f.FilteredBoxes, types.FrameWidth, types.FrameHeight, p.camera)
	f.Distances = geometry.PairwiseDistances(f.DistanceBoxes)

	return nil
}
