// Package geometry holds the pure box math of the pipeline: fusing
// motion boxes with people boxes, mapping pixel boxes to real-world
// distances through a pinhole camera model, and pairwise separations.
package geometry

import (
	"image"
	"math"

	"github.com/fortym2/HumanCount/config"
)

// minElevation keeps the elevation angle away from zero so a box at
// the frame edge can never divide by zero in the distance formula.
const minElevation = 1e-3 // radians

// DistanceBox pairs a bounding box with its estimated ground position
// relative to the camera, in meters.
type DistanceBox struct {
	Box     image.Rectangle
	Forward float64 // along the ground, away from the camera
	Lateral float64 // left/right of the optical axis
}

// FilterBoxes returns the motion boxes the people detector does not
// already cover: a motion box survives only if its center lies outside
// every people box expanded by the given pixel tolerance. Filtering an
// already-filtered set against the same people boxes is a no-op.
func FilterBoxes(people, motion []image.Rectangle, tolerance int) []image.Rectangle {
	filtered := make([]image.Rectangle, 0, len(motion))
	for _, m := range motion {
		center := image.Pt(m.Min.X+m.Dx()/2, m.Min.Y+m.Dy()/2)
		covered := false
		for _, p := range people {
			if center.In(p.Inset(-tolerance)) {
				covered = true
				break
			}
		}
		if !covered {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// DistanceFromBox maps a box to its ground position. The box's bottom
// edge maps linearly to an elevation angle between the camera's lower
// tilt (frame top) and upper tilt (frame bottom); the forward distance
// is then height/tan(angle). The lateral offset assumes a focal length
// equal to the frame width in pixels.
func DistanceFromBox(box image.Rectangle, frameW, frameH int, cam config.CameraConfig) (forward, lateral float64) {
	bottom := box.Max.Y
	if bottom < 0 {
		bottom = 0
	}
	if bottom > frameH {
		bottom = frameH
	}

	t := float64(bottom) / float64(frameH)
	angle := radians(cam.LowerAngle + t*(cam.UpperAngle-cam.LowerAngle))
	if angle < minElevation {
		angle = minElevation
	}
	if angle > math.Pi/2-minElevation {
		angle = math.Pi/2 - minElevation
	}

	forward = cam.Height / math.Tan(angle)

	centerX := float64(box.Min.X+box.Dx()/2) - float64(frameW)/2
	lateral = forward * centerX / float64(frameW)
	return forward, lateral
}

// EstimateDistances annotates every box with its ground position.
func EstimateDistances(boxes []image.Rectangle, frameW, frameH int, cam config.CameraConfig) []DistanceBox {
	out := make([]DistanceBox, 0, len(boxes))
	for _, b := range boxes {
		fwd, lat := DistanceFromBox(b, frameW, frameH, cam)
		out = append(out, DistanceBox{Box: b, Forward: fwd, Lateral: lat})
	}
	return out
}

// PairwiseDistances returns the Euclidean ground separation of every
// pair of annotated boxes. Fewer than two boxes yield an empty slice.
func PairwiseDistances(boxes []DistanceBox) []float64 {
	var out []float64
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			out = append(out, math.Hypot(
				boxes[i].Forward-boxes[j].Forward,
				boxes[i].Lateral-boxes[j].Lateral,
			))
		}
	}
	return out
}

// NormalizeBoxes drops boxes below the minimum pixel area and merges
// overlapping survivors into their union.
func NormalizeBoxes(boxes []image.Rectangle, minArea float64) []image.Rectangle {
	kept := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		if float64(b.Dx()*b.Dy()) >= minArea {
			kept = append(kept, b)
		}
	}

	merged := true
	for merged {
		merged = false
		for i := 0; i < len(kept) && !merged; i++ {
			for j := i + 1; j < len(kept); j++ {
				if kept[i].Overlaps(kept[j]) {
					kept[i] = kept[i].Union(kept[j])
					kept = append(kept[:j], kept[j+1:]...)
					merged = true
					break
				}
			}
		}
	}
	return kept
}

// OverlapRatio returns the share of a's area covered by b.
func OverlapRatio(a, b image.Rectangle) float64 {
	area := a.Dx() * a.Dy()
	if area == 0 {
		return 0
	}
	inter := a.Intersect(b)
	return float64(inter.Dx()*inter.Dy()) / float64(area)
}

// Average returns the arithmetic mean, or zero for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Min returns the smallest value and whether one exists.
func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
