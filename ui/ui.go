package ui

import (
	"fmt"
	"image"
	"image/color"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/geometry"
	"github.com/fortym2/HumanCount/types"
)

var (
	Blue   = color.RGBA{B: 255}
	Red    = color.RGBA{R: 255}
	Green  = color.RGBA{G: 255}
	Orange = color.RGBA{R: 255, G: 128}
	White  = color.RGBA{R: 255, G: 255, B: 255}
)

// DrawBoxes draws the given bounding boxes on the frame
func DrawBoxes(frame *gocv.Mat, boxes []image.Rectangle, boxColor color.RGBA) {
	for _, box := range boxes {
		_ = gocv.Rectangle(frame, box, boxColor, 2)
	}
}

// DrawPeopleCount writes the current people count in the top-left corner
func DrawPeopleCount(frame *gocv.Mat, count int, cfg types.DisplayConfig) {
	text := fmt.Sprintf("People: %d", count)
	if err := gocv.PutText(frame, text, image.Pt(10, 20), gocv.FontHersheyPlain, cfg.FontSize, White, 2); err != nil {
		log.Warnf("ui: could not draw people count: %v", err)
	}
}

// DrawAverageDistance writes the average inter-person distance below the count
func DrawAverageDistance(frame *gocv.Mat, average float64, cfg types.DisplayConfig) {
	text := fmt.Sprintf("Avg dist: %.1f m", average)
	if err := gocv.PutText(frame, text, image.Pt(10, 40), gocv.FontHersheyPlain, cfg.FontSize, White, 2); err != nil {
		log.Warnf("ui: could not draw average distance: %v", err)
	}
}

// DrawDistanceLabels stamps each box's estimated camera distance above it
func DrawDistanceLabels(frame *gocv.Mat, boxes []geometry.DistanceBox, cfg types.DisplayConfig) {
	for _, db := range boxes {
		text := fmt.Sprintf("%.1f m", db.Forward)
		at := image.Pt(db.Box.Min.X, db.Box.Min.Y-5)
		if at.Y < 10 {
			at.Y = 10
		}
		if err := gocv.PutText(frame, text, at, gocv.FontHersheyPlain, cfg.FontSize, Green, 1); err != nil {
			log.Warnf("ui: could not draw distance label: %v", err)
		}
	}
}

// DrawCountMarker stamps the people-count alarm glyph
func DrawCountMarker(frame *gocv.Mat, cfg types.DisplayConfig) {
	_ = gocv.Circle(frame, cfg.CountMarker, cfg.MarkerRadius, Orange, 5)
}

// DrawDistanceMarker stamps the distance alarm glyph
func DrawDistanceMarker(frame *gocv.Mat, cfg types.DisplayConfig) {
	_ = gocv.Circle(frame, cfg.DistanceMarker, cfg.MarkerRadius, Red, 5)
}

// Compose concatenates the annotated frame and the rendered heatmap
// side by side into the final display surface.
func Compose(frame gocv.Mat, heat gocv.Mat, dst *gocv.Mat) {
	gocv.Hconcat(frame, heat, dst)
}
