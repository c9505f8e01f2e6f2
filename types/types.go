package types

import "image"

// FrameWidth and FrameHeight are the fixed working resolution. Every
// frame, the background model and the heatmap share this size, and all
// bounding boxes are expressed in its coordinate space.
const (
	FrameWidth  = 350
	FrameHeight = 300
)

// DetectorConfig holds the fixed detection pipeline parameters
type DetectorConfig struct {
	// HOG people detector
	WinStride image.Point
	Padding   image.Point
	Scale     float64

	// Difference image and contours
	DiffThreshold float32
	MaxValue      float32
	ShadowValue   uint8

	// Adaptive background model
	MOG2History      int
	MOG2VarThreshold float64

	// Box post-processing
	MinBoxArea      float64
	FilterTolerance int
	BaselineOverlap float64
}

// DefaultDetectorConfig returns the default detection configuration
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		WinStride:        image.Pt(4, 4),
		Padding:          image.Pt(4, 4),
		Scale:            1.05,
		DiffThreshold:    50,
		MaxValue:         255,
		ShadowValue:      127,
		MOG2History:      100,
		MOG2VarThreshold: 16,
		MinBoxArea:       200,
		FilterTolerance:  200,
		BaselineOverlap:  0.5,
	}
}

// DisplayConfig holds presentation and heatmap constants
type DisplayConfig struct {
	HeatmapInterval int
	DarkenWeight    float64
	DarkenOverlay   float64
	BrightenWeight  float64

	CountMarker    image.Point
	DistanceMarker image.Point
	MarkerRadius   int

	FontSize float64
}

// DefaultDisplayConfig returns the default presentation configuration
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		HeatmapInterval: 10,
		DarkenWeight:    0.9,
		DarkenOverlay:   0.5,
		BrightenWeight:  0.05,
		CountMarker:     image.Pt(335, 265),
		DistanceMarker:  image.Pt(335, 285),
		MarkerRadius:    3,
		FontSize:        1.0,
	}
}

// VideoConfig holds output video recording configuration
type VideoConfig struct {
	FPS    float64
	Codecs []string
}

// DefaultVideoConfig returns the default video configuration
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		FPS:    30.0,
		Codecs: []string{"H264", "avc1", "x264", "mp4v"},
	}
}

// RunFlags holds the per-run toggles taken from the command line
type RunFlags struct {
	ShowHOGBoxes     bool
	NoFilterBoxes    bool
	UseMOG2          bool
	NoAlarmCount     bool
	NoAlarmDistance  bool
	ShowIntermediate bool
	Headless         bool
	Stream           bool
	Record           bool
}
