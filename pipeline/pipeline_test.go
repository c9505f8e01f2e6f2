package pipeline

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/alarm"
	"github.com/fortym2/HumanCount/config"
	"github.com/fortym2/HumanCount/detect"
	"github.com/fortym2/HumanCount/types"
)

type fakePeople struct {
	boxes []image.Rectangle
	err   error
}

func (f *fakePeople) Detect(gocv.Mat) ([]image.Rectangle, error) {
	return f.boxes, f.err
}

type fakeMotion struct {
	boxes []image.Rectangle
	err   error
}

func (f *fakeMotion) Detect(gocv.Mat) ([]image.Rectangle, error) {
	return f.boxes, f.err
}

var testCamera = config.CameraConfig{Height: 2.5, LowerAngle: 10, UpperAngle: 75}

func TestProcessFusesDetections(t *testing.T) {
	people := &fakePeople{boxes: []image.Rectangle{image.Rect(100, 100, 150, 200)}}
	motion := &fakeMotion{boxes: []image.Rectangle{
		image.Rect(110, 120, 140, 180), // covered by the people box
		image.Rect(100, 100, 150, 200).Add(image.Pt(400, 400)),
	}}

	p := New(people, motion, testCamera, types.DefaultDetectorConfig())

	f := Frame{Index: 0}
	require.NoError(t, p.Process(&f))

	assert.Len(t, f.PeopleBoxes, 1)
	assert.Len(t, f.MotionBoxes, 2)
	require.Len(t, f.FilteredBoxes, 1)
	require.Len(t, f.DistanceBoxes, 1)
	assert.Greater(t, f.DistanceBoxes[0].Forward, 0.0)
	assert.Empty(t, f.Distances, "a single box has no pairwise distances")
}

func TestProcessPairwiseDistances(t *testing.T) {
	motion := &fakeMotion{boxes: []image.Rectangle{
		image.Rect(20, 150, 70, 220),
		image.Rect(250, 100, 300, 160),
		image.Rect(140, 200, 190, 280),
	}}

	p := New(&fakePeople{}, motion, testCamera, types.DefaultDetectorConfig())

	f := Frame{Index: 0}
	require.NoError(t, p.Process(&f))

	require.Len(t, f.FilteredBoxes, 3)
	require.Len(t, f.Distances, 3)
	for _, d := range f.Distances {
		assert.Greater(t, d, 0.0)
		assert.False(t, math.IsInf(d, 0))
	}
}

func TestProcessPropagatesDetectorErrors(t *testing.T) {
	p := New(&fakePeople{err: assert.AnError}, &fakeMotion{}, testCamera, types.DefaultDetectorConfig())
	assert.Error(t, p.Process(&Frame{}))

	p = New(&fakePeople{}, &fakeMotion{err: assert.AnError}, testCamera, types.DefaultDetectorConfig())
	assert.Error(t, p.Process(&Frame{}))
}

// TestTwoFrameScenario runs the real motion detector over a synthetic
// two-frame stream: frame 1 matches the background exactly, frame 2
// carries one 50x50 block of difference in the lower-left quadrant.
func TestTwoFrameScenario(t *testing.T) {
	cfg := types.DefaultDetectorConfig()

	background := gocv.Zeros(types.FrameHeight, types.FrameWidth, gocv.MatTypeCV8U)
	defer background.Close()

	motion := detect.NewDiffMotionDetector(background, nil, false, false, cfg)
	defer motion.Close()

	people := &fakePeople{}
	p := New(people, motion, testCamera, cfg)

	evaluator := alarm.NewEvaluator(config.AlarmConfig{MaxPeople: 10, MinDistance: 0.01}, false, false, nil)

	// frame 1: no motion, no people
	still := gocv.Zeros(types.FrameHeight, types.FrameWidth, gocv.MatTypeCV8U)
	defer still.Close()

	f1 := Frame{Index: 0, Gray: still}
	require.NoError(t, p.Process(&f1))
	assert.Empty(t, f1.PeopleBoxes)
	assert.Empty(t, f1.FilteredBoxes)

	res := evaluator.Evaluate(f1.Index, len(f1.PeopleBoxes), f1.Distances)
	assert.False(t, res.Count)
	assert.False(t, res.Distance)

	// frame 2: one block of difference in the lower-left quadrant
	moving := gocv.Zeros(types.FrameHeight, types.FrameWidth, gocv.MatTypeCV8U)
	defer moving.Close()
	block := moving.Region(image.Rect(40, 200, 90, 250))
	require.NoError(t, block.SetTo(gocv.NewScalar(255, 0, 0, 0)))
	block.Close()

	f2 := Frame{Index: 1, Gray: moving}
	require.NoError(t, p.Process(&f2))
	assert.Empty(t, f2.PeopleBoxes)
	require.Len(t, f2.FilteredBoxes, 1)

	forward := f2.DistanceBoxes[0].Forward
	assert.Greater(t, forward, 0.0)
	assert.False(t, math.IsInf(forward, 0))
	assert.False(t, math.IsNaN(forward))

	res = evaluator.Evaluate(f2.Index, len(f2.PeopleBoxes), f2.Distances)
	assert.False(t, res.Count)
	assert.False(t, res.Distance)
}
