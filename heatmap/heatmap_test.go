package heatmap

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortym2/HumanCount/types"
)

func testConfig() types.DisplayConfig {
	cfg := types.DefaultDisplayConfig()
	cfg.HeatmapInterval = 1 // accumulate on every update
	return cfg
}

func TestAccumulatorBrightensUnderBoxes(t *testing.T) {
	acc := New(100, 100, testConfig())
	defer acc.Close()

	box := image.Rect(10, 10, 40, 40)
	acc.Update([]image.Rectangle{box})

	inside := acc.Mat().GetUCharAt(20, 20)
	outside := acc.Mat().GetUCharAt(80, 80)
	assert.Greater(t, inside, uint8(0))
	assert.Zero(t, outside)
}

func TestAccumulatorSaturatesWithoutWrapping(t *testing.T) {
	acc := New(100, 100, testConfig())
	defer acc.Close()

	box := image.Rect(10, 10, 40, 40)
	var last uint8
	for i := 0; i < 200; i++ {
		acc.Update([]image.Rectangle{box})
		v := acc.Mat().GetUCharAt(20, 20)
		// a wrap would show up as a collapse from high to near zero
		if last > 100 {
			assert.GreaterOrEqual(t, v, uint8(100))
		}
		last = v
	}

	// darken(0.9) against brighten(+255*0.05) settles around 127
	assert.Greater(t, last, uint8(100))
	assert.Less(t, last, uint8(150))
}

func TestAccumulatorDecaysWithoutActivity(t *testing.T) {
	acc := New(100, 100, testConfig())
	defer acc.Close()

	box := image.Rect(10, 10, 40, 40)
	for i := 0; i < 20; i++ {
		acc.Update([]image.Rectangle{box})
	}
	peak := acc.Mat().GetUCharAt(20, 20)
	require.Greater(t, peak, uint8(0))

	for i := 0; i < 50; i++ {
		acc.Update(nil)
	}
	decayed := acc.Mat().GetUCharAt(20, 20)
	assert.Less(t, decayed, peak)
}

func TestAccumulatorRespectsInterval(t *testing.T) {
	cfg := types.DefaultDisplayConfig() // interval 10
	acc := New(100, 100, cfg)
	defer acc.Close()

	box := image.Rect(10, 10, 40, 40)

	// frame 0 is on the cadence
	acc.Update([]image.Rectangle{box})
	after := acc.Mat().GetUCharAt(20, 20)
	assert.Greater(t, after, uint8(0))

	// frames 1..9 leave the raster untouched
	for i := 0; i < 9; i++ {
		acc.Update([]image.Rectangle{box})
	}
	assert.Equal(t, after, acc.Mat().GetUCharAt(20, 20))

	// frame 10 advances the accumulator again
	acc.Update([]image.Rectangle{box})
	assert.NotEqual(t, after, acc.Mat().GetUCharAt(20, 20))
}

func TestAccumulatorClipsOutOfBoundsBoxes(t *testing.T) {
	acc := New(100, 100, testConfig())
	defer acc.Close()

	// partially and fully out of bounds boxes must not panic
	acc.Update([]image.Rectangle{
		image.Rect(80, 80, 140, 140),
		image.Rect(200, 200, 250, 250),
	})

	assert.Greater(t, acc.Mat().GetUCharAt(90, 90), uint8(0))
}
