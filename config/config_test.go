package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRoundTrip(t *testing.T) {
	path := writeConfig(t, `{
		"video": "input.mp4",
		"background": "background.jpg",
		"camera_conf": {"height": 2.5, "lower_angle": 10.5, "upper_angle": 75.25},
		"alarms": {"max_people": 4, "min_distance": 1.5}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "input.mp4", cfg.Video)
	assert.Equal(t, "background.jpg", cfg.Background)

	// values must come back exactly as written, with no unit conversion
	assert.Equal(t, 2.5, cfg.Camera.Height)
	assert.Equal(t, 10.5, cfg.Camera.LowerAngle)
	assert.Equal(t, 75.25, cfg.Camera.UpperAngle)
	assert.Equal(t, 4, cfg.Alarms.MaxPeople)
	assert.Equal(t, 1.5, cfg.Alarms.MinDistance)

	assert.Nil(t, cfg.MQTT)
	assert.Nil(t, cfg.HTTP)
}

func TestLoadOptionalSections(t *testing.T) {
	path := writeConfig(t, `{
		"video": "0",
		"background": "bg.png",
		"camera_conf": {"height": 3, "lower_angle": 5, "upper_angle": 80},
		"alarms": {"max_people": 2, "min_distance": 2},
		"mqtt": {"broker": "tcp://localhost:1883", "topic": "humancount/alarms"},
		"http": {"addr": ":8089"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.MQTT)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "humancount/alarms", cfg.MQTT.Topic)

	require.NotNil(t, cfg.HTTP)
	assert.Equal(t, ":8089", cfg.HTTP.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidAngles(t *testing.T) {
	path := writeConfig(t, `{
		"video": "input.mp4",
		"background": "bg.jpg",
		"camera_conf": {"height": 2.5, "lower_angle": 80, "upper_angle": 10},
		"alarms": {"max_people": 4, "min_distance": 1.5}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lower_angle")
}

func TestLoadRejectsMissingSource(t *testing.T) {
	path := writeConfig(t, `{
		"background": "bg.jpg",
		"camera_conf": {"height": 2.5, "lower_angle": 10, "upper_angle": 75},
		"alarms": {"max_people": 4, "min_distance": 1.5}
	}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsIncompleteMQTT(t *testing.T) {
	path := writeConfig(t, `{
		"video": "input.mp4",
		"background": "bg.jpg",
		"camera_conf": {"height": 2.5, "lower_angle": 10, "upper_angle": 75},
		"alarms": {"max_people": 4, "min_distance": 1.5},
		"mqtt": {"broker": "tcp://localhost:1883"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt")
}
