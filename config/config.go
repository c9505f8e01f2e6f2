package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// CameraConfig describes the physical camera mount used for
// pinhole distance estimation. Height is in meters, angles in degrees.
type CameraConfig struct {
	Height     float64 `mapstructure:"height" json:"height"`
	LowerAngle float64 `mapstructure:"lower_angle" json:"lower_angle"`
	UpperAngle float64 `mapstructure:"upper_angle" json:"upper_angle"`
}

// AlarmConfig holds the alarm thresholds. MinDistance is in meters.
type AlarmConfig struct {
	MaxPeople   int     `mapstructure:"max_people" json:"max_people"`
	MinDistance float64 `mapstructure:"min_distance" json:"min_distance"`
}

// MQTTConfig configures optional alarm publishing.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker" json:"broker"`
	Topic    string `mapstructure:"topic" json:"topic"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
}

// HTTPConfig configures the optional MJPEG stream and status API.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// Config is the top-level JSON configuration document.
type Config struct {
	Video      string       `mapstructure:"video" json:"video"`
	Background string       `mapstructure:"background" json:"background"`
	Camera     CameraConfig `mapstructure:"camera_conf" json:"camera_conf"`
	Alarms     AlarmConfig  `mapstructure:"alarms" json:"alarms"`
	MQTT       *MQTTConfig  `mapstructure:"mqtt" json:"mqtt,omitempty"`
	HTTP       *HTTPConfig  `mapstructure:"http" json:"http,omitempty"`
}

// Load reads and validates the JSON configuration at the given path.
// Values are used as stored: angles stay degrees, lengths stay meters.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: could not read %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: could not parse %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Video == "" {
		return fmt.Errorf("missing 'video' source")
	}
	if c.Background == "" {
		return fmt.Errorf("missing 'background' image path")
	}
	if c.Camera.Height <= 0 {
		return fmt.Errorf("camera height must be positive, got %v", c.Camera.Height)
	}
	if c.Camera.LowerAngle >= c.Camera.UpperAngle {
		return fmt.Errorf("camera lower_angle (%v) must be below upper_angle (%v)",
			c.Camera.LowerAngle, c.Camera.UpperAngle)
	}
	if c.Alarms.MaxPeople < 0 {
		return fmt.Errorf("alarms max_people must not be negative, got %d", c.Alarms.MaxPeople)
	}
	if c.Alarms.MinDistance < 0 {
		return fmt.Errorf("alarms min_distance must not be negative, got %v", c.Alarms.MinDistance)
	}
	if c.MQTT != nil && (c.MQTT.Broker == "" || c.MQTT.Topic == "") {
		return fmt.Errorf("mqtt section needs both 'broker' and 'topic'")
	}
	if c.HTTP != nil && c.HTTP.Addr == "" {
		return fmt.Errorf("http section needs 'addr'")
	}
	return nil
}
