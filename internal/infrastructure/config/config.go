package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Sunveil.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Controller ControllerConfig `yaml:"controller"`
	Covers     []CoverConfig    `yaml:"covers"`
}

// SiteConfig contains site-specific information. The coordinates drive
// all solar position calculations.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for astronomical calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for evaluation
// diagnostics. Optional; disabled by default.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ControllerConfig contains evaluation scheduling settings shared by all
// covers.
type ControllerConfig struct {
	// Interval is the periodic evaluation interval.
	Interval time.Duration `yaml:"interval"`

	// StartupGrace suppresses command dispatch for this long after boot,
	// so a restart does not move every cover at once.
	StartupGrace time.Duration `yaml:"startup_grace"`

	// CommandGrace ignores state echoes for this long after sending a
	// command, so the cover's own movement is not mistaken for a manual
	// override.
	CommandGrace time.Duration `yaml:"command_grace"`
}

// CoverConfig describes one physical cover: its window geometry, the
// variant-specific dimensions, fallback behaviour and actuation options.
type CoverConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Type is "vertical", "horizontal" or "tilt".
	Type string `yaml:"type"`

	Window   WindowConfig   `yaml:"window"`
	Geometry GeometryConfig `yaml:"geometry"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Limits   LimitsConfig   `yaml:"limits"`
	Climate  *ClimateConfig `yaml:"climate"`
	Control  ControlConfig  `yaml:"control"`

	// Inverse flips the position scale before sending (100 = closed
	// instead of open).
	Inverse bool `yaml:"inverse"`

	// PositionCapable marks covers that accept a numeric position. Covers
	// without it receive open/close commands based on Threshold.
	PositionCapable bool `yaml:"position_capable"`

	// Threshold is the open/close decision boundary for covers without
	// position support.
	Threshold float64 `yaml:"threshold"`
}

// WindowConfig contains the angular geometry of the window.
type WindowConfig struct {
	Azimuth      float64          `yaml:"azimuth"`
	FOVLeft      float64          `yaml:"fov_left"`
	FOVRight     float64          `yaml:"fov_right"`
	MinElevation *float64         `yaml:"min_elevation"`
	MaxElevation *float64         `yaml:"max_elevation"`
	BlindSpot    *BlindSpotConfig `yaml:"blind_spot"`
}

// BlindSpotConfig excludes an obstructed slice of the field of view below
// a given sun elevation. Left and Right are degrees from the left FOV edge.
type BlindSpotConfig struct {
	Left         float64 `yaml:"left"`
	Right        float64 `yaml:"right"`
	MaxElevation float64 `yaml:"max_elevation"`
}

// GeometryConfig contains the variant-specific physical dimensions.
// Only the fields for the configured cover type are read; lengths are in
// metres, angles in degrees.
type GeometryConfig struct {
	// Vertical and horizontal covers.
	WindowHeight float64 `yaml:"window_height"`
	Distance     float64 `yaml:"distance"`
	WindowDepth  float64 `yaml:"window_depth"`

	// Horizontal (awning) covers.
	AwningLength float64 `yaml:"awning_length"`
	AwningAngle  float64 `yaml:"awning_angle"`

	// Tilt covers.
	SlatDepth    float64 `yaml:"slat_depth"`
	SlatDistance float64 `yaml:"slat_distance"`
	TiltMode     string  `yaml:"tilt_mode"`
}

// DefaultsConfig contains the fallback positions and the sunset/sunrise
// switchover offsets.
type DefaultsConfig struct {
	Position       float64       `yaml:"position"`
	SunsetPosition float64       `yaml:"sunset_position"`
	SunsetOffset   time.Duration `yaml:"sunset_offset"`
	SunriseOffset  time.Duration `yaml:"sunrise_offset"`
}

// LimitsConfig clamps the calculated position into a band.
type LimitsConfig struct {
	MinPosition   float64 `yaml:"min_position"`
	MaxPosition   float64 `yaml:"max_position"`
	EnforceAlways bool    `yaml:"enforce_always"`
}

// ClimateConfig enables the climate strategy for a cover and names the
// sensors feeding it. Sensor IDs refer to MQTT state topics under
// sunveil/sensor/<id>/state.
type ClimateConfig struct {
	TempLow  float64 `yaml:"temp_low"`
	TempHigh float64 `yaml:"temp_high"`

	// OutsideTempThreshold optionally gates the summer branch on outdoor
	// temperature. Nil disables the gate.
	OutsideTempThreshold *float64 `yaml:"outside_temp_threshold"`

	TransparentBlind bool `yaml:"transparent_blind"`

	// Sensor IDs. Empty fields disable the corresponding signal and its
	// documented default applies.
	InsideTempSensor  string `yaml:"inside_temp_sensor"`
	OutsideTempSensor string `yaml:"outside_temp_sensor"`
	PresenceSensor    string `yaml:"presence_sensor"`
	WeatherSensor     string `yaml:"weather_sensor"`
	IlluminanceSensor string `yaml:"illuminance_sensor"`
	IrradianceSensor  string `yaml:"irradiance_sensor"`

	// SunnyConditions lists the weather states that permit direct solar
	// radiation. Empty means any state counts as sunny.
	SunnyConditions []string `yaml:"sunny_conditions"`

	// LuxThreshold and IrradianceThreshold mark the low-light boundary for
	// the corresponding sensor.
	LuxThreshold        float64 `yaml:"lux_threshold"`
	IrradianceThreshold float64 `yaml:"irradiance_threshold"`
}

// ControlConfig contains per-cover dispatch gating and manual override
// settings.
type ControlConfig struct {
	// MinPositionDelta suppresses commands that move the cover less than
	// this many percentage points. Moves to or from special positions
	// (fully open, fully closed, the defaults) bypass the delta.
	MinPositionDelta float64 `yaml:"min_position_delta"`

	// MinTimeDelta suppresses commands issued sooner than this after the
	// previous one.
	MinTimeDelta time.Duration `yaml:"min_time_delta"`

	// OverrideThreshold is the minimum externally-reported position change
	// that counts as a manual override.
	OverrideThreshold float64 `yaml:"override_threshold"`

	// OverrideDuration is how long automatic control stays suspended after
	// a manual override. Zero suspends until the next restart.
	OverrideDuration time.Duration `yaml:"override_duration"`

	// IgnoreIntermediate treats positions reported while the cover is
	// moving as transit states rather than overrides.
	IgnoreIntermediate bool `yaml:"ignore_intermediate"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SUNVEIL_SECTION_KEY
// For example: SUNVEIL_DATABASE_PATH, SUNVEIL_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Fill per-cover defaults before validating
	for i := range cfg.Covers {
		applyCoverDefaults(&cfg.Covers[i])
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Sunveil",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/sunveil.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "sunveil-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Controller: ControllerConfig{
			Interval:     60 * time.Second,
			StartupGrace: 2 * time.Minute,
			CommandGrace: 90 * time.Second,
		},
	}
}

// applyCoverDefaults fills the per-cover fields that have non-zero
// defaults and were not set in YAML.
func applyCoverDefaults(c *CoverConfig) {
	if c.Window.FOVLeft == 0 {
		c.Window.FOVLeft = 90
	}
	if c.Window.FOVRight == 0 {
		c.Window.FOVRight = 90
	}
	if c.Limits.MaxPosition == 0 {
		c.Limits.MaxPosition = 100
	}
	if c.Threshold == 0 {
		c.Threshold = 50
	}
	if c.Type == "tilt" && c.Geometry.TiltMode == "" {
		c.Geometry.TiltMode = "mode1"
	}
	if c.Control.OverrideThreshold == 0 {
		c.Control.OverrideThreshold = 5
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SUNVEIL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("SUNVEIL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("SUNVEIL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SUNVEIL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SUNVEIL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SUNVEIL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Geometry and limit mistakes are rejected here so the calculation core
// never sees contradictory input (it assumes validated configuration).
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a valid IANA zone", c.Site.Timezone))
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Controller validation
	if c.Controller.Interval <= 0 {
		errs = append(errs, "controller.interval must be positive")
	}

	// Cover validation
	seen := make(map[string]bool, len(c.Covers))
	for i := range c.Covers {
		prefix := fmt.Sprintf("covers[%d]", i)
		cov := &c.Covers[i]

		if cov.ID == "" {
			errs = append(errs, prefix+".id is required")
		} else if seen[cov.ID] {
			errs = append(errs, fmt.Sprintf("%s.id %q is duplicated", prefix, cov.ID))
		}
		seen[cov.ID] = true

		errs = append(errs, cov.validate(prefix)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate checks one cover's geometry, limits and climate settings.
func (c *CoverConfig) validate(prefix string) []string {
	var errs []string

	switch c.Type {
	case "vertical", "horizontal", "tilt":
	default:
		errs = append(errs, fmt.Sprintf("%s.type must be vertical, horizontal or tilt (got %q)", prefix, c.Type))
		return errs
	}

	// Window
	if c.Window.Azimuth < 0 || c.Window.Azimuth >= 360 {
		errs = append(errs, prefix+".window.azimuth must be in [0,360)")
	}
	if c.Window.FOVLeft <= 0 || c.Window.FOVLeft > 90 {
		errs = append(errs, prefix+".window.fov_left must be in (0,90]")
	}
	if c.Window.FOVRight <= 0 || c.Window.FOVRight > 90 {
		errs = append(errs, prefix+".window.fov_right must be in (0,90]")
	}
	if c.Window.MinElevation != nil && c.Window.MaxElevation != nil &&
		*c.Window.MinElevation >= *c.Window.MaxElevation {
		errs = append(errs, prefix+".window.min_elevation must be below max_elevation")
	}
	if bs := c.Window.BlindSpot; bs != nil && bs.Left >= bs.Right {
		errs = append(errs, prefix+".window.blind_spot.left must be below right")
	}

	// Variant geometry
	switch c.Type {
	case "vertical":
		if c.Geometry.WindowHeight <= 0 {
			errs = append(errs, prefix+".geometry.window_height must be positive")
		}
		if c.Geometry.Distance <= 0 {
			errs = append(errs, prefix+".geometry.distance must be positive")
		}
	case "horizontal":
		if c.Geometry.WindowHeight <= 0 {
			errs = append(errs, prefix+".geometry.window_height must be positive")
		}
		if c.Geometry.Distance <= 0 {
			errs = append(errs, prefix+".geometry.distance must be positive")
		}
		if c.Geometry.AwningLength <= 0 {
			errs = append(errs, prefix+".geometry.awning_length must be positive")
		}
		if c.Geometry.AwningAngle < 0 || c.Geometry.AwningAngle >= 90 {
			errs = append(errs, prefix+".geometry.awning_angle must be in [0,90)")
		}
	case "tilt":
		if c.Geometry.SlatDepth <= 0 {
			errs = append(errs, prefix+".geometry.slat_depth must be positive")
		}
		if c.Geometry.SlatDistance <= 0 {
			errs = append(errs, prefix+".geometry.slat_distance must be positive")
		}
		if c.Geometry.TiltMode != "mode1" && c.Geometry.TiltMode != "mode2" {
			errs = append(errs, prefix+".geometry.tilt_mode must be mode1 or mode2")
		}
	}

	// Defaults and limits
	if c.Defaults.Position < 0 || c.Defaults.Position > 100 {
		errs = append(errs, prefix+".defaults.position must be in [0,100]")
	}
	if c.Defaults.SunsetPosition < 0 || c.Defaults.SunsetPosition > 100 {
		errs = append(errs, prefix+".defaults.sunset_position must be in [0,100]")
	}
	if c.Limits.MinPosition < 0 || c.Limits.MaxPosition > 100 {
		errs = append(errs, prefix+".limits must lie within [0,100]")
	}
	if c.Limits.MinPosition >= c.Limits.MaxPosition {
		errs = append(errs, prefix+".limits.min_position must be below max_position")
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		errs = append(errs, prefix+".threshold must be in [0,100]")
	}

	// Climate
	if cl := c.Climate; cl != nil {
		if cl.TempLow >= cl.TempHigh {
			errs = append(errs, prefix+".climate.temp_low must be below temp_high")
		}
		if cl.InsideTempSensor == "" {
			errs = append(errs, prefix+".climate.inside_temp_sensor is required")
		}
	}

	return errs
}
