// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GroundControl DaemonConfig `yaml:"groundcontrol"`
}

type DaemonConfig struct {
	Poll    PollConfig    `yaml:"poll"`
	Feed    FeedConfig    `yaml:"feed"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- FEED ----

type FeedConfig struct {
	Endpoint    string      `yaml:"endpoint"`
	BearerToken string      `yaml:"bearer_token"`
	TimeoutMs   int         `yaml:"timeout_ms"`
	EntitiesKey string      `yaml:"entities_key"`
	Fields      FieldConfig `yaml:"fields"`

	// PriorityMode selects how the priority field is interpreted:
	// "field" uses the numeric value as-is, "recency" treats it as
	// seconds-since-seen and inverts it (fresher = higher).
	PriorityMode string `yaml:"priority_mode"`

	// Watchlist squawk codes force an entity to the top of the ranking.
	Watchlist []string `yaml:"watchlist"`
}

// FieldConfig maps feed JSON keys onto entity fields.
// The feed schema is site-specific; nothing here is hardcoded.
type FieldConfig struct {
	ID       string `yaml:"id"`
	Priority string `yaml:"priority"`
	Label    string `yaml:"label"`
	Squawk   string `yaml:"squawk"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Slots          int    `yaml:"slots"`
	Backend        string `yaml:"backend"` // sim | gpio | lcd | modbus
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`

	GPIO   GPIOConfig   `yaml:"gpio"`
	LCD    LCDConfig    `yaml:"lcd"`
	Modbus ModbusConfig `yaml:"modbus"`
}

type GPIOConfig struct {
	Pins []int `yaml:"pins"` // BCM numbering, one pin per slot
}

type LCDConfig struct {
	Bus  string `yaml:"bus"` // i2c bus name, e.g. "1"
	Cols int    `yaml:"cols"`
	Rows int    `yaml:"rows"`
}

type ModbusConfig struct {
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
	CoilBase uint16 `yaml:"coil_base"`

	// Health status block (optional, opt-in)
	StatusBase *uint16 `yaml:"status_base"`
	DeviceName string  `yaml:"device_name"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the YAML config file, then applies environment
// overrides. It does not validate; call Validate() and Normalize() after.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overlays environment values on top of the file config.
// Secrets belong in the environment, not in the YAML file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GROUNDCONTROL_FEED_URL"); v != "" {
		cfg.GroundControl.Feed.Endpoint = v
	}
	if v := os.Getenv("GROUNDCONTROL_FEED_TOKEN"); v != "" {
		cfg.GroundControl.Feed.BearerToken = v
	}
}
