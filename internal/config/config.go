// Package config loads aquarium settings from an optional YAML file, an
// optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// ErrConfig is returned for a missing or invalid setting. It is fatal at
// startup.
var ErrConfig = errors.New("config: invalid")

// Ingestion modes.
const (
	MethodLocal = "local"
	MethodAzure = "azure"
)

// Config holds every tunable of the aquarium.
type Config struct {
	Method    string `yaml:"method"`
	LocalPath string `yaml:"local_path"`

	Azure struct {
		ConnectionString string `yaml:"connection_string"`
		Container        string `yaml:"container"`
	} `yaml:"azure"`

	FishLimit      int     `yaml:"fish_limit"`
	WindowWidth    int     `yaml:"window_width"`
	FrameRate      int     `yaml:"frame_rate"`
	IngestInterval uint64  `yaml:"ingest_interval"`
	Tolerance      int     `yaml:"tolerance"`
	BubbleCount    int     `yaml:"bubble_count"`
	WaveAlpha      float64 `yaml:"wave_alpha"`
	ResetOnStart   bool    `yaml:"reset_on_start"`
	Debug          bool    `yaml:"debug"`

	Paths struct {
		Cache       string `yaml:"cache"`
		Ledger      string `yaml:"ledger"`
		Starfish    string `yaml:"starfish"`
		Background  string `yaml:"background"`
		WaveOverlay string `yaml:"wave_overlay"`
		Bubble      string `yaml:"bubble"`
		Screenshots string `yaml:"screenshots"`
	} `yaml:"paths"`
}

// Default returns the built-in settings.
func Default() *Config {
	c := &Config{
		FishLimit:      40,
		WindowWidth:    1800,
		FrameRate:      120,
		IngestInterval: 1000,
		Tolerance:      20,
		BubbleCount:    25,
		WaveAlpha:      45.0 / 255.0,
		ResetOnStart:   true,
	}
	c.Paths.Cache = "fish"
	c.Paths.Ledger = "known_files.txt"
	c.Paths.Starfish = "starfish"
	c.Paths.Background = "background.jpg"
	c.Paths.WaveOverlay = "wave_overlay.png"
	c.Paths.Bubble = "bubble.png"
	c.Paths.Screenshots = "screenshots"
	return c
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), the .env file at envFile
// (same rules) and finally the environment. The result is validated.
func Load(path, envFile string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: load %s: %v", ErrConfig, envFile, err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnv overlays environment variables onto c.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrConfig, key, v, err)
		}
		*dst = n
		return nil
	}

	str("METHOD", &c.Method)
	str("LOCAL_PATH", &c.LocalPath)
	str("AZURE_STORAGE_CONNECTION_STRING", &c.Azure.ConnectionString)
	str("AZURE_STORAGE_CONTAINER_NAME", &c.Azure.Container)

	for key, dst := range map[string]*int{
		"FISH_LIMIT":   &c.FishLimit,
		"WINDOW_WIDTH": &c.WindowWidth,
		"FRAME_RATE":   &c.FrameRate,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("AQUARIUM_DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: AQUARIUM_DEBUG=%q: %v", ErrConfig, v, err)
		}
		c.Debug = b
	}

	c.Method = strings.ToLower(strings.TrimSpace(c.Method))
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	switch c.Method {
	case MethodLocal:
		if c.LocalPath == "" {
			return fmt.Errorf("%w: local mode needs LOCAL_PATH", ErrConfig)
		}
	case MethodAzure:
		if c.Azure.ConnectionString == "" || c.Azure.Container == "" {
			return fmt.Errorf("%w: azure mode needs AZURE_STORAGE_CONNECTION_STRING and AZURE_STORAGE_CONTAINER_NAME", ErrConfig)
		}
	case "":
		return fmt.Errorf("%w: METHOD is not set (want %q or %q)", ErrConfig, MethodLocal, MethodAzure)
	default:
		return fmt.Errorf("%w: unknown METHOD %q", ErrConfig, c.Method)
	}

	switch {
	case c.FishLimit < 0:
		return fmt.Errorf("%w: fish_limit %d < 0", ErrConfig, c.FishLimit)
	case c.WindowWidth <= 0:
		return fmt.Errorf("%w: window_width %d <= 0", ErrConfig, c.WindowWidth)
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate %d <= 0", ErrConfig, c.FrameRate)
	case c.IngestInterval == 0:
		return fmt.Errorf("%w: ingest_interval must be positive", ErrConfig)
	case c.Tolerance < 0 || c.Tolerance > 255:
		return fmt.Errorf("%w: tolerance %d outside [0, 255]", ErrConfig, c.Tolerance)
	case c.WaveAlpha < 0 || c.WaveAlpha > 1:
		return fmt.Errorf("%w: wave_alpha %v outside [0, 1]", ErrConfig, c.WaveAlpha)
	case c.Paths.Cache == "" || c.Paths.Ledger == "":
		return fmt.Errorf("%w: cache and ledger paths are required", ErrConfig)
	}
	return nil
}
