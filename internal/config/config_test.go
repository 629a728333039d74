package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default()
	if c.FishLimit != 40 || c.WindowWidth != 1800 || c.FrameRate != 120 || c.IngestInterval != 1000 {
		t.Errorf("defaults = %+v", c)
	}
	if !c.ResetOnStart {
		t.Error("reset_on_start should default to true")
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.applyEnv(envMap(map[string]string{
		"METHOD":                          " Azure ",
		"AZURE_STORAGE_CONNECTION_STRING": "UseDevelopmentStorage=true",
		"AZURE_STORAGE_CONTAINER_NAME":    "fish",
		"FISH_LIMIT":                      "12",
		"WINDOW_WIDTH":                    "1280",
		"FRAME_RATE":                      "60",
		"AQUARIUM_DEBUG":                  "true",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.Method != MethodAzure || c.Azure.Container != "fish" || c.FishLimit != 12 ||
		c.WindowWidth != 1280 || c.FrameRate != 60 || !c.Debug {
		t.Errorf("config = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	c := Default()
	err := c.applyEnv(envMap(map[string]string{"FISH_LIMIT": "lots"}))
	if !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"local ok", func(c *Config) { c.Method, c.LocalPath = MethodLocal, "/drop" }, true},
		{"no method", func(c *Config) {}, false},
		{"unknown method", func(c *Config) { c.Method = "ftp" }, false},
		{"local without path", func(c *Config) { c.Method = MethodLocal }, false},
		{"azure without container", func(c *Config) {
			c.Method = MethodAzure
			c.Azure.ConnectionString = "x"
		}, false},
		{"zero width", func(c *Config) {
			c.Method, c.LocalPath = MethodLocal, "/drop"
			c.WindowWidth = 0
		}, false},
		{"zero frame rate", func(c *Config) {
			c.Method, c.LocalPath = MethodLocal, "/drop"
			c.FrameRate = 0
		}, false},
	}
	for _, tt := range tests {
		c := Default()
		tt.mutate(c)
		err := c.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrConfig) {
			t.Errorf("%s: err = %v, want ErrConfig", tt.name, err)
		}
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquarium.yaml")
	yml := []byte("method: local\nlocal_path: /from/yaml\nfish_limit: 7\npaths:\n  cache: tankcache\n")
	if err := os.WriteFile(path, yml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOCAL_PATH", "/from/env")
	t.Setenv("METHOD", "")

	c, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LocalPath != "/from/env" {
		t.Errorf("local path = %q, want env override", c.LocalPath)
	}
	if c.FishLimit != 7 || c.Paths.Cache != "tankcache" {
		t.Errorf("yaml values lost: %+v", c)
	}
	if c.Paths.Ledger != "known_files.txt" {
		t.Errorf("default ledger path lost: %q", c.Paths.Ledger)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("METHOD=local\nLOCAL_PATH=/from/dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Registered so the variables godotenv sets are restored after the test.
	t.Setenv("METHOD", "")
	t.Setenv("LOCAL_PATH", "")
	os.Unsetenv("METHOD")
	os.Unsetenv("LOCAL_PATH")

	c, err := Load("", env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Method != MethodLocal || c.LocalPath != "/from/dotenv" {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fish_limit: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, ""); !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}
