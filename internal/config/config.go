package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Encoder    EncoderConfig    `yaml:"encoder"`
	Headshot   HeadshotConfig   `yaml:"headshot"`
	Chain      ChainConfig      `yaml:"chain"`
	Frames     FramesConfig     `yaml:"frames"`
	Video      VideoConfig      `yaml:"video"`
	Database   DatabaseConfig   `yaml:"database"`
	PhotoPrism PhotoPrismConfig `yaml:"photoprism"`
}

type EncoderConfig struct {
	URL         string `yaml:"url"`         // defaults to http://localhost:8000
	Model       string `yaml:"model"`       // cache key for stored encodings
	Concurrency int    `yaml:"concurrency"` // parallel encoder requests (default 5)
}

type HeadshotConfig struct {
	Size       int     `yaml:"size"`       // output edge in pixels (default 800)
	Multiplier float64 `yaml:"multiplier"` // crop edge / eye-to-mouth distance (default 6.1)
	EyeLine    float64 `yaml:"eye_line"`   // eye line position from the top (default 0.38)
}

type ChainConfig struct {
	AgeWeight float64 `yaml:"age_weight"` // 0.01-0.05 depending on collection size (default 0.015)
	Workers   int     `yaml:"workers"`    // parallel scan workers (default 1)
}

type FramesConfig struct {
	Still int `yaml:"still"` // identical frames per photo (default 2)
	Blend int `yaml:"blend"` // cross-fade frames between photos (default 2)
}

type VideoConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"` // defaults to ffmpeg on PATH
	InputFPS   int    `yaml:"input_fps"`   // default 1
	OutputFPS  int    `yaml:"output_fps"`  // default 30
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`            // PostgreSQL connection URL, empty disables caching
	MaxOpenConns int    `yaml:"max_open_conns"` // default 25
	MaxIdleConns int    `yaml:"max_idle_conns"` // default 5
}

type PhotoPrismConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"-"` // only from the environment
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Encoder:  EncoderConfig{URL: "http://localhost:8000", Model: "buffalo_l", Concurrency: 5},
		Headshot: HeadshotConfig{Size: 800, Multiplier: 6.1, EyeLine: 0.38},
		Chain:    ChainConfig{AgeWeight: 0.015, Workers: 1},
		Frames:   FramesConfig{Still: 2, Blend: 2},
		Video:    VideoConfig{FFmpegPath: "ffmpeg", InputFPS: 1, OutputFPS: 30},
		Database: DatabaseConfig{MaxOpenConns: 25, MaxIdleConns: 5},
	}
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a non-negative float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the configuration from defaults and environment variables.
func Load() *Config {
	return applyEnv(Defaults())
}

// LoadFile reads YAML defaults from path, then applies environment overrides.
// An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return applyEnv(cfg), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the --config flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg *Config) *Config {
	cfg.Encoder.URL = envString("ENCODER_URL", cfg.Encoder.URL)
	cfg.Encoder.Model = envString("ENCODER_MODEL", cfg.Encoder.Model)
	cfg.Encoder.Concurrency = envInt("ENCODER_CONCURRENCY", cfg.Encoder.Concurrency)

	cfg.Headshot.Size = envInt("HEADSHOT_SIZE", cfg.Headshot.Size)
	cfg.Headshot.Multiplier = envFloat("HEADSHOT_MULTIPLIER", cfg.Headshot.Multiplier)
	cfg.Headshot.EyeLine = envFloat("HEADSHOT_EYE_LINE", cfg.Headshot.EyeLine)

	cfg.Chain.AgeWeight = envFloat("AGE_WEIGHT", cfg.Chain.AgeWeight)
	cfg.Chain.Workers = envInt("CHAIN_WORKERS", cfg.Chain.Workers)

	cfg.Frames.Still = envInt("FRAMES_STILL", cfg.Frames.Still)
	cfg.Frames.Blend = envInt("FRAMES_BLEND", cfg.Frames.Blend)

	cfg.Video.FFmpegPath = envString("FFMPEG_PATH", cfg.Video.FFmpegPath)
	cfg.Video.InputFPS = envInt("VIDEO_INPUT_FPS", cfg.Video.InputFPS)
	cfg.Video.OutputFPS = envInt("VIDEO_OUTPUT_FPS", cfg.Video.OutputFPS)

	cfg.Database.URL = envString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.PhotoPrism.URL = envString("PHOTOPRISM_URL", cfg.PhotoPrism.URL)
	cfg.PhotoPrism.Username = envString("PHOTOPRISM_USERNAME", cfg.PhotoPrism.Username)
	cfg.PhotoPrism.Password = os.Getenv("PHOTOPRISM_PASSWORD")
	return cfg
}

// Validate reports settings the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Headshot.EyeLine <= 0 || c.Headshot.EyeLine >= 1 {
		return fmt.Errorf("headshot eye line must be between 0 and 1, got %v", c.Headshot.EyeLine)
	}
	if c.Headshot.Multiplier <= 0 {
		return fmt.Errorf("headshot multiplier must be positive, got %v", c.Headshot.Multiplier)
	}
	return nil
}
