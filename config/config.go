package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Download DownloadConfig `yaml:"download"`
	Services ServicesConfig `yaml:"services"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DownloadConfig struct {
	// Dir is the flat directory holding originals, clips and derived outputs.
	Dir string `yaml:"dir"`

	// UserAgent sent by the resolver when fetching remote pages and media.
	UserAgent string `yaml:"user_agent"`
}

type ServicesConfig struct {
	VocalRemoval       string `yaml:"vocal_removal"`
	SubtitleExtraction string `yaml:"subtitle_extraction"`
	AudioEnhancement   string `yaml:"audio_enhancement"`

	// TimeoutSeconds bounds every probe and submission. Expiry is reported
	// as the service being unavailable.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// OutputFormat requested from the audio services: wav, flac or ogg.
	OutputFormat string `yaml:"output_format"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs".
	Type string `yaml:"type"`

	// GCS export options, used when Type is "gcs".
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

// Default returns a configuration with every default applied, used when no
// config file is present.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Download.Dir == "" {
		c.Download.Dir = "downloads"
	}

	if c.Services.VocalRemoval == "" {
		c.Services.VocalRemoval = "http://localhost:9093"
	}
	if c.Services.SubtitleExtraction == "" {
		c.Services.SubtitleExtraction = "http://localhost:9091"
	}
	if c.Services.AudioEnhancement == "" {
		c.Services.AudioEnhancement = "http://localhost:9092"
	}
	if c.Services.TimeoutSeconds <= 0 {
		c.Services.TimeoutSeconds = 300
	}
	if c.Services.OutputFormat == "" {
		c.Services.OutputFormat = "wav"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
}

// Timeout returns the service timeout as a duration.
func (s ServicesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}
