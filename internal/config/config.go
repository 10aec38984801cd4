package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CHATMD_API_KEY.
const EnvPrefix = "CHATMD"

const (
	defaultPort            = "8090"
	defaultWorkerCount     = 2
	defaultMaxQueueSize    = 50
	defaultMaxUploadBytes  = 20 << 20 // 20MB
	defaultJobTTL          = 1 * time.Hour
	defaultFetchMaxRetries = 3
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Image fetching
	FetchUserAgent  string
	FetchMaxRetries int

	// Export defaults
	DownloadImages bool
	FrontMatter    bool
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper, version string) {
	v.SetDefault("port", defaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", defaultWorkerCount)
	v.SetDefault("max_queue_size", defaultMaxQueueSize)
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.SetDefault("job_ttl", defaultJobTTL)
	v.SetDefault("fetch_user_agent", "chatmd/"+version)
	v.SetDefault("fetch_max_retries", defaultFetchMaxRetries)
	v.SetDefault("download_images", false)
	v.SetDefault("front_matter", false)
}

// New returns a viper instance that reads chatmd.yaml from cfgFile, or from
// the working directory or ~/.config/chatmd when cfgFile is empty. A missing
// config file is not an error.
func New(cfgFile, version string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v, version)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("chatmd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "chatmd"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads Config from v, replacing out-of-range values with defaults.
func Load(v *viper.Viper) Config {
	cfg := Config{
		Port: v.GetString("port"),

		APIKey: v.GetString("api_key"),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		JobTTL: v.GetDuration("job_ttl"),

		FetchUserAgent:  v.GetString("fetch_user_agent"),
		FetchMaxRetries: v.GetInt("fetch_max_retries"),

		DownloadImages: v.GetBool("download_images"),
		FrontMatter:    v.GetBool("front_matter"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = defaultJobTTL
	}
	if cfg.FetchMaxRetries < 0 {
		cfg.FetchMaxRetries = defaultFetchMaxRetries
	}

	return cfg
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is required", EnvPrefix)
	}
	return nil
}
