package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/maheshrc27/reelpost/internal/models"
	"gopkg.in/yaml.v3"
)

type Instagram struct {
	UserID      string `yaml:"user_id"`
	AccessToken string `yaml:"access_token"`
	GraphURL    string `yaml:"graph_url"`
}

type Tiktok struct {
	ClientKey    string `yaml:"client_key"`
	ClientSecret string `yaml:"client_secret"`
	AccessToken  string `yaml:"access_token"`
	APIURL       string `yaml:"api_url"`
	PrivacyLevel string `yaml:"privacy_level"`
}

type Facebook struct {
	PageID          string `yaml:"page_id"`
	PageAccessToken string `yaml:"page_access_token"`
	GraphURL        string `yaml:"graph_url"`
	RuploadURL      string `yaml:"rupload_url"`
}

type S3 struct {
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	BucketName string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
}

type RabbitMQ struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type Config struct {
	TmpDir         string        `yaml:"tmp_dir"`
	VideosDir      string        `yaml:"videos_dir"`
	VideosPerBatch int           `yaml:"videos_per_batch"`
	PostDelay      time.Duration `yaml:"post_delay"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PollTimeout    time.Duration `yaml:"poll_timeout"`
	Instagram      Instagram     `yaml:"instagram"`
	Tiktok         Tiktok        `yaml:"tiktok"`
	Facebook       Facebook      `yaml:"facebook"`
	S3             S3            `yaml:"s3"`
	RabbitMQ       RabbitMQ      `yaml:"rabbitmq"`
	RegistryDriver string        `yaml:"registry_driver"`
	PostgresURI    string        `yaml:"postgres_uri"`
	RedisURI       string        `yaml:"redis_uri"`
	SecretKey      string        `yaml:"secret_key"`
	ListenAddr     string        `yaml:"listen_addr"`
	LogLevel       string        `yaml:"log_level"`
}

const (
	RegistryFile     = "file"
	RegistryPostgres = "postgres"
)

func LoadConfig() *Config {
	return &Config{
		TmpDir:         getEnv("TMP_DIR", ".tmp"),
		VideosDir:      getEnv("VIDEOS_DIR", "videos"),
		VideosPerBatch: getEnvInt("VIDEOS_PER_BATCH", 15),
		PostDelay:      getEnvDuration("POST_DELAY", 30*time.Second),
		PollInterval:   getEnvDuration("POLL_INTERVAL", 5*time.Second),
		PollTimeout:    getEnvDuration("POLL_TIMEOUT", 300*time.Second),
		Instagram: Instagram{
			UserID:      getEnv("INSTAGRAM_USER_ID", ""),
			AccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			GraphURL:    getEnv("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		},
		Tiktok: Tiktok{
			ClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			AccessToken:  getEnv("TIKTOK_ACCESS_TOKEN", ""),
			APIURL:       getEnv("TIKTOK_API_URL", "https://open.tiktokapis.com/v2"),
			PrivacyLevel: getEnv("TIKTOK_PRIVACY_LEVEL", "PUBLIC_TO_EVERYONE"),
		},
		Facebook: Facebook{
			PageID:          getEnv("FACEBOOK_PAGE_ID", ""),
			PageAccessToken: getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
			GraphURL:        getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v22.0"),
			RuploadURL:      getEnv("FACEBOOK_RUPLOAD_URL", "https://rupload.facebook.com/video-upload/v22.0"),
		},
		S3: S3{
			AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BucketName: getEnv("AWS_S3_BUCKET", ""),
			Region:     getEnv("AWS_S3_REGION", "us-east-1"),
			Endpoint:   getEnv("AWS_S3_ENDPOINT", ""),
		},
		RabbitMQ: RabbitMQ{
			URL:        getEnv("RABBITMQ_URL", ""),
			Exchange:   getEnv("RABBITMQ_EXCHANGE", "reelpost"),
			RoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "post_results"),
			QueueName:  getEnv("RABBITMQ_QUEUE", "reelpost_results"),
		},
		RegistryDriver: getEnv("REGISTRY_DRIVER", RegistryFile),
		PostgresURI:    getEnv("POSTGRES_URI", ""),
		RedisURI:       getEnv("REDIS_URI", "localhost:6379"),
		SecretKey:      getEnv("SECRET_KEY", ""),
		ListenAddr:     getEnv("LISTEN_ADDR", ":3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Load reads .env, the environment and, when present, a YAML settings file
// at path. Values in the file win over the environment; ${VAR} references
// inside the file are expanded before parsing.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := LoadConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.TmpDir == "" {
		c.TmpDir = ".tmp"
	}
	if c.VideosDir == "" {
		c.VideosDir = "videos"
	}
	if c.VideosPerBatch <= 0 {
		c.VideosPerBatch = 15
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 300 * time.Second
	}
	if c.PostDelay < 0 {
		c.PostDelay = 0
	}
	if c.Tiktok.PrivacyLevel == "" {
		c.Tiktok.PrivacyLevel = "PUBLIC_TO_EVERYONE"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.RegistryDriver == "" {
		c.RegistryDriver = RegistryFile
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ConfiguredPlatforms lists the platforms whose access token is present,
// always in instagram, tiktok, facebook order.
func (c *Config) ConfiguredPlatforms() []models.Platform {
	var available []models.Platform
	if c.Instagram.AccessToken != "" {
		available = append(available, models.PlatformInstagram)
	}
	if c.Tiktok.AccessToken != "" {
		available = append(available, models.PlatformTiktok)
	}
	if c.Facebook.PageAccessToken != "" {
		available = append(available, models.PlatformFacebook)
	}
	return available
}

func (c *Config) PlanPath() string     { return filepath.Join(c.TmpDir, "posting_plan.json") }
func (c *Config) MetadataPath() string { return filepath.Join(c.TmpDir, "video_metadata.json") }
func (c *Config) URLMapPath() string   { return filepath.Join(c.TmpDir, "video_urls.json") }
func (c *Config) ResultsPath() string  { return filepath.Join(c.TmpDir, "posting_results.json") }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
