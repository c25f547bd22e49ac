package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	CORS      CORS      `yaml:"cors"`
	Instagram Instagram `yaml:"instagram"`
	Database  Database  `yaml:"database"`
	Redis     Redis     `yaml:"redis"`
	Scheduler Scheduler `yaml:"scheduler"`
	S3        S3        `yaml:"s3"`
	Reach     Reach     `yaml:"reach"`
}

// S3 holds S3/MinIO storage configuration for exported reach reports
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"reports"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/reports"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Log holds logger configuration
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel converts the configured level to a slog level
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CORS holds cross-origin settings for the dashboard frontend
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	MaxAge         int      `yaml:"max_age" env:"CORS_MAX_AGE" env-default:"300"`
}

// Instagram holds Instagram API configuration
type Instagram struct {
	Enabled    bool   `yaml:"enabled" env:"INSTAGRAM_ENABLED" env-default:"false"`
	BaseURL    string `yaml:"base_url" env:"INSTAGRAM_BASE_URL" env-default:"https://graph.instagram.com"`
	APIVersion string `yaml:"api_version" env:"INSTAGRAM_API_VERSION" env-default:"v21.0"`
}

// Database holds database configuration
type Database struct {
	// PostgreSQL; empty disables campaign endpoints
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Redis holds campaign reach cache configuration
type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_REACH_TTL" env-default:"10m"`
}

// Scheduler holds scheduler configuration
type Scheduler struct {
	Enabled  bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"false"`
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1h"`
}

// Reach holds the reach heuristic policy multipliers
type Reach struct {
	OrganicMinRatio                float64 `yaml:"organic_min_ratio" env:"REACH_ORGANIC_MIN_RATIO" env-default:"0.25"`
	OrganicEngagementMultiplier    float64 `yaml:"organic_engagement_multiplier" env:"REACH_ORGANIC_ENGAGEMENT_MULTIPLIER" env-default:"50"`
	OrganicFloorRatio              float64 `yaml:"organic_floor_ratio" env:"REACH_ORGANIC_FLOOR_RATIO" env-default:"0.15"`
	OrganicViralCap                float64 `yaml:"organic_viral_cap" env:"REACH_ORGANIC_VIRAL_CAP" env-default:"1.5"`
	NoFollowerEngagementMultiplier float64 `yaml:"no_follower_engagement_multiplier" env:"REACH_NO_FOLLOWER_ENGAGEMENT_MULTIPLIER" env-default:"100"`

	VideoFollowerRatio   float64 `yaml:"video_follower_ratio" env:"REACH_VIDEO_FOLLOWER_RATIO" env-default:"0.4"`
	VideoLikesMultiplier float64 `yaml:"video_likes_multiplier" env:"REACH_VIDEO_LIKES_MULTIPLIER" env-default:"100"`
	VideoFollowerCap     float64 `yaml:"video_follower_cap" env:"REACH_VIDEO_FOLLOWER_CAP" env-default:"5"`
	VideoViewsCap        float64 `yaml:"video_views_cap" env:"REACH_VIDEO_VIEWS_CAP" env-default:"1.2"`

	CollaboratorFollowerProxy float64 `yaml:"collaborator_follower_proxy" env:"REACH_COLLABORATOR_FOLLOWER_PROXY" env-default:"20"`
	CollaboratorOverlapFactor float64 `yaml:"collaborator_overlap_factor" env:"REACH_COLLABORATOR_OVERLAP_FACTOR" env-default:"0.7"`
	CollaboratorBucketShare   float64 `yaml:"collaborator_bucket_share" env:"REACH_COLLABORATOR_BUCKET_SHARE" env-default:"0.3"`

	MultiCreatorBoost float64 `yaml:"multi_creator_boost" env:"REACH_MULTI_CREATOR_BOOST" env-default:"1.2"`
}

// Coefficients converts the configured policy into estimator coefficients
func (r Reach) Coefficients() entity.Coefficients {
	return entity.Coefficients{
		OrganicMinRatio:                r.OrganicMinRatio,
		OrganicEngagementMultiplier:    r.OrganicEngagementMultiplier,
		OrganicFloorRatio:              r.OrganicFloorRatio,
		OrganicViralCap:                r.OrganicViralCap,
		NoFollowerEngagementMultiplier: r.NoFollowerEngagementMultiplier,
		VideoFollowerRatio:             r.VideoFollowerRatio,
		VideoLikesMultiplier:           r.VideoLikesMultiplier,
		VideoFollowerCap:               r.VideoFollowerCap,
		VideoViewsCap:                  r.VideoViewsCap,
		CollaboratorFollowerProxy:      r.CollaboratorFollowerProxy,
		CollaboratorOverlapFactor:      r.CollaboratorOverlapFactor,
		CollaboratorBucketShare:        r.CollaboratorBucketShare,
		MultiCreatorBoost:              r.MultiCreatorBoost,
	}
}

// Validate rejects invalid multipliers and a policy with every multiplier at zero,
// which the estimator would otherwise replace with the defaults
func (r Reach) Validate() error {
	c := r.Coefficients()
	if c.IsZero() {
		return fmt.Errorf("%w: every reach coefficient is zero", entity.ErrInvalidCoefficients)
	}
	return c.Validate()
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := cfg.Reach.Validate(); err != nil {
		log.Fatalf("invalid reach policy: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Reach.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
