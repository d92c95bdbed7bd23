package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                     string   `yaml:"port"`
	DatabaseURL              string   `yaml:"databaseURL"`
	RedisAddr                string   `yaml:"redisAddr"`
	RedisPassword            string   `yaml:"redisPassword"`
	LogLevel                 string   `yaml:"logLevel"`
	AllowedOrigins           []string `yaml:"allowedOrigins"`
	IdentityPrivateKeyPath   string   `yaml:"identityPrivateKeyPath"`
	IdentityKeyID            string   `yaml:"identityKeyId"`
	IdentityVerifyKeys       string   `yaml:"identityVerifyKeys"`
	IdentityIssuer           string   `yaml:"identityIssuer"`
	IdentityAudience         string   `yaml:"identityAudience"`
	IdentityTokenTTL         string   `yaml:"identityTokenTTL"`
	IdentityLeeway           string   `yaml:"identityLeeway"`
	MinioEndpoint            string   `yaml:"minioEndpoint"`
	MinioAccessKey           string   `yaml:"minioAccessKey"`
	MinioSecretKey           string   `yaml:"minioSecretKey"`
	MinioBucket              string   `yaml:"minioBucket"`
	MinioUseSSL              bool     `yaml:"minioUseSSL"`
	MinioPublicBaseURL       string   `yaml:"minioPublicBaseURL"`
	MaxUploadBytes           int64    `yaml:"maxUploadBytes"`
	SignupRateLimitPerMinute int      `yaml:"signupRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("IDENTITY_PRIVATE_KEY_PATH"); v != "" {
		cfg.IdentityPrivateKeyPath = v
	}
	if v := os.Getenv("IDENTITY_KEY_ID"); v != "" {
		cfg.IdentityKeyID = v
	}
	if v := os.Getenv("IDENTITY_VERIFY_KEYS"); v != "" {
		cfg.IdentityVerifyKeys = v
	}
	if v := os.Getenv("IDENTITY_ISSUER"); v != "" {
		cfg.IdentityIssuer = v
	}
	if v := os.Getenv("IDENTITY_AUDIENCE"); v != "" {
		cfg.IdentityAudience = v
	}
	if v := os.Getenv("IDENTITY_TOKEN_TTL"); v != "" {
		cfg.IdentityTokenTTL = v
	}
	if v := os.Getenv("IDENTITY_LEEWAY"); v != "" {
		cfg.IdentityLeeway = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("MINIO_PUBLIC_BASE_URL"); v != "" {
		cfg.MinioPublicBaseURL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for token revocation and rate limiting")
	}
	if cfg.IdentityPrivateKeyPath == "" {
		return errors.New("config: identityPrivateKeyPath is required (set IDENTITY_PRIVATE_KEY_PATH)")
	}
	if cfg.MinioEndpoint == "" {
		return errors.New("config: minioEndpoint is required (set in config.yaml)")
	}
	if cfg.MinioAccessKey == "" {
		return errors.New("config: minioAccessKey is required (set in config.yaml)")
	}
	if cfg.MinioSecretKey == "" {
		return errors.New("config: minioSecretKey is required (set in config.yaml)")
	}
	if cfg.MinioBucket == "" {
		return errors.New("config: minioBucket is required (set in config.yaml)")
	}
	if cfg.SignupRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	return nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseTokenTTL parses the optional identity token TTL duration string.
func ParseTokenTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid identityTokenTTL duration: %w", err)
	}
	return dur, nil
}

// ParseLeeway parses the optional identity clock leeway duration string.
func ParseLeeway(leewayStr string) (time.Duration, error) {
	if leewayStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(leewayStr)
	if err != nil {
		return 0, fmt.Errorf("invalid identityLeeway duration: %w", err)
	}
	return dur, nil
}

// ParseVerifyKeys parses "kid=path,kid2=path2" into a map.
func ParseVerifyKeys(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	pairs := strings.Split(raw, ",")
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid identityVerifyKeys entry %q", pair)
		}
		kid := strings.TrimSpace(parts[0])
		path := strings.TrimSpace(parts[1])
		if kid == "" || path == "" {
			return nil, fmt.Errorf("invalid identityVerifyKeys entry %q", pair)
		}
		out[kid] = path
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
