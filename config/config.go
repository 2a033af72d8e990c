package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"issue-classifier/internal/domain/entity"
)

type Config struct {
	HTTPAddr      string
	TelegramToken string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	ModelDir          string
	SharedLibraryPath string

	FetchTimeout     time.Duration
	InferenceTimeout time.Duration
	DescribeTimeout  time.Duration
	MaxImageBytes    int64
	MaxImagePixels   int64
	FetchRetries     uint64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheSize     int

	LogLevel  string
	LogFormat string

	Thresholds entity.Thresholds
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":5000"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
		ModelDir:          getenv("MODEL_DIR", "models"),
		SharedLibraryPath: os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "text"),
		Thresholds:        entity.DefaultThresholds(),
	}

	var err error
	if cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.InferenceTimeout, err = durationEnv("INFERENCE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.DescribeTimeout, err = durationEnv("DESCRIBE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxImageBytes, err = intEnv[int64]("MAX_IMAGE_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.MaxImagePixels, err = intEnv[int64]("MAX_IMAGE_PIXELS", 50_000_000); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = intEnv[uint64]("FETCH_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = intEnv[int]("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = intEnv[int]("CACHE_SIZE", 1000); err != nil {
		return nil, err
	}

	if path := os.Getenv("THRESHOLDS_FILE"); path != "" {
		if cfg.Thresholds, err = LoadThresholds(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	return cfg, nil
}

// LoadThresholds reads a YAML file and overlays it on the default thresholds.
// Keys missing from the file keep their defaults.
func LoadThresholds(path string) (entity.Thresholds, error) {
	th := entity.DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("parse thresholds file %s: %w", path, err)
	}
	return th, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func intEnv[T int | int64 | uint64](key string, fallback T) (T, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %d", key, n)
	}
	return T(n), nil
}
