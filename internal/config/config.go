package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"alfredoptarigan/resume-evaluator/internal/secrets"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Evaluation EvaluationConfig
	Log        LogConfig

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// QdrantConfig is optional. Rubric retrieval is disabled when URL is empty.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	TopK       int
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency       int
	QueueSize         int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	PollInterval      time.Duration
}

type EvaluationConfig struct {
	StageTimeout time.Duration
	Temperature  float32
	MinRating    float64
	MaxRating    float64
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	apiKey, err := secrets.Optional(secrets.Source{
		Name:  "gemini api key",
		Value: os.Getenv("GEMINI_API_KEY"),
		File:  os.Getenv("GEMINI_API_KEY_FILE"),
	})
	if err != nil {
		return nil, err
	}

	dbPassword, err := secrets.Optional(secrets.Source{
		Name:  "database password",
		Value: getEnv("DB_PASSWORD", "postgres"),
		File:  os.Getenv("DB_PASSWORD_FILE"),
	})
	if err != nil {
		return nil, err
	}

	secretKey, err := secrets.Optional(secrets.Source{
		Name:  "minio secret key",
		Value: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		File:  os.Getenv("MINIO_SECRET_KEY_FILE"),
	})
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: dbPassword,
			DBName:   getEnv("DB_NAME", "resume_evaluator"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "evaluation_rubric"),
			TopK:       getEnvAsInt("QDRANT_TOP_K", 3),
		},
		Gemini: GeminiConfig{
			APIKey:     apiKey,
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Storage: StorageConfig{
			Endpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:   getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:   secretKey,
			Bucket:      getEnv("MINIO_BUCKET", "resume-evaluator"),
			UseSSL:      getEnvAsBool("MINIO_USE_SSL", false),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:         getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
			PollInterval:      getEnvAsDuration("POLL_INTERVAL", "10s"),
		},
		Evaluation: EvaluationConfig{
			StageTimeout: getEnvAsDuration("STAGE_TIMEOUT", "60s"),
			Temperature:  float32(getEnvAsFloat("MODEL_TEMPERATURE", 0.2)),
			MinRating:    getEnvAsFloat("RATING_MIN", 1),
			MaxRating:    getEnvAsFloat("RATING_MAX", 5),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
		DotEnvLoaded: loaded,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.Worker.Concurrency)
	}
	if c.Evaluation.StageTimeout <= 0 {
		return fmt.Errorf("STAGE_TIMEOUT must be positive, got %s", c.Evaluation.StageTimeout)
	}
	if c.Evaluation.MinRating >= c.Evaluation.MaxRating {
		return fmt.Errorf("RATING_MIN (%v) must be below RATING_MAX (%v)", c.Evaluation.MinRating, c.Evaluation.MaxRating)
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("MINIO_BUCKET must not be empty")
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// RAGEnabled reports whether rubric retrieval is configured.
func (c *Config) RAGEnabled() bool {
	return strings.TrimSpace(c.Qdrant.URL) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
