package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Worker   WorkerConfig
	Audio    AudioConfig
	Engine   EngineConfig
	Diarize  DiarizeConfig
	Results  ResultsConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   int
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

type WorkerConfig struct {
	Concurrency int
	JobTimeout  time.Duration
}

type AudioConfig struct {
	FFmpegBin string
	TempDir   string // empty means the OS default
}

type EngineConfig struct {
	Backend      string // "local" or "openai"
	LocalBaseURL string // faster-whisper server, default: "http://localhost:9000"
	OpenAIKey    string
	OpenAIModel  string // default: "whisper-1"
}

type DiarizeConfig struct {
	BaseURL string // pyannote server, default: "http://localhost:9001"
	Device  string // device target the pipeline is loaded on
}

type ResultsConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateRPS, err := getEnvInt("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	jobTimeout, err := getEnvDuration("WORKER_JOB_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_JOB_TIMEOUT: %w", err)
	}

	resultTTL, err := getEnvDuration("RESULT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid RESULT_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Worker: WorkerConfig{
			Concurrency: concurrency,
			JobTimeout:  jobTimeout,
		},
		Audio: AudioConfig{
			FFmpegBin: getEnv("FFMPEG_BIN", "ffmpeg"),
			TempDir:   getEnv("AUDIO_TEMP_DIR", ""),
		},
		Engine: EngineConfig{
			Backend:      getEnv("ENGINE_BACKEND", "local"),
			LocalBaseURL: getEnv("ENGINE_LOCAL_BASE_URL", "http://localhost:9000"),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("ENGINE_OPENAI_MODEL", "whisper-1"),
		},
		Diarize: DiarizeConfig{
			BaseURL: getEnv("DIARIZE_BASE_URL", "http://localhost:9001"),
			Device:  getEnv("DIARIZE_DEVICE", "cuda"),
		},
		Results: ResultsConfig{
			TTL: resultTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if c.Engine.Backend == "openai" && c.Engine.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
