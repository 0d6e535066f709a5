package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServiceURL  string
	HTTPAddr    string
	GRPCAddr    string
	LogLevel    string

	EngineURLs               []string
	EngineAnnounceRetries    int
	EngineAnnounceRetryDelay time.Duration
	ShutdownTimeout          time.Duration

	TaskQueueSize int

	Extractor     string // "openai" | "gemini" | "tesseract"
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	TesseractLang string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	return n, nil
}

func getEnvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	return d, nil
}

func splitURLs(v string) []string {
	var urls []string
	for _, part := range strings.Split(v, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, strings.TrimRight(u, "/"))
		}
	}
	return urls
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "Document Extraction"),
		ServiceURL:  getEnv("SERVICE_URL", "http://localhost:8000"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		GRPCAddr:    getEnv("GRPC_ADDR", ":50051"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		EngineURLs: splitURLs(os.Getenv("ENGINE_URLS")),

		Extractor:     getEnv("EXTRACTOR", "openai"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		TesseractLang: getEnv("TESSERACT_LANG", "eng"),
	}

	var err error
	if cfg.EngineAnnounceRetries, err = getEnvInt("ENGINE_ANNOUNCE_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.EngineAnnounceRetryDelay, err = getEnvDuration("ENGINE_ANNOUNCE_RETRY_DELAY", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.TaskQueueSize, err = getEnvInt("TASK_QUEUE_SIZE", 16); err != nil {
		return nil, err
	}

	if cfg.EngineAnnounceRetries < 1 {
		return nil, fmt.Errorf("ENGINE_ANNOUNCE_RETRIES must be >= 1, got %d", cfg.EngineAnnounceRetries)
	}
	if cfg.TaskQueueSize < 1 {
		return nil, fmt.Errorf("TASK_QUEUE_SIZE must be >= 1, got %d", cfg.TaskQueueSize)
	}
	return cfg, nil
}
