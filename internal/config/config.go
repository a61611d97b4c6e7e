package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultModel is the vision model every extraction is sent to
	DefaultModel = "gemini-2.0-flash"

	// DailyLimit is the advisory number of successful extractions per day
	DailyLimit = 1500
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string

	// Extraction
	EnvAPIKey    string
	Model        string
	MaxDimension int

	// Persistence
	DBPath string

	// Presentational pauses between pipeline states
	UploadPause time.Duration
	FormatPause time.Duration

	// Limits
	MaxUploadBytes int64
	FetchTimeout   time.Duration

	// rate limiting (per client)
	RateEvery time.Duration
	RateBurst int
}

// Load reads configuration from the environment, falling back to defaults
func Load() Config {
	return Config{
		Port: envStr("PORT", "8888"),

		EnvAPIKey:    envStr("GEMINI_API_KEY", ""),
		Model:        envStr("AXKHAN_MODEL", DefaultModel),
		MaxDimension: envInt("AXKHAN_MAX_DIMENSION", 1000),

		DBPath: envStr("AXKHAN_DB", "axkhan.db"),

		UploadPause: envDur("AXKHAN_UPLOAD_PAUSE", 800*time.Millisecond),
		FormatPause: envDur("AXKHAN_FORMAT_PAUSE", 500*time.Millisecond),

		MaxUploadBytes: int64(envInt("AXKHAN_MAX_UPLOAD_BYTES", 10<<20)),
		FetchTimeout:   envDur("AXKHAN_FETCH_TIMEOUT", 30*time.Second),

		RateEvery: envDur("AXKHAN_RATE_EVERY", 500*time.Millisecond),
		RateBurst: envInt("AXKHAN_RATE_BURST", 10),
	}
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDur accepts "0" to disable a duration
func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
