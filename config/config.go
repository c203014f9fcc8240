package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ranked holds the tuning knobs of the matchmaking queue, the rating
// algorithm and the season calendar.
type Ranked struct {
	MinPlayers          int
	MaxAttempts         int
	Timeout             time.Duration
	KFactor             float64
	DefaultElo          int
	LeaderboardMaxLimit int
	ResolveInterval     time.Duration
	SeasonCheckInterval time.Duration
	ResolveOnRead       bool
	ArchiveSize         int
}

// DefaultRanked returns the production defaults.
func DefaultRanked() Ranked {
	return Ranked{
		MinPlayers:          2,
		MaxAttempts:         3,
		Timeout:             time.Hour,
		KFactor:             32,
		DefaultElo:          1000,
		LeaderboardMaxLimit: 50,
		ResolveInterval:     time.Minute,
		SeasonCheckInterval: time.Minute,
		ArchiveSize:         100,
	}
}

// Validate reports the first invalid field.
func (r Ranked) Validate() error {
	switch {
	case r.MinPlayers < 1:
		return errors.New("min players must be at least 1")
	case r.MaxAttempts < 1:
		return errors.New("max attempts must be at least 1")
	case r.Timeout <= 0:
		return errors.New("timeout must be positive")
	case r.KFactor <= 0:
		return errors.New("k factor must be positive")
	case r.LeaderboardMaxLimit < 1:
		return errors.New("leaderboard max limit must be at least 1")
	case r.ResolveInterval <= 0 || r.SeasonCheckInterval <= 0:
		return errors.New("scheduler intervals must be positive")
	case r.ArchiveSize < 1:
		return errors.New("archive size must be at least 1")
	}
	return nil
}

// Archive is the Cloudflare R2 bucket that receives season standings.
type Archive struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled is true when enough is configured to reach the bucket.
func (a Archive) Enabled() bool {
	return a.AccountID != "" && a.AccessKeyID != "" && a.AccessKeySecret != "" && a.Bucket != ""
}

type Config struct {
	DatabaseURL         string
	Port                string
	AdminSecret         string
	AllowedOrigins      []string
	KafkaBrokers        []string
	KafkaTopic          string
	Archive             Archive
	ArchivePollInterval time.Duration
	Ranked              Ranked
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getEnv("PORT", "5200"),
		AdminSecret: os.Getenv("ADMIN_SECRET"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "ranked-events"),
		Archive: Archive{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
		Ranked: DefaultRanked(),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable not set")
	}
	if cfg.AdminSecret == "" {
		return nil, errors.New("ADMIN_SECRET environment variable not set")
	}

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))

	var err error
	if cfg.ArchivePollInterval, err = durationEnv("ARCHIVE_POLL_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}

	r := &cfg.Ranked
	if r.MinPlayers, err = intEnv("RANKED_MIN_PLAYERS", r.MinPlayers); err != nil {
		return nil, err
	}
	if r.MaxAttempts, err = intEnv("RANKED_MAX_ATTEMPTS", r.MaxAttempts); err != nil {
		return nil, err
	}
	if r.Timeout, err = durationEnv("RANKED_TIMEOUT", r.Timeout); err != nil {
		return nil, err
	}
	if r.KFactor, err = floatEnv("RANKED_K_FACTOR", r.KFactor); err != nil {
		return nil, err
	}
	if r.DefaultElo, err = intEnv("RANKED_DEFAULT_ELO", r.DefaultElo); err != nil {
		return nil, err
	}
	if r.LeaderboardMaxLimit, err = intEnv("RANKED_LEADERBOARD_MAX_LIMIT", r.LeaderboardMaxLimit); err != nil {
		return nil, err
	}
	if r.ResolveInterval, err = durationEnv("RANKED_RESOLVE_INTERVAL", r.ResolveInterval); err != nil {
		return nil, err
	}
	if r.SeasonCheckInterval, err = durationEnv("RANKED_SEASON_INTERVAL", r.SeasonCheckInterval); err != nil {
		return nil, err
	}
	if r.ResolveOnRead, err = boolEnv("RANKED_RESOLVE_ON_READ", r.ResolveOnRead); err != nil {
		return nil, err
	}
	if r.ArchiveSize, err = intEnv("RANKED_ARCHIVE_SIZE", r.ArchiveSize); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranked configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
