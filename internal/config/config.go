// Package config loads process settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the API process needs at startup. All values
// come from TALENTBASE_* environment variables.
type Settings struct {
	Addr        string        // listen address
	PGDSN       string        // empty means in-memory store
	TokenSecret string        // HS256 signing secret, required
	TokenIssuer string        // iss claim on issued tokens
	TokenTTL    time.Duration // access token lifetime
	UploadDir   string        // CV storage root
	RateLimit   float64       // requests per second per client, 0 disables
	RateBurst   int
}

// Load reads a .env file if present and then the environment. It fails when
// the token secret is missing, everything else has a sane default.
func Load() (Settings, error) {
	_ = godotenv.Load()

	s := Settings{
		Addr:        getenv("TALENTBASE_ADDR", ":8080"),
		PGDSN:       os.Getenv("TALENTBASE_PG_DSN"),
		TokenSecret: os.Getenv("TALENTBASE_TOKEN_SECRET"),
		TokenIssuer: getenv("TALENTBASE_TOKEN_ISSUER", "talentbase"),
		TokenTTL:    30 * time.Minute,
		UploadDir:   getenv("TALENTBASE_UPLOAD_DIR", "uploads"),
		RateLimit:   0,
		RateBurst:   20,
	}

	if raw := os.Getenv("TALENTBASE_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Settings{}, fmt.Errorf("config: invalid TALENTBASE_TOKEN_TTL %q", raw)
		}
		s.TokenTTL = ttl
	}
	if raw := os.Getenv("TALENTBASE_RATE_LIMIT"); raw != "" {
		limit, err := strconv.ParseFloat(raw, 64)
		if err != nil || limit < 0 {
			return Settings{}, fmt.Errorf("config: invalid TALENTBASE_RATE_LIMIT %q", raw)
		}
		s.RateLimit = limit
	}
	if raw := os.Getenv("TALENTBASE_RATE_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return Settings{}, fmt.Errorf("config: invalid TALENTBASE_RATE_BURST %q", raw)
		}
		s.RateBurst = burst
	}

	if s.TokenSecret == "" {
		return Settings{}, fmt.Errorf("config: TALENTBASE_TOKEN_SECRET is required")
	}
	return s, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
