package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds the runtime configuration. Every field maps to an
// environment variable; most have safe defaults, but the JWT secret is
// required and validated up front so a misconfigured deployment dies at
// startup instead of on the first login.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs, at least 32 characters
	JWTAlgorithm   string // HMAC algorithm: HS256, HS384 or HS512
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	PasswordMinLen int    // minimum accepted password length
	BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration from environment variables. The database
// variables and JWT_SECRET are required; everything else falls back to a
// validated default. A JWT secret shorter than 32 characters is fatal here
// even though the token issuer re-checks it, so the failure points at the
// configuration rather than at the auth wiring.
func Load() Config {
	cfg := Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		JWTAlgorithm:   getenv("JWT_ALGORITHM", "HS256"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		PasswordMinLen: envInt("PASSWORD_MIN_LENGTH", 8),
		BcryptCost:     envInt("BCRYPT_COST", 12),
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatalf("JWT_SECRET must be at least 32 characters, got %d", len(cfg.JWTSecret))
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
