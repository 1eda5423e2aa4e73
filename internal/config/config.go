package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	UploadDir     string
	MigrationsDir string
	CSRFKey       []byte
	SessionKey    []byte
	CookieDomain  string
	CookieSecure  bool
	AdminEmail    string
	AdminPassword string
	LogLevel      slog.Level
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set env directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./jungle.db"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8080"
	}

	return cfg, nil
}

// loadKey decodes a base64 env key, or generates a random one for
// development. Generated keys change on restart, which invalidates sessions.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name + " not set, generating a random key. Set it in production.")
		return randomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name+" invalid or shorter than 32 bytes, generating a random key", "error", err)
		return randomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; give up early
		panic("config: cannot read random bytes: " + err.Error())
	}
	return b
}
