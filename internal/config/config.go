package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the catalog service. Each field
// corresponds to an environment variable.
type Config struct {
	Env  string // application environment (dev, test, prod)
	Port string // HTTP port to listen on

	DB DBConfig

	// JWTSecret verifies access tokens minted by the external auth provider.
	JWTSecret string
	// AdminRole is the role claim value that grants admin privileges.
	AdminRole string

	Search SearchConfig
}

// DBConfig describes how to reach the relational database. DSN, when set,
// is used verbatim and the individual parts are ignored.
type DBConfig struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	DSN    string
}

// SearchConfig bounds the movie search path.
type SearchConfig struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

// LoadDotEnv reads a .env file into the process environment when one is
// present. Variables already set in the environment win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("config: could not load %s: %v", p, err)
		}
	}
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must(); a missing value terminates the process.
func Load() Config {
	driver := getenv("DB_DRIVER", "mysql")
	db := DBConfig{Driver: driver, DSN: os.Getenv("DB_DSN")}
	if db.DSN == "" {
		db.User = must("DB_USER")
		db.Pass = os.Getenv("DB_PASS")
		db.Host = must("DB_HOST")
		db.Port = must("DB_PORT")
		db.Name = must("DB_NAME")
	}
	return Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "8080"),
		DB:        db,
		JWTSecret: must("AUTH_JWT_SECRET"),
		AdminRole: getenv("AUTH_ADMIN_ROLE", "admin"),
		Search:    LoadSearchConfig(),
	}
}

// LoadSearchConfig reads the search timeout and page size bounds.
func LoadSearchConfig() SearchConfig {
	sc := SearchConfig{
		Timeout:      envDur("SEARCH_TIMEOUT", 5*time.Second),
		DefaultLimit: envInt("SEARCH_DEFAULT_LIMIT", 20),
		MaxLimit:     envInt("SEARCH_MAX_LIMIT", 100),
	}
	if sc.DefaultLimit < 1 {
		sc.DefaultLimit = 20
	}
	if sc.MaxLimit < sc.DefaultLimit {
		sc.MaxLimit = sc.DefaultLimit
	}
	return sc
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
