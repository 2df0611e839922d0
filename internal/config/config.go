package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Organization is one billing tenant in the provider's system: a digest-auth
// key pair plus the opaque organization id it is scoped to.
type Organization struct {
	PublicKey  string
	PrivateKey string
	OrgID      string
}

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	AtlasBaseURL string
	HTTPTimeout  time.Duration

	Organizations []Organization

	WindowSize      int
	InsertBatchSize int
	SnapshotDir     string
	MigrateOnStart  bool

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "atlasbi"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		AtlasBaseURL: strings.TrimRight(getenv("ATLAS_BASE_URL", "https://cloud.mongodb.com/api/atlas/v1.0"), "/"),
		HTTPTimeout:  getenvDuration("ATLAS_HTTP_TIMEOUT", 30*time.Second),

		Organizations: loadOrganizations(),

		WindowSize:      getenvInt("SYNC_WINDOW_SIZE", 2),
		InsertBatchSize: getenvInt("SYNC_INSERT_BATCH_SIZE", 3000),
		SnapshotDir:     getenv("SNAPSHOT_DIR", "."),
		MigrateOnStart:  getenvBool("MIGRATE_ON_START", true),

		DBType:     getenv("DATABASE_TYPE", "mysql"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "3306"),
		DBName:     getenv("DATABASE_NAME", "mongodb"),
		DBUser:     getenv("DATABASE_USER", "root"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
	}

	return cfg
}

// Validate fails fast on credentials the pipelines cannot run without.
func (c Config) Validate() error {
	if len(c.Organizations) == 0 {
		return fmt.Errorf("no organizations configured: set ATLAS_PUBLIC_KEY, ATLAS_PRIVATE_KEY and ATLAS_ORG_ID")
	}
	for i, org := range c.Organizations {
		if org.PublicKey == "" || org.PrivateKey == "" || org.OrgID == "" {
			return fmt.Errorf("organization %d is incomplete: public key, private key and org id are all required", i+1)
		}
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("SYNC_WINDOW_SIZE must be positive, got %d", c.WindowSize)
	}
	if c.InsertBatchSize <= 0 {
		return fmt.Errorf("SYNC_INSERT_BATCH_SIZE must be positive, got %d", c.InsertBatchSize)
	}
	return nil
}

// loadOrganizations reads the numbered ATLAS_* credential triples:
// ATLAS_PUBLIC_KEY / ATLAS_PRIVATE_KEY / ATLAS_ORG_ID for the first
// organization, then the same names suffixed _2, _3 and so on. Reading stops
// at the first suffix for which none of the three variables is set.
func loadOrganizations() []Organization {
	var orgs []Organization
	for i := 1; ; i++ {
		suffix := ""
		if i > 1 {
			suffix = fmt.Sprintf("_%d", i)
		}
		org := Organization{
			PublicKey:  strings.TrimSpace(os.Getenv("ATLAS_PUBLIC_KEY" + suffix)),
			PrivateKey: strings.TrimSpace(os.Getenv("ATLAS_PRIVATE_KEY" + suffix)),
			OrgID:      strings.TrimSpace(os.Getenv("ATLAS_ORG_ID" + suffix)),
		}
		if org.PublicKey == "" && org.PrivateKey == "" && org.OrgID == "" {
			break
		}
		orgs = append(orgs, org)
	}
	return orgs
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
