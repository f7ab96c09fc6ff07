package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DBDriver string
	DBPath   string
	DBDSN    string

	AWSProfile       string
	AWSDefaultRegion string

	ServerPort  string
	CORSOrigins []string

	TopN          int
	TagGroupsFile string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// LoadConfig reads a .env file if one exists, then the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		klog.V(2).Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDriver: getEnv("DB_DRIVER", DriverSQLite),
		DBPath:   getEnv("DB_PATH", "ecr-repos.db"),
		DBDSN:    getEnv("DB_DSN", ""),

		AWSProfile:       getEnv("AWS_PROFILE", ""),
		AWSDefaultRegion: getEnv("AWS_DEFAULT_REGION", "us-east-1"),

		ServerPort:  getEnv("SERVER_PORT", "3000"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),

		TopN:          getEnvInt("TOP_N", 20),
		TagGroupsFile: getEnv("TAG_GROUPS_FILE", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "regscan-snapshots"),
	}
	cfg.MinioUseSSL, _ = strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		klog.Warningf("Ignoring invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
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
