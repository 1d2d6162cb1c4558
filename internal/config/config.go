package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Camera    CameraConfig    `yaml:"camera"`
	Matching  MatchingConfig  `yaml:"matching"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Database  DatabaseConfig  `yaml:"database"`
	Web       WebConfig       `yaml:"web"`
}

type StorageConfig struct {
	FacesDir       string `yaml:"facesDir"`       // one subdirectory per known person
	AttendanceFile string `yaml:"attendanceFile"` // CSV ledger
	EmbeddingsFile string `yaml:"embeddingsFile"` // gob encoded known-face table
	BackupDir      string `yaml:"backupDir"`      // parent directory for backup_<timestamp>
}

type CameraConfig struct {
	Device      int    `yaml:"device"`
	CascadePath string `yaml:"cascadePath"` // haarcascade_frontalface_default.xml
}

type MatchingConfig struct {
	Threshold     float64 `yaml:"threshold"`     // minimum cosine similarity for a match
	HNSWMinPeople int     `yaml:"hnswMinPeople"` // use the HNSW matcher at or above this table size
}

type EmbeddingConfig struct {
	Backend       string `yaml:"backend"`       // "http" or "dlib"
	URL           string `yaml:"url"`           // defaults to http://localhost:8000
	DlibModelsDir string `yaml:"dlibModelsDir"` // directory with the dlib .dat models
}

type DatabaseConfig struct {
	URL          string `yaml:"url"` // PostgreSQL connection URL (optional, file store otherwise)
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"` // CORS origins besides localhost
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a float in (0, 1].
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma separated environment variable, skipping empty items.
func envList(key string) []string {
	var items []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			FacesDir:       envString("FACES_DIR", "known_faces"),
			AttendanceFile: envString("ATTENDANCE_FILE", "attendance.csv"),
			EmbeddingsFile: envString("EMBEDDINGS_FILE", "embeddings.gob"),
			BackupDir:      envString("BACKUP_DIR", "."),
		},
		Camera: CameraConfig{
			Device:      envInt("CAMERA_DEVICE", 0),
			CascadePath: envString("CASCADE_PATH", "data/haarcascade_frontalface_default.xml"),
		},
		Matching: MatchingConfig{
			Threshold:     envFloat("MATCH_THRESHOLD", constants.DefaultMatchThreshold),
			HNSWMinPeople: envInt("HNSW_MIN_PEOPLE", 1000),
		},
		Embedding: EmbeddingConfig{
			Backend:       envString("EMBEDDING_BACKEND", "http"),
			URL:           os.Getenv("EMBEDDING_URL"),
			DlibModelsDir: envString("DLIB_MODELS_DIR", "models"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 5),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
	}
}

// LoadFile loads the environment configuration and overlays the YAML file at path.
// Keys missing from the file keep their environment (or default) values.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is given by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a YAML file may have set out of range.
func (c *Config) Validate() error {
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("matching threshold must be in (0, 1], got %v", c.Matching.Threshold)
	}
	switch c.Embedding.Backend {
	case "http", "dlib":
	default:
		return fmt.Errorf("unsupported embedding backend: %s", c.Embedding.Backend)
	}
	if c.Storage.FacesDir == "" || c.Storage.AttendanceFile == "" {
		return fmt.Errorf("storage paths must not be empty")
	}
	return nil
}
