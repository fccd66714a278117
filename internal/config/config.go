package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by the auditor
// and the migrator.
type Config struct {
	LogLevel     string   `yaml:"log_level"`
	Output       string   `yaml:"output"`
	OwnerID      int64    `yaml:"owner_id"`
	SourceTable  string   `yaml:"source_table"`
	SourceDSN    string   `yaml:"source_dsn"`
	IDSuffix     string   `yaml:"id_suffix"`
	IDLikeMinLen int      `yaml:"id_like_min_len"`
	URLSchemes   []string `yaml:"url_schemes"`
	Converter    string   `yaml:"converter"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		Output:       "text",
		OwnerID:      3,
		SourceTable:  "notes_note",
		IDSuffix:     ".md",
		IDLikeMinLen: 8,
		URLSchemes:   []string{"http", "https", "ftp"},
		Converter:    "auto",
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/mdnotes/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := Default()

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional
	_ = loadYAMLConfig(cfg)

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides cfg with MDNOTES_* environment variables.
func applyEnv(cfg *Config) error {
	if logLevel := os.Getenv("MDNOTES_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("MDNOTES_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if owner := os.Getenv("MDNOTES_OWNER_ID"); owner != "" {
		v, err := strconv.ParseInt(owner, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MDNOTES_OWNER_ID %q: %w", owner, err)
		}
		cfg.OwnerID = v
	}
	if table := os.Getenv("MDNOTES_SOURCE_TABLE"); table != "" {
		cfg.SourceTable = table
	}
	if dsn := getEnvOrFile("MDNOTES_SOURCE_DSN", "MDNOTES_SOURCE_DSN_FILE"); dsn != "" {
		cfg.SourceDSN = dsn
	}
	if suffix := os.Getenv("MDNOTES_ID_SUFFIX"); suffix != "" {
		cfg.IDSuffix = suffix
	}
	if minLen := os.Getenv("MDNOTES_ID_LIKE_MIN_LEN"); minLen != "" {
		v, err := strconv.Atoi(minLen)
		if err != nil {
			return fmt.Errorf("invalid MDNOTES_ID_LIKE_MIN_LEN %q: %w", minLen, err)
		}
		cfg.IDLikeMinLen = v
	}
	if schemes := os.Getenv("MDNOTES_URL_SCHEMES"); schemes != "" {
		cfg.URLSchemes = splitList(schemes)
	}
	if converter := os.Getenv("MDNOTES_CONVERTER"); converter != "" {
		cfg.Converter = converter
	}
	return nil
}

// loadYAMLConfig loads configuration from ~/.config/mdnotes/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "mdnotes", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
