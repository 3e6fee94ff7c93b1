package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for groundcms.
type Config struct {
	ListenAddr  string `toml:"listen_addr"`
	Environment string `toml:"environment"` // "development" or "production"
	LogDir      string `toml:"log_dir"`

	Admin   AdminConfig   `toml:"admin"`
	Storage StorageConfig `toml:"storage"`
	Blob    BlobConfig    `toml:"blob"`
}

// AdminConfig holds the single operational admin credential.
// Password may be plaintext or a bcrypt hash (generated with
// `groundcms hash-password`); a "$2" prefix selects bcrypt comparison.
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// StorageConfig represents configuration for the key-value storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "filesystem", "redis", or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	DataDir string `toml:"data_dir,omitempty"`

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
}

// BlobConfig represents configuration for the image blob backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	UploadsDir string `toml:"uploads_dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket      string `toml:"s3_bucket,omitempty"`
	S3Region      string `toml:"s3_region,omitempty"`
	S3Endpoint    string `toml:"s3_endpoint,omitempty"` // optional, for MinIO-compatible stores
	S3AccessKey   string `toml:"s3_access_key,omitempty"`
	S3SecretKey   string `toml:"s3_secret_key,omitempty"`
	PublicBaseURL string `toml:"public_base_url,omitempty"`
}

// NewConfig creates a new Config with development defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ListenAddr:  ":8080",
		Environment: "development",
		LogDir:      filepath.Join(baseDir, "log"),
		Admin: AdminConfig{
			Username: "admin",
		},
		Storage: StorageConfig{
			Type:    "filesystem",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Blob: BlobConfig{
			Type:       "filesystem",
			UploadsDir: filepath.Join(baseDir, "uploads"),
		},
	}
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ApplyEnv overlays environment variables onto the config. Secrets are
// expected via environment in hosted deployments rather than the config
// file. Presence of KV_URL switches storage to the hosted redis backend;
// presence of S3_BUCKET switches blobs to s3.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("KV_URL"); v != "" {
		c.Storage.Type = "redis"
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("KV_TOKEN"); v != "" {
		c.Storage.RedisPassword = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Blob.Type = "s3"
		c.Blob.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		c.Blob.S3Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.Blob.S3Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.Blob.S3AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.Blob.S3SecretKey = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.Blob.PublicBaseURL = v
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
