package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
)

const (
	// EnvStorageBasePath overrides the storage base path.
	EnvStorageBasePath = "STORAGE_BASE_PATH"

	// EnvStorageMaxUploadSize overrides the maximum upload size.
	EnvStorageMaxUploadSize = "STORAGE_MAX_UPLOAD_SIZE"

	// EnvStorageSigningSecret overrides the presigned URL signing secret.
	EnvStorageSigningSecret = "STORAGE_SIGNING_SECRET"

	// EnvStoragePublicURL overrides the public base URL for presigned links.
	EnvStoragePublicURL = "STORAGE_PUBLIC_URL"
)

// StorageConfig contains blob storage configuration.
type StorageConfig struct {
	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// PublicURL is the externally reachable base URL the presigned
	// blob links are rooted at, e.g. "http://localhost:8080/blobs".
	PublicURL string `toml:"public_url"`

	// SigningSecret keys the HMAC signatures on presigned URLs.
	SigningSecret string `toml:"signing_secret"`

	MaxUploadSize    string `toml:"max_upload_size"`
	PresignTTL       string `toml:"presign_ttl"`
	maxUploadSizeVal int64
}

// MaxUploadSizeBytes returns the parsed maximum upload size.
func (c *StorageConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// PresignTTLDuration parses and returns the presigned URL lifetime.
func (c *StorageConfig) PresignTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.PresignTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.SigningSecret != "" {
		c.SigningSecret = overlay.SigningSecret
	}
	if overlay.PresignTTL != "" {
		c.PresignTTL = overlay.PresignTTL
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:8080/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.PresignTTL == "" {
		c.PresignTTL = "15m"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStorageMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvStorageSigningSecret); v != "" {
		c.SigningSecret = v
	}
	if v := os.Getenv(EnvStoragePublicURL); v != "" {
		c.PublicURL = v
	}
}

func (c *StorageConfig) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}
	if c.SigningSecret == "" {
		return fmt.Errorf("signing_secret required")
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	if _, err := time.ParseDuration(c.PresignTTL); err != nil {
		return fmt.Errorf("invalid presign_ttl: %w", err)
	}

	return nil
}
