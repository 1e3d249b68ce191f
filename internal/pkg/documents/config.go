package documents

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/evergreengarden/portal/internal/pkg/env"
)

// Config holds document storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads document storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "af-south-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("DOCUMENT_STORAGE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when document storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when document storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when document storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if document storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ProofObjectKey builds the object key for a proof-of-payment upload:
// pop/{customerID}/{invoiceID}/{timestamp}-{sanitized name}.
func ProofObjectKey(customerID uint, invoiceID string, fileName string, now time.Time) string {
	return fmt.Sprintf("pop/%d/%s/%d-%s", customerID, invoiceID, now.UnixMilli(), sanitizeFileName(fileName))
}

// sanitizeFileName keeps the base name and replaces anything that does not
// belong in an object key.
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "upload"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// GetBucketName returns the bucket name as configured
func (c *Config) GetBucketName() string {
	return c.BucketName
}
