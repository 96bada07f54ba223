package config

import (
	"fmt"
	"strings"
	"time"
)

// APIClientConfig holds settings for the storefront's REST client.
type APIClientConfig struct {
	BaseURL        string        `koanf:"baseUrl"`
	Timeout        time.Duration `koanf:"timeout"`
	GalleryTimeout time.Duration `koanf:"galleryTimeout"`
}

// String returns a string representation of the API client configuration.
func (c *APIClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API Client ---\n")
	b.WriteString(fmt.Sprintf("  baseUrl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  galleryTimeout: %s\n", c.GalleryTimeout))
	return b.String()
}

func (c *APIClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("API base URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("API client timeout is not configured")
	}
	if c.GalleryTimeout <= 0 {
		return fmt.Errorf("gallery fetch timeout is not configured")
	}
	return nil
}
