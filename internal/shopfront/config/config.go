// Package config defines the configuration of the shopfront client.
package config

import (
	"fmt"
	"strings"

	"github.com/vinkj/autoshop/internal/platform/config"
	"github.com/vinkj/autoshop/internal/platform/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	API config.APIClientConfig `koanf:"api"`
	Log config.LogConfig       `koanf:"log"`

	Cart struct {
		// File holds the cart between runs.
		File string `koanf:"file"`
	} `koanf:"cart"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Shopfront Configuration ---\n")
	b.WriteString(fmt.Sprintf("  api.baseUrl: %s\n", c.API.BaseURL))
	b.WriteString(fmt.Sprintf("  api.timeout: %s\n", c.API.Timeout))
	b.WriteString(fmt.Sprintf("  api.galleryTimeout: %s\n", c.API.GalleryTimeout))
	b.WriteString(fmt.Sprintf("  cart.file: %s\n", c.Cart.File))
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.Cart.File == "" {
		return fmt.Errorf("cart file is not configured")
	}
	return nil
}
