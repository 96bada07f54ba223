package config

import (
	"fmt"
	"strings"
	"time"
)

// DarajaConfig holds credentials for the Safaricom Daraja (M-Pesa) API.
type DarajaConfig struct {
	BaseURL        string        `koanf:"baseUrl"`
	ConsumerKey    string        `koanf:"consumerKey"`
	ConsumerSecret string        `koanf:"consumerSecret"`
	ShortCode      string        `koanf:"shortCode"`
	PassKey        string        `koanf:"passKey"`
	CallbackURL    string        `koanf:"callbackUrl"`
	Timeout        time.Duration `koanf:"timeout"`
}

// String returns a string representation of the Daraja configuration with secrets masked.
func (c *DarajaConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Daraja ---\n")
	b.WriteString(fmt.Sprintf("  baseUrl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  consumerKey: %s\n", mask(c.ConsumerKey)))
	b.WriteString(fmt.Sprintf("  shortCode: %s\n", c.ShortCode))
	b.WriteString(fmt.Sprintf("  callbackUrl: %s\n", c.CallbackURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

func (c *DarajaConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("daraja base URL is not configured")
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return fmt.Errorf("daraja consumer credentials are not configured")
	}
	if c.ShortCode == "" || c.PassKey == "" {
		return fmt.Errorf("daraja short code or pass key is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("daraja request timeout is not configured")
	}
	return nil
}
