package config

import (
	"errors"
	"fmt"

	"retroforge/internal/classify"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTool() error {
	if c.Tool.TimeoutSeconds > maxToolTimeoutSeconds {
		return fmt.Errorf("tool.timeout_seconds must be at most %d", maxToolTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateContent() error {
	if _, err := classify.ParseHandlingMode(c.Content.Mode); err != nil {
		return fmt.Errorf("content.mode: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return errors.New(`logging.format must be "auto", "console", or "json"`)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(`logging.level must be "debug", "info", "warn", or "error"`)
	}
	return nil
}

// ContentMode returns the parsed content handling mode. Validate guarantees
// it parses.
func (c *Config) ContentMode() classify.HandlingMode {
	mode, err := classify.ParseHandlingMode(c.Content.Mode)
	if err != nil {
		return classify.HandlingOmit
	}
	return mode
}
