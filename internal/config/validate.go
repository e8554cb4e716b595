package config

import (
	"fmt"
	"strings"
)

// normalize expands and absolutizes every path field and fills missing
// values from defaults.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaults.Paths.DataDir
	}
	if strings.TrimSpace(c.Paths.AssetDir) == "" {
		c.Paths.AssetDir = defaults.Paths.AssetDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}

	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.AssetDir, &c.Paths.ExportDir, &c.Paths.LogDir} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Canvas.MaxImageDimension == 0 {
		c.Canvas.MaxImageDimension = defaults.Canvas.MaxImageDimension
	}
	if c.Canvas.DefaultItemFraction == 0 {
		c.Canvas.DefaultItemFraction = defaults.Canvas.DefaultItemFraction
	}
	if c.Canvas.FallbackItemWidth == 0 {
		c.Canvas.FallbackItemWidth = defaults.Canvas.FallbackItemWidth
	}
	if c.Canvas.FallbackItemHeight == 0 {
		c.Canvas.FallbackItemHeight = defaults.Canvas.FallbackItemHeight
	}
	if c.Canvas.JPEGQuality == 0 {
		c.Canvas.JPEGQuality = defaults.Canvas.JPEGQuality
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Canvas.MaxImageDimension < 64 {
		return fmt.Errorf("canvas max_image_dimension must be at least 64, got %d", c.Canvas.MaxImageDimension)
	}
	if c.Canvas.DefaultItemFraction <= 0 || c.Canvas.DefaultItemFraction > 1 {
		return fmt.Errorf("canvas default_item_fraction must be in (0, 1], got %v", c.Canvas.DefaultItemFraction)
	}
	if c.Canvas.FallbackItemWidth <= 0 || c.Canvas.FallbackItemHeight <= 0 {
		return fmt.Errorf("canvas fallback item size must be positive, got %vx%v",
			c.Canvas.FallbackItemWidth, c.Canvas.FallbackItemHeight)
	}
	if c.Canvas.JPEGQuality < 1 || c.Canvas.JPEGQuality > 100 {
		return fmt.Errorf("canvas jpeg_quality must be in [1, 100], got %d", c.Canvas.JPEGQuality)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
