package config

const (
	defaultDataDir            = "~/.local/share/montage"
	defaultAssetDir           = "~/.local/share/montage/assets"
	defaultExportDir          = "~/Pictures/montage"
	defaultLogDir             = "~/.local/share/montage/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMaxImageDimension  = 2048
	defaultItemFraction       = 0.6
	defaultFallbackItemWidth  = 200
	defaultFallbackItemHeight = 240
	defaultJPEGQuality        = 85
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			AssetDir:  defaultAssetDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
		},
		Canvas: Canvas{
			MaxImageDimension:   defaultMaxImageDimension,
			DefaultItemFraction: defaultItemFraction,
			FallbackItemWidth:   defaultFallbackItemWidth,
			FallbackItemHeight:  defaultFallbackItemHeight,
			JPEGQuality:         defaultJPEGQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
