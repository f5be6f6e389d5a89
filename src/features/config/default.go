package config

import "github.com/contre95/downsort/src/catalog"

const (
	DefaultConfigFile = "~/.config/downsort/config.yaml"
	defaultRoot       = "~/Downloads"
)

// DefaultIgnorePatterns are never organized: our own lock and temp files, and
// the partial files browsers write while a download is in flight.
func DefaultIgnorePatterns() []string {
	return []string{".downsort*", "*.part", "*.crdownload", "*.download"}
}

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Root:       defaultRoot,
		Fallback:   catalog.DefaultFallback,
		Categories: catalog.DefaultCategories(),
		Organize: Organize{
			Collision: "rename",
		},
		Watch: Watch{
			Enabled:          true,
			Recursive:        true,
			ReclassifySorted: false,
			DebounceMs:       500,
			Workers:          1,
			Ignore:           DefaultIgnorePatterns(),
		},
		Logger: Logger{
			Level:  "info",
			Format: "",
		},
		Server: Server{
			Enabled:     false,
			PrintRoutes: false,
			Port:        3536,
		},
		History: History{
			Enabled: true,
			Path:    "~/.local/share/downsort/history.db",
		},
		Jobs: Jobs{
			Log:     false,
			LogPath: "~/.local/state/downsort/jobs",
			Webhooks: WebhookConfig{
				Enabled:  false,
				JobTypes: []string{},
				Command:  "",
			},
		},
		Telegram: Telegram{
			Enabled:      false,
			Token:        "",                                   // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{"<your_telegram_username>"}, // No @
			BotHandle:    "@<YourTelegramUserBot>",             // With @
		},
	}
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	return createDefaultConfig()
}
