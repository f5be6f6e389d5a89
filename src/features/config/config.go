package config

import "github.com/contre95/downsort/src/catalog"

// Config holds the application configuration.
type Config struct {
	Root       string             `yaml:"root" toml:"root" json:"root" validate:"required"`
	Fallback   string             `yaml:"fallback" toml:"fallback" json:"fallback"`
	Categories []catalog.Category `yaml:"categories" toml:"categories" json:"categories" validate:"dive"`
	Organize   Organize           `yaml:"organize" toml:"organize" json:"organize"`
	Watch      Watch              `yaml:"watch" toml:"watch" json:"watch"`
	Logger     Logger             `yaml:"logger" toml:"logger" json:"logger"`
	Server     Server             `yaml:"server" toml:"server" json:"server"`
	History    History            `yaml:"history" toml:"history" json:"history"`
	Jobs       Jobs               `yaml:"jobs" toml:"jobs" json:"jobs"`
	Telegram   Telegram           `yaml:"telegram" toml:"telegram" json:"telegram"`
}

// Organize controls how files are placed into category folders.
type Organize struct {
	Collision string `yaml:"collision" toml:"collision" json:"collision" validate:"oneof=rename skip"` // "rename" or "skip"
}

// Watch holds the filesystem watcher settings.
type Watch struct {
	Enabled          bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	Recursive        bool     `yaml:"recursive" toml:"recursive" json:"recursive"`
	ReclassifySorted bool     `yaml:"reclassify_sorted" toml:"reclassify_sorted" json:"reclassify_sorted"`
	DebounceMs       int      `yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" validate:"gte=0,lte=600000"`
	Workers          int      `yaml:"workers" toml:"workers" json:"workers" validate:"gte=1,lte=64"`
	Ignore           []string `yaml:"ignore" toml:"ignore" json:"ignore"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Level  string `yaml:"level" toml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" json:"format" validate:"omitempty,oneof=text logfmt json"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	PrintRoutes bool   `yaml:"show_routes" toml:"show_routes" json:"show_routes"`
	Port        uint32 `yaml:"port" toml:"port" json:"port" validate:"lte=65535"`
}

// History holds the configuration for the move history database
type History struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Path    string `yaml:"path" toml:"path" json:"path" validate:"required_if=Enabled true"`
}

type Jobs struct {
	Log      bool          `yaml:"log" toml:"log" json:"log"`
	LogPath  string        `yaml:"log_path" toml:"log_path" json:"log_path"`
	Webhooks WebhookConfig `yaml:"webhooks" toml:"webhooks" json:"webhooks"`
}

type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	JobTypes []string `yaml:"job_types" toml:"job_types" json:"job_types"`
	Command  string   `yaml:"command" toml:"command" json:"command"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	Token        string   `yaml:"token" toml:"token" json:"token" validate:"required_if=Enabled true"`
	AllowedUsers []string `yaml:"allowedUsers" toml:"allowed_users" json:"allowed_users"`
	BotHandle    string   `yaml:"bot_handle" toml:"bot_handle" json:"bot_handle"`
}

// Table builds the category table described by the configuration.
func (c *Config) Table() (*catalog.Table, error) {
	if len(c.Categories) == 0 {
		return catalog.NewTable(catalog.DefaultCategories(), c.Fallback)
	}
	return catalog.NewTable(c.Categories, c.Fallback)
}
