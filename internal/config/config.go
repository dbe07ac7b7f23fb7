// Package config defines bot configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Token is the Discord bot token. Usually supplied via the
	// CATBOT_TOKEN environment variable or a .env file next to the binary.
	Token string `koanf:"token"`

	// GuildID scopes slash-command registration to one guild. Empty
	// registers the commands globally.
	GuildID string `koanf:"guild_id"`

	// EventMasterRole is the ID of the role allowed to register events.
	EventMasterRole string `koanf:"event_master_role"`

	// CredentialsFile points at the Google service account JSON file.
	CredentialsFile string `koanf:"credentials_file"`

	// SpreadsheetName names the backing spreadsheet, created when absent.
	SpreadsheetName string `koanf:"spreadsheet_name"`

	// Writers lists emails granted write access when the spreadsheet is
	// first created.
	Writers []string `koanf:"writers"`

	// MetricsAddr configures the Prometheus listen address, e.g. ":9091".
	// Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		CredentialsFile: ".service_account.json",
		SpreadsheetName: "EventSheet",
		MetricsAddr:     ":9091",
	}
}
