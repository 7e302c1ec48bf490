package server

// Config holds the HTTP server settings of the serve command.
type Config struct {
	// Port is the listening port.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey protects every route except /health and /metrics. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
}
