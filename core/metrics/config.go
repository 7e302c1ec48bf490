package metrics

// Config holds configuration for metrics export.
type Config struct {
	// PushURL is the Pushgateway URL batch commands push to on exit. Empty disables pushing.
	PushURL string `mapstructure:"push_url" default:""`
	// Job is the Pushgateway job label.
	Job string `mapstructure:"job" default:"gar-builder"`
}
