package changelog

// Config holds the change log engine settings.
type Config struct {
	// ChunkSize is the number of input rows held in memory while disassembling.
	ChunkSize int `mapstructure:"chunk_size" default:"1000000"`
	// Workers bounds the number of prefixes assembled or compared at once.
	Workers int `mapstructure:"workers" default:"4"`
	// WorkDir receives the shard files of each run under a run-specific directory.
	WorkDir string `mapstructure:"work_dir" default:"data/tmp"`
	// ContentSeparator joins the descriptive fields of a row into its content string.
	ContentSeparator string `mapstructure:"content_separator" default:"|"`
	// KeepWorkDir leaves shard files on disk after the run (debugging only).
	KeepWorkDir bool `mapstructure:"keep_work_dir" default:"false"`
}
