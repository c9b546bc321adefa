package types

// PagetextConfig holds settings for the page-text extraction stage.
type PagetextConfig struct {
	// Tool is the pdftotext binary name or path (default "pdftotext").
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// ContainerImage is the poppler image used when no local binary is on
	// PATH (e.g. "docker.io/minidocks/poppler").
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`

	// OutDir is the directory for extracted .txt and .chunks.yaml artifacts.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// ChunkSize is the target chunk length in characters (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`
}

// ParseConfig holds settings for the extraction pipeline.
type ParseConfig struct {
	// SegmentThreshold is the minimum question-marker yield before the
	// segmenter falls back to the next recognizer (default 10).
	SegmentThreshold int `json:"segment_threshold" yaml:"segment_threshold" mapstructure:"segment_threshold"`

	// OutDir is the directory for per-document parse artifacts.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the database file location (default "data/exam.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	// Level is the minimum severity: debug, info, warn, or error.
	// Unrecognized values fall back to info.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects the encoder: "json" or "console" (default json).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Pagetext PagetextConfig `json:"pagetext" yaml:"pagetext" mapstructure:"pagetext"`
	Parse    ParseConfig    `json:"parse" yaml:"parse" mapstructure:"parse"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Pagetext: PagetextConfig{
			Tool:           "pdftotext",
			ContainerImage: "docker.io/minidocks/poppler",
			OutDir:         "data/pagetext",
			ChunkSize:      500,
		},
		Parse: ParseConfig{
			SegmentThreshold: 10,
			OutDir:           "data/parsed",
		},
		Store: StoreConfig{
			Path: "data/exam.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
