//nolint:lll
package config

// Config represents the complete configuration of pagealign. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Geometry engine tunables
	Geometry GeometryConfig `mapstructure:"geometry" yaml:"geometry" json:"geometry"`

	// Processor settings
	Segment   SegmentConfig   `mapstructure:"segment" yaml:"segment" json:"segment"`
	Recognize RecognizeConfig `mapstructure:"recognize" yaml:"recognize" json:"recognize"`
	Binarize  BinarizeConfig  `mapstructure:"binarize" yaml:"binarize" json:"binarize"`

	// Parallel processing
	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// GeometryConfig contains polygon union tunables.
type GeometryConfig struct {
	TouchThreshold float64 `mapstructure:"touch_threshold" yaml:"touch_threshold" json:"touch_threshold"`
	TouchWeight    float64 `mapstructure:"touch_weight" yaml:"touch_weight" json:"touch_weight"`
	BridgeDivisor  float64 `mapstructure:"bridge_divisor" yaml:"bridge_divisor" json:"bridge_divisor"`
	MinClearance   float64 `mapstructure:"min_clearance" yaml:"min_clearance" json:"min_clearance"`
}

// SegmentConfig contains segmentation processor settings.
type SegmentConfig struct {
	LevelOfOperation string   `mapstructure:"level_of_operation" yaml:"level_of_operation" json:"level_of_operation"`
	TextDirection    string   `mapstructure:"text_direction" yaml:"text_direction" json:"text_direction"`
	RegionMargin     float64  `mapstructure:"region_margin" yaml:"region_margin" json:"region_margin"`
	Zoom             float64  `mapstructure:"zoom" yaml:"zoom" json:"zoom"`
	TextRegionTypes  []string `mapstructure:"text_region_types" yaml:"text_region_types" json:"text_region_types"`
}

// RecognizeConfig contains recognition processor settings.
type RecognizeConfig struct {
	OverwriteText bool `mapstructure:"overwrite_text" yaml:"overwrite_text" json:"overwrite_text"`
	NormalizeNFC  bool `mapstructure:"normalize_nfc" yaml:"normalize_nfc" json:"normalize_nfc"`
}

// BinarizeConfig contains binarization processor settings.
type BinarizeConfig struct {
	LevelOfOperation string `mapstructure:"level_of_operation" yaml:"level_of_operation" json:"level_of_operation"`
	OutputDir        string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
}

// ParallelConfig contains parallel processing settings.
type ParallelConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	Progress   bool   `mapstructure:"progress" yaml:"progress" json:"progress"`
}
