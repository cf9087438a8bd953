package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pagealign/internal/binarize"
	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
	"github.com/MeKo-Tech/pagealign/internal/recognize"
	"github.com/MeKo-Tech/pagealign/internal/segment"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatText = "text"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	union := geometry.DefaultUnionOptions()
	seg := segment.DefaultOptions()
	rec := recognize.DefaultOptions()
	bin := binarize.DefaultOptions()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Geometry: GeometryConfig{
			TouchThreshold: union.TouchThreshold,
			TouchWeight:    union.TouchWeight,
			BridgeDivisor:  union.BridgeDivisor,
			MinClearance:   union.MinClearance,
		},
		Segment: SegmentConfig{
			LevelOfOperation: seg.LevelOfOperation,
			TextDirection:    seg.TextDirection,
			RegionMargin:     seg.RegionMargin,
			Zoom:             seg.Zoom,
			TextRegionTypes:  []string{},
		},
		Recognize: RecognizeConfig{
			OverwriteText: rec.OverwriteText,
			NormalizeNFC:  rec.NormalizeNFC,
		},
		Binarize: BinarizeConfig{
			LevelOfOperation: bin.LevelOfOperation,
			OutputDir:        bin.OutputDir,
		},
		Parallel: ParallelConfig{
			MaxWorkers: pipeline.DefaultParallelConfig().MaxWorkers,
		},
		Output: OutputConfig{
			Format: FormatYAML,
		},
	}
}

// Validate validates the configuration and returns the first problem found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{FormatYAML, FormatText}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if err := validateEnum(c.Segment.LevelOfOperation, "segment.level_of_operation",
		segment.LevelPage, segment.LevelRegion); err != nil {
		return err
	}
	if err := validateEnum(c.Segment.TextDirection, "segment.text_direction",
		"horizontal-lr", "horizontal-rl", "vertical-lr", "vertical-rl"); err != nil {
		return err
	}
	if err := validateEnum(c.Binarize.LevelOfOperation, "binarize.level_of_operation",
		binarize.LevelPage, binarize.LevelRegion, binarize.LevelLine); err != nil {
		return err
	}

	if c.Segment.Zoom <= 0 {
		return fmt.Errorf("invalid segment.zoom: %.2f (must be positive)", c.Segment.Zoom)
	}
	if c.Segment.RegionMargin < 0 {
		return fmt.Errorf("invalid segment.region_margin: %.2f (must not be negative)", c.Segment.RegionMargin)
	}
	if c.Geometry.BridgeDivisor <= 0 {
		return fmt.Errorf("invalid geometry.bridge_divisor: %.2f (must be positive)", c.Geometry.BridgeDivisor)
	}
	if err := validateThreshold(c.Geometry.TouchWeight, "geometry.touch_weight"); err != nil {
		return err
	}
	if c.Geometry.TouchThreshold < 0 || c.Geometry.MinClearance < 0 {
		return fmt.Errorf("invalid geometry tolerances: touch_threshold %.2f, min_clearance %.2f (must not be negative)",
			c.Geometry.TouchThreshold, c.Geometry.MinClearance)
	}
	if c.Parallel.MaxWorkers <= 0 {
		return fmt.Errorf("invalid parallel max workers: %d (must be positive)", c.Parallel.MaxWorkers)
	}
	return nil
}

// ToPipelineConfig converts the config to the pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Geometry = c.toUnionOptions()
	cfg.Segment = c.toSegmentOptions()
	cfg.Recognize = c.toRecognizeOptions()
	cfg.Binarize = binarize.Options{
		LevelOfOperation: c.Binarize.LevelOfOperation,
		OutputDir:        c.Binarize.OutputDir,
	}
	cfg.Parallel.MaxWorkers = c.Parallel.MaxWorkers
	return cfg
}

func (c *Config) toUnionOptions() geometry.UnionOptions {
	return geometry.UnionOptions{
		TouchThreshold: c.Geometry.TouchThreshold,
		TouchWeight:    c.Geometry.TouchWeight,
		BridgeDivisor:  c.Geometry.BridgeDivisor,
		MinClearance:   c.Geometry.MinClearance,
	}
}

func (c *Config) toSegmentOptions() segment.Options {
	return segment.Options{
		LevelOfOperation: c.Segment.LevelOfOperation,
		TextDirection:    c.Segment.TextDirection,
		RegionMargin:     c.Segment.RegionMargin,
		Zoom:             c.Segment.Zoom,
		TextRegionTypes:  slices.Clone(c.Segment.TextRegionTypes),
	}
}

func (c *Config) toRecognizeOptions() recognize.Options {
	return recognize.Options{
		OverwriteText: c.Recognize.OverwriteText,
		NormalizeNFC:  c.Recognize.NormalizeNFC,
		Union:         c.toUnionOptions(),
	}
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}

func validateEnum(value, name string, valid ...string) error {
	if !slices.Contains(valid, value) {
		return fmt.Errorf("invalid %s: %s (must be one of: %s)", name, value, strings.Join(valid, ", "))
	}
	return nil
}
