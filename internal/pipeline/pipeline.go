package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pagealign/internal/binarize"
	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/metrics"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/recognize"
	"github.com/MeKo-Tech/pagealign/internal/segment"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

// Config holds configuration for the page pipeline and its stages.
type Config struct {
	Geometry  geometry.UnionOptions
	Binarize  binarize.Options
	Segment   segment.Options
	Recognize recognize.Options
	Aggregate textequiv.Options

	// Parallel processing configuration
	Parallel ParallelConfig
}

// DefaultConfig returns a default pipeline config with stage defaults.
func DefaultConfig() Config {
	return Config{
		Geometry:  geometry.DefaultUnionOptions(),
		Binarize:  binarize.DefaultOptions(),
		Segment:   segment.DefaultOptions(),
		Recognize: recognize.DefaultOptions(),
		Aggregate: textequiv.DefaultOptions(),
		Parallel:  DefaultParallelConfig(),
	}
}

// Page is one unit of work. Stages read and update it in place.
type Page struct {
	FileID string
	Layout *layout.Page
	Image  image.Image

	Binarized    []binarize.Image
	Segmentation *segment.Result
	Recognition  *recognize.Result
	Updated      int
	Duration     time.Duration
}

type stage struct {
	name string
	run  func(ctx context.Context, pg *Page) error
}

// Pipeline runs its stages over pages: binarization, segmentation,
// recognition and text aggregation, each only when configured.
type Pipeline struct {
	cfg    Config
	stages []stage
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	binarizer  oracle.Binarizer
	segmenter  oracle.Segmenter
	recognizer oracle.Recognizer
	aggregate  bool
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithBinarizer enables the binarization stage.
func (b *Builder) WithBinarizer(bin oracle.Binarizer) *Builder {
	b.binarizer = bin
	return b
}

// WithSegmenter enables the segmentation stage.
func (b *Builder) WithSegmenter(seg oracle.Segmenter) *Builder {
	b.segmenter = seg
	return b
}

// WithRecognizer enables the recognition stage.
func (b *Builder) WithRecognizer(rec oracle.Recognizer) *Builder {
	b.recognizer = rec
	return b
}

// WithAggregation enables a final text aggregation stage with the given options.
func (b *Builder) WithAggregation(opts textequiv.Options) *Builder {
	b.cfg.Aggregate = opts
	b.aggregate = true
	return b
}

// WithMaxWorkers sets the number of pages processed concurrently.
func (b *Builder) WithMaxWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Parallel.MaxWorkers = n
	}
	return b
}

// Config returns the current builder configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build assembles the pipeline. At least one stage must be enabled.
func (b *Builder) Build() (*Pipeline, error) {
	p := &Pipeline{cfg: b.cfg}
	if b.binarizer != nil {
		proc := binarize.NewProcessor(b.binarizer, b.cfg.Binarize)
		p.stages = append(p.stages, stage{name: "binarize", run: func(ctx context.Context, pg *Page) error {
			images, err := proc.Process(ctx, pg.Layout, pg.Image, pg.FileID)
			if err != nil {
				return err
			}
			pg.Binarized = images
			for _, im := range images {
				if im.ElementID == "" {
					pg.Image = im.Image
				}
			}
			return nil
		}})
	}
	if b.segmenter != nil {
		proc := segment.NewProcessor(b.segmenter, b.cfg.Segment)
		p.stages = append(p.stages, stage{name: "segment", run: func(ctx context.Context, pg *Page) error {
			res, err := proc.Process(ctx, pg.Layout, pg.Image)
			pg.Segmentation = res
			return err
		}})
	}
	if b.recognizer != nil {
		opts := b.cfg.Recognize
		opts.Union = b.cfg.Geometry
		proc := recognize.NewProcessor(b.recognizer, opts)
		p.stages = append(p.stages, stage{name: "recognize", run: func(ctx context.Context, pg *Page) error {
			res, err := proc.Process(ctx, pg.Layout, pg.Image)
			pg.Recognition = res
			return err
		}})
	}
	if b.aggregate {
		opts := b.cfg.Aggregate
		p.stages = append(p.stages, stage{name: "aggregate", run: func(_ context.Context, pg *Page) error {
			pg.Updated = textequiv.Update(pg.Layout, opts)
			return nil
		}})
	}
	if len(p.stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Stages returns the names of the enabled stages in execution order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.name
	}
	return out
}

// ProcessPage runs every stage on the page. Processing stops at the first
// failing stage.
func (p *Pipeline) ProcessPage(ctx context.Context, pg *Page) (err error) {
	if pg == nil || pg.Layout == nil {
		return errors.New("page has no layout")
	}
	start := time.Now()
	defer func() {
		pg.Duration = time.Since(start)
		metrics.RecordPage(err, pg.Duration)
	}()

	ctx = oracle.WithPageID(ctx, pg.FileID)
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pg.Image == nil && s.name != "aggregate" {
			return fmt.Errorf("%s: page %s has no image", s.name, pg.FileID)
		}
		if err := s.run(ctx, pg); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		slog.Debug("Stage completed", "page", pg.FileID, "stage", s.name)
	}
	return nil
}
