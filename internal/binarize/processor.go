// Package binarize produces binarized images of a page, its text regions or
// its text lines and references them from the layout.
package binarize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/utils"
)

// Levels of operation.
const (
	LevelPage   = "page"
	LevelRegion = "region"
	LevelLine   = "line"
)

// Feature is appended to the comments of every produced alternative image.
const Feature = "binarized"

// Options configures a Processor.
type Options struct {
	LevelOfOperation string `mapstructure:"level_of_operation" yaml:"level_of_operation" json:"level_of_operation"`
	// OutputDir is the directory recorded in alternative image file names.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
}

// DefaultOptions binarizes whole pages into the "OCR-D-BIN" directory.
func DefaultOptions() Options {
	return Options{LevelOfOperation: LevelPage, OutputDir: "OCR-D-BIN"}
}

// Image is one produced image together with the file name it is referenced by.
type Image struct {
	ElementID string
	Path      string
	Image     image.Image
}

// Processor binarizes page images through a Binarizer.
type Processor struct {
	Binarizer oracle.Binarizer
	Options   Options
}

// NewProcessor creates a binarization processor.
func NewProcessor(b oracle.Binarizer, opts Options) *Processor {
	return &Processor{Binarizer: b, Options: opts}
}

type target struct {
	element *layout.Element
	name    string
	rect    image.Rectangle
}

// Process binarizes the selected segments of page and records an alternative
// image on each. fileID names the output files. The page is only modified
// after every segment was binarized.
func (p *Processor) Process(ctx context.Context, page *layout.Page, img image.Image, fileID string) ([]Image, error) {
	if p.Binarizer == nil {
		return nil, errors.New("binarizer not configured")
	}
	targets, err := p.targets(page, img.Bounds())
	if err != nil {
		return nil, err
	}

	out := make([]Image, 0, len(targets))
	for _, t := range targets {
		src := img
		if t.element != nil {
			src = utils.CropImageRect(img, t.rect)
		}
		bin, err := p.Binarizer.Binarize(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("binarization of %s failed: %w", describe(t), err)
		}
		if err := utils.CheckSameSize("binarize", src, bin); err != nil {
			return nil, fmt.Errorf("binarization of %s: %w", describe(t), err)
		}
		id := fileID
		if t.name != "" {
			id += "_" + t.name
		}
		out = append(out, Image{
			Path:  filepath.Join(p.Options.OutputDir, id+".IMG-BIN.png"),
			Image: utils.Grayscale(bin),
		})
		if t.element != nil {
			out[len(out)-1].ElementID = t.element.ID
		}
		slog.Debug("Binarized segment", "segment", describe(t))
	}

	for i, t := range targets {
		if t.element == nil {
			page.AlternativeImages = appendFeature(page.AlternativeImages, out[i].Path)
			continue
		}
		t.element.AlternativeImages = appendFeature(t.element.AlternativeImages, out[i].Path)
	}
	slog.Info("Binarized page", "image", page.ImageFilename, "level", p.level(), "images", len(out))
	return out, nil
}

func (p *Processor) level() string {
	if p.Options.LevelOfOperation == "" {
		return LevelPage
	}
	return p.Options.LevelOfOperation
}

func (p *Processor) targets(page *layout.Page, bounds image.Rectangle) ([]target, error) {
	switch p.level() {
	case LevelPage:
		return []target{{rect: bounds}}, nil
	case LevelRegion, LevelLine:
	default:
		return nil, fmt.Errorf("invalid level of operation %q", p.Options.LevelOfOperation)
	}

	var out []target
	add := func(e *layout.Element, name string) {
		if len(e.Coords) == 0 {
			slog.Warn("Skipping segment without coordinates", "segment", e.ID)
			return
		}
		r := utils.BoxToRect(e.Coords.Bounds(), bounds)
		if r.Empty() {
			slog.Warn("Skipping segment outside the image", "segment", e.ID)
			return
		}
		out = append(out, target{element: e, name: name, rect: r})
	}
	for _, region := range page.TextRegions() {
		if p.level() == LevelRegion {
			add(region, region.ID)
			continue
		}
		for _, line := range page.Children(region.ID) {
			if line.Kind == layout.KindLine {
				add(line, region.ID+"_"+line.ID)
			}
		}
	}
	return out, nil
}

func describe(t target) string {
	if t.element == nil {
		return "page"
	}
	return fmt.Sprintf("%s %q", t.element.Kind, t.element.ID)
}

// appendFeature references path and chains the binarized feature onto the
// features of the latest existing image.
func appendFeature(images []layout.AlternativeImage, path string) []layout.AlternativeImage {
	comments := Feature
	if n := len(images); n > 0 && images[n-1].Comments != "" {
		comments = images[n-1].Comments + "," + Feature
	}
	return append(images, layout.AlternativeImage{Filename: path, Comments: comments})
}

// Save writes every image as PNG below root.
func Save(root string, images []Image) error {
	for _, im := range images {
		if err := utils.SavePNG(filepath.Join(root, im.Path), im.Image); err != nil {
			return fmt.Errorf("failed to save %s: %w", im.Path, err)
		}
	}
	return nil
}
