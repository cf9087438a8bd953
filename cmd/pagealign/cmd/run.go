package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pagealign/internal/batch"
	"github.com/MeKo-Tech/pagealign/internal/config"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
	"github.com/MeKo-Tech/pagealign/internal/utils"
)

// pageFlags are the input and output flags shared by the page commands.
type pageFlags struct {
	pages     []string
	images    []string
	outputDir string
	discovery batch.Discovery
}

func (f *pageFlags) register(cmd *cobra.Command, a *app, withImages bool) {
	cmd.Flags().StringArrayVar(&f.pages, "page", nil, "page snapshot (YAML) or directory of snapshots, repeatable")
	cmd.Flags().BoolVarP(&f.discovery.Recursive, "recursive", "r", false, "search --page directories recursively")
	cmd.Flags().StringSliceVar(&f.discovery.Include, "include", batch.DefaultIncludePatterns,
		"file patterns selecting snapshots in --page directories")
	cmd.Flags().StringSliceVar(&f.discovery.Exclude, "exclude", nil,
		"file patterns excluded from --page directories")
	if withImages {
		cmd.Flags().StringArrayVar(&f.images, "image", nil,
			"page image, repeatable in --page order (default: the image named in the snapshot)")
		cmd.Flags().String("overlay-dir", "", "directory for layout overlay images")
		a.bindOnRun(cmd, "output.overlay_dir", cmd.Flags().Lookup("overlay-dir"))
	}
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "",
		"directory for updated snapshots (default: write pages to stdout)")
	_ = cmd.MarkFlagRequired("page")
}

// load reads every page snapshot and, when needImage is set, its image.
func (f *pageFlags) load(needImage bool) ([]*pipeline.Page, error) {
	pages, err := f.discovery.Discover(f.pages)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("no pages provided")
	}
	f.pages = pages
	if len(f.images) > 0 && len(f.images) != len(f.pages) {
		return nil, fmt.Errorf("got %d images for %d pages", len(f.images), len(f.pages))
	}

	seen := make(map[string]int)
	out := make([]*pipeline.Page, 0, len(f.pages))
	for i, path := range f.pages {
		lp, err := layout.LoadFile(path)
		if err != nil {
			return nil, err
		}
		pg := &pipeline.Page{FileID: fileID(path, seen), Layout: lp}
		if needImage {
			imgPath := filepath.Join(filepath.Dir(path), lp.ImageFilename)
			if len(f.images) > 0 {
				imgPath = f.images[i]
			}
			img, meta, err := utils.LoadImage(imgPath)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", path, err)
			}
			if meta.Width != lp.Width || meta.Height != lp.Height {
				slog.Warn("Image size differs from page size",
					"page", path, "image", imgPath,
					"page_size", fmt.Sprintf("%dx%d", lp.Width, lp.Height),
					"image_size", fmt.Sprintf("%dx%d", meta.Width, meta.Height))
			}
			pg.Image = img
		}
		out = append(out, pg)
	}
	return out, nil
}

// fileID derives a unique page id from the snapshot file name.
func fileID(path string, seen map[string]int) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	seen[base]++
	if n := seen[base]; n > 1 {
		return base + "_" + strconv.Itoa(n)
	}
	return base
}

// progressRedraw is the minimum time between two redraws of the progress bar.
const progressRedraw = 100 * time.Millisecond

// process runs p over pages with the configured worker count.
func process(cmd *cobra.Command, p *pipeline.Pipeline, cfg *config.Config, pages []*pipeline.Page) error {
	if len(pages) == 1 {
		return p.ProcessPage(cmd.Context(), pages[0])
	}
	parallel := p.Config().Parallel
	parallel.MaxWorkers = cfg.Parallel.MaxWorkers
	if cfg.Output.Progress {
		parallel.ProgressCallback = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), 0, progressRedraw)
	} else {
		parallel.ProgressCallback = pipeline.NewLogProgressCallback(slog.Default(), slog.LevelInfo)
	}
	parallel.ErrorHandler = func(_ int, pg *pipeline.Page, err error) {
		slog.Error("Page failed", "page", pg.FileID, "error", err)
	}
	stats, err := p.ProcessPagesParallel(cmd.Context(), pages, parallel)
	if stats != nil {
		slog.Info("Processed pages",
			"processed", stats.ProcessedPages,
			"failed", stats.FailedPages,
			"duration", stats.TotalDuration)
	}
	return err
}

// writePages stores the processed pages in the output directory, or prints
// them to w in the configured format.
func writePages(w io.Writer, cfg *config.Config, flags *pageFlags, pages []*pipeline.Page) error {
	if flags.outputDir != "" {
		if err := os.MkdirAll(flags.outputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for i, pg := range pages {
			path := filepath.Join(flags.outputDir, filepath.Base(flags.pages[i]))
			if err := layout.SaveFile(path, pg.Layout); err != nil {
				return err
			}
			slog.Info("Wrote page", "page", pg.FileID, "path", path)
		}
		return nil
	}

	for i, pg := range pages {
		if cfg.Output.Format == config.FormatText {
			if err := writeText(w, pg); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := layout.Encode(w, pg.Layout); err != nil {
			return err
		}
	}
	return nil
}

// writeText prints the text of every top-level region of the page.
func writeText(w io.Writer, pg *pipeline.Page) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", pg.FileID); err != nil {
		return err
	}
	for _, r := range pg.Layout.TopRegions() {
		if !r.IsText() || r.Text() == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", r.Text()); err != nil {
			return err
		}
	}
	return nil
}

// writeOverlays renders the layout of every page onto its image.
func writeOverlays(dir string, pages []*pipeline.Page) error {
	if dir == "" {
		return nil
	}
	for _, pg := range pages {
		if pg.Image == nil {
			continue
		}
		path := filepath.Join(dir, pg.FileID+".overlay.png")
		if err := utils.SavePNG(path, pipeline.RenderOverlay(pg.Image, pg.Layout)); err != nil {
			return fmt.Errorf("failed to write overlay for %s: %w", pg.FileID, err)
		}
	}
	return nil
}
