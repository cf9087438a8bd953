package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
)

func newSegmentCommand(a *app) *cobra.Command {
	var (
		flags         pageFlags
		segmentations []string
	)
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Replace the layout of pages with segmenter output",
		Long: `Attach recorded segmenter output to pages.

At page level all regions are replaced; every line is assigned to the first
text region containing it and lines outside every region get a region of
their own. At region level every text region without sub-regions is
segmented on its own and keeps all lines found in it.

--segmentation is repeatable, one file per --page. A file holds one YAML
document per segmenter call: one for page level, one per text region for
region level.

Examples:
  pagealign segment --page p.yaml --image p.png --segmentation seg.yaml
  pagealign segment --page p.yaml --segmentation seg.yaml --level region -o out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := flags.load(true)
			if err != nil {
				return err
			}
			if len(segmentations) != len(pages) {
				return fmt.Errorf("got %d segmentation files for %d pages", len(segmentations), len(pages))
			}
			segmenter := oracle.NewReplaySegmenter()
			for i, pg := range pages {
				docs, err := oracle.LoadSegmentations(segmentations[i])
				if err != nil {
					return err
				}
				segmenter.ForPage(pg.FileID, docs...)
			}

			p, err := pipeline.NewBuilder().
				WithConfig(a.cfg.ToPipelineConfig()).
				WithSegmenter(segmenter).
				Build()
			if err != nil {
				return err
			}
			if err := process(cmd, p, a.cfg, pages); err != nil {
				return err
			}
			if err := writeOverlays(a.cfg.Output.OverlayDir, pages); err != nil {
				return err
			}
			return writePages(cmd.OutOrStdout(), a.cfg, &flags, pages)
		},
	}

	flags.register(cmd, a, true)
	cmd.Flags().StringArrayVar(&segmentations, "segmentation", nil, "recorded segmenter output (YAML), repeatable")
	cmd.Flags().String("level", "page", "level of operation (page, region)")
	cmd.Flags().Float64("zoom", 1, "resolution factor of the segmenter input")
	cmd.Flags().String("text-direction", "horizontal-lr", "principal text direction")
	cmd.Flags().Float64("region-margin", 20, "containment tolerance in pixels at zoom 1")
	cmd.Flags().StringSlice("text-region-types", nil, "region types treated as text (default: text, paragraph, heading, ...)")
	a.bindOnRun(cmd, "segment.level_of_operation", cmd.Flags().Lookup("level"))
	a.bindOnRun(cmd, "segment.zoom", cmd.Flags().Lookup("zoom"))
	a.bindOnRun(cmd, "segment.text_direction", cmd.Flags().Lookup("text-direction"))
	a.bindOnRun(cmd, "segment.region_margin", cmd.Flags().Lookup("region-margin"))
	a.bindOnRun(cmd, "segment.text_region_types", cmd.Flags().Lookup("text-region-types"))
	_ = cmd.MarkFlagRequired("segmentation")
	return cmd
}
