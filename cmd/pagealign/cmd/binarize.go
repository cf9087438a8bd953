package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pagealign/internal/binarize"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
)

func newBinarizeCommand(a *app) *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "binarize",
		Short: "Record binarized images of pages, regions or lines",
		Long: `Crop the page image per segment, store a grayscale copy and reference it
as an alternative image of the segment.

Input images are taken as already binarized.

Example:
  pagealign binarize --page p.yaml --image p.png --level line -o out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := flags.load(true)
			if err != nil {
				return err
			}
			p, err := pipeline.NewBuilder().
				WithConfig(a.cfg.ToPipelineConfig()).
				WithBinarizer(oracle.PassthroughBinarizer{}).
				Build()
			if err != nil {
				return err
			}
			if err := process(cmd, p, a.cfg, pages); err != nil {
				return err
			}
			root := flags.outputDir
			if root == "" {
				root = "."
			}
			for _, pg := range pages {
				if err := binarize.Save(root, pg.Binarized); err != nil {
					return err
				}
			}
			return writePages(cmd.OutOrStdout(), a.cfg, &flags, pages)
		},
	}

	flags.register(cmd, a, true)
	cmd.Flags().String("level", binarize.LevelPage, "level of operation (page, region, line)")
	cmd.Flags().String("file-group", "OCR-D-BIN", "directory of the binarized images, relative to the output directory")
	a.bindOnRun(cmd, "binarize.level_of_operation", cmd.Flags().Lookup("level"))
	a.bindOnRun(cmd, "binarize.output_dir", cmd.Flags().Lookup("file-group"))
	return cmd
}
