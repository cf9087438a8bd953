package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

func newAggregateCommand(a *app) *cobra.Command {
	var (
		flags     pageFlags
		level     string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute word, line and region text from a finer level",
		Long: `Recompute the text of every level above --level by concatenating the text
of its children, honoring reading direction, line order, reading order and
join relations. Confidences are averaged.

Without --overwrite existing non-empty text is kept.

Example:
  pagealign aggregate --page p.yaml --level glyph --overwrite --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := layout.ParseKind(level)
			if err != nil {
				return err
			}
			pages, err := flags.load(false)
			if err != nil {
				return err
			}
			p, err := pipeline.NewBuilder().
				WithConfig(a.cfg.ToPipelineConfig()).
				WithAggregation(textequiv.Options{Level: kind, Overwrite: overwrite}).
				Build()
			if err != nil {
				return err
			}
			if err := process(cmd, p, a.cfg, pages); err != nil {
				return err
			}
			return writePages(cmd.OutOrStdout(), a.cfg, &flags, pages)
		},
	}

	flags.register(cmd, a, false)
	cmd.Flags().StringVar(&level, "level", "glyph", "finest level holding text (region, line, word, glyph)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing non-empty text")
	return cmd
}
