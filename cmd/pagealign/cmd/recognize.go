package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/pipeline"
)

func newRecognizeCommand(a *app) *cobra.Command {
	var (
		flags   pageFlags
		records []string
	)
	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Attach recognizer output to the lines of pages",
		Long: `Attach recorded recognizer output to pages.

Every line gets a consistent baseline and boundary, then one record per line
is mapped to words and glyphs and the text of lines and regions is
recomputed.

--records is repeatable, one file per --page, holding one record per line
in document order.

Example:
  pagealign recognize --page p.yaml --image p.png --records rec.yaml --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := flags.load(true)
			if err != nil {
				return err
			}
			if len(records) != len(pages) {
				return fmt.Errorf("got %d record files for %d pages", len(records), len(pages))
			}
			recognizer := &oracle.ReplayRecognizer{Pages: make(map[string][]oracle.Record)}
			for i, pg := range pages {
				recs, err := oracle.LoadRecords(records[i])
				if err != nil {
					return err
				}
				recognizer.Pages[pg.FileID] = recs
			}

			p, err := pipeline.NewBuilder().
				WithConfig(a.cfg.ToPipelineConfig()).
				WithRecognizer(recognizer).
				Build()
			if err != nil {
				return err
			}
			if err := process(cmd, p, a.cfg, pages); err != nil {
				return err
			}
			for _, pg := range pages {
				if res := pg.Recognition; res != nil && len(res.Warnings) > 0 {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d of %d lines recognized\n",
						pg.FileID, res.Recognized, res.Submitted)
				}
			}
			if err := writeOverlays(a.cfg.Output.OverlayDir, pages); err != nil {
				return err
			}
			return writePages(cmd.OutOrStdout(), a.cfg, &flags, pages)
		},
	}

	flags.register(cmd, a, true)
	cmd.Flags().StringArrayVar(&records, "records", nil, "recorded recognizer output (YAML), repeatable")
	cmd.Flags().Bool("overwrite-text", true, "replace existing text of lines, words and regions")
	cmd.Flags().Bool("normalize-nfc", true, "normalize recognized text to Unicode NFC")
	a.bindOnRun(cmd, "recognize.overwrite_text", cmd.Flags().Lookup("overwrite-text"))
	a.bindOnRun(cmd, "recognize.normalize_nfc", cmd.Flags().Lookup("normalize-nfc"))
	_ = cmd.MarkFlagRequired("records")
	return cmd
}
