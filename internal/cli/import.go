package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/convert"
	"github.com/sprite-ai/medannot/internal/persist"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import annotations from medannot, LabelMe or COCO files",
	Long: `Convert annotation files from other labeling tools and store them.
The format is detected from each file unless --format is given. COCO files
may hold many images; each becomes its own document.

Examples:
  medannot import scan-01.json
  medannot import --format coco instances_val.json
  medannot import --dry-run labelme/*.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("format", "", "input format: medannot, labelme, coco (default detect)")
	importCmd.Flags().Bool("dry-run", false, "report what would be stored without writing")
	importCmd.Flags().Bool("force", false, "overwrite images that already have annotations")
}

func runImport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	repo, err := openRepository()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	for _, path := range args {
		res, err := convert.LoadFile(path, convert.Format(format), convert.Options{Palette: cfg.Editor.Palette})
		if err != nil {
			return err
		}
		for _, doc := range res.Documents {
			if err := persist.ValidateID(doc.Image.ID); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !force {
				if _, err := repo.Load(cmd.Context(), doc.Image.ID); err == nil {
					fmt.Fprintf(out, "skip %s: already annotated (use --force)\n", doc.Image.ID)
					continue
				}
			}
			if dryRun {
				fmt.Fprintf(out, "would store %s: %d annotations\n", doc.Image.ID, len(doc.Annotations))
				continue
			}
			saved, err := repo.SaveAnnotations(cmd.Context(), doc.Image, doc.Annotations)
			if err != nil {
				return fmt.Errorf("storing %s: %w", doc.Image.ID, err)
			}
			fmt.Fprintf(out, "stored %s: %d annotations\n", doc.Image.ID, saved.AnnotationCount)
		}
		if res.Skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d %s shapes had no equivalent and were skipped\n", path, res.Skipped, res.Format)
		}
	}
	return nil
}
