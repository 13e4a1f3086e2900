package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
	"github.com/sprite-ai/medannot/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <image-id>",
	Short: "Open the terminal annotation editor",
	Long: `Open an interactive editor for one image's annotations. Existing
annotations are loaded from the store; saving writes them back.

Examples:
  medannot edit chest-0042
  medannot edit new-scan --width 1024 --height 768
  medannot edit chest-0042 --backend http://annot.local:7420`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().Int("width", 0, "native image width in pixels (required for new images)")
	editCmd.Flags().Int("height", 0, "native image height in pixels (required for new images)")
	editCmd.Flags().String("label", "", "label for new shapes")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := persist.ValidateID(id); err != nil {
		return err
	}
	repo, err := openRepository()
	if err != nil {
		return err
	}

	img := model.ImageInfo{ID: id}
	img.Width, _ = cmd.Flags().GetInt("width")
	img.Height, _ = cmd.Flags().GetInt("height")

	var shapes []model.AnnotationShape
	doc, err := repo.Load(cmd.Context(), id)
	switch {
	case errors.Is(err, persist.ErrNotFound):
	case err != nil:
		return fmt.Errorf("loading %s: %w", id, err)
	default:
		shapes = doc.Annotations
		if img.Width == 0 || img.Height == 0 {
			img.Width, img.Height = doc.Image.Width, doc.Image.Height
		}
		img.Source = doc.Image.Source
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image %s has no stored size; pass --width and --height", id)
	}

	ed := editor.New(editorOptions()...)
	ed.Open(img, shapes)
	if label, _ := cmd.Flags().GetString("label"); label != "" {
		ed.SetLabel(label)
	}
	return tui.Run(ed, repo, cfg.Editor.Palette)
}
