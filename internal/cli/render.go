package cli

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/overlay"
)

var renderCmd = &cobra.Command{
	Use:   "render <image-id|annotations.json>",
	Short: "Render annotations to a PNG",
	Long: `Draw an image's annotations at native resolution and write a PNG.
With --image the overlay is composited onto the source image; with
--display the result is resampled to a display size.

Examples:
  medannot render chest-0042 -o overlay.png
  medannot render scan.json --image scan.png --display 800x600`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output file (default <image-id>.png)")
	renderCmd.Flags().String("image", "", "source image to draw under the annotations")
	renderCmd.Flags().Int("width", 0, "native width override")
	renderCmd.Flags().Int("height", 0, "native height override")
	renderCmd.Flags().String("display", "", "resample the result to WIDTHxHEIGHT")
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var base image.Image
	if path, _ := cmd.Flags().GetString("image"); path != "" {
		if base, err = decodeImage(path); err != nil {
			return err
		}
	}

	w, h := doc.Image.Width, doc.Image.Height
	if base != nil {
		w, h = base.Bounds().Dx(), base.Bounds().Dy()
	}
	if v, _ := cmd.Flags().GetInt("width"); v > 0 {
		w = v
	}
	if v, _ := cmd.Flags().GetInt("height"); v > 0 {
		h = v
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image size unknown; pass --width and --height or --image")
	}

	canvas := overlay.Render(editor.State{Shapes: doc.Annotations}, w, h)
	defer canvas.Close()
	if err := canvas.Err(); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	out := image.Image(overlay.Composite(base, canvas.Image()))
	if display, _ := cmd.Flags().GetString("display"); display != "" {
		size, err := parseSize(display)
		if err != nil {
			return err
		}
		out = overlay.Present(out, size)
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = doc.Image.ID + ".png"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d annotations)\n", path, len(doc.Annotations))
	return nil
}
