package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <image-id|annotations.json>",
	Short: "Export annotations as a PDF report",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default <image-id>.pdf)")
	exportCmd.Flags().String("image", "", "source image to place under the outlines")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = doc.Image.ID + ".pdf"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.PDF(f, doc, base); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
