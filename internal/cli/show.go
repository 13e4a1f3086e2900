package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/listing"
)

var showCmd = &cobra.Command{
	Use:   "show <image-id|annotations.json>",
	Short: "Print an image's annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List images that have stored annotations",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	showCmd.Flags().Bool("json", false, "print the stored document as highlighted JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, listing.Render(listing.HighlightJSON(string(data))))
		return nil
	}

	fmt.Fprintln(out, strings.Join(listing.Summary(doc), "\n"))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	ids, err := repo.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No annotated images.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
