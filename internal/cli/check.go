package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/analysis"
	"github.com/sprite-ai/medannot/internal/persist"
)

var checkCmd = &cobra.Command{
	Use:   "check <image-id|annotations.json>...",
	Short: "Validate stored annotations (non-interactive)",
	Long: `Run validation passes over one or more annotation documents and print
a report. With no arguments every image in the store is checked.

Exit codes:
  0 - clean, or informational findings only
  1 - warnings found
  2 - errors found`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown")
	checkCmd.Flags().StringSlice("skip", nil, "passes to skip: identity, geometry, bounds, overlap, style")
}

type checkedDoc struct {
	doc     persist.Document
	results *analysis.Results
}

func runCheck(cmd *cobra.Command, args []string) error {
	skip, _ := cmd.Flags().GetStringSlice("skip")

	if len(args) == 0 {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if args, err = repo.List(cmd.Context()); err != nil {
			return err
		}
	}

	var checked []checkedDoc
	worst := analysis.SeverityInfo
	for _, arg := range args {
		doc, err := loadDocument(cmd.Context(), arg)
		if err != nil {
			return err
		}
		r := analysis.Run(doc, skip)
		worst = max(worst, r.MaxSeverity())
		checked = append(checked, checkedDoc{doc: doc, results: r})
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	var err error
	switch format {
	case "json":
		err = outputJSON(out, checked)
	case "markdown":
		err = outputMarkdown(out, checked)
	default:
		err = outputText(out, checked)
	}
	if err != nil {
		return err
	}

	// Set exit code
	switch worst {
	case analysis.SeverityError:
		os.Exit(2)
	case analysis.SeverityWarning:
		os.Exit(1)
	}
	return nil
}

func outputText(w io.Writer, checked []checkedDoc) error {
	if len(checked) == 0 {
		fmt.Fprintln(w, "Nothing to check.")
		return nil
	}
	for _, c := range checked {
		fmt.Fprintf(w, "%s: %d annotation(s), %s\n", c.doc.Image.ID, len(c.doc.Annotations), c.results.Summary())
		for _, f := range c.results.Findings {
			fmt.Fprintf(w, "  %s %s\n", severityIcon(f.Severity), f)
		}
	}
	return nil
}

func outputJSON(w io.Writer, checked []checkedDoc) error {
	type jsonDoc struct {
		Image    string             `json:"image"`
		Summary  string             `json:"summary"`
		Max      analysis.Severity  `json:"max_severity"`
		Findings []analysis.Finding `json:"findings"`
	}

	out := make([]jsonDoc, 0, len(checked))
	for _, c := range checked {
		findings := c.results.Findings
		if findings == nil {
			findings = []analysis.Finding{}
		}
		out = append(out, jsonDoc{
			Image:    c.doc.Image.ID,
			Summary:  c.results.Summary(),
			Max:      c.results.MaxSeverity(),
			Findings: findings,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputMarkdown(w io.Writer, checked []checkedDoc) error {
	fmt.Fprintln(w, "## Annotation check")
	fmt.Fprintln(w)
	for _, c := range checked {
		fmt.Fprintf(w, "### %s\n\n%s\n\n", c.doc.Image.ID, c.results.Summary())
		if len(c.results.Findings) == 0 {
			continue
		}
		fmt.Fprintln(w, "| | Pass | Shape | Message |")
		fmt.Fprintln(w, "|---|---|---|---|")
		for _, f := range c.results.Findings {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", severityIcon(f.Severity), f.Pass, f.ShapeID, f.Message)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func severityIcon(s analysis.Severity) string {
	switch s {
	case analysis.SeverityError:
		return "✗"
	case analysis.SeverityWarning:
		return "!"
	default:
		return "·"
	}
}
