// Package listing prints annotation documents for humans: a per-shape
// summary and a syntax-highlighted JSON dump.
package listing

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// Line is one output line split into colored tokens.
type Line struct {
	Tokens []Token
}

// Token is a highlighted chunk of text.
type Token struct {
	Text  string
	Color string // hex color, empty for default
}

// Plain returns the line without colors.
func (l Line) Plain() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HighlightJSON tokenises src with chroma's JSON lexer. It always returns
// one Line per input line.
func HighlightJSON(src string) []Line {
	lines := strings.Split(src, "\n")
	lexer := lexers.Get("json")
	if lexer == nil {
		return plainLines(lines)
	}
	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return plainLines(lines)
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	result := make([]Line, 0, len(lines))
	current := Line{}
	for _, token := range iterator.Tokens() {
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				result = append(result, current)
				current = Line{}
			}
			if part != "" {
				current.Tokens = append(current.Tokens, Token{Text: part, Color: tokenColor(style, token.Type)})
			}
		}
	}
	result = append(result, current)
	for len(result) < len(lines) {
		result = append(result, Line{})
	}
	return result[:len(lines)]
}

func plainLines(lines []string) []Line {
	result := make([]Line, len(lines))
	for i, line := range lines {
		result[i] = Line{Tokens: []Token{{Text: line}}}
	}
	return result
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}

// Render joins highlighted lines into terminal output.
func Render(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, t := range l.Tokens {
			if t.Color == "" {
				b.WriteString(t.Text)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(t.Text))
		}
	}
	return b.String()
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

// Summary returns a header plus one row per shape.
func Summary(doc persist.Document) []string {
	rows := []string{headerStyle.Render(fmt.Sprintf("%s  %dx%d  %d annotations",
		doc.Image.ID, doc.Image.Width, doc.Image.Height, len(doc.Annotations)))}
	for i, s := range doc.Annotations {
		rows = append(rows, fmt.Sprintf("%3d  %s  %-8s %s %s", i+1, swatch(s.Color), s.Type, describe(s), dimStyle.Render(s.Label)))
	}
	return rows
}

func swatch(color string) string {
	c := model.ResolveColor(color, model.DefaultColor)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(model.HexString(c))).Render("■")
}

func describe(s model.AnnotationShape) string {
	b, ok := s.Bounds()
	if !ok {
		return "(no geometry)"
	}
	geo := fmt.Sprintf("%.0f,%.0f %.0fx%.0f", b.X, b.Y, b.Width, b.Height)
	if s.BBox == nil {
		geo += fmt.Sprintf(" (%d pts)", len(s.Points))
	}
	return geo
}
