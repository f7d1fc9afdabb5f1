// Package export renders blueprints as Markdown pitch decks, JSON or YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/presenter"
	"github.com/goccy/go-yaml"
)

// Format is an export encoding
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// Formats lists the supported formats
var Formats = []Format{Markdown, JSON, YAML}

// ParseFormat accepts a format name or a common file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "markdown", "md", "":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown, json or yaml)", s)
	}
}

// Extension returns the file extension for f, including the dot
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	default:
		return ".md"
	}
}

// Write encodes bp to w in format f
func Write(w io.Writer, bp *blueprint.Blueprint, f Format) error {
	if bp == nil {
		return fmt.Errorf("nothing to export")
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case Markdown:
		data = []byte(PitchDeck(bp))
	case JSON:
		data, err = json.MarshalIndent(bp, "", "  ")
		data = append(data, '\n')
	case YAML:
		data, err = yaml.Marshal(bp)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s export: %w", f, err)
	}
	return nil
}

// PitchDeck renders bp as a Markdown document, one heading per section
func PitchDeck(bp *blueprint.Blueprint) string {
	view := presenter.Render(bp)
	if view.Empty() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", view.Identity.Name)
	if view.Identity.Pitch != "" {
		fmt.Fprintf(&b, "> %s\n\n", view.Identity.Pitch)
	}
	if bp.Description != nil && *bp.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", *bp.Description)
	}

	for _, section := range view.Sections() {
		if !hasText(section) {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		if len(section.Fields) == 1 {
			fmt.Fprintf(&b, "%s\n\n", section.Fields[0].Text)
			continue
		}
		for _, field := range section.Fields {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", field.Label, field.Text)
		}
	}

	fmt.Fprintf(&b, "---\n\nStatus: %s", bp.Status)
	if !bp.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, " · Updated: %s", bp.UpdatedAt.UTC().Format("2006-01-02"))
	}
	b.WriteString("\n")
	return b.String()
}

// Filename builds a file name from the blueprint name
func Filename(bp *blueprint.Blueprint, f Format) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(bp.Name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "blueprint"
	}
	return slug + f.Extension()
}

func hasText(s presenter.Section) bool {
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Text) != "" {
			return true
		}
	}
	return false
}
