// Package export writes an extraction result to a downloadable document.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/mcodersir/axkhan/internal/viewer"
)

type Format string

const (
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

const sheetName = "Text"

// ParseFormat accepts txt, xlsx or yaml (yml), defaulting to txt
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "xlsx":
		return FormatXLSX, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (must be txt, xlsx or yaml)", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) Filename() string {
	return "axkhan." + string(f)
}

// Document is the result text with the direction it is displayed in
type Document struct {
	Text       string           `yaml:"text"`
	Direction  viewer.Direction `yaml:"direction"`
	Model      string           `yaml:"model,omitempty"`
	ExportedAt time.Time        `yaml:"exported_at"`
}

// Lines splits the text into paragraphs, one per line
func (d Document) Lines() []string {
	text := strings.ReplaceAll(d.Text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Write encodes doc in format f
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, doc)
	case FormatYAML:
		return WriteYAML(w, doc)
	default:
		return WriteText(w, doc)
	}
}

func WriteText(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, strings.Join(doc.Lines(), "\n")); err != nil {
		return fmt.Errorf("failed to write text: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	return enc.Close()
}

// WriteXLSX writes one row per line. Alignment, reading order and sheet
// direction all follow doc.Direction.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rtl := doc.Direction != viewer.LTR
	align := &excelize.Alignment{Horizontal: "left", ReadingOrder: 1, WrapText: true}
	if rtl {
		align = &excelize.Alignment{Horizontal: "right", ReadingOrder: 2, WrapText: true}
	}
	style, err := f.NewStyle(&excelize.Style{Alignment: align})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("failed to set sheet view: %w", err)
	}

	lines := doc.Lines()
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetCellValue(sheetName, cell, line)
	}
	last, _ := excelize.CoordinatesToCellName(1, max(1, len(lines)))
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to apply style: %w", err)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 100)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
