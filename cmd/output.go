// -- cmd/output.go --
package cmd

import (
	"fmt"
	"io"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/htmlview/internal/browser/layout"
	"github.com/xkilldash9x/htmlview/internal/config"
)

// report is the printed result of a render run.
type report struct {
	RunID  string      `json:"run_id"`
	URL    string      `json:"url"`
	Title  string      `json:"title,omitempty"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Boxes  []boxRecord `json:"boxes"`
}

type rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type lineRecord struct {
	rect
	Text string `json:"text"`
}

type boxRecord struct {
	Path    string       `json:"path"`
	Kind    string       `json:"kind"`
	Content rect         `json:"content"`
	Border  rect         `json:"border"`
	Margin  rect         `json:"margin"`
	Lines   []lineRecord `json:"lines,omitempty"`
	Marker  string       `json:"marker,omitempty"`
}

func toRect(r layout.Rect) rect {
	return rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func newReport(runID string, result *renderResult, records []layout.Geometry) *report {
	out := &report{
		RunID: runID,
		URL:   result.URL.String(),
		Title: result.Doc.Title(),
		Width: result.Width,
		Boxes: make([]boxRecord, 0, len(records)),
	}
	if all := result.Engine.Geometry(); len(all) > 0 {
		out.Height = all[0].Bounds.Height
	}
	for _, g := range records {
		b := boxRecord{
			Path:    result.Doc.Path(g.Node),
			Kind:    g.Kind.String(),
			Content: toRect(g.Content),
			Border:  toRect(g.BorderBox()),
			Margin:  toRect(g.MarginBox()),
			Marker:  g.Marker,
		}
		for _, l := range g.Lines {
			b.Lines = append(b.Lines, lineRecord{rect: toRect(l.Rect), Text: l.Text})
		}
		out.Boxes = append(out.Boxes, b)
	}
	return out
}

// writeReport prints r in the given format.
func writeReport(w io.Writer, format string, r *report) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case config.FormatText, "":
		return writeText(w, r)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// writeText prints one line per box and an indented line per line of text.
func writeText(w io.Writer, r *report) error {
	var sb strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&sb, "# %s\n", r.Title)
	}
	fmt.Fprintf(&sb, "# %s %dx%d\n", r.URL, r.Width, r.Height)
	for _, b := range r.Boxes {
		if b.Kind == "text" {
			for _, l := range b.Lines {
				fmt.Fprintf(&sb, "  %4d,%-4d %4dx%-4d %q\n", l.X, l.Y, l.Width, l.Height, l.Text)
			}
			continue
		}
		c := b.Content
		fmt.Fprintf(&sb, "%-6s %4d,%-4d %4dx%-4d %s", b.Kind, c.X, c.Y, c.Width, c.Height, b.Path)
		if b.Marker != "" {
			fmt.Fprintf(&sb, " marker=%q", b.Marker)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
