// -- cmd/render.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/layout"
	"github.com/xkilldash9x/htmlview/internal/browser/loader"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
	"github.com/xkilldash9x/htmlview/internal/config"
	"github.com/xkilldash9x/htmlview/internal/observability"
)

// newRenderCmd creates the `render` command. Its layout flags are bound to
// the render section of v so they override the config file and environment.
func newRenderCmd(v *viper.Viper) *cobra.Command {
	var (
		xhtml    bool
		selector string
	)

	renderCmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Lays out a document and prints the geometry of its boxes",
		Long: `Loads an HTML (or XHTML) document with its style sheets, cascades the
user agent and author styles, lays the document out for the viewport width
and prints the position of every box, line of text and list marker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			logger := observability.ForComponent("render").With(zap.String("run_id", runID))
			logger.Info("Rendering document.",
				zap.String("target", args[0]),
				zap.Int("viewport_width", cfg.Render.ViewportWidth),
				zap.String("format", cfg.Render.OutputFormat))

			result, err := renderDocument(ctx, cfg, args[0], xhtml, logger)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Rendering aborted.")
				}
				return err
			}

			records := result.Engine.Geometry()
			if selector != "" {
				g, err := result.Engine.ElementGeometry(selector)
				if err != nil {
					return err
				}
				records = []layout.Geometry{*g}
			}

			out := newReport(runID, result, records)
			if err := writeReport(cmd.OutOrStdout(), cfg.Render.OutputFormat, out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			logger.Info("Rendering complete.", zap.Int("boxes", len(records)), zap.Int("height", out.Height))
			return nil
		},
	}

	flags := renderCmd.Flags()
	flags.IntP("width", "w", 0, "Viewport width in CSS pixels. (Overrides config/env)")
	flags.Float64("scale", 0, "Device pixels per CSS pixel. (Overrides config/env)")
	flags.StringP("format", "f", "", "Output format, 'text' or 'json'. (Overrides config/env)")
	flags.StringSlice("css", nil, "Extra style sheet files or URLs, applied after the document's own.")
	flags.BoolVar(&xhtml, "xhtml", false, "Parse the document as XHTML.")
	flags.StringVarP(&selector, "select", "s", "", "Only print the element selected by this XPath expression.")

	for key, name := range map[string]string{
		"render.viewport_width": "width",
		"render.pixel_scale":    "scale",
		"render.output_format":  "format",
		"render.style_sheets":   "css",
	} {
		// Lookup cannot fail for flags defined above.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return renderCmd
}

// renderResult is a laid out document.
type renderResult struct {
	URL    *url.URL
	Doc    *dom.Document
	Engine *layout.Engine
	// Width is the layout width in device pixels.
	Width int
}

// renderDocument runs the whole pipeline for one document: load, cascade,
// build the box tree and lay it out.
func renderDocument(ctx context.Context, cfg *config.Config, target string, xhtml bool, logger *zap.Logger) (*renderResult, error) {
	l := loader.New(loader.Config{
		Concurrency: cfg.Fetch.Concurrency,
		RateLimit:   cfg.Fetch.RateLimit,
		Timeout:     cfg.Fetch.Timeout,
		MaxImports:  cfg.Fetch.MaxImports,
		MediaTypes:  cfg.Render.MediaTypes,
	}, logger)

	u, err := loader.Resolve(target)
	if err != nil {
		return nil, err
	}
	doc, err := l.LoadDocument(ctx, u, xhtml)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	extra := make([]*url.URL, 0, len(cfg.Render.StyleSheets))
	for _, ref := range cfg.Render.StyleSheets {
		su, err := loader.Resolve(ref)
		if err != nil {
			return nil, err
		}
		extra = append(extra, su)
	}
	author, err := l.LoadStyleSheet(ctx, doc, extra...)
	if err != nil {
		return nil, err
	}

	var sheets []*style.StyleSheet
	if cfg.Render.UserAgentSheet {
		sheets = append(sheets, style.DefaultStyleSheet(logger))
	}
	doc.Cascade(append(sheets, author)...)

	measurer := layout.NewFaceMeasurer(nil)
	measurer.SetNominalSize(cfg.Render.FontSizePx)
	engine := layout.NewEngine(
		layout.WithMeasurer(measurer),
		layout.WithPixelScale(cfg.Render.PixelScale),
		layout.WithLogger(logger),
	)
	width := int(math.Round(float64(cfg.Render.ViewportWidth) * cfg.Render.PixelScale))
	engine.Build(doc)
	engine.Layout(width)

	return &renderResult{URL: u, Doc: doc, Engine: engine, Width: width}, nil
}
